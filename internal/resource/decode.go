package resource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/vovakirdan/topdown/internal/platform"
)

// payload is a decoded asset ready for upload. Exactly one field is set.
type payload struct {
	img    *image.RGBA
	shader []byte
	pcm    *platform.PCM
	data   []byte
}

// decode turns raw file bytes into a payload. It touches no shared state and
// is safe to call from loader workers.
func decode(p string, kind Kind, raw []byte) (payload, error) {
	switch kind {
	case KindTexture:
		img, err := decodeImage(raw)
		return payload{img: img}, err
	case KindShader:
		if len(bytes.TrimSpace(raw)) == 0 || !utf8.Valid(raw) {
			return payload{}, fmt.Errorf("%w: shader source is empty or not text", ErrDecode)
		}
		return payload{shader: raw}, nil
	case KindAudio:
		pcm, err := decodeAudio(p, raw)
		return payload{pcm: pcm}, err
	case KindData:
		return payload{data: raw}, nil
	default:
		return payload{}, fmt.Errorf("%w: kind %d", ErrUnsupported, kind)
	}
}

func decodeImage(raw []byte) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := src.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

func decodeAudio(p string, raw []byte) (*platform.PCM, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return decodeMP3(raw)
	case ".ogg":
		return decodeOgg(raw)
	default:
		return nil, fmt.Errorf("%w: audio %q", ErrUnsupported, path.Ext(p))
	}
}

// decodeMP3 reads the whole stream; go-mp3 always yields 16-bit stereo.
func decodeMP3(raw []byte) (*platform.PCM, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %v", ErrDecode, err)
	}
	data, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %v", ErrDecode, err)
	}
	return &platform.PCM{SampleRate: d.SampleRate(), Channels: 2, Data: data}, nil
}

func decodeOgg(raw []byte) (*platform.PCM, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: ogg: %v", ErrDecode, err)
	}
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		binary.LittleEndian.PutUint16(data[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return &platform.PCM{SampleRate: format.SampleRate, Channels: format.Channels, Data: data}, nil
}
