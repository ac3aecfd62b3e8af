package resource

import (
	"path"
	"strings"
)

// Kind identifies what an asset decodes into.
type Kind uint8

const (
	KindTexture Kind = iota + 1
	KindShader
	KindAudio
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindShader:
		return "shader"
	case KindAudio:
		return "audio"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// KindFor guesses the kind from a file extension. Unknown extensions are Data.
func KindFor(p string) Kind {
	switch strings.ToLower(path.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return KindTexture
	case ".kage":
		return KindShader
	case ".mp3", ".ogg":
		return KindAudio
	default:
		return KindData
	}
}

// cleanPath normalizes an asset path so that "a/../b.png", "./b.png" and
// "/b.png" name the same logical asset.
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}
