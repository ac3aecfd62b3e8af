// Package resource owns every device object the engine creates. Other
// packages hold core.Handle values and resolve them through the Manager.
package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

type assetKey struct {
	kind Kind
	path string
}

type slot struct {
	gen  uint32
	live bool
	key  assetKey
	refs int
	obj  platform.Object
	seq  uint64 // acquisition order, used for reverse-order shutdown
}

// Info describes a live asset.
type Info struct {
	Path string
	Kind Kind
	Refs int
}

// Manager maps handles to device objects with reference counting.
//
// The handle table is not synchronized: every method must be called from the
// goroutine that owns the window. Background decoding goes through Loader,
// which never touches the table.
type Manager struct {
	fsys   fs.FS
	device platform.Device
	logger *log.Logger

	slots []slot
	free  []uint32
	byKey map[assetKey]core.Handle
	seq   uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for release diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager reading assets from fsys and uploading them
// to device. A nil fsys makes every file load fail with ErrNotFound.
func NewManager(fsys fs.FS, device platform.Device, opts ...Option) *Manager {
	m := &Manager{
		fsys:   fsys,
		device: device,
		logger: log.New(io.Discard),
		byKey:  make(map[assetKey]core.Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns a handle for the asset, reading and uploading it on first use.
// Loading the same path and kind again returns the same handle and adds a
// reference.
func (m *Manager) Load(p string, kind Kind) (core.Handle, error) {
	p = cleanPath(p)
	if h, ok := m.acquire(assetKey{kind, p}); ok {
		return h, nil
	}
	pl, err := read(m.fsys, p, kind)
	if err != nil {
		return core.NoHandle, err
	}
	return m.install(p, kind, pl)
}

// LoadBytes registers an in-memory asset under a logical path. It follows
// the same sharing rules as Load.
func (m *Manager) LoadBytes(p string, kind Kind, raw []byte) (core.Handle, error) {
	p = cleanPath(p)
	if h, ok := m.acquire(assetKey{kind, p}); ok {
		return h, nil
	}
	pl, err := decode(p, kind, raw)
	if err != nil {
		return core.NoHandle, &LoadError{Path: p, Kind: kind, Err: err}
	}
	return m.install(p, kind, pl)
}

// LoadPCM registers already decoded audio, such as a synthesized effect,
// under a logical path.
func (m *Manager) LoadPCM(p string, pcm *platform.PCM) (core.Handle, error) {
	p = cleanPath(p)
	if pcm == nil || len(pcm.Data) == 0 {
		return core.NoHandle, &LoadError{Path: p, Kind: KindAudio, Err: fmt.Errorf("%w: empty pcm", ErrDecode)}
	}
	return m.install(p, KindAudio, payload{pcm: pcm})
}

// read loads and decodes a file. It touches no manager state.
func read(fsys fs.FS, p string, kind Kind) (payload, error) {
	if fsys == nil {
		return payload{}, &LoadError{Path: p, Kind: kind, Err: ErrNotFound}
	}
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return payload{}, &LoadError{Path: p, Kind: kind, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
		}
		return payload{}, &LoadError{Path: p, Kind: kind, Err: err}
	}
	pl, err := decode(p, kind, raw)
	if err != nil {
		return payload{}, &LoadError{Path: p, Kind: kind, Err: err}
	}
	return pl, nil
}

func (m *Manager) acquire(k assetKey) (core.Handle, bool) {
	h, ok := m.byKey[k]
	if !ok {
		return core.NoHandle, false
	}
	m.slots[h.Index()].refs++
	return h, true
}

// install uploads a decoded payload and records it. If the same asset was
// installed meanwhile (async load racing a sync one) the existing handle is
// shared instead.
func (m *Manager) install(p string, kind Kind, pl payload) (core.Handle, error) {
	k := assetKey{kind, p}
	if h, ok := m.acquire(k); ok {
		return h, nil
	}

	obj, err := m.upload(kind, p, pl)
	if err != nil {
		return core.NoHandle, &LoadError{Path: p, Kind: kind, Err: fmt.Errorf("%w: %w", ErrUpload, err)}
	}

	var idx uint32
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		m.slots = append(m.slots, slot{})
		idx = uint32(len(m.slots) - 1)
	}
	s := &m.slots[idx]
	if s.gen == 0 {
		s.gen = 1
	}
	m.seq++
	s.live = true
	s.key = k
	s.refs = 1
	s.obj = obj
	s.seq = m.seq

	h := core.MakeHandle(idx, s.gen)
	m.byKey[k] = h
	return h, nil
}

func (m *Manager) upload(kind Kind, p string, pl payload) (platform.Object, error) {
	switch kind {
	case KindTexture:
		return m.device.CreateTexture(pl.img)
	case KindShader:
		return m.device.CompileShader(p, pl.shader)
	case KindAudio:
		return m.device.CreateAudio(pl.pcm)
	case KindData:
		return pl.data, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupported, kind)
	}
}

func (m *Manager) lookup(h core.Handle) (*slot, bool) {
	if h.IsZero() {
		return nil, false
	}
	idx := h.Index()
	if int(idx) >= len(m.slots) {
		return nil, false
	}
	s := &m.slots[idx]
	if !s.live || s.gen != h.Generation() {
		return nil, false
	}
	return s, true
}

// Release drops one reference. The device object is destroyed when the last
// reference goes away; the handle is invalid from then on.
func (m *Manager) Release(h core.Handle) error {
	s, ok := m.lookup(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}
	return m.destroy(h.Index(), s)
}

func (m *Manager) destroy(idx uint32, s *slot) error {
	var err error
	if s.key.kind != KindData {
		if derr := m.device.Destroy(s.obj); derr != nil {
			err = fmt.Errorf("resource: destroy %s %q: %w", s.key.kind, s.key.path, derr)
		}
	}
	delete(m.byKey, s.key)
	*s = slot{gen: s.gen + 1}
	if s.gen == 0 {
		s.gen = 1
	}
	m.free = append(m.free, idx)
	return err
}

// ReleaseAll destroys every live asset regardless of reference counts, in
// reverse acquisition order. Used on shutdown before the window closes.
func (m *Manager) ReleaseAll() error {
	var order []uint32
	for i := range m.slots {
		if m.slots[i].live {
			order = append(order, uint32(i))
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return m.slots[order[a]].seq > m.slots[order[b]].seq
	})

	var errs []error
	for _, idx := range order {
		s := &m.slots[idx]
		if s.refs > 1 {
			m.logger.Debug("releasing shared asset", "path", s.key.path, "refs", s.refs)
		}
		if err := m.destroy(idx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Valid reports whether h refers to a live asset.
func (m *Manager) Valid(h core.Handle) bool {
	_, ok := m.lookup(h)
	return ok
}

// Resolve returns the device object behind h. It implements platform.Resolver.
func (m *Manager) Resolve(h core.Handle) (platform.Object, bool) {
	s, ok := m.lookup(h)
	if !ok {
		return nil, false
	}
	return s.obj, true
}

// Bytes returns the contents of a Data asset.
func (m *Manager) Bytes(h core.Handle) ([]byte, bool) {
	s, ok := m.lookup(h)
	if !ok || s.key.kind != KindData {
		return nil, false
	}
	b, ok := s.obj.([]byte)
	return b, ok
}

// RefCount returns the reference count of h, or 0 for invalid handles.
func (m *Manager) RefCount(h core.Handle) int {
	s, ok := m.lookup(h)
	if !ok {
		return 0
	}
	return s.refs
}

// Info describes the asset behind h.
func (m *Manager) Info(h core.Handle) (Info, bool) {
	s, ok := m.lookup(h)
	if !ok {
		return Info{}, false
	}
	return Info{Path: s.key.path, Kind: s.key.kind, Refs: s.refs}, true
}

// Len returns the number of live assets.
func (m *Manager) Len() int {
	return len(m.byKey)
}

var _ platform.Resolver = (*Manager)(nil)
