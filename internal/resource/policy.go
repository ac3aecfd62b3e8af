package resource

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/topdown/internal/core"
)

// LoadOrDefault loads an asset and falls back to def when loading fails,
// logging a warning. def is returned as is, without an added reference.
// The manager itself never substitutes. A nil logger
// uses the default charm logger.
func LoadOrDefault(m *Manager, p string, kind Kind, def core.Handle, logger *log.Logger) core.Handle {
	h, err := m.Load(p, kind)
	if err == nil {
		return h
	}
	if logger == nil {
		logger = log.Default()
	}
	logger.Warn("asset fallback", "path", p, "kind", kind, "err", err)
	return def
}
