package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/topdown/internal/config"
)

// Model adapts a Window to a standalone Bubble Tea program.
type Model struct {
	win *Window
}

// Init sets the terminal title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.win.cfg.Title)
}

// Update forwards messages to the window.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(closeMsg); ok {
		return m, tea.Quit
	}
	return m, m.win.Update(msg)
}

// View renders the last presented frame.
func (m Model) View() string {
	return m.win.View()
}

// saveScreenshot writes the last presented frame as plain text.
func (w *Window) saveScreenshot() {
	w.mu.Lock()
	plain := w.plain
	w.mu.Unlock()
	if plain == "" {
		return
	}

	dir := w.opts.screenshots
	if dir == "" {
		if dir = config.UserDir(); dir == "" {
			return
		}
		dir = filepath.Join(dir, "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.opts.logger.Warn("screenshot failed", "err", err)
		return
	}

	timestamp := w.opts.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", screenshotName(w.cfg.Title), timestamp)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(plain), 0o600); err != nil {
		w.opts.logger.Warn("screenshot failed", "err", err)
		return
	}
	w.opts.logger.Info("screenshot saved", "path", path)
}

// screenshotName turns a window title into a file name prefix.
func screenshotName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, strings.TrimSpace(title))
	if name == "" {
		return "screen"
	}
	return name
}
