// Package tui is the terminal backend: a platform.Window drawn with Bubble
// Tea and Lip Gloss, the scene menu and scoreboard, and an SSH server that
// runs one engine per session via Wish.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/engine"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/registry"
	"github.com/vovakirdan/topdown/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.topdown/host_key.
	HostKeyPath string

	// DBPath is the path to the scores database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Engine is the loop configuration for every session. The window size
	// comes from the client's terminal.
	Engine engine.Config

	// Assets is the asset tree shared by all sessions.
	Assets fs.FS

	// Logger receives server and engine logs. Nil logs to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.topdown/scores.db",
		IdleTimeout: 30 * time.Minute,
		Engine:      engine.DefaultConfig(),
	}
}

// SSHServer wraps a Wish SSH server that runs scenes in the client's terminal.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "topdown-ssh",
		})
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		dir := config.UserDir()
		if dir == "" {
			srv.closeStore()
			return nil, errors.New("tui: cannot resolve home directory for the host key")
		}
		hostKeyPath = filepath.Join(dir, "host_key")
	}

	// Ensure host key directory exists
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		srv.closeStore()
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.MiddlewareWithProgramHandler(srv.programHandler, termenv.ANSI256),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	)
	if err != nil {
		srv.closeStore()
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

func (s *SSHServer) closeStore() {
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
}

// programHandler creates the Bubble Tea program for one SSH session.
func (s *SSHServer) programHandler(sess ssh.Session) *tea.Program {
	pty, _, ok := sess.Pty()
	if !ok {
		return nil
	}

	link := &programLink{ctx: sess.Context()}
	model := NewSessionModel(SessionOptions{
		Store:    s.store,
		Engine:   s.config.Engine,
		Assets:   s.config.Assets,
		Logger:   s.logger.With("user", sess.User()),
		Renderer: bubbletea.MakeRenderer(sess),
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
		link:     link,
	})

	opts := append(bubbletea.MakeOptions(sess), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if rate := s.config.Engine.Window.RefreshRate; rate > 0 {
		opts = append(opts, tea.WithFPS(rate))
	}
	link.program = tea.NewProgram(model, opts...)
	return link.program
}

// ListenAndServe serves until ctx is done, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			s.closeStore()
			return fmt.Errorf("tui: ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.closeStore()
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// programLink lets a session model reach the program that runs it.
type programLink struct {
	program *tea.Program
	ctx     context.Context
}

// sceneDoneMsg reports a finished engine run.
type sceneDoneMsg struct {
	result engine.Result
}

type sessionPhase int

const (
	phaseMenu sessionPhase = iota
	phaseScoreboard
	phasePlaying
)

// SessionOptions configures a SessionModel.
type SessionOptions struct {
	Store    *storage.Store
	Engine   engine.Config
	Assets   fs.FS
	Logger   *log.Logger
	Renderer *lipgloss.Renderer
	Width    int
	Height   int

	link *programLink
}

// SessionModel manages one SSH session: menu, scoreboard and a running
// scene, back to the menu when the scene ends.
type SessionModel struct {
	opts     SessionOptions
	phase    sessionPhase
	menu     MenuModel
	board    ScoreboardModel
	win      *Window
	status   string
	width    int
	height   int
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return SessionModel{
		opts:   opts,
		width:  opts.Width,
		height: opts.Height,
		menu:   NewMenuModelWithRenderer(opts.Store, opts.Width, opts.Height, opts.Renderer),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	if done, ok := msg.(sceneDoneMsg); ok {
		return m.finishScene(done.result)
	}

	switch m.phase {
	case phasePlaying:
		if m.win != nil {
			return m, m.win.Update(msg)
		}
		return m, nil
	case phaseScoreboard:
		return m.updateScoreboard(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.status = ""
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.phase = phaseScoreboard
		m.board = NewScoreboardModelWithRenderer(m.opts.Store, m.width, m.height, m.opts.Renderer)
		return m, m.board.Init()

	case m.menu.Selected() != nil:
		return m.startScene(m.menu.Selected().SceneID, m.menu.Preset())
	}

	return m, cmd
}

// updateScoreboard handles updates when the scoreboard is shown.
func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newBoard, cmd := m.board.Update(msg)
	if b, ok := newBoard.(ScoreboardModel); ok {
		m.board = b
	}

	switch {
	case m.board.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.board.IsGoingBack():
		return m.backToMenu(), nil
	}
	if _, isKey := msg.(tea.KeyMsg); isKey {
		return m, nil
	}
	return m, cmd
}

func (m SessionModel) backToMenu() SessionModel {
	m.phase = phaseMenu
	m.win = nil
	m.menu = NewMenuModelWithRenderer(m.opts.Store, m.width, m.height, m.opts.Renderer)
	return m
}

// startScene opens a window bound to this session's program and runs an
// engine for the chosen scene until it stops.
func (m SessionModel) startScene(id string, preset config.DifficultyPreset) (tea.Model, tea.Cmd) {
	link := m.opts.link
	if link == nil || link.program == nil {
		m = m.backToMenu()
		m.status = "scenes need a terminal session"
		return m, nil
	}

	sc, err := registry.Create(id, registry.Options{Preset: preset})
	if err != nil {
		m.opts.Logger.Warn("scene unavailable", "scene", id, "err", err)
		m = m.backToMenu()
		m.status = err.Error()
		return m, nil
	}

	cfg := m.opts.Engine
	cfg.Window.Width, cfg.Window.Height = m.width, m.height
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	win, err := New(cfg.Window,
		WithProgram(link.program),
		WithRenderer(m.opts.Renderer),
		WithLogger(m.opts.Logger),
	)
	if err != nil {
		m = m.backToMenu()
		m.status = err.Error()
		return m, nil
	}

	eng := engine.New(cfg,
		func(platform.Config) (platform.Window, error) { return win, nil },
		sc,
		engine.WithLogger(m.opts.Logger),
		engine.WithAssets(m.opts.Assets),
	)

	m.phase = phasePlaying
	m.win = win
	ctx, store, logger := link.ctx, m.opts.Store, m.opts.Logger
	return m, func() tea.Msg {
		//nolint:errcheck // the error is part of the result
		eng.Run(ctx)
		r := eng.Result()
		// A dropped session still records its run.
		if store != nil {
			if err := store.RecordResult("ssh", r); err != nil {
				logger.Warn("could not record run", "err", err)
			}
		}
		logger.Info("scene finished", "scene", r.SceneID, "score", r.Score, "exit", r.Exit)
		return sceneDoneMsg{result: r}
	}
}

// finishScene returns to the menu after a run.
func (m SessionModel) finishScene(r engine.Result) (tea.Model, tea.Cmd) {

	m = m.backToMenu()
	switch {
	case r.Err != nil:
		m.status = fmt.Sprintf("%s failed: %v", r.SceneID, r.Err)
	default:
		m.status = fmt.Sprintf("%s: score %d", r.SceneID, r.Score)
	}
	return m, nil
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.phase {
	case phasePlaying:
		if m.win != nil {
			return m.win.View()
		}
		return ""
	case phaseScoreboard:
		return m.board.View()
	}

	if m.status == "" {
		return m.menu.View()
	}
	return m.menu.View() + "\n" + centerText(m.status, m.width)
}

// Phase reports what the session is showing: "menu", "scoreboard" or "playing".
func (m SessionModel) Phase() string {
	switch m.phase {
	case phasePlaying:
		return "playing"
	case phaseScoreboard:
		return "scoreboard"
	}
	return "menu"
}
