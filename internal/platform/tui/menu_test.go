package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/engine"
	"github.com/vovakirdan/topdown/internal/registry"
	"github.com/vovakirdan/topdown/internal/storage"
)

type menuScene struct{}

func (menuScene) ID() string                  { return "tui-menu-test" }
func (menuScene) Title() string               { return "Menu Test" }
func (menuScene) Setup(*engine.Context) error { return nil }
func (menuScene) Teardown()                   {}

func init() {
	registry.Register(registry.SceneInfo{
		ID:          "tui-menu-test",
		Title:       "Menu Test",
		Description: "scene used by the menu tests",
	}, func(registry.Options) (engine.Scene, error) { return menuScene{}, nil })
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func press(m tea.Model, msgs ...tea.KeyMsg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestMenuSelectsScene(t *testing.T) {
	store := openStore(t)
	store.SaveScore("tui-menu-test", 77)

	m := NewMenuModel(store, 100, 30)
	if !strings.Contains(m.View(), "Menu Test") || !strings.Contains(m.View(), "best 77") {
		t.Errorf("View() = %q, expected the scene and its high score", m.View())
	}

	final := press(m,
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyEnter},
	).(MenuModel)

	r := final.Result()
	if r.Quit || r.SceneID == "" {
		t.Fatalf("Result() = %+v, expected a selected scene", r)
	}
	if r.Preset != config.DifficultyNormal {
		t.Errorf("Result().Preset = %q, expected %q", r.Preset, config.DifficultyNormal)
	}
}

func TestMenuPresetWraps(t *testing.T) {
	m := press(NewMenuModel(nil, 80, 24), tea.KeyMsg{Type: tea.KeyLeft}).(MenuModel)
	if m.Preset() != config.DifficultyFixed {
		t.Errorf("Preset() = %q, expected %q", m.Preset(), config.DifficultyFixed)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRight}).(MenuModel)
	if m.Preset() != "" {
		t.Errorf("Preset() = %q, expected the configured difficulty", m.Preset())
	}
}

func TestMenuQuitAndScoreboard(t *testing.T) {
	quit := press(NewMenuModel(nil, 80, 24), keyMsg('q')).(MenuModel)
	if !quit.Result().Quit {
		t.Errorf("Result() = %+v, expected quit", quit.Result())
	}

	board := press(NewMenuModel(nil, 80, 24), tea.KeyMsg{Type: tea.KeyTab}).(MenuModel)
	if !board.Result().WantsScoreboard {
		t.Errorf("Result() = %+v, expected scoreboard", board.Result())
	}
}

func TestScoreboardShowsRuns(t *testing.T) {
	store := openStore(t)
	store.RecordResult("tui", engine.Result{SceneID: "tui-menu-test", Score: 12, Exit: engine.ExitStopped})

	m := NewScoreboardModel(store, 100, 30)
	for m.currentScene() != "tui-menu-test" {
		m = press(m, tea.KeyMsg{Type: tea.KeyTab}).(ScoreboardModel)
	}
	if !strings.Contains(m.View(), "12") {
		t.Errorf("scores view = %q, expected score 12", m.View())
	}

	m = press(m, keyMsg('r')).(ScoreboardModel)
	view := m.View()
	if !strings.Contains(view, "RECENT RUNS") || !strings.Contains(view, "stopped") {
		t.Errorf("runs view = %q, expected the recorded run", view)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc}).(ScoreboardModel)
	if !m.IsGoingBack() {
		t.Error("IsGoingBack() = false after esc")
	}
}

func TestSessionWithoutProgram(t *testing.T) {
	m := NewSessionModel(SessionOptions{Width: 80, Height: 24})
	var model tea.Model = m

	model = press(model, tea.KeyMsg{Type: tea.KeyTab})
	if got := model.(SessionModel).Phase(); got != "scoreboard" {
		t.Fatalf("Phase() = %q, expected scoreboard", got)
	}
	model = press(model, tea.KeyMsg{Type: tea.KeyEsc})
	if got := model.(SessionModel).Phase(); got != "menu" {
		t.Fatalf("Phase() = %q, expected menu", got)
	}

	model = press(model, tea.KeyMsg{Type: tea.KeyEnter})
	s := model.(SessionModel)
	if s.Phase() != "menu" || !strings.Contains(s.View(), "need a terminal session") {
		t.Errorf("session = %q / %q, expected to stay in the menu with a message", s.Phase(), s.View())
	}

	model, _ = model.Update(sceneDoneMsg{result: engine.Result{SceneID: "tui-menu-test", Score: 5}})
	if !strings.Contains(model.View(), "score 5") {
		t.Errorf("View() = %q, expected the finished score", model.View())
	}
}
