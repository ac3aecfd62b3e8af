package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/topdown/internal/engine"
)

type stubScene struct{ id string }

func (s stubScene) ID() string                  { return s.id }
func (s stubScene) Title() string               { return "Stub" }
func (s stubScene) Setup(*engine.Context) error { return nil }
func (s stubScene) Teardown()                   {}

func TestRegisterCreateList(t *testing.T) {
	Register(SceneInfo{ID: "zz-stub", Title: "Stub"}, func(Options) (engine.Scene, error) {
		return stubScene{id: "zz-stub"}, nil
	})
	Register(SceneInfo{ID: "aa-stub", Title: "Another"}, func(Options) (engine.Scene, error) {
		return stubScene{id: "aa-stub"}, nil
	})

	if !Exists("zz-stub") {
		t.Error("Exists(zz-stub) = false, expected true")
	}
	if Exists("nope") {
		t.Error("Exists(nope) = true, expected false")
	}

	sc, err := Create("zz-stub", Options{})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if sc.ID() != "zz-stub" {
		t.Errorf("ID() = %q, expected %q", sc.ID(), "zz-stub")
	}

	list := List()
	var a, z = -1, -1
	for i, info := range list {
		switch info.ID {
		case "aa-stub":
			a = i
		case "zz-stub":
			z = i
		}
	}
	if a < 0 || z < 0 || a > z {
		t.Errorf("List() = %v, expected both stubs sorted by ID", list)
	}

	if info, ok := Lookup("aa-stub"); !ok || info.Title != "Another" {
		t.Errorf("Lookup() = %+v, %v", info, ok)
	}
}

func TestCreateErrors(t *testing.T) {
	if _, err := Create("does-not-exist", Options{}); err == nil {
		t.Error("Create(unknown) expected error")
	}

	boom := errors.New("boom")
	Register(SceneInfo{ID: "broken-stub"}, func(Options) (engine.Scene, error) { return nil, boom })
	if _, err := Create("broken-stub", Options{}); !errors.Is(err, boom) {
		t.Errorf("Create(broken) = %v, expected wrapped factory error", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(SceneInfo{ID: "dup-stub"}, func(Options) (engine.Scene, error) { return stubScene{}, nil })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register(SceneInfo{ID: "dup-stub"}, func(Options) (engine.Scene, error) { return stubScene{}, nil })
}
