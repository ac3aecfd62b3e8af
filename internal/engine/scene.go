package engine

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/topdown/internal/resource"
	"github.com/vovakirdan/topdown/internal/scene"
)

// Scene is game content driven by the engine. Setup spawns the initial
// entities and registers systems; Teardown runs before resources are freed.
type Scene interface {
	ID() string
	Title() string
	Setup(ctx *Context) error
	Teardown()
}

// Scorer is implemented by scenes that keep a score.
type Scorer interface {
	Score() int
}

// Context is what a scene can reach. It is created by the engine for one run.
type Context struct {
	Resources *resource.Manager
	Loader    *resource.Loader
	World     *scene.World
	Scheduler *scene.Scheduler
	Logger    *log.Logger
	Seed      int64
	Width     int
	Height    int

	stop bool
}

// Stop asks the engine to shut down after the current frame.
func (c *Context) Stop() {
	c.stop = true
}
