package scene

import "fmt"

// Phase orders systems within an update.
type Phase int

const (
	PhaseInput Phase = iota
	PhasePhysics
	PhaseCollision
	PhaseLifecycle
	PhaseLate
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePhysics:
		return "physics"
	case PhaseCollision:
		return "collision"
	case PhaseLifecycle:
		return "lifecycle"
	case PhaseLate:
		return "late"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// SystemFunc processes the world for one fixed step.
type SystemFunc func(w *World, fc FrameContext)

type namedSystem struct {
	name string
	fn   SystemFunc
}

// Scheduler runs systems phase by phase, in registration order within a
// phase, and flushes deferred spawns and despawns afterwards.
type Scheduler struct {
	world  *World
	phases [phaseCount][]namedSystem
}

// NewScheduler creates an empty scheduler for w.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{world: w}
}

// NewDefaultScheduler creates a scheduler with the built-in systems.
func NewDefaultScheduler(w *World) *Scheduler {
	s := NewScheduler(w)
	s.Add(PhaseInput, "movement", MovementSystem)
	s.Add(PhasePhysics, "physics", PhysicsSystem)
	s.Add(PhaseCollision, "collision", CollisionSystem)
	s.Add(PhaseLifecycle, "lifetime", LifetimeSystem)
	s.Add(PhaseLate, "camera", CameraSystem)
	return s
}

// Add registers a system. Invalid phases panic, since that is a programming error.
func (s *Scheduler) Add(p Phase, name string, fn SystemFunc) {
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("scene: invalid phase %d for system %q", p, name))
	}
	s.phases[p] = append(s.phases[p], namedSystem{name: name, fn: fn})
}

// World returns the scheduled world.
func (s *Scheduler) World() *World {
	return s.world
}

// Systems returns system names in execution order.
func (s *Scheduler) Systems() []string {
	var names []string
	for p := range s.phases {
		for _, sys := range s.phases[p] {
			names = append(names, Phase(p).String()+"/"+sys.name)
		}
	}
	return names
}

// Update runs one fixed step. It is the only place the world is mutated
// once the scene is running.
func (s *Scheduler) Update(fc FrameContext) {
	w := s.world
	w.savePrev()
	w.updating = true
	for p := range s.phases {
		for _, sys := range s.phases[p] {
			sys.fn(w, fc)
		}
	}
	w.updating = false
	w.Flush()
	w.step++
}
