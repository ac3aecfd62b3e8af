// Package platform defines the contract between the engine and the OS window,
// rendering context and input event source. Concrete backends live in
// subpackages: headless (tests, CI), tui (terminal) and ebitenwin (GPU).
package platform

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by *Error.
var (
	ErrInvalidSize  = errors.New("window size must be positive")
	ErrContextLost  = errors.New("rendering context lost")
	ErrClosed       = errors.New("window is closed")
	ErrDoubleFree   = errors.New("object already destroyed")
	ErrUnknownObj   = errors.New("object not created by this device")
	ErrNotSupported = errors.New("operation not supported by backend")
)

// Error reports a window or rendering context failure. It is fatal to the game loop.
type Error struct {
	Op  string // "open", "swap", "texture", ...
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("platform: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config describes the window to create.
type Config struct {
	Title       string
	Width       int
	Height      int
	Vsync       bool
	Fullscreen  bool
	RefreshRate int // Presentation rate used for vsync pacing when the backend has no display sync
}

// ValidateConfig rejects configurations no backend can honor.
// Every Opener calls it before touching the OS.
func ValidateConfig(cfg Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return &Error{Op: "open", Err: fmt.Errorf("%w: got %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)}
	}
	return nil
}

// Window owns the OS window, its rendering context and its event source.
// All methods must be called from the goroutine that opened it.
type Window interface {
	// PollEvents appends every event queued since the previous call to dst.
	// It never blocks.
	PollEvents(dst []Event) []Event

	// SwapBuffers presents a completed frame. With vsync enabled it blocks
	// for at most one refresh interval.
	SwapBuffers(f *Frame) error

	// Device returns the GPU/audio device bound to this window's context.
	Device() Device

	// Size returns the current drawable size in backend units.
	Size() (w, h int)

	// Close releases the context. It is idempotent. Objects created by
	// Device are invalid afterwards.
	Close() error

	// Closed reports whether Close has been called.
	Closed() bool
}

// Opener creates a window. It fails with *Error when the OS cannot provide
// a window or a compatible rendering context.
type Opener func(Config) (Window, error)

// Driver is implemented by backends that must own the OS main loop.
// Drive calls iterate once per OS frame on the context goroutine until
// iterate reports false or an error.
type Driver interface {
	Drive(iterate func() (bool, error)) error
}
