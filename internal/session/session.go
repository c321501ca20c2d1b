// Package session is the window manager's state machine: the MRU window
// registry, the focus cursor, window shapes and the two virtual screens. It
// is driven one event at a time by HandleEvent and talks to the display
// server only through platform.Display.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/minwm/internal/hotkeys"
	"github.com/1broseidon/minwm/internal/platform"
	"github.com/1broseidon/minwm/internal/tiling"
)

// ErrNoWindows is returned once the last managed window is gone. The
// session does nothing after returning it.
var ErrNoWindows = errors.New("no managed windows left")

// Options configures a Session.
type Options struct {
	// Capacity bounds the registry, root slot included. Zero means
	// DefaultCapacity.
	Capacity int
	Logger   *slog.Logger
}

// Session owns all window manager state. It is not safe for concurrent use;
// every method must be called from the goroutine that dispatches events.
type Session struct {
	display platform.Display
	keys    *hotkeys.Table
	logger  *slog.Logger

	reg    *Registry
	layout tiling.Layout
	width  int

	// top is the focus cursor. It differs from slot 1 only while a cycle
	// gesture is in progress.
	top     int
	cycling bool
	done    bool
}

// New creates a session for the display's screen. keys may be nil, in which
// case every key event is forwarded.
func New(display platform.Display, keys *hotkeys.Table, opts Options) (*Session, error) {
	screen := display.Screen()
	layout, err := tiling.NewLayout(screen.Width, screen.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to build shape layout: %w", err)
	}

	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		display: display,
		keys:    keys,
		logger:  logger,
		reg:     NewRegistry(screen.Root, screen.Colormap, capacity),
		layout:  layout,
		width:   screen.Width,
		top:     indexRoot,
	}, nil
}

// Registry exposes the window list for inspection.
func (s *Session) Registry() *Registry {
	return s.reg
}

// Cursor returns the slot currently in front.
func (s *Session) Cursor() int {
	return s.top
}

// Cycling reports whether a cycle gesture is waiting to be committed.
func (s *Session) Cycling() bool {
	return s.cycling
}

// Managed returns the number of managed windows.
func (s *Session) Managed() int {
	return s.reg.Count() - 1
}

// Terminated reports whether the last managed window has gone away.
func (s *Session) Terminated() bool {
	return s.done
}

// Scan manages every eligible top-level window that already exists and
// returns the number of managed windows afterwards.
func (s *Session) Scan() (int, error) {
	children, err := s.display.QueryTopLevelChildren()
	if err != nil {
		return s.Managed(), fmt.Errorf("failed to enumerate windows: %w", err)
	}
	for _, id := range children {
		if _, err := s.manage(id); err != nil {
			s.logger.Warn("window not managed", "window", id, "error", err)
		}
	}
	return s.Managed(), nil
}

// use brings a slot to the front: raise before focus so an occluded window
// never gets the keyboard, then install its colormap. The root is never
// raised or focused.
func (s *Session) use(index int) {
	w := s.reg.At(index)
	if index != indexRoot {
		s.soft(s.display.RaiseWindow(w.ID), "raise", w.ID)
		s.soft(s.display.SetInputFocus(w.ID), "focus", w.ID)
	}
	s.soft(s.display.InstallColormap(w.Colormap), "install colormap", w.ID)
	s.logger.Debug("window in front", "window", w.ID, "slot", index)
}

// manage starts managing a top-level window. It reports false with a nil
// error when the window is not eligible: already managed, override-redirect,
// not a child of the root, or gone.
func (s *Session) manage(id platform.WindowID) (bool, error) {
	root := s.reg.Root().ID
	if id == root {
		return false, nil
	}
	if _, ok := s.reg.Lookup(id); ok {
		return false, nil
	}

	attr, err := s.display.GetAttributes(id)
	if err != nil {
		s.soft(err, "get attributes", id)
		return false, nil
	}
	if attr.OverrideRedirect || attr.Parent != root {
		return false, nil
	}

	if err := s.reg.InsertFront(id, attr.Colormap); err != nil {
		return false, err
	}
	s.soft(s.display.MapWindow(id), "map", id)
	s.use(indexTop)
	s.top = indexTop
	s.logger.Info("window managed", "window", id, "managed", s.Managed())
	return true, nil
}

// unmanage forgets a window. When it was the last one the session ends.
func (s *Session) unmanage(id platform.WindowID) error {
	index, ok := s.reg.Lookup(id)
	if !ok {
		return nil
	}
	if err := s.reg.Remove(index); err != nil {
		return err
	}
	s.logger.Info("window unmanaged", "window", id, "managed", s.Managed())

	if s.reg.Count() <= 1 {
		s.done = true
		s.top = indexRoot
		return ErrNoWindows
	}
	s.cycling = false
	s.top = indexTop
	s.use(indexTop)
	return nil
}

// CycleShape advances a managed window to its next shape and moves it into
// the matching rectangle, shifted by its virtual screen offset.
func (s *Session) CycleShape(index int) {
	if index <= indexRoot || index >= s.reg.Count() {
		return
	}
	w := s.reg.at(index)
	w.Shape = w.Shape.Next()

	rect := s.layout.Rect(w.Shape)
	rect.X += w.Offset
	s.soft(s.display.ConfigureGeometry(w.ID, platform.GeometryFromRect(rect)), "reshape", w.ID)
	s.logger.Debug("window reshaped", "window", w.ID, "shape", w.Shape)
}

// soft logs an adapter failure. Such failures only skip the action for the
// one window involved.
func (s *Session) soft(err error, op string, id platform.WindowID) {
	if err == nil {
		return
	}
	s.logger.Debug("display request failed", "op", op, "window", id, "error", err)
}
