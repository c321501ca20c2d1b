package session

import (
	"errors"

	"github.com/1broseidon/minwm/internal/hotkeys"
	"github.com/1broseidon/minwm/internal/platform"
)

// HandleEvent processes one display event to completion. It returns
// ErrNoWindows when the event removed the last managed window, and keeps
// returning it, without touching the display, for every later event.
func (s *Session) HandleEvent(ev platform.Event) error {
	if s.done {
		return ErrNoWindows
	}

	switch e := ev.(type) {
	case platform.FocusChanged:
		s.focusChanged(e)
	case platform.GeometryRequested:
		s.soft(s.display.ConfigureGeometry(e.Window, e.Geometry), "configure", e.Window)
	case platform.ColormapChanged:
		s.colormapChanged(e.Window)
	case platform.WindowMapRequested:
		s.mapRequested(e.Window)
	case platform.KeyDown:
		s.keyDown(e.KeyEvent)
	case platform.KeyUp:
		s.keyUp(e.KeyEvent)
	case platform.WindowUnmapped:
		return s.unmanage(e.Window)
	}
	return nil
}

// focusChanged re-arms the key grabs after another client grabbed the
// keyboard.
func (s *Session) focusChanged(e platform.FocusChanged) {
	if e.Mode != platform.FocusModeGrab || s.keys == nil {
		return
	}
	if err := s.keys.Grab(s.display); err != nil {
		s.logger.Debug("key grabs not restored", "error", err)
	}
}

func (s *Session) colormapChanged(id platform.WindowID) {
	index, ok := s.reg.Lookup(id)
	if !ok {
		return
	}
	attr, err := s.display.GetAttributes(id)
	if err != nil {
		s.soft(err, "get attributes", id)
		return
	}
	w := s.reg.at(index)
	w.Colormap = attr.Colormap
	if index == s.top {
		s.soft(s.display.InstallColormap(w.Colormap), "install colormap", id)
	}
}

// mapRequested manages a new window, or maps and raises it unmanaged when it
// is not eligible or the registry is full.
func (s *Session) mapRequested(id platform.WindowID) {
	managed, err := s.manage(id)
	if err != nil {
		if errors.Is(err, ErrRegistryFull) {
			s.logger.Warn("registry full, window left unmanaged", "window", id, "capacity", s.reg.Capacity())
		} else {
			s.logger.Warn("window not managed", "window", id, "error", err)
		}
	}
	if managed {
		return
	}
	s.soft(s.display.MapWindow(id), "map", id)
	s.soft(s.display.RaiseWindow(id), "raise", id)
}

// keyDown acts on the press actions. Other table keys are swallowed unless
// the root has the focus; codes outside the table are always forwarded.
func (s *Session) keyDown(ev platform.KeyEvent) {
	key, ok := s.keys.Lookup(ev.Code)
	if !ok {
		s.forward(ev)
		return
	}
	if key == hotkeys.KeyCycle {
		s.CycleFocus()
		return
	}
	if s.top == indexRoot {
		s.forward(ev)
		return
	}
	switch key {
	case hotkeys.KeyCycleShape:
		s.CycleShape(s.top)
	case hotkeys.KeyClose:
		w := s.reg.At(s.top)
		s.soft(s.display.SendClose(w.ID), "close", w.ID)
	}
}

func (s *Session) keyUp(ev platform.KeyEvent) {
	if key, ok := s.keys.Lookup(ev.Code); ok {
		switch key {
		case hotkeys.KeyVirtualModifier:
			s.CommitFocusCycle()
			return
		case hotkeys.KeySwitchLeft:
			s.ShiftVirtualScreen(s.width)
			return
		case hotkeys.KeySwitchRight:
			s.ShiftVirtualScreen(-s.width)
			return
		case hotkeys.KeyMoveLeft:
			s.MoveWindowToOtherScreen(s.width)
			return
		case hotkeys.KeyMoveRight:
			s.MoveWindowToOtherScreen(-s.width)
			return
		}
	}
	s.forward(ev)
}

// forward hands a key event the window manager does not act on to the
// window under the cursor, the root included.
func (s *Session) forward(ev platform.KeyEvent) {
	target := s.reg.At(s.top).ID
	s.soft(s.display.SendKey(target, ev), "forward key", target)
}
