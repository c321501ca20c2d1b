package session

import "github.com/1broseidon/minwm/internal/platform"

// shift moves every managed window except exclude horizontally by delta,
// visiting slots from start onwards and wrapping. It returns the first
// visited slot whose offset became zero, or the root when none did. Passing
// the root as exclude excludes nothing.
func (s *Session) shift(start, exclude, delta int) int {
	count := s.reg.Count()
	found := indexRoot
	for i := 0; i < count-1; i++ {
		next := wrap(start+i, count)
		if next == exclude {
			continue
		}
		w := s.reg.at(next)
		if attr, err := s.display.GetAttributes(w.ID); err != nil {
			s.soft(err, "get attributes", w.ID)
		} else {
			geom := platform.Geometry{Mask: platform.ConfigX, X: attr.X + delta}
			s.soft(s.display.ConfigureGeometry(w.ID, geom), "shift", w.ID)
		}
		w.Offset += delta
		if w.Offset == 0 && found == indexRoot {
			found = next
		}
	}
	return found
}

// shiftStart is where a shift begins visiting: the cursor, or slot 1 while
// the root has focus.
func (s *Session) shiftStart() int {
	if s.top == indexRoot {
		return indexTop
	}
	return s.top
}

// ShiftVirtualScreen scrolls every managed window by delta pixels, bringing
// the other virtual screen into view. The first window that lands on screen
// gets the focus; when none does the root gets it.
func (s *Session) ShiftVirtualScreen(delta int) {
	s.top = s.shift(s.shiftStart(), indexRoot, delta)
	s.logger.Debug("virtual screen switched", "delta", delta, "slot", s.top)
	s.use(s.top)
	s.CommitFocusCycle()
}

// MoveWindowToOtherScreen scrolls every window except the focused one by
// delta pixels, leaving the focused window alone on this screen.
func (s *Session) MoveWindowToOtherScreen(delta int) {
	s.shift(s.shiftStart(), s.top, delta)
	s.logger.Debug("window kept while others shifted", "delta", delta, "slot", s.top)
	s.use(s.top)
	s.CommitFocusCycle()
}
