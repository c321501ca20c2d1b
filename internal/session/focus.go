package session

// CycleFocus moves the cursor to the next visible window after it and brings
// that window to the front. The MRU order is left alone until
// CommitFocusCycle.
func (s *Session) CycleFocus() {
	s.top = s.FindNext(s.top)
	s.cycling = true
	s.use(s.top)
}

// CommitFocusCycle ends a cycle gesture: the window under the cursor becomes
// the most recently used one. Nothing changes when the cursor is already on
// slot 1 or on the root.
func (s *Session) CommitFocusCycle() {
	s.cycling = false
	if s.top <= indexTop {
		return
	}
	if err := s.reg.PromoteToFront(s.top); err != nil {
		s.logger.Error("failed to promote window", "slot", s.top, "error", err)
		return
	}
	s.logger.Debug("focus committed", "window", s.reg.At(indexTop).ID, "from_slot", s.top)
	s.top = indexTop
}

// FindNext returns the first visible window after slot from in registry
// order, wrapping past the end and skipping the root. It returns from when
// no other window qualifies.
func (s *Session) FindNext(from int) int {
	count := s.reg.Count()
	for i := 0; i < count-1; i++ {
		next := wrap(from+1+i, count)
		if next == from {
			break
		}
		if s.reg.At(next).Visible() {
			return next
		}
	}
	return from
}

// wrap folds an index past the end of the registry back onto slot 1.
func wrap(index, count int) int {
	if index >= count {
		return indexTop + index - count
	}
	return index
}
