package session

// WindowInfo describes one managed window in a Snapshot.
type WindowInfo struct {
	Slot    int    `json:"slot"`
	ID      string `json:"id"`
	Shape   string `json:"shape"`
	Offset  int    `json:"offset"`
	Visible bool   `json:"visible"`
}

// Snapshot is a copy of the session state that is safe to hand to other
// goroutines.
type Snapshot struct {
	Managed    int          `json:"managed"`
	Cursor     int          `json:"cursor"`
	Focused    string       `json:"focused"`
	Cycling    bool         `json:"cycling"`
	Terminated bool         `json:"terminated"`
	Windows    []WindowInfo `json:"windows"`
}

// Snapshot copies the current state, windows in MRU order.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Managed:    s.Managed(),
		Cursor:     s.top,
		Focused:    s.reg.At(s.top).ID.String(),
		Cycling:    s.cycling,
		Terminated: s.done,
		Windows:    make([]WindowInfo, 0, s.Managed()),
	}
	for i := indexTop; i < s.reg.Count(); i++ {
		w := s.reg.At(i)
		snap.Windows = append(snap.Windows, WindowInfo{
			Slot:    i,
			ID:      w.ID.String(),
			Shape:   w.Shape.String(),
			Offset:  w.Offset,
			Visible: w.Visible(),
		})
	}
	return snap
}
