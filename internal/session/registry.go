package session

import (
	"errors"
	"fmt"

	"github.com/1broseidon/minwm/internal/platform"
	"github.com/1broseidon/minwm/internal/tiling"
)

// DefaultCapacity bounds the registry, root slot included.
const DefaultCapacity = 256

const (
	indexRoot = 0
	indexTop  = 1
)

var (
	// ErrRegistryFull is returned when a window is inserted into a full
	// registry.
	ErrRegistryFull = errors.New("window registry is full")
	// ErrDuplicateWindow is returned when a window is inserted twice.
	ErrDuplicateWindow = errors.New("window is already managed")
)

// ManagedWindow is one registry slot.
type ManagedWindow struct {
	ID       platform.WindowID
	Colormap platform.Colormap
	Shape    tiling.Shape
	// Offset is the horizontal displacement from the visible virtual
	// screen, always a multiple of the screen width. Zero means visible.
	Offset int
}

// Visible reports whether the window sits on the virtual screen in view.
func (w ManagedWindow) Visible() bool {
	return w.Offset == 0
}

// Registry is the ordered window list. Slot 0 holds the root window and
// never moves; slots 1..Count()-1 hold managed windows, most recently used
// first.
type Registry struct {
	slots    []ManagedWindow
	capacity int
}

// NewRegistry creates a registry holding only the root. Capacities below 2
// are raised to 2 so at least one window can be managed.
func NewRegistry(root platform.WindowID, rootColormap platform.Colormap, capacity int) *Registry {
	if capacity < 2 {
		capacity = 2
	}
	slots := make([]ManagedWindow, 1, capacity)
	slots[indexRoot] = ManagedWindow{ID: root, Colormap: rootColormap}
	return &Registry{slots: slots, capacity: capacity}
}

// Count is one more than the number of managed windows.
func (r *Registry) Count() int {
	return len(r.slots)
}

// Capacity is the maximum Count.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Root returns the root slot.
func (r *Registry) Root() ManagedWindow {
	return r.slots[indexRoot]
}

// At returns a copy of the slot at index.
func (r *Registry) At(index int) ManagedWindow {
	return r.slots[index]
}

func (r *Registry) at(index int) *ManagedWindow {
	return &r.slots[index]
}

// Lookup finds a managed window. The root is never reported.
func (r *Registry) Lookup(id platform.WindowID) (int, bool) {
	for i := indexTop; i < len(r.slots); i++ {
		if r.slots[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// IndexOf is Lookup in sentinel form: it returns Count() when id is not
// managed.
func (r *Registry) IndexOf(id platform.WindowID) int {
	if i, ok := r.Lookup(id); ok {
		return i
	}
	return len(r.slots)
}

// InsertFront adds a window at slot 1 with the default shape and a zero
// offset, pushing every other managed window down by one.
func (r *Registry) InsertFront(id platform.WindowID, colormap platform.Colormap) error {
	if id == r.slots[indexRoot].ID {
		return fmt.Errorf("window %s: %w", id, ErrDuplicateWindow)
	}
	if _, ok := r.Lookup(id); ok {
		return fmt.Errorf("window %s: %w", id, ErrDuplicateWindow)
	}
	if len(r.slots) >= r.capacity {
		return fmt.Errorf("window %s (capacity %d): %w", id, r.capacity, ErrRegistryFull)
	}

	r.slots = append(r.slots, ManagedWindow{})
	copy(r.slots[indexTop+1:], r.slots[indexTop:len(r.slots)-1])
	r.slots[indexTop] = ManagedWindow{
		ID:       id,
		Colormap: colormap,
		Shape:    tiling.DefaultShape,
	}
	return nil
}

// Remove deletes the window at index and compacts the following slots.
func (r *Registry) Remove(index int) error {
	if err := r.checkManaged(index); err != nil {
		return err
	}
	copy(r.slots[index:], r.slots[index+1:])
	r.slots[len(r.slots)-1] = ManagedWindow{}
	r.slots = r.slots[:len(r.slots)-1]
	return nil
}

// PromoteToFront moves the window at index to slot 1, shifting slots
// 1..index-1 down by one.
func (r *Registry) PromoteToFront(index int) error {
	if err := r.checkManaged(index); err != nil {
		return err
	}
	w := r.slots[index]
	copy(r.slots[indexTop+1:index+1], r.slots[indexTop:index])
	r.slots[indexTop] = w
	return nil
}

// IDs returns the window ids in slot order, root first.
func (r *Registry) IDs() []platform.WindowID {
	ids := make([]platform.WindowID, len(r.slots))
	for i, w := range r.slots {
		ids[i] = w.ID
	}
	return ids
}

func (r *Registry) checkManaged(index int) error {
	if index < indexTop || index >= len(r.slots) {
		return fmt.Errorf("slot %d out of range [1, %d)", index, len(r.slots))
	}
	return nil
}
