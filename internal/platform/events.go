package platform

// Event is a display server notification delivered to the window manager.
type Event interface {
	isEvent()
}

// FocusMode mirrors the X11 focus notify modes.
type FocusMode uint8

const (
	FocusModeNormal FocusMode = iota
	FocusModeGrab
	FocusModeUngrab
	FocusModeWhileGrabbed
)

// KeyEvent carries a key press or release. Raw holds the encoded wire event
// so it can be forwarded to a client unchanged.
type KeyEvent struct {
	Code  Keycode
	State ModMask
	Raw   []byte
}

// FocusChanged reports a focus-in or focus-out on the root window.
type FocusChanged struct {
	Mode FocusMode
}

// GeometryRequested reports a client asking to be moved or resized.
type GeometryRequested struct {
	Window   WindowID
	Geometry Geometry
}

// ColormapChanged reports that a window's colormap attribute changed.
type ColormapChanged struct {
	Window WindowID
}

// WindowMapRequested reports a client asking to be mapped.
type WindowMapRequested struct {
	Window WindowID
}

// KeyDown reports a grabbed key press.
type KeyDown struct {
	KeyEvent
}

// KeyUp reports a grabbed key release.
type KeyUp struct {
	KeyEvent
}

// WindowUnmapped reports that a window was unmapped.
type WindowUnmapped struct {
	Window WindowID
}

func (FocusChanged) isEvent()       {}
func (GeometryRequested) isEvent()  {}
func (ColormapChanged) isEvent()    {}
func (WindowMapRequested) isEvent() {}
func (KeyDown) isEvent()            {}
func (KeyUp) isEvent()              {}
func (WindowUnmapped) isEvent()     {}
