package platform

import (
	"context"
	"fmt"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// String formats the id the way X tools print window ids.
func (w WindowID) String() string {
	return fmt.Sprintf("0x%x", uint32(w))
}

// Colormap identifies a colormap owned by the display server.
type Colormap uint32

// Keycode is a hardware key code as reported by the display server.
type Keycode uint8

// ModMask is a modifier mask. Bit values follow the X11 core protocol.
type ModMask uint16

const (
	ModMaskShift   ModMask = 1 << 0
	ModMaskLock    ModMask = 1 << 1
	ModMaskControl ModMask = 1 << 2
	ModMask1       ModMask = 1 << 3 // Alt on most keymaps
	ModMask2       ModMask = 1 << 4 // NumLock on most keymaps
)

// ConfigMask selects which Geometry fields a configure request carries.
// Bit values follow the X11 core protocol.
type ConfigMask uint16

const (
	ConfigX           ConfigMask = 1 << 0
	ConfigY           ConfigMask = 1 << 1
	ConfigWidth       ConfigMask = 1 << 2
	ConfigHeight      ConfigMask = 1 << 3
	ConfigBorderWidth ConfigMask = 1 << 4

	ConfigRect = ConfigX | ConfigY | ConfigWidth | ConfigHeight
)

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Geometry is a partial window geometry change. Only the fields named in
// Mask are applied.
type Geometry struct {
	Mask        ConfigMask
	X           int
	Y           int
	Width       int
	Height      int
	BorderWidth int
}

// GeometryFromRect builds a configure request moving and resizing a window
// to r.
func GeometryFromRect(r Rect) Geometry {
	return Geometry{
		Mask:   ConfigRect,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Attributes is the subset of window attributes the window manager reads.
type Attributes struct {
	X                int
	Y                int
	Width            int
	Height           int
	Colormap         Colormap
	OverrideRedirect bool
	Parent           WindowID
}

// Screen describes the single screen being managed.
type Screen struct {
	Root     WindowID
	Colormap Colormap
	Width    int
	Height   int
}

// Display abstracts the display server operations the window manager needs.
// Every call may fail for a window that has already been destroyed; callers
// treat such failures as soft and skip the dependent action.
type Display interface {
	Screen() Screen
	QueryTopLevelChildren() ([]WindowID, error)
	GetAttributes(windowID WindowID) (Attributes, error)
	ConfigureGeometry(windowID WindowID, geom Geometry) error
	MapWindow(windowID WindowID) error
	RaiseWindow(windowID WindowID) error
	SetInputFocus(windowID WindowID) error
	InstallColormap(colormap Colormap) error
	SendKey(target WindowID, ev KeyEvent) error
	SendClose(target WindowID) error
	GrabKey(code Keycode, mods ModMask) error
	TranslateKeysym(keysym string) ([]Keycode, error)
	NextEvent(ctx context.Context) (Event, error)
}
