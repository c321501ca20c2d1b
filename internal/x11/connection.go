package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrAnotherWM is returned by BecomeWM when substructure redirection on the
// root window is already owned by another client.
var ErrAnotherWM = errors.New("another window manager is already running")

// rootEventMask is selected on the root window to receive map, configure,
// unmap and focus notifications for top-level windows.
const rootEventMask = xproto.EventMaskPropertyChange |
	xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskFocusChange

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	screen *xproto.ScreenInfo
}

// NewConnection connects to the named X display ("" means $DISPLAY) and
// initializes the keyboard mapping used for keysym translation.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for keysym lookups)
	keybind.Initialize(xu)

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		screen: xu.Screen(),
	}, nil
}

// BecomeWM selects substructure redirection on the root window.
func (c *Connection) BecomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(),
		c.Root,
		xproto.CwEventMask,
		[]uint32{rootEventMask},
	).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrAnotherWM
		}
		return fmt.Errorf("failed to select root events: %w", err)
	}
	return nil
}

// ScreenSize returns the root window size in pixels.
func (c *Connection) ScreenSize() (width, height int) {
	return int(c.screen.WidthInPixels), int(c.screen.HeightInPixels)
}

// DefaultColormap returns the default colormap of the managed screen.
func (c *Connection) DefaultColormap() xproto.Colormap {
	return c.screen.DefaultColormap
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
