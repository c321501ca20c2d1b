package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowAttributes is the merged result of the attribute, geometry and tree
// queries for a single window.
type WindowAttributes struct {
	X                int
	Y                int
	Width            int
	Height           int
	Colormap         xproto.Colormap
	OverrideRedirect bool
	Parent           xproto.Window
}

// Children returns the direct children of the root window in stacking order.
func (c *Connection) Children() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query root tree: %w", err)
	}
	return tree.Children, nil
}

// Attributes queries the attributes, geometry and parent of a window. The
// three requests are issued before any reply is awaited.
func (c *Connection) Attributes(windowID xproto.Window) (WindowAttributes, error) {
	conn := c.XUtil.Conn()
	attrCookie := xproto.GetWindowAttributes(conn, windowID)
	geomCookie := xproto.GetGeometry(conn, xproto.Drawable(windowID))
	treeCookie := xproto.QueryTree(conn, windowID)

	attr, err := attrCookie.Reply()
	if err != nil {
		return WindowAttributes{}, fmt.Errorf("get attributes of 0x%x: %w", windowID, err)
	}
	geom, err := geomCookie.Reply()
	if err != nil {
		return WindowAttributes{}, fmt.Errorf("get geometry of 0x%x: %w", windowID, err)
	}
	tree, err := treeCookie.Reply()
	if err != nil {
		return WindowAttributes{}, fmt.Errorf("query tree of 0x%x: %w", windowID, err)
	}

	return WindowAttributes{
		X:                int(geom.X),
		Y:                int(geom.Y),
		Width:            int(geom.Width),
		Height:           int(geom.Height),
		Colormap:         attr.Colormap,
		OverrideRedirect: attr.OverrideRedirect,
		Parent:           tree.Parent,
	}, nil
}

// Configure sends a ConfigureWindow request. values must be ordered by
// ascending mask bit, as the protocol requires.
func (c *Connection) Configure(windowID xproto.Window, mask uint16, values []uint32) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
}

// Map maps a window and asks to be told about its colormap changes.
func (c *Connection) Map(windowID xproto.Window) error {
	conn := c.XUtil.Conn()
	// Selecting on a client window only changes this connection's mask.
	xproto.ChangeWindowAttributes(conn, windowID, xproto.CwEventMask,
		[]uint32{xproto.EventMaskColorMapChange})
	return xproto.MapWindowChecked(conn, windowID).Check()
}

// Raise stacks a window above its siblings.
func (c *Connection) Raise(windowID xproto.Window) error {
	return c.Configure(windowID, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// Focus gives a window the input focus and publishes it as the EWMH active
// window so pagers and taskbars can follow along.
func (c *Connection) Focus(windowID xproto.Window) error {
	err := xproto.SetInputFocusChecked(
		c.XUtil.Conn(),
		xproto.InputFocusPointerRoot,
		windowID,
		xproto.TimeCurrentTime,
	).Check()
	if err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, windowID)
}

// InstallColormap installs a colormap. The None colormap is ignored.
func (c *Connection) InstallColormap(colormap xproto.Colormap) error {
	if colormap == 0 {
		return nil
	}
	return xproto.InstallColormapChecked(c.XUtil.Conn(), colormap).Check()
}

// SupportsDelete reports whether a window lists WM_DELETE_WINDOW in its
// WM_PROTOCOLS property.
func (c *Connection) SupportsDelete(windowID xproto.Window) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			return true
		}
	}
	return false
}

// RequestClose asks a client to close a window via WM_DELETE_WINDOW.
func (c *Connection) RequestClose(windowID xproto.Window) error {
	conn := c.XUtil.Conn()
	deleteReply, err := xproto.InternAtom(conn, false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	if err != nil {
		return err
	}
	protocolsReply, err := xproto.InternAtom(conn, false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteReply.Atom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		conn,
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// SendRaw delivers an already encoded event to a window, propagating it up
// the tree like a key event delivered by the server.
func (c *Connection) SendRaw(windowID xproto.Window, raw []byte) error {
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		true,
		windowID,
		xproto.EventMaskNoEvent,
		string(raw),
	).Check()
}
