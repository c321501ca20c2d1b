//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/minwm/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Display interface.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger

	pumpOnce sync.Once
	events   chan xEventOrError
}

var _ Display = (*LinuxBackend)(nil)

type xEventOrError struct {
	event xgb.Event
	err   xgb.Error
}

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{
		conn:   conn,
		logger: logger,
		events: make(chan xEventOrError),
	}
}

// NewLinuxBackendFromDisplay opens the named display, takes ownership of the
// root window and returns a backend ready for use by the window manager.
func NewLinuxBackendFromDisplay(display string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM(); err != nil {
		conn.Close()
		return nil, err
	}
	return NewLinuxBackend(conn, logger), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Screen describes the managed screen.
func (b *LinuxBackend) Screen() Screen {
	width, height := b.conn.ScreenSize()
	return Screen{
		Root:     WindowID(b.conn.Root),
		Colormap: Colormap(b.conn.DefaultColormap()),
		Width:    width,
		Height:   height,
	}
}

// QueryTopLevelChildren lists the root window's children.
func (b *LinuxBackend) QueryTopLevelChildren() ([]WindowID, error) {
	children, err := b.conn.Children()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, 0, len(children))
	for _, child := range children {
		ids = append(ids, WindowID(child))
	}
	return ids, nil
}

// GetAttributes returns geometry, colormap, override-redirect and parent.
func (b *LinuxBackend) GetAttributes(windowID WindowID) (Attributes, error) {
	attr, err := b.conn.Attributes(xproto.Window(windowID))
	if err != nil {
		return Attributes{}, err
	}
	return Attributes{
		X:                attr.X,
		Y:                attr.Y,
		Width:            attr.Width,
		Height:           attr.Height,
		Colormap:         Colormap(attr.Colormap),
		OverrideRedirect: attr.OverrideRedirect,
		Parent:           WindowID(attr.Parent),
	}, nil
}

// ConfigureGeometry applies the masked fields of geom.
func (b *LinuxBackend) ConfigureGeometry(windowID WindowID, geom Geometry) error {
	mask, values := configureValues(geom)
	if mask == 0 {
		return nil
	}
	return b.conn.Configure(xproto.Window(windowID), mask, values)
}

// configureValues encodes geom in protocol order. Coordinates are signed on
// the wire, so negative offsets survive the uint32 conversion.
func configureValues(geom Geometry) (uint16, []uint32) {
	var mask uint16
	var values []uint32
	if geom.Mask&ConfigX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(int32(geom.X)))
	}
	if geom.Mask&ConfigY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(int32(geom.Y)))
	}
	if geom.Mask&ConfigWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(geom.Width))
	}
	if geom.Mask&ConfigHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(geom.Height))
	}
	if geom.Mask&ConfigBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(geom.BorderWidth))
	}
	return mask, values
}

// MapWindow maps a window.
func (b *LinuxBackend) MapWindow(windowID WindowID) error {
	return b.conn.Map(xproto.Window(windowID))
}

// RaiseWindow stacks a window on top.
func (b *LinuxBackend) RaiseWindow(windowID WindowID) error {
	return b.conn.Raise(xproto.Window(windowID))
}

// SetInputFocus focuses a window.
func (b *LinuxBackend) SetInputFocus(windowID WindowID) error {
	return b.conn.Focus(xproto.Window(windowID))
}

// InstallColormap installs a colormap.
func (b *LinuxBackend) InstallColormap(colormap Colormap) error {
	return b.conn.InstallColormap(xproto.Colormap(colormap))
}

// SendKey forwards a key event to a client unchanged.
func (b *LinuxBackend) SendKey(target WindowID, ev KeyEvent) error {
	if len(ev.Raw) == 0 {
		return fmt.Errorf("key event for keycode %d has no wire encoding", ev.Code)
	}
	return b.conn.SendRaw(xproto.Window(target), ev.Raw)
}

// SendClose requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) SendClose(target WindowID) error {
	if !b.conn.SupportsDelete(xproto.Window(target)) {
		b.logger.Debug("window does not advertise WM_DELETE_WINDOW", "window", target)
	}
	return b.conn.RequestClose(xproto.Window(target))
}

// GrabKey grabs a key combination on the root window.
func (b *LinuxBackend) GrabKey(code Keycode, mods ModMask) error {
	return b.conn.GrabKey(xproto.Keycode(code), uint16(mods))
}

// TranslateKeysym maps a keysym name to the keycodes that produce it.
func (b *LinuxBackend) TranslateKeysym(keysym string) ([]Keycode, error) {
	codes := b.conn.Keycodes(keysym)
	out := make([]Keycode, 0, len(codes))
	for _, code := range codes {
		out = append(out, Keycode(code))
	}
	return out, nil
}

// NextEvent blocks until the next event the window manager handles arrives
// or ctx is done. X protocol errors and uninteresting events are logged and
// skipped.
func (b *LinuxBackend) NextEvent(ctx context.Context) (Event, error) {
	b.pumpOnce.Do(func() {
		go b.pump()
	})
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ee, ok := <-b.events:
			if !ok {
				return nil, fmt.Errorf("x11 connection closed")
			}
			if ee.err != nil {
				b.logger.Debug("x11 error", "error", ee.err)
				continue
			}
			if ev := translateEvent(ee.event); ev != nil {
				return ev, nil
			}
		}
	}
}

// pump reads the connection on its own goroutine. Events are still handled
// one at a time by whoever calls NextEvent.
func (b *LinuxBackend) pump() {
	defer close(b.events)
	for {
		ev, err := b.conn.XUtil.Conn().WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		b.events <- xEventOrError{event: ev, err: err}
	}
}

func translateEvent(ev xgb.Event) Event {
	switch e := ev.(type) {
	case xproto.FocusInEvent:
		return FocusChanged{Mode: FocusMode(e.Mode)}
	case xproto.FocusOutEvent:
		return FocusChanged{Mode: FocusMode(e.Mode)}
	case xproto.ConfigureRequestEvent:
		return GeometryRequested{
			Window:   WindowID(e.Window),
			Geometry: geometryFromRequest(e),
		}
	case xproto.ColormapNotifyEvent:
		return ColormapChanged{Window: WindowID(e.Window)}
	case xproto.MapRequestEvent:
		return WindowMapRequested{Window: WindowID(e.Window)}
	case xproto.KeyPressEvent:
		return KeyDown{KeyEvent{Code: Keycode(e.Detail), State: ModMask(e.State), Raw: e.Bytes()}}
	case xproto.KeyReleaseEvent:
		raw := e.Bytes()
		// The release event encodes through the press type; restore its code.
		raw[0] = xproto.KeyRelease
		return KeyUp{KeyEvent{Code: Keycode(e.Detail), State: ModMask(e.State), Raw: raw}}
	case xproto.UnmapNotifyEvent:
		return WindowUnmapped{Window: WindowID(e.Window)}
	}
	return nil
}

// geometryFromRequest keeps the position, size and border fields of a
// configure request. Sibling and stack mode are dropped.
func geometryFromRequest(e xproto.ConfigureRequestEvent) Geometry {
	var mask ConfigMask
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= ConfigX
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= ConfigY
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= ConfigWidth
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= ConfigHeight
	}
	if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		mask |= ConfigBorderWidth
	}
	return Geometry{
		Mask:        mask,
		X:           int(e.X),
		Y:           int(e.Y),
		Width:       int(e.Width),
		Height:      int(e.Height),
		BorderWidth: int(e.BorderWidth),
	}
}
