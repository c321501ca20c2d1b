package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/minwm/internal/hotkeys"
	"github.com/1broseidon/minwm/internal/platform"
	"github.com/stretchr/testify/require"
)

const (
	screenWidth  = 1920
	screenHeight = 1080

	rootID       platform.WindowID = 1
	rootColormap platform.Colormap = 100

	codeTab   platform.Keycode = 23
	codeEsc   platform.Keycode = 9
	codeTilde platform.Keycode = 49
	codeAlt   platform.Keycode = 64
	code1     platform.Keycode = 10
	code2     platform.Keycode = 11
	code3     platform.Keycode = 12
	code4     platform.Keycode = 13
	codeA     platform.Keycode = 38
)

var errGone = errors.New("BadWindow")

// call is one recorded display request.
type call struct {
	Op       string
	Window   platform.WindowID
	Geometry platform.Geometry
	Colormap platform.Colormap
}

func (c call) String() string {
	if c.Op == "colormap" {
		return fmt.Sprintf("colormap(%d)", c.Colormap)
	}
	return fmt.Sprintf("%s(%s)", c.Op, c.Window)
}

// fakeDisplay records requests and keeps just enough window state to answer
// attribute queries.
type fakeDisplay struct {
	windows  map[platform.WindowID]*platform.Attributes
	children []platform.WindowID
	calls    []call
	grabs    int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{windows: make(map[platform.WindowID]*platform.Attributes)}
}

// addWindow creates a root-parented window at x with colormap cm.
func (f *fakeDisplay) addWindow(id platform.WindowID, x int, cm platform.Colormap) {
	f.windows[id] = &platform.Attributes{X: x, Y: 0, Width: 400, Height: 300, Colormap: cm, Parent: rootID}
	f.children = append(f.children, id)
}

func (f *fakeDisplay) destroy(id platform.WindowID) {
	delete(f.windows, id)
}

func (f *fakeDisplay) reset() {
	f.calls = nil
}

func (f *fakeDisplay) x(id platform.WindowID) int {
	return f.windows[id].X
}

func (f *fakeDisplay) record(c call) {
	f.calls = append(f.calls, c)
}

func (f *fakeDisplay) Screen() platform.Screen {
	return platform.Screen{Root: rootID, Colormap: rootColormap, Width: screenWidth, Height: screenHeight}
}

func (f *fakeDisplay) QueryTopLevelChildren() ([]platform.WindowID, error) {
	return append([]platform.WindowID(nil), f.children...), nil
}

func (f *fakeDisplay) GetAttributes(id platform.WindowID) (platform.Attributes, error) {
	attr, ok := f.windows[id]
	if !ok {
		return platform.Attributes{}, errGone
	}
	return *attr, nil
}

func (f *fakeDisplay) ConfigureGeometry(id platform.WindowID, geom platform.Geometry) error {
	f.record(call{Op: "configure", Window: id, Geometry: geom})
	attr, ok := f.windows[id]
	if !ok {
		return errGone
	}
	if geom.Mask&platform.ConfigX != 0 {
		attr.X = geom.X
	}
	if geom.Mask&platform.ConfigY != 0 {
		attr.Y = geom.Y
	}
	if geom.Mask&platform.ConfigWidth != 0 {
		attr.Width = geom.Width
	}
	if geom.Mask&platform.ConfigHeight != 0 {
		attr.Height = geom.Height
	}
	return nil
}

func (f *fakeDisplay) MapWindow(id platform.WindowID) error {
	f.record(call{Op: "map", Window: id})
	return nil
}

func (f *fakeDisplay) RaiseWindow(id platform.WindowID) error {
	f.record(call{Op: "raise", Window: id})
	return nil
}

func (f *fakeDisplay) SetInputFocus(id platform.WindowID) error {
	f.record(call{Op: "focus", Window: id})
	return nil
}

func (f *fakeDisplay) InstallColormap(cm platform.Colormap) error {
	f.record(call{Op: "colormap", Colormap: cm})
	return nil
}

func (f *fakeDisplay) SendKey(target platform.WindowID, ev platform.KeyEvent) error {
	f.record(call{Op: "key", Window: target})
	return nil
}

func (f *fakeDisplay) SendClose(target platform.WindowID) error {
	f.record(call{Op: "close", Window: target})
	return nil
}

func (f *fakeDisplay) GrabKey(code platform.Keycode, mods platform.ModMask) error {
	f.grabs++
	return nil
}

func (f *fakeDisplay) TranslateKeysym(keysym string) ([]platform.Keycode, error) {
	return nil, nil
}

func (f *fakeDisplay) NextEvent(ctx context.Context) (platform.Event, error) {
	return nil, io.EOF
}

func (f *fakeDisplay) ops() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.String())
	}
	return out
}

func testKeys() *hotkeys.Table {
	return hotkeys.NewTable(map[hotkeys.Key]platform.Keycode{
		hotkeys.KeyCycle:           codeTab,
		hotkeys.KeyClose:           codeEsc,
		hotkeys.KeyCycleShape:      codeTilde,
		hotkeys.KeyVirtualModifier: codeAlt,
		hotkeys.KeySwitchLeft:      code1,
		hotkeys.KeySwitchRight:     code2,
		hotkeys.KeyMoveLeft:        code3,
		hotkeys.KeyMoveRight:       code4,
	})
}

func newTestSession(t *testing.T, d *fakeDisplay, capacity int) *Session {
	t.Helper()
	s, err := New(d, testKeys(), Options{
		Capacity: capacity,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return s
}

// mapWindows creates and maps windows in order, so the last one ends up in
// slot 1.
func mapWindows(t *testing.T, s *Session, d *fakeDisplay, ids ...platform.WindowID) {
	t.Helper()
	for i, id := range ids {
		d.addWindow(id, 10*i, platform.Colormap(200+id))
		require.NoError(t, s.HandleEvent(platform.WindowMapRequested{Window: id}))
	}
}

func keyDown(code platform.Keycode) platform.Event {
	return platform.KeyDown{KeyEvent: platform.KeyEvent{Code: code}}
}

func keyUp(code platform.Keycode) platform.Event {
	return platform.KeyUp{KeyEvent: platform.KeyEvent{Code: code}}
}

func offsets(s *Session) []int {
	out := make([]int, 0, s.Registry().Count()-1)
	for i := 1; i < s.Registry().Count(); i++ {
		out = append(out, s.Registry().At(i).Offset)
	}
	return out
}
