package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Keycodes returns every keycode that produces the named keysym (for example
// "Tab" or "Alt_L"). It returns nil when the keymap has no such key.
func (c *Connection) Keycodes(keysym string) []xproto.Keycode {
	return keybind.StrToKeycodes(c.XUtil, keysym)
}

// GrabKey grabs a key with an exact modifier mask on the root window.
func (c *Connection) GrabKey(code xproto.Keycode, mods uint16) error {
	return xproto.GrabKeyChecked(
		c.XUtil.Conn(),
		true,
		c.Root,
		mods,
		code,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
	).Check()
}
