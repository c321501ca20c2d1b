package hotkeys

import (
	"fmt"
	"sort"

	"github.com/1broseidon/minwm/internal/platform"
	"github.com/hashicorp/go-multierror"
)

// Key is a logical key of the window manager's shortcut table.
type Key int

const (
	KeyCycle Key = iota
	KeyClose
	KeyCycleShape
	KeyVirtualModifier
	KeySwitchLeft
	KeySwitchRight
	KeyMoveLeft
	KeyMoveRight
)

// String returns the string representation of the key
func (k Key) String() string {
	switch k {
	case KeyCycle:
		return "cycle"
	case KeyClose:
		return "close"
	case KeyCycleShape:
		return "cycle-shape"
	case KeyVirtualModifier:
		return "virtual-modifier"
	case KeySwitchLeft:
		return "switch-left"
	case KeySwitchRight:
		return "switch-right"
	case KeyMoveLeft:
		return "move-left"
	case KeyMoveRight:
		return "move-right"
	default:
		return "unknown"
	}
}

// MarshalText encodes the key by name.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FormatMods renders a modifier mask the way keysym strings spell it, for
// example "Mod1-Mod2". An empty mask renders as "none".
func FormatMods(m platform.ModMask) string {
	names := []struct {
		mask platform.ModMask
		name string
	}{
		{platform.ModMaskShift, "Shift"},
		{platform.ModMaskLock, "Lock"},
		{platform.ModMaskControl, "Control"},
		{platform.ModMask1, "Mod1"},
		{platform.ModMask2, "Mod2"},
	}
	out := ""
	for _, n := range names {
		if m&n.mask == 0 {
			continue
		}
		if out != "" {
			out += "-"
		}
		out += n.name
	}
	if out == "" {
		return "none"
	}
	return out
}

// Binding ties a logical key to a keysym and the modifiers it is grabbed with.
type Binding struct {
	Key    Key              `yaml:"key" json:"key"`
	Keysym string           `yaml:"keysym" json:"keysym"`
	Mods   platform.ModMask `yaml:"mods" json:"mods"`
}

// LockMask is the extra modifier each binding is also grabbed with, so the
// shortcuts keep working with NumLock on.
const LockMask = platform.ModMask2

// DefaultBindings returns the fixed shortcut table. The modifier key itself
// is grabbed without a mask so its release can be seen.
func DefaultBindings() []Binding {
	return []Binding{
		{Key: KeyCycle, Keysym: "Tab", Mods: platform.ModMask1},
		{Key: KeyClose, Keysym: "Escape", Mods: platform.ModMask1},
		{Key: KeyCycleShape, Keysym: "asciitilde", Mods: platform.ModMask1},
		{Key: KeyVirtualModifier, Keysym: "Alt_L", Mods: 0},
		{Key: KeySwitchLeft, Keysym: "1", Mods: platform.ModMask1},
		{Key: KeySwitchRight, Keysym: "2", Mods: platform.ModMask1},
		{Key: KeyMoveLeft, Keysym: "3", Mods: platform.ModMask1},
		{Key: KeyMoveRight, Keysym: "4", Mods: platform.ModMask1},
	}
}

// Translator maps keysym names to keycodes.
type Translator interface {
	TranslateKeysym(keysym string) ([]platform.Keycode, error)
}

// Grabber registers passive key grabs.
type Grabber interface {
	GrabKey(code platform.Keycode, mods platform.ModMask) error
}

type grab struct {
	code platform.Keycode
	mods platform.ModMask
	key  Key
}

// Table is a shortcut table resolved against the current keymap.
type Table struct {
	grabs      []grab
	byCode     map[platform.Keycode]Key
	unresolved []Key
}

// Resolve translates every binding's keysym to keycodes. Bindings whose
// keysym is missing from the keymap are recorded in Unresolved and never
// grabbed.
func Resolve(tr Translator, bindings []Binding) (*Table, error) {
	t := &Table{byCode: make(map[platform.Keycode]Key)}
	for _, b := range bindings {
		codes, err := tr.TranslateKeysym(b.Keysym)
		if err != nil {
			return nil, fmt.Errorf("failed to translate keysym %q: %w", b.Keysym, err)
		}
		if len(codes) == 0 {
			t.unresolved = append(t.unresolved, b.Key)
			continue
		}
		for _, code := range codes {
			if _, taken := t.byCode[code]; taken {
				continue
			}
			t.byCode[code] = b.Key
			t.grabs = append(t.grabs, grab{code: code, mods: b.Mods, key: b.Key})
		}
	}
	return t, nil
}

// NewTable builds a table from explicit keycodes, bypassing translation.
func NewTable(codes map[Key]platform.Keycode) *Table {
	t := &Table{byCode: make(map[platform.Keycode]Key, len(codes))}
	mods := make(map[Key]platform.ModMask)
	for _, b := range DefaultBindings() {
		mods[b.Key] = b.Mods
	}
	keys := make([]Key, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		code := codes[k]
		t.byCode[code] = k
		t.grabs = append(t.grabs, grab{code: code, mods: mods[k], key: k})
	}
	return t
}

// Lookup returns the logical key for a keycode.
func (t *Table) Lookup(code platform.Keycode) (Key, bool) {
	if t == nil {
		return 0, false
	}
	k, ok := t.byCode[code]
	return k, ok
}

// Unresolved lists keys with no keycode in the current keymap.
func (t *Table) Unresolved() []Key {
	return append([]Key(nil), t.unresolved...)
}

// Grab registers every binding twice: with its own modifiers and with
// LockMask added. All grabs are attempted; failures are aggregated.
func (t *Table) Grab(g Grabber) error {
	var result *multierror.Error
	for _, gr := range t.grabs {
		for _, mods := range []platform.ModMask{gr.mods, gr.mods | LockMask} {
			if err := g.GrabKey(gr.code, mods); err != nil {
				result = multierror.Append(result, fmt.Errorf("unable to grab %s (keycode %d, mods %#x): %w", gr.key, gr.code, mods, err))
			}
		}
	}
	return result.ErrorOrNil()
}
