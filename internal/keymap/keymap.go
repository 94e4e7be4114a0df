// Package keymap binds keyboard shortcuts to drawing intents.
package keymap

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/stroke"
	"golang.org/x/mobile/event/key"
)

const modMask = key.ModShift | key.ModControl | key.ModAlt | key.ModMeta

// Shortcut is a key press with modifiers. Rune is always lower case.
type Shortcut struct {
	Rune      rune
	Modifiers key.Modifiers
}

// ParseShortcut reads forms like "ctrl+z", "ctrl+shift+z" or "e".
func ParseShortcut(s string) (Shortcut, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	var sc Shortcut
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			r, size := utf8.DecodeRuneInString(p)
			if r == utf8.RuneError || size != len(p) {
				return Shortcut{}, fmt.Errorf("invalid shortcut %q: key must be a single character", s)
			}
			sc.Rune = r
			break
		}
		switch p {
		case "ctrl", "control":
			sc.Modifiers |= key.ModControl
		case "shift":
			sc.Modifiers |= key.ModShift
		case "alt":
			sc.Modifiers |= key.ModAlt
		case "meta", "super", "cmd":
			sc.Modifiers |= key.ModMeta
		default:
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: unknown modifier %q", s, p)
		}
	}
	return sc, nil
}

func (s Shortcut) String() string {
	var b strings.Builder
	if s.Modifiers&key.ModControl != 0 {
		b.WriteString("ctrl+")
	}
	if s.Modifiers&key.ModAlt != 0 {
		b.WriteString("alt+")
	}
	if s.Modifiers&key.ModShift != 0 {
		b.WriteString("shift+")
	}
	if s.Modifiers&key.ModMeta != 0 {
		b.WriteString("meta+")
	}
	b.WriteRune(s.Rune)
	return b.String()
}

// FromEvent derives the shortcut for a key event. Letters are recognised by
// key code as well, since some drivers report control characters as the rune
// while a modifier is held.
func FromEvent(e key.Event) Shortcut {
	r := e.Rune
	if e.Code >= key.CodeA && e.Code <= key.CodeZ {
		r = 'a' + rune(e.Code-key.CodeA)
	}
	return Shortcut{Rune: unicode.ToLower(r), Modifiers: e.Modifiers & modMask}
}

// Commands maps binding names, as used in the config file, to the intent they
// produce.
var Commands = map[string]action.Action{
	"undo":   {Kind: action.Undo},
	"redo":   {Kind: action.Redo},
	"export": {Kind: action.Export},
	"clear":  {Kind: action.Clear},
	"copy":   {Kind: action.Copy},
	"pen":    {Kind: action.SelectTool, Tool: stroke.Pen},
	"eraser": {Kind: action.SelectTool, Tool: stroke.Eraser},
}

// Keymap resolves shortcuts to named commands.
type Keymap struct {
	bindings map[Shortcut]string
}

// Default returns the built-in bindings.
func Default() *Keymap {
	km := &Keymap{bindings: map[Shortcut]string{}}
	for name, spec := range map[string]string{
		"undo":   "ctrl+z",
		"redo":   "ctrl+y",
		"export": "ctrl+s",
		"clear":  "ctrl+k",
		"copy":   "ctrl+c",
		"pen":    "p",
		"eraser": "e",
	} {
		if err := km.Bind(name, spec); err != nil {
			panic(err)
		}
	}
	return km
}

// Bind assigns spec to the named command, replacing any previous shortcut for
// that command and any command previously bound to spec.
func (k *Keymap) Bind(name, spec string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := Commands[name]; !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	sc, err := ParseShortcut(spec)
	if err != nil {
		return err
	}
	if k.bindings == nil {
		k.bindings = map[Shortcut]string{}
	}
	for existing, n := range k.bindings {
		if n == name {
			delete(k.bindings, existing)
		}
	}
	k.bindings[sc] = name
	return nil
}

// Apply binds every entry of overrides, stopping at the first error.
func (k *Keymap) Apply(overrides map[string]string) error {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := k.Bind(name, overrides[name]); err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
	}
	return nil
}

// Lookup returns the intent bound to a key press. Releases never match. A
// press with only Shift held also matches the unshifted binding.
func (k *Keymap) Lookup(e key.Event) (action.Action, bool) {
	if e.Direction == key.DirRelease {
		return action.Action{}, false
	}
	sc := FromEvent(e)
	name, ok := k.bindings[sc]
	if !ok && sc.Modifiers == key.ModShift {
		// Caps and shifted letters fall back to the bare key.
		name, ok = k.bindings[Shortcut{Rune: sc.Rune}]
	}
	if !ok {
		return action.Action{}, false
	}
	return Commands[name], true
}

// Binding is one shortcut and the command it triggers.
type Binding struct {
	Command  string
	Shortcut Shortcut
}

// Bindings lists the current bindings ordered by command name.
func (k *Keymap) Bindings() []Binding {
	out := make([]Binding, 0, len(k.bindings))
	for sc, name := range k.bindings {
		out = append(out, Binding{Command: name, Shortcut: sc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Command < out[j].Command })
	return out
}
