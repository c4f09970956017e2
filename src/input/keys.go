// Package input synthesizes key presses and mouse clicks. Every key or
// button it presses is tracked and released again, even when the action
// between press and release fails.
package input

import (
	"fmt"
	"strings"
)

// Key is a named key and the injector code that presses it.
type Key struct {
	Name string
	Code string
}

func (k Key) String() string { return k.Name }

// Modifier is a bitmask of modifier keys.
type Modifier uint8

const (
	LShift Modifier = 1 << iota
	LCtrl
	LAlt
	LWin
	RShift
	RCtrl
	RAlt
	RWin

	None Modifier = 0

	Shift = LShift
	Ctrl  = LCtrl
	Alt   = LAlt
	Win   = LWin
)

// modifierKeys lists the modifiers in the order they are pressed.
var modifierKeys = [...]struct {
	mod Modifier
	key Key
}{
	{LShift, Key{"LSHIFT", "lshift"}},
	{LCtrl, Key{"LCTRL", "lctrl"}},
	{LAlt, Key{"LALT", "lalt"}},
	{LWin, Key{"LWIN", "lcmd"}},
	{RShift, Key{"RSHIFT", "rshift"}},
	{RCtrl, Key{"RCTRL", "rctrl"}},
	{RAlt, Key{"RALT", "ralt"}},
	{RWin, Key{"RWIN", "rcmd"}},
}

var modifierAliases = map[string]Modifier{
	"SHIFT": Shift,
	"CTRL":  Ctrl,
	"ALT":   Alt,
	"WIN":   Win,
}

// Keys expands m into its modifier keys in press order.
func (m Modifier) Keys() []Key {
	var keys []Key
	for _, mk := range modifierKeys {
		if m&mk.mod != 0 {
			keys = append(keys, mk.key)
		}
	}
	return keys
}

// Single reports whether m names exactly one modifier key.
func (m Modifier) Single() bool {
	return m != 0 && m&(m-1) == 0
}

func (m Modifier) String() string {
	if m == None {
		return "NONE"
	}
	keys := m.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return strings.Join(names, "+")
}

// ParseModifier reads a "+"-separated list such as "ctrl+shift" or
// "LSHIFT". An empty string is None.
func ParseModifier(s string) (Modifier, error) {
	var m Modifier
	for _, part := range strings.Split(s, "+") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if alias, ok := modifierAliases[name]; ok {
			m |= alias
			continue
		}
		found := false
		for _, mk := range modifierKeys {
			if mk.key.Name == name {
				m |= mk.mod
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("unknown modifier %q", part)
		}
	}
	return m, nil
}

var namedKeys = map[string]string{
	"ESC":         "esc",
	"BACKSPACE":   "backspace",
	"TAB":         "tab",
	"ENTER":       "enter",
	"SPACE":       "space",
	"DELETE":      "delete",
	"INSERT":      "insert",
	"HOME":        "home",
	"END":         "end",
	"PAGEUP":      "pageup",
	"PAGEDOWN":    "pagedown",
	"UP":          "up",
	"DOWN":        "down",
	"LEFT":        "left",
	"RIGHT":       "right",
	"CAPSLOCK":    "capslock",
	"NUMLOCK":     "num_lock",
	"PRINTSCREEN": "printscreen",
	"APPLICATION": "menu",

	"HYPHEN":             "-",
	"HAT":                "=",
	"ATMARK":             "[",
	"LEFTSQUAREBRACKET":  "]",
	"RIGHTSQUAREBRACKET": "\\",
	"COLON":              "'",
	"SEMICOLON":          ";",
	"COMMA":              ",",
	"PERIOD":             ".",
	"SLASH":              "/",
	"ZENKAKU":            "`",

	"NUM_MULTIPLY": "num*",
	"NUM_PLUS":     "num+",
	"NUM_MINUS":    "num-",
	"NUM_DIVIDE":   "num/",
	"NUM_PERIOD":   "num.",
	"NUM_ENTER":    "num_enter",
}

var digitNames = [...]string{"ZERO", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE"}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		namedKeys[string(c)] = strings.ToLower(string(c))
	}
	for i, name := range digitNames {
		d := fmt.Sprint(i)
		namedKeys[name] = d
		namedKeys[d] = d
		namedKeys["NUM_"+d] = "num" + d
	}
	for i := 1; i <= 12; i++ {
		namedKeys[fmt.Sprintf("F%d", i)] = fmt.Sprintf("f%d", i)
	}
}

// KeyByName looks a key up case-insensitively, for example "Enter",
// "NUM_0", "F5" or "Slash".
func KeyByName(name string) (Key, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	code, ok := namedKeys[upper]
	if !ok {
		return Key{}, false
	}
	return Key{Name: upper, Code: code}, true
}

// MustKey is KeyByName for names known at compile time.
func MustKey(name string) Key {
	k, ok := KeyByName(name)
	if !ok {
		panic(fmt.Sprintf("input: unknown key %q", name))
	}
	return k
}
