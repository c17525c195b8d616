// Package trigger описывает источники запросов на анализ, не зависящие от ОС.
package trigger

import (
	"fmt"
	"strings"
)

// Известные модификаторы. Не все доступны на каждой платформе.
var modifierNames = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
	"win":     "cmd",
}

// maxFunctionKey старшая F-клавиша, которую регистрирует hotkey.Listener.
const maxFunctionKey = 12

var namedKeys = map[string]bool{
	"space": true, "return": true, "enter": true, "escape": true, "esc": true, "tab": true,
	"delete": true, "up": true, "down": true, "left": true, "right": true,
}

// Combo разобранное сочетание клавиш.
type Combo struct {
	Modifiers []string
	Key       string
}

func (c Combo) String() string {
	parts := append(append([]string{}, c.Modifiers...), c.Key)
	return strings.Join(parts, "+")
}

// ParseCombo разбирает строку вида "ctrl+shift+a" или "<cmd>+<shift>+a".
func ParseCombo(s string) (Combo, error) {
	var combo Combo
	seen := map[string]bool{}

	tokens := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, raw := range tokens {
		tok := strings.Trim(strings.TrimSpace(raw), "<>")
		if tok == "" {
			return Combo{}, fmt.Errorf("hotkey %q: empty key", s)
		}

		last := i == len(tokens)-1
		if mod, ok := modifierNames[tok]; ok && !last {
			if seen[mod] {
				return Combo{}, fmt.Errorf("hotkey %q: duplicate modifier %s", s, mod)
			}
			seen[mod] = true
			combo.Modifiers = append(combo.Modifiers, mod)
			continue
		}
		if !last {
			return Combo{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, tok)
		}
		if !validKey(tok) {
			return Combo{}, fmt.Errorf("hotkey %q: unsupported key %q", s, tok)
		}
		combo.Key = normalizeKey(tok)
	}

	if len(combo.Modifiers) == 0 {
		return Combo{}, fmt.Errorf("hotkey %q: at least one modifier is required", s)
	}
	return combo, nil
}

func validKey(k string) bool {
	if len(k) == 1 && ((k[0] >= 'a' && k[0] <= 'z') || (k[0] >= '0' && k[0] <= '9')) {
		return true
	}
	if namedKeys[k] {
		return true
	}
	var n int
	if _, err := fmt.Sscanf(k, "f%d", &n); err == nil && fmt.Sprintf("f%d", n) == k {
		return n >= 1 && n <= maxFunctionKey
	}
	return false
}

func normalizeKey(k string) string {
	switch k {
	case "enter":
		return "return"
	case "esc":
		return "escape"
	}
	return k
}
