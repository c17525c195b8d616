package hotkey

import "golang.design/x/hotkey"

// Mod1 это Alt, Mod4 это Super в типичной раскладке X11.
var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"cmd":   hotkey.Mod4,
}
