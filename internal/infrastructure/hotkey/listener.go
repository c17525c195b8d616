// Package hotkey регистрирует глобальное сочетание клавиш через golang.design/x/hotkey.
package hotkey

import (
	"context"
	"fmt"
	"log/slog"

	"golang.design/x/hotkey"

	"screengpt/internal/trigger"
)

var keys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"space": hotkey.KeySpace, "return": hotkey.KeyReturn, "escape": hotkey.KeyEscape,
	"tab": hotkey.KeyTab, "delete": hotkey.KeyDelete,
	"up": hotkey.KeyUp, "down": hotkey.KeyDown, "left": hotkey.KeyLeft, "right": hotkey.KeyRight,
}

// Listener слушает нажатия одного сочетания.
type Listener struct {
	combo  trigger.Combo
	hk     *hotkey.Hotkey
	logger *slog.Logger
}

// NewListener переводит Combo в коды платформы. Регистрация происходит в Run.
func NewListener(combo trigger.Combo, logger *slog.Logger) (*Listener, error) {
	mods := make([]hotkey.Modifier, 0, len(combo.Modifiers))
	for _, name := range combo.Modifiers {
		mod, ok := modifiers[name]
		if !ok {
			return nil, fmt.Errorf("modifier %q is not supported on this platform", name)
		}
		mods = append(mods, mod)
	}

	key, ok := keys[combo.Key]
	if !ok {
		return nil, fmt.Errorf("key %q is not supported", combo.Key)
	}

	return &Listener{
		combo:  combo,
		hk:     hotkey.New(mods, key),
		logger: logger,
	}, nil
}

// Run регистрирует сочетание и вызывает fire на каждое нажатие до отмены ctx.
func (l *Listener) Run(ctx context.Context, fire func()) error {
	if err := l.hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w", l.combo, err)
	}
	defer func() {
		if err := l.hk.Unregister(); err != nil {
			l.logger.Warn("hotkey unregister failed", "error", err)
		}
	}()

	l.logger.Info("hotkey registered", "combo", l.combo.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.hk.Keydown():
			fire()
		}
	}
}
