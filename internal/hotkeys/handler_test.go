package hotkeys

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestMatchesChordDistinguishesShift(t *testing.T) {
	tab := xproto.Keycode(23)
	next := chordBinding{mods: xproto.ModMask4, keycodes: []xproto.Keycode{tab}}
	prev := chordBinding{mods: xproto.ModMask4 | xproto.ModMaskShift, keycodes: []xproto.Keycode{tab}}

	tests := []struct {
		name      string
		state     uint16
		wantsNext bool
		wantsPrev bool
	}{
		{"modifier only", xproto.ModMask4, true, false},
		{"modifier plus shift", xproto.ModMask4 | xproto.ModMaskShift, false, true},
		{"no modifier", 0, false, false},
		{"shift only", xproto.ModMaskShift, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesChord(tab, tt.state, next); got != tt.wantsNext {
				t.Errorf("next match = %v, want %v", got, tt.wantsNext)
			}
			if got := matchesChord(tab, tt.state, prev); got != tt.wantsPrev {
				t.Errorf("prev match = %v, want %v", got, tt.wantsPrev)
			}
		})
	}
}

func TestMatchesChordToleratesLockBits(t *testing.T) {
	tab := xproto.Keycode(23)
	next := chordBinding{mods: xproto.ModMask4, keycodes: []xproto.Keycode{tab}}

	state := uint16(xproto.ModMask4 | xproto.ModMaskLock | xproto.ModMask2)
	if !matchesChord(tab, state, next) {
		t.Error("expected chord to match with caps/num lock held")
	}
}

func TestMatchesKeyIgnoresState(t *testing.T) {
	kill := chordBinding{keycodes: []xproto.Keycode{40}}

	if !matchesKey(40, kill) {
		t.Error("expected keycode 40 to match")
	}
	if matchesKey(41, kill) {
		t.Error("expected keycode 41 not to match")
	}
}
