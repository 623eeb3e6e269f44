package core

import "testing"

func TestActionDirection(t *testing.T) {
	tests := []struct {
		action   Action
		expected Direction
		ok       bool
	}{
		{ActionUp, DirUp, true},
		{ActionDown, DirDown, true},
		{ActionLeft, DirLeft, true},
		{ActionRight, DirRight, true},
		{ActionPause, DirLeft, false},
		{ActionNone, DirLeft, false},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			d, ok := tt.action.Direction()
			if d != tt.expected || ok != tt.ok {
				t.Errorf("Direction() = (%v, %v), expected (%v, %v)", d, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestInputFrame(t *testing.T) {
	var f InputFrame // zero value must be usable

	if f.Has(ActionPause) {
		t.Error("Has(Pause) on an empty frame = true")
	}
	if _, ok := f.Direction(); ok {
		t.Error("Direction() on an empty frame reported a move")
	}

	f.Set(ActionUp)
	f.Set(ActionPause)
	f.Set(ActionLeft)

	if !f.Has(ActionUp) || !f.Has(ActionPause) {
		t.Errorf("Has() lost an action: %v", f.Actions)
	}
	if d, ok := f.Direction(); !ok || d != DirLeft {
		t.Errorf("Direction() = (%v, %v), expected the last move Left", d, ok)
	}

	f.Clear()
	if f.Has(ActionUp) || f.Last != ActionNone {
		t.Errorf("Clear() left %v, last %v", f.Actions, f.Last)
	}
}
