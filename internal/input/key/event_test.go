package key

import "testing"

func TestEventMatches(t *testing.T) {
	enter := MustParse("Enter")

	if !NewSpecialEvent(KeyEnter, ModNone).Matches(enter) {
		t.Error("plain Enter should match Enter")
	}
	if NewSpecialEvent(KeyEnter, ModShift).Matches(enter) {
		t.Error("Shift+Enter should not match Enter")
	}
	if NewRuneEvent('x', ModNone).Matches(NewRuneEvent('y', ModNone)) {
		t.Error("different runes should not match")
	}
}

func TestEventIsChar(t *testing.T) {
	tests := []struct {
		ev   Event
		want bool
	}{
		{NewRuneEvent('a', ModNone), true},
		{NewRuneEvent('A', ModShift), true},
		{NewRuneEvent('q', ModCtrl), false},
		{NewRuneEvent('\t', ModNone), false},
		{NewSpecialEvent(KeyEnter, ModNone), false},
	}
	for _, tt := range tests {
		if got := tt.ev.IsChar(); got != tt.want {
			t.Errorf("%s.IsChar() = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestEventIs(t *testing.T) {
	if !NewSpecialEvent(KeyBackspace, ModCtrl).Is(KeyBackspace) {
		t.Error("Is should ignore modifiers")
	}
}
