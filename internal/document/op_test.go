package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplySequence(t *testing.T) {
	d := New()
	ops := []Op{
		NewInsert(1, "World"),
		NewEdit(0, "Hello"),
		NewInsert(2, "!"),
		NewMerge(0, 1),
		NewRemove(1),
	}

	for _, op := range ops {
		if err := d.Apply(op); err != nil {
			t.Fatalf("%s failed: %v", op, err)
		}
	}

	if diff := cmp.Diff([]string{"HelloWorld"}, d.Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyOrderMatters(t *testing.T) {
	// Both ops are valid in emission order; replaying them reversed targets a
	// block that does not exist yet.
	ops := []Op{NewInsert(1, "b"), NewEdit(1, "B")}

	d := New()
	for _, op := range ops {
		if err := d.Apply(op); err != nil {
			t.Fatalf("%s failed: %v", op, err)
		}
	}
	if diff := cmp.Diff([]string{"", "B"}, d.Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}

	r := New()
	if err := r.Apply(ops[1]); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected reversed replay to fail, got %v", err)
	}
}

func TestOpKindAndString(t *testing.T) {
	tests := []struct {
		op   Op
		kind Kind
		str  string
	}{
		{NewEdit(0, "a"), KindEdit, `Edit(0, "a")`},
		{NewInsert(1, ""), KindInsert, `Insert(1, "")`},
		{NewRemove(2), KindRemove, "Remove(2)"},
		{NewMerge(0, 1), KindMerge, "Merge(0, 1)"},
	}

	for _, tt := range tests {
		if tt.op.Kind() != tt.kind {
			t.Errorf("%s: expected kind %s, got %s", tt.str, tt.kind, tt.op.Kind())
		}
		if tt.op.String() != tt.str {
			t.Errorf("expected %q, got %q", tt.str, tt.op.String())
		}
	}
}
