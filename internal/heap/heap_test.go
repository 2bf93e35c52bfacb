package heap

import (
	"testing"

	"jpamb/internal/types"
)

func TestNewHasOnlyTheNullSlot(t *testing.T) {
	h := New()
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	if h.Get(0) != nil {
		t.Error("slot 0 should be nil (the null slot)")
	}
}

func TestInsertReturnsIncreasingReferences(t *testing.T) {
	h := New()
	obj := &Object{ElementType: types.IntType, Elements: []types.Value{types.IntValue(1)}}

	ref := h.Insert(obj)
	if ref != 1 {
		t.Fatalf("first Insert() = %d, want 1", ref)
	}
	if got := h.Get(ref); got != obj {
		t.Errorf("Get(%d) = %v, want %v", ref, got, obj)
	}

	ref2 := h.Insert(&Object{})
	if ref2 != 2 {
		t.Fatalf("second Insert() = %d, want 2", ref2)
	}
}

func TestGetOutOfRangeReturnsNil(t *testing.T) {
	h := New()
	h.Insert(&Object{})
	if h.Get(-1) != nil {
		t.Error("Get(-1) should be nil")
	}
	if h.Get(99) != nil {
		t.Error("Get(99) should be nil for an unallocated slot")
	}
}

func TestResetTruncatesToNullSlot(t *testing.T) {
	h := New()
	h.Insert(&Object{})
	h.Insert(&Object{})
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	h.Reset()
	if h.Len() != 1 {
		t.Fatalf("Len() after Reset = %d, want 1", h.Len())
	}
	if h.Get(0) != nil {
		t.Error("slot 0 should still be nil after Reset")
	}

	ref := h.Insert(&Object{})
	if ref != 1 {
		t.Errorf("Insert after Reset = %d, want 1 (indices restart)", ref)
	}
}
