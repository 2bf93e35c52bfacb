// Package heap implements the per-run, index-addressed object store.
// Grounded on original_source/src/heap.c: slot 0 is reserved for null,
// indices are never reused within a run, and the heap grows
// monotonically until Reset is called between fuzz iterations or VM
// invocations.
package heap

import "jpamb/internal/types"

// Object is currently only ever an array: (element type, elements).
// Each element's Type must equal ElementType, enforced by the VM's
// array-store opcode handler rather than here.
type Object struct {
	ElementType *types.Type
	Elements    []types.Value
}

// Heap is a growable vector of object references. A reference is an
// index into it; index 0 is reserved to denote null and is never
// returned by Insert.
type Heap struct {
	objects []*Object // objects[0] is always nil (the null slot)
}

// New returns a heap with only the reserved null slot.
func New() *Heap {
	return &Heap{objects: make([]*Object, 1, 64)}
}

// Insert appends obj and returns its reference (heap index), which is
// always >= 1.
func (h *Heap) Insert(obj *Object) int {
	h.objects = append(h.objects, obj)
	return len(h.objects) - 1
}

// Get returns the object at ref, or nil if ref is the null slot or out
// of range.
func (h *Heap) Get(ref int) *Object {
	if ref <= 0 || ref >= len(h.objects) {
		return nil
	}
	return h.objects[ref]
}

// Len returns the number of slots, including the reserved null slot.
func (h *Heap) Len() int {
	return len(h.objects)
}

// Reset truncates the heap back to just the null slot, for reuse
// between VM runs without reallocating the backing array.
func (h *Heap) Reset() {
	h.objects = h.objects[:1]
}
