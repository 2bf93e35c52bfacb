package testcase

import "testing"

func TestNewCopiesInputSlices(t *testing.T) {
	data := []byte{1, 2, 3}
	cov := []byte{0, 1}
	tc := New(data, cov)

	data[0] = 99
	cov[0] = 99
	if tc.Data[0] == 99 {
		t.Error("New should copy data, not alias the caller's slice")
	}
	if tc.Coverage[0] == 99 {
		t.Error("New should copy coverage, not alias the caller's slice")
	}
	if tc.ID.String() == "" {
		t.Error("New should assign a non-empty UUID")
	}
}

func TestCopyResetsCoverageAndFuzzCount(t *testing.T) {
	parent := New([]byte{1, 2}, []byte{1, 1})
	parent.FuzzCount = 7

	child := child(parent)
	if child.ID == parent.ID {
		t.Error("Copy should assign a fresh UUID")
	}
	if len(child.Coverage) != len(parent.Coverage) {
		t.Fatalf("child coverage length = %d, want %d", len(child.Coverage), len(parent.Coverage))
	}
	for i, b := range child.Coverage {
		if b != 0 {
			t.Errorf("child.Coverage[%d] = %d, want 0 (not yet run)", i, b)
		}
	}
	if child.FuzzCount != 0 {
		t.Errorf("child.FuzzCount = %d, want 0", child.FuzzCount)
	}
	if string(child.Data) != string(parent.Data) {
		t.Errorf("child.Data = %v, want a copy of parent.Data %v", child.Data, parent.Data)
	}
}

func child(parent *TestCase) *TestCase { return parent.Copy() }

func TestCorpusAddRespectsCapacity(t *testing.T) {
	c := NewCorpus(2)
	if !c.Add(New([]byte{1}, nil)) {
		t.Fatal("expected first Add to succeed")
	}
	if !c.Add(New([]byte{2}, nil)) {
		t.Fatal("expected second Add to succeed")
	}
	if c.Add(New([]byte{3}, nil)) {
		t.Error("Add past capacity should fail")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestCorpusGetAndAll(t *testing.T) {
	c := NewCorpus(4)
	a := New([]byte{1}, nil)
	b := New([]byte{2}, nil)
	c.Add(a)
	c.Add(b)

	if got := c.Get(0); got != a {
		t.Errorf("Get(0) = %v, want %v", got, a)
	}
	if got := c.Get(99); got != nil {
		t.Errorf("Get(99) = %v, want nil", got)
	}
	all := c.All()
	if len(all) != 2 {
		t.Fatalf("All() len = %d, want 2", len(all))
	}
	all[0] = nil
	if c.Get(0) == nil {
		t.Error("All() should return a snapshot, not alias internal storage")
	}
}
