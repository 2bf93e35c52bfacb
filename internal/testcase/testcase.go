// Package testcase is the fuzzer's corpus: an append-only, mutex-guarded
// vector of byte-string test cases each carrying the coverage bitmap it
// discovered, grounded on original_source/src/testCaseCorpus.c. UUIDs
// (github.com/google/uuid) identify each TestCase for log correlation
// across worker goroutines, the same role uuid plays for job/session
// ids in internal/concurrency.
package testcase

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// TestCase is one corpus entry: the seed bytes that produced it, the
// coverage it discovered, and fuzzing metadata.
type TestCase struct {
	ID        uuid.UUID
	Data      []byte
	Coverage  []byte
	FuzzCount uint32
	InCorpus  bool
}

// New builds a TestCase from data and a coverage snapshot, copying both
// so later mutation of the caller's slices can't alias the corpus entry.
func New(data, coverage []byte) *TestCase {
	d := make([]byte, len(data))
	copy(d, data)
	c := make([]byte, len(coverage))
	copy(c, coverage)
	return &TestCase{ID: uuid.New(), Data: d, Coverage: c}
}

// Copy clones parent's data for a mutation child: a zeroed coverage
// bitmap of the same size (it hasn't run yet) and a reset fuzz count,
// matching testCase_copy.
func (parent *TestCase) Copy() *TestCase {
	d := make([]byte, len(parent.Data))
	copy(d, parent.Data)
	return &TestCase{ID: uuid.New(), Data: d, Coverage: make([]byte, len(parent.Coverage))}
}

// Corpus is an append-only, capacity-bounded vector of TestCase
// pointers guarded by one mutex, matching corpus_init/corpus_add's
// single-lock design — the corpus is not a bottleneck since it is only
// touched when a mutation discovers new coverage, not on every run.
type Corpus struct {
	mu       sync.Mutex
	items    []*TestCase
	capacity int
	size     atomic.Int64 // mirrors len(items) for lock-free readers of Size
}

// NewCorpus returns an empty Corpus capped at capacity entries.
func NewCorpus(capacity int) *Corpus {
	return &Corpus{capacity: capacity}
}

// Add appends tc if the corpus has room; a full corpus silently drops
// it, matching corpus_add's "drop and free" behavior (Go's GC takes the
// place of testcase_free).
func (c *Corpus) Add(tc *TestCase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= c.capacity {
		return false
	}
	tc.InCorpus = true
	c.items = append(c.items, tc)
	c.size.Store(int64(len(c.items)))
	return true
}

// Size returns the current entry count.
func (c *Corpus) Size() int { return int(c.size.Load()) }

// Get returns the entry at idx, or nil if idx is out of range.
func (c *Corpus) Get(idx int) *TestCase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx < 0 || idx >= len(c.items) {
		return nil
	}
	return c.items[idx]
}

// All returns a snapshot slice of every entry currently in the corpus.
func (c *Corpus) All() []*TestCase {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*TestCase, len(c.items))
	copy(out, c.items)
	return out
}
