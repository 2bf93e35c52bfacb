// Package ircache is the process-wide IR Program Cache: a method-id
// string keyed map from (IrFunction, CFG, num_locals), built once per
// method and shared by every subsequent requester, grounded on
// original_source/src/ir_program.c's single static cache with its
// lock-guarded build section. Concurrency: readers and writers
// serialize on one mutex; once a triple is cached it is never mutated,
// so readers that observe it see a fully-constructed value.
package ircache

import (
	"sync"

	"github.com/pkg/errors"

	"jpamb/internal/cfg"
	"jpamb/internal/ir"
	"jpamb/internal/methodid"
)

// entry is one cached triple: the lifted IR, its CFG, and the method's
// declared local-slot count (its argument count; STORE may grow the
// runtime locals array further, but this is the count at cache-build
// time).
type entry struct {
	Function     *ir.Function
	CFG          *cfg.CFG
	NumLocals    int
	ReturnsValue bool
}

// Loader resolves a method id's decompiled bytecode into an IrFunction;
// internal/decompile.LoadFunctionForMethod implements this for the
// on-disk JSON collaborator.
type Loader func(id methodid.ID) (*ir.Function, error)

// Cache is the process-wide IR/CFG cache. The zero value is not usable;
// construct with New.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	load    Loader
}

// New returns an empty Cache that builds missing entries with load.
func New(load Loader) *Cache {
	return &Cache{entries: make(map[string]*entry), load: load}
}

// get builds (on a cache miss) or returns the cached triple for raw,
// under a single critical section.
func (c *Cache) get(raw string) (*entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[raw]; ok {
		return e, nil
	}

	id, err := methodid.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "ir cache: parsing method id %q", raw)
	}
	fn, err := c.load(id)
	if err != nil {
		return nil, errors.Wrapf(err, "ir cache: loading method %q", raw)
	}
	g, err := cfg.Build(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "ir cache: building CFG for %q", raw)
	}

	e := &entry{
		Function:     fn,
		CFG:          g,
		NumLocals:    len(id.Args),
		ReturnsValue: id.ReturnType != nil && id.ReturnType.String() != "void",
	}
	c.entries[raw] = e
	return e, nil
}

// GetIR returns the cached IrFunction for a method id, building it (and
// its CFG) on first request.
func (c *Cache) GetIR(raw string) (*ir.Function, error) {
	e, err := c.get(raw)
	if err != nil {
		return nil, err
	}
	return e.Function, nil
}

// GetCFG returns the cached CFG for a method id.
func (c *Cache) GetCFG(raw string) (*cfg.CFG, error) {
	e, err := c.get(raw)
	if err != nil {
		return nil, err
	}
	return e.CFG, nil
}

// GetNumLocals returns the method's declared argument count.
func (c *Cache) GetNumLocals(raw string) (int, error) {
	e, err := c.get(raw)
	if err != nil {
		return 0, err
	}
	return e.NumLocals, nil
}

// GetAll is a convenience accessor returning the full triple in one
// cache lookup, for callers such as NamespaceResolver (the VM's INVOKE
// resolver) that always need all of them together.
func (c *Cache) GetAll(raw string) (fn *ir.Function, g *cfg.CFG, numLocals int, returnsValue bool, err error) {
	e, err := c.get(raw)
	if err != nil {
		return nil, nil, 0, false, err
	}
	return e.Function, e.CFG, e.NumLocals, e.ReturnsValue, nil
}

// NamespaceResolver implements vm.Resolver: an INVOKE target resolves
// through the cache only when its class lies within Namespace (e.g.
// "jpamb"), matching the "class prefix equals the project's namespace"
// rule; anything else is treated as outside the project and left to
// the VM to skip as a no-op advance.
type NamespaceResolver struct {
	Cache     *Cache
	Namespace string
}

func (r *NamespaceResolver) Resolve(raw string) (fn *ir.Function, g *cfg.CFG, returnsValue bool, ok bool) {
	id, err := methodid.Parse(raw)
	if err != nil || !withinNamespace(id.Class, r.Namespace) {
		return nil, nil, false, false
	}
	fn, g, _, returnsValue, err = r.Cache.GetAll(raw)
	if err != nil {
		return nil, nil, false, false
	}
	return fn, g, returnsValue, true
}

func withinNamespace(class, namespace string) bool {
	if namespace == "" {
		return true
	}
	return len(class) >= len(namespace) && class[:len(namespace)] == namespace
}

// Teardown empties the cache; the single explicit release call
// required before process exit.
func (c *Cache) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}
