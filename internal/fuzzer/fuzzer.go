// Package fuzzer is the coverage-guided grey-box fuzzer orchestrator:
// it spawns workers, each with its own concrete VM and thread-local
// coverage bitmap, mutating corpus entries, running them, and feeding
// back anything that discovers new program counters. Grounded on the
// worker-pool shape of internal/concurrency/concurrency.go
// (WorkerPool/Job/JobResult), reimplemented with
// golang.org/x/sync/errgroup + context.Context cancellation in place of
// the reference's raw pthread pool (original_source/src/interpreter_fuzz.c
// never actually spawns threads; this orchestrator is the idiomatic-Go
// completion of that stub).
package fuzzer

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"jpamb/internal/applog"
	"jpamb/internal/cfg"
	"jpamb/internal/coverage"
	"jpamb/internal/ir"
	"jpamb/internal/outcome"
	"jpamb/internal/testcase"
	"jpamb/internal/types"
	"jpamb/internal/vm"
	"jpamb/internal/workqueue"
)

// StaleTimeout is the default wall-clock window without new coverage
// before a session declares itself done.
const StaleTimeout = time.Second

// CorpusCapacity is the default corpus capacity, matching
// testCaseCorpus.c's CORPUS_INITIAL_CAPACITY of one million entries.
const CorpusCapacity = 1_000_000

// QueueSlack is extra ring-buffer headroom over the corpus size, rounded
// up to the next power of two by workqueue.New.
const QueueSlack = 65536

// Session is one fuzzing run against a single method: its VM template
// (IR, CFG, argument types), and the shared corpus/coverage/queue state
// its workers operate on.
type Session struct {
	Function     *ir.Function
	CFG          *cfg.CFG
	ArgTypes     []*types.Type
	ReturnsValue bool
	Resolver     vm.Resolver

	Workers      int
	Corpus       *testcase.Corpus
	Coverage     *coverage.Service
	Queue        *workqueue.Queue[*testcase.TestCase]
	StaleTimeout time.Duration

	outcomes sync.Map // outcome.Outcome -> *atomic.Int64
	total    atomic.Int64
}

// NewSession builds a fuzzing session over fn/cfg for the given
// argument types. numInstructions drives the coverage bitmap's size:
// cov_bytes = ceil(N/7) + 8 of slack so completion never false-triggers
// from instrumentation rounding.
func NewSession(fn *ir.Function, c *cfg.CFG, argTypes []*types.Type, returnsValue bool, resolver vm.Resolver, numInstructions, workers int) *Session {
	if workers <= 0 {
		workers = 1
	}
	n := int(math.Ceil(float64(numInstructions)/7)) + 8
	if n < 1 {
		n = 1
	}
	cov := coverage.New(n)
	corpus := testcase.NewCorpus(CorpusCapacity)
	q := workqueue.New[*testcase.TestCase](corpus.Size() + QueueSlack + workers)

	return &Session{
		Function: fn, CFG: c, ArgTypes: argTypes, ReturnsValue: returnsValue, Resolver: resolver,
		Workers: workers, Corpus: corpus, Coverage: cov, Queue: q, StaleTimeout: StaleTimeout,
	}
}

// Seed adds a TestCase to both the corpus and the work queue, the way
// an abstract-interpreter-derived seed or the initial empty seed enters
// the session.
func (s *Session) Seed(tc *testcase.TestCase) {
	if s.Corpus.Add(tc) {
		s.Queue.Push(tc)
	}
}

// EnsureBaseSeed adds the single zero-byte seed TestCase required
// whenever the session's corpus is still empty (no abstract analysis
// results were available to seed it).
func (s *Session) EnsureBaseSeed() {
	if s.Corpus.Size() > 0 {
		return
	}
	s.Seed(testcase.New([]byte{0}, s.Coverage.NewLocal()))
}

// Run drives the worker pool to completion: either the coverage service
// reports Complete, or every worker independently observes the
// stale-coverage timeout. Run blocks until that point (or ctx is
// cancelled) and returns an aggregate outcome count.
func (s *Session) Run(ctx context.Context) (map[outcome.Outcome]int, error) {
	s.EnsureBaseSeed()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.Workers; i++ {
		workerID := i
		g.Go(func() error {
			s.runWorker(ctx, workerID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	covered, total := s.Coverage.Stats()
	applog.Info("fuzz session done: corpus=%s coverage=%d/%d runs=%d",
		humanize.Comma(int64(s.Corpus.Size())), covered, total, s.total.Load())

	result := make(map[outcome.Outcome]int)
	s.outcomes.Range(func(k, v any) bool {
		result[k.(outcome.Outcome)] = int(v.(*atomic.Int64).Load())
		return true
	})
	return result, nil
}

// runWorker is one worker's main loop: pop, mutate, decode, run, commit
// coverage, requeue on novelty, repeat until the session-wide stop
// condition fires.
func (s *Session) runWorker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(int64(workerID) + 1))
	local := s.Coverage.NewLocal()
	vmc := vm.NewContext(s.Function, s.CFG, nil, s.ReturnsValue, s.Resolver, local)

	backoff := time.Microsecond
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if s.Coverage.IsComplete() || s.Coverage.Stale(s.StaleTimeout) {
			return
		}

		parent, ok := s.Queue.Pop()
		if !ok || parent == nil {
			time.Sleep(backoff)
			if backoff < time.Millisecond {
				backoff *= 2
			}
			continue
		}
		backoff = time.Microsecond

		// Requeue the parent so other workers can keep mutating it too;
		// the queue is a corpus of live lineages, not a one-shot job list.
		s.Queue.Push(parent)

		child := parent.Copy()
		child.Data = mutate(rng, parent.Data)

		vmc.ResetHeap()
		locals, err := vm.DecodeArgs(vmc.Heap, s.ArgTypes, child.Data)
		if err != nil {
			continue
		}

		coverage.ResetThread(local)
		vmc.Reset(s.Function, s.CFG, locals, s.ReturnsValue)
		vmc.Coverage = local

		result, _ := vmc.Run()
		s.total.Add(1)
		s.recordOutcome(vm.ClassifyOutcome(result))

		newBits := s.Coverage.CheckBits(local)
		s.Coverage.CommitThread(local)
		if newBits > 0 {
			child.Coverage = append([]byte(nil), local...)
			s.Seed(child)
		}
	}
}

func (s *Session) recordOutcome(o outcome.Outcome) {
	v, _ := s.outcomes.LoadOrStore(o, &atomic.Int64{})
	v.(*atomic.Int64).Add(1)
}
