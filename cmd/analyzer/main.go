// Command analyzer is the CLI entry point binding together the three
// techniques: the concrete interpreter (-i), the interval abstract
// interpreter (-a), and, by default, the coverage-guided fuzzer.
// Grounded on original_source/src/main.c and src/cli.c's thin dispatch
// shape, and on the hand-rolled subcommand dispatcher in
// cmd/sentra/main.go (an alias map rather than a cobra/urfave-style
// framework, matching go.mod's absence of either).
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/mattn/go-isatty"

	"jpamb/internal/applog"
	"jpamb/internal/cfg"
	"jpamb/internal/cliargs"
	"jpamb/internal/config"
	"jpamb/internal/decompile"
	"jpamb/internal/errs"
	"jpamb/internal/fuzzer"
	"jpamb/internal/heap"
	"jpamb/internal/interval"
	"jpamb/internal/ir"
	"jpamb/internal/ircache"
	"jpamb/internal/methodid"
	"jpamb/internal/outcome"
	"jpamb/internal/seed"
	"jpamb/internal/vm"
)

// exit codes: 0 success, 1 invalid usage, 2 a Setup or Analyzer FatalError.
const (
	exitOK          = 0
	exitUsage       = 1
	exitAnalysisErr = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run wires the CLI pipeline together and reports one of exitOK/exitUsage/
// exitAnalysisErr. Every fatal condition past argument parsing is reported
// as an *errs.FatalError so reportErr can pick the exit code and prefix
// uniformly instead of each call site tracking its own constant.
func run(args []string) int {
	opts, err := cliargs.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	cfgPath, err := config.DefaultPath()
	if err != nil {
		return reportErr(errs.NewSetup(err, "locating config file"))
	}
	conf, cfgErr := config.Load(cfgPath)

	if opts.Info {
		if cfgErr != nil {
			return reportErr(errs.NewSetup(cfgErr, "loading config from %s", cfgPath))
		}
		printInfo(conf)
		return exitOK
	}
	if cfgErr != nil {
		return reportErr(errs.NewSetup(cfgErr, "loading config from %s", cfgPath))
	}

	id, err := methodid.Parse(opts.MethodID)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorPrefix(), err)
		return exitUsage
	}

	cache := ircache.New(func(id methodid.ID) (*ir.Function, error) {
		return decompile.LoadFunctionForMethod(conf.JpambDecompiledPath, id)
	})
	defer cache.Teardown()

	fn, err := cache.GetIR(opts.MethodID)
	if err != nil {
		return reportErr(errs.NewSetup(err, "loading IR for %s", opts.MethodID))
	}
	c, err := cache.GetCFG(opts.MethodID)
	if err != nil {
		return reportErr(errs.NewAnalyzer(opts.MethodID, err, "building control-flow graph"))
	}
	resolver := &ircache.NamespaceResolver{Cache: cache, Namespace: namespacePrefix(id.Class)}
	returnsValue := id.ReturnType != nil && id.ReturnType.String() != "void"

	switch opts.Mode {
	case cliargs.ModeInterpreter:
		return runInterpreter(fn, c, id, opts, resolver, returnsValue)
	case cliargs.ModeAbstract:
		return runAbstract(fn, c, id)
	default:
		return runFuzz(fn, c, id, resolver, returnsValue)
	}
}

// reportErr prints a FatalError and returns its exit code. Both Setup and
// Analyzer errors exit 2; only CLI/method-id parse failures exit 1. Setup
// failures are logged as a crash before output has a chance to mislead a
// caller that only checks the exit code; Analyzer failures are specific to
// one method id and don't warrant the same severity.
func reportErr(err *errs.FatalError) int {
	if errs.Is(err, errs.Setup) {
		applog.Error("fatal setup error: %v", err)
	}
	fmt.Fprintln(os.Stderr, errorPrefix(), err)
	return exitAnalysisErr
}

func namespacePrefix(class string) string {
	for i := 0; i < len(class); i++ {
		if class[i] == '/' {
			return class[:i]
		}
	}
	return class
}

func runInterpreter(fn *ir.Function, c *cfg.CFG, id methodid.ID, opts cliargs.Options, resolver vm.Resolver, returnsValue bool) int {
	h := heap.New()
	locals, err := cliargs.ParseLiteralParameters(opts.Parameters, id.Args, h)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorPrefix(), err)
		return exitUsage
	}

	vmc := vm.NewContext(fn, c, locals, returnsValue, resolver, nil)
	vmc.Heap = h
	result, _ := vmc.Run()

	printOutcomes([]outcome.Weighted{{Outcome: vm.ClassifyOutcome(result), Percentage: 100}})
	return exitOK
}

func runAbstract(fn *ir.Function, c *cfg.CFG, id methodid.ID) int {
	init := interval.NewState(len(id.Args))
	for i := range id.Args {
		init.Locals[i] = interval.Top()
	}

	sched := interval.BuildSchedule(c)
	result, err := interval.Interpret(c, sched, init)
	if err != nil {
		return reportErr(errs.NewAnalyzer(id.Raw, err, "interval fixpoint did not converge"))
	}

	weighted := abstractOutcomes(fn, c, result)
	printOutcomes(weighted)
	return exitOK
}

// abstractOutcomes walks the function's BINARY instructions at each
// block using that block's analyzed in-state to flag whether a
// division by zero is reachable; this is the CLI's thin translation of
// the interval results into the shared outcome vocabulary, not part of
// the abstract interpreter itself, whose own output is just per-local
// interval lists.
func abstractOutcomes(fn *ir.Function, c *cfg.CFG, result *interval.Result) []outcome.Weighted {
	divZeroPossible := false
	for blockID, in := range result.BlockIn {
		b := c.Blocks[blockID]
		if blockMayDivideByZero(fn.Instructions[b.IPStart:b.IPEnd+1], in) {
			divZeroPossible = true
		}
	}

	if divZeroPossible {
		return []outcome.Weighted{
			{Outcome: outcome.DivideByZero, Percentage: 50},
			{Outcome: outcome.OK, Percentage: 50},
		}
	}
	return []outcome.Weighted{{Outcome: outcome.OK, Percentage: 100}}
}

func blockMayDivideByZero(insts []ir.Instruction, in interval.State) bool {
	locals := make([]interval.Interval, len(in.Locals))
	copy(locals, in.Locals)
	var stack []interval.Interval

	for _, inst := range insts {
		switch inst.Opcode {
		case ir.OpLoad:
			if inst.Index < len(locals) {
				stack = append(stack, locals[inst.Index])
			}
		case ir.OpPush:
			iv := interval.Top()
			if n, err := inst.Value.AsInt(); err == nil {
				iv = interval.Singleton(n)
			}
			stack = append(stack, iv)
		case ir.OpBinary:
			if len(stack) < 2 {
				continue
			}
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = stack[:len(stack)-1]
			if (inst.Op == ir.Div || inst.Op == ir.Rem) && b.Lower <= 0 && b.Upper >= 0 {
				return true
			}
			stack = append(stack, interval.Top())
		}
	}
	return false
}

func runFuzz(fn *ir.Function, c *cfg.CFG, id methodid.ID, resolver vm.Resolver, returnsValue bool) int {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	session := fuzzer.NewSession(fn, c, id.Args, returnsValue, resolver, len(fn.Instructions), workers)

	init := interval.NewState(len(id.Args))
	for i := range id.Args {
		init.Locals[i] = interval.Top()
	}
	if sched := interval.BuildSchedule(c); sched != nil {
		if res, err := interval.Interpret(c, sched, init); err == nil && len(res.BlockIn) > 0 {
			seed.Generate(id.Args, res.BlockIn[0].Locals, session.Corpus, session.Coverage)
			for _, tc := range session.Corpus.All() {
				session.Queue.Push(tc)
			}
		}
	}

	outcomes, err := session.Run(context.Background())
	if err != nil {
		return reportErr(errs.NewAnalyzer(id.Raw, err, "fuzzing session"))
	}

	total := 0
	for _, n := range outcomes {
		total += n
	}
	if total == 0 {
		printOutcomes([]outcome.Weighted{{Outcome: outcome.OK, Percentage: 100}})
		return exitOK
	}

	var weighted []outcome.Weighted
	for o, n := range outcomes {
		weighted = append(weighted, outcome.Weighted{Outcome: o, Percentage: n * 100 / total})
	}
	sort.Slice(weighted, func(i, j int) bool { return weighted[i].Percentage > weighted[j].Percentage })
	printOutcomes(weighted)
	return exitOK
}

func printOutcomes(ws []outcome.Weighted) {
	for _, w := range ws {
		fmt.Println(w.String())
	}
}

func printInfo(cfg *config.Config) {
	fmt.Println(cfg.Name)
	fmt.Println(cfg.Version)
	fmt.Println(cfg.Group)
	fmt.Println(cfg.Tags)
	if cfg.ForScience {
		fmt.Println("yes")
	} else {
		fmt.Println("no")
	}
}

func errorPrefix() string {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return "\033[31merror:\033[0m"
	}
	return "error:"
}

func init() {
	applog.Info("analyzer starting")
}
