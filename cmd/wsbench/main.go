// Command wsbench drives a wsched.Scheduler through the scenarios used to
// validate the scheduler's correctness and throughput, printing Stats()
// after each one.
package main

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/coreforge/wsched"
	"github.com/coreforge/wsched/internal/obs"
)

var (
	workers  int
	capacity int
	verbose  bool
	scenario string
)

func main() {
	args := parseFlags(os.Args[1:])

	if len(args) < 1 {
		scenario = "all"
	} else {
		scenario = args[0]
	}

	switch scenario {
	case "all":
		for _, s := range scenarios {
			runScenario(s)
		}
	case "help", "h":
		printUsage()
	default:
		s, ok := lookupScenario(scenario)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown scenario: %s\n", scenario)
			printUsage()
			os.Exit(1)
		}
		runScenario(s)
	}
}

func parseFlags(args []string) []string {
	var result []string
	i := 0
	for i < len(args) {
		arg := args[i]
		switch arg {
		case "--workers", "-w":
			if i+1 < len(args) {
				i++
				n, err := strconv.Atoi(args[i])
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: --workers requires an integer\n")
					os.Exit(1)
				}
				workers = n
			} else {
				fmt.Fprintln(os.Stderr, "error: --workers requires an argument")
				os.Exit(1)
			}
		case "--capacity", "-c":
			if i+1 < len(args) {
				i++
				n, err := strconv.Atoi(args[i])
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: --capacity requires an integer\n")
					os.Exit(1)
				}
				capacity = n
			} else {
				fmt.Fprintln(os.Stderr, "error: --capacity requires an argument")
				os.Exit(1)
			}
		case "--verbose", "-v":
			verbose = true
		default:
			result = append(result, arg)
		}
		i++
	}
	return result
}

func printUsage() {
	fmt.Println("wsbench - work-stealing scheduler demo and benchmark host")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wsbench [scenario]         Run one named scenario, or all of them")
	fmt.Println("  wsbench help               Show this help")
	fmt.Println()
	fmt.Println("Scenarios:")
	for _, s := range scenarios {
		fmt.Printf("  %-12s %s\n", s.name, s.desc)
	}
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -w, --workers <n>          Worker count (default: NumCPU)")
	fmt.Println("  -c, --capacity <n>         Initial per-worker deque capacity")
	fmt.Println("  -v, --verbose              Log scheduler lifecycle events")
}

type scenarioDef struct {
	name string
	desc string
	run  func(s *wsched.Scheduler)
}

var scenarios = []scenarioDef{
	{"single", "submit one task, join it", scenarioSingleTask},
	{"counters", "100 independent counter increments", scenarioCounters},
	{"array", "parallel quarter-slice array doubling", scenarioArrayProcessing},
	{"fibonacci", "10-entry parallel Fibonacci table", scenarioFibonacci},
	{"status", "poll a task through pending/running/completed", scenarioStatus},
	{"sum", "1000 tasks summing into a shared atomic", scenarioSum},
}

func lookupScenario(name string) (scenarioDef, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenarioDef{}, false
}

func runScenario(s scenarioDef) {
	log := obs.Nop()
	if verbose {
		log = obs.New(os.Stderr, obs.InfoLevel)
	}

	cfg := wsched.DefaultConfig()
	if workers > 0 {
		cfg.WorkerCount = workers
	}
	if capacity > 0 {
		cfg.QueueCapacity = capacity
	}
	cfg.Logger = &log

	sched, err := wsched.Create(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating scheduler: %v\n", err)
		os.Exit(1)
	}
	if err := sched.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error starting scheduler: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	fmt.Printf("== %s: %s ==\n", s.name, s.desc)
	s.run(sched)
	elapsed := time.Since(start)

	if err := sched.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "error stopping scheduler: %v\n", err)
	}
	if err := sched.Destroy(); err != nil {
		fmt.Fprintf(os.Stderr, "error destroying scheduler: %v\n", err)
	}

	stats := sched.Stats()
	fmt.Printf("  workers=%d submitted=%d completed=%d pending=%d elapsed=%s\n",
		stats.WorkerCount, stats.TasksSubmitted, stats.TasksCompleted, stats.TasksPending, elapsed)
}

func scenarioSingleTask(s *wsched.Scheduler) {
	var result int
	h, err := s.Submit(func() { result = 42 })
	must(err)
	h.Join()
	fmt.Printf("  result=%d\n", result)
}

func scenarioCounters(s *wsched.Scheduler) {
	var counter atomic.Int32
	handles := make([]*wsched.Handle, 100)
	for i := range handles {
		h, err := s.Submit(func() { counter.Add(1) })
		must(err)
		handles[i] = h
	}
	for _, h := range handles {
		h.Join()
	}
	fmt.Printf("  counter=%d\n", counter.Load())
}

func scenarioArrayProcessing(s *wsched.Scheduler) {
	const n = 10000
	a := make([]int, n)
	for i := range a {
		a[i] = i
	}

	quarter := n / 4
	handles := make([]*wsched.Handle, 4)
	for q := 0; q < 4; q++ {
		start, end := q*quarter, (q+1)*quarter
		h, err := s.Submit(func() {
			for i := start; i < end; i++ {
				a[i] *= 2
			}
		})
		must(err)
		handles[q] = h
	}
	for _, h := range handles {
		h.Join()
	}
	fmt.Printf("  a[0]=%d a[%d]=%d\n", a[0], n-1, a[n-1])
}

func scenarioFibonacci(s *wsched.Scheduler) {
	results := make([]int, 10)
	handles := make([]*wsched.Handle, 10)
	for n := 0; n < 10; n++ {
		idx := n
		h, err := s.Submit(func() {
			a, b := 0, 1
			for i := 0; i < idx; i++ {
				a, b = b, a+b
			}
			results[idx] = a
		})
		must(err)
		handles[n] = h
	}
	for _, h := range handles {
		h.Join()
	}
	fmt.Printf("  fib=%v\n", results)
}

func scenarioStatus(s *wsched.Scheduler) {
	h, err := s.Submit(func() { time.Sleep(5 * time.Millisecond) })
	must(err)
	fmt.Printf("  poll before join: %v\n", h.Poll())
	h.Join()
	fmt.Printf("  poll after join:  %v\n", h.Poll())
}

func scenarioSum(s *wsched.Scheduler) {
	var sum atomic.Int64
	handles := make([]*wsched.Handle, 1000)
	for i := 0; i < 1000; i++ {
		addend := int64(i + 1)
		h, err := s.Submit(func() { sum.Add(addend) })
		must(err)
		handles[i] = h
	}
	for _, h := range handles {
		h.Join()
	}
	fmt.Printf("  sum=%d\n", sum.Load())
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
