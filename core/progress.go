package core

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/ryanuber/columnize"
)

// Counters aggregates per-file outcomes keyed by (component, outcome).
// Safe for concurrent increments from worker goroutines.
type Counters struct {
	mu     sync.Mutex
	counts map[counterKey]int64
}

type counterKey struct {
	component string
	outcome   string
}

func NewCounters() *Counters {
	return &Counters{counts: make(map[counterKey]int64)}
}

func (c *Counters) Inc(component, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[counterKey{component, outcome}]++
}

func (c *Counters) Get(component, outcome string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[counterKey{component, outcome}]
}

// Summary renders every non-zero counter as a table, sorted by component
// then outcome so re-runs produce identical output.
func (c *Counters) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rows []string
	for k, v := range c.counts {
		if v == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("%s|%s|%d", k.component, k.outcome, v))
	}
	sort.Strings(rows)
	rows = append([]string{"Component|Outcome|Count"}, rows...)
	return columnize.SimpleFormat(rows)
}

// Progress drives a single live progress line plus the outcome counters for
// one scan. The line refreshes in place at a bounded rate; per-file output
// stays out of it.
type Progress struct {
	*Counters
	bar *pb.ProgressBar
}

// progressTemplate shows position, rate, and elapsed time on one line.
var progressTemplate pb.ProgressBarTemplate = `{{counters . }} {{bar . }} {{speed . "%s/s"}} {{etime . }}`

// StartProgress begins a progress line for total items, written to out.
func StartProgress(total int, out io.Writer) *Progress {
	bar := progressTemplate.New(total)
	bar.SetWriter(out)
	bar.SetRefreshRate(200 * time.Millisecond)
	bar.Start()
	return &Progress{
		Counters: NewCounters(),
		bar:      bar,
	}
}

// StartQuietProgress counts without rendering. Used by tests.
func StartQuietProgress(total int) *Progress {
	return &Progress{
		Counters: NewCounters(),
		bar:      pb.New(total).SetWriter(io.Discard),
	}
}

func (p *Progress) Step() {
	p.bar.Increment()
}

func (p *Progress) Finish() {
	p.bar.Finish()
}
