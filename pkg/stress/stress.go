// Package stress rebuilds a model in a loop and records how long each build
// took and how much heap it left behind.
//
// Results are tab-separated lines, one per iteration and with no header:
//
//	seq	elapsed_ms	memory_delta_GB
//
// Each line is flushed as soon as it is written so a killed run keeps every
// completed iteration.
package stress

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const gib = 1 << 30

// Sample is one build iteration.
type Sample struct {
	Seq           int
	Elapsed       time.Duration
	MemoryDeltaGB float64
}

// Writer appends samples to a results stream.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one line and flushes it.
func (w *Writer) Write(s Sample) error {
	line := strconv.Itoa(s.Seq) + "\t" +
		strconv.FormatInt(s.Elapsed.Milliseconds(), 10) + "\t" +
		strconv.FormatFloat(s.MemoryDeltaGB, 'f', -1, 64) + "\n"
	if _, err := w.w.WriteString(line); err != nil {
		return err
	}
	return w.w.Flush()
}

// BuildFunc performs one full model build.
type BuildFunc func(ctx context.Context) error

// Options configures Run.
type Options struct {
	// Iterations is the number of builds; zero runs until ctx is done.
	Iterations int
	Build      BuildFunc
	Out        *Writer
	Log        zerolog.Logger

	// heap reports live heap bytes; tests replace it.
	heap func() uint64
}

func heapAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// Run builds repeatedly, writing one sample per build. The memory delta is
// measured against the heap before the first build. It returns the number
// of completed iterations.
func Run(ctx context.Context, opts Options) (int, error) {
	if opts.Build == nil || opts.Out == nil {
		return 0, fmt.Errorf("stress: build and output are required")
	}
	heap := opts.heap
	if heap == nil {
		heap = heapAlloc
	}

	baseline := heap()
	done := 0
	for seq := 1; opts.Iterations == 0 || seq <= opts.Iterations; seq++ {
		if err := ctx.Err(); err != nil {
			if opts.Iterations == 0 {
				return done, nil
			}
			return done, err
		}

		start := time.Now()
		if err := opts.Build(ctx); err != nil {
			return done, fmt.Errorf("stress: iteration %d: %w", seq, err)
		}
		s := Sample{
			Seq:           seq,
			Elapsed:       time.Since(start),
			MemoryDeltaGB: (float64(heap()) - float64(baseline)) / gib,
		}
		if err := opts.Out.Write(s); err != nil {
			return done, fmt.Errorf("stress: write results: %w", err)
		}
		done++
		opts.Log.Debug().
			Int("seq", s.Seq).
			Dur("elapsed", s.Elapsed).
			Float64("memory_delta_gb", s.MemoryDeltaGB).
			Msg("build finished")
	}
	return done, nil
}
