package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Dumper is implemented by tracers that buffer events in memory.
type Dumper interface {
	Dump(w io.Writer, format Format) error
}

// Config describes the tracer for one run.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" for stderr
	RingSize   int
}

// New builds a tracer from cfg.
//
// LevelError buffers events in a ring and writes nothing until Dump is called.
// Higher levels stream to the output and also keep a ring.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	ring := NewRingTracer(cfg.RingSize, cfg.Level)
	if cfg.Level == LevelError {
		return ring, nil
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	format := cfg.Format
	if format == FormatAuto && strings.HasSuffix(cfg.OutputPath, ".ndjson") {
		format = FormatNDJSON
	}
	return &teeTracer{stream: NewStreamTracer(w, cfg.Level, format), ring: ring}, nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

func isStdStream(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}

// teeTracer streams events and remembers the recent ones.
type teeTracer struct {
	stream *StreamTracer
	ring   *RingTracer
}

func (t *teeTracer) Emit(ev *Event) {
	t.ring.Emit(ev)
	t.stream.Emit(ev)
}

func (t *teeTracer) Flush() error { return t.stream.Flush() }

func (t *teeTracer) Close() error {
	return errors.Join(t.stream.Close(), t.ring.Close())
}

func (t *teeTracer) Level() Level  { return t.stream.Level() }
func (t *teeTracer) Enabled() bool { return t.stream.Enabled() }

func (t *teeTracer) Dump(w io.Writer, format Format) error {
	return t.ring.Dump(w, format)
}
