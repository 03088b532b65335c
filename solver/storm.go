package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/fluentverification/wayfarer/chain"
)

// DefaultStormBinary is looked up on PATH when no path is configured.
const DefaultStormBinary = "storm"

// Storm runs the Storm model checker on the explicit export of a chain.
type Storm struct {
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewStorm returns an adapter for the binary at path, or for storm on
// PATH when path is empty.
func NewStorm(path string, logger *slog.Logger) *Storm {
	if path == "" {
		path = DefaultStormBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storm{Path: path, Logger: logger}
}

var resultLine = regexp.MustCompile(`Result \(for initial states\):\s*(\S+)`)

// ParseResult extracts the probability from Storm's output.
func ParseResult(out []byte) (float64, error) {
	m := resultLine.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("%w: no result line", ErrUnparsableResult)
	}
	p, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrUnparsableResult, m[1], err)
	}
	return p, nil
}

// Solve writes ch to a temporary directory and runs Storm on it.
func (s *Storm) Solve(ctx context.Context, ch *chain.Chain, prop Property) (Result, error) {
	bin, err := exec.LookPath(s.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSolverUnavailable, err)
	}

	dir, err := os.MkdirTemp("", "wayfarer-storm-")
	if err != nil {
		return Result{}, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	tra := filepath.Join(dir, "model.tra")
	lab := filepath.Join(dir, "model.lab")
	if err := writeExplicit(ch, tra, lab); err != nil {
		return Result{}, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, "--explicit", tra, lab, "--prop", prop.String())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.Logger.Info("running solver", "binary", bin, "property", prop.String(),
		"states", ch.NumStates(), "transitions", ch.NumTransitions())
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("run %s: %w: %s", bin, err, bytes.TrimSpace(stderr.Bytes()))
	}

	p, err := ParseResult(stdout.Bytes())
	if err != nil {
		return Result{}, err
	}
	s.Logger.Info("solver finished", "probability", p, "elapsed", time.Since(start))
	return Result{Probability: p, Min: p, Max: p}, nil
}

func writeExplicit(ch *chain.Chain, traPath, labPath string) (err error) {
	tra, err := os.Create(traPath)
	if err != nil {
		return err
	}
	lab, err := os.Create(labPath)
	if err != nil {
		tra.Close()
		return err
	}
	defer func() {
		err = errors.Join(err, tra.Close(), lab.Close())
	}()
	return ch.WriteExplicit(tra, lab)
}
