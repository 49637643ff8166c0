package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/Broccolito/TidyFlow/internal/types"
)

// Interpreter names searched on PATH, in order of preference.
const (
	interpreterPrimary  = "Rscript"
	interpreterFallback = "R"
)

// RunRequest describes a single child-process invocation.
type RunRequest struct {
	// Exe is the absolute path of the interpreter to launch.
	Exe string

	// Args are passed to the interpreter verbatim, in order.
	Args []string

	// Dir is the working directory for the child.
	Dir string

	// Env contains extra variables appended to the inherited environment.
	Env map[string]string

	// Timeout bounds the wall-clock run time of the child.
	Timeout time.Duration
}

// RunResult captures the complete output of one finished invocation. It is
// returned once and never retried.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
}

// Runner launches the external R interpreter. Each Run owns its child
// process exclusively; the only cancellation exposed is timeout-triggered
// termination.
type Runner struct {
	lookPath func(file string) (string, error)
	logger   *slog.Logger
}

// NewRunner creates a Runner that discovers executables on the process
// search path.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{lookPath: exec.LookPath, logger: logger}
}

// NewRunnerWithLookPath creates a Runner with a custom executable lookup,
// used by tests to simulate environments without an R installation.
func NewRunnerWithLookPath(lookPath func(string) (string, error), logger *slog.Logger) *Runner {
	r := NewRunner(logger)
	r.lookPath = lookPath
	return r
}

// FindInterpreter searches PATH for Rscript, falling back to R. It
// returns every hit in preference order; ok is false when neither name
// resolves.
func (r *Runner) FindInterpreter() (exe string, alternatives []string, ok bool) {
	for _, name := range []string{interpreterPrimary, interpreterFallback} {
		if path, err := r.lookPath(name); err == nil {
			if exe == "" {
				exe = path
			}
			alternatives = append(alternatives, path)
		}
	}
	return exe, alternatives, exe != ""
}

// NotFoundFault is the fault reported when no R interpreter is on PATH.
func NotFoundFault() *types.Fault {
	return types.NewFault(types.CodeRNotFound,
		"Rscript not found in PATH. Please install R or add Rscript to PATH.",
		"Install R from https://www.r-project.org/",
		"Ensure Rscript is in your system PATH",
	)
}

// Run launches the interpreter and synchronously waits for it to finish,
// up to req.Timeout. Stdout and stderr are captured as complete streams.
// Expiry terminates the child and yields a TIMEOUT fault; any launch
// failure other than a non-zero exit yields EXEC_ERROR with the
// underlying message preserved.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunResult, *types.Fault) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	//nolint:gosec // G204: Exe comes from PATH discovery, args from the session layer
	cmd := exec.CommandContext(ctx, req.Exe, req.Args...)
	// Expiry must take down subprocesses the interpreter spawned, not just
	// the interpreter itself: a surviving subprocess keeps the output pipes
	// open and would stall Run until it exits on its own.
	configureProcessGroup(cmd)
	cmd.WaitDelay = time.Second
	cmd.Dir = req.Dir
	cmd.Env = os.Environ()
	for key, value := range req.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		r.logger.Warn("R command timed out", "timeout", req.Timeout, "args", req.Args)
		return nil, types.NewFault(types.CodeTimeout,
			fmt.Sprintf("R command timed out after %g seconds", req.Timeout.Seconds()),
			"Increase timeout_sec parameter",
			"Check for infinite loops in your code",
		)
	}

	result := &RunResult{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, types.NewFault(types.CodeExecError,
			fmt.Sprintf("Failed to execute R command: %s", err))
	}
	return result, nil
}
