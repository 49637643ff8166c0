package sandbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/Broccolito/TidyFlow/internal/types"
)

func newTestRunner() *Runner {
	return NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunCapturesOutput(t *testing.T) {
	runner := newTestRunner()

	result, fault := runner.Run(context.Background(), RunRequest{
		Exe:     "/bin/sh",
		Args:    []string{"-c", "echo out; echo err 1>&2"},
		Dir:     t.TempDir(),
		Timeout: 10 * time.Second,
	})
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if result.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "out\n")
	}
	if result.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", result.Stderr, "err\n")
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0", result.Elapsed)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	runner := newTestRunner()

	result, fault := runner.Run(context.Background(), RunRequest{
		Exe:     "/bin/sh",
		Args:    []string{"-c", "exit 3"},
		Dir:     t.TempDir(),
		Timeout: 10 * time.Second,
	})
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestRunTimeout(t *testing.T) {
	runner := newTestRunner()

	start := time.Now()
	result, fault := runner.Run(context.Background(), RunRequest{
		Exe:     "/bin/sh",
		Args:    []string{"-c", "sleep 5"},
		Dir:     t.TempDir(),
		Timeout: 1 * time.Second,
	})
	elapsed := time.Since(start)

	if fault == nil {
		t.Fatalf("expected TIMEOUT fault, got result %+v", result)
	}
	if fault.Code != types.CodeTimeout {
		t.Errorf("fault code = %s, want %s", fault.Code, types.CodeTimeout)
	}
	// The child is killed on expiry, so the call returns well before the
	// 5 second sleep would have finished.
	if elapsed >= 4*time.Second {
		t.Errorf("Run returned after %v, child was not terminated", elapsed)
	}
}

func TestRunTimeoutKillsSpawnedSubprocesses(t *testing.T) {
	runner := newTestRunner()
	dir := t.TempDir()
	marker := filepath.Join(dir, "survivor")

	start := time.Now()
	_, fault := runner.Run(context.Background(), RunRequest{
		Exe:     "/bin/sh",
		Args:    []string{"-c", "(sleep 2; touch " + marker + ") & sleep 5"},
		Dir:     dir,
		Timeout: 1 * time.Second,
	})
	elapsed := time.Since(start)

	if fault == nil || fault.Code != types.CodeTimeout {
		t.Fatalf("fault = %v, want %s", fault, types.CodeTimeout)
	}
	// The background subshell holds the output pipes; Run must not wait
	// out its sleep.
	if elapsed >= 4*time.Second {
		t.Errorf("Run returned after %v, spawned subprocess was not terminated", elapsed)
	}
	// Were the subshell still alive it would create the marker at ~2s.
	time.Sleep(2 * time.Second)
	if _, err := os.Stat(marker); err == nil {
		t.Error("spawned subprocess survived the timeout kill")
	}
}

func TestRunExtraEnv(t *testing.T) {
	runner := newTestRunner()

	result, fault := runner.Run(context.Background(), RunRequest{
		Exe:     "/bin/sh",
		Args:    []string{"-c", "printf '%s' \"$R_LIBS_USER\""},
		Dir:     t.TempDir(),
		Env:     map[string]string{"R_LIBS_USER": "/work/R_libs"},
		Timeout: 10 * time.Second,
	})
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if result.Stdout != "/work/R_libs" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "/work/R_libs")
	}
}

func TestRunLaunchFailure(t *testing.T) {
	runner := newTestRunner()

	_, fault := runner.Run(context.Background(), RunRequest{
		Exe:     "/nonexistent/interpreter",
		Args:    []string{"-e", "1"},
		Dir:     t.TempDir(),
		Timeout: 10 * time.Second,
	})
	if fault == nil {
		t.Fatal("expected EXEC_ERROR fault")
	}
	if fault.Code != types.CodeExecError {
		t.Errorf("fault code = %s, want %s", fault.Code, types.CodeExecError)
	}
	if fault.Message == "" {
		t.Error("fault message empty, want underlying error preserved")
	}
}

func TestFindInterpreterPrefersRscript(t *testing.T) {
	lookPath := func(name string) (string, error) {
		switch name {
		case "Rscript":
			return "/usr/local/bin/Rscript", nil
		case "R":
			return "/usr/local/bin/R", nil
		}
		return "", exec.ErrNotFound
	}
	runner := NewRunnerWithLookPath(lookPath, slog.New(slog.NewTextHandler(io.Discard, nil)))

	exe, alternatives, ok := runner.FindInterpreter()
	if !ok {
		t.Fatal("expected interpreter to be found")
	}
	if exe != "/usr/local/bin/Rscript" {
		t.Errorf("exe = %q, want Rscript path", exe)
	}
	if len(alternatives) != 2 {
		t.Errorf("alternatives = %v, want both paths", alternatives)
	}
}

func TestFindInterpreterFallsBackToR(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "R" {
			return "/usr/bin/R", nil
		}
		return "", exec.ErrNotFound
	}
	runner := NewRunnerWithLookPath(lookPath, slog.New(slog.NewTextHandler(io.Discard, nil)))

	exe, _, ok := runner.FindInterpreter()
	if !ok || exe != "/usr/bin/R" {
		t.Errorf("exe = %q, ok = %v, want fallback /usr/bin/R", exe, ok)
	}
}

func TestFindInterpreterMissing(t *testing.T) {
	lookPath := func(string) (string, error) { return "", exec.ErrNotFound }
	runner := NewRunnerWithLookPath(lookPath, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, _, ok := runner.FindInterpreter(); ok {
		t.Error("expected no interpreter on an empty search path")
	}
	if fault := NotFoundFault(); fault.Code != types.CodeRNotFound {
		t.Errorf("NotFoundFault code = %s, want %s", fault.Code, types.CodeRNotFound)
	}
}
