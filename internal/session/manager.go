// Package session owns the single mutable tidyflow session: the working
// directory, the primary script file, the cached interpreter path and the
// persisted shadow copy of that configuration.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Broccolito/TidyFlow/internal/config"
	"github.com/Broccolito/TidyFlow/internal/sandbox"
	"github.com/Broccolito/TidyFlow/internal/types"
)

// Manager composes PathGuard, StateStore and Runner behind the
// operation-level contract used by the tool handlers.
//
// Manager is driven by the single-threaded MCP dispatch loop and holds no
// locks. It is NOT safe for concurrent callers to mutate the working
// directory or the primary file from two operations in flight at once;
// the persisted record then reflects the last writer.
type Manager struct {
	cfg    *config.Config
	store  *sandbox.StateStore
	runner *sandbox.Runner
	logger *slog.Logger

	workdir     string // absolute; empty until set_workdir succeeds
	statePath   string
	primaryFile string
	rExe        string // cached interpreter path
}

// NewManager creates an unconfigured session.
func NewManager(cfg *config.Config, store *sandbox.StateStore, runner *sandbox.Runner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:         cfg,
		store:       store,
		runner:      runner,
		logger:      logger,
		primaryFile: cfg.Session.PrimaryFile,
	}
}

// Workdir returns the configured working directory, or "" when
// unconfigured.
func (m *Manager) Workdir() string { return m.workdir }

// PrimaryFile returns the current default target script name.
func (m *Manager) PrimaryFile() string { return m.primaryFile }

// EnsureWorkdir confirms the session is configured and its directory
// still exists. Operations that depend on the workdir call this first and
// fail fast on the returned fault.
func (m *Manager) EnsureWorkdir() *types.Fault {
	if m.workdir == "" {
		return types.NewFault(types.CodeNoWorkdir,
			"Working directory not set. Use set_workdir first.",
			"Call set_workdir with a directory path")
	}
	if info, err := os.Stat(m.workdir); err != nil || !info.IsDir() {
		return types.NewFault(types.CodeWorkdirMissing,
			fmt.Sprintf("Working directory %s no longer exists", m.workdir),
			"Recreate or set a new working directory")
	}
	return nil
}

// SetWorkdir configures the session root. With create the directory is
// made (parents included); otherwise a missing target is DIR_NOT_FOUND.
// On success the hidden state directory is created and the persisted
// record is refreshed, assigning a session ID on first configure.
// Re-issuing on the same directory is idempotent and leaves the primary
// file unchanged.
func (m *Manager) SetWorkdir(path string, create bool) (map[string]any, *types.Fault) {
	workdir, err := filepath.Abs(path)
	if err != nil {
		return nil, types.NewFault(types.CodeSetWorkdirError,
			fmt.Sprintf("Failed to set working directory: %s", err))
	}

	if create {
		if err := os.MkdirAll(workdir, 0o755); err != nil {
			return nil, types.NewFault(types.CodeSetWorkdirError,
				fmt.Sprintf("Failed to create working directory: %s", err))
		}
	}

	info, err := os.Stat(workdir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.NewFault(types.CodeDirNotFound,
				fmt.Sprintf("Directory %s does not exist", path),
				"Set create=true to create the directory",
				"Provide an existing directory path")
		}
		return nil, types.NewFault(types.CodeSetWorkdirError,
			fmt.Sprintf("Failed to set working directory: %s", err))
	}
	if !info.IsDir() {
		return nil, types.NewFault(types.CodeNotADirectory,
			fmt.Sprintf("%s is not a directory", path))
	}

	stateDir := filepath.Join(workdir, m.cfg.Session.StateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, types.NewFault(types.CodeSetWorkdirError,
			fmt.Sprintf("Failed to create state directory: %s", err))
	}

	m.workdir = workdir
	m.statePath = filepath.Join(stateDir, "state.json")

	m.persist(func(rec *sandbox.StateRecord) {
		rec.Workdir = workdir
		if rec.SessionID == "" {
			rec.SessionID = uuid.NewString()
		}
	})

	return map[string]any{
		"workdir":      workdir,
		"primary_file": m.primaryFile,
		"state_dir":    stateDir,
	}, nil
}

// SetPrimaryFile records filename as the default target script and
// persists it before returning. The caller validates existence and
// containment first.
func (m *Manager) SetPrimaryFile(filename string) {
	m.primaryFile = filename
	m.persist(nil)
}

// ResolvePath resolves name inside the working directory, rejecting any
// path that escapes it.
func (m *Manager) ResolvePath(name string) (string, *types.Fault) {
	resolved, err := sandbox.Resolve(m.workdir, name)
	if err != nil {
		return "", types.NewFault(types.CodeUnsafePath,
			fmt.Sprintf("File path %s is outside working directory", name))
	}
	return resolved, nil
}

// Interpreter returns the cached R interpreter path, discovering it on
// first use.
func (m *Manager) Interpreter() (string, bool) {
	if m.rExe != "" {
		return m.rExe, true
	}
	exe, _, ok := m.runner.FindInterpreter()
	if ok {
		m.rExe = exe
	}
	return exe, ok
}

// FindInterpreter reports the current PATH discovery result without
// touching the cache. Used by which_r.
func (m *Manager) FindInterpreter() (string, []string, bool) {
	return m.runner.FindInterpreter()
}

// RunR executes the R interpreter with args in the working directory,
// bounded by timeout. The child inherits the parent environment plus
// R_LIBS_USER pointing at the per-workdir library directory.
func (m *Manager) RunR(ctx context.Context, args []string, timeout time.Duration) (*sandbox.RunResult, *types.Fault) {
	exe, ok := m.Interpreter()
	if !ok {
		return nil, sandbox.NotFoundFault()
	}
	return m.runner.Run(ctx, sandbox.RunRequest{
		Exe:  exe,
		Args: args,
		Dir:  m.workdir,
		Env: map[string]string{
			"R_LIBS_USER": filepath.Join(m.workdir, m.cfg.Session.LibDirName),
		},
		Timeout: timeout,
	})
}

// Snapshot returns the in-memory session view merged with the persisted
// record, for get_state.
func (m *Manager) Snapshot() map[string]any {
	snap := map[string]any{
		"workdir":      nil,
		"primary_file": m.primaryFile,
	}
	if m.workdir != "" {
		snap["workdir"] = m.workdir
	}
	if exe, _, ok := m.runner.FindInterpreter(); ok {
		snap["r_executable"] = exe
	} else {
		snap["r_executable"] = nil
	}

	if m.statePath != "" {
		rec := m.store.Load(m.statePath)
		if rec.Workdir != "" {
			snap["workdir"] = rec.Workdir
		}
		if rec.PrimaryFile != "" {
			snap["primary_file"] = rec.PrimaryFile
		}
		if rec.SessionID != "" {
			snap["session_id"] = rec.SessionID
		}
		if rec.UpdatedAt != "" {
			snap["updated_at"] = rec.UpdatedAt
		}
		for k, v := range rec.Extra {
			snap[k] = v
		}
	}
	return snap
}

// persist refreshes the on-disk record: load, apply mutate, stamp the
// update time, save. The in-memory and on-disk views must not diverge
// after a successful mutating call, so every such call routes through
// here before returning.
func (m *Manager) persist(mutate func(rec *sandbox.StateRecord)) {
	if m.statePath == "" {
		return
	}
	rec := m.store.Load(m.statePath)
	rec.Workdir = m.workdir
	rec.PrimaryFile = m.primaryFile
	if mutate != nil {
		mutate(rec)
	}
	rec.UpdatedAt = time.Now().Format(time.RFC3339)
	m.store.Save(m.statePath, rec)
}
