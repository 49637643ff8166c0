// Package types provides shared types used across the tidyflow codebase
package types

// Error codes returned inside response envelopes.
//
// Configuration errors are recoverable by reconfiguring the session,
// path-safety errors are caller input errors, and process errors are
// environment issues surfaced with remediation hints. None of them are
// retried automatically.
const (
	CodeNoWorkdir      = "NO_WORKDIR"
	CodeWorkdirMissing = "WORKDIR_MISSING"
	CodeUnsafePath     = "UNSAFE_PATH"
	CodeDirNotFound    = "DIR_NOT_FOUND"
	CodeNotADirectory  = "NOT_A_DIRECTORY"
	CodeRNotFound      = "R_NOT_FOUND"
	CodeTimeout        = "TIMEOUT"
	CodeExecError      = "EXEC_ERROR"
	CodeScriptError    = "SCRIPT_ERROR"

	CodeFileExists      = "FILE_EXISTS"
	CodeFileNotFound    = "FILE_NOT_FOUND"
	CodeEmptyFile       = "EMPTY_FILE"
	CodeNoRData         = "NO_RDATA"
	CodeSetWorkdirError = "SET_WORKDIR_ERROR"
	CodeCreateError     = "CREATE_ERROR"
	CodeRenameError     = "RENAME_ERROR"
	CodeAppendError     = "APPEND_ERROR"
	CodeWriteError      = "WRITE_ERROR"
	CodeListError       = "LIST_ERROR"
	CodeReadError       = "READ_ERROR"
	CodePreviewError    = "PREVIEW_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Fault is a tagged operation failure carried inside an error envelope.
// Filename, Expression and Stderr are attached by tool handlers when the
// failure relates to a specific file, expression or process run.
type Fault struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Hints      []string `json:"hints,omitempty"`
	Filename   string   `json:"filename,omitempty"`
	Expression string   `json:"expression,omitempty"`
	Stderr     string   `json:"stderr,omitempty"`
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return f.Code + ": " + f.Message
}

// NewFault creates a Fault with the given code, message and optional hints.
func NewFault(code, message string, hints ...string) *Fault {
	return &Fault{Code: code, Message: message, Hints: hints}
}

// Envelope is the response payload produced by every tool. Exactly one of
// Data and Error is populated.
type Envelope struct {
	OK    bool           `json:"ok"`
	Data  map[string]any `json:"data,omitempty"`
	Error *Fault         `json:"error,omitempty"`
}

// OKEnvelope wraps data in a success envelope.
func OKEnvelope(data map[string]any) Envelope {
	return Envelope{OK: true, Data: data}
}

// ErrEnvelope wraps a fault in an error envelope.
func ErrEnvelope(f *Fault) Envelope {
	return Envelope{OK: false, Error: f}
}
