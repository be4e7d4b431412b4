package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes. A failed check (bad manifest, broken chain) exits 1;
// problems running the command at all (missing journal, unreadable path)
// exit 2, mirroring grep's convention.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// Stable error codes carried in JSON responses so scripts can branch on
// the failure class instead of parsing messages.
const (
	ErrCodeGeneric  = "E001"
	ErrCodeManifest = "E002" // manifest compile or bind failure
	ErrCodeJournal  = "E003" // journal access failure
	ErrCodeChain    = "E004" // hash-chain verification failure
)

// ExitError carries the process exit code a command wants alongside the
// error itself, so main can os.Exit with it after cobra unwinds.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError with no underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and context to an existing error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode walks the error chain for an ExitError and returns its
// code, falling back to ExitFailure for plain errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every command writes in --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter renders command results as either human-readable text
// or the CLIResponse JSON envelope, depending on --format.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) jsonMode() bool {
	return f.Format == "json"
}

// Success writes a result. In text mode data is printed as-is; commands
// pass a pre-rendered string there and a structured value in JSON mode.
func (f *OutputFormatter) Success(data any) error {
	if f.jsonMode() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes a failure with its error code. Details only reach text
// output under --verbose; in JSON they always ride along.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.jsonMode() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes progress chatter under --verbose. It prefers
// ErrWriter so a JSON stream on stdout stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
