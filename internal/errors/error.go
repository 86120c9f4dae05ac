package errors

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryRouting  Category = "routing"
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryBuild    Category = "build"
	CategoryCLI      Category = "cli"
)

// Location represents a source code location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// MfextError is a structured error with an optional source location and
// a fix suggestion.
type MfextError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source code location where the error occurred.
	Location *Location

	// Context contains surrounding source code lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *MfextError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *MfextError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds source location to the error.
func (e *MfextError) WithLocation(file string, line, column int) *MfextError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithLocationFromError extracts location from the first Go compiler
// diagnostic ("file.go:line:column: message") found in err.
func (e *MfextError) WithLocationFromError(err error) *MfextError {
	if err == nil {
		return e
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 4)
		if len(parts) < 4 || !strings.HasSuffix(parts[0], ".go") {
			continue
		}
		var ln, col int
		fmt.Sscanf(parts[1], "%d", &ln)
		fmt.Sscanf(parts[2], "%d", &col)
		if ln > 0 {
			return e.WithLocation(parts[0], ln, col)
		}
	}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *MfextError) WithSuggestion(s string) *MfextError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation of the error.
func (e *MfextError) WithDetail(d string) *MfextError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *MfextError) Wrap(err error) *MfextError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum > endLine {
			break
		}
		if lineNum >= startLine {
			lines = append(lines, scanner.Text())
		}
	}

	return lines
}

// New creates an MfextError from a registered error code.
func New(code string) *MfextError {
	template, ok := registry[code]
	if !ok {
		return &MfextError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &MfextError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new MfextError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *MfextError {
	return &MfextError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an MfextError unless it already is one.
func FromError(err error, code string) *MfextError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MfextError); ok {
		return me
	}
	return New(code).Wrap(err)
}
