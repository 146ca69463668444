package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes the type of error encountered while loading a grammar or parsing tag source.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // Source does not match the grammar
	ErrorTypeStructural ErrorType = "structural" // Parse tree shape escaped the builder's rewrite table
	ErrorTypeGrammar    ErrorType = "grammar"    // Grammar resource is missing or malformed
)

// Location represents a position in tag source (or in a grammar file).
type Location struct {
	Source string // Source name, e.g. a file path or "<input>"
	Offset int    // Byte offset (0-based)
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based, in runes)
}

// String returns a human-readable representation of the location.
// Format: "source:line:column", or "line:column" when the source is unnamed.
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	if l.Source == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// IsValid returns true if the location has line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}

// Error represents a rich error with location, context, and suggestions.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Error message
	Location   Location  // Source location
	Lexeme     string    // Offending lexeme (syntax errors); "<EOF>" at end of input
	Expected   []string  // Terminals the recognizer would have accepted (syntax errors)
	Context    string    // Surrounding lines of source
	Suggestion string    // Suggested fix (optional)
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}

	if len(e.Expected) > 0 {
		sb.WriteString(fmt.Sprintf("\n  = expected: %s", strings.Join(e.Expected, ", ")))
	}

	if e.Context != "" {
		sb.WriteString("\n  |\n")
		sb.WriteString(strings.TrimRight(e.Context, "\n"))
		sb.WriteString("\n  |")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// Summary returns a single-line description suitable for chat replies and logs.
func (e *Error) Summary() string {
	if e.Location.IsValid() {
		return fmt.Sprintf("%s error at %d:%d: %s", e.Type, e.Location.Line, e.Location.Column, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// NewSyntaxError creates a syntax error for an unexpected lexeme.
func NewSyntaxError(loc Location, lexeme string, expected []string) *Error {
	msg := fmt.Sprintf("unexpected %s", describeLexeme(lexeme))
	return &Error{
		Type:     ErrorTypeSyntax,
		Message:  msg,
		Location: loc,
		Lexeme:   lexeme,
		Expected: expected,
	}
}

// NewStructuralError creates a builder invariant violation.
func NewStructuralError(loc Location, format string, args ...any) *Error {
	return &Error{
		Type:     ErrorTypeStructural,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// NewGrammarError creates a grammar resource error.
func NewGrammarError(loc Location, format string, args ...any) *Error {
	return &Error{
		Type:     ErrorTypeGrammar,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

func describeLexeme(lexeme string) string {
	switch lexeme {
	case "", EOF:
		return "end of input"
	default:
		return fmt.Sprintf("%q", lexeme)
	}
}

// EOF is the lexeme reported when input ends before the grammar is satisfied.
const EOF = "<EOF>"

// AsError returns the *Error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsSyntax reports whether err is (or wraps) a syntax error.
func IsSyntax(err error) bool {
	return hasType(err, ErrorTypeSyntax)
}

// IsStructural reports whether err is (or wraps) a structural invariant violation.
func IsStructural(err error) bool {
	return hasType(err, ErrorTypeStructural)
}

// IsGrammar reports whether err is (or wraps) a grammar error or error list.
func IsGrammar(err error) bool {
	var el *ErrorList
	if errors.As(err, &el) {
		return el.HasErrorType(ErrorTypeGrammar)
	}
	return hasType(err, ErrorTypeGrammar)
}

func hasType(err error, t ErrorType) bool {
	e, ok := AsError(err)
	return ok && e.Type == t
}

// ErrorList represents a collection of errors, used when a grammar resource has several problems.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// HasErrorType returns true if the error list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// Outcome classifies the result of a parse for logs and metrics:
// "ok", "syntax_error", "structural_error", "grammar_error" or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if IsGrammar(err) {
		return "grammar_error"
	}
	if e, ok := AsError(err); ok {
		return string(e.Type) + "_error"
	}
	return "error"
}
