package errors

import (
	"fmt"
	"strings"
)

// ExtractContext extracts the lines surrounding the given location from source
// for error context display. It returns a formatted string showing the error
// location with line numbers and a caret under the offending column.
func ExtractContext(source string, location Location, contextLines int) string {
	if !location.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(source, "\n")

	errorLine := location.Line - 1 // Convert to 0-based index
	if errorLine >= len(lines) {
		errorLine = len(lines) - 1
	}
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, strings.TrimRight(lines[i], "\r")))

		if i == errorLine && location.Column > 0 {
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", location.Column-1)))
		}
	}

	return sb.String()
}

// WithContext fills err.Context with lines extracted from source.
func WithContext(err *Error, source string, contextLines int) *Error {
	if err.Location.IsValid() {
		err.Context = ExtractContext(source, err.Location, contextLines)
	}
	return err
}

// AddContextToError adds context to an error from the source it was raised for.
func AddContextToError(err *Error, source string) *Error {
	return WithContext(err, source, 2) // Show 2 lines before and after by default
}
