package compiler

import "fmt"

// Severity classifies a Diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported problem, carrying the byte offset of the
// offending token.
type Diagnostic struct {
	Message  string
	Offset   int
	Severity Severity
}

// Collector accumulates diagnostics for a single compilation. Lowering
// aborts on the first fatal error, but the collector may hold more than
// one diagnostic by the time it does.
type Collector struct {
	Diags []Diagnostic
}

// Add appends a diagnostic.
func (c *Collector) Add(message string, offset int, severity Severity) {
	c.Diags = append(c.Diags, Diagnostic{Message: message, Offset: offset, Severity: severity})
}

// Errorf appends a SeverityError diagnostic formatted like fmt.Sprintf.
func (c *Collector) Errorf(offset int, format string, args ...any) {
	c.Add(fmt.Sprintf(format, args...), offset, SeverityError)
}

// CompileError is a semantic error aborting the current compilation.
// Its Offset duplicates the offset already appended to
// the Collector, so callers that only see the returned error can still
// report a position.
type CompileError struct {
	Message string
	Offset  int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error at %d: %s", e.Offset, e.Message)
}

// SyntaxError wraps a diagnostic surfaced directly from the parser,
// which the compiler treats as an external collaborator's output rather
// than something it produces itself.
type SyntaxError struct {
	Message string
	Offset  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Offset, e.Message)
}

// fail records message at offset on the collector and returns a
// CompileError carrying the same information, the shared shape every
// lowering function uses to abort.
func (c *Compiler) fail(offset int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	c.diags.Add(msg, offset, SeverityError)
	return &CompileError{Message: msg, Offset: offset}
}
