package ir

import "strings"

// ErrorLevel classifies how far an error is allowed to propagate.
type ErrorLevel string

const (
	LevelWarning ErrorLevel = "warning"
	LevelError   ErrorLevel = "error"
)

// ParseError is a soft failure produced while resolving one entity.
// It is returned alongside partial state, never panicked or wrapped into
// control flow: callers inspect it and decide whether the enclosing
// endpoint survives.
type ParseError struct {
	Level  ErrorLevel
	Header string
	Detail string
	// Data holds the offending document fragment, when one can be named.
	Data any
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Header != "" {
		b.WriteString(e.Header)
	} else {
		b.WriteString("unable to parse")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// NewParseError builds an error-level ParseError.
func NewParseError(detail string) *ParseError {
	return &ParseError{Level: LevelError, Header: "unable to process OpenAPI document", Detail: detail}
}

// NewWarning builds a warning-level ParseError.
func NewWarning(detail string) *ParseError {
	return &ParseError{Level: LevelWarning, Header: "warning while processing OpenAPI document", Detail: detail}
}

// PropertyError is a ParseError raised while building a single Property.
// The offending schema fragment travels with it for diagnostics.
type PropertyError struct {
	ParseError
}

// NewPropertyError tags a schema fragment with a failure detail.
func NewPropertyError(detail string, data any) *PropertyError {
	return &PropertyError{ParseError{
		Level:  LevelError,
		Header: "problem creating a property",
		Detail: detail,
		Data:   data,
	}}
}

// GeneratorError is a document-scoped failure. A GeneratorError at
// ErrorLevel error aborts the whole run; nothing below it does.
type GeneratorError struct {
	ParseError
}

// NewGeneratorError builds a fatal, document-scoped error.
func NewGeneratorError(header, detail string) *GeneratorError {
	return &GeneratorError{ParseError{Level: LevelError, Header: header, Detail: detail}}
}
