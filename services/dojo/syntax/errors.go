package syntax

import (
	"errors"
	"fmt"
)

// Sentinel errors for parse operations.
var (
	// ErrUnsupportedLanguage indicates no grammar is known for a file.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates tree-sitter returned no tree.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates content that is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates content above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError carries the file and position of a parse failure.
type ParseError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// WrapParseError attaches a file path to err unless it is already a
// ParseError. Returns nil for a nil err.
func WrapParseError(err error, filePath string) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return err
	}
	return &ParseError{FilePath: filePath, Message: err.Error(), Cause: err}
}

// IsParseError reports whether err wraps a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
