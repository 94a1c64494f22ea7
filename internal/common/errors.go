package common

import "fmt"

// FileError reports a missing or unreadable input file. Fatal: the run
// aborts.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("input file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// SchemaError reports a required column missing from an input header.
// Fatal: the run aborts.
type SchemaError struct {
	Path   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input file %s: required column %s not found", e.Path, e.Column)
}

// Warning is a non-fatal data quality finding. Warnings are collected and
// reported; execution continues with the available data.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}
