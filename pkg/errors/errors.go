// Package errors holds the ingestion error taxonomy shared by the document reader,
// the resolver, the normalizer and the reconciliation engine.
//
// Structural errors (document, schema, filename, program lookup) abort a whole document
// and reach the caller. Row errors are recovered and counted. Conflicts are recovered
// inside the reconciliation engine and never surface. Storage errors roll back the
// current transaction and surface as server failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an ingestion failure
type Kind string

const (
	KindMalformedDocument      Kind = "malformed_document"
	KindSchemaInference        Kind = "schema_inference"
	KindFilenameFormat         Kind = "filename_format"
	KindProgramNotFound        Kind = "program_not_found"
	KindRecordNormalization    Kind = "record_normalization"
	KindReconciliationConflict Kind = "reconciliation_conflict"
	KindStorage                Kind = "storage"
)

// ErrUnsupportedFormat legacy binary formats (.xls, .doc) cannot be opened
var ErrUnsupportedFormat = errors.New("unsupported document format")

// MalformedDocumentError a required table or sheet is absent
type MalformedDocumentError struct {
	Reason string
	Advice string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed document: %s: %v", e.Reason, e.Err)
	}
	return "malformed document: " + e.Reason
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// SchemaInferenceError a mandatory field could not be resolved from any header
type SchemaInferenceError struct {
	Field   string
	Headers []string
}

func (e *SchemaInferenceError) Error() string {
	return fmt.Sprintf("cannot resolve mandatory column %q from headers [%s]",
		e.Field, strings.Join(e.Headers, " | "))
}

// FilenameFormatError the upload filename does not encode a program-code prefix
type FilenameFormatError struct {
	Filename string
}

func (e *FilenameFormatError) Error() string {
	return fmt.Sprintf("filename %q does not match <code>_<rest>.xlsx", e.Filename)
}

// ProgramNotFoundError the filename prefix resolves to no program
type ProgramNotFoundError struct {
	Prefix    string
	Available []string
}

func (e *ProgramNotFoundError) Error() string {
	return fmt.Sprintf("no program with short code prefix %q", e.Prefix)
}

// RecordNormalizationError a single row could not be coerced
type RecordNormalizationError struct {
	Row    int
	Reason string
}

func (e *RecordNormalizationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ReconciliationConflictError a uniqueness constraint fired during insert
type ReconciliationConflictError struct {
	Entity string
	Key    string
	Err    error
}

func (e *ReconciliationConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists: %v", e.Entity, e.Key, e.Err)
}

func (e *ReconciliationConflictError) Unwrap() error { return e.Err }

// StorageError an underlying datastore write failed
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError; nil stays nil and existing
// StorageErrors are not wrapped twice.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// KindOf reports the taxonomy kind of err, or "" when err is outside it
func KindOf(err error) Kind {
	var (
		md *MalformedDocumentError
		si *SchemaInferenceError
		ff *FilenameFormatError
		pn *ProgramNotFoundError
		rn *RecordNormalizationError
		rc *ReconciliationConflictError
		st *StorageError
	)
	switch {
	case errors.As(err, &md):
		return KindMalformedDocument
	case errors.As(err, &si):
		return KindSchemaInference
	case errors.As(err, &ff):
		return KindFilenameFormat
	case errors.As(err, &pn):
		return KindProgramNotFound
	case errors.As(err, &rn):
		return KindRecordNormalization
	case errors.As(err, &rc):
		return KindReconciliationConflict
	case errors.As(err, &st):
		return KindStorage
	}
	return ""
}

// IsStructural reports whether err aborts a whole document as bad input
func IsStructural(err error) bool {
	switch KindOf(err) {
	case KindMalformedDocument, KindSchemaInference, KindFilenameFormat, KindProgramNotFound:
		return true
	}
	return false
}

// Advice returns operator guidance for structural errors
func Advice(err error) string {
	var (
		md *MalformedDocumentError
		si *SchemaInferenceError
		ff *FilenameFormatError
		pn *ProgramNotFoundError
	)
	switch {
	case errors.As(err, &md):
		return md.Advice
	case errors.As(err, &si):
		return "detected columns: " + strings.Join(si.Headers, ", ")
	case errors.As(err, &ff):
		return "rename the file to <program code>_<anything>.xlsx, e.g. 09.04.04_plan_2024.xlsx"
	case errors.As(err, &pn):
		if len(pn.Available) == 0 {
			return "no programs exist yet; create the program first"
		}
		return "available program codes: " + strings.Join(pn.Available, ", ")
	}
	return ""
}
