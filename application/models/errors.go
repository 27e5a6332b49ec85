package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed Sign operation.
type ErrorKind string

const (
	KindKeystore    ErrorKind = "KEYSTORE_ERROR"
	KindAlias       ErrorKind = "ALIAS_ERROR"
	KindCertificate ErrorKind = "CERT_ERROR"
	KindXMLParse    ErrorKind = "XML_PARSE_ERROR"
	KindSigning     ErrorKind = "SIGNING_ERROR"
	KindValidation  ErrorKind = "VALIDATION_ERROR"
	KindUnexpected  ErrorKind = "UNEXPECTED_ERROR"
)

// String returns the error kind as a string.
func (k ErrorKind) String() string {
	return string(k)
}

// SignError is the tagged error carried through the signing pipeline.
// Details holds diagnostic context (keystore path, alias) and never secrets.
type SignError struct {
	Kind    ErrorKind
	Message string
	Details string
	Cause   error
}

// NewSignError creates a SignError of the given kind.
func NewSignError(kind ErrorKind, message, details string, cause error) *SignError {
	return &SignError{
		Kind:    kind,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *SignError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *SignError) Unwrap() error {
	return e.Cause
}

// KeystoreError creates a keystore error. The path goes to Details, never the password.
func KeystoreError(message, path string, cause error) *SignError {
	return NewSignError(KindKeystore, message, "Path: "+path, cause)
}

// AliasError creates an alias resolution error.
func AliasError(message string) *SignError {
	return NewSignError(KindAlias, message, "", nil)
}

// CertificateError creates an error for a missing key or certificate under alias.
func CertificateError(message, alias string, cause error) *SignError {
	return NewSignError(KindCertificate, message, "Alias: "+alias, cause)
}

// XMLParseError creates an XML parse error. The document itself is never attached.
func XMLParseError(message string, cause error) *SignError {
	return NewSignError(KindXMLParse, message, "", cause)
}

// SigningError creates a signature construction error.
func SigningError(message string, cause error) *SignError {
	return NewSignError(KindSigning, message, "", cause)
}

// ValidationError creates a request validation error.
func ValidationError(message string) *SignError {
	return NewSignError(KindValidation, message, "", nil)
}

// AsSignError returns err as a *SignError, wrapping anything unclassified
// as an unexpected error with the original message preserved.
func AsSignError(err error) *SignError {
	if err == nil {
		return nil
	}
	var signErr *SignError
	if errors.As(err, &signErr) {
		return signErr
	}
	return NewSignError(KindUnexpected, "Unexpected error", "", err)
}

// KindOf reports the ErrorKind of err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsSignError(err).Kind
}
