package mailvault

import (
	"errors"
	"fmt"

	"github.com/mailvault/client-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidSalt is returned when the passphrase salt is not 16 bytes.
	ErrInvalidSalt = errors.New("invalid salt")

	// ErrInvalidKey is returned when a wrapped key in a record is malformed.
	ErrInvalidKey = errors.New("invalid key")

	// ErrDecryptionFailed is returned when record content fails to decrypt.
	// Every content decryption failure matches it.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrEntropyUnavailable is returned when no secure random bytes could be
	// read for a new key or IV.
	ErrEntropyUnavailable = errors.New("entropy unavailable")

	// ErrMembershipNotFound is returned when the user record has no
	// membership of the mail group type.
	ErrMembershipNotFound = errors.New("mail group membership not found")

	// ErrKeychainClosed is returned when a closed keychain or closed
	// credentials are used.
	ErrKeychainClosed = errors.New("keychain has been closed")

	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidImportData is returned when an exported keychain is invalid.
	ErrInvalidImportData = errors.New("invalid import data")
)

// MailVaultError is implemented by all typed SDK errors.
type MailVaultError interface {
	error
	MailVaultError() // marker method
}

// KeyError reports a failure to recover a key in the hierarchy.
type KeyError struct {
	Stage string // "user group", "mail group", "session"
	Err   error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("unwrap %s key: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// MailVaultError implements the MailVaultError interface.
func (e *KeyError) MailVaultError() {}

// DecryptionError represents a failure to decrypt one field of a record.
type DecryptionError struct {
	Record string // "mail", "mailbody", "folder", "file"
	Field  string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decryption failed for %s %s: %v", e.Record, e.Field, e.Err)
	}
	return fmt.Sprintf("decryption failed for %s: %v", e.Record, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// MailVaultError implements the MailVaultError interface.
func (e *DecryptionError) MailVaultError() {}

// ValidationError contains multiple validation failures of one record.
type ValidationError struct {
	Record string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: %v", e.Record, e.Errors)
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// MailVaultError implements the MailVaultError interface.
func (e *ValidationError) MailVaultError() {}

// wrapCryptoError converts internal crypto errors to public sentinel errors
// so that errors.Is() checks work correctly. The original error text is kept.
func wrapCryptoError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return &publicError{sentinel: ErrDecryptionFailed, err: err}
	case errors.Is(err, crypto.ErrInvalidKeySize):
		return &publicError{sentinel: ErrInvalidKey, err: err}
	case errors.Is(err, crypto.ErrEntropyUnavailable):
		return &publicError{sentinel: ErrEntropyUnavailable, err: err}
	case errors.Is(err, crypto.ErrInvalidSalt):
		return &publicError{sentinel: ErrInvalidSalt, err: err}
	}
	return err
}

// publicError pairs an internal error with the public sentinel it maps to.
type publicError struct {
	sentinel error
	err      error
}

func (e *publicError) Error() string { return e.err.Error() }

func (e *publicError) Unwrap() []error { return []error{e.sentinel, e.err} }
