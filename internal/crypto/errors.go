package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when a key or wrapped key is not exactly
	// 16 bytes.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidCiphertextSize is returned when a ciphertext cannot have the
	// authenticated layout. No cryptographic work is done in that case.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrDecryptionFailed is matched by every error Decrypt returns.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrAuthenticationFailed is returned when the MAC or the version byte
	// does not verify.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidPadding is returned when the block padding of an
	// authenticated ciphertext is malformed.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrEntropyUnavailable is returned when the random source cannot
	// supply bytes.
	ErrEntropyUnavailable = errors.New("entropy unavailable")

	// ErrInvalidIVSize is returned when a caller-supplied IV is not 16 bytes.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrInvalidSalt is returned when the passphrase salt is not the size
	// bcrypt requires.
	ErrInvalidSalt = errors.New("invalid salt")
)

// decryptError keeps the specific failure kind while also matching
// ErrDecryptionFailed.
type decryptError struct {
	kind error
}

func (e *decryptError) Error() string {
	return ErrDecryptionFailed.Error() + ": " + e.kind.Error()
}

func (e *decryptError) Unwrap() []error {
	return []error{ErrDecryptionFailed, e.kind}
}

func decryptFailure(kind error) error {
	return &decryptError{kind: kind}
}
