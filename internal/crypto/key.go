package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used for keys and IVs.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

// Key is a 128-bit secret: a cipher key, or a value to be wrapped.
type Key [KeySize]byte

// KeyFromBytes copies b into a Key.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(b), KeySize)
	}
	copy(k[:], b)
	return k, nil
}

// Zero overwrites the key in place.
func (k *Key) Zero() {
	Zero(k[:])
}

// CreateKey returns a fresh key from the operating system's CSPRNG.
// It never falls back to a weaker source.
func CreateKey() (Key, error) {
	var k Key
	if err := readRandom(k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}

func readRandom(b []byte) error {
	r := randReader
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, b); err != nil {
		Zero(b)
		return fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return nil
}
