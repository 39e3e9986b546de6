package crypto

import (
	"crypto/aes"
	"fmt"
)

// WrappedKey is a Key encrypted under a parent Key. It carries no integrity
// tag of its own.
type WrappedKey [WrappedKeySize]byte

// WrapKey encrypts child under parent as a single AES-128 block after
// masking every byte with 0x88.
func WrapKey(parent, child Key) WrappedKey {
	// aes.NewCipher only fails on invalid key sizes, and Key is always 16 bytes.
	block, _ := aes.NewCipher(parent[:])

	var w WrappedKey
	for i := range child {
		w[i] = child[i] ^ wrapMask
	}
	block.Encrypt(w[:], w[:])
	return w
}

// UnwrapKey reverses WrapKey. The wrapped value is length-checked before the
// cipher is touched; any length other than 16 bytes yields ErrInvalidKeySize.
func UnwrapKey(parent Key, wrapped []byte) (Key, error) {
	if len(wrapped) != WrappedKeySize {
		return Key{}, fmt.Errorf("%w: wrapped key is %d bytes, want %d", ErrInvalidKeySize, len(wrapped), WrappedKeySize)
	}

	block, _ := aes.NewCipher(parent[:])

	var k Key
	block.Decrypt(k[:], wrapped)
	for i := range k {
		k[i] ^= wrapMask
	}
	return k, nil
}

// Bytes returns a copy of the wrapped key as a slice.
func (w WrappedKey) Bytes() []byte {
	out := make([]byte, WrappedKeySize)
	copy(out, w[:])
	return out
}
