package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/blowfish"
)

// magicCipherData is the bcrypt plaintext "OrpheanBeholderScryDoubt".
var magicCipherData = []byte{
	0x4f, 0x72, 0x70, 0x68,
	0x65, 0x61, 0x6e, 0x42,
	0x65, 0x68, 0x6f, 0x6c,
	0x64, 0x65, 0x72, 0x53,
	0x63, 0x72, 0x79, 0x44,
	0x6f, 0x75, 0x62, 0x74,
}

// DerivePassphraseKey derives the root of the key hierarchy from a user
// passphrase and the vendor-supplied salt.
//
// The passphrase is hashed with SHA-256, the hash is stretched with bcrypt
// at cost 8 and the first 16 bytes of the 24-byte bcrypt output become the
// key. The salt must be exactly 16 bytes; it is never truncated or padded.
func DerivePassphraseKey(passphrase string, salt []byte) (Key, error) {
	if len(salt) != SaltSize {
		return Key{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSalt, len(salt), SaltSize)
	}

	hash := sha256.Sum256([]byte(passphrase))
	defer Zero(hash[:])

	out, err := bcryptRaw(BcryptCost, salt, hash[:])
	if err != nil {
		return Key{}, err
	}
	defer Zero(out)

	var k Key
	copy(k[:], out[:KeySize])
	return k, nil
}

// AuthVerifier returns the value sent to the session service in place of the
// passphrase: URL-safe unpadded base64 of SHA-256(key).
func AuthVerifier(key Key) string {
	sum := sha256.Sum256(key[:])
	return ToBase64URL(sum[:])
}

// bcryptRaw runs the EksBlowfish setup with the given cost, salt and key and
// encrypts the magic text 64 times, returning all 24 output bytes. Unlike
// the modular-crypt bcrypt, the key is used exactly as given: no NUL
// terminator is appended and nothing is base64 encoded.
func bcryptRaw(cost uint, salt, key []byte) ([]byte, error) {
	c, err := blowfish.NewSaltedCipher(key, salt)
	if err != nil {
		return nil, fmt.Errorf("bcrypt setup: %w", err)
	}

	rounds := uint64(1) << cost
	for i := uint64(0); i < rounds; i++ {
		blowfish.ExpandKey(key, c)
		blowfish.ExpandKey(salt, c)
	}

	out := make([]byte, bcryptOutputSize)
	copy(out, magicCipherData)
	for i := 0; i < bcryptOutputSize; i += 8 {
		for j := 0; j < 64; j++ {
			c.Encrypt(out[i:i+8], out[i:i+8])
		}
	}
	return out, nil
}
