package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// Encrypt protects plaintext with AES-128-CBC under sk.Cipher and
// authenticates the result with HMAC-SHA-256 under sk.MAC.
//
// Output layout: version (1) || IV (16) || ciphertext (16k) || MAC (32).
// PKCS#7 padding always adds at least one byte, so a plaintext that is a
// multiple of the block size gains a full block. The only error is
// ErrEntropyUnavailable.
func Encrypt(sk SubKeys, plaintext []byte) ([]byte, error) {
	var iv [IVSize]byte
	if err := readRandom(iv[:]); err != nil {
		return nil, err
	}
	return seal(sk, iv[:], plaintext), nil
}

// EncryptWithIV is Encrypt with a caller-chosen IV. Reusing an IV under the
// same key leaks plaintext equality; it exists to reproduce fixed vectors.
func EncryptWithIV(sk SubKeys, iv, plaintext []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVSize)
	}
	return seal(sk, iv, plaintext), nil
}

func seal(sk SubKeys, iv, plaintext []byte) []byte {
	padded := len(plaintext)/BlockSize*BlockSize + BlockSize
	bodyEnd := 1 + IVSize + padded

	out := make([]byte, bodyEnd, bodyEnd+MACSize)
	out[0] = Version
	copy(out[1:1+IVSize], iv)

	body := out[1+IVSize : bodyEnd]
	copy(body, plaintext)
	pad := byte(padded - len(plaintext))
	for i := len(plaintext); i < padded; i++ {
		body[i] = pad
	}

	block, _ := aes.NewCipher(sk.Cipher[:])
	cipher.NewCBCEncrypter(block, out[1:1+IVSize]).CryptBlocks(body, body)

	return append(out, computeMAC(sk.MAC, out[1:bodyEnd])...)
}

// Decrypt verifies and decrypts a ciphertext produced by Encrypt.
//
// The checks run in a fixed order:
//  1. Length: shorter than 33 bytes, or length mod 16 != 1, is rejected
//     before any cryptographic work.
//  2. Version byte and MAC, compared in constant time.
//  3. CBC decryption and padding removal.
//
// Plaintext is only produced once step 2 has passed. Every returned error
// matches ErrDecryptionFailed; the specific cause (ErrInvalidCiphertextSize,
// ErrAuthenticationFailed, ErrInvalidPadding) is also matched.
func Decrypt(sk SubKeys, message []byte) ([]byte, error) {
	if len(message) < MinCiphertextSize || len(message)%BlockSize != 1 {
		return nil, decryptFailure(fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertextSize, len(message)))
	}

	macStart := len(message) - MACSize
	authenticated := message[1:macStart]

	expected := computeMAC(sk.MAC, authenticated)
	macOK := hmac.Equal(expected, message[macStart:])
	if !macOK || message[0] != Version {
		return nil, decryptFailure(ErrAuthenticationFailed)
	}

	if len(authenticated) < IVSize+BlockSize {
		return nil, decryptFailure(ErrInvalidPadding)
	}

	iv := authenticated[:IVSize]
	plaintext := make([]byte, len(authenticated)-IVSize)

	block, _ := aes.NewCipher(sk.Cipher[:])
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, authenticated[IVSize:])

	n, ok := unpad(plaintext)
	if !ok {
		Zero(plaintext)
		return nil, decryptFailure(ErrInvalidPadding)
	}
	return plaintext[:n], nil
}

// unpad returns the unpadded length of a PKCS#7 padded buffer.
func unpad(b []byte) (int, bool) {
	pad := int(b[len(b)-1])
	if pad == 0 || pad > BlockSize || pad > len(b) {
		return 0, false
	}
	for _, v := range b[len(b)-pad:] {
		if int(v) != pad {
			return 0, false
		}
	}
	return len(b) - pad, true
}

func computeMAC(key Key, data []byte) []byte {
	mac := hmac.New(sha256.New, key[:])
	mac.Write(data)
	return mac.Sum(nil)
}
