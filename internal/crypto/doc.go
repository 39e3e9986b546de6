// Package crypto implements the symmetric scheme that protects stored mail
// content: subjects, sender names, bodies, folder names and attachments.
//
// # Key Hierarchy
//
// Every secret is a 128-bit [Key]. The hierarchy is rooted in the user's
// passphrase:
//
//	passphrase --DerivePassphraseKey--> root key
//	root key   --UnwrapKey-->            user group key
//	group key  --UnwrapKey-->            mail group key
//	mail group --UnwrapKey-->            per-record session key
//	session    --DeriveSubKeys-->        cipher + MAC subkeys
//
// # Algorithm Suite
//
//   - bcrypt (cost 8) over SHA-256(passphrase): passphrase stretching.
//     The vendor-supplied salt must be exactly 16 bytes.
//
//   - AES-128 single block, with child XOR 0x88: key wrapping. No IV and
//     no MAC. Only suitable for random 16-byte key material.
//
//   - SHA-256 split: subkey derivation. The first half keys AES, the second
//     half keys HMAC.
//
//   - AES-128-CBC + PKCS#7, then HMAC-SHA-256: authenticated encryption of
//     variable-length content, encrypt-then-MAC.
//
// # Ciphertext Layout
//
//	[1 byte version = 1][16 byte IV][CBC ciphertext, 16k bytes][32 byte MAC]
//
// The MAC covers the IV and the ciphertext. The version byte is not part of
// the MAC input, so [Decrypt] checks it explicitly.
//
// # Critical Security Notes
//
// Wrapping and authenticated encryption are separate primitives and must
// stay that way. Never use [WrapKey] for attacker-influenced or
// variable-length data.
//
// [Decrypt] verifies the MAC before any decryption takes place. Callers must
// treat every error as a single decryption failure. The specific sentinel
// exists for diagnostics only and must not be reflected back to a remote
// party.
//
// Keys should be zeroed with [Key.Zero] or [SubKeys.Zero] as soon as the
// operation that needed them completes. They should never be logged.
//
// # Base64 Encoding
//
//   - [ToBase64]/[FromBase64]: standard base64 with padding (RFC 4648 §4).
//     Used for wrapped keys and ciphertexts embedded in vendor records.
//
//   - [ToBase64URL]/[FromBase64URL]: URL-safe base64 without padding
//     (RFC 4648 §5). Used for the session auth verifier.
package crypto
