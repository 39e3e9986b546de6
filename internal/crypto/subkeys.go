package crypto

import "crypto/sha256"

// SubKeys is the independent cipher/MAC key pair derived from one Key.
type SubKeys struct {
	Cipher Key
	MAC    Key
}

// DeriveSubKeys splits SHA-256(key) into a cipher subkey (first half) and a
// MAC subkey (second half).
func DeriveSubKeys(key Key) SubKeys {
	sum := sha256.Sum256(key[:])
	defer Zero(sum[:])

	var sk SubKeys
	copy(sk.Cipher[:], sum[:KeySize])
	copy(sk.MAC[:], sum[KeySize:])
	return sk
}

// Zero overwrites both subkeys in place.
func (s *SubKeys) Zero() {
	s.Cipher.Zero()
	s.MAC.Zero()
}
