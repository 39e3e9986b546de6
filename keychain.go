package mailvault

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mailvault/client-go/internal/crypto"
)

// Credentials hold the passphrase-derived root key of the hierarchy.
// Credentials are safe for concurrent use.
type Credentials struct {
	cfg *config

	mu     sync.RWMutex
	key    crypto.Key
	closed bool
}

// DeriveCredentials stretches the passphrase with the vendor-supplied salt.
// The salt must be exactly 16 bytes. Derivation takes tens of milliseconds.
func DeriveCredentials(passphrase string, salt []byte, opts ...Option) (*Credentials, error) {
	cfg := newConfig(opts)

	key, err := crypto.DerivePassphraseKey(passphrase, salt)
	if err != nil {
		return nil, wrapCryptoError(err)
	}
	cfg.logger.Debug("passphrase key derived")

	return &Credentials{cfg: cfg, key: key}, nil
}

// AuthVerifier returns the value to send to the session service instead of
// the passphrase. It returns "" after Close.
func (c *Credentials) AuthVerifier() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ""
	}
	return crypto.AuthVerifier(c.key)
}

// Close zeroes the root key. It is safe to call Close more than once.
func (c *Credentials) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key.Zero()
	c.closed = true
}

// Unlock walks the key hierarchy of the user record: the user group key is
// unwrapped with the passphrase key, then the mail group key is unwrapped
// with the user group key.
//
// A record that fails Validate is rejected with a *ValidationError.
// Unwrapping is unauthenticated, so a wrong passphrase is not detected here;
// it surfaces as ErrDecryptionFailed on the first content decryption.
func (c *Credentials) Unlock(user *User) (*Keychain, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrKeychainClosed
	}

	if user == nil {
		return nil, &ValidationError{Record: "user", Errors: []string{"record is nil"}}
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	membership, err := findMembership(user, c.cfg.mailGroupType)
	if err != nil {
		return nil, err
	}

	userGroupKey, err := crypto.UnwrapKey(c.key, user.UserGroup.SymEncGKey)
	if err != nil {
		return nil, &KeyError{Stage: "user group", Err: wrapCryptoError(err)}
	}

	mailGroupKey, err := crypto.UnwrapKey(userGroupKey, membership.SymEncGKey)
	if err != nil {
		userGroupKey.Zero()
		return nil, &KeyError{Stage: "mail group", Err: wrapCryptoError(err)}
	}

	k := &Keychain{
		log:              c.cfg.logger.WithField("group", membership.Group),
		mailGroup:        membership.Group,
		userGroupKey:     userGroupKey,
		mailGroupKey:     mailGroupKey,
		wrappedUserGroup: append(Bytes(nil), user.UserGroup.SymEncGKey...),
		wrappedMailGroup: append(Bytes(nil), membership.SymEncGKey...),
	}
	k.log.WithField("memberships", len(user.Memberships)).Debug("keychain unlocked")
	return k, nil
}

func findMembership(user *User, groupType string) (*Membership, error) {
	for i := range user.Memberships {
		if user.Memberships[i].GroupType == groupType {
			return &user.Memberships[i], nil
		}
	}
	return nil, fmt.Errorf("%w: group type %q", ErrMembershipNotFound, groupType)
}

// Keychain holds the unlocked group keys of one user and applies them to
// records. A Keychain is safe for concurrent use.
type Keychain struct {
	log logrus.FieldLogger

	mailGroup        string
	wrappedUserGroup Bytes
	wrappedMailGroup Bytes

	mu           sync.RWMutex
	userGroupKey crypto.Key
	mailGroupKey crypto.Key
	closed       bool
}

// MailGroup returns the id of the unlocked mail group.
func (k *Keychain) MailGroup() string {
	return k.mailGroup
}

// Close zeroes the group keys. Subsequent operations return
// ErrKeychainClosed. It is safe to call Close more than once.
func (k *Keychain) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.userGroupKey.Zero()
	k.mailGroupKey.Zero()
	k.closed = true
}

// withKeys runs fn with the group keys held under the read lock.
func (k *Keychain) withKeys(fn func(userGroupKey, mailGroupKey crypto.Key) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrKeychainClosed
	}
	return fn(k.userGroupKey, k.mailGroupKey)
}

// sessionSubKeys unwraps a record's session key under the mail group key and
// derives its subkeys. The session key itself is zeroed before returning.
func (k *Keychain) sessionSubKeys(wrapped Bytes) (crypto.SubKeys, error) {
	var sk crypto.SubKeys
	err := k.withKeys(func(_, mailGroupKey crypto.Key) error {
		sessionKey, err := crypto.UnwrapKey(mailGroupKey, wrapped)
		if err != nil {
			return &KeyError{Stage: "session", Err: wrapCryptoError(err)}
		}
		defer sessionKey.Zero()
		sk = crypto.DeriveSubKeys(sessionKey)
		return nil
	})
	return sk, err
}

// newSession creates a fresh session key and returns it wrapped under the
// mail group key and the user group key, together with its subkeys.
func (k *Keychain) newSession() (ownerEnc, symEnc crypto.WrappedKey, sk crypto.SubKeys, err error) {
	err = k.withKeys(func(userGroupKey, mailGroupKey crypto.Key) error {
		sessionKey, err := crypto.CreateKey()
		if err != nil {
			return wrapCryptoError(err)
		}
		defer sessionKey.Zero()

		ownerEnc = crypto.WrapKey(mailGroupKey, sessionKey)
		symEnc = crypto.WrapKey(userGroupKey, sessionKey)
		sk = crypto.DeriveSubKeys(sessionKey)
		return nil
	})
	return ownerEnc, symEnc, sk, err
}

// decryptField decrypts one encrypted record field.
func (k *Keychain) decryptField(sk crypto.SubKeys, record, field string, ciphertext Bytes) ([]byte, error) {
	plaintext, err := crypto.Decrypt(sk, ciphertext)
	if err != nil {
		k.log.WithFields(logrus.Fields{"record": record, "field": field}).Debug("field decryption failed")
		return nil, &DecryptionError{Record: record, Field: field, Err: wrapCryptoError(err)}
	}
	return plaintext, nil
}

// encryptField encrypts one record field.
func encryptField(sk crypto.SubKeys, plaintext []byte) (Bytes, error) {
	ciphertext, err := crypto.Encrypt(sk, plaintext)
	if err != nil {
		return nil, wrapCryptoError(err)
	}
	return ciphertext, nil
}
