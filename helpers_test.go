package mailvault

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mailvault/client-go/internal/crypto"
)

const testPassphrase = "correct horse battery staple"

var testSalt = []byte{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
}

// account mirrors the server side of one user: every key in the hierarchy
// and the user record that carries them wrapped.
type account struct {
	passphraseKey crypto.Key
	userGroupKey  crypto.Key
	mailGroupKey  crypto.Key
	user          *User
}

func newAccount(t testing.TB) *account {
	t.Helper()

	passphraseKey, err := crypto.DerivePassphraseKey(testPassphrase, testSalt)
	require.NoError(t, err)
	userGroupKey, err := crypto.CreateKey()
	require.NoError(t, err)
	mailGroupKey, err := crypto.CreateKey()
	require.NoError(t, err)
	contactGroupKey, err := crypto.CreateKey()
	require.NoError(t, err)

	wrappedUser := crypto.WrapKey(passphraseKey, userGroupKey)
	wrappedMail := crypto.WrapKey(userGroupKey, mailGroupKey)
	wrappedContact := crypto.WrapKey(userGroupKey, contactGroupKey)

	return &account{
		passphraseKey: passphraseKey,
		userGroupKey:  userGroupKey,
		mailGroupKey:  mailGroupKey,
		user: &User{
			Format: "0",
			ID:     "user-1",
			Memberships: []Membership{
				{Group: "contact-group", GroupType: "6", SymEncGKey: wrappedContact.Bytes()},
				{Group: "mail-group", GroupType: "5", SymEncGKey: wrappedMail.Bytes()},
			},
			UserGroup: GroupKeyRef{Group: "user-group", SymEncGKey: wrappedUser.Bytes()},
		},
	}
}

// session creates a session key wrapped under the mail group key, as the
// server does for every stored record.
func (a *account) session(t testing.TB) (crypto.SubKeys, Bytes) {
	t.Helper()
	key, err := crypto.CreateKey()
	require.NoError(t, err)
	wrapped := crypto.WrapKey(a.mailGroupKey, key)
	return crypto.DeriveSubKeys(key), wrapped.Bytes()
}

func seal(t testing.TB, sk crypto.SubKeys, s string) Bytes {
	t.Helper()
	ct, err := crypto.Encrypt(sk, []byte(s))
	require.NoError(t, err)
	return ct
}

func (a *account) mail(t testing.TB, subject, senderName, body string) (*Mail, *MailBody) {
	t.Helper()
	sk, wrapped := a.session(t)
	m := &Mail{
		Format:             "0",
		ID:                 IDTuple{"mail-list", "mail-1"},
		Attachments:        []IDTuple{{"file-list", "file-1"}},
		Body:               "body-1",
		OwnerEncSessionKey: wrapped,
		Sender:             MailAddress{Address: "alice@example.com", Name: seal(t, sk, senderName)},
		Subject:            seal(t, sk, subject),
		Unread:             "1",
	}
	b := &MailBody{
		Format: "0",
		ID:     "body-1",
		Text:   seal(t, sk, body),
	}
	return m, b
}

func (a *account) folder(t testing.TB, name string) *MailFolder {
	t.Helper()
	sk, wrapped := a.session(t)
	return &MailFolder{
		Format:             "0",
		ID:                 IDTuple{"folder-list", name},
		Mails:              "mails-" + name,
		SubFolders:         "sub-" + name,
		Name:               seal(t, sk, name),
		OwnerEncSessionKey: wrapped,
	}
}

func (a *account) file(t testing.TB, name, mimeType string, content []byte) (*File, []byte) {
	t.Helper()
	sk, wrapped := a.session(t)
	data, err := crypto.Encrypt(sk, content)
	require.NoError(t, err)
	return &File{
		Format:             "0",
		ID:                 IDTuple{"file-list", "file-1"},
		Data:               "data-1",
		MimeType:           seal(t, sk, mimeType),
		Name:               seal(t, sk, name),
		OwnerEncSessionKey: wrapped,
		Size:               "11",
	}, data
}

func unlock(t testing.TB, a *account, opts ...Option) *Keychain {
	t.Helper()
	creds, err := DeriveCredentials(testPassphrase, testSalt, opts...)
	require.NoError(t, err)
	t.Cleanup(creds.Close)

	k, err := creds.Unlock(a.user)
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k
}

func flipBit(b Bytes, i int) Bytes {
	out := bytes.Clone(b)
	out[i] ^= 0x01
	return out
}
