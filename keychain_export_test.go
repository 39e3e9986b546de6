package mailvault

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailvault/client-go/internal/crypto"
)

func TestKeychain_Export(t *testing.T) {
	a := newAccount(t)
	k := unlock(t, a)

	exp := k.Export()
	assert.Equal(t, ExportVersion, exp.Version)
	assert.Equal(t, "mail-group", exp.MailGroup)
	assert.Equal(t, crypto.ToBase64(a.user.UserGroup.SymEncGKey), exp.UserGroupKey)
	assert.Equal(t, crypto.ToBase64(a.user.Memberships[1].SymEncGKey), exp.MailGroupKey)
	assert.WithinDuration(t, time.Now(), exp.ExportedAt, time.Minute)
	assert.NoError(t, exp.Validate())

	// Raw keys never leave the keychain.
	data, err := json.Marshal(exp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), crypto.ToBase64(a.userGroupKey[:]))
	assert.NotContains(t, string(data), crypto.ToBase64(a.mailGroupKey[:]))
}

func TestCredentials_ImportKeychain(t *testing.T) {
	a := newAccount(t)
	k := unlock(t, a)

	data, err := json.Marshal(k.Export())
	require.NoError(t, err)

	var exp ExportedKeychain
	require.NoError(t, json.Unmarshal(data, &exp))

	creds, err := DeriveCredentials(testPassphrase, testSalt)
	require.NoError(t, err)
	defer creds.Close()

	restored, err := creds.ImportKeychain(&exp)
	require.NoError(t, err)
	defer restored.Close()
	assert.Equal(t, "mail-group", restored.MailGroup())

	m, _ := a.mail(t, "imported", "Alice", "")
	email, err := restored.DecryptMail(m)
	require.NoError(t, err)
	assert.Equal(t, "imported", email.Subject)
}

func TestCredentials_ImportKeychain_CustomGroupType(t *testing.T) {
	a := newAccount(t)
	k := unlock(t, a)
	exp := k.Export()

	creds, err := DeriveCredentials(testPassphrase, testSalt, WithMailGroupType("42"))
	require.NoError(t, err)
	defer creds.Close()

	restored, err := creds.ImportKeychain(exp)
	require.NoError(t, err)
	restored.Close()
}

func TestCredentials_ImportKeychain_Closed(t *testing.T) {
	k := unlock(t, newAccount(t))

	creds, err := DeriveCredentials(testPassphrase, testSalt)
	require.NoError(t, err)
	creds.Close()

	_, err = creds.ImportKeychain(k.Export())
	assert.ErrorIs(t, err, ErrKeychainClosed)
}

func TestExportedKeychain_Validate(t *testing.T) {
	valid := func() *ExportedKeychain {
		return &ExportedKeychain{
			Version:      ExportVersion,
			MailGroup:    "mail-group",
			UserGroupKey: crypto.ToBase64(make([]byte, 16)),
			MailGroupKey: crypto.ToBase64(make([]byte, 16)),
		}
	}

	tests := []struct {
		name   string
		mutate func(*ExportedKeychain)
	}{
		{"wrong version", func(e *ExportedKeychain) { e.Version = 2 }},
		{"missing mail group", func(e *ExportedKeychain) { e.MailGroup = "" }},
		{"missing user group key", func(e *ExportedKeychain) { e.UserGroupKey = "" }},
		{"missing mail group key", func(e *ExportedKeychain) { e.MailGroupKey = "" }},
		{"invalid encoding", func(e *ExportedKeychain) { e.UserGroupKey = "not base64!" }},
		{"short key", func(e *ExportedKeychain) { e.MailGroupKey = crypto.ToBase64(make([]byte, 8)) }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			assert.ErrorIs(t, e.Validate(), ErrInvalidImportData)
		})
	}
}
