package mailvault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeychain_DecryptMail(t *testing.T) {
	a := newAccount(t)
	m, _ := a.mail(t, "Hello, World!", "Bob", "body")
	k := unlock(t, a)

	email, err := k.DecryptMail(m)
	require.NoError(t, err)

	assert.Equal(t, IDTuple{"mail-list", "mail-1"}, email.ID)
	assert.Equal(t, "Hello, World!", email.Subject)
	assert.Equal(t, "Bob", email.SenderName)
	assert.Equal(t, "alice@example.com", email.SenderAddress)
	assert.True(t, email.Unread)
	assert.Equal(t, "body-1", email.Body)
	assert.Equal(t, []IDTuple{{"file-list", "file-1"}}, email.Attachments)

	email.Attachments[0] = IDTuple{"changed", "changed"}
	assert.Equal(t, IDTuple{"file-list", "file-1"}, m.Attachments[0])
}

func TestKeychain_RejectsInvalidRecords(t *testing.T) {
	a := newAccount(t)
	k := unlock(t, a)

	tests := []struct {
		name   string
		record string
		call   func(t *testing.T) error
	}{
		{"mail format", "mail", func(t *testing.T) error {
			m, _ := a.mail(t, "Hi", "Bob", "body")
			m.Format = "9"
			_, err := k.DecryptMail(m)
			return err
		}},
		{"mail session key", "mail", func(t *testing.T) error {
			m, _ := a.mail(t, "Hi", "Bob", "body")
			m.OwnerEncSessionKey = m.OwnerEncSessionKey[:15]
			_, err := k.DecryptMail(m)
			return err
		}},
		{"mail of body", "mail", func(t *testing.T) error {
			m, body := a.mail(t, "Hi", "Bob", "body")
			m.Format = "1"
			_, err := k.DecryptMailBody(m, body)
			return err
		}},
		{"body format", "mailbody", func(t *testing.T) error {
			m, body := a.mail(t, "Hi", "Bob", "body")
			body.Format = "9"
			_, err := k.DecryptMailBody(m, body)
			return err
		}},
		{"file format", "file", func(t *testing.T) error {
			f, data := a.file(t, "a.txt", "text/plain", []byte("x"))
			f.Format = ""
			_, err := k.DecryptAttachment(f, data)
			return err
		}},
		{"folder format", "folder", func(t *testing.T) error {
			f := a.folder(t, "Inbox")
			f.Format = "bogus"
			_, err := k.DecryptFolderName(f)
			return err
		}},
		{"folder rename", "folder", func(t *testing.T) error {
			f := a.folder(t, "Inbox")
			f.Format = "bogus"
			return k.RenameFolder(f, "Renamed")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(t)
			assert.ErrorIs(t, err, ErrInvalidRecord)
			assert.NotErrorIs(t, err, ErrDecryptionFailed)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.record, vErr.Record)
		})
	}
}

func TestKeychain_DecryptMail_NoSenderName(t *testing.T) {
	a := newAccount(t)
	m, _ := a.mail(t, "Subject", "", "body")
	m.Sender.Name = nil
	k := unlock(t, a)

	email, err := k.DecryptMail(m)
	require.NoError(t, err)
	assert.Empty(t, email.SenderName)
}

func TestKeychain_DecryptMail_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Mail)
		field  string
	}{
		{"tampered subject", func(m *Mail) { m.Subject = flipBit(m.Subject, 30) }, "subject"},
		{"tampered sender name", func(m *Mail) { m.Sender.Name = flipBit(m.Sender.Name, 1) }, "sender.name"},
		{"truncated subject", func(m *Mail) { m.Subject = m.Subject[:len(m.Subject)-1] }, "subject"},
		{"empty subject", func(m *Mail) { m.Subject = nil }, "subject"},
		{"tampered session key", func(m *Mail) { m.OwnerEncSessionKey = flipBit(m.OwnerEncSessionKey, 0) }, "subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAccount(t)
			m, _ := a.mail(t, "Subject", "Bob", "body")
			tt.mutate(m)
			k := unlock(t, a)

			email, err := k.DecryptMail(m)
			assert.Nil(t, email)
			assert.ErrorIs(t, err, ErrDecryptionFailed)

			var decErr *DecryptionError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, "mail", decErr.Record)
			assert.Equal(t, tt.field, decErr.Field)
		})
	}
}

func TestKeychain_DecryptMailBody(t *testing.T) {
	a := newAccount(t)
	m, body := a.mail(t, "Subject", "Bob", "This is a test message.")
	k := unlock(t, a)

	text, err := k.DecryptMailBody(m, body)
	require.NoError(t, err)
	assert.Equal(t, "This is a test message.", text)

	// A body belongs to the session of its own mail.
	other, _ := a.mail(t, "Other", "Bob", "other")
	_, err = k.DecryptMailBody(other, body)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestKeychain_DecryptAttachment(t *testing.T) {
	a := newAccount(t)
	f, data := a.file(t, "notes.txt", "text/plain", []byte("hello world"))
	k := unlock(t, a)

	att, err := k.DecryptAttachment(f, data)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", att.Name)
	assert.Equal(t, "text/plain", att.MimeType)
	assert.Equal(t, int64(11), att.Size)
	assert.Equal(t, []byte("hello world"), att.Content)
}

func TestKeychain_DecryptAttachment_MetadataOnly(t *testing.T) {
	a := newAccount(t)
	f, _ := a.file(t, "image.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	f.Size = "unknown"
	k := unlock(t, a)

	att, err := k.DecryptAttachment(f, nil)
	require.NoError(t, err)
	assert.Equal(t, "image.png", att.Name)
	assert.Equal(t, int64(-1), att.Size)
	assert.Nil(t, att.Content)
}

func TestKeychain_DecryptAttachment_TamperedData(t *testing.T) {
	a := newAccount(t)
	f, data := a.file(t, "notes.txt", "text/plain", []byte("hello world"))
	k := unlock(t, a)

	data[len(data)-1] ^= 0x80
	att, err := k.DecryptAttachment(f, data)
	assert.Nil(t, att)

	var decErr *DecryptionError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "file", decErr.Record)
	assert.Equal(t, "data", decErr.Field)
}
