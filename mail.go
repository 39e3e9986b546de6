package mailvault

import (
	"errors"
	"slices"
	"strconv"

	"github.com/mailvault/client-go/internal/crypto"
)

// Email represents a decrypted mail list element.
// Email is a pure data struct; the body and attachments are separate
// records, decrypted with DecryptMailBody and DecryptAttachment.
type Email struct {
	ID            IDTuple
	SenderAddress string
	SenderName    string
	Subject       string
	Unread        bool
	// Body is the id of the MailBody record.
	Body string
	// Attachments are the ids of the File records.
	Attachments []IDTuple
}

// Attachment represents a decrypted attachment.
type Attachment struct {
	Name     string
	MimeType string
	// Size is the plaintext size reported by the record, or -1 if the
	// record's size field is not a number.
	Size    int64
	Content []byte
}

// DecryptMail decrypts the subject and sender name of a mail. Records that
// fail Validate are rejected before any key is touched.
func (k *Keychain) DecryptMail(m *Mail) (*Email, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	sk, err := k.sessionSubKeys(m.OwnerEncSessionKey)
	if err != nil {
		return nil, recordKeyError("mail", err)
	}
	defer sk.Zero()

	subject, err := k.decryptField(sk, "mail", "subject", m.Subject)
	if err != nil {
		return nil, err
	}

	email := &Email{
		ID:            m.ID,
		SenderAddress: m.Sender.Address,
		Subject:       string(subject),
		Unread:        m.Unread == "1",
		Body:          m.Body,
		Attachments:   slices.Clone(m.Attachments),
	}

	if len(m.Sender.Name) > 0 {
		name, err := k.decryptField(sk, "mail", "sender.name", m.Sender.Name)
		if err != nil {
			return nil, err
		}
		email.SenderName = string(name)
	}

	return email, nil
}

// DecryptMailBody decrypts a mail body. The body is encrypted under the
// session key of the mail that references it.
func (k *Keychain) DecryptMailBody(m *Mail, body *MailBody) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := body.Validate(); err != nil {
		return "", err
	}

	sk, err := k.sessionSubKeys(m.OwnerEncSessionKey)
	if err != nil {
		return "", recordKeyError("mailbody", err)
	}
	defer sk.Zero()

	text, err := k.decryptField(sk, "mailbody", "text", body.Text)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// DecryptAttachment decrypts the metadata and content of an attachment.
// data is the raw encrypted file content as served by the file data service;
// pass nil to decrypt only the metadata.
func (k *Keychain) DecryptAttachment(f *File, data []byte) (*Attachment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	sk, err := k.sessionSubKeys(f.OwnerEncSessionKey)
	if err != nil {
		return nil, recordKeyError("file", err)
	}
	defer sk.Zero()

	name, err := k.decryptField(sk, "file", "name", f.Name)
	if err != nil {
		return nil, err
	}
	mimeType, err := k.decryptField(sk, "file", "mimeType", f.MimeType)
	if err != nil {
		return nil, err
	}

	size, err := strconv.ParseInt(f.Size, 10, 64)
	if err != nil {
		size = -1
	}

	att := &Attachment{
		Name:     string(name),
		MimeType: string(mimeType),
		Size:     size,
	}

	if data != nil {
		content, err := k.decryptField(sk, "file", "data", data)
		if err != nil {
			return nil, err
		}
		att.Content = content
	}

	return att, nil
}

// recordKeyError reports a session key failure as a decryption failure of
// the record, keeping the key error in the chain.
func recordKeyError(record string, err error) error {
	if errors.Is(err, ErrKeychainClosed) {
		return err
	}
	return &DecryptionError{Record: record, Field: "_ownerEncSessionKey", Err: err}
}

// encryptString is a convenience for the string fields of outgoing records.
func encryptString(sk crypto.SubKeys, s string) (Bytes, error) {
	return encryptField(sk, []byte(s))
}
