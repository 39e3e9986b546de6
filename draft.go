package mailvault

import (
	"github.com/mailvault/client-go/internal/crypto"
)

// Draft is the plaintext content of a new draft.
type Draft struct {
	// ID is the client-chosen element id of the draft data.
	ID                string
	SenderMailAddress string
	SenderName        string
	Subject           string
	Body              string
	Confidential      bool
	To                []DraftRecipient
	Cc                []DraftRecipient
	Bcc               []DraftRecipient
}

// DraftRecipient is a plaintext recipient of a draft.
type DraftRecipient struct {
	ID          string
	MailAddress string
	Name        string
}

// NewDraft builds a draft creation request. A fresh session key encrypts
// every field; it is wrapped under the mail group key (owner) and the user
// group key (sym).
func (k *Keychain) NewDraft(d Draft) (*CreateDraftRequest, error) {
	ownerEnc, symEnc, sk, err := k.newSession()
	if err != nil {
		return nil, err
	}
	defer sk.Zero()

	confidential := "0"
	if d.Confidential {
		confidential = "1"
	}

	data := DraftData{
		ID:                 d.ID,
		AddedAttachments:   []IDTuple{},
		RemovedAttachments: []IDTuple{},
		ReplyTos:           []Recipient{},
		SenderMailAddress:  d.SenderMailAddress,
	}

	fields := []struct {
		dst       *Bytes
		plaintext string
	}{
		{&data.Subject, d.Subject},
		{&data.BodyText, d.Body},
		{&data.SenderName, d.SenderName},
		{&data.Confidential, confidential},
	}
	for _, f := range fields {
		if *f.dst, err = encryptString(sk, f.plaintext); err != nil {
			return nil, err
		}
	}

	if data.ToRecipients, err = encryptRecipients(sk, d.To); err != nil {
		return nil, err
	}
	if data.CcRecipients, err = encryptRecipients(sk, d.Cc); err != nil {
		return nil, err
	}
	if data.BccRecipients, err = encryptRecipients(sk, d.Bcc); err != nil {
		return nil, err
	}

	k.log.WithField("recipients", len(d.To)+len(d.Cc)+len(d.Bcc)).Debug("draft request built")
	return &CreateDraftRequest{
		Format:             recordFormat,
		ConversationType:   "0",
		DraftData:          data,
		OwnerEncSessionKey: ownerEnc.Bytes(),
		SymEncSessionKey:   symEnc.Bytes(),
	}, nil
}

func encryptRecipients(sk crypto.SubKeys, recipients []DraftRecipient) ([]Recipient, error) {
	out := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		name, err := encryptString(sk, r.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, Recipient{ID: r.ID, MailAddress: r.MailAddress, Name: name})
	}
	return out, nil
}

// DecryptDraft reverses NewDraft using the owner-encrypted session key. It is
// mainly useful for checking a request before it is sent.
func (k *Keychain) DecryptDraft(req *CreateDraftRequest) (*Draft, error) {
	sk, err := k.sessionSubKeys(req.OwnerEncSessionKey)
	if err != nil {
		return nil, recordKeyError("draft", err)
	}
	defer sk.Zero()

	dd := &req.DraftData
	d := &Draft{ID: dd.ID, SenderMailAddress: dd.SenderMailAddress}

	fields := []struct {
		name       string
		ciphertext Bytes
		dst        *string
	}{
		{"subject", dd.Subject, &d.Subject},
		{"bodyText", dd.BodyText, &d.Body},
		{"senderName", dd.SenderName, &d.SenderName},
	}
	for _, f := range fields {
		plaintext, err := k.decryptField(sk, "draft", f.name, f.ciphertext)
		if err != nil {
			return nil, err
		}
		*f.dst = string(plaintext)
	}

	confidential, err := k.decryptField(sk, "draft", "confidential", dd.Confidential)
	if err != nil {
		return nil, err
	}
	d.Confidential = string(confidential) == "1"

	lists := []struct {
		name string
		src  []Recipient
		dst  *[]DraftRecipient
	}{
		{"toRecipients", dd.ToRecipients, &d.To},
		{"ccRecipients", dd.CcRecipients, &d.Cc},
		{"bccRecipients", dd.BccRecipients, &d.Bcc},
	}
	for _, l := range lists {
		for _, r := range l.src {
			name, err := k.decryptField(sk, "draft", l.name, r.Name)
			if err != nil {
				return nil, err
			}
			*l.dst = append(*l.dst, DraftRecipient{ID: r.ID, MailAddress: r.MailAddress, Name: string(name)})
		}
	}

	return d, nil
}
