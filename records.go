package mailvault

import (
	"encoding/json"
	"fmt"

	"github.com/mailvault/client-go/internal/crypto"
)

// Bytes handles JSON (un)marshaling of base64-encoded binary fields such as
// wrapped keys and ciphertexts. It encodes to standard padded base64.
type Bytes []byte

// MarshalJSON implements json.Marshaler for Bytes.
func (b Bytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(crypto.ToBase64(b))
}

// UnmarshalJSON implements json.Unmarshaler for Bytes.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("base64 field: %w", err)
	}
	if encoded == "" {
		*b = nil
		return nil
	}

	decoded, err := crypto.DecodeBase64(encoded)
	if err != nil {
		return fmt.Errorf("base64 field: %w", err)
	}
	*b = decoded
	return nil
}

// IDTuple identifies a list element as (list id, element id).
type IDTuple [2]string

// ListID returns the list part of the id.
func (id IDTuple) ListID() string { return id[0] }

// ElementID returns the element part of the id.
func (id IDTuple) ElementID() string { return id[1] }

func (id IDTuple) String() string { return id[0] + "/" + id[1] }

// User is the user record. It carries the wrapped keys of every group the
// user belongs to.
type User struct {
	Format      string       `json:"_format"`
	ID          string       `json:"_id,omitempty"`
	Memberships []Membership `json:"memberships"`
	UserGroup   GroupKeyRef  `json:"userGroup"`
}

// Membership links a user to a group. SymEncGKey is the group key wrapped
// under the user group key.
type Membership struct {
	Group      string `json:"group"`
	GroupType  string `json:"groupType"`
	SymEncGKey Bytes  `json:"symEncGKey"`
}

// GroupKeyRef carries the user group key wrapped under the passphrase key.
type GroupKeyRef struct {
	Group      string `json:"group,omitempty"`
	SymEncGKey Bytes  `json:"symEncGKey"`
}

// Validate checks the record format and required keys.
func (u *User) Validate() error {
	v := validator{record: "user"}
	v.format(u.Format)
	v.wrappedKey("userGroup.symEncGKey", u.UserGroup.SymEncGKey)
	return v.err()
}

// Mail is a mail list element. Subject and sender name are encrypted under
// the mail's session key, which is wrapped under the mail group key.
type Mail struct {
	Format             string      `json:"_format"`
	ID                 IDTuple     `json:"_id"`
	Attachments        []IDTuple   `json:"attachments"`
	Body               string      `json:"body"`
	OwnerEncSessionKey Bytes       `json:"_ownerEncSessionKey"`
	Sender             MailAddress `json:"sender"`
	Subject            Bytes       `json:"subject"`
	Unread             string      `json:"unread"`
}

// MailAddress is a sender or recipient. Name is encrypted.
type MailAddress struct {
	Address string `json:"address"`
	Name    Bytes  `json:"name,omitempty"`
}

// Validate checks the record format and required keys.
func (m *Mail) Validate() error {
	v := validator{record: "mail"}
	v.format(m.Format)
	v.wrappedKey("_ownerEncSessionKey", m.OwnerEncSessionKey)
	return v.err()
}

// ToggleUnread flips the unread flag between "0" and "1".
func (m *Mail) ToggleUnread() error {
	switch m.Unread {
	case "0":
		m.Unread = "1"
	case "1":
		m.Unread = "0"
	default:
		return &ValidationError{Record: "mail", Errors: []string{fmt.Sprintf("unread flag %q is not 0 or 1", m.Unread)}}
	}
	return nil
}

// MailBody holds the encrypted body text of a mail. It is encrypted under the
// owning mail's session key.
type MailBody struct {
	Format string `json:"_format"`
	ID     string `json:"_id,omitempty"`
	Text   Bytes  `json:"text"`
}

// Validate checks the record format.
func (b *MailBody) Validate() error {
	v := validator{record: "mailbody"}
	v.format(b.Format)
	return v.err()
}

// MailFolder is a folder list element with an encrypted name.
type MailFolder struct {
	Format             string  `json:"_format"`
	ID                 IDTuple `json:"_id"`
	Mails              string  `json:"mails"`
	SubFolders         string  `json:"subFolders"`
	Name               Bytes   `json:"name"`
	OwnerEncSessionKey Bytes   `json:"_ownerEncSessionKey"`
}

// Validate checks the record format and required keys.
func (f *MailFolder) Validate() error {
	v := validator{record: "folder"}
	v.format(f.Format)
	v.wrappedKey("_ownerEncSessionKey", f.OwnerEncSessionKey)
	return v.err()
}

// File is attachment metadata. Name and MIME type are encrypted; the content
// is fetched separately and encrypted under the same session key.
type File struct {
	Format             string  `json:"_format"`
	ID                 IDTuple `json:"_id,omitempty"`
	Data               string  `json:"data"`
	MimeType           Bytes   `json:"mimeType"`
	Name               Bytes   `json:"name"`
	OwnerEncSessionKey Bytes   `json:"_ownerEncSessionKey"`
	Size               string  `json:"size"`
}

// Validate checks the record format and required keys.
func (f *File) Validate() error {
	v := validator{record: "file"}
	v.format(f.Format)
	v.wrappedKey("_ownerEncSessionKey", f.OwnerEncSessionKey)
	return v.err()
}

// CreateFolderRequest is the body of a folder creation request.
type CreateFolderRequest struct {
	Format             string  `json:"_format"`
	FolderName         Bytes   `json:"folderName"`
	OwnerEncSessionKey Bytes   `json:"ownerEncSessionKey"`
	ParentFolder       IDTuple `json:"parentFolder"`
}

// CreateDraftRequest is the body of a draft creation request.
type CreateDraftRequest struct {
	Format             string    `json:"_format"`
	ConversationType   string    `json:"conversationType"`
	DraftData          DraftData `json:"draftData"`
	OwnerEncSessionKey Bytes     `json:"ownerEncSessionKey"`
	PreviousMessageID  *string   `json:"previousMessageId"`
	SymEncSessionKey   Bytes     `json:"symEncSessionKey"`
}

// DraftData holds the encrypted fields of a draft.
type DraftData struct {
	ID                 string      `json:"_id"`
	AddedAttachments   []IDTuple   `json:"addedAttachments"`
	RemovedAttachments []IDTuple   `json:"removedAttachments"`
	ReplyTos           []Recipient `json:"replyTos"`
	BodyText           Bytes       `json:"bodyText"`
	Confidential       Bytes       `json:"confidential"`
	SenderMailAddress  string      `json:"senderMailAddress"`
	SenderName         Bytes       `json:"senderName"`
	Subject            Bytes       `json:"subject"`
	ToRecipients       []Recipient `json:"toRecipients"`
	CcRecipients       []Recipient `json:"ccRecipients"`
	BccRecipients      []Recipient `json:"bccRecipients"`
}

// Recipient is a draft recipient with an encrypted display name.
type Recipient struct {
	ID          string `json:"_id"`
	MailAddress string `json:"mailAddress"`
	Name        Bytes  `json:"name"`
}

// MailboxGroupRoot is the root record of a mail group, fetched by the
// group id (see Keychain.MailGroup). It names the group's mailbox.
type MailboxGroupRoot struct {
	Format  string `json:"_format"`
	ID      string `json:"_id,omitempty"`
	Mailbox string `json:"mailbox"`
}

// Validate checks the record format and the mailbox reference.
func (r *MailboxGroupRoot) Validate() error {
	v := validator{record: "mailboxgrouproot"}
	v.format(r.Format)
	v.required("mailbox", r.Mailbox)
	return v.err()
}

// Mailbox is the mailbox of a mail group.
type Mailbox struct {
	Format        string        `json:"_format"`
	ID            string        `json:"_id,omitempty"`
	SystemFolders SystemFolders `json:"systemFolders"`
}

// SystemFolders references the folder list of a mailbox.
type SystemFolders struct {
	// Folders is the id of the MailFolder list.
	Folders string `json:"folders"`
}

// Validate checks the record format and the folder list reference.
func (m *Mailbox) Validate() error {
	v := validator{record: "mailbox"}
	v.format(m.Format)
	v.required("systemFolders.folders", m.SystemFolders.Folders)
	return v.err()
}

// MoveMailRequest is the body of a request moving mails into a folder.
type MoveMailRequest struct {
	Format       string    `json:"_format"`
	Mails        []IDTuple `json:"mails"`
	TargetFolder IDTuple   `json:"targetFolder"`
}

// NewMoveMailRequest builds a request moving mails into target.
func NewMoveMailRequest(target IDTuple, mails ...IDTuple) *MoveMailRequest {
	return &MoveMailRequest{
		Format:       recordFormat,
		Mails:        mails,
		TargetFolder: target,
	}
}

// Validate checks the format and that there is something to move.
func (r *MoveMailRequest) Validate() error {
	v := validator{record: "movemail"}
	v.format(r.Format)
	if len(r.Mails) == 0 {
		v.errs = append(v.errs, "mails is empty")
	}
	v.id("targetFolder", r.TargetFolder)
	for _, m := range r.Mails {
		v.id("mails", m)
	}
	return v.err()
}

// DeleteFolderRequest is the body of a folder deletion request.
type DeleteFolderRequest struct {
	Format  string    `json:"_format"`
	Folders []IDTuple `json:"folders"`
}

// NewDeleteFolderRequest builds a request deleting the given folders.
func NewDeleteFolderRequest(folders ...IDTuple) *DeleteFolderRequest {
	return &DeleteFolderRequest{
		Format:  recordFormat,
		Folders: folders,
	}
}

// Validate checks the format and that there is something to delete.
func (r *DeleteFolderRequest) Validate() error {
	v := validator{record: "deletefolder"}
	v.format(r.Format)
	if len(r.Folders) == 0 {
		v.errs = append(v.errs, "folders is empty")
	}
	for _, f := range r.Folders {
		v.id("folders", f)
	}
	return v.err()
}

// validator collects record validation failures.
type validator struct {
	record string
	errs   []string
}

func (v *validator) format(f string) {
	if f != recordFormat {
		v.errs = append(v.errs, fmt.Sprintf("_format %q, expected %q", f, recordFormat))
	}
}

func (v *validator) wrappedKey(field string, b Bytes) {
	if len(b) != crypto.WrappedKeySize {
		v.errs = append(v.errs, fmt.Sprintf("%s is %d bytes, expected %d", field, len(b), crypto.WrappedKeySize))
	}
}

func (v *validator) required(field, value string) {
	if value == "" {
		v.errs = append(v.errs, field+" is required")
	}
}

func (v *validator) id(field string, id IDTuple) {
	if id.ListID() == "" || id.ElementID() == "" {
		v.errs = append(v.errs, fmt.Sprintf("%s has incomplete id %q", field, id.String()))
	}
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Record: v.record, Errors: v.errs}
}
