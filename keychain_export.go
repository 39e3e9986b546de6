package mailvault

import (
	"fmt"
	"time"

	"github.com/mailvault/client-go/internal/crypto"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedKeychain contains the wrapped group keys needed to restore a
// keychain without fetching the user record again. It contains no raw key
// material: restoring it still requires the passphrase-derived credentials.
type ExportedKeychain struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// MailGroup is the id of the mail group. Non-empty.
	MailGroup string `json:"mailGroup"`
	// UserGroupKey is the user group key wrapped under the passphrase key
	// (standard base64, 16 bytes decoded).
	UserGroupKey string `json:"userGroupKey"`
	// MailGroupKey is the mail group key wrapped under the user group key
	// (standard base64, 16 bytes decoded).
	MailGroupKey string `json:"mailGroupKey"`
	// ExportedAt is the export timestamp (ISO 8601). Informational only.
	ExportedAt time.Time `json:"exportedAt"`
}

// Validate checks that the exported data is well formed.
func (e *ExportedKeychain) Validate() error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, e.Version, ExportVersion)
	}

	if e.MailGroup == "" {
		return fmt.Errorf("%w: mailGroup is required", ErrInvalidImportData)
	}

	keys := []struct {
		name  string
		value string
	}{
		{"userGroupKey", e.UserGroupKey},
		{"mailGroupKey", e.MailGroupKey},
	}
	for _, k := range keys {
		if k.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidImportData, k.name)
		}
		raw, err := crypto.FromBase64(k.value)
		if err != nil {
			return fmt.Errorf("%w: invalid %s encoding", ErrInvalidImportData, k.name)
		}
		if len(raw) != crypto.WrappedKeySize {
			return fmt.Errorf("%w: %s size %d, expected %d", ErrInvalidImportData, k.name, len(raw), crypto.WrappedKeySize)
		}
	}

	return nil
}

// Export returns the wrapped keys of the keychain. The values are the same
// wrapped keys the user record carried; no key is ever exported in the clear.
func (k *Keychain) Export() *ExportedKeychain {
	return &ExportedKeychain{
		Version:      ExportVersion,
		MailGroup:    k.mailGroup,
		UserGroupKey: crypto.ToBase64(k.wrappedUserGroup),
		MailGroupKey: crypto.ToBase64(k.wrappedMailGroup),
		ExportedAt:   time.Now().UTC(),
	}
}

// ImportKeychain restores a keychain from exported data.
func (c *Credentials) ImportKeychain(data *ExportedKeychain) (*Keychain, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	// Validate() already verified these are valid base64 with correct sizes
	userGroupKey, _ := crypto.FromBase64(data.UserGroupKey)
	mailGroupKey, _ := crypto.FromBase64(data.MailGroupKey)

	return c.Unlock(&User{
		Format: recordFormat,
		Memberships: []Membership{{
			Group:      data.MailGroup,
			GroupType:  c.cfg.mailGroupType,
			SymEncGKey: mailGroupKey,
		}},
		UserGroup: GroupKeyRef{SymEncGKey: userGroupKey},
	})
}
