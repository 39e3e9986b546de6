package mailvault

import (
	"errors"
	"fmt"
	"strings"
)

// NewFolder builds a folder creation request. The folder gets a fresh session
// key, wrapped under the mail group key, and its name is encrypted under it.
func (k *Keychain) NewFolder(parent IDTuple, name string) (*CreateFolderRequest, error) {
	ownerEnc, _, sk, err := k.newSession()
	if err != nil {
		return nil, err
	}
	defer sk.Zero()

	folderName, err := encryptString(sk, name)
	if err != nil {
		return nil, err
	}

	k.log.WithField("parent", parent.String()).Debug("folder request built")
	return &CreateFolderRequest{
		Format:             recordFormat,
		FolderName:         folderName,
		OwnerEncSessionKey: ownerEnc.Bytes(),
		ParentFolder:       parent,
	}, nil
}

// DecryptFolderName decrypts the name of a folder.
func (k *Keychain) DecryptFolderName(f *MailFolder) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}

	sk, err := k.sessionSubKeys(f.OwnerEncSessionKey)
	if err != nil {
		return "", recordKeyError("folder", err)
	}
	defer sk.Zero()

	name, err := k.decryptField(sk, "folder", "name", f.Name)
	if err != nil {
		return "", err
	}
	return string(name), nil
}

// RenameFolder re-encrypts the folder name in place under the folder's
// existing session key. The updated record can be sent back as is.
func (k *Keychain) RenameFolder(f *MailFolder, name string) error {
	if err := f.Validate(); err != nil {
		return err
	}

	sk, err := k.sessionSubKeys(f.OwnerEncSessionKey)
	if err != nil {
		return recordKeyError("folder", err)
	}
	defer sk.Zero()

	encrypted, err := encryptString(sk, name)
	if err != nil {
		return err
	}
	f.Name = encrypted
	return nil
}

// FolderNames decrypts the names of all folders, keyed by element id.
// Folders that fail to decrypt are reported in the returned error and
// left out of the map.
func (k *Keychain) FolderNames(folders []MailFolder) (map[string]string, error) {
	names := make(map[string]string, len(folders))
	var failed []string
	for i := range folders {
		name, err := k.DecryptFolderName(&folders[i])
		if err != nil {
			if errors.Is(err, ErrKeychainClosed) {
				return nil, err
			}
			failed = append(failed, folders[i].ID.String())
			continue
		}
		names[folders[i].ID.ElementID()] = name
	}
	if len(failed) > 0 {
		return names, &DecryptionError{
			Record: "folder",
			Field:  "name",
			Err:    fmt.Errorf("%d of %d folders: %s", len(failed), len(folders), strings.Join(failed, ", ")),
		}
	}
	return names, nil
}
