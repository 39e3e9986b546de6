// Command testhelper exposes the crypto core over JSON on stdin/stdout so that
// other client implementations can be checked against the same vectors.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	mailvault "github.com/mailvault/client-go"
	"github.com/mailvault/client-go/internal/crypto"
)

// Config holds the I/O streams used by the helper.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config wired to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

var exitFunc = os.Exit

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return errors.New("usage: testhelper <command>")
	}

	switch args[1] {
	case "derive-key":
		return runDeriveKey(cfg)
	case "wrap-key":
		return runWrapKey(cfg)
	case "unwrap-key":
		return runUnwrapKey(cfg)
	case "encrypt":
		return runEncrypt(cfg)
	case "decrypt":
		return runDecrypt(cfg)
	case "read-mail":
		return runReadMail(cfg)
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

// Binary fields of requests and responses are standard base64, which
// mailvault.Bytes encodes and decodes.

type DeriveKeyRequest struct {
	Passphrase string          `json:"passphrase"`
	Salt       mailvault.Bytes `json:"salt"`
}

type DeriveKeyResponse struct {
	Key          mailvault.Bytes `json:"key"`
	AuthVerifier string          `json:"authVerifier"`
}

type WrapKeyRequest struct {
	ParentKey mailvault.Bytes `json:"parentKey"`
	Key       mailvault.Bytes `json:"key"`
}

type WrapKeyResponse struct {
	WrappedKey mailvault.Bytes `json:"wrappedKey"`
}

type UnwrapKeyRequest struct {
	ParentKey  mailvault.Bytes `json:"parentKey"`
	WrappedKey mailvault.Bytes `json:"wrappedKey"`
}

type UnwrapKeyResponse struct {
	Key mailvault.Bytes `json:"key"`
}

type EncryptRequest struct {
	Key       mailvault.Bytes `json:"key"`
	Plaintext mailvault.Bytes `json:"plaintext"`
	// IV is optional. When set the output is deterministic.
	IV mailvault.Bytes `json:"iv,omitempty"`
}

type DecryptRequest struct {
	Key        mailvault.Bytes `json:"key"`
	Ciphertext mailvault.Bytes `json:"ciphertext"`
}

type CiphertextResponse struct {
	Ciphertext mailvault.Bytes `json:"ciphertext"`
}

type PlaintextResponse struct {
	Plaintext mailvault.Bytes `json:"plaintext"`
}

type ReadMailRequest struct {
	Passphrase string               `json:"passphrase"`
	Salt       mailvault.Bytes      `json:"salt"`
	User       *mailvault.User      `json:"user"`
	Mails      []mailvault.Mail     `json:"mails"`
	Bodies     []mailvault.MailBody `json:"bodies"`
}

type EmailOutput struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	SenderName string `json:"senderName,omitempty"`
	Subject    string `json:"subject"`
	Unread     bool   `json:"unread"`
	Text       string `json:"text,omitempty"`
}

func runDeriveKey(cfg *Config) error {
	var req DeriveKeyRequest
	if err := readRequest(cfg, &req); err != nil {
		return err
	}

	key, err := crypto.DerivePassphraseKey(req.Passphrase, req.Salt)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer key.Zero()

	return writeResponse(cfg, DeriveKeyResponse{
		Key:          bytes.Clone(key[:]),
		AuthVerifier: crypto.AuthVerifier(key),
	})
}

func runWrapKey(cfg *Config) error {
	var req WrapKeyRequest
	if err := readRequest(cfg, &req); err != nil {
		return err
	}

	parent, err := crypto.KeyFromBytes(req.ParentKey)
	if err != nil {
		return fmt.Errorf("parent key: %w", err)
	}
	child, err := crypto.KeyFromBytes(req.Key)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}

	wrapped := crypto.WrapKey(parent, child)
	return writeResponse(cfg, WrapKeyResponse{WrappedKey: wrapped.Bytes()})
}

func runUnwrapKey(cfg *Config) error {
	var req UnwrapKeyRequest
	if err := readRequest(cfg, &req); err != nil {
		return err
	}

	parent, err := crypto.KeyFromBytes(req.ParentKey)
	if err != nil {
		return fmt.Errorf("parent key: %w", err)
	}
	key, err := crypto.UnwrapKey(parent, req.WrappedKey)
	if err != nil {
		return fmt.Errorf("unwrap key: %w", err)
	}

	return writeResponse(cfg, UnwrapKeyResponse{Key: bytes.Clone(key[:])})
}

func runEncrypt(cfg *Config) error {
	var req EncryptRequest
	if err := readRequest(cfg, &req); err != nil {
		return err
	}

	key, err := crypto.KeyFromBytes(req.Key)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	sk := crypto.DeriveSubKeys(key)
	defer sk.Zero()

	var ciphertext []byte
	if req.IV != nil {
		ciphertext, err = crypto.EncryptWithIV(sk, req.IV, req.Plaintext)
	} else {
		ciphertext, err = crypto.Encrypt(sk, req.Plaintext)
	}
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	return writeResponse(cfg, CiphertextResponse{Ciphertext: ciphertext})
}

func runDecrypt(cfg *Config) error {
	var req DecryptRequest
	if err := readRequest(cfg, &req); err != nil {
		return err
	}

	key, err := crypto.KeyFromBytes(req.Key)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	sk := crypto.DeriveSubKeys(key)
	defer sk.Zero()

	plaintext, err := crypto.Decrypt(sk, req.Ciphertext)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	return writeResponse(cfg, PlaintextResponse{Plaintext: plaintext})
}

func runReadMail(cfg *Config) error {
	var req ReadMailRequest
	if err := readRequest(cfg, &req); err != nil {
		return err
	}

	creds, err := mailvault.DeriveCredentials(req.Passphrase, req.Salt)
	if err != nil {
		return fmt.Errorf("derive credentials: %w", err)
	}
	defer creds.Close()

	keychain, err := creds.Unlock(req.User)
	if err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	defer keychain.Close()

	emails, err := convertMails(keychain, req.Mails, req.Bodies)
	if err != nil {
		return err
	}

	return writeResponse(cfg, struct {
		Emails []EmailOutput `json:"emails"`
	}{Emails: emails})
}

func convertMails(keychain *mailvault.Keychain, mails []mailvault.Mail, bodies []mailvault.MailBody) ([]EmailOutput, error) {
	bodyByID := make(map[string]*mailvault.MailBody, len(bodies))
	for i := range bodies {
		bodyByID[bodies[i].ID] = &bodies[i]
	}

	out := make([]EmailOutput, 0, len(mails))
	for i := range mails {
		m := &mails[i]
		email, err := keychain.DecryptMail(m)
		if err != nil {
			return nil, fmt.Errorf("decrypt mail %s: %w", m.ID, err)
		}

		e := EmailOutput{
			ID:         email.ID.String(),
			From:       email.SenderAddress,
			SenderName: email.SenderName,
			Subject:    email.Subject,
			Unread:     email.Unread,
		}
		if body, ok := bodyByID[m.Body]; ok {
			if e.Text, err = keychain.DecryptMailBody(m, body); err != nil {
				return nil, fmt.Errorf("decrypt body of %s: %w", m.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func readRequest(cfg *Config, v any) error {
	data, err := io.ReadAll(cfg.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}
	return nil
}

func writeResponse(cfg *Config, v any) error {
	if err := json.NewEncoder(cfg.Stdout).Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}
