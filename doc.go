// Package mailvault provides the client-side cryptography of an end-to-end
// encrypted mail service: deriving the key hierarchy from a passphrase, and
// decrypting and encrypting the content of the service's JSON records.
//
// The package performs no network I/O. Callers fetch records (user, mail,
// mail body, folder, file) with their own HTTP client, decode them into the
// record types defined here, and post the request types back.
//
// Basic usage:
//
//	creds, err := mailvault.DeriveCredentials(passphrase, salt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer creds.Close()
//
//	// Send creds.AuthVerifier() to the session service, then fetch the user record.
//	keychain, err := creds.Unlock(&user)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer keychain.Close()
//
//	email, err := keychain.DecryptMail(&mail)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Subject:", email.Subject)
package mailvault
