package crypto

const (
	// KeySize is the size of every key in the hierarchy in bytes.
	KeySize = 16
	// WrappedKeySize is the size of a wrapped key in bytes.
	WrappedKeySize = 16
	// BlockSize is the AES block size in bytes.
	BlockSize = 16
	// IVSize is the size of the CBC initialization vector in bytes.
	IVSize = 16
	// MACSize is the size of the HMAC-SHA-256 tag in bytes.
	MACSize = 32

	// Version is the format version written as the first ciphertext byte.
	Version = 1

	// MinCiphertextSize is the shortest input Decrypt will authenticate.
	MinCiphertextSize = 1 + MACSize

	// SaltSize is the size of the vendor-supplied passphrase salt in bytes.
	SaltSize = 16
	// BcryptCost is the fixed bcrypt cost factor (2^8 rounds).
	BcryptCost = 8
	// bcryptOutputSize is the size of the raw bcrypt output in bytes.
	bcryptOutputSize = 24

	// wrapMask is XORed into every byte of a child key before wrapping.
	wrapMask = 0x88
)
