package service

// SecretStore seals integration API keys before they reach the database.
type SecretStore interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
