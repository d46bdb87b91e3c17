package encryption

import (
	"fmt"

	"ark-go/internal/ark"
	"ark-go/internal/config"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" (the default) returns a nil Encryptor: blocks are stored as-is.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (ark.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
