package blockstore

import (
	"bytes"
	"fmt"

	"ark-go/internal/ark"
)

// EncryptedBlockStore wraps another block store with at-rest encryption.
// Blocks keep their plaintext-derived refs (the ref is an opaque handle to
// the engine), but the stored bytes are ciphertext. Reading requires a
// DecryptionContext obtained by unlocking the encryptor with a passphrase.
type EncryptedBlockStore struct {
	inner ark.BlockStore
	enc   ark.Encryptor
	dec   ark.DecryptionContext // nil until Unlock
}

// NewEncryptedBlockStore wraps inner with encryption. The store can write
// immediately; Unlock must be called before reads.
func NewEncryptedBlockStore(inner ark.BlockStore, enc ark.Encryptor) *EncryptedBlockStore {
	return &EncryptedBlockStore{inner: inner, enc: enc}
}

// Unlock decrypts the private key with the passphrase, enabling Get.
func (s *EncryptedBlockStore) Unlock(passphrase string) error {
	dec, err := s.enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking block store: %w", err)
	}
	s.dec = dec
	return nil
}

// Put encrypts the block and stores the ciphertext under the plaintext ref.
func (s *EncryptedBlockStore) Put(ref string, data []byte) error {
	var ciphertext bytes.Buffer
	if err := s.enc.Encrypt(bytes.NewReader(data), &ciphertext); err != nil {
		return fmt.Errorf("encrypting block %s: %w", ref, err)
	}
	return s.inner.Put(ref, ciphertext.Bytes())
}

// Get fetches and decrypts a block. Fails if the store has not been unlocked.
func (s *EncryptedBlockStore) Get(ref string) ([]byte, error) {
	if s.dec == nil {
		return nil, fmt.Errorf("block store is locked: unlock with passphrase first")
	}
	ciphertext, err := s.inner.Get(ref)
	if err != nil {
		return nil, err
	}
	var plaintext bytes.Buffer
	if err := s.dec.Decrypt(bytes.NewReader(ciphertext), &plaintext); err != nil {
		return nil, fmt.Errorf("decrypting block %s: %w", ref, err)
	}
	return plaintext.Bytes(), nil
}

// Has defers to the inner store.
func (s *EncryptedBlockStore) Has(ref string) (bool, error) {
	return s.inner.Has(ref)
}

// ValidateSetup checks the inner store and that keys are configured.
func (s *EncryptedBlockStore) ValidateSetup() error {
	if !s.enc.IsConfigured() {
		return fmt.Errorf("encryption keys not configured: run `ark config keys`")
	}
	return s.inner.ValidateSetup()
}

// Compile-time check that EncryptedBlockStore implements ark.BlockStore interface
var _ ark.BlockStore = (*EncryptedBlockStore)(nil)
