package backend

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"shield/internal/exposure/models"
)

// generateKeyPair returns a fresh box keypair, base64 encoded for transport
// and secure storage.
func generateKeyPair() (publicKey, privateKey string, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(pub[:]),
		base64.StdEncoding.EncodeToString(priv[:]),
		nil
}

// sealPayload encrypts plaintext to the server's public key using the claimed
// client private key. Nonce and ciphertext come back base64 encoded.
func sealPayload(plaintext []byte, auth models.SubmissionAuthKeys) (nonce, payload string, err error) {
	serverPub, err := decodeKey(auth.ServerPublicKey)
	if err != nil {
		return "", "", fmt.Errorf("server public key: %w", err)
	}
	clientPriv, err := decodeKey(auth.ClientPrivateKey)
	if err != nil {
		return "", "", fmt.Errorf("client private key: %w", err)
	}

	var n [24]byte
	if _, err := rand.Read(n[:]); err != nil {
		return "", "", fmt.Errorf("nonce: %w", err)
	}

	sealed := box.Seal(nil, plaintext, &n, serverPub, clientPriv)
	return base64.StdEncoding.EncodeToString(n[:]),
		base64.StdEncoding.EncodeToString(sealed),
		nil
}

func decodeKey(encoded string) (*[32]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
