package config

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// ParseCredential parses a hex private key, with or without 0x prefix.
// Errors never include the key material.
func ParseCredential(hexKey string) (*config.Credential, error) {
	hexKey = strings.TrimSpace(hexKey)
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	if hexKey == "" {
		return nil, config.ErrMissingCredential
	}

	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: PRIVATE_KEY is not a valid secp256k1 key", config.ErrInvalidCredential)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: failed to get public key", config.ErrInvalidCredential)
	}

	return config.NewCredential(privateKey, crypto.PubkeyToAddress(*publicKeyECDSA)), nil
}

// RequireCredential returns the signing credential or ErrMissingCredential.
func RequireCredential(cfg *config.RuntimeConfig) (*config.Credential, error) {
	if cfg.Credential == nil {
		return nil, config.ErrMissingCredential
	}
	return cfg.Credential, nil
}
