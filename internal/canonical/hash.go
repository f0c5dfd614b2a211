package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// encoding to change without colliding with old hashes.
const (
	DomainState   = "yartsul/state/v1"
	DomainPayload = "yartsul/payload/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash returns the content hash of a state value.
func StateHash(state any) (string, error) {
	data, err := Marshal(state)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, data), nil
}

// StateHashCanonical hashes state bytes already in canonical form.
func StateHashCanonical(data []byte) string {
	return hashWithDomain(DomainState, data)
}

// PayloadHash returns the content hash of an action payload.
func PayloadHash(payload any) (string, error) {
	data, err := Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("PayloadHash: %w", err)
	}
	return hashWithDomain(DomainPayload, data), nil
}
