package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding hashes.
const (
	DomainCheck      = "peano/check/v1"
	DomainDerivation = "peano/derivation/v1"
	DomainSuite      = "peano/suite/v1"
)

// HashWithDomain computes a SHA-256 hash with domain separation:
// SHA256(domain || 0x00 || data), hex encoded. The null byte prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CheckID computes the content-addressed ID for one executed check.
// The ID is stable across restarts and replays given the same inputs,
// which is what makes ledger writes idempotent.
func CheckID(runToken, claim, lesser, greater, outcome string, seq int64) (string, error) {
	obj := map[string]any{
		"run_token": runToken,
		"claim":     claim,
		"lesser":    lesser,
		"greater":   greater,
		"outcome":   outcome,
		"seq":       seq,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CheckID: failed to marshal: %w", err)
	}

	return HashWithDomain(DomainCheck, canonical), nil
}

// MustCheckID is CheckID for inputs known to be valid. It panics on
// error. Use in tests.
func MustCheckID(runToken, claim, lesser, greater, outcome string, seq int64) string {
	id, err := CheckID(runToken, claim, lesser, greater, outcome, seq)
	if err != nil {
		panic(err)
	}
	return id
}
