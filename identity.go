package evoting

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// IDGenerator mints identifiers for new records. Tests and fixtures swap it out to get predictable ids.
type IDGenerator func(kind string) string

// NewUUID is the default IDGenerator.
func NewUUID(kind string) string {
	return uuid.New().String()
}

// SequentialIDs returns an IDGenerator producing "<kind>_1", "<kind>_2", ... per kind.
func SequentialIDs() IDGenerator {
	counters := map[string]int{}
	return func(kind string) string {
		counters[kind]++
		return fmt.Sprintf("%s_%d", kind, counters[kind])
	}
}

// GenerateVoterAddress derives a fresh account address from a throwaway secp256k1 key.
func GenerateVoterAddress() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generating voter key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
