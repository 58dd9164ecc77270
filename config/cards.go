package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/cardcat/library-lending-go/ledger"
)

const envSeedCardsFile = "LIBRARY_SEED_CARDS_FILE"

// DefaultSeedCardIDs returns the card identifiers seeded into an empty store.
func DefaultSeedCardIDs() []string {
	return []string{
		"245781",
		"357192",
		"468230",
		"589314",
		"712538",
		"000001",
	}
}

// SeedCardIDs returns the card identifiers to seed at process start. When
// LIBRARY_SEED_CARDS_FILE names a JSON file holding an array of 6-digit
// strings, that set is used instead of the built-in default.
func SeedCardIDs() ([]string, error) {
	path := os.Getenv(envSeedCardsFile)
	if path == "" {
		return DefaultSeedCardIDs(), nil
	}

	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("reading seed cards file %s: %w", path, readErr)
	}

	var cardIDs []string
	if unmarshalErr := jsoniter.Unmarshal(raw, &cardIDs); unmarshalErr != nil {
		return nil, fmt.Errorf("parsing seed cards file %s: %w", path, unmarshalErr)
	}

	for _, cardID := range cardIDs {
		if !ledger.IsValidID(cardID) {
			return nil, fmt.Errorf("seed cards file %s: %w: %q", path, ledger.ErrInvalidID, cardID)
		}
	}

	return cardIDs, nil
}
