package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardcat/library-lending-go/ledger"
)

func Test_ParseID_When_IdentifierIsWellFormed(t *testing.T) {
	// act
	id, err := ledger.ParseID("000002")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "000002", id)
}

func Test_ParseID_When_IdentifierIsMalformed(t *testing.T) {
	malformed := []string{
		"",
		"12345",
		"1234567",
		"12345a",
		"abcdef",
		" 123456",
		"123456 ",
		"12-456",
	}

	for _, candidate := range malformed {
		// act
		_, err := ledger.ParseID(candidate)

		// assert
		assert.ErrorIs(t, err, ledger.ErrInvalidID, "candidate %q must be rejected", candidate)
	}
}

func Test_IsValidID_When_CheckingBothShapes(t *testing.T) {
	assert.True(t, ledger.IsValidID("712538"))
	assert.True(t, ledger.IsValidID("000001"))
	assert.False(t, ledger.IsValidID("7125381"))
	assert.False(t, ledger.IsValidID("71253"))
}
