package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardcat/library-lending-go/ledger"
)

func Test_NormalizePage_When_PageIsOutOfRange(t *testing.T) {
	assert.Equal(t, 1, ledger.NormalizePage(0))
	assert.Equal(t, 1, ledger.NormalizePage(-3))
	assert.Equal(t, 7, ledger.NormalizePage(7))
}

func Test_NormalizeSize_When_SizeIsOutOfRange(t *testing.T) {
	assert.Equal(t, ledger.DefaultPageSize, ledger.NormalizeSize(0))
	assert.Equal(t, ledger.DefaultPageSize, ledger.NormalizeSize(-1))
	assert.Equal(t, ledger.MaxPageSize, ledger.NormalizeSize(5000))
	assert.Equal(t, 25, ledger.NormalizeSize(25))
}

func Test_TotalPages_When_TotalAndSizeVary(t *testing.T) {
	assert.Equal(t, 0, ledger.TotalPages(0, 50))
	assert.Equal(t, 1, ledger.TotalPages(1, 50))
	assert.Equal(t, 1, ledger.TotalPages(50, 50))
	assert.Equal(t, 2, ledger.TotalPages(51, 50))
	assert.Equal(t, 3, ledger.TotalPages(101, 50))
}
