package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardcat/library-lending-go/ledger"
)

func Test_Borrowing_Active_When_ReturnedAtIsSetAndUnset(t *testing.T) {
	// arrange
	outstanding := ledger.Borrowing{ID: 1, BookID: "000002", CardID: "357192", BorrowedAt: time.Now()}
	returnedAt := time.Now()
	closed := ledger.Borrowing{ID: 2, BookID: "000002", CardID: "357192", BorrowedAt: time.Now(), ReturnedAt: &returnedAt}

	// assert
	assert.True(t, outstanding.Active())
	assert.False(t, closed.Active())
}

func Test_Borrowing_HeldBy_When_CardMatchesAndDiffers(t *testing.T) {
	// arrange
	borrowing := ledger.Borrowing{ID: 1, BookID: "000002", CardID: "357192", BorrowedAt: time.Now()}

	// assert
	assert.True(t, borrowing.HeldBy("357192"))
	assert.False(t, borrowing.HeldBy("712538"))
}
