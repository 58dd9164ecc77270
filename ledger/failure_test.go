package ledger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardcat/library-lending-go/ledger"
)

func Test_FailureFrom_When_ErrorIsAFailure(t *testing.T) {
	// act
	failure, ok := ledger.FailureFrom(ledger.ErrBookAlreadyBorrowed)

	// assert
	assert.True(t, ok)
	assert.Equal(t, ledger.KindConflict, failure.Kind())
	assert.Equal(t, "Book is already borrowed", failure.Error())
}

func Test_FailureFrom_When_FailureIsWrapped(t *testing.T) {
	// arrange
	wrapped := fmt.Errorf("borrowing book: %w", ledger.ErrBookNotFound)

	// act
	failure, ok := ledger.FailureFrom(wrapped)

	// assert
	assert.True(t, ok)
	assert.Equal(t, ledger.KindNotFound, failure.Kind())
}

func Test_FailureFrom_When_FailureIsJoined(t *testing.T) {
	// arrange
	joined := errors.Join(ledger.ErrTransientStore, errors.New("lock timeout"))

	// act
	failure, ok := ledger.FailureFrom(joined)

	// assert
	assert.True(t, ok)
	assert.Equal(t, ledger.KindTransientStore, failure.Kind())
}

func Test_FailureFrom_When_ErrorIsNotAFailure(t *testing.T) {
	// act
	_, ok := ledger.FailureFrom(errors.New("plain error"))

	// assert
	assert.False(t, ok)
}

func Test_IsKind_When_CheckingMatchingAndMismatchedKinds(t *testing.T) {
	assert.True(t, ledger.IsKind(ledger.ErrCardNotFound, ledger.KindNotFound))
	assert.False(t, ledger.IsKind(ledger.ErrCardNotFound, ledger.KindConflict))
	assert.False(t, ledger.IsKind(errors.New("plain error"), ledger.KindNotFound))
	assert.False(t, ledger.IsKind(nil, ledger.KindNotFound))
}

func Test_FailureKind_String_When_FormattingAllKinds(t *testing.T) {
	assert.Equal(t, "not_found", ledger.KindNotFound.String())
	assert.Equal(t, "conflict", ledger.KindConflict.String())
	assert.Equal(t, "validation", ledger.KindValidation.String())
	assert.Equal(t, "transient_store", ledger.KindTransientStore.String())
}
