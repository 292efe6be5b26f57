package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is_MatchesByCode(t *testing.T) {
	err := ErrInsufficientStock.WithMessage("only 3 left in WH-MAIN")

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, "only 3 left in WH-MAIN", err.Error())
}

func TestDomainError_Is_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("receive stock: %w", ErrOverReceipt.WithMessage("line already complete"))

	assert.ErrorIs(t, wrapped, ErrOverReceipt)

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "OVER_RECEIPT", de.Code)
}

func TestDomainError_Is_NonDomainTarget(t *testing.T) {
	assert.NotErrorIs(t, ErrNotFound, errors.New("NOT_FOUND"))
}

func TestWithMessage_PreservesSentinel(t *testing.T) {
	copy := ErrNotFound.WithMessage("purchase not found")

	assert.NotSame(t, ErrNotFound, copy)
	assert.Equal(t, ErrNotFound.Code, copy.Code)
	assert.Equal(t, "Resource not found", ErrNotFound.Message, "sentinel message untouched")
}
