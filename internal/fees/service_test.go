package fees

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsNegativeAmount(t *testing.T) {
	s := NewService(nil)

	_, err := s.Create(context.Background(), CreateInput{
		StudentID: "9a1f0c2e-5b6d-4e7f-8a9b-0c1d2e3f4a5b",
		Date:      time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		Amount:    -50,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateInputAcceptsZeroAmount(t *testing.T) {
	// A waived fee arrives as an amount of 0 and must still record a receipt.
	v := validator.New()

	err := v.Struct(CreateInput{
		StudentID:   "9a1f0c2e-5b6d-4e7f-8a9b-0c1d2e3f4a5b",
		Date:        time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		Amount:      0,
		PaymentMode: "cash",
		Status:      "paid",
	})
	assert.NoError(t, err)
}
