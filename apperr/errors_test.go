package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreconditionErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("start work day: %w", &PreconditionError{Action: "start_work_day", Message: "already claimed"})

	require.ErrorIs(t, err, ErrPreconditionViolation)

	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "already claimed", pe.Message)
	assert.Equal(t, "start_work_day: already claimed", pe.Error())
}

func TestValidation(t *testing.T) {
	err := Validation("overtime_day must be between 1 and 7, got %d", 9)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "got 9")
}
