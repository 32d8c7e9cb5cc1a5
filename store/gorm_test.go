package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"worktime/apperr"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, apperr.ErrNotFound},
		{"wrapped not found", fmt.Errorf("first: %w", gorm.ErrRecordNotFound), apperr.ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, ErrDuplicate},
		{"foreign key", gorm.ErrForeignKeyViolated, apperr.ErrProtected},
		{"passthrough", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.in), tt.want)
		})
	}
	assert.NoError(t, translate(nil))
}

func TestTranslateKeepsDriverMessage(t *testing.T) {
	err := translate(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NotErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Contains(t, err.Error(), gorm.ErrDuplicatedKey.Error())
}
