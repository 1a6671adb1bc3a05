package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"translated", gorm.ErrDuplicatedKey, true},
		{"wrapped translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "idx_implementations_code" (SQLSTATE 23505)`), true},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry 'acme' for key 'idx_implementations_code'"), true},
		{"sqlite", errors.New("UNIQUE constraint failed: implementations.code"), true},
		{"unrelated", errors.New("connection refused"), false},
		{"not found", gorm.ErrRecordNotFound, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}
