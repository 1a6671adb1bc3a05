package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// duplicateKeyFragments are the driver messages seen when a unique
// index rejects a row and gorm's error translation is not in play
// (raw SQL, or a session opened without TranslateError).
var duplicateKeyFragments = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",               // mysql
	"UNIQUE constraint failed", // sqlite 2067
}

// IsDuplicateKeyErr reports whether err is a unique-constraint
// violation on any supported dialect.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	for _, fragment := range duplicateKeyFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
