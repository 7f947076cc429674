package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("запись не найдена")
	ErrAlreadyRevoked = errors.New("токен уже отозван")
	ErrConflict       = errors.New("нарушение уникальности")
	ErrInvalidCursor  = errors.New("некорректный курсор пагинации")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
