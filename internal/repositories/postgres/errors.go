package postgres

import (
	"errors"
	"strings"

	"github.com/yoockh/jobbo/internal/utils"
	"gorm.io/gorm"
)

// SQLSTATE codes surfaced as domain sentinels. gorm translates only a few of
// them, and only when TranslateError is enabled.
const (
	sqlUniqueViolation       = "23505"
	sqlInsufficientPrivilege = "42501"
)

func hasSQLState(err error, code string) bool {
	return err != nil && strings.Contains(err.Error(), code)
}

// mapErr turns driver errors into utils sentinels. Unknown errors pass through.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), hasSQLState(err, sqlUniqueViolation):
		return utils.ErrConflict
	case hasSQLState(err, sqlInsufficientPrivilege):
		return utils.ErrPermissionDenied
	}
	return err
}
