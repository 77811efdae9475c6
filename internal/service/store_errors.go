package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

// lookupError maps a repository lookup failure for entity: missing rows become a clone
// of notFound, anything else is a store failure.
func lookupError(err error, notFound *appErrors.Error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(notFound, entity+" not found")
	}
	return appErrors.StoreUnavailable(err, "failed to load "+entity)
}

func storeError(err error, action string) error {
	return appErrors.StoreUnavailable(err, "failed to "+action)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
