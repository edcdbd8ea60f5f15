package repositories

import (
	"errors"

	"github.com/farellandr/tixflow/internal/domain"
	"gorm.io/gorm"
)

// translate maps storage errors onto the domain taxonomy.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundError{Resource: resource, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
	default:
		return err
	}
}
