package shell

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/equilobe/library-go/library/shared/core"
)

var ErrInvalidQuery = fmt.Errorf("%w: invalid query", core.ErrValidation)

var queryValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateQuery checks the `validate` struct tags of a query.
func ValidateQuery(query Query) error {
	if err := queryValidator.Struct(query); err != nil {
		return errors.Join(ErrInvalidQuery, err)
	}

	return nil
}
