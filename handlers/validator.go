package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"xposure-ticketing/models"
)

// RequestValidator plugs go-playground/validator into echo's Validator
// hook so handlers can call c.Validate on bound request structs.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}
