package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/begone/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("mnemonic", validateMnemonic); err != nil {
		panic(fmt.Sprintf("failed to register mnemonic validator: %v", err))
	}
	if err := Validate.RegisterValidation("category", validateCategory); err != nil {
		panic(fmt.Sprintf("failed to register category validator: %v", err))
	}
}

// validateMnemonic accepts printable ASCII without whitespace, as used by the
// numbering registry for operator codes.
func validateMnemonic(fl validator.FieldLevel) bool {
	return IsMnemonic(fl.Field().String())
}

// validateCategory validates that a string is a known Category value
func validateCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Code() != ""
}

// IsMnemonic reports whether s is a usable registry mnemonic
func IsMnemonic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ValidateEntry validates a blocklist entry
func ValidateEntry(e *models.Entry) error {
	return describe(Validate.Struct(e))
}

// ValidateRecord validates an output record
func ValidateRecord(r *models.NumberRecord) error {
	return describe(Validate.Struct(r))
}

// describe flattens validator errors into a single readable message
func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("invalid %s: %v", strings.ToLower(fe.Field()), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
