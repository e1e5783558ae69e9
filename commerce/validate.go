package commerce

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-commerce-store/errs"
)

// asValidationError converts an ozzo validation result into the layer's
// ValidationError naming a single offending field. With multiple failing
// fields the lexicographically first one is reported so the error is
// deterministic.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	ve, ok := err.(validation.Errors)
	if !ok {
		return &errs.ValidationError{Field: "", Reason: err.Error()}
	}

	fields := make([]string, 0, len(ve))
	for field := range ve {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	field := fields[0]
	return &errs.ValidationError{Field: field, Reason: ve[field].Error()}
}
