package game

import (
	"fmt"
	"unicode/utf8"
)

// Field length limits, shared by the API and the offline validator.
const (
	MinFieldLen       = 2
	MaxNameLen        = 25
	MaxDescriptionLen = 255
)

// FieldError is a single per-field validation message in the shape the
// editor UI consumes.
type FieldError struct {
	Field          string `json:"field"`
	DefaultMessage string `json:"defaultMessage"`
}

// ValidationResponse is the create/rename response body. Delete uses a bare
// boolean instead; see the handlers.
type ValidationResponse struct {
	HasErrors   bool         `json:"hasErrors"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

func sizeMessage(min, max int) string {
	return fmt.Sprintf("Size of the field cannot be less than %d and more than %d characters.", min, max)
}

// ValidateNodePayload checks a create/rename payload against the field
// constraints: named node types need a name of 2-25 characters, rooms a
// description of 2-255 characters, condition nodes a payload with a known
// flag state. Returns the violations in field order, or nil.
func ValidateNodePayload(nodeType NodeType, name, description string, cond *Condition) []FieldError {
	var errs []FieldError

	switch nodeType {
	case TypeRoom, TypeChoice, TypeFlag:
		if n := utf8.RuneCountInString(name); n < MinFieldLen || n > MaxNameLen {
			errs = append(errs, FieldError{
				Field:          "name",
				DefaultMessage: sizeMessage(MinFieldLen, MaxNameLen),
			})
		}
		if nodeType == TypeRoom {
			if n := utf8.RuneCountInString(description); n < MinFieldLen || n > MaxDescriptionLen {
				errs = append(errs, FieldError{
					Field:          "description",
					DefaultMessage: sizeMessage(MinFieldLen, MaxDescriptionLen),
				})
			}
		}
	case TypeCondition:
		if cond == nil || cond.FlagID == "" {
			errs = append(errs, FieldError{
				Field:          "condition.flagState",
				DefaultMessage: "Condition is required.",
			})
		} else if !cond.FlagState.Valid() {
			errs = append(errs, FieldError{
				Field:          "condition.flagState",
				DefaultMessage: "Flag state must be ACTIVE or NOT_ACTIVE.",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:          "type",
			DefaultMessage: "Node type is required.",
		})
	}

	return errs
}
