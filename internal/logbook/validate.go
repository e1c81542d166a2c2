package logbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkStruct runs validator tags over a request payload and converts
// failures into the field→message map callers receive.
func checkStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldName maps a struct field to its JSON name
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	switch name {
	case "UserID":
		return "user_id"
	case "RouteID":
		return "route_id"
	case "AscentStatus":
		return "ascent_status"
	case "RopingStatus":
		return "roping_status"
	case "HardnessStatus":
		return "hardness_status"
	case "ReleasedAt":
		return "released_at"
	case "PrivateComment":
		return "private_comment"
	case "SelectedSections":
		return "selected_sections"
	}
	return strings.ToLower(name)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "uuid4":
		return "must be a valid uuid"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
