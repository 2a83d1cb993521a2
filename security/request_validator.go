// ABOUTME: Pre-dispatch request payload validation built on go-playground/validator
// ABOUTME: Invalid payloads short-circuit before any network traffic happens

package security

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/models"
)

// RequestValidator wraps the go-playground validator with SurfSense rules
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator creates a validator instance with custom rules
func NewRequestValidator() *RequestValidator {
	validate := validator.New()

	registerCustomValidators(validate)

	// Use JSON field names for validation error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{
		validator: validate,
	}
}

// Validate checks a request payload and returns a validation error carrying
// per-field issues when the payload is malformed.
func (v *RequestValidator) Validate(payload interface{}) error {
	if payload == nil {
		return nil
	}

	err := v.validator.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Non-struct payloads (maps, slices of primitives) are passed through as-is
		return nil
	}

	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, fieldIssueMessage(fe))
	}

	return domain.NewValidationError("Request validation failed.", issues)
}

// ValidateVar validates a single value against a tag expression.
func (v *RequestValidator) ValidateVar(field interface{}, tag string) error {
	return v.validator.Var(field, tag)
}

// fieldIssueMessage renders one validation failure as a user-facing message
func fieldIssueMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "document_type":
		return fmt.Sprintf("%s must be a known document type", field)
	case "connector_type":
		return fmt.Sprintf("%s must be a known connector type", field)
	case "chat_type":
		return fmt.Sprintf("%s must be a known chat type", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// registerCustomValidators registers SurfSense enum rules
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		value := models.DocumentType(fl.Field().String())
		switch value {
		case models.DocumentTypeExtension, models.DocumentTypeCrawledURL, models.DocumentTypeFile,
			models.DocumentTypeSlackConnector, models.DocumentTypeNotionConnector, models.DocumentTypeYoutubeVideo:
			return true
		}
		return false
	})

	validate.RegisterValidation("connector_type", func(fl validator.FieldLevel) bool {
		value := models.ConnectorType(fl.Field().String())
		switch value {
		case models.ConnectorTypeSerperAPI, models.ConnectorTypeTavilyAPI, models.ConnectorTypeSlackConnector,
			models.ConnectorTypeNotionConnector, models.ConnectorTypeGithubConnector, models.ConnectorTypeLinearConnector:
			return true
		}
		return false
	})

	validate.RegisterValidation("chat_type", func(fl validator.FieldLevel) bool {
		value := models.ChatType(fl.Field().String())
		switch value {
		case models.ChatTypeGeneral, models.ChatTypeDeep, models.ChatTypeDeeper:
			return true
		}
		return false
	})
}
