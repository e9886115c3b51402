package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// ErrorTypeInvalidJSON tags undecodable bodies in the audit trail.
const ErrorTypeInvalidJSON = "invalid_json"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes and validates a request body. Unknown fields are
// ignored.
func DecodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return invalidJSON(io.EOF)
	}
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		return invalidJSON(err)
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func invalidJSON(err error) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid JSON body.").
		WithDetails(map[string]any{"error_type": ErrorTypeInvalidJSON, "error": err.Error()})
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]any{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}
