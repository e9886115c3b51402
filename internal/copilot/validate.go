package copilot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every constraint a candidate answer violated.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "answer failed schema validation: " + strings.Join(parts, "; ")
}

type wireAction struct {
	Action   *string `json:"action" validate:"required,min=1,max=240"`
	Reason   *string `json:"reason" validate:"required,min=1,max=600"`
	Priority *string `json:"priority" validate:"required,oneof=high medium low"`
}

type wireAnswer struct {
	Summary            *string      `json:"summary" validate:"required,min=1,max=1200"`
	KeyDrivers         []string     `json:"key_drivers" validate:"required,min=3,max=6,dive,min=1"`
	RecommendedActions []wireAction `json:"recommended_actions" validate:"required,min=3,max=6,dive"`
	Confidence         *float64     `json:"confidence" validate:"required,gte=0,lte=1"`
	UsedDataPoints     []string     `json:"used_data_points" validate:"required,min=1,max=16,dive,min=1"`
}

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

// Validate checks a raw candidate against the answer contract: exactly the
// five top-level keys, exactly three keys per action, and every bound.
func Validate(raw []byte) (*Answer, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "$", Message: "must be a JSON object"}}}
	}

	fields := checkKeys(top, answerKeys, "")
	if rawActions, ok := top["recommended_actions"]; ok {
		var actions []map[string]json.RawMessage
		if json.Unmarshal(rawActions, &actions) == nil {
			for i, action := range actions {
				if action == nil {
					continue
				}
				fields = append(fields, checkKeys(action, actionKeys, fmt.Sprintf("recommended_actions[%d].", i))...)
			}
		}
	}

	var wire wireAnswer
	if err := json.Unmarshal(raw, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			fields = append(fields, FieldError{Field: typeErr.Field, Message: "must be " + jsonKind(typeErr.Type)})
		} else {
			fields = append(fields, FieldError{Field: "$", Message: err.Error()})
		}
		return nil, &ValidationError{Fields: fields}
	}

	if err := validate.Struct(wire); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fieldPath(fe), Message: constraintMessage(fe)})
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	answer := &Answer{
		Summary:            *wire.Summary,
		KeyDrivers:         wire.KeyDrivers,
		RecommendedActions: make([]Action, 0, len(wire.RecommendedActions)),
		Confidence:         *wire.Confidence,
		UsedDataPoints:     wire.UsedDataPoints,
	}
	for _, a := range wire.RecommendedActions {
		answer.RecommendedActions = append(answer.RecommendedActions, Action{
			Action:   *a.Action,
			Reason:   *a.Reason,
			Priority: Priority(*a.Priority),
		})
	}
	return answer, nil
}

// ValidateAnswer runs an already-typed answer through the same contract.
func ValidateAnswer(a Answer) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = Validate(raw)
	return err
}

func checkKeys(obj map[string]json.RawMessage, want []string, prefix string) []FieldError {
	var out []FieldError
	allowed := make(map[string]bool, len(want))
	for _, k := range want {
		allowed[k] = true
		if _, ok := obj[k]; !ok {
			out = append(out, FieldError{Field: prefix + k, Message: "is required"})
		}
	}
	var extra []string
	for k := range obj {
		if !allowed[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, FieldError{Field: prefix + k, Message: "is not allowed"})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.Slice:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a " + t.String()
}

// compactJSON is used when echoing a rejected candidate into logs.
func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
