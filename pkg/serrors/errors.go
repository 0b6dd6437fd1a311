package serrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error that transports enough context for the HTTP layer to
// render a stable response.
type BaseError struct {
	Code         string            `json:"code"`
	Message      string            `json:"message"`
	LocaleKey    string            `json:"locale_key,omitempty"`
	Status       int               `json:"-"`
	TemplateData map[string]string `json:"template_data,omitempty"`
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if len(e.TemplateData) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, formatTemplateData(e.TemplateData))
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	e.TemplateData = data
	return e
}

func (e *BaseError) WithStatus(status int) *BaseError {
	e.Status = status
	return e
}

func formatTemplateData(data map[string]string) string {
	keys := []string{"action", "object", "kind", "domain", "subject"}
	parts := make([]string, 0, len(data))
	for _, k := range keys {
		if v, ok := data[k]; ok && v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

// ValidationErrors maps a field name to its human readable message.
type ValidationErrors map[string]string

// ProcessValidatorErrors converts validator errors into field messages. Messages read like
// "Title can't be blank" so they can be joined into a single sentence list.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

// FieldError is a single failed field, in declaration order.
type FieldError struct {
	Field   string
	Message string
}

// InvalidError reports every failed field of an entity.
type InvalidError struct {
	Fields []FieldError
}

func (e *InvalidError) Error() string {
	return strings.Join(e.Messages(), ", ")
}

func (e *InvalidError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Message)
	}
	return out
}

// FromValidator turns the result of validator.Struct into an *InvalidError, keeping
// the struct field order. Errors of any other type are returned unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &InvalidError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	return fmt.Sprintf("%s %s", Humanize(fe.Field()), tagMessage(fe))
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	default:
		return "is invalid"
	}
}

// Humanize turns "rejected_reason" into "Rejected reason".
func Humanize(field string) string {
	field = strings.TrimSpace(strings.ReplaceAll(field, "_", " "))
	if field == "" {
		return ""
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
