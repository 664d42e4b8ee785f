package validation

import (
	"regexp"
	"strings"

	"kontak/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	lettersAndSpaces = regexp.MustCompile(`^[A-Za-z\s]+$`)
)

// Input is the raw form payload. Values come straight from the request body,
// so any of them may be nil or of a non-string type.
type Input struct {
	Name    interface{}
	Email   interface{}
	Message interface{}
}

// FieldError describes one violated rule of one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// rule pairs a validator tag with the message reported when it fails.
type rule struct {
	tag     string
	message string
}

type field struct {
	name      string
	label     string
	normalize func(string) string
	rules     []rule
}

var (
	nameField = field{
		name:      "name",
		label:     "Name",
		normalize: strings.TrimSpace,
		rules: []rule{
			{tag: "min=2,max=100", message: "Name must be between 2 and 100 characters"},
			{tag: "alphaspace", message: "Name can only contain letters and spaces"},
		},
	}
	emailField = field{
		name:      "email",
		label:     "Email",
		normalize: normalizeEmail,
		rules: []rule{
			{tag: "email", message: "Please provide a valid email address"},
			{tag: "max=255", message: "Email must not exceed 255 characters"},
		},
	}
	messageField = field{
		name:      "message",
		label:     "Message",
		normalize: strings.TrimSpace,
		rules: []rule{
			{tag: "min=10,max=1000", message: "Message must be between 10 and 1000 characters"},
		},
	}
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return lettersAndSpaces.MatchString(fl.Field().String())
	})
	return v
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the input and returns the normalized fields. When any rule is
// violated the returned error list is non-empty and the fields must be ignored.
func Validate(in Input) (models.SubmissionFields, []FieldError) {
	var out models.SubmissionFields
	var errs []FieldError

	out.Name, errs = nameField.check(in.Name, errs)
	out.Email, errs = emailField.check(in.Email, errs)
	out.Message, errs = messageField.check(in.Message, errs)

	return out, errs
}

// check normalizes raw and appends every failed rule. A missing, blank or
// non-text value reports a single error and skips the remaining rules.
func (f field) check(raw interface{}, errs []FieldError) (string, []FieldError) {
	if raw == nil {
		return "", append(errs, FieldError{Field: f.name, Message: f.label + " is required"})
	}
	s, ok := raw.(string)
	if !ok {
		return "", append(errs, FieldError{Field: f.name, Message: f.label + " must be text"})
	}
	value := f.normalize(s)
	if value == "" {
		return "", append(errs, FieldError{Field: f.name, Message: f.label + " is required"})
	}

	for _, r := range f.rules {
		if err := validate.Var(value, r.tag); err != nil {
			errs = append(errs, FieldError{Field: f.name, Message: r.message})
		}
	}
	return value, errs
}
