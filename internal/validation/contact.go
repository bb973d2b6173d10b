// Package validation checks raw contact form input against the submission schema.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/portfolio/backend/internal/model"
)

// Form field names as submitted by the browser.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldSubject   = "subject"
	FieldMessage   = "message"
)

// Fields lists every contact form field in display order.
var Fields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldSubject, FieldMessage}

// FieldErrors maps a form field name to a single human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// messages holds the user-facing text per field and failing rule.
var messages = map[string]map[string]string{
	FieldFirstName: {
		"required": "First name is required",
		"max":      "First name must be less than 50 characters",
	},
	FieldLastName: {
		"required": "Last name is required",
		"max":      "Last name must be less than 50 characters",
	},
	FieldEmail: {
		"formemail": "Please enter a valid email address",
	},
	FieldSubject: {
		"required": "Subject is required",
		"max":      "Subject must be less than 100 characters",
	},
	FieldMessage: {
		"min": "Message must be at least 10 characters",
		"max": "Message must be less than 1000 characters",
	},
}

// Validator validates contact submissions. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports errors under the browser field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("formemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	return &Validator{v: v}
}

// emailPattern is the address grammar the contact form accepts: an unquoted
// local part of letters, digits and _'+-. and a dotted domain ending in a TLD
// of two or more letters.
var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9_'+\-.]*[a-z0-9_+-]@([a-z0-9][a-z0-9\-]*\.)+[a-z]{2,}$`)

// IsEmail reports whether s is an address the contact form accepts. The local
// part may not start with a dot and no part may contain "..".
func IsEmail(s string) bool {
	if strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}

// Extract copies the known contact fields out of raw. Missing fields become
// empty strings; surrounding whitespace is trimmed.
func Extract(raw map[string]string) model.SubmissionInput {
	get := func(k string) string { return strings.TrimSpace(raw[k]) }
	return model.SubmissionInput{
		FirstName: get(FieldFirstName),
		LastName:  get(FieldLastName),
		Email:     get(FieldEmail),
		Subject:   get(FieldSubject),
		Message:   get(FieldMessage),
	}
}

// Validate checks every field of in and returns all violations at once.
// A nil result means the input is valid.
func (v *Validator) Validate(in model.SubmissionInput) FieldErrors {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError only happens on programmer error.
		return FieldErrors{"form": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[field] = msg
	}
	return out
}

// Parse extracts and validates raw form input in one step.
func (v *Validator) Parse(raw map[string]string) (model.SubmissionInput, FieldErrors) {
	in := Extract(raw)
	if errs := v.Validate(in); errs != nil {
		return model.SubmissionInput{}, errs
	}
	return in, nil
}
