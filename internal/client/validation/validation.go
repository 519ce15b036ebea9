// Package validation runs the client-side fast-fail checks on form payloads
// before they are sent. The server stays authoritative; these rules only
// spare a round trip and produce field-scoped messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	otpRe      = regexp.MustCompile(`^[0-9]{6}$`)
	webURLRe   = regexp.MustCompile(`^https?://\S+$`)
)

const minPasswordLength = 8

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages match the API's vocabulary.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})

	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(PasswordProblems(fl.Field().String())) == 0
	}))
	must(v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return otpRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return webURLRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ErrInvalid is matched by every Errors value.
var ErrInvalid = errors.New("validation failed")

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Struct validates s and returns Errors, or nil when s is valid.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s should be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "username":
		return "username must be 3-50 characters of letters, digits or underscores"
	case "password":
		return "password must contain " + strings.Join(PasswordProblems(fe.Value().(string)), ", ")
	case "otp":
		return "otp must be a 6-digit code"
	case "weburl":
		return "enter a valid URL starting with http:// or https://"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidUsername reports whether s matches ^[A-Za-z0-9_]{3,50}$.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// PasswordProblems lists what s is missing from the composite policy:
// at least 8 characters, an upper-case letter, a lower-case letter, a digit
// and a special character. An empty result means the password passes.
func PasswordProblems(s string) []string {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	var problems []string
	if len([]rune(s)) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("at least %d characters", minPasswordLength))
	}
	if !upper {
		problems = append(problems, "an upper-case letter")
	}
	if !lower {
		problems = append(problems, "a lower-case letter")
	}
	if !digit {
		problems = append(problems, "a digit")
	}
	if !special {
		problems = append(problems, "a special character")
	}
	return problems
}
