package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/habanero-api/internal/apperr"
)

var (
	looseEmailPattern = regexp.MustCompile(`^\S+@\S+$`)
	symbolPattern     = regexp.MustCompile(`[\x21-\x2f\x3a-\x40\x5b-\x60\x7b-\x7e]`)
)

// fieldRule is one declarative constraint on one request field: a
// validator/v10 tag and the reason reported when the value fails it.
type fieldRule struct {
	tag    string
	reason string
}

// Per-request-type validators. Each field carries an explicit rule list;
// every failed rule contributes one (field, reason) pair to the aggregated
// ValidationError.
var (
	emailRules = []fieldRule{
		{"required", "is required"},
		{"max=255", "must be 255 characters or fewer"},
		{"loose_email", "is not a valid email address"},
	}
	screenNameRules = []fieldRule{
		{"required,min=1", "must be at least 1 character"},
		{"max=32", "must be 32 characters or fewer"},
	}
	passwordRules = []fieldRule{
		{"required,min=6,max=1024", "must be 6 to 1024 characters"},
		{"ascii", "may only contain ASCII letters, digits, and symbols"},
		{"has_upper", "must contain at least one uppercase letter"},
		{"has_symbol", "must contain at least one symbol"},
	}
)

// RequestValidator validates request payloads against the declarative rule
// lists above.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator with the custom format
// checks registered.
func NewRequestValidator() (*RequestValidator, error) {
	v := validator.New()

	customs := map[string]validator.Func{
		"loose_email": func(fl validator.FieldLevel) bool {
			return looseEmailPattern.MatchString(fl.Field().String())
		},
		"has_upper": func(fl validator.FieldLevel) bool {
			return strings.ContainsAny(fl.Field().String(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
		},
		"has_symbol": func(fl validator.FieldLevel) bool {
			return symbolPattern.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range customs {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}

	return &RequestValidator{validate: v}, nil
}

// checkField runs a rule list over a single value, adding one reason per
// failed rule.
func (rv *RequestValidator) checkField(errs *apperr.Error, field, value string, rules []fieldRule) {
	for _, rule := range rules {
		if err := rv.validate.Var(value, rule.tag); err != nil {
			errs.Add(field, rule.reason)
		}
	}
}

// ValidateRegisterAccount checks a registration payload.
// Returns a ValidationError carrying every violated constraint, or nil.
func (rv *RequestValidator) ValidateRegisterAccount(req *RegisterAccountRequest) error {
	errs := apperr.Validation()
	rv.checkField(errs, "email", req.Email, emailRules)
	rv.checkField(errs, "screenName", req.ScreenName, screenNameRules)
	rv.checkField(errs, "password", req.Password, passwordRules)

	if errs.HasFields() {
		return errs
	}
	return nil
}
