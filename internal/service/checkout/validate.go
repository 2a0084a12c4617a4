package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"storefront/internal/domain"
)

// RequiredFields lists the checkout form fields in the order they are validated.
var RequiredFields = []string{"fname", "lname", "street", "city", "state", "zip", "cardNumber", "expiration", "code"}

type customerForm struct {
	FirstName  string `json:"fname" validate:"required"`
	LastName   string `json:"lname" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	Zip        string `json:"zip" validate:"required,zip"`
	CardNumber string `json:"cardNumber" validate:"required,card16"`
	Expiration string `json:"expiration" validate:"required,expiry"`
	Code       string `json:"code" validate:"required,cvv"`
}

var formatRules = map[string]struct {
	pattern *regexp.Regexp
	reason  string
}{
	"zip":    {regexp.MustCompile(`^\d{5}(-\d{4})?$`), "must be 5 digits with an optional -NNNN suffix"},
	"card16": {regexp.MustCompile(`^\d{16}$`), "must be exactly 16 digits"},
	"expiry": {regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`), "must be MM/YY"},
	"cvv":    {regexp.MustCompile(`^\d{3,4}$`), "must be 3 or 4 digits"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, rule := range formatRules {
		pattern := rule.pattern
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// ValidateCustomer trims the submitted fields and checks the required ones.
// It returns the trimmed fields, or domain.ValidationErrors listing every
// violation in RequiredFields order.
func ValidateCustomer(fields map[string]string) (map[string]string, error) {
	trimmed := make(map[string]string, len(fields))
	for k, v := range fields {
		trimmed[k] = strings.TrimSpace(v)
	}
	form := customerForm{
		FirstName:  trimmed["fname"],
		LastName:   trimmed["lname"],
		Street:     trimmed["street"],
		City:       trimmed["city"],
		State:      trimmed["state"],
		Zip:        trimmed["zip"],
		CardNumber: trimmed["cardNumber"],
		Expiration: trimmed["expiration"],
		Code:       trimmed["code"],
	}

	err := validate.Struct(form)
	if err == nil {
		return trimmed, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		reason := "is required"
		if rule, ok := formatRules[fe.Tag()]; ok {
			reason = rule.reason
		}
		out = append(out, &domain.ValidationError{Field: fe.Field(), Reason: reason})
	}
	return nil, out
}
