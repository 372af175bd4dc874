// Package validation holds the shared validator engine and the Indian
// tax/contact formats used across input schemas.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	phonePattern   = regexp.MustCompile(`^(\+91|91)?[6-9][0-9]{9}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	hsnPattern     = regexp.MustCompile(`^[0-9]{4,8}$`)
)

var (
	engine *validator.Validate
	once   sync.Once
)

// Normalizer is implemented by inputs that clean themselves up before validation.
type Normalizer interface {
	Normalize()
}

// Errors carries field-level violations keyed by json field name.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Engine returns the process-wide validator with custom rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// money fields are compared as numbers by the standard gt/gte/lte rules
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		mustRegister(v, "gstin", IsGSTIN)
		mustRegister(v, "pan", IsPAN)
		mustRegister(v, "in_phone", IsPhone)
		mustRegister(v, "pincode", IsPincode)
		mustRegister(v, "hsn", IsHSN)
		engine = v
	})
	return engine
}

func mustRegister(v *validator.Validate, tag string, fn func(string) bool) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

func IsGSTIN(s string) bool   { return gstinPattern.MatchString(s) }
func IsPAN(s string) bool     { return panPattern.MatchString(s) }
func IsPhone(s string) bool   { return phonePattern.MatchString(s) }
func IsPincode(s string) bool { return pincodePattern.MatchString(s) }
func IsHSN(s string) bool     { return hsnPattern.MatchString(s) }

// Struct normalizes and validates v. It returns nil or *Errors.
func Struct(v interface{}) error {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}

	err := Engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Errors{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return &Errors{Fields: fields}
}

// fieldPath drops the top-level struct name: "InvoiceInput.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gstin":
		return "must be a valid 15-character GST number"
	case "pan":
		return "must be a valid 10-character PAN"
	case "in_phone":
		return "must be a valid Indian mobile number"
	case "pincode":
		return "must be a 6-digit pincode"
	case "hsn":
		return "must be a 4 to 8 digit HSN/SAC code"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()))
	case "eq":
		return fmt.Sprintf("must be %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
