package settings

import (
	stderrors "errors"
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a single rejected setting.
type ValidationError struct {
	Key     string
	Message string
}

// ValidationErrors is a collection of rejected settings.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 1 {
		return fmt.Sprintf("%s: %s", ve[0].Key, ve[0].Message)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d invalid settings:", len(ve)))
	for _, e := range ve {
		sb.WriteString(fmt.Sprintf(" %s: %s;", e.Key, e.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

var (
	validate = validator.New()

	ifnameRegexp  = regexp.MustCompile(`^[^/\s:]{1,15}$`)
	countryRegexp = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

func init() {
	if err := validate.RegisterValidation("ifname", validateIfname); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("country", validateCountry); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("endpoint", validateEndpoint); err != nil {
		panic(err)
	}

	// Report fields by their settings key
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("key"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validator: Linux interface name (IFNAMSIZ - 1, no slashes or whitespace)
func validateIfname(fl validator.FieldLevel) bool {
	return ifnameRegexp.MatchString(fl.Field().String())
}

// Custom validator: ISO 3166 alpha-2 country code
func validateCountry(fl validator.FieldLevel) bool {
	return countryRegexp.MatchString(fl.Field().String())
}

// Custom validator: IP, hostname, or either with a port
func validateEndpoint(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	if net.ParseIP(value) != nil {
		return true
	}
	return validate.Var(value, "hostname_rfc1123") == nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "ip":
		return "must be a valid IP address"
	case "ifname":
		return "must be a valid interface name (up to 15 characters, no '/', ':' or whitespace)"
	case "country":
		return "must be a two-letter country code"
	case "endpoint":
		return "must be an IP address or hostname, optionally with a port"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// check runs struct validation and appends failures to the reader's errors.
func (r *reader) check(v any) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		r.fail("-", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		// drop the struct name prefix
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		r.fail(key, validationMessage(fe))
	}
}
