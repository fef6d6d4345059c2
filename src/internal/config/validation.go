package config

import (
	"fmt"
	"net"
	"net/netip"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maksimkurb/netctl/src/internal/dnsserver"
	"github.com/maksimkurb/netctl/src/internal/scheduler"
	"github.com/miekg/dns"
)

var ifnameRegexp = regexp.MustCompile(`^[^/\s:]{1,15}$`)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "ip_or_empty":
		return "must be a valid IP address (without brackets) or empty"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	case "cron_spec":
		return "must be a five-field cron spec or a descriptor such as '@every 30s'"
	case "forwarder":
		return "must be an IP address or 'ip:port'"
	case "dns_name":
		return "must be a valid domain name"
	case "ifname":
		return "must be an interface name of 1-15 characters without '/', ':' or spaces"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // Item the error belongs to, when the field is inside a list
	FieldPath string // Dot-notation field path (e.g., "dns.listen_port")
	Message   string
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	custom := map[string]validator.Func{
		"ip_or_empty":       validateIPOrEmpty,
		"hostport_or_empty": validateHostPortOrEmpty,
		"cron_spec":         validateCronSpec,
		"forwarder":         validateForwarder,
		"dns_name":          validateDNSName,
		"ifname":            validateIfname,
	}
	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	// Report fields by their TOML key
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// The DNS listener joins address and port itself, so brackets are rejected.
func validateIPOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := netip.ParseAddr(value)
	return err == nil
}

func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, port, err := net.SplitHostPort(value)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

func validateCronSpec(fl validator.FieldLevel) bool {
	return scheduler.ValidateSpec(fl.Field().String()) == nil
}

func validateForwarder(fl validator.FieldLevel) bool {
	return dnsserver.ValidateForwarder(fl.Field().String()) == nil
}

func validateDNSName(fl validator.FieldLevel) bool {
	_, ok := dns.IsDomainName(fl.Field().String())
	return ok
}

func validateIfname(fl validator.FieldLevel) bool {
	return ifnameRegexp.MatchString(fl.Field().String())
}
