package config

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	sections := []struct {
		prefix string
		value  any
	}{
		{"general", c.General},
		{"bus", c.Bus},
		{"wifi", c.WiFi},
		{"routing", c.Routing},
		{"dns", c.DNS},
		{"vpn", c.VPN},
		{"metrics", c.Metrics},
	}
	for _, s := range sections {
		if err := validate.Struct(s.value); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, s.prefix, "")...)
		}
	}

	validationErrors = append(validationErrors, c.validateDNS()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateDNS() ValidationErrors {
	var validationErrors ValidationErrors

	// The redirect sends port 53 to the server, which loops if it listens there itself
	if len(c.DNS.RedirectInterfaces) > 0 && c.DNS.ListenPort == 53 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "dns.redirect_interfaces",
			Message:   "requires listen_port other than 53",
		})
	}

	seenForwarders := make(map[string]bool)
	for i, f := range c.DNS.Forwarders {
		if seenForwarders[f] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  f,
				FieldPath: fmt.Sprintf("dns.forwarders.%d", i),
				Message:   fmt.Sprintf("duplicate forwarder: %s", f),
			})
		}
		seenForwarders[f] = true
	}

	seenIfaces := make(map[string]bool)
	for _, iface := range c.DNS.RedirectInterfaces {
		if seenIfaces[iface] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  iface,
				FieldPath: "dns.redirect_interfaces",
				Message:   fmt.Sprintf("duplicate interface: %s", iface),
			})
		}
		seenIfaces[iface] = true
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if stderrors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// Field() is the TOML key thanks to the registered tag name func
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
