package values

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// EmailDomainAllowlist holds domains accepted by the "email" validator even though
// they are not fully qualified.
var EmailDomainAllowlist = []string{"localhost"}

// URLSchemes lists the schemes accepted by the "url" validator.
var URLSchemes = []string{"http", "https", "ftp", "ftps"}

// TagValidator returns a validator that checks raw against a validator/v10 tag, e.g. "email".
func TagValidator(tag string) Validator {
	return func(raw string) error {
		return validate.Var(raw, tag)
	}
}

// ValidateEmail accepts addresses passing the validator/v10 email tag and addresses
// whose domain is in EmailDomainAllowlist.
func ValidateEmail(raw string) error {
	err := validate.Var(raw, "email")
	if err == nil {
		return nil
	}
	at := strings.LastIndex(raw, "@")
	if at <= 0 {
		return err
	}
	for _, domain := range EmailDomainAllowlist {
		if strings.EqualFold(raw[at+1:], domain) {
			// the local part is checked against a qualified stand-in domain
			return validate.Var(raw[:at]+"@example.com", "email")
		}
	}
	return err
}

// ValidateURL accepts absolute URLs with one of URLSchemes.
func ValidateURL(raw string) error {
	if err := validate.Var(raw, "url"); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, scheme := range URLSchemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return nil
		}
	}
	return fmt.Errorf("scheme %q is not allowed", u.Scheme)
}

func init() {
	Validators.Register("email", ValidateEmail)
	Validators.Register("url", ValidateURL)
	Validators.Register("ip", TagValidator("ip"))
	Validators.Register("ipv4", TagValidator("ipv4"))
	Validators.Register("ipv6", TagValidator("ipv6"))
	Validators.Register("hostname", TagValidator("hostname"))
	Validators.Register("uuid", TagValidator("uuid"))
}

// Email declares a string value holding an email address.
func Email(opts ...Option) (*Value[string], error) {
	return validatedString("EmailValue", "Cannot interpret email value %q", ValidateEmail, opts)
}

// URL declares a string value holding an http, https, ftp or ftps URL.
func URL(opts ...Option) (*Value[string], error) {
	return validatedString("URLValue", "Cannot interpret URL value %q", ValidateURL, opts)
}

// IP declares a string value holding an IPv4 or IPv6 address.
func IP(opts ...Option) (*Value[string], error) {
	return validatedString("IPValue", "Cannot interpret IP value %q", TagValidator("ip"), opts)
}

// Regex declares a string value that must match expr.
func Regex(expr string, opts ...Option) (*Value[string], error) {
	const kind = "RegexValue"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, configError(kind, "invalid regex %q: %w", expr, err)
	}
	match := func(raw string) error {
		if !re.MatchString(raw) {
			return fmt.Errorf("no match for %s", re)
		}
		return nil
	}
	return validatedString(kind, "Regex doesn't match value %q", match, opts)
}

// validatedString builds a string value gated by check. Extra validators given with
// WithValidator run first. A non-empty default must pass.
func validatedString(kind, message string, check Validator, opts []Option) (*Value[string], error) {
	o := newOptions(nil, opts)

	cast := func(raw string) (string, error) {
		if err := check(raw); err != nil {
			return "", fmt.Errorf(message, raw)
		}
		return raw, nil
	}
	cast, err := withValidators(kind, o, cast)
	if err != nil {
		return nil, err
	}

	def, err := defaultOf[string](kind, o.def, nil)
	if err != nil {
		return nil, err
	}
	if def != "" {
		if _, err = cast(def); err != nil {
			return nil, configError(kind, "%w %q: %w", ErrInvalidDefault, def, err)
		}
	}
	return newValue(kind, o, cast, def)
}
