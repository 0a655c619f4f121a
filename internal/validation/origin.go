package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// OriginValidator validates entries of the CORS allow-list and incoming
// Origin headers.
type OriginValidator struct {
	// AllowLocalhost permits http(s)://localhost style origins
	AllowLocalhost bool
	// AllowHTTP permits plain-http origins
	AllowHTTP bool
	// MaxLength is the maximum allowed origin length
	MaxLength int
}

// NewOriginValidator returns a validator that accepts local development
// origins such as http://localhost:5173.
func NewOriginValidator() *OriginValidator {
	return &OriginValidator{
		AllowLocalhost: true,
		AllowHTTP:      true,
		MaxLength:      2048,
	}
}

// NewStrictOriginValidator only accepts public https origins.
func NewStrictOriginValidator() *OriginValidator {
	return &OriginValidator{
		AllowLocalhost: false,
		AllowHTTP:      false,
		MaxLength:      2048,
	}
}

// ValidateAndNormalize returns the origin in its canonical
// "scheme://host[:port]" form.
func (v *OriginValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("origin cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("origin too long (max %d characters)", v.MaxLength)
	}
	if strings.EqualFold(input, "null") {
		return "", fmt.Errorf("opaque origin %q is not allowed", input)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("origin contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid origin format: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch scheme {
	case "https":
	case "http":
		if !v.AllowHTTP {
			return "", fmt.Errorf("origin must use https")
		}
	default:
		return "", fmt.Errorf("origin must use http or https protocol")
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("origin must have a valid hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("origin must not carry credentials")
	}
	if (parsed.Path != "" && parsed.Path != "/") || parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("origin must not contain a path, query or fragment")
	}

	hostname := parsed.Hostname()
	if parsed.Port() != "" {
		if _, _, splitErr := net.SplitHostPort(parsed.Host); splitErr != nil {
			return "", fmt.Errorf("invalid host format: %w", splitErr)
		}
	}
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return "", fmt.Errorf("localhost origins are not permitted")
	}

	return scheme + "://" + strings.ToLower(parsed.Host), nil
}

// isLocalhost checks if a hostname refers to localhost
func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

// AllowList is an immutable set of normalized origins.
type AllowList struct {
	validator *OriginValidator
	origins   map[string]struct{}
}

// NewAllowList validates and normalizes every configured origin.
func NewAllowList(v *OriginValidator, origins []string) (*AllowList, error) {
	al := &AllowList{validator: v, origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if strings.TrimSpace(o) == "" {
			continue
		}
		normalized, err := v.ValidateAndNormalize(o)
		if err != nil {
			return nil, fmt.Errorf("allowed origin %q: %w", o, err)
		}
		al.origins[normalized] = struct{}{}
	}
	return al, nil
}

// Allows reports whether the Origin header value is on the list. The header
// must already be in canonical "scheme://host[:port]" form, because it is
// echoed back verbatim in Access-Control-Allow-Origin.
func (a *AllowList) Allows(origin string) bool {
	if a == nil || origin == "" {
		return false
	}
	normalized, err := a.validator.ValidateAndNormalize(origin)
	if err != nil || normalized != origin {
		return false
	}
	_, ok := a.origins[normalized]
	return ok
}

// Origins returns the normalized origins in no particular order.
func (a *AllowList) Origins() []string {
	out := make([]string, 0, len(a.origins))
	for o := range a.origins {
		out = append(out, o)
	}
	return out
}
