package entity

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// attributeSeparator starts the isolation suffix of a serialized origin.
const attributeSeparator = "^"

// OriginAttributes isolates identities sharing a scheme/host/port.
type OriginAttributes struct {
	AppID     uint32
	InBrowser bool
}

// IsDefault reports whether the attributes add no isolation.
func (a OriginAttributes) IsDefault() bool {
	return a.AppID == 0 && !a.InBrowser
}

// Suffix returns the serialized attributes, e.g. "^appId=1000&inBrowser=1".
// Default attributes serialize to the empty string.
func (a OriginAttributes) Suffix() string {
	if a.IsDefault() {
		return ""
	}
	var params []string
	if a.AppID != 0 {
		params = append(params, "appId="+strconv.FormatUint(uint64(a.AppID), 10))
	}
	if a.InBrowser {
		params = append(params, "inBrowser=1")
	}
	return attributeSeparator + strings.Join(params, "&")
}

// ParseOriginAttributes parses a suffix with or without its leading "^".
func ParseOriginAttributes(suffix string) (OriginAttributes, error) {
	var attrs OriginAttributes
	suffix = strings.TrimPrefix(suffix, attributeSeparator)
	if suffix == "" {
		return attrs, nil
	}
	for _, param := range strings.Split(suffix, "&") {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			return attrs, fmt.Errorf("%w: malformed attribute %q", ErrInvalidOrigin, param)
		}
		switch key {
		case "appId":
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return attrs, fmt.Errorf("%w: appId %q: %v", ErrInvalidOrigin, value, err)
			}
			attrs.AppID = uint32(id)
		case "inBrowser":
			if value != "1" {
				return attrs, fmt.Errorf("%w: inBrowser must be 1, got %q", ErrInvalidOrigin, value)
			}
			attrs.InBrowser = true
		default:
			return attrs, fmt.Errorf("%w: unknown attribute %q", ErrInvalidOrigin, key)
		}
	}
	return attrs, nil
}

// Origin is a scheme/host/port triple qualified by isolation attributes.
// Port is 0 when the scheme's default port applies.
type Origin struct {
	Scheme     string
	Host       string
	Port       int
	Attributes OriginAttributes
}

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ftp":   21,
}

// CanCarryPermissions reports whether origins of scheme may hold site permissions.
func CanCarryPermissions(scheme string) bool {
	_, ok := defaultPorts[strings.ToLower(scheme)]
	return ok
}

// DefaultPort returns the implicit port of scheme, or 0 if unknown.
func DefaultPort(scheme string) int {
	return defaultPorts[strings.ToLower(scheme)]
}

// NewOrigin builds an origin, folding the scheme's default port to 0.
func NewOrigin(scheme, host string, port int, attrs OriginAttributes) Origin {
	scheme = strings.ToLower(scheme)
	if port == DefaultPort(scheme) {
		port = 0
	}
	return Origin{
		Scheme:     scheme,
		Host:       strings.ToLower(host),
		Port:       port,
		Attributes: attrs,
	}
}

// ParseOrigin parses a URI or serialized origin such as
// "https://example.com:8443/path" or "https://foo.com^appId=1000".
// The "^" suffix is only read after a bare origin; in a full URI it is part
// of the path or query. Schemes that cannot carry permissions yield
// ErrUnsupportedScheme.
func ParseOrigin(raw string) (Origin, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Origin{}, fmt.Errorf("%w: empty", ErrInvalidOrigin)
	}

	var attrs OriginAttributes
	base, suffix, found := strings.Cut(raw, attributeSeparator)
	if found && isBareOrigin(base) {
		var err error
		if attrs, err = ParseOriginAttributes(suffix); err != nil {
			return Origin{}, err
		}
	} else {
		base = raw
	}

	u, err := url.Parse(base)
	if err != nil {
		return Origin{}, fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if !CanCarryPermissions(u.Scheme) {
		return Origin{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return Origin{}, fmt.Errorf("%w: %q has no host", ErrInvalidOrigin, raw)
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Origin{}, fmt.Errorf("%w: port %q", ErrInvalidOrigin, p)
		}
	}
	return NewOrigin(u.Scheme, host, port, attrs), nil
}

// isBareOrigin reports whether s is scheme://host[:port] and nothing more.
func isBareOrigin(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Host != "" && u.User == nil && u.Path == "" &&
		u.RawQuery == "" && !u.ForceQuery && u.Fragment == ""
}

// String serializes the origin, e.g. "ftp://foo.com:8000^appId=1000".
func (o Origin) String() string {
	host := o.Host
	if o.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(o.Port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return o.Scheme + "://" + host + o.Attributes.Suffix()
}

// WithHost returns a copy of o bound to another host.
func (o Origin) WithHost(host string) Origin {
	o.Host = strings.ToLower(host)
	return o
}
