package jsonschema

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// formatChecker validates a format name against a string instance. Per §4.4,
// format checkers never fail on a non-string instance (type mismatches are
// `type`'s job); a checker simply returns true for anything it doesn't
// recognize as a string.
type formatChecker func(s string) bool

// formatCheckers is the §4.4 registry: one checker per supported format
// name, spanning RFC 3339 date/time, RFC 5322 email, RFC 5890/5891 IDN
// hostnames, RFC 3986/3987 URIs, RFC 4122 UUIDs, RFC 6901 JSON Pointers and
// their relative form, plus uri-template and regex.
var formatCheckers = map[string]formatChecker{
	"date-time":             isDateTime,
	"date":                  isFullDate,
	"full-date":             isFullDate,
	"time":                  isFullTime,
	"full-time":             isFullTime,
	"duration":              isDuration,
	"email":                 isEmail,
	"idn-email":             isIDNEmail,
	"hostname":              ParseHostname,
	"idn-hostname":          ParseIDNHostname,
	"ipv4":                  isIPv4,
	"ipv6":                  isIPv6,
	"uri":                   isURI,
	"uri-reference":         isURIReference,
	"iri":                   isURI,
	"iri-reference":         isURIReference,
	"uuid":                  isUUID,
	"uri-template":          isURITemplate,
	"json-pointer":          isJSONPointer,
	"relative-json-pointer": isRelativeJSONPointer,
	"regex":                 isValidRegex,
}

// handleFormat implements §4.9 `format`: looks up the checker for the named
// format, always records the `format` annotation, and additionally reports
// an assertion failure when format assertion is enabled for this dialect
// (§4.4's three-tier precedence, see EvaluationContext.formatAssertionEnabled).
func handleFormat(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	name, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("format", "format must be a string")
	}
	ctx.addAnnotation("format", name)

	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	checker, known := formatCheckers[name]
	if !known {
		return true, nil
	}
	if checker(s) {
		return true, nil
	}
	if !ctx.formatAssertionEnabled() {
		return true, nil
	}
	ctx.addError(false, "format", "format_mismatch", "Value does not match the {format} format", map[string]any{"format": name})
	return false, nil
}

func isDateTime(s string) bool {
	if len(s) < 20 {
		return false
	}
	if s[10] != 'T' && s[10] != 't' {
		return false
	}
	return isFullDate(s[:10]) && isFullTime(s[11:])
}

func isFullDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// isFullTime implements RFC 3339 full-time by hand since Go's time package
// does not accept leap seconds (":60").
func isFullTime(s string) bool {
	if len(s) < 9 || s[2] != ':' || s[5] != ':' {
		return false
	}
	inRange := func(str string, min, max int) (int, bool) {
		n, err := strconv.Atoi(str)
		if err != nil || n < min || n > max {
			return 0, false
		}
		return n, true
	}
	h, ok := inRange(s[0:2], 0, 23)
	if !ok {
		return false
	}
	m, ok := inRange(s[3:5], 0, 59)
	if !ok {
		return false
	}
	sec, ok := inRange(s[6:8], 0, 60)
	if !ok {
		return false
	}
	rest := s[8:]
	if rest != "" && rest[0] == '.' {
		rest = rest[1:]
		digits := 0
		for rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			digits++
			rest = rest[1:]
		}
		if digits == 0 {
			return false
		}
	}
	if rest == "" {
		return false
	}
	if rest[0] == 'z' || rest[0] == 'Z' {
		if len(rest) != 1 {
			return false
		}
	} else {
		if len(rest) != 6 || rest[3] != ':' {
			return false
		}
		if rest[0] != '+' && rest[0] != '-' {
			return false
		}
		if _, ok := inRange(rest[1:3], 0, 23); !ok {
			return false
		}
		if _, ok := inRange(rest[4:6], 0, 59); !ok {
			return false
		}
	}
	if sec == 60 && (h != 23 || m != 59) {
		return false
	}
	return true
}

// isDuration implements the RFC 3339 Appendix A duration ABNF.
func isDuration(s string) bool {
	if len(s) == 0 || s[0] != 'P' {
		return false
	}
	s = s[1:]
	parseUnits := func() (units string, ok bool) {
		for len(s) > 0 && s[0] != 'T' {
			digits := false
			for len(s) != 0 && s[0] >= '0' && s[0] <= '9' {
				digits = true
				s = s[1:]
			}
			if !digits || len(s) == 0 {
				return units, false
			}
			units += s[:1]
			s = s[1:]
		}
		return units, true
	}
	units, ok := parseUnits()
	if !ok {
		return false
	}
	if units == "W" {
		return len(s) == 0
	}
	if len(units) > 0 {
		if !strings.Contains("YMD", units) {
			return false
		}
		if len(s) == 0 {
			return true
		}
	}
	if len(s) == 0 || s[0] != 'T' {
		return false
	}
	s = s[1:]
	units, ok = parseUnits()
	return ok && len(s) == 0 && len(units) > 0 && strings.Contains("HMS", units)
}

func isEmail(s string) bool {
	if len(s) > 254 {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 64 {
		return false
	}
	if len(domain) >= 2 && domain[0] == '[' && domain[len(domain)-1] == ']' {
		ip := domain[1 : len(domain)-1]
		if strings.HasPrefix(ip, "IPv6:") {
			return isIPv6(strings.TrimPrefix(ip, "IPv6:"))
		}
		return isIPv4(ip)
	}
	if !ParseHostname(domain) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func isIDNEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	domain := s[at+1:]
	if !ParseIDNHostname(domain) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func isIPv4(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return false
	}
	for _, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil || n < 0 || n > 255 {
			return false
		}
		if len(g) > 1 && g[0] == '0' {
			return false
		}
	}
	return true
}

func isIPv6(s string) bool {
	if !strings.Contains(s, ":") {
		return false
	}
	return validateIPv6Literal(s) == nil
}

func isURI(s string) bool {
	u, err := ParseURI(s)
	return err == nil && u.IsAbsolute()
}

func isURIReference(s string) bool {
	if strings.Contains(s, `\`) {
		return false
	}
	_, err := ParseURI(s)
	return err == nil
}

func isURITemplate(s string) bool {
	u, err := ParseURI(s)
	if err != nil {
		return false
	}
	depth := 0
	for _, r := range u.Path + u.Query {
		switch r {
		case '{':
			depth++
			if depth != 1 {
				return false
			}
		case '}':
			depth--
			if depth != 0 {
				return false
			}
		}
	}
	return depth == 0
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isJSONPointer(s string) bool {
	if s != "" && !strings.HasPrefix(s, "/") {
		return false
	}
	for _, item := range strings.Split(s, "/") {
		for i := 0; i < len(item); i++ {
			if item[i] != '~' {
				continue
			}
			if i == len(item)-1 {
				return false
			}
			if item[i+1] != '0' && item[i+1] != '1' {
				return false
			}
		}
	}
	return true
}

func isRelativeJSONPointer(s string) bool {
	if s == "" {
		return false
	}
	switch {
	case s[0] == '0':
		s = s[1:]
	case s[0] >= '0' && s[0] <= '9':
		for s != "" && s[0] >= '0' && s[0] <= '9' {
			s = s[1:]
		}
	default:
		return false
	}
	return s == "#" || isJSONPointer(s)
}

func isValidRegex(pattern string) bool {
	_, err := compileECMA262(pattern)
	return err == nil
}
