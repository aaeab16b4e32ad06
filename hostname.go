package jsonschema

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/bidi"
)

// hostnameProfile is the IDNA registration profile hostnameASCII runs a
// plain hostname through; the label shape rules of §4.2 (length, charset,
// hyphens, all-digit last label) are checked by labelsValid.
var hostnameProfile = sync.OnceValue(func() *idna.Profile {
	return idna.New(idna.ValidateForRegistration())
})

// idnHostnameProfile additionally applies RFC 5891 §4.2.3 validation and
// the RFC 5893 Bidi rule.
var idnHostnameProfile = sync.OnceValue(func() *idna.Profile {
	return idna.New(
		idna.VerifyDNSLength(true),
		idna.ValidateLabels(true),
		idna.BidiRule(),
	)
})

// ParseHostname validates a plain (non-internationalized) hostname per §4.2.
func ParseHostname(s string) bool {
	return validateHostname(s, false)
}

// ParseIDNHostname validates an internationalized hostname per §4.2: ASCII
// labels use the plain rule, non-ASCII labels apply RFC 5891/5892/5893.
func ParseIDNHostname(s string) bool {
	return validateHostname(s, true)
}

func validateHostname(s string, idn bool) bool {
	if s == "" {
		return false
	}

	if !idn {
		for i := 0; i < len(s); i++ {
			if s[i] >= 0x80 {
				return false
			}
		}
		return labelsValid(s) && hostnameASCII(s)
	}

	// Fullwidth/ideographic stops are treated as label separators per
	// RFC 3490 §3.1 before the rest of the contextual checks run.
	normalized := s
	normalized = strings.ReplaceAll(normalized, "。", ".")
	normalized = strings.ReplaceAll(normalized, "．", ".")
	normalized = strings.ReplaceAll(normalized, "｡", ".")

	// ASCII-only labels follow the plain hostname label rule.
	labels := strings.Split(strings.TrimSuffix(normalized, "."), ".")
	for i, label := range labels {
		if strings.IndexFunc(label, func(r rune) bool { return r > unicode.MaxASCII }) >= 0 {
			continue
		}
		if i < len(labels)-1 && label != "" && len(label) <= 63 && allDigits(label) {
			continue // all-digit labels are only barred in last position
		}
		if !labelsValid(label) {
			return false
		}
	}

	if !contextualRulesPass(normalized) {
		return false
	}
	if !bidiRulePasses(normalized) {
		return false
	}

	if _, err := idnHostnameProfile().ToASCII(normalized); err != nil {
		return false
	}
	return true
}

// hostnameASCII defers the heavy RFC 5890 label-length/charset checks to
// golang.org/x/net/idna, which already implements them correctly; this is
// the "regular rule" of §4.2 applied through the ecosystem library rather
// than a hand duplicated state machine.
func hostnameASCII(s string) bool {
	_, err := hostnameProfile().ToASCII(s)
	return err == nil
}

// labelsValid applies the ASCII label shape directly: 1-63 chars of
// [A-Za-z0-9-], no leading/trailing '-', total <=253, a trailing '.'
// permitted, last label not all-digits. A plain hostname must pass both
// this check and hostnameASCII.
func labelsValid(s string) bool {
	trimmed := strings.TrimSuffix(s, ".")
	if len(trimmed) > 253 {
		return false
	}
	labels := strings.Split(trimmed, ".")
	for i, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for j := 0; j < len(label); j++ {
			c := label[j]
			ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-'
			if !ok {
				return false
			}
		}
		if i == len(labels)-1 && allDigits(label) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// contextualRulesPass implements RFC 5892 contextual rules for: middle dot
// (U+00B7, Catalan "l·l"), Greek lower numeral sign (U+0375), Hebrew
// geresh/gershayim (U+05F3/05F4), Katakana middle dot (U+30FB), and the
// Arabic-Indic / Extended Arabic-Indic digit exclusivity rule, and rejects
// a fixed set of disallowed code points (U+0640, U+07FA, U+302E/302F,
// U+3031-3035, U+303B). ZWJ/ZWNJ (U+200C/200D) are not checked here.
func contextualRulesPass(s string) bool {
	runes := []rune(s)
	hasArabicIndic, hasExtArabicIndic := false, false
	for _, c := range runes {
		if c >= '٠' && c <= '٩' {
			hasArabicIndic = true
		}
		if c >= '۰' && c <= '۹' {
			hasExtArabicIndic = true
		}
	}
	if hasArabicIndic && hasExtArabicIndic {
		return false
	}

	var last rune
	var nextMustBe rune
	var nextMustBeGreek bool
	for i, c := range runes {
		if nextMustBe != 0 && nextMustBe != c {
			return false
		}
		nextMustBe = 0
		if nextMustBeGreek && !unicode.Is(unicode.Greek, c) {
			return false
		}
		nextMustBeGreek = false

		switch c {
		case 'ـ', 'ߺ', '〮', '〯',
			'〱', '〲', '〳', '〴', '〵', '〻':
			return false
		case '·':
			if last != 'l' {
				return false
			}
			nextMustBe = 'l'
		case '͵':
			nextMustBeGreek = true
		case '׳', '״':
			if !unicode.Is(unicode.Hebrew, last) {
				return false
			}
		case '・':
			if !strings.ContainsFunc(s, func(r rune) bool {
				return unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Han, r)
			}) {
				return false
			}
		}
		last = c
		_ = i
	}
	if nextMustBe != 0 || nextMustBeGreek {
		return false
	}
	return true
}

// bidiRulePasses applies RFC 5893 using golang.org/x/text/unicode/bidi's
// directionality classification: a label containing any right-to-left
// character must satisfy the RFC 5893 ordering constraints on its first and
// last character classes. idna.BidiRule() already enforces this during
// ToASCII, but the engine checks it directly too so ParseIDNHostname can be
// exercised as a standalone format predicate without round-tripping through
// Punycode.
func bidiRulePasses(s string) bool {
	for _, label := range strings.Split(strings.TrimSuffix(s, "."), ".") {
		if label == "" {
			continue
		}
		if !bidiLabelOK(label) {
			return false
		}
	}
	return true
}

func bidiLabelOK(label string) bool {
	hasRTL := false
	runes := []rune(label)
	classes := make([]bidi.Class, len(runes))
	for i, r := range runes {
		p, _ := bidi.LookupRune(r)
		classes[i] = p.Class()
		if classes[i] == bidi.R || classes[i] == bidi.AL {
			hasRTL = true
		}
	}
	if !hasRTL {
		return true // LTR label: RFC 5893 rule 1 (no RTL requirement to check)
	}
	first := classes[0]
	if first != bidi.R && first != bidi.AL {
		return false // rule 2: first char must be R or AL
	}
	last := classes[len(classes)-1]
	okLast := last == bidi.R || last == bidi.AL || last == bidi.EN || last == bidi.AN
	if !okLast {
		return false // rule 3
	}
	for _, c := range classes {
		switch c {
		case bidi.R, bidi.AL, bidi.AN, bidi.EN, bidi.ES, bidi.CS, bidi.ET, bidi.ON, bidi.BN, bidi.NSM:
		default:
			return false // rule 4: no L, LRE, LRO, RLE, RLO, PDF, or other disallowed classes
		}
	}
	return true
}
