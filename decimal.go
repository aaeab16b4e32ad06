package jsonschema

import (
	"math/big"
	"strings"
)

// Decimal is an arbitrary-precision signed decimal that preserves the
// original textual scale of a JSON number, the way the teacher's Rat type
// wraps a *big.Rat but additionally remembers whether the literal carried a
// fractional part or exponent — required by §4.3 so `1` and `1.0` compare
// numerically equal yet answer IsInteger differently only when the scale
// says so (per spec: isInteger is a property of the stripped value, not the
// literal, so `1.0` IS an integer; what textual form buys us is faithful
// round-tripping on MarshalJSON, same rationale as the teacher's FormatRat).
type Decimal struct {
	rat *big.Rat
	raw string // original JSON literal, e.g. "1.50", "3e2"
}

// NewDecimalFromString parses a JSON number literal into a Decimal.
func NewDecimalFromString(s string) (*Decimal, error) {
	r := new(big.Rat)
	if _, ok := r.SetString(normalizeNumberLiteral(s)); !ok {
		return nil, ErrInvalidDecimal
	}
	return &Decimal{rat: r, raw: s}, nil
}

// NewDecimalFromInt builds a Decimal from an int64 without round-tripping
// through JSON text; the YAML resource decoder (convertYAMLValue) uses it
// for integer values.
func NewDecimalFromInt(n int64) *Decimal {
	return &Decimal{rat: new(big.Rat).SetInt64(n), raw: ""}
}

// NewDecimalFromFloat builds a Decimal from a float64; the YAML resource
// decoder (convertYAMLValue) uses it for floating-point values.
func NewDecimalFromFloat(f float64) *Decimal {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		r = new(big.Rat)
	}
	return &Decimal{rat: r}
}

// normalizeNumberLiteral rewrites exponent notation ("3e2") into a form
// big.Rat.SetString accepts ("300" via rational scaling is handled natively
// by big.Rat for decimal forms, but not scientific notation), and leaves
// plain decimal literals untouched.
func normalizeNumberLiteral(s string) string {
	if !strings.ContainsAny(s, "eE") {
		return s
	}
	f, ok := new(big.Float).SetPrec(256).SetString(s)
	if !ok {
		return s
	}
	return f.Text('f', -1)
}

// IsInteger reports whether the decimal's reduced value has no fractional
// part, i.e. n.stripTrailingZeros().scale() <= 0 per §4.3. This is a
// property of the numeric value, not the literal: 1.0, 1e0, and 1 are all
// integers.
func (d *Decimal) IsInteger() bool {
	if d == nil {
		return false
	}
	return d.rat.IsInt()
}

// Cmp compares two decimals numerically; returns -1, 0, or 1.
func (d *Decimal) Cmp(other *Decimal) int {
	return d.rat.Cmp(other.rat)
}

// MultipleOf reports whether d is an integer multiple of m, computed with
// exact rational arithmetic so there is no floating-point overflow or
// rounding: multipleOf(a, m) is true iff (a/m) has no fractional part.
func (d *Decimal) MultipleOf(m *Decimal) bool {
	if m.rat.Sign() == 0 {
		return false
	}
	quotient := new(big.Rat).Quo(d.rat, m.rat)
	return quotient.IsInt()
}

// Sign returns -1, 0, or 1 matching the sign of the decimal.
func (d *Decimal) Sign() int { return d.rat.Sign() }

// Float64 returns an approximate float64 representation, used only for
// format checkers and diagnostics that tolerate imprecision (never for
// comparisons, which always go through Cmp/MultipleOf).
func (d *Decimal) Float64() float64 {
	f, _ := d.rat.Float64()
	return f
}

// Int returns the integer value and true if the decimal is an integer.
func (d *Decimal) Int() (int64, bool) {
	if !d.rat.IsInt() {
		return 0, false
	}
	return d.rat.Num().Int64(), true
}

// String renders the decimal, preferring the original literal when present
// so re-marshaling a schema or instance is byte-stable, falling back to a
// trimmed decimal expansion otherwise (mirrors the teacher's FormatRat).
func (d *Decimal) String() string {
	if d.raw != "" {
		return d.raw
	}
	if d.rat.IsInt() {
		return d.rat.Num().String()
	}
	dec := d.rat.FloatString(20)
	dec = strings.TrimRight(dec, "0")
	dec = strings.TrimRight(dec, ".")
	if dec == "" || dec == "-" {
		return "0"
	}
	return dec
}

// MarshalJSON implements json.Marshaler so Decimal values embedded in
// annotation/error maps re-serialize as JSON numbers, not strings.
func (d *Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}
