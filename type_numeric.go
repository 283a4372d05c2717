package books

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Numeric is an exact rational number with a 64-bit numerator and
// denominator. It is the only representation used for monetary amounts and
// quantities: all balance checks and totals are computed on Numeric, never on
// floats.
//
// A Numeric is not kept in lowest terms; equality is structural by
// cross-multiplication, so 1/2 and 2/4 compare equal. The zero value is the
// invalid 0/0, use Zero() or New() to obtain a usable one.
type Numeric struct {
	num   int64
	denom int64
}

// New creates a Numeric from a numerator and denominator.
// It returns ErrDivisionByZero when denom is zero. The pair is stored
// unmodified: no reduction is performed.
func New(num, denom int64) (Numeric, error) {
	if denom == 0 {
		return Numeric{}, ErrDivisionByZero
	}
	return Numeric{num: num, denom: denom}, nil
}

// Zero returns 0/1.
func Zero() Numeric { return Numeric{num: 0, denom: 1} }

// FromInt returns n/1.
func FromInt(n int64) Numeric { return Numeric{num: n, denom: 1} }

// Cents returns n/100, convenient for amounts in a 2-decimal currency.
func Cents(n int64) Numeric { return Numeric{num: n, denom: 100} }

// FromDecimal converts a decimal to the exact rational it denotes:
// coefficient over the matching power of ten. It fails with
// ErrArithmeticOverflow when either side does not fit in 64 bits.
func FromDecimal(d decimal.Decimal) (Numeric, error) {
	coeff := d.Coefficient()
	if !coeff.IsInt64() {
		return Numeric{}, ErrArithmeticOverflow
	}
	num := coeff.Int64()
	denom := int64(1)
	for exp := d.Exponent(); exp != 0; {
		if exp < 0 {
			var err error
			if denom, err = checkedMul(denom, 10); err != nil {
				return Numeric{}, err
			}
			exp++
		} else {
			var err error
			if num, err = checkedMul(num, 10); err != nil {
				return Numeric{}, err
			}
			exp--
		}
	}
	return Numeric{num: num, denom: denom}, nil
}

// Num returns the numerator.
func (n Numeric) Num() int64 { return n.num }

// Denom returns the denominator.
func (n Numeric) Denom() int64 { return n.denom }

// IsZero reports whether the value represents zero.
func (n Numeric) IsZero() bool { return n.num == 0 && n.denom != 0 }

// IsNegative reports whether the value is strictly negative. The sign is the
// product of the numerator and denominator signs, so -1/2 and 1/-2 are both
// negative.
func (n Numeric) IsNegative() bool { return n.denom != 0 && (n.num < 0) != (n.denom < 0) }

// IsPositive reports whether the value is strictly positive.
func (n Numeric) IsPositive() bool { return n.denom != 0 && !n.IsZero() && !n.IsNegative() }

// Sign returns -1, 0 or +1. Unlike the boolean predicates it rejects an
// invalid value: a zero denominator returns ErrDivisionByZero.
func (n Numeric) Sign() (int, error) {
	switch {
	case n.denom == 0:
		return 0, ErrDivisionByZero
	case n.num == 0:
		return 0, nil
	case (n.num < 0) != (n.denom < 0):
		return -1, nil
	default:
		return 1, nil
	}
}

// Neg returns the negation. It flips the numerator only.
func (n Numeric) Neg() Numeric { return Numeric{num: -n.num, denom: n.denom} }

// Abs returns the absolute value of both components.
func (n Numeric) Abs() Numeric {
	num, denom := n.num, n.denom
	if num < 0 {
		num = -num
	}
	if denom < 0 {
		denom = -denom
	}
	return Numeric{num: num, denom: denom}
}

// Equal reports whether n and o represent the same rational value, by
// cross-multiplication: n.num*o.denom == o.num*n.denom. The products are
// overflow-checked; an unrepresentable product returns ErrArithmeticOverflow
// rather than a silently wrapped comparison.
func (n Numeric) Equal(o Numeric) (bool, error) {
	if n.denom == 0 || o.denom == 0 {
		return false, ErrDivisionByZero
	}
	ad, err := checkedMul(n.num, o.denom)
	if err != nil {
		return false, err
	}
	cb, err := checkedMul(o.num, n.denom)
	if err != nil {
		return false, err
	}
	return ad == cb, nil
}

// Cmp compares n and o, returning -1, 0 or +1. The cross products are taken
// together with the sign of the denominator product, so 1/-2 orders like
// -1/2.
func (n Numeric) Cmp(o Numeric) (int, error) {
	if n.denom == 0 || o.denom == 0 {
		return 0, ErrDivisionByZero
	}
	ad, err := checkedMul(n.num, o.denom)
	if err != nil {
		return 0, err
	}
	cb, err := checkedMul(o.num, n.denom)
	if err != nil {
		return 0, err
	}
	c := 0
	switch {
	case ad < cb:
		c = -1
	case ad > cb:
		c = 1
	}
	// sign(n-o) carries the sign of n.denom*o.denom.
	if (n.denom < 0) != (o.denom < 0) {
		c = -c
	}
	return c, nil
}

// Add returns the exact sum n + o over the product denominator:
// (n.num*o.denom + o.num*n.denom) / (n.denom*o.denom). Every intermediate
// product and the final addition are overflow-checked.
func (n Numeric) Add(o Numeric) (Numeric, error) {
	if n.denom == 0 || o.denom == 0 {
		return Numeric{}, ErrDivisionByZero
	}
	ad, err := checkedMul(n.num, o.denom)
	if err != nil {
		return Numeric{}, err
	}
	cb, err := checkedMul(o.num, n.denom)
	if err != nil {
		return Numeric{}, err
	}
	num, err := checkedAdd(ad, cb)
	if err != nil {
		return Numeric{}, err
	}
	denom, err := checkedMul(n.denom, o.denom)
	if err != nil {
		return Numeric{}, err
	}
	return Numeric{num: num, denom: denom}, nil
}

// Sub returns the exact difference n - o.
func (n Numeric) Sub(o Numeric) (Numeric, error) { return n.Add(o.Neg()) }

// Mul returns the exact product: numerators multiplied over denominators
// multiplied, overflow-checked.
func (n Numeric) Mul(o Numeric) (Numeric, error) {
	if n.denom == 0 || o.denom == 0 {
		return Numeric{}, ErrDivisionByZero
	}
	num, err := checkedMul(n.num, o.num)
	if err != nil {
		return Numeric{}, err
	}
	denom, err := checkedMul(n.denom, o.denom)
	if err != nil {
		return Numeric{}, err
	}
	return Numeric{num: num, denom: denom}, nil
}

// Sum returns the exact sum of values, or Zero() for an empty sequence.
// The sum is folded pairwise by cross-multiplication; the first overflow
// aborts the whole computation with ErrArithmeticOverflow.
func Sum(values ...Numeric) (Numeric, error) {
	total := Zero()
	for _, v := range values {
		var err error
		total, err = total.Add(v)
		if err != nil {
			return Numeric{}, err
		}
	}
	return total, nil
}

// Float converts to a float64 for display. The conversion is lossy and is
// never used for equality, ordering or balance checks. A zero denominator
// yields NaN or ±Inf depending on the numerator sign.
func (n Numeric) Float() float64 {
	if n.denom == 0 {
		switch {
		case n.num == 0:
			return math.NaN()
		case n.num > 0:
			return math.Inf(1)
		default:
			return math.Inf(-1)
		}
	}
	return float64(n.num) / float64(n.denom)
}

// Decimal converts to a decimal for display and interop. Like Float it is
// lossy for denominators that are not a power of ten.
func (n Numeric) Decimal() decimal.Decimal {
	if n.denom == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(n.num).Div(decimal.NewFromInt(n.denom))
}

func (n Numeric) String() string {
	switch n.denom {
	case 1:
		return fmt.Sprintf("%d", n.num)
	case 0:
		return "NaN"
	default:
		return fmt.Sprintf("%d/%d", n.num, n.denom)
	}
}

// MarshalJSON encodes as {"num": n, "denom": d}.
func (n Numeric) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `{"num":%d,"denom":%d}`, n.num, n.denom), nil
}

// UnmarshalJSON decodes the {"num", "denom"} object form and rejects a zero
// denominator.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	var raw struct {
		Num   int64 `json:"num"`
		Denom int64 `json:"denom"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := New(raw.Num, raw.Denom)
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// checkedMul multiplies two int64 and fails with ErrArithmeticOverflow when
// the mathematical product does not fit.
func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, ErrArithmeticOverflow
	}
	p := a * b
	if p/b != a {
		return 0, ErrArithmeticOverflow
	}
	return p, nil
}

// checkedAdd adds two int64 and fails with ErrArithmeticOverflow when the
// mathematical sum does not fit.
func checkedAdd(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrArithmeticOverflow
	}
	return s, nil
}
