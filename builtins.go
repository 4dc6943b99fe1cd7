// builtins.go: slot implementations of the built-in value types
//
// The built-in types run on adopted Go representations: str on string,
// int on int64 with *big.Int adopted for values beyond 64 bits, float on
// float64, bool on bool. bool subclasses int, and every int handle
// accepts bool as self, so the arithmetic inherited along the MRO works
// on bools unchanged.
//
// A binary handle that does not recognise its right-hand operand reports
// errNotImplemented so the dispatcher may try the reflected operation of
// the other operand.
package pyrite

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------
// str

func strRepr(self any) (any, error) {
	return pyQuote(self.(string)), nil
}

// pyQuote renders a string the way the Python repr does, preferring
// single quotes.
func pyQuote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte(quote)
	return b.String()
}

func strStr(self any) (any, error) { return self.(string), nil }

func strLen(self any) (int, error) {
	return len([]rune(self.(string))), nil
}

func strHash(self any) (int, error) {
	h := fnv.New64a()
	h.Write([]byte(self.(string)))
	return int(h.Sum64()), nil
}

func strBool(self any) (bool, error) { return self.(string) != "", nil }

func strAdd(v, w any) (any, error) {
	a := v.(string)
	b, ok := w.(string)
	if !ok {
		return nil, errNotImplemented
	}
	return a + b, nil
}

func strMul(v, w any) (any, error) {
	s := v.(string)
	n, ok := asInt64(w)
	if !ok {
		return nil, errNotImplemented
	}
	if n <= 0 {
		return "", nil
	}
	return strings.Repeat(s, int(n)), nil
}

func strRMul(v, w any) (any, error) { return strMul(v, w) }

func strContains(v, w any) (bool, error) {
	sub, ok := w.(string)
	if !ok {
		return false, typeErrorf("'in <string>' requires string as left operand, not '%s'",
			TypeOf(w).Name())
	}
	return strings.Contains(v.(string), sub), nil
}

func strEq(v, w any) (any, error) { return strCompare(v, w, func(c int) bool { return c == 0 }) }
func strNe(v, w any) (any, error) { return strCompare(v, w, func(c int) bool { return c != 0 }) }
func strLt(v, w any) (any, error) { return strCompare(v, w, func(c int) bool { return c < 0 }) }
func strLe(v, w any) (any, error) { return strCompare(v, w, func(c int) bool { return c <= 0 }) }
func strGt(v, w any) (any, error) { return strCompare(v, w, func(c int) bool { return c > 0 }) }
func strGe(v, w any) (any, error) { return strCompare(v, w, func(c int) bool { return c >= 0 }) }

func strCompare(v, w any, keep func(int) bool) (any, error) {
	b, ok := w.(string)
	if !ok {
		return nil, errNotImplemented
	}
	return keep(strings.Compare(v.(string), b)), nil
}

func strGetItem(v, w any) (any, error) {
	runes := []rune(v.(string))
	i, ok := asInt64(w)
	if !ok {
		return nil, typeErrorf("string indices must be integers, not '%s'", TypeOf(w).Name())
	}
	if i < 0 {
		i += int64(len(runes))
	}
	if i < 0 || i >= int64(len(runes)) {
		return nil, typeErrorf("string index out of range")
	}
	return string(runes[i]), nil
}

func strNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if len(kwargs) > 0 {
		return nil, typeErrorf("str() takes no keyword arguments")
	}
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return Str(args[0])
	default:
		return nil, typeErrorf("str() takes at most 1 argument (%d given)", len(args))
	}
}

// ---------------------------------------------------------------------
// int

// asInt64 reads any accepted self/operand representation of int as an
// int64, when it fits.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case *big.Int:
		if n.IsInt64() {
			return n.Int64(), true
		}
	}
	return 0, false
}

// asBig reads any int representation as a *big.Int.
func asBig(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int64:
		return big.NewInt(n), true
	case int:
		return big.NewInt(int64(n)), true
	case bool:
		if n {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	case *big.Int:
		return n, true
	}
	return nil, false
}

// normInt demotes a big result back to int64 when it fits, keeping the
// canonical representation canonical.
func normInt(z *big.Int) any {
	if z.IsInt64() {
		return z.Int64()
	}
	return z
}

func intRepr(self any) (any, error) {
	z, _ := asBig(self)
	return z.String(), nil
}

func intHash(self any) (int, error) {
	if n, ok := asInt64(self); ok {
		return int(n), nil
	}
	z, _ := asBig(self)
	return int(z.Int64()), nil
}

func intBool(self any) (bool, error) {
	z, _ := asBig(self)
	return z.Sign() != 0, nil
}

func intNeg(self any) (any, error) {
	z, _ := asBig(self)
	return normInt(new(big.Int).Neg(z)), nil
}

func intPos(self any) (any, error) {
	z, _ := asBig(self)
	return normInt(z), nil
}

func intAbs(self any) (any, error) {
	z, _ := asBig(self)
	return normInt(new(big.Int).Abs(z)), nil
}

func intInvert(self any) (any, error) {
	z, _ := asBig(self)
	return normInt(new(big.Int).Not(z)), nil
}

func intIndex(self any) (any, error) { return intPos(self) }
func intInt(self any) (any, error)   { return intPos(self) }

func intFloat(self any) (any, error) {
	z, _ := asBig(self)
	f, _ := new(big.Float).SetInt(z).Float64()
	return f, nil
}

// Either operand of a binary handle may be foreign: the reflected
// handles route the other expression operand through the first
// parameter, so both conversions are checked.
func intBinop(v, w any, op func(z, a, b *big.Int) *big.Int) (any, error) {
	a, ok := asBig(v)
	if !ok {
		return nil, errNotImplemented
	}
	b, ok := asBig(w)
	if !ok {
		return nil, errNotImplemented
	}
	return normInt(op(new(big.Int), a, b)), nil
}

func intAdd(v, w any) (any, error)  { return intBinop(v, w, (*big.Int).Add) }
func intRAdd(v, w any) (any, error) { return intBinop(w, v, (*big.Int).Add) }
func intSub(v, w any) (any, error)  { return intBinop(v, w, (*big.Int).Sub) }
func intRSub(v, w any) (any, error) { return intBinop(w, v, (*big.Int).Sub) }
func intMul(v, w any) (any, error)  { return intBinop(v, w, (*big.Int).Mul) }
func intRMul(v, w any) (any, error) { return intBinop(w, v, (*big.Int).Mul) }

func intCompare(v, w any, keep func(int) bool) (any, error) {
	a, ok := asBig(v)
	if !ok {
		return nil, errNotImplemented
	}
	b, ok := asBig(w)
	if !ok {
		return nil, errNotImplemented
	}
	return keep(a.Cmp(b)), nil
}

func intEq(v, w any) (any, error) { return intCompare(v, w, func(c int) bool { return c == 0 }) }
func intNe(v, w any) (any, error) { return intCompare(v, w, func(c int) bool { return c != 0 }) }
func intLt(v, w any) (any, error) { return intCompare(v, w, func(c int) bool { return c < 0 }) }
func intLe(v, w any) (any, error) { return intCompare(v, w, func(c int) bool { return c <= 0 }) }
func intGt(v, w any) (any, error) { return intCompare(v, w, func(c int) bool { return c > 0 }) }
func intGe(v, w any) (any, error) { return intCompare(v, w, func(c int) bool { return c >= 0 }) }

func intNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if len(kwargs) > 0 {
		return nil, typeErrorf("int() takes no keyword arguments")
	}
	switch len(args) {
	case 0:
		return int64(0), nil
	case 1:
		switch v := args[0].(type) {
		case int64, *big.Int:
			return v, nil
		case bool:
			n, _ := asInt64(v)
			return n, nil
		case float64:
			return int64(v), nil
		case string:
			z, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
			if !ok {
				return nil, typeErrorf("invalid literal for int() with base 10: %s", pyQuote(v))
			}
			return normInt(z), nil
		default:
			return nil, typeErrorf("int() argument must be a string or a number, not '%s'",
				TypeOf(args[0]).Name())
		}
	default:
		return nil, typeErrorf("int() takes at most 1 argument (%d given)", len(args))
	}
}

// ---------------------------------------------------------------------
// bool

func boolRepr(self any) (any, error) {
	if self.(bool) {
		return "True", nil
	}
	return "False", nil
}

func boolBool(self any) (bool, error) { return self.(bool), nil }

func boolNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if len(kwargs) > 0 {
		return nil, typeErrorf("bool() takes no keyword arguments")
	}
	switch len(args) {
	case 0:
		return false, nil
	case 1:
		return IsTrue(args[0])
	default:
		return nil, typeErrorf("bool() takes at most 1 argument (%d given)", len(args))
	}
}

// ---------------------------------------------------------------------
// float

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	}
	return 0, false
}

func floatRepr(self any) (any, error) {
	f := self.(float64)
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Match the Python rendering of integral floats.
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s, nil
}

func floatBool(self any) (bool, error) { return self.(float64) != 0, nil }

func floatNeg(self any) (any, error) { return -self.(float64), nil }
func floatPos(self any) (any, error) { return self.(float64), nil }
func floatAbs(self any) (any, error) { return math.Abs(self.(float64)), nil }

func floatFloat(self any) (any, error) { return self.(float64), nil }

func floatBinop(v, w any, op func(a, b float64) float64) (any, error) {
	a, ok := asFloat(v)
	if !ok {
		return nil, errNotImplemented
	}
	b, ok := asFloat(w)
	if !ok {
		return nil, errNotImplemented
	}
	return op(a, b), nil
}

func floatAdd(v, w any) (any, error)  { return floatBinop(v, w, func(a, b float64) float64 { return a + b }) }
func floatRAdd(v, w any) (any, error) { return floatBinop(w, v, func(a, b float64) float64 { return a + b }) }
func floatSub(v, w any) (any, error)  { return floatBinop(v, w, func(a, b float64) float64 { return a - b }) }
func floatRSub(v, w any) (any, error) { return floatBinop(w, v, func(a, b float64) float64 { return a - b }) }
func floatMul(v, w any) (any, error)  { return floatBinop(v, w, func(a, b float64) float64 { return a * b }) }
func floatRMul(v, w any) (any, error) { return floatBinop(w, v, func(a, b float64) float64 { return a * b }) }

func floatCompare(v, w any, keep func(a, b float64) bool) (any, error) {
	a, ok := asFloat(v)
	if !ok {
		return nil, errNotImplemented
	}
	b, ok := asFloat(w)
	if !ok {
		return nil, errNotImplemented
	}
	return keep(a, b), nil
}

func floatEq(v, w any) (any, error) { return floatCompare(v, w, func(a, b float64) bool { return a == b }) }
func floatNe(v, w any) (any, error) { return floatCompare(v, w, func(a, b float64) bool { return a != b }) }
func floatLt(v, w any) (any, error) { return floatCompare(v, w, func(a, b float64) bool { return a < b }) }
func floatLe(v, w any) (any, error) { return floatCompare(v, w, func(a, b float64) bool { return a <= b }) }
func floatGt(v, w any) (any, error) { return floatCompare(v, w, func(a, b float64) bool { return a > b }) }
func floatGe(v, w any) (any, error) { return floatCompare(v, w, func(a, b float64) bool { return a >= b }) }

func floatNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if len(kwargs) > 0 {
		return nil, typeErrorf("float() takes no keyword arguments")
	}
	switch len(args) {
	case 0:
		return float64(0), nil
	case 1:
		if f, ok := asFloat(args[0]); ok {
			return f, nil
		}
		if s, ok := args[0].(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, typeErrorf("could not convert string to float: %s", pyQuote(s))
			}
			return f, nil
		}
		return nil, typeErrorf("float() argument must be a string or a number, not '%s'",
			TypeOf(args[0]).Name())
	default:
		return nil, typeErrorf("float() takes at most 1 argument (%d given)", len(args))
	}
}

// ---------------------------------------------------------------------
// NoneType

func noneRepr(self any) (any, error) { return "None", nil }

func noneBool(self any) (bool, error) { return false, nil }

// ---------------------------------------------------------------------
// BaseException

// exceptionValue is the crafted implementation of BaseException and, via
// subclassing, of every exception type.
type exceptionValue struct {
	Object
	args Args
}

func exceptionNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if len(kwargs) > 0 {
		return nil, typeErrorf("%s() takes no keyword arguments", t.name)
	}
	return &exceptionValue{
		Object: Object{typ: t, dict: NewAttrDict()},
		args:   append(Args{}, args...),
	}, nil
}

func exceptionRepr(self any) (any, error) {
	e := self.(*exceptionValue)
	parts := make([]string, len(e.args))
	for i, a := range e.args {
		r, err := Repr(a)
		if err != nil {
			return nil, err
		}
		parts[i] = r
	}
	return fmt.Sprintf("%s(%s)", TypeOf(e).Name(), strings.Join(parts, ", ")), nil
}

func exceptionStr(self any) (any, error) {
	e := self.(*exceptionValue)
	if len(e.args) == 1 {
		return Str(e.args[0])
	}
	return exceptionRepr(self)
}

func exceptionArgsGetter(self any) (any, error) {
	e := self.(*exceptionValue)
	return []any(append(Args{}, e.args...)), nil
}

// ---------------------------------------------------------------------
// tuple
//
// Go []any is the canonical tuple representation; MRO and bases lists and
// exception args circulate as tuples.

func tupleRepr(self any) (any, error) {
	items := self.([]any)
	parts := make([]string, len(items))
	for i, item := range items {
		r, err := Repr(item)
		if err != nil {
			return nil, err
		}
		parts[i] = r
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)", nil
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func tupleLen(self any) (int, error) { return len(self.([]any)), nil }

func tupleBool(self any) (bool, error) { return len(self.([]any)) != 0, nil }

func tupleContains(v, w any) (bool, error) {
	for _, item := range v.([]any) {
		eq, err := richEq(item, w)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

func tupleGetItem(v, w any) (any, error) {
	items := v.([]any)
	i, ok := asInt64(w)
	if !ok {
		return nil, typeErrorf("tuple indices must be integers, not '%s'", TypeOf(w).Name())
	}
	if i < 0 {
		i += int64(len(items))
	}
	if i < 0 || i >= int64(len(items)) {
		return nil, typeErrorf("tuple index out of range")
	}
	return items[i], nil
}

// ---------------------------------------------------------------------
// mappingproxy
//
// The read-only view handed out for type dictionaries.

func proxyRepr(self any) (any, error) {
	d := self.(*AttrDict)
	var b strings.Builder
	b.WriteString("mappingproxy({")
	first := true
	var walkErr error
	d.Range(func(k string, v any) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		r, err := Repr(v)
		if err != nil {
			walkErr = err
			return false
		}
		b.WriteString(pyQuote(k))
		b.WriteString(": ")
		b.WriteString(r)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	b.WriteString("})")
	return b.String(), nil
}

func proxyLen(self any) (int, error) { return self.(*AttrDict).Len(), nil }

func proxyContains(v, w any) (bool, error) {
	k, ok := w.(string)
	if !ok {
		return false, nil
	}
	_, found := v.(*AttrDict).Get(k)
	return found, nil
}

func proxyGetItem(v, w any) (any, error) {
	k, ok := w.(string)
	if !ok {
		return nil, typeErrorf("keys of this mapping are strings, not '%s'", TypeOf(w).Name())
	}
	val, found := v.(*AttrDict).Get(k)
	if !found {
		return nil, typeErrorf("no entry for key %s", pyQuote(k))
	}
	return val, nil
}
