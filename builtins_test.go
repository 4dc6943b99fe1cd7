package pyrite

import (
	"math/big"
	"testing"
)

func Test_Builtins_TypeOfRepresentations(t *testing.T) {
	ensureTypes()

	cases := []struct {
		value any
		want  *Type
	}{
		{int64(1), IntType},
		{big.NewInt(1).Lsh(big.NewInt(1), 80), IntType},
		{true, BoolType},
		{"s", StrType},
		{1.5, FloatType},
		{None, NoneType},
		{[]any{int64(1)}, TupleType},
	}
	for _, c := range cases {
		if got := TypeOf(c.value); got != c.want {
			t.Fatalf("TypeOf(%#v): want %v, got %v", c.value, c.want, got)
		}
	}
}

func Test_Builtins_BoolIsAnInt(t *testing.T) {
	ensureTypes()

	if !BoolType.IsSubTypeOf(IntType) {
		t.Fatal("bool must subclass int")
	}
	// Inherited arithmetic accepts bool as self.
	got, err := Add(true, int64(2))
	if err != nil || got != int64(3) {
		t.Fatalf("True + 2: got (%v, %v)", got, err)
	}
	got, err = Neg(true)
	if err != nil || got != int64(-1) {
		t.Fatalf("-True: got (%v, %v)", got, err)
	}
	// But bool keeps its own repr.
	if got := mustRepr(t, true); got != "True" {
		t.Fatalf("repr(True): got %q", got)
	}
	if got := mustRepr(t, int64(1)); got != "1" {
		t.Fatalf("repr(1): got %q", got)
	}
}

func Test_Builtins_IntArithmeticAndPromotion(t *testing.T) {
	ensureTypes()

	got, err := Add(int64(2), int64(3))
	if err != nil || got != int64(5) {
		t.Fatalf("2 + 3: got (%v, %v)", got, err)
	}

	// Overflow promotes to the big representation.
	const maxInt64 = int64(^uint64(0) >> 1)
	big1, err := Add(maxInt64, int64(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := big1.(*big.Int); !ok {
		t.Fatalf("overflowing add should yield *big.Int, got %T", big1)
	}
	if got := mustRepr(t, big1); got != "9223372036854775808" {
		t.Fatalf("repr of promoted int: got %q", got)
	}

	// And demotes back when the result fits.
	back, err := Sub(big1, int64(1))
	if err != nil || back != maxInt64 {
		t.Fatalf("demotion: got (%v, %v)", back, err)
	}

	if got, _ := Mul(int64(-4), int64(6)); got != int64(-24) {
		t.Fatalf("-4 * 6: got %v", got)
	}
	if got, _ := Abs(int64(-9)); got != int64(9) {
		t.Fatalf("abs(-9): got %v", got)
	}
}

func Test_Builtins_ReflectedOperands(t *testing.T) {
	ensureTypes()

	// int.__add__ declines a float; float.__radd__ takes over.
	got, err := Add(int64(1), 2.5)
	if err != nil || got != 3.5 {
		t.Fatalf("1 + 2.5: got (%v, %v)", got, err)
	}
	got, err = Sub(2.5, int64(1))
	if err != nil || got != 1.5 {
		t.Fatalf("2.5 - 1: got (%v, %v)", got, err)
	}
	got, err = Sub(int64(4), 0.5)
	if err != nil || got != 3.5 {
		t.Fatalf("4 - 0.5: got (%v, %v)", got, err)
	}

	// Neither side knows the other: diagnostic names both types.
	_, err = Add(int64(1), "x")
	wantTypeError(t, err, "unsupported operand type(s) for +: 'int' and 'str'")
	_, err = Add("x", int64(1))
	wantTypeError(t, err, "unsupported operand type(s) for +: 'str' and 'int'")

	// The reflected handles route the foreign operand through the first
	// conversion; it must decline there, not default to zero.
	_, err = Add("x", 2.5)
	wantTypeError(t, err, "unsupported operand type(s) for +: 'str' and 'float'")
	_, err = Mul(None, int64(3))
	wantTypeError(t, err, "unsupported operand type(s) for *: 'NoneType' and 'int'")
}

func Test_Builtins_UnaryOnWrongType(t *testing.T) {
	ensureTypes()
	_, err := Neg("x")
	wantTypeError(t, err, "bad operand type for unary -: 'str'")
	_, err = Invert(1.5)
	wantTypeError(t, err, "bad operand type for unary ~: 'float'")
}

func Test_Builtins_StrBehaviour(t *testing.T) {
	ensureTypes()

	if got := mustRepr(t, "don't"); got != `"don't"` {
		t.Fatalf("repr: got %s", got)
	}
	if got := mustRepr(t, "a\nb"); got != `'a\nb'` {
		t.Fatalf("repr: got %s", got)
	}
	if got, _ := Add("ab", "cd"); got != "abcd" {
		t.Fatalf("concat: got %v", got)
	}
	if got, _ := Mul("ab", int64(3)); got != "ababab" {
		t.Fatalf("repeat: got %v", got)
	}
	if got, _ := Mul("ab", int64(-1)); got != "" {
		t.Fatalf("negative repeat: got %v", got)
	}
	if n, _ := Len("héllo"); n != 5 {
		t.Fatalf("len: got %d", n)
	}
	if ok, _ := Contains("hello", "ell"); !ok {
		t.Fatal("contains failed")
	}
	if got, _ := GetItem("hello", int64(-1)); got != "o" {
		t.Fatalf("negative index: got %v", got)
	}
	_, err := GetItem("hi", int64(7))
	wantTypeError(t, err, "out of range")
}

func Test_Builtins_Constructors(t *testing.T) {
	ensureTypes()

	if v, _ := Call(StrType, Args{int64(42)}, nil); v != "42" {
		t.Fatalf("str(42): got %v", v)
	}
	if v, _ := Call(IntType, Args{"123"}, nil); v != int64(123) {
		t.Fatalf("int(\"123\"): got %v", v)
	}
	_, err := Call(IntType, Args{"12x"}, nil)
	wantTypeError(t, err, "invalid literal for int()")
	if v, _ := Call(BoolType, Args{""}, nil); v != false {
		t.Fatalf("bool(\"\"): got %v", v)
	}
	if v, _ := Call(BoolType, Args{int64(7)}, nil); v != true {
		t.Fatalf("bool(7): got %v", v)
	}
	if v, _ := Call(FloatType, Args{"2.5"}, nil); v != 2.5 {
		t.Fatalf("float(\"2.5\"): got %v", v)
	}
	_, err = Call(ObjectType, Args{int64(1)}, nil)
	wantTypeError(t, err, "object() takes no arguments")
}

func Test_Builtins_TruthAndNone(t *testing.T) {
	ensureTypes()

	truthy := []any{int64(1), "x", true, 0.5, []any{None}}
	falsy := []any{int64(0), "", false, 0.0, None, []any{}}
	for _, v := range truthy {
		if ok, err := IsTrue(v); err != nil || !ok {
			t.Fatalf("IsTrue(%#v): got (%v, %v)", v, ok, err)
		}
	}
	for _, v := range falsy {
		if ok, err := IsTrue(v); err != nil || ok {
			t.Fatalf("IsTrue(%#v): got (%v, %v)", v, ok, err)
		}
	}
	if got := mustRepr(t, None); got != "None" {
		t.Fatalf("repr(None): got %q", got)
	}
	// Objects with neither __bool__ nor __len__ are true.
	if ok, _ := IsTrue(NewObject(ObjectType)); !ok {
		t.Fatal("a plain object must be true")
	}
}

func Test_Builtins_FloatRepr(t *testing.T) {
	ensureTypes()
	if got := mustRepr(t, 1.0); got != "1.0" {
		t.Fatalf("repr(1.0): got %q", got)
	}
	if got := mustRepr(t, 2.5); got != "2.5" {
		t.Fatalf("repr(2.5): got %q", got)
	}
}

func Test_Builtins_TupleAndProxy(t *testing.T) {
	fixtures(t)

	tup := []any{int64(1), "two", None}
	if got := mustRepr(t, tup); got != `(1, 'two', None)` {
		t.Fatalf("tuple repr: got %q", got)
	}
	if got := mustRepr(t, []any{int64(1)}); got != "(1,)" {
		t.Fatalf("singleton tuple repr: got %q", got)
	}
	if ok, _ := Contains(tup, "two"); !ok {
		t.Fatal("tuple contains failed")
	}
	if got, _ := GetItem(tup, int64(-1)); got != None {
		t.Fatalf("tuple index: got %v", got)
	}

	proxy := mustGet(t, vecType, "__dict__").(*AttrDict)
	if ok, _ := Contains(proxy, "bump"); !ok {
		t.Fatal("proxy contains failed")
	}
	if _, err := GetItem(proxy, "ghost"); err == nil {
		t.Fatal("proxy getitem of a missing key should fail")
	}
	if n, _ := Len(proxy); n == 0 {
		t.Fatal("proxy len should not be zero")
	}
}

func Test_Builtins_Exceptions(t *testing.T) {
	ensureTypes()

	e, err := Call(BaseExceptionType, Args{"boom"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustRepr(t, e); got != "BaseException('boom')" {
		t.Fatalf("repr: got %q", got)
	}
	s, err := Str(e)
	if err != nil || s != "boom" {
		t.Fatalf("str: got (%q, %v)", s, err)
	}
	args := mustGet(t, e, "args").([]any)
	if len(args) != 1 || args[0] != "boom" {
		t.Fatalf("args: got %v", args)
	}

	// Exception subclasses made at runtime construct through the same
	// implementation class.
	valueError, err := NewClass("ValueError", []*Type{BaseExceptionType}, nil)
	if err != nil {
		t.Fatal(err)
	}
	e2, err := Call(valueError, Args{"bad value"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustRepr(t, e2); got != "ValueError('bad value')" {
		t.Fatalf("subclass repr: got %q", got)
	}
	if !IsInstance(e2, BaseExceptionType) {
		t.Fatal("subclass instance must be an instance of the base")
	}
}

func Test_Builtins_HashAndComparisons(t *testing.T) {
	ensureTypes()

	h1, _ := Hash("same")
	h2, _ := Hash("same")
	if h1 != h2 {
		t.Fatal("str hash not stable")
	}
	if h, _ := Hash(int64(42)); h != 42 {
		t.Fatalf("int hash: got %d", h)
	}
	_, err := Hash([]any{})
	wantTypeError(t, err, "unhashable")

	if got, _ := Lt(int64(2), int64(3)); got != true {
		t.Fatal("2 < 3 failed")
	}
	if got, _ := Ge("b", "a"); got != true {
		t.Fatal("\"b\" >= \"a\" failed")
	}
	_, err = Lt(int64(2), "x")
	wantTypeError(t, err, "not supported between instances of 'int' and 'str'")

	if eq, _ := richEq(int64(3), true); eq {
		t.Fatal("3 == True must be false")
	}
	if eq, _ := richEq(int64(1), true); !eq {
		t.Fatal("1 == True must hold")
	}
}
