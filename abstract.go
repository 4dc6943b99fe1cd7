// abstract.go: the public dispatch surface
//
// These functions are what an interpreter layer calls. Each resolves the
// operand's type, invokes the relevant slot handle, and converts the
// empty-slot signal into the Python-level error the operation prescribes.
// ErrEmptySlot and errNotImplemented never escape this file.
package pyrite

import (
	"errors"
	"fmt"
	"reflect"
)

// GetAttr implements o.name. A failing __getattribute__ falls back to
// __getattr__ only when the type defines one.
func GetAttr(o any, name string) (any, error) {
	t := TypeOf(o)
	v, err := t.handles().GetAttribute(o, name)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrEmptySlot) {
		return nil, noAttributeError(o, name)
	}
	var attrErr *AttributeError
	if errors.As(err, &attrErr) && SlotGetAttr.isDefinedFor(&t.Operations) {
		return t.handles().GetAttr(o, name)
	}
	return nil, err
}

// SetAttr implements o.name = value.
func SetAttr(o any, name string, value any) error {
	t := TypeOf(o)
	err := t.handles().SetAttr(o, name, value)
	if errors.Is(err, ErrEmptySlot) {
		return typeErrorf("'%s' object does not support attribute assignment", t.name)
	}
	return err
}

// DelAttr implements del o.name.
func DelAttr(o any, name string) error {
	t := TypeOf(o)
	err := t.handles().DelAttr(o, name)
	if errors.Is(err, ErrEmptySlot) {
		return typeErrorf("'%s' object does not support attribute deletion", t.name)
	}
	return err
}

// Call invokes a callable: a type object (construction or enquiry), a
// bound method, a descriptor, anything whose type fills __call__.
func Call(callable any, args Args, kwargs Kwargs) (any, error) {
	t := TypeOf(callable)
	v, err := t.handles().Call(callable, args, kwargs)
	if errors.Is(err, ErrEmptySlot) {
		return nil, typeErrorf("'%s' object is not callable", t.name)
	}
	return v, err
}

// CallMethod resolves o.name and calls it.
func CallMethod(o any, name string, args ...any) (any, error) {
	m, err := GetAttr(o, name)
	if err != nil {
		return nil, err
	}
	return Call(m, args, nil)
}

// Repr returns the repr string of o.
func Repr(o any) (string, error) {
	t := TypeOf(o)
	v, err := t.handles().Repr(o)
	if errors.Is(err, ErrEmptySlot) {
		return fmt.Sprintf("<%s object>", t.name), nil
	}
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeErrorf("__repr__ returned non-string (type %s)", TypeOf(v).Name())
	}
	return s, nil
}

// Str returns the str() of o, falling back to the repr.
func Str(o any) (string, error) {
	t := TypeOf(o)
	v, err := t.handles().Str(o)
	if errors.Is(err, ErrEmptySlot) {
		return Repr(o)
	}
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeErrorf("__str__ returned non-string (type %s)", TypeOf(v).Name())
	}
	return s, nil
}

// IsTrue decides the truth of o: __bool__, then __len__, then true.
func IsTrue(o any) (bool, error) {
	t := TypeOf(o)
	b, err := t.handles().Bool(o)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrEmptySlot) {
		return false, err
	}
	n, err := t.handles().Len(o)
	if err == nil {
		return n != 0, nil
	}
	if !errors.Is(err, ErrEmptySlot) {
		return false, err
	}
	return true, nil
}

// Len implements len(o).
func Len(o any) (int, error) {
	t := TypeOf(o)
	n, err := t.handles().Len(o)
	if errors.Is(err, ErrEmptySlot) {
		return 0, typeErrorf("object of type '%s' has no len()", t.name)
	}
	return n, err
}

// Hash implements hash(o).
func Hash(o any) (int, error) {
	t := TypeOf(o)
	n, err := t.handles().Hash(o)
	if errors.Is(err, ErrEmptySlot) {
		return 0, typeErrorf("unhashable type: '%s'", t.name)
	}
	return n, err
}

// Index converts o to an integer through __index__.
func Index(o any) (any, error) {
	t := TypeOf(o)
	v, err := t.handles().Index(o)
	if errors.Is(err, ErrEmptySlot) {
		return nil, typeErrorf("'%s' object cannot be interpreted as an integer", t.name)
	}
	return v, err
}

func unaryOp(o any, s Slot, symbol string) (any, error) {
	t := TypeOf(o)
	h := s.fieldValue(t.handles()).Interface().(unaryFunc)
	v, err := h(o)
	if errors.Is(err, ErrEmptySlot) {
		return nil, typeErrorf("bad operand type for unary %s: '%s'", symbol, t.name)
	}
	return v, err
}

func Neg(o any) (any, error)    { return unaryOp(o, SlotNeg, "-") }
func Pos(o any) (any, error)    { return unaryOp(o, SlotPos, "+") }
func Abs(o any) (any, error)    { return unaryOp(o, SlotAbs, "abs()") }
func Invert(o any) (any, error) { return unaryOp(o, SlotInvert, "~") }

// binaryOp dispatches v ⊛ w over the slot and its reflected partner. The
// reflected handle receives the right operand as self. A subtype on the
// right gets the first try, so it can refine the ancestor's behaviour.
func binaryOp(v, w any, s Slot, symbol string) (any, error) {
	vt, wt := TypeOf(v), TypeOf(w)
	alt := s.alternate()

	left := func() (any, error) {
		h := s.fieldValue(vt.handles()).Interface().(binaryFunc)
		return h(v, w)
	}
	right := func() (any, error) {
		h := alt.fieldValue(wt.handles()).Interface().(binaryFunc)
		return h(w, v)
	}

	tryRightFirst := alt != noAlt && wt != vt && wt.IsSubTypeOf(vt)
	order := []func() (any, error){left}
	if alt != noAlt && wt != vt {
		if tryRightFirst {
			order = []func() (any, error){right, left}
		} else {
			order = []func() (any, error){left, right}
		}
	}
	for _, f := range order {
		res, err := f()
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrEmptySlot) && !errors.Is(err, errNotImplemented) {
			return nil, err
		}
	}
	return nil, typeErrorf("unsupported operand type(s) for %s: '%s' and '%s'",
		symbol, vt.name, wt.name)
}

func Add(v, w any) (any, error) { return binaryOp(v, w, SlotAdd, "+") }
func Sub(v, w any) (any, error) { return binaryOp(v, w, SlotSub, "-") }
func Mul(v, w any) (any, error) { return binaryOp(v, w, SlotMul, "*") }

// compareOp dispatches one of the rich comparisons without a reflected
// partner swap (the six comparison slots have no r-forms here; foreign
// operands answer errNotImplemented from both sides).
func compareOp(v, w any, s Slot, symbol string) (any, error) {
	vt := TypeOf(v)
	h := s.fieldValue(vt.handles()).Interface().(binaryFunc)
	res, err := h(v, w)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, ErrEmptySlot) || errors.Is(err, errNotImplemented) {
		return nil, typeErrorf("'%s' not supported between instances of '%s' and '%s'",
			symbol, vt.name, TypeOf(w).name)
	}
	return nil, err
}

func Lt(v, w any) (any, error) { return compareOp(v, w, SlotLt, "<") }
func Le(v, w any) (any, error) { return compareOp(v, w, SlotLe, "<=") }
func Gt(v, w any) (any, error) { return compareOp(v, w, SlotGt, ">") }
func Ge(v, w any) (any, error) { return compareOp(v, w, SlotGe, ">=") }

// Eq implements v == w, defaulting to identity the way Python does.
func Eq(v, w any) (any, error) {
	eq, err := richEq(v, w)
	if err != nil {
		return nil, err
	}
	return eq, nil
}

func richEq(v, w any) (bool, error) {
	vt := TypeOf(v)
	h := SlotEq.fieldValue(vt.handles()).Interface().(binaryFunc)
	res, err := h(v, w)
	if err == nil {
		if b, ok := res.(bool); ok {
			return b, nil
		}
		return IsTrue(res)
	}
	if !errors.Is(err, ErrEmptySlot) && !errors.Is(err, errNotImplemented) {
		return false, err
	}
	if vc := reflect.TypeOf(v); vc != nil && vc.Comparable() {
		if wc := reflect.TypeOf(w); wc != nil && wc.Comparable() {
			return v == w, nil
		}
	}
	return false, nil
}

// Contains implements `item in container`.
func Contains(container, item any) (bool, error) {
	t := TypeOf(container)
	b, err := t.handles().Contains(container, item)
	if errors.Is(err, ErrEmptySlot) {
		return false, typeErrorf("argument of type '%s' is not iterable", t.name)
	}
	return b, err
}

// GetItem implements o[key].
func GetItem(o, key any) (any, error) {
	t := TypeOf(o)
	v, err := t.handles().GetItem(o, key)
	if errors.Is(err, ErrEmptySlot) {
		return nil, typeErrorf("'%s' object is not subscriptable", t.name)
	}
	return v, err
}

// SetItem implements o[key] = value.
func SetItem(o, key, value any) error {
	t := TypeOf(o)
	err := t.handles().SetItem(o, key, value)
	if errors.Is(err, ErrEmptySlot) {
		return typeErrorf("'%s' object does not support item assignment", t.name)
	}
	return err
}

// DelItem implements del o[key].
func DelItem(o, key any) error {
	t := TypeOf(o)
	err := t.handles().DelItem(o, key)
	if errors.Is(err, ErrEmptySlot) {
		return typeErrorf("'%s' object does not support item deletion", t.name)
	}
	return err
}

// IsInstance reports whether o is an instance of t or of a subtype.
func IsInstance(o any, t *Type) bool {
	return TypeOf(o).IsSubTypeOf(t)
}

// IsSubclass reports whether a is b or a subtype of b.
func IsSubclass(a, b *Type) bool {
	return a.IsSubTypeOf(b)
}
