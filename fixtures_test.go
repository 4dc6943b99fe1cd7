package pyrite

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// vecImpl is the crafted implementation class used across the attribute
// tests: tagged members of each flavour plus an instance dictionary.
type vecImpl struct {
	Object
	Count  int64   `py:"count"`
	Serial int64   `py:"serial,readonly"`
	Label  *string `py:"label,optional"`
	Note   *string `py:"note"`
}

func vecNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	v := &vecImpl{Object: Object{typ: t, dict: NewAttrDict()}, Serial: 7}
	if len(args) > 0 {
		n, ok := asInt64(args[0])
		if !ok {
			return nil, typeErrorf("vec() argument must be an integer")
		}
		v.Count = n
	}
	return v, nil
}

func vecNeg(self any) (any, error) { return -self.(*vecImpl).Count, nil }

func vecMagnitude(self any) (any, error) {
	n := self.(*vecImpl).Count
	if n < 0 {
		n = -n
	}
	return n, nil
}

func vecBump(self any, args Args, kwargs Kwargs) (any, error) {
	self.(*vecImpl).Count++
	return None, nil
}

type vecTestMethods struct {
	Neg       unaryFunc  `py:"__neg__"`
	New       newFunc    `py:"__new__"`
	Magnitude GetterFunc `py:"magnitude,getter"`
	Bump      MethodFunc `py:"bump"`
}

var (
	fixtureOnce sync.Once
	vecType     *Type
	subVecType  *Type
)

// fixtures builds the vec type and a runtime-created subclass once for
// the whole test binary (implementation classes register globally).
func fixtures(t *testing.T) {
	t.Helper()
	fixtureOnce.Do(func() {
		vecType = FromSpec(NewSpec("vec", Class[vecImpl]()).
			Methods(vecTestMethods{
				Neg:       vecNeg,
				New:       vecNew,
				Magnitude: vecMagnitude,
				Bump:      vecBump,
			}))
		sub, err := NewClass("subvec", []*Type{vecType}, NewAttrDict())
		if err != nil {
			panic(err)
		}
		subVecType = sub
	})
}

func newVec(t *testing.T, typ *Type, count int64) *vecImpl {
	t.Helper()
	v, err := Call(typ, Args{count}, nil)
	if err != nil {
		t.Fatalf("cannot create %s instance: %v", typ.Name(), err)
	}
	return v.(*vecImpl)
}

func wantAttrError(t *testing.T, err error, sub string) {
	t.Helper()
	var ae *AttributeError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AttributeError containing %q, got %v", sub, err)
	}
	if !strings.Contains(ae.Msg, sub) {
		t.Fatalf("expected AttributeError containing %q, got %q", sub, ae.Msg)
	}
}

func wantTypeError(t *testing.T, err error, sub string) {
	t.Helper()
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected TypeError containing %q, got %v", sub, err)
	}
	if !strings.Contains(te.Msg, sub) {
		t.Fatalf("expected TypeError containing %q, got %q", sub, te.Msg)
	}
}

// mustFault runs fn expecting a construction-time fault.
func mustFault(t *testing.T, sub string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a construction fault containing %q, got none", sub)
		}
		ie, ok := r.(*InterpreterError)
		if !ok {
			t.Fatalf("expected *InterpreterError, got %#v", r)
		}
		if !strings.Contains(ie.Msg, sub) {
			t.Fatalf("expected fault containing %q, got %q", sub, ie.Msg)
		}
	}()
	fn()
}

func mustGet(t *testing.T, o any, name string) any {
	t.Helper()
	v, err := GetAttr(o, name)
	if err != nil {
		t.Fatalf("GetAttr(%s): %v", name, err)
	}
	return v
}

func mustSet(t *testing.T, o any, name string, value any) {
	t.Helper()
	if err := SetAttr(o, name, value); err != nil {
		t.Fatalf("SetAttr(%s): %v", name, err)
	}
}

func mustRepr(t *testing.T, o any) string {
	t.Helper()
	s, err := Repr(o)
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	return s
}
