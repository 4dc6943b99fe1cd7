package pyrite

import (
	"sync"
	"testing"
)

func Test_Type_MRO_SingleInheritancePrepends(t *testing.T) {
	fixtures(t)

	mro := subVecType.MRO()
	if len(mro) != 3 || mro[0] != subVecType || mro[1] != vecType || mro[2] != ObjectType {
		t.Fatalf("subvec MRO wrong: %v", mro)
	}
	if got := vecType.MRO(); len(got) != 2 || got[0] != vecType || got[1] != ObjectType {
		t.Fatalf("vec MRO wrong: %v", got)
	}
	if got := ObjectType.MRO(); len(got) != 1 || got[0] != ObjectType {
		t.Fatalf("object MRO wrong: %v", got)
	}

	if !subVecType.IsSubTypeOf(subVecType) || !subVecType.IsSubTypeOf(ObjectType) {
		t.Fatal("IsSubTypeOf broken along the MRO")
	}
	if ObjectType.IsSubTypeOf(vecType) {
		t.Fatal("object is not a subtype of vec")
	}
}

func Test_Type_MultipleBasesFault(t *testing.T) {
	fixtures(t)
	mustFault(t, "multiple inheritance", func() {
		_, _ = NewClass("broken", []*Type{vecType, StrType}, nil)
	})
}

func Test_Type_CallEnquiryVersusConstruction(t *testing.T) {
	ensureTypes()

	// One argument to type itself is the enquiry.
	got, err := Call(TypeType, Args{int64(5)}, nil)
	if err != nil || got != IntType {
		t.Fatalf("type(5): want int, got (%v, %v)", got, err)
	}
	if got, _ := Call(TypeType, Args{"s"}, nil); got != StrType {
		t.Fatalf("type(\"s\"): want str, got %v", got)
	}
	if got, _ := Call(TypeType, Args{None}, nil); got != NoneType {
		t.Fatalf("type(None): want NoneType, got %v", got)
	}

	// Three arguments create a class.
	v, err := Call(TypeType, Args{"C", []any{}, map[string]any{"answer": int64(42)}}, nil)
	if err != nil {
		t.Fatalf("type(name, bases, ns): %v", err)
	}
	c, ok := v.(*Type)
	if !ok || c.Name() != "C" || c.Base() != ObjectType {
		t.Fatalf("created class wrong: %#v", v)
	}
	inst, err := Call(c, nil, nil)
	if err != nil {
		t.Fatalf("C(): %v", err)
	}
	if TypeOf(inst) != c {
		t.Fatalf("instance type: want C, got %v", TypeOf(inst))
	}
	if got := mustGet(t, inst, "answer"); got != int64(42) {
		t.Fatalf("class attribute through instance: want 42, got %v", got)
	}

	// Wrong arity.
	_, err = Call(TypeType, Args{"C", []any{}}, nil)
	wantTypeError(t, err, "takes 1 or 3 arguments")
}

func Test_Type_GetAttribute_MetatypeDataDescrWins(t *testing.T) {
	ensureTypes()

	// A namespace entry shadowing __name__ must lose to the get-set
	// descriptor on the metatype.
	ns := NewAttrDict()
	ns.Set("__name__", "impostor")
	c, err := NewClass("honest", nil, ns)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, c, "__name__"); got != "honest" {
		t.Fatalf("__name__: want %q, got %v", "honest", got)
	}

	// The shadowed entry is still visible to a raw lookup.
	if v, ok := c.Lookup("__name__"); !ok || v != "impostor" {
		t.Fatalf("raw lookup should see the namespace entry, got %v", v)
	}
}

func Test_Type_GetAttribute_OwnDictBeforeMetatype(t *testing.T) {
	fixtures(t)

	// Class access to a method descriptor returns the descriptor itself.
	v := mustGet(t, vecType, "bump")
	if _, ok := v.(*methodDescr); !ok {
		t.Fatalf("vec.bump: want the method descriptor, got %T", v)
	}

	// Inherited through the class hierarchy, same object.
	if got := mustGet(t, subVecType, "bump"); got != v {
		t.Fatalf("subvec.bump: want identical descriptor, got %T", got)
	}

	// Metatype attributes still reachable when the type doesn't shadow.
	mro := mustGet(t, vecType, "__mro__")
	if items, ok := mro.([]any); !ok || len(items) != 2 {
		t.Fatalf("vec.__mro__: got %#v", mro)
	}
}

func Test_Type_GetAttribute_Missing(t *testing.T) {
	fixtures(t)
	_, err := GetAttr(vecType, "nope")
	wantAttrError(t, err, "type object 'vec' has no attribute 'nope'")
}

func Test_Type_SetAttr_ImmutableRejected(t *testing.T) {
	ensureTypes()
	err := SetAttr(IntType, "shiny", int64(1))
	wantTypeError(t, err, "cannot set attributes")
	err = DelAttr(StrType, "__repr__")
	wantTypeError(t, err, "cannot set attributes")
}

func Test_Type_SetAttr_MetatypeGetSetIsReadonly(t *testing.T) {
	ensureTypes()
	c, err := NewClass("anon", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantAttrError(t, SetAttr(c, "__name__", "other"), "read-only")
}

func Test_Type_DunderAssignmentRecomputesSlot(t *testing.T) {
	ensureTypes()
	c, err := NewClass("loud", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := Call(c, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustRepr(t, inst); got != "<loud object>" {
		t.Fatalf("default repr: got %q", got)
	}

	mustSet(t, c, "__repr__", unaryFunc(func(self any) (any, error) {
		return "LOUD", nil
	}))
	if got := mustRepr(t, inst); got != "LOUD" {
		t.Fatalf("repr after slot update: got %q", got)
	}

	// Deleting the entry must restore the inherited handle at once.
	if err := DelAttr(c, "__repr__"); err != nil {
		t.Fatal(err)
	}
	if got := mustRepr(t, inst); got != "<loud object>" {
		t.Fatalf("repr after slot restore: got %q", got)
	}
}

func Test_Type_ConcurrentDunderAssignmentAndDispatch(t *testing.T) {
	ensureTypes()
	c, err := NewClass("shifty", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := Call(c, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	loud := unaryFunc(func(self any) (any, error) { return "LOUD", nil })
	quiet := unaryFunc(func(self any) (any, error) { return "quiet", nil })

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h := loud
			if i%2 == 1 {
				h = quiet
			}
			if err := SetAttr(c, "__repr__", h); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			got, err := Repr(inst)
			if err != nil {
				t.Error(err)
				return
			}
			switch got {
			case "LOUD", "quiet", "<shifty object>":
			default:
				t.Errorf("repr observed torn state: %q", got)
				return
			}
		}
	}()
	wg.Wait()
}

func Test_Type_DelAttr_MissingName(t *testing.T) {
	ensureTypes()
	c, err := NewClass("bare", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantAttrError(t, DelAttr(c, "ghost"), "type object 'bare' has no attribute 'ghost'")
}

func Test_Type_ReprAndIntrospection(t *testing.T) {
	fixtures(t)
	if got := mustRepr(t, vecType); got != "<class 'vec'>" {
		t.Fatalf("repr of a type: got %q", got)
	}
	if got := mustGet(t, vecType, "__name__"); got != "vec" {
		t.Fatalf("__name__: got %v", got)
	}
	bases := mustGet(t, subVecType, "__bases__").([]any)
	if len(bases) != 1 || bases[0] != vecType {
		t.Fatalf("__bases__: got %v", bases)
	}
	dict := mustGet(t, vecType, "__dict__").(*AttrDict)
	if _, ok := dict.Get("bump"); !ok {
		t.Fatal("__dict__ snapshot misses 'bump'")
	}
}

func Test_Type_BaseTypeFlagEnforced(t *testing.T) {
	ensureTypes()
	_, err := NewClass("subbool", []*Type{BoolType}, nil)
	wantTypeError(t, err, "not an acceptable base type")
}

func Test_Type_OperandClasses(t *testing.T) {
	ensureTypes()
	classes := IntType.OperandClasses()
	if len(classes) < 3 {
		t.Fatalf("int operand classes too few: %v", classes)
	}
	if classes[0] != Class[int64]() {
		t.Fatalf("canonical class must come first, got %v", classes[0])
	}
	if IntType.IndexOfOperand(Class[*bigIntAlias]()) != -1 {
		t.Fatal("foreign class reported as operand")
	}
	if IntTypeHasOperand := IntType.IndexOfOperand(Class[bool]()); IntTypeHasOperand < 0 {
		t.Fatal("bool should be among int's operand classes")
	}
}

// bigIntAlias only exists to have a Go type no builtin deals in.
type bigIntAlias struct{ hi, lo uint64 }
