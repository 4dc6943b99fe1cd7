package pyrite

import (
	"testing"
)

func Test_Members_ReadonlyRoundTrip(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 3)

	if got := mustGet(t, v, "serial"); got != int64(7) {
		t.Fatalf("serial: want 7, got %v", got)
	}
	wantAttrError(t, SetAttr(v, "serial", int64(9)), "read-only")
	wantAttrError(t, DelAttr(v, "serial"), "read-only")

	// The rejected write must not have touched the field.
	if got := mustGet(t, v, "serial"); got != int64(7) {
		t.Fatalf("serial after rejected set: want 7, got %v", got)
	}
}

func Test_Members_OptionalDeleteSemantics(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 0)

	// Optional reference member: unset reads as missing.
	_, err := GetAttr(v, "label")
	wantAttrError(t, err, "has no attribute 'label'")

	mustSet(t, v, "label", "42")
	if got := mustGet(t, v, "label"); got != "42" {
		t.Fatalf("label: want \"42\", got %v", got)
	}
	if err := DelAttr(v, "label"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	_, err = GetAttr(v, "label")
	wantAttrError(t, err, "has no attribute 'label'")
	// Not idempotent: a second delete reports the attribute missing.
	wantAttrError(t, DelAttr(v, "label"), "has no attribute 'label'")
}

func Test_Members_NonOptionalDeleteSemantics(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 0)

	// Unset non-optional reference reads as None.
	if got := mustGet(t, v, "note"); got != None {
		t.Fatalf("unset note: want None, got %v", got)
	}
	mustSet(t, v, "note", "hello")
	if got := mustGet(t, v, "note"); got != "hello" {
		t.Fatalf("note: got %v", got)
	}
	if err := DelAttr(v, "note"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := mustGet(t, v, "note"); got != None {
		t.Fatalf("note after delete: want None, got %v", got)
	}
	// Deleting again succeeds silently.
	if err := DelAttr(v, "note"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	// Assigning None to a non-optional reference member deletes it.
	mustSet(t, v, "note", "x")
	mustSet(t, v, "note", None)
	if got := mustGet(t, v, "note"); got != None {
		t.Fatalf("note after None assignment: want None, got %v", got)
	}
}

func Test_Members_PrimitiveNotDeletable(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 5)
	wantTypeError(t, DelAttr(v, "count"), "cannot delete int attribute 'count'")
	// Still intact.
	if got := mustGet(t, v, "count"); got != int64(5) {
		t.Fatalf("count: got %v", got)
	}
}

func Test_Members_SetWrongValueType(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 0)
	wantTypeError(t, SetAttr(v, "count", "many"), "must be an integer")
	wantTypeError(t, SetAttr(v, "note", int64(3)), "must be a string")
}

func Test_Members_AcceptAlternateIntRepresentations(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 0)
	mustSet(t, v, "count", int64(11))
	if v.Count != 11 {
		t.Fatalf("count field: want 11, got %d", v.Count)
	}
	mustSet(t, v, "count", true)
	if v.Count != 1 {
		t.Fatalf("count field from bool: want 1, got %d", v.Count)
	}
}

func Test_Members_DescriptorAppliesOnlyWithinHierarchy(t *testing.T) {
	fixtures(t)
	d, ok := vecType.Lookup("count")
	if !ok {
		t.Fatal("no 'count' descriptor on vec")
	}
	md := d.(*memberDescr)

	_, err := memberDescrGetSlot(md, int64(3), IntType)
	wantTypeError(t, err, "doesn't apply to a 'int' object")

	// A subclass instance is inside the hierarchy.
	sv := newVec(t, subVecType, 21)
	got, err := memberDescrGetSlot(md, sv, subVecType)
	if err != nil || got != int64(21) {
		t.Fatalf("descriptor on subclass instance: got (%v, %v)", got, err)
	}
}

func Test_GetSet_MissingSetterMakesReadonly(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, -4)

	if got := mustGet(t, v, "magnitude"); got != int64(4) {
		t.Fatalf("magnitude: want 4, got %v", got)
	}
	wantAttrError(t, SetAttr(v, "magnitude", int64(1)), "read-only")
	wantAttrError(t, DelAttr(v, "magnitude"), "cannot delete")
}

func Test_Descr_Introspection(t *testing.T) {
	fixtures(t)
	d, _ := vecType.Lookup("count")

	if got := mustGet(t, d, "__name__"); got != "count" {
		t.Fatalf("__name__: got %v", got)
	}
	if got := mustGet(t, d, "__objclass__"); got != vecType {
		t.Fatalf("__objclass__: got %v", got)
	}
	if got := mustRepr(t, d); got != "<member 'count' of 'vec' objects>" {
		t.Fatalf("repr: got %q", got)
	}

	g, _ := vecType.Lookup("magnitude")
	if got := mustRepr(t, g); got != "<attribute 'magnitude' of 'vec' objects>" {
		t.Fatalf("get-set repr: got %q", got)
	}

	m, _ := vecType.Lookup("bump")
	if got := mustRepr(t, m); got != "<method 'bump' of 'vec' objects>" {
		t.Fatalf("method descriptor repr: got %q", got)
	}

	w, _ := ObjectType.Lookup("__repr__")
	if got := mustRepr(t, w); got != "<slot wrapper '__repr__' of 'object' objects>" {
		t.Fatalf("wrapper descriptor repr: got %q", got)
	}
}

func Test_WrapperDescr_CallForms(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 6)

	// Unbound: vec.__neg__(v).
	d := mustGet(t, vecType, "__neg__")
	got, err := Call(d, Args{v}, nil)
	if err != nil || got != int64(-6) {
		t.Fatalf("unbound wrapper call: got (%v, %v)", got, err)
	}
	_, err = Call(d, nil, nil)
	wantTypeError(t, err, "needs an argument")

	// Bound: v.__neg__().
	bound := mustGet(t, v, "__neg__")
	if _, ok := bound.(*methodWrapper); !ok {
		t.Fatalf("bound special method: want method-wrapper, got %T", bound)
	}
	got, err = Call(bound, nil, nil)
	if err != nil || got != int64(-6) {
		t.Fatalf("bound wrapper call: got (%v, %v)", got, err)
	}
	_, err = Call(bound, Args{int64(1)}, nil)
	wantTypeError(t, err, "takes exactly 0 argument")

	if got := mustGet(t, bound, "__self__"); got != v {
		t.Fatalf("__self__: got %v", got)
	}
}

func Test_MethodDescr_Binding(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 1)

	bound := mustGet(t, v, "bump")
	bm, ok := bound.(*boundMethod)
	if !ok {
		t.Fatalf("want bound method, got %T", bound)
	}
	if _, err := Call(bm, nil, nil); err != nil {
		t.Fatalf("bound call: %v", err)
	}
	if v.Count != 2 {
		t.Fatalf("count after bump: want 2, got %d", v.Count)
	}

	// Unbound form requires the instance as first argument.
	d := mustGet(t, vecType, "bump")
	if _, err := Call(d, Args{v}, nil); err != nil {
		t.Fatalf("unbound call: %v", err)
	}
	if v.Count != 3 {
		t.Fatalf("count after unbound bump: want 3, got %d", v.Count)
	}
	_, err := Call(d, Args{int64(0)}, nil)
	wantTypeError(t, err, "doesn't apply")
}
