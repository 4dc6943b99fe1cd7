package pyrite

import (
	"testing"
)

func Test_Attrs_DataDescriptorBeatsInstanceDict(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 10)

	// Plant a shadowing entry directly in the instance dictionary; the
	// member descriptor must still win.
	v.dict.Set("count", int64(999))
	if got := mustGet(t, v, "count"); got != int64(10) {
		t.Fatalf("count: member must beat instance dict, got %v", got)
	}

	// Writes go through the descriptor too, not into the dictionary.
	mustSet(t, v, "count", int64(11))
	if v.Count != 11 {
		t.Fatalf("count field: want 11, got %d", v.Count)
	}
	if shadow, _ := v.dict.Get("count"); shadow != int64(999) {
		t.Fatalf("instance dict entry should be untouched, got %v", shadow)
	}
}

func Test_Attrs_InstanceDictBeatsNonDataDescriptor(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 1)

	// bump is a non-data descriptor; an instance entry shadows it.
	mustSet(t, v, "shade", int64(1)) // plain write lands in the dict
	v.dict.Set("bump", "shadowed")
	if got := mustGet(t, v, "bump"); got != "shadowed" {
		t.Fatalf("instance dict must beat non-data descriptor, got %v", got)
	}

	if err := DelAttr(v, "bump"); err != nil {
		t.Fatal(err)
	}
	if _, ok := mustGet(t, v, "bump").(*boundMethod); !ok {
		t.Fatal("descriptor should reappear after the shadow is deleted")
	}
}

func Test_Attrs_PlainWritesLandInInstanceDict(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 0)

	mustSet(t, v, "color", "red")
	if got := mustGet(t, v, "color"); got != "red" {
		t.Fatalf("color: got %v", got)
	}
	if err := DelAttr(v, "color"); err != nil {
		t.Fatal(err)
	}
	_, err := GetAttr(v, "color")
	wantAttrError(t, err, "'vec' object has no attribute 'color'")
	wantAttrError(t, DelAttr(v, "color"), "has no attribute")
}

func Test_Attrs_FixedLayoutValuesHaveNoDict(t *testing.T) {
	ensureTypes()
	wantAttrError(t, SetAttr(int64(3), "x", int64(1)), "has no attribute 'x'")
	// A non-data descriptor exists for the name but there is nowhere to
	// write: the attribute is effectively read-only.
	wantAttrError(t, SetAttr("s", "__contains__", None), "read-only")
}

func Test_Attrs_ClassGetter(t *testing.T) {
	fixtures(t)
	v := newVec(t, vecType, 0)

	if got := mustGet(t, v, "__class__"); got != vecType {
		t.Fatalf("__class__: got %v", got)
	}
	if got := mustGet(t, int64(5), "__class__"); got != IntType {
		t.Fatalf("int __class__: got %v", got)
	}
	if got := mustGet(t, "x", "__class__"); got != StrType {
		t.Fatalf("str __class__: got %v", got)
	}
	// __class__ has no setter.
	wantAttrError(t, SetAttr(v, "__class__", IntType), "read-only")
}

func Test_Attrs_SubclassSharesDescriptorsByIdentity(t *testing.T) {
	fixtures(t)

	da, _ := vecType.Lookup("count")
	db, _ := subVecType.Lookup("count")
	if da != db {
		t.Fatal("subclass lookup must find the identical descriptor object")
	}

	na, _ := vecType.Lookup("__neg__")
	nb, _ := subVecType.Lookup("__neg__")
	if na != nb {
		t.Fatal("special method descriptor must be shared by identity")
	}
}

func Test_Attrs_EndToEnd_SubclassBehaviour(t *testing.T) {
	fixtures(t)

	a := newVec(t, vecType, 4)
	b := newVec(t, subVecType, 9)

	if TypeOf(b) != subVecType {
		t.Fatalf("b's type: got %v", TypeOf(b))
	}

	// Members and specials work identically through the subclass.
	if got := mustGet(t, b, "count"); got != int64(9) {
		t.Fatalf("b.count: got %v", got)
	}
	mustSet(t, b, "count", int64(12))
	got, err := Neg(b)
	if err != nil || got != int64(-12) {
		t.Fatalf("-b: got (%v, %v)", got, err)
	}
	if got, _ := Neg(a); got != int64(-4) {
		t.Fatalf("-a: got %v", got)
	}

	// Type enquiry distinguishes the two.
	if ty, _ := Call(TypeType, Args{b}, nil); ty != subVecType {
		t.Fatalf("type(b): got %v", ty)
	}

	// The subclass can refine a special method without touching vec.
	mustSet(t, subVecType, "__neg__", unaryFunc(func(self any) (any, error) {
		return self.(*vecImpl).Count * -100, nil
	}))
	if got, _ := Neg(b); got != int64(-1200) {
		t.Fatalf("-b after refinement: got %v", got)
	}
	if got, _ := Neg(a); got != int64(-4) {
		t.Fatalf("-a must be unaffected, got %v", got)
	}
	if err := DelAttr(subVecType, "__neg__"); err != nil {
		t.Fatal(err)
	}
	if got, _ := Neg(b); got != int64(-12) {
		t.Fatalf("-b after restore: got %v", got)
	}
}

func Test_Attrs_GetAttrFallback(t *testing.T) {
	ensureTypes()

	ns := NewAttrDict()
	ns.Set("__getattr__", getattrFunc(func(self any, name string) (any, error) {
		return "fallback:" + name, nil
	}))
	c, err := NewClass("withfallback", nil, ns)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := Call(c, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Present attributes bypass the fallback.
	mustSet(t, inst, "real", int64(1))
	if got := mustGet(t, inst, "real"); got != int64(1) {
		t.Fatalf("real: got %v", got)
	}
	// Missing ones reach __getattr__.
	if got := mustGet(t, inst, "ghost"); got != "fallback:ghost" {
		t.Fatalf("ghost: got %v", got)
	}
}
