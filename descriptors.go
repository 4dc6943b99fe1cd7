// descriptors.go: the descriptor protocol objects
//
// A descriptor is a named attribute-access strategy installed in a type's
// dictionary. Four kinds exist here:
//
//   - memberDescr   binds a struct field of the implementation class
//   - getSetDescr   binds a getter and optional setter/deleter
//   - wrapperDescr  binds one slot-table handle (a special method)
//   - methodDescr   binds a plain exposed method
//
// Whether a kind is a *data* descriptor is a property of its Python type
// (member_descriptor and getset_descriptor define __set__/__delete__,
// wrapper and method descriptors define only __get__), which is what the
// attribute-resolution precedence keys on.
//
// Every descriptor records the defining type (objclass) and refuses, with
// TypeError, to operate on an instance whose type is outside that
// hierarchy.
package pyrite

import (
	"fmt"
	"math/big"
	"reflect"
)

type descrBase struct {
	objclass *Type
	name     string
	doc      string
}

// descriptor is implemented by all descriptor kinds; the get-sets exposed
// on the descriptor types read through it.
type descriptor interface {
	descrName() string
	descrObjclass() *Type
	descrDoc() string
}

func (d *descrBase) descrName() string    { return d.name }
func (d *descrBase) descrObjclass() *Type { return d.objclass }
func (d *descrBase) descrDoc() string     { return d.doc }

// check verifies the descriptor applies to obj.
func (d *descrBase) check(obj any) error {
	t := TypeOf(obj)
	if !t.IsSubTypeOf(d.objclass) {
		return descriptorDoesNotApply(d.name, d.objclass, t)
	}
	return nil
}

// ---------------------------------------------------------------------
// Member descriptors

type memberKind int

const (
	memberInt memberKind = iota
	memberFloat
	memberBool
	memberString    // plain Go string field: primitive, not deletable
	memberStringRef // *string field: reference, nil when deleted
	memberObject    // any field: reference, nil when deleted
)

func (k memberKind) reference() bool {
	return k == memberStringRef || k == memberObject
}

func (k memberKind) String() string {
	switch k {
	case memberInt:
		return "int"
	case memberFloat:
		return "float"
	case memberBool:
		return "bool"
	case memberString, memberStringRef:
		return "string"
	default:
		return "object"
	}
}

// memberDescr gives Python-level access to a field of the implementation
// struct.
type memberDescr struct {
	descrBase
	field    []int // reflect field index path
	kind     memberKind
	readonly bool
	optional bool
}

// fieldValue locates the bound field within obj. The implementation class
// shape is guaranteed by the objclass check.
func (d *memberDescr) fieldValue(obj any) reflect.Value {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return rv.FieldByIndex(d.field)
}

func (d *memberDescr) get(obj any) (any, error) {
	fv := d.fieldValue(obj)
	switch d.kind {
	case memberInt:
		return fv.Int(), nil
	case memberFloat:
		return fv.Float(), nil
	case memberBool:
		return fv.Bool(), nil
	case memberString:
		return fv.String(), nil
	case memberStringRef:
		p := fv.Interface().(*string)
		if p == nil {
			if d.optional {
				return nil, noAttributeOnType(d.objclass, d.name)
			}
			return None, nil
		}
		return *p, nil
	default: // memberObject
		v := fv.Interface()
		if v == nil {
			if d.optional {
				return nil, noAttributeOnType(d.objclass, d.name)
			}
			return None, nil
		}
		return v, nil
	}
}

func (d *memberDescr) set(obj, value any) error {
	if d.readonly {
		return readonlyAttributeOnType(d.objclass, d.name)
	}
	fv := d.fieldValue(obj)
	switch d.kind {
	case memberInt:
		if z, ok := value.(*big.Int); ok && !z.IsInt64() {
			return typeErrorf("value too large for attribute '%s'", d.name)
		}
		// Any int representation is accepted, bool included.
		n, ok := asInt64(value)
		if !ok {
			return attrMustBe(d.name, "an integer", value)
		}
		fv.SetInt(n)
	case memberFloat:
		f, ok := asFloat(value)
		if !ok {
			return attrMustBe(d.name, "a number", value)
		}
		fv.SetFloat(f)
	case memberBool:
		v, ok := value.(bool)
		if !ok {
			return attrMustBe(d.name, "a bool", value)
		}
		fv.SetBool(v)
	case memberString:
		v, ok := value.(string)
		if !ok {
			return attrMustBe(d.name, "a string", value)
		}
		fv.SetString(v)
	case memberStringRef:
		if value == None && !d.optional {
			return d.delete(obj)
		}
		v, ok := value.(string)
		if !ok {
			return attrMustBe(d.name, "a string", value)
		}
		fv.Set(reflect.ValueOf(&v))
	default: // memberObject
		if value == None && !d.optional {
			return d.delete(obj)
		}
		fv.Set(reflect.ValueOf(&value).Elem())
	}
	return nil
}

func (d *memberDescr) delete(obj any) error {
	if d.readonly {
		return readonlyAttributeOnType(d.objclass, d.name)
	}
	if !d.kind.reference() {
		return typeErrorf("cannot delete %s attribute '%s'", d.kind, d.name)
	}
	fv := d.fieldValue(obj)
	if d.optional && fv.IsNil() {
		return noAttributeOnType(d.objclass, d.name)
	}
	fv.Set(reflect.Zero(fv.Type()))
	return nil
}

// Slot implementations for the member_descriptor type.

func memberDescrGetSlot(self, obj any, owner *Type) (any, error) {
	d := self.(*memberDescr)
	if obj == nil {
		return d, nil
	}
	if err := d.check(obj); err != nil {
		return nil, err
	}
	return d.get(obj)
}

func memberDescrSetSlot(self, obj, value any) error {
	d := self.(*memberDescr)
	if err := d.check(obj); err != nil {
		return err
	}
	return d.set(obj, value)
}

func memberDescrDeleteSlot(self, obj any) error {
	d := self.(*memberDescr)
	if err := d.check(obj); err != nil {
		return err
	}
	return d.delete(obj)
}

func memberDescrRepr(self any) (any, error) {
	d := self.(*memberDescr)
	return fmt.Sprintf("<member '%s' of '%s' objects>", d.name, d.objclass.name), nil
}

// ---------------------------------------------------------------------
// Get-set descriptors

// getSetDescr binds up to three functions discovered against one logical
// attribute name. The getter is always present; a missing setter makes
// the attribute read-only, a missing deleter makes it undeletable. Either
// way the descriptor is a data descriptor and outranks instance
// dictionaries.
type getSetDescr struct {
	descrBase
	get GetterFunc
	set SetterFunc
	del DeleterFunc
}

func getSetDescrGetSlot(self, obj any, owner *Type) (any, error) {
	d := self.(*getSetDescr)
	if obj == nil {
		return d, nil
	}
	if err := d.check(obj); err != nil {
		return nil, err
	}
	return d.get(obj)
}

func getSetDescrSetSlot(self, obj, value any) error {
	d := self.(*getSetDescr)
	if err := d.check(obj); err != nil {
		return err
	}
	if d.set == nil {
		return readonlyAttributeOnType(d.objclass, d.name)
	}
	return d.set(obj, value)
}

func getSetDescrDeleteSlot(self, obj any) error {
	d := self.(*getSetDescr)
	if err := d.check(obj); err != nil {
		return err
	}
	if d.del == nil {
		return attributeErrorf(d.objclass.name, d.name,
			"cannot delete attribute '%s' of '%s' objects", d.name, d.objclass.name)
	}
	return d.del(obj)
}

func getSetDescrRepr(self any) (any, error) {
	d := self.(*getSetDescr)
	return fmt.Sprintf("<attribute '%s' of '%s' objects>", d.name, d.objclass.name), nil
}

// ---------------------------------------------------------------------
// Slot wrapper descriptors

// wrapperDescr wraps one particular implementation of a special method.
// Type construction places it in the dictionary of the defining type
// against the dunder name; every type inheriting the entry copies the
// wrapped handle into its own slot table.
type wrapperDescr struct {
	descrBase
	slot    Slot
	wrapped any // handle of slot.handleType()
}

// callWrapped invokes the wrapped handle with self prepended, adapting
// the positional arguments to the slot's signature.
func (d *wrapperDescr) callWrapped(self any, args Args, kwargs Kwargs) (any, error) {
	if len(kwargs) != 0 && d.slot.Sig() != SigCall && d.slot.Sig() != SigInit && d.slot.Sig() != SigNew {
		return nil, typeErrorf("%s() takes no keyword arguments", d.name)
	}
	argc := func(n int) error {
		if len(args) != n {
			return typeErrorf("%s() takes exactly %d argument(s) (%d given)",
				d.name, n, len(args))
		}
		return nil
	}
	switch d.slot.Sig() {
	case SigUnary:
		if err := argc(0); err != nil {
			return nil, err
		}
		return d.wrapped.(unaryFunc)(self)
	case SigBinary:
		if err := argc(1); err != nil {
			return nil, err
		}
		return d.wrapped.(binaryFunc)(self, args[0])
	case SigLen:
		if err := argc(0); err != nil {
			return nil, err
		}
		n, err := d.wrapped.(lenFunc)(self)
		return int64(n), err
	case SigPredicate:
		if err := argc(0); err != nil {
			return nil, err
		}
		return d.wrapped.(predicateFunc)(self)
	case SigBinaryPredicate:
		if err := argc(1); err != nil {
			return nil, err
		}
		return d.wrapped.(binPredFunc)(self, args[0])
	case SigGetAttr:
		if err := argc(1); err != nil {
			return nil, err
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, typeErrorf("attribute name must be string, not '%s'", TypeOf(args[0]).Name())
		}
		return d.wrapped.(getattrFunc)(self, name)
	case SigSetAttr:
		if err := argc(2); err != nil {
			return nil, err
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, typeErrorf("attribute name must be string, not '%s'", TypeOf(args[0]).Name())
		}
		return None, d.wrapped.(setattrFunc)(self, name, args[1])
	case SigDelAttr:
		if err := argc(1); err != nil {
			return nil, err
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, typeErrorf("attribute name must be string, not '%s'", TypeOf(args[0]).Name())
		}
		return None, d.wrapped.(delattrFunc)(self, name)
	case SigDescrGet:
		if err := argc(2); err != nil {
			return nil, err
		}
		obj := args[0]
		if obj == None {
			obj = nil
		}
		owner, _ := args[1].(*Type)
		return d.wrapped.(descrGetFunc)(self, obj, owner)
	case SigDescrSet:
		if err := argc(2); err != nil {
			return nil, err
		}
		return None, d.wrapped.(descrSetFunc)(self, args[0], args[1])
	case SigDescrDel:
		if err := argc(1); err != nil {
			return nil, err
		}
		return None, d.wrapped.(descrDelFunc)(self, args[0])
	case SigCall:
		return d.wrapped.(callFunc)(self, args, kwargs)
	case SigInit:
		return None, d.wrapped.(initFunc)(self, args, kwargs)
	case SigNew:
		t, ok := self.(*Type)
		if !ok {
			return nil, typeErrorf("%s(): first argument must be a type", d.name)
		}
		return d.wrapped.(newFunc)(t, args, kwargs)
	case SigSetItem:
		if err := argc(2); err != nil {
			return nil, err
		}
		return None, d.wrapped.(setItemFunc)(self, args[0], args[1])
	case SigDelItem:
		if err := argc(1); err != nil {
			return nil, err
		}
		return None, d.wrapped.(delItemFunc)(self, args[0])
	}
	faultf("unhandled signature %v in wrapper call", d.slot.Sig())
	return nil, nil
}

func wrapperDescrGetSlot(self, obj any, owner *Type) (any, error) {
	d := self.(*wrapperDescr)
	if obj == nil {
		return d, nil
	}
	if err := d.check(obj); err != nil {
		return nil, err
	}
	return &methodWrapper{descr: d, self: obj}, nil
}

// Calling the descriptor itself requires the target as first argument:
// int.__neg__(x).
func wrapperDescrCallSlot(callable any, args Args, kwargs Kwargs) (any, error) {
	d := callable.(*wrapperDescr)
	if len(args) < 1 {
		return nil, typeErrorf("descriptor '%s' of '%s' object needs an argument",
			d.name, d.objclass.name)
	}
	if err := d.check(args[0]); err != nil {
		return nil, err
	}
	return d.callWrapped(args[0], args[1:], kwargs)
}

func wrapperDescrRepr(self any) (any, error) {
	d := self.(*wrapperDescr)
	return fmt.Sprintf("<slot wrapper '%s' of '%s' objects>", d.name, d.objclass.name), nil
}

// methodWrapper is the bound form of a wrapper descriptor: it captures
// self and dispatches through the wrapped handle when called.
type methodWrapper struct {
	descr *wrapperDescr
	self  any
}

func methodWrapperCallSlot(callable any, args Args, kwargs Kwargs) (any, error) {
	mw := callable.(*methodWrapper)
	return mw.descr.callWrapped(mw.self, args, kwargs)
}

func methodWrapperRepr(self any) (any, error) {
	mw := self.(*methodWrapper)
	return fmt.Sprintf("<method-wrapper '%s' of %s object>",
		mw.descr.name, TypeOf(mw.self).Name()), nil
}

// ---------------------------------------------------------------------
// Method descriptors

// methodDescr exposes a plain named method. Non-data: an instance
// dictionary entry of the same name shadows it.
type methodDescr struct {
	descrBase
	meth MethodFunc
}

func methodDescrGetSlot(self, obj any, owner *Type) (any, error) {
	d := self.(*methodDescr)
	if obj == nil {
		return d, nil
	}
	if err := d.check(obj); err != nil {
		return nil, err
	}
	return &boundMethod{descr: d, self: obj}, nil
}

// Calling the descriptor itself: T.meth(x, ...).
func methodDescrCallSlot(callable any, args Args, kwargs Kwargs) (any, error) {
	d := callable.(*methodDescr)
	if len(args) < 1 {
		return nil, typeErrorf("descriptor '%s' of '%s' object needs an argument",
			d.name, d.objclass.name)
	}
	if err := d.check(args[0]); err != nil {
		return nil, err
	}
	return d.meth(args[0], args[1:], kwargs)
}

func methodDescrRepr(self any) (any, error) {
	d := self.(*methodDescr)
	return fmt.Sprintf("<method '%s' of '%s' objects>", d.name, d.objclass.name), nil
}

// boundMethod pairs a method descriptor with its target.
type boundMethod struct {
	descr *methodDescr
	self  any
}

func boundMethodCallSlot(callable any, args Args, kwargs Kwargs) (any, error) {
	bm := callable.(*boundMethod)
	return bm.descr.meth(bm.self, args, kwargs)
}

func boundMethodRepr(self any) (any, error) {
	bm := self.(*boundMethod)
	return fmt.Sprintf("<bound method %s.%s of %s object>",
		bm.descr.objclass.name, bm.descr.name, TypeOf(bm.self).Name()), nil
}

// descrNameGetter and friends serve the introspection get-sets installed
// on all descriptor types.

func descrNameGetter(self any) (any, error) {
	return self.(descriptor).descrName(), nil
}

func descrObjclassGetter(self any) (any, error) {
	return self.(descriptor).descrObjclass(), nil
}

func descrDocGetter(self any) (any, error) {
	doc := self.(descriptor).descrDoc()
	if doc == "" {
		return None, nil
	}
	return doc, nil
}

func methodWrapperSelfGetter(self any) (any, error) {
	return self.(*methodWrapper).self, nil
}

func boundMethodSelfGetter(self any) (any, error) {
	return self.(*boundMethod).self, nil
}
