// object.go: the root object type and the instance attribute algorithms
//
// Runtime values are plain Go values (any). A value is "crafted" when its
// Go type is a struct made for the runtime, typically embedding Object so
// it carries a type pointer and an instance dictionary; or "adopted",
// like int64 and string, in which case its type is fixed by the
// representation registry.
//
// The functions in this file implement the default attribute behaviour
// every type inherits from object, with the data-descriptor precedence:
// a data descriptor on the class always beats the instance dictionary,
// the instance dictionary beats non-data descriptors and plain class
// values.
package pyrite

import (
	"errors"
	"fmt"
)

// Args and Kwargs carry a Python-style call.
type (
	Args   []any
	Kwargs map[string]any
)

// PyTyped is implemented by values that know their own Python type, which
// takes precedence over the representation registry. Crafted instances of
// subclasses implement it so several Python types can share one Go
// implementation class.
type PyTyped interface {
	PyType() *Type
}

// HasDict is implemented by values exposing an instance dictionary.
type HasDict interface {
	PyDict() *AttrDict
}

// Object is the standard crafted instance: a type pointer and an instance
// dictionary. Implementation structs for richer built-ins embed it.
type Object struct {
	typ  *Type
	dict *AttrDict
}

// NewObject creates an instance of t with an empty dictionary.
func NewObject(t *Type) *Object {
	return &Object{typ: t, dict: NewAttrDict()}
}

func (o *Object) PyType() *Type {
	if o.typ == nil {
		return ObjectType
	}
	return o.typ
}

func (o *Object) PyDict() *AttrDict { return o.dict }

// noneValue is the implementation class of None.
type noneValue struct{}

// None is the single instance of NoneType.
var None any = noneValue{}

// ---------------------------------------------------------------------
// Slot implementations inherited from object.

// objectGetAttribute is the default __getattribute__.
func objectGetAttribute(self any, name string) (any, error) {
	t := TypeOf(self)
	attr := t.lookup(name)
	var aOps *Operations
	if attr != nil {
		aOps = typeOps(attr)
		if aOps.isDataDescr() && SlotGet.isDefinedFor(aOps) {
			return aOps.handles().Get(attr, self, t)
		}
	}
	if d, ok := self.(HasDict); ok {
		if dict := d.PyDict(); dict != nil {
			if v, ok := dict.Get(name); ok {
				return v, nil
			}
		}
	}
	if attr != nil {
		if SlotGet.isDefinedFor(aOps) {
			return aOps.handles().Get(attr, self, t)
		}
		return attr, nil
	}
	return nil, noAttributeError(self, name)
}

// objectSetAttr is the default __setattr__. A data descriptor on the
// class intercepts the write; one without a setter makes the attribute
// read-only, with no fall-through to the instance dictionary.
func objectSetAttr(self any, name string, value any) error {
	t := TypeOf(self)
	attr := t.lookup(name)
	if attr != nil {
		aOps := typeOps(attr)
		if aOps.isDataDescr() {
			err := aOps.handles().Set(attr, self, value)
			if errors.Is(err, ErrEmptySlot) {
				return readonlyAttributeError(self, name)
			}
			return err
		}
	}
	if d, ok := self.(HasDict); ok {
		if dict := d.PyDict(); dict != nil {
			dict.Set(name, value)
			return nil
		}
	}
	if attr != nil {
		return readonlyAttributeError(self, name)
	}
	return noAttributeError(self, name)
}

// objectDelAttr is the default __delattr__.
func objectDelAttr(self any, name string) error {
	t := TypeOf(self)
	attr := t.lookup(name)
	if attr != nil {
		aOps := typeOps(attr)
		if aOps.isDataDescr() {
			err := aOps.handles().Delete(attr, self)
			if errors.Is(err, ErrEmptySlot) {
				return mandatoryAttributeError(self, name)
			}
			return err
		}
	}
	if d, ok := self.(HasDict); ok {
		if dict := d.PyDict(); dict != nil {
			if dict.Delete(name) {
				return nil
			}
			return noAttributeError(self, name)
		}
	}
	if attr != nil {
		return mandatoryAttributeError(self, name)
	}
	return noAttributeError(self, name)
}

// objectNew is the default __new__.
func objectNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if t == ObjectType && (len(args) > 0 || len(kwargs) > 0) {
		return nil, typeErrorf("object() takes no arguments")
	}
	return NewObject(t), nil
}

func objectRepr(self any) (any, error) {
	return fmt.Sprintf("<%s object>", TypeOf(self).Name()), nil
}

// objectStr falls back to repr through the type's own slot.
func objectStr(self any) (any, error) {
	t := TypeOf(self)
	return t.handles().Repr(self)
}

// objectClassGetter serves the __class__ get-set.
func objectClassGetter(self any) (any, error) {
	return TypeOf(self), nil
}

// objectDictGetter serves __dict__ on instances that have one.
func objectDictGetter(self any) (any, error) {
	if d, ok := self.(HasDict); ok {
		if dict := d.PyDict(); dict != nil {
			return dict, nil
		}
	}
	return nil, noAttributeError(self, "__dict__")
}
