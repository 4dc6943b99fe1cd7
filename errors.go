// errors.go: the error taxonomy of the runtime
//
// Three kinds of failure flow through this package and they must never be
// confused with one another:
//
//   - AttributeError / TypeError are Python-level errors. They are ordinary
//     Go error values, returned up to whatever interpreter sits on top of
//     this package, which turns them into the exception the user sees.
//   - InterpreterError marks a defect in type construction or a broken
//     invariant (wrong slot signature, multiple inheritance, a bad member
//     tag). It is raised with fault/faultf, which panic: construction of a
//     broken type must abort, not limp on.
//   - ErrEmptySlot is not an error at all but a control-flow signal: it is
//     what an unfilled slot returns when invoked. Dispatch code catches it
//     with errors.Is and chooses fallback behaviour; it never escapes to a
//     caller outside this package.
package pyrite

import (
	"errors"
	"fmt"
)

// ErrEmptySlot is returned by the sentinel handle installed in every slot
// that no type in the MRO fills. Only dispatch code should test for it.
var ErrEmptySlot = errors.New("empty slot invoked")

// errNotImplemented is returned by a binary slot implementation that does
// not recognise its right-hand operand, so the reflected operation on the
// other operand may be tried. The Go rendering of Py_NotImplemented.
var errNotImplemented = errors.New("operation not implemented for operand")

// AttributeError reports a failed attribute access: the name was not found,
// or it is read-only, or it cannot be deleted. It always carries the type
// name of the offending object and the attribute name.
type AttributeError struct {
	TypeName string
	Name     string
	Msg      string
}

func (e *AttributeError) Error() string { return e.Msg }

func attributeErrorf(typeName, name, format string, args ...any) *AttributeError {
	return &AttributeError{
		TypeName: typeName,
		Name:     name,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// noAttributeError reports o.name simply not existing.
func noAttributeError(o any, name string) *AttributeError {
	t := TypeOf(o).Name()
	return attributeErrorf(t, name, "'%s' object has no attribute '%s'", t, name)
}

// noAttributeOnType is the variant raised via a descriptor that knows its
// defining type but not the concrete instance (e.g. an unset optional
// member).
func noAttributeOnType(t *Type, name string) *AttributeError {
	return attributeErrorf(t.name, name, "'%s' object has no attribute '%s'", t.name, name)
}

func readonlyAttributeError(o any, name string) *AttributeError {
	t := TypeOf(o).Name()
	return attributeErrorf(t, name, "attribute '%s' of '%s' objects is read-only", name, t)
}

func readonlyAttributeOnType(t *Type, name string) *AttributeError {
	return attributeErrorf(t.name, name, "attribute '%s' of '%s' objects is read-only", name, t.name)
}

// mandatoryAttributeError reports an attempt to delete an attribute whose
// descriptor has no deleter.
func mandatoryAttributeError(o any, name string) *AttributeError {
	t := TypeOf(o).Name()
	return attributeErrorf(t, name, "cannot delete attribute '%s' of '%s' objects", name, t)
}

// TypeError reports a Python-level type violation: a descriptor applied to
// an incompatible instance, a wrong value type on set, mutation of an
// immutable type, or calling something that is not callable.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return e.Msg }

func typeErrorf(format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// cantSetAttributesOfType rejects all sets/deletes on an immutable type.
func cantSetAttributesOfType(t *Type) *TypeError {
	return typeErrorf("cannot set attributes of built-in/immutable type '%s'", t.name)
}

// descriptorDoesNotApply reports a descriptor invoked against an instance
// whose type is outside the hierarchy of the descriptor's objclass.
func descriptorDoesNotApply(name string, objclass *Type, got *Type) *TypeError {
	return typeErrorf("descriptor '%s' for '%s' objects doesn't apply to a '%s' object",
		name, objclass.name, got.name)
}

// attrMustBe reports a bad value type supplied to a member setter.
func attrMustBe(name, kind string, value any) *TypeError {
	return typeErrorf("attribute '%s' must be %s, not '%s'", name, kind, TypeOf(value).Name())
}

// InterpreterError indicates a defect in the runtime or in a type's
// implementation class, discovered at construction time. It is never an
// error the Python user caused and is never recovered from within this
// package.
type InterpreterError struct {
	Msg string
}

func (e *InterpreterError) Error() string { return "internal error: " + e.Msg }

// faultf panics with an InterpreterError. Type construction code calls this
// on any structural violation.
func faultf(format string, args ...any) {
	panic(&InterpreterError{Msg: fmt.Sprintf(format, args...)})
}
