// operations.go: representation registry
//
// A Python type may have several concrete Go representations: int64 and
// *big.Int both denote a Python int; Go string denotes str. Every Go type
// that can appear as a runtime value resolves, through this registry, to
// an Operations record carrying the slot table and the owning Type.
//
// The analogue of host-language subclassing in Go is struct embedding: a
// crafted instance struct that embeds Object (or another registered
// implementation) resolves to the record of the embedded class.
package pyrite

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Operations exposes the slot handles and basic type metadata of one
// implementation class. Type embeds an Operations as its canonical
// (index 0) record; adopted representations get their own records sharing
// the same handles.
//
// The dispatch state lives behind an atomic pointer and is replaced
// wholesale on every mutation. Dispatch reads take no lock; a loaded
// state stays internally consistent for the duration of a call even
// while a mutable type is being reassigned.
type Operations struct {
	state atomic.Pointer[slotState]

	class reflect.Type // the implementation class this record serves
	index int          // position in the owning type's operand array
	owner *Type        // fixed type of all instances, nil if per-instance
}

// newOperations returns a record with every slot empty.
func newOperations(class reflect.Type, index int, owner *Type) *Operations {
	ops := &Operations{class: class, index: index, owner: owner}
	ops.state.Store(emptySlotState())
	return ops
}

// handles returns the current dispatch table.
func (ops *Operations) handles() *slotTable {
	return &ops.state.Load().slots
}

// typeFor resolves the Python type of obj through this record. Records of
// classes shared by several Python types (crafted instance structs) defer
// to the object itself.
func (ops *Operations) typeFor(obj any) *Type {
	if ops.owner != nil {
		return ops.owner
	}
	if t, ok := obj.(PyTyped); ok {
		return t.PyType()
	}
	faultf("operations record for %v cannot type %T", ops.class, obj)
	return nil
}

// isDataDescr reports whether instances governed by this record are data
// descriptors. Valid only once the owning type's flags are deduced.
func (ops *Operations) isDataDescr() bool {
	return ops.owner != nil && ops.owner.HasFlag(IsDataDescr)
}

var classRegistry = struct {
	sync.RWMutex
	m map[reflect.Type]*Operations
}{m: make(map[reflect.Type]*Operations)}

// registerClass posts an association from a Go implementation class to its
// operations record. A class already registered to an unrelated type is a
// construction defect; a subtype re-presenting an ancestor's class is
// tolerated (the ancestor's record stands, instances carry their own type).
func registerClass(c reflect.Type, ops *Operations) {
	classRegistry.Lock()
	defer classRegistry.Unlock()
	if prev, ok := classRegistry.m[c]; ok {
		if prev.owner == nil || ops.owner == nil {
			return
		}
		if ops.owner.IsSubTypeOf(prev.owner) {
			return
		}
		faultf("implementation class %v registered twice: %s and %s",
			c, prev.owner.name, ops.owner.name)
	}
	classRegistry.m[c] = ops
}

// forClass finds the operations record for a Go type, walking embedded
// (anonymous) fields the way the host-language superclass chain would be
// walked. Every runtime value must ultimately resolve; failure is an
// internal error.
func forClass(c reflect.Type) *Operations {
	classRegistry.RLock()
	ops := classRegistry.m[c]
	classRegistry.RUnlock()
	if ops != nil {
		return ops
	}
	if ops = findEmbedded(c); ops != nil {
		// Cache the resolution for the concrete class.
		classRegistry.Lock()
		classRegistry.m[c] = ops
		classRegistry.Unlock()
		return ops
	}
	faultf("no operations registered for Go type %v", c)
	return nil
}

func findEmbedded(c reflect.Type) *Operations {
	st := c
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		for _, cand := range []reflect.Type{f.Type, reflect.PointerTo(f.Type)} {
			classRegistry.RLock()
			ops := classRegistry.m[cand]
			classRegistry.RUnlock()
			if ops != nil {
				return ops
			}
		}
		if ops := findEmbedded(f.Type); ops != nil {
			return ops
		}
	}
	return nil
}

// typeOps returns the dispatch record of obj's resolved Python type.
// Unlike opsOf it honours a PyTyped value's own type, so descriptors and
// instances of runtime-created classes dispatch on their actual type.
func typeOps(obj any) *Operations {
	return &TypeOf(obj).Operations
}

// opsOf returns the operations record governing obj.
func opsOf(obj any) *Operations {
	return forClass(reflect.TypeOf(obj))
}

// TypeOf resolves the Python type of any runtime value.
func TypeOf(obj any) *Type {
	ensureTypes()
	if t, ok := obj.(PyTyped); ok {
		return t.PyType()
	}
	return opsOf(obj).typeFor(obj)
}
