// type.go: the type object
//
// A Type is built in two steps: newShell fixes identity (name, bases,
// MRO, metatype, operand records) and fill populates the dictionary from
// the exposer and derives the slot table from it. Built-in types run the
// two steps inside the bootstrap; FromSpec runs them back to back for
// everything after.
//
// The MRO is the type itself prepended to the base's MRO. Only single
// inheritance is supported; a spec naming two or more bases is a
// construction defect.
package pyrite

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TypeFlags are the characteristic flags of a type.
type TypeFlags uint

const (
	// Mutable permits assignment and deletion on the type's attributes.
	Mutable TypeFlags = 1 << iota
	// Variable marks instances of variable size (reserved).
	Variable
	// BaseType permits the type to be subclassed. Set by default.
	BaseType
	// IsDescr marks types whose instances define __get__.
	IsDescr
	// IsDataDescr marks types whose instances define __set__ or
	// __delete__ as well. Deduced, never declared.
	IsDataDescr
)

// Type is the runtime representation of a Python type. It embeds its
// canonical Operations record, so a *Type is also the dispatch record of
// its canonically-represented instances.
type Type struct {
	Operations

	name  string
	meta  *Type
	base  *Type   // nil only for the root object type
	bases []*Type // as declared
	mro   []*Type // linearisation, self first
	flags TypeFlags
	doc   string

	dict     *AttrDict
	adopted  []*Operations  // records of adopted representations
	operands []reflect.Type // canonical, adopted, accepted, operand classes
	mu       sync.Mutex     // guards dict and slot re-derivation
}

// PyType returns the metatype; Type therefore satisfies PyTyped and a
// type object resolves like any other value.
func (t *Type) PyType() *Type { return t.meta }

func (t *Type) Name() string             { return t.name }
func (t *Type) Doc() string              { return t.doc }
func (t *Type) Base() *Type              { return t.base }
func (t *Type) Bases() []*Type           { return slices.Clone(t.bases) }
func (t *Type) MRO() []*Type             { return slices.Clone(t.mro) }
func (t *Type) HasFlag(f TypeFlags) bool { return t.flags&f != 0 }

func (t *Type) String() string { return fmt.Sprintf("<class '%s'>", t.name) }

// OperandClasses returns the Go classes this type deals in, canonical
// representation first; the index of a class here is its class index in
// binary-operation dispatch.
func (t *Type) OperandClasses() []reflect.Type {
	return slices.Clone(t.operands)
}

// IndexOfOperand returns the class index of c, or -1 when the type does
// not deal in c.
func (t *Type) IndexOfOperand(c reflect.Type) int {
	return slices.Index(t.operands, c)
}

// IsSubTypeOf reports whether u appears in t's MRO. Every type is a
// subtype of itself.
func (t *Type) IsSubTypeOf(u *Type) bool {
	for _, v := range t.mro {
		if v == u {
			return true
		}
	}
	return false
}

// Lookup finds name along the MRO and returns the defining entry without
// invoking any descriptor protocol.
func (t *Type) Lookup(name string) (any, bool) {
	v := t.lookup(name)
	return v, v != nil
}

func (t *Type) lookup(name string) any {
	for _, u := range t.mro {
		if v, ok := u.dictGet(name); ok {
			return v
		}
	}
	return nil
}

// lookupLocked is lookup for a caller already holding t.mu. Ancestor
// dictionaries take their own locks; a type only ever locks types later
// in its MRO, so the ordering is acyclic.
func (t *Type) lookupLocked(name string) any {
	if v, ok := t.dict.Get(name); ok {
		return v
	}
	for _, u := range t.mro[1:] {
		if v, ok := u.dictGet(name); ok {
			return v
		}
	}
	return nil
}

func (t *Type) dictGet(name string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dict.Get(name)
}

func (t *Type) dictSet(name string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dict.Set(name, value)
}

// DictSnapshot returns a copy of the type's own dictionary, in insertion
// order.
func (t *Type) DictSnapshot() *AttrDict {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := NewAttrDict()
	t.dict.Range(func(k string, v any) bool {
		d.Set(k, v)
		return true
	})
	return d
}

// FromSpec builds a complete type from a consumed spec. This is the one
// public construction entry point; the built-ins use the same two steps
// inside the bootstrap.
func FromSpec(spec *Spec) *Type {
	ensureTypes()
	spec.take()
	t := newShell(spec)
	t.fill(spec)
	return t
}

// newShell creates the type with identity and inheritance fixed but the
// dictionary still empty. Shells of the built-ins exist before any
// dictionary does, which is what lets object and type refer to each other.
func newShell(spec *Spec) *Type {
	bases := spec.getBases()
	if len(bases) > 1 {
		faultf("multiple inheritance not supported yet (type '%s' declares %d bases)",
			spec.name, len(bases))
	}
	t := &Type{
		name:     spec.name,
		meta:     spec.meta,
		bases:    bases,
		flags:    spec.flags,
		doc:      spec.doc,
		dict:     NewAttrDict(),
		operands: spec.operandClasses(),
	}
	t.Operations.class = spec.impl
	t.Operations.owner = t
	t.Operations.state.Store(emptySlotState())
	if len(bases) == 1 {
		t.base = bases[0]
		t.mro = append([]*Type{t}, t.base.mro...)
	} else {
		t.mro = []*Type{t}
	}
	registerImplClass(spec.impl, &t.Operations)
	for i, c := range spec.adopted {
		ops := newOperations(c, i+1, t)
		t.adopted = append(t.adopted, ops)
		registerImplClass(c, ops)
	}
	return t
}

// registerImplClass posts a class and, for struct classes, its pointer
// form, since crafted instances circulate as pointers.
func registerImplClass(c reflect.Type, ops *Operations) {
	registerClass(c, ops)
	if c.Kind() == reflect.Struct {
		registerClass(reflect.PointerTo(c), ops)
	}
}

// fill runs the second construction step: expose the descriptors into the
// dictionary, derive the slot table from the dictionary chain, and deduce
// the descriptor flags from the result.
func (t *Type) fill(spec *Spec) {
	if t.meta == nil {
		t.meta = TypeType
	}
	for _, e := range exposeAll(spec, t) {
		t.dict.Set(e.name, e.value)
	}
	t.defineOperations()
	t.deduceFlags()
}

// defineOperations derives every slot of the type (and of its adopted
// representations) from the MRO lookup of the slot's dunder name.
func (t *Type) defineOperations() {
	for s := Slot(0); s < numSlots; s++ {
		def := t.lookup(s.DunderName())
		s.setFromDict(&t.Operations, def)
		for _, ops := range t.adopted {
			s.setFromDict(ops, def)
		}
	}
}

// updateSlotLocked re-derives one slot after a dictionary mutation. The
// caller holds t.mu, so the dictionary entry and the derived handle
// change under one critical section.
func (t *Type) updateSlotLocked(s Slot) {
	def := t.lookupLocked(s.DunderName())
	s.setFromDict(&t.Operations, def)
	for _, ops := range t.adopted {
		s.setFromDict(ops, def)
	}
}

// deduceFlags sets the descriptor flags from the derived slot table.
// Whether instances are (data) descriptors is a fact about their type.
func (t *Type) deduceFlags() {
	if SlotGet.isDefinedFor(&t.Operations) {
		t.flags |= IsDescr
	}
	if SlotSet.isDefinedFor(&t.Operations) || SlotDelete.isDefinedFor(&t.Operations) {
		t.flags |= IsDataDescr
	}
}

func typeNoAttribute(t *Type, name string) *AttributeError {
	return attributeErrorf(t.name, name,
		"type object '%s' has no attribute '%s'", t.name, name)
}

// ---------------------------------------------------------------------
// Slot implementations for the type type.

func typeRepr(self any) (any, error) {
	t := self.(*Type)
	return fmt.Sprintf("<class '%s'>", t.name), nil
}

// typeGetAttribute implements attribute access on a type object. The
// precedence differs from instances: a data descriptor on the metatype
// wins, then the type's own MRO (with class-style __get__ binding), then
// non-data metatype entries.
func typeGetAttribute(self any, name string) (any, error) {
	t := self.(*Type)
	meta := t.meta

	metaAttr := meta.lookup(name)
	if metaAttr != nil {
		mOps := typeOps(metaAttr)
		if mOps.isDataDescr() && SlotGet.isDefinedFor(mOps) {
			return mOps.handles().Get(metaAttr, t, meta)
		}
	}

	if attr := t.lookup(name); attr != nil {
		aOps := typeOps(attr)
		if SlotGet.isDefinedFor(aOps) {
			// Class access: no instance, owner is the type itself.
			return aOps.handles().Get(attr, nil, t)
		}
		return attr, nil
	}

	if metaAttr != nil {
		mOps := typeOps(metaAttr)
		if SlotGet.isDefinedFor(mOps) {
			return mOps.handles().Get(metaAttr, t, meta)
		}
		return metaAttr, nil
	}
	return nil, typeNoAttribute(t, name)
}

// typeSetAttr assigns an attribute on a type object. Immutable (built-in)
// types reject all assignment. A successful write to a special-method
// name re-derives the corresponding slot at once.
func typeSetAttr(self any, name string, value any) error {
	t := self.(*Type)
	if !t.HasFlag(Mutable) {
		return cantSetAttributesOfType(t)
	}
	if metaAttr := t.meta.lookup(name); metaAttr != nil {
		mOps := typeOps(metaAttr)
		if mOps.isDataDescr() && SlotSet.isDefinedFor(mOps) {
			return mOps.handles().Set(metaAttr, t, value)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dict.Set(name, value)
	if s, ok := forDunderName(name); ok {
		t.updateSlotLocked(s)
	}
	return nil
}

func typeDelAttr(self any, name string) error {
	t := self.(*Type)
	if !t.HasFlag(Mutable) {
		return cantSetAttributesOfType(t)
	}
	if metaAttr := t.meta.lookup(name); metaAttr != nil {
		mOps := typeOps(metaAttr)
		if mOps.isDataDescr() && SlotDelete.isDefinedFor(mOps) {
			return mOps.handles().Delete(metaAttr, t)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dict.Delete(name) {
		return typeNoAttribute(t, name)
	}
	if s, ok := forDunderName(name); ok {
		t.updateSlotLocked(s)
	}
	return nil
}

// typeCall implements calling a type object: the type enquiry type(x),
// or instance construction through __new__ and, when applicable,
// __init__.
func typeCall(callable any, args Args, kwargs Kwargs) (any, error) {
	t, ok := callable.(*Type)
	if !ok {
		faultf("type slot invoked on %T", callable)
	}
	if t == TypeType && len(args) == 1 && len(kwargs) == 0 {
		return TypeOf(args[0]), nil
	}
	obj, err := t.handles().New(t, args, kwargs)
	if errors.Is(err, ErrEmptySlot) {
		return nil, typeErrorf("cannot create '%s' instances", t.name)
	}
	if err != nil {
		return nil, err
	}
	objType := TypeOf(obj)
	if objType.IsSubTypeOf(t) && SlotInit.isDefinedFor(&objType.Operations) {
		if err := objType.handles().Init(obj, args, kwargs); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// typeNew serves type.__new__: the one-argument enquiry again (reachable
// as type.__new__(type, x)) or the three-argument creation of a new
// class from name, bases and namespace.
func typeNew(t *Type, args Args, kwargs Kwargs) (any, error) {
	if t == TypeType && len(args) == 1 && len(kwargs) == 0 {
		return TypeOf(args[0]), nil
	}
	if len(args) != 3 {
		return nil, typeErrorf("type() takes 1 or 3 arguments (%d given)", len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, typeErrorf("type() argument 1 must be str, not '%s'", TypeOf(args[0]).Name())
	}
	bases, err := basesArg(args[1])
	if err != nil {
		return nil, err
	}
	ns, err := namespaceArg(args[2])
	if err != nil {
		return nil, err
	}
	return newClass(t, name, bases, ns)
}

func basesArg(arg any) ([]*Type, error) {
	items, ok := arg.([]any)
	if !ok {
		return nil, typeErrorf("type() argument 2 must be a sequence of types, not '%s'",
			TypeOf(arg).Name())
	}
	bases := make([]*Type, 0, len(items))
	for _, item := range items {
		b, ok := item.(*Type)
		if !ok {
			return nil, typeErrorf("bases must be types, not '%s'", TypeOf(item).Name())
		}
		bases = append(bases, b)
	}
	return bases, nil
}

func namespaceArg(arg any) (*AttrDict, error) {
	switch ns := arg.(type) {
	case *AttrDict:
		return ns, nil
	case map[string]any:
		d := NewAttrDict()
		keys := maps.Keys(ns)
		slices.Sort(keys)
		for _, k := range keys {
			d.Set(k, ns[k])
		}
		return d, nil
	default:
		return nil, typeErrorf("type() argument 3 must be a mapping, not '%s'",
			TypeOf(arg).Name())
	}
}

// newClass creates a mutable class at runtime. The namespace enters the
// dictionary before the slot table is derived, so special methods carried
// in it take effect immediately.
func newClass(meta *Type, name string, bases []*Type, ns *AttrDict) (*Type, error) {
	for _, b := range bases {
		if !b.HasFlag(BaseType) {
			return nil, typeErrorf("type '%s' is not an acceptable base type", b.name)
		}
	}
	impl := Class[Object]()
	if len(bases) == 1 {
		impl = bases[0].class
	}
	spec := NewSpec(name, impl).Flag(Mutable).Metatype(meta)
	for _, b := range bases {
		spec.Base(b)
	}
	spec.take()
	t := newShell(spec)
	ns.Range(func(k string, v any) bool {
		t.dict.Set(k, v)
		return true
	})
	t.defineOperations()
	t.deduceFlags()
	return t, nil
}

// NewClass is the Go-facing form of the three-argument type call.
func NewClass(name string, bases []*Type, ns *AttrDict) (*Type, error) {
	ensureTypes()
	if ns == nil {
		ns = NewAttrDict()
	}
	return newClass(TypeType, name, bases, ns)
}

// Get-set implementations exposed on the type type.

func typeNameGetter(self any) (any, error) {
	return self.(*Type).name, nil
}

func typeMROGetter(self any) (any, error) {
	t := self.(*Type)
	mro := make([]any, len(t.mro))
	for i, u := range t.mro {
		mro[i] = u
	}
	return mro, nil
}

func typeBasesGetter(self any) (any, error) {
	t := self.(*Type)
	bases := make([]any, len(t.bases))
	for i, u := range t.bases {
		bases[i] = u
	}
	return bases, nil
}

func typeBaseGetter(self any) (any, error) {
	t := self.(*Type)
	if t.base == nil {
		return None, nil
	}
	return t.base, nil
}

func typeDictGetter(self any) (any, error) {
	return self.(*Type).DictSnapshot(), nil
}

func typeDocGetter(self any) (any, error) {
	t := self.(*Type)
	if t.doc == "" {
		return None, nil
	}
	return t.doc, nil
}
