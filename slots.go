// slots.go: the special-method slot table
//
// Every special method ("dunder") the runtime dispatches on has a fixed
// entry in slotTable, with a declared call signature. A type's slot table
// is derived from its dictionary chain: for each slot we look the dunder
// name up along the MRO and install the handle wrapped by the descriptor
// found there, or the canonical empty handle if no type defines it.
//
// Invoking an empty handle yields ErrEmptySlot, which dispatch code (and
// only dispatch code) uses to choose fallback behaviour. Installing a
// handle whose Go type does not match the slot's signature is a fatal
// construction error, never a user-facing one.
package pyrite

import (
	"reflect"
	"strings"
)

// Signature kinds a slot may declare. The Go function type is the
// signature; these constants exist for error messages and validation
// against wrapper descriptors.
type Signature int

const (
	SigUnary Signature = iota
	SigBinary
	SigLen
	SigPredicate
	SigBinaryPredicate
	SigGetAttr
	SigSetAttr
	SigDelAttr
	SigDescrGet
	SigDescrSet
	SigDescrDel
	SigCall
	SigInit
	SigNew
	SigSetItem
	SigDelItem
)

var signatureNames = map[Signature]string{
	SigUnary:           "unary",
	SigBinary:          "binary",
	SigLen:             "len",
	SigPredicate:       "predicate",
	SigBinaryPredicate: "binary predicate",
	SigGetAttr:         "getattr",
	SigSetAttr:         "setattr",
	SigDelAttr:         "delattr",
	SigDescrGet:        "descriptor get",
	SigDescrSet:        "descriptor set",
	SigDescrDel:        "descriptor delete",
	SigCall:            "call",
	SigInit:            "init",
	SigNew:             "new",
	SigSetItem:         "setitem",
	SigDelItem:         "delitem",
}

func (s Signature) String() string { return signatureNames[s] }

// The handle types, one per signature kind.
type (
	unaryFunc     func(self any) (any, error)
	binaryFunc    func(v, w any) (any, error)
	lenFunc       func(self any) (int, error)
	predicateFunc func(self any) (bool, error)
	binPredFunc   func(v, w any) (bool, error)
	getattrFunc   func(self any, name string) (any, error)
	setattrFunc   func(self any, name string, value any) error
	delattrFunc   func(self any, name string) error
	descrGetFunc  func(descr, obj any, owner *Type) (any, error)
	descrSetFunc  func(descr, obj, value any) error
	descrDelFunc  func(descr, obj any) error
	callFunc      func(callable any, args Args, kwargs Kwargs) (any, error)
	initFunc      func(self any, args Args, kwargs Kwargs) error
	newFunc       func(t *Type, args Args, kwargs Kwargs) (any, error)
	setItemFunc   func(self, key, value any) error
	delItemFunc   func(self, key any) error
)

// slotTable holds the dispatch handles of one Operations record. Field
// names determine the dunder names: Repr is found under "__repr__",
// GetAttribute under "__getattribute__", RAdd under "__radd__".
type slotTable struct {
	Repr         unaryFunc
	Str          unaryFunc
	Hash         lenFunc
	Call         callFunc
	GetAttribute getattrFunc
	GetAttr      getattrFunc
	SetAttr      setattrFunc
	DelAttr      delattrFunc

	Lt binaryFunc
	Le binaryFunc
	Eq binaryFunc
	Ne binaryFunc
	Gt binaryFunc
	Ge binaryFunc

	Iter unaryFunc
	Next unaryFunc

	Get    descrGetFunc
	Set    descrSetFunc
	Delete descrDelFunc

	Init initFunc
	New  newFunc

	Neg    unaryFunc
	Pos    unaryFunc
	Abs    unaryFunc
	Invert unaryFunc

	Add  binaryFunc
	RAdd binaryFunc
	Sub  binaryFunc
	RSub binaryFunc
	Mul  binaryFunc
	RMul binaryFunc

	Bool  predicateFunc
	Int   unaryFunc
	Float unaryFunc
	Index unaryFunc

	Len      lenFunc
	Contains binPredFunc

	GetItem binaryFunc
	SetItem setItemFunc
	DelItem delItemFunc
}

// Slot identifies one entry of slotTable.
type Slot int

const (
	SlotRepr Slot = iota
	SlotStr
	SlotHash
	SlotCall
	SlotGetAttribute
	SlotGetAttr
	SlotSetAttr
	SlotDelAttr
	SlotLt
	SlotLe
	SlotEq
	SlotNe
	SlotGt
	SlotGe
	SlotIter
	SlotNext
	SlotGet
	SlotSet
	SlotDelete
	SlotInit
	SlotNew
	SlotNeg
	SlotPos
	SlotAbs
	SlotInvert
	SlotAdd
	SlotRAdd
	SlotSub
	SlotRSub
	SlotMul
	SlotRMul
	SlotBool
	SlotInt
	SlotFloat
	SlotIndex
	SlotLen
	SlotContains
	SlotGetItem
	SlotSetItem
	SlotDelItem

	numSlots
)

const noAlt Slot = -1

type slotDef struct {
	field  string // Go field in slotTable
	dunder string // special-method name in type dictionaries
	sig    Signature
	alt    Slot // reflected partner of a binary op, or noAlt
	index  int  // field index in slotTable, resolved at init
}

var slotDefs = [numSlots]slotDef{
	SlotRepr:         {field: "Repr", sig: SigUnary, alt: noAlt},
	SlotStr:          {field: "Str", sig: SigUnary, alt: noAlt},
	SlotHash:         {field: "Hash", sig: SigLen, alt: noAlt},
	SlotCall:         {field: "Call", sig: SigCall, alt: noAlt},
	SlotGetAttribute: {field: "GetAttribute", sig: SigGetAttr, alt: noAlt},
	SlotGetAttr:      {field: "GetAttr", sig: SigGetAttr, alt: noAlt},
	SlotSetAttr:      {field: "SetAttr", sig: SigSetAttr, alt: noAlt},
	SlotDelAttr:      {field: "DelAttr", sig: SigDelAttr, alt: noAlt},
	SlotLt:           {field: "Lt", sig: SigBinary, alt: noAlt},
	SlotLe:           {field: "Le", sig: SigBinary, alt: noAlt},
	SlotEq:           {field: "Eq", sig: SigBinary, alt: noAlt},
	SlotNe:           {field: "Ne", sig: SigBinary, alt: noAlt},
	SlotGt:           {field: "Gt", sig: SigBinary, alt: noAlt},
	SlotGe:           {field: "Ge", sig: SigBinary, alt: noAlt},
	SlotIter:         {field: "Iter", sig: SigUnary, alt: noAlt},
	SlotNext:         {field: "Next", sig: SigUnary, alt: noAlt},
	SlotGet:          {field: "Get", sig: SigDescrGet, alt: noAlt},
	SlotSet:          {field: "Set", sig: SigDescrSet, alt: noAlt},
	SlotDelete:       {field: "Delete", sig: SigDescrDel, alt: noAlt},
	SlotInit:         {field: "Init", sig: SigInit, alt: noAlt},
	SlotNew:          {field: "New", sig: SigNew, alt: noAlt},
	SlotNeg:          {field: "Neg", sig: SigUnary, alt: noAlt},
	SlotPos:          {field: "Pos", sig: SigUnary, alt: noAlt},
	SlotAbs:          {field: "Abs", sig: SigUnary, alt: noAlt},
	SlotInvert:       {field: "Invert", sig: SigUnary, alt: noAlt},
	SlotAdd:          {field: "Add", sig: SigBinary, alt: SlotRAdd},
	SlotRAdd:         {field: "RAdd", sig: SigBinary, alt: noAlt},
	SlotSub:          {field: "Sub", sig: SigBinary, alt: SlotRSub},
	SlotRSub:         {field: "RSub", sig: SigBinary, alt: noAlt},
	SlotMul:          {field: "Mul", sig: SigBinary, alt: SlotRMul},
	SlotRMul:         {field: "RMul", sig: SigBinary, alt: noAlt},
	SlotBool:         {field: "Bool", sig: SigPredicate, alt: noAlt},
	SlotInt:          {field: "Int", sig: SigUnary, alt: noAlt},
	SlotFloat:        {field: "Float", sig: SigUnary, alt: noAlt},
	SlotIndex:        {field: "Index", sig: SigUnary, alt: noAlt},
	SlotLen:          {field: "Len", sig: SigLen, alt: noAlt},
	SlotContains:     {field: "Contains", sig: SigBinaryPredicate, alt: noAlt},
	SlotGetItem:      {field: "GetItem", sig: SigBinary, alt: noAlt},
	SlotSetItem:      {field: "SetItem", sig: SigSetItem, alt: noAlt},
	SlotDelItem:      {field: "DelItem", sig: SigDelItem, alt: noAlt},
}

var (
	slotTableType = reflect.TypeOf(slotTable{})
	slotByDunder  = map[string]Slot{}
)

func init() {
	for i := range slotDefs {
		d := &slotDefs[i]
		f, ok := slotTableType.FieldByName(d.field)
		if !ok {
			faultf("slot %s has no field in slotTable", d.field)
		}
		d.index = f.Index[0]
		d.dunder = "__" + strings.ToLower(d.field) + "__"
		slotByDunder[d.dunder] = Slot(i)
	}
}

// forDunderName maps a special-method name to its slot, reporting whether
// the name is recognised.
func forDunderName(name string) (Slot, bool) {
	s, ok := slotByDunder[name]
	return s, ok
}

// isDunderName reports whether name has the form __A__.
func isDunderName(name string) bool {
	n := len(name)
	return n > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// DunderName returns the special-method name of the slot, e.g. "__add__".
func (s Slot) DunderName() string { return slotDefs[s].dunder }

// Sig returns the declared signature kind of the slot.
func (s Slot) Sig() Signature { return slotDefs[s].sig }

// Alt returns the reflected partner of a binary slot (SlotRAdd for
// SlotAdd) and noAlt otherwise.
func (s Slot) alternate() Slot { return slotDefs[s].alt }

func (s Slot) String() string { return "Slot(" + slotDefs[s].dunder + ")" }

// fieldValue returns the addressable reflect.Value of this slot's field in
// the given table.
func (s Slot) fieldValue(t *slotTable) reflect.Value {
	return reflect.ValueOf(t).Elem().Field(slotDefs[s].index)
}

// handleType returns the Go function type a handle for this slot must have.
func (s Slot) handleType() reflect.Type {
	return slotTableType.Field(slotDefs[s].index).Type
}

// slotState is the immutable-once-published dispatch state of one
// operations record: the handle table and the bitmask of filled slots.
// Mutators copy, modify and swap; readers load and never write.
type slotState struct {
	slots   slotTable
	defined uint64
}

func emptySlotState() *slotState {
	return &slotState{slots: emptySlotTable()}
}

// isDefinedFor reports whether the MRO-resolved handle of this slot differs
// from the empty sentinel in the given operations record.
func (s Slot) isDefinedFor(ops *Operations) bool {
	return ops.state.Load().defined&(1<<uint(s)) != 0
}

// setHandle validates the handle against the slot signature and installs
// it. A nil or mistyped handle is a construction-time fault; the previous
// handle is left in place.
func (s Slot) setHandle(ops *Operations, handle any) {
	if handle == nil {
		faultf("nil handle for %s", s)
	}
	ht := reflect.TypeOf(handle)
	if ht != s.handleType() {
		faultf("handle of type %s does not match %s signature of %s",
			ht, s.Sig(), s)
	}
	next := *ops.state.Load()
	s.fieldValue(&next.slots).Set(reflect.ValueOf(handle))
	next.defined |= 1 << uint(s)
	ops.state.Store(&next)
}

// clearHandle installs the canonical empty handle for the slot.
func (s Slot) clearHandle(ops *Operations) {
	next := *ops.state.Load()
	s.fieldValue(&next.slots).Set(reflect.ValueOf(s.emptyHandle()))
	next.defined &^= 1 << uint(s)
	ops.state.Store(&next)
}

// setFromDict installs into ops whatever the MRO lookup of the slot's
// dunder name produced: nothing (empty handle), a wrapper descriptor of
// matching signature (its wrapped handle), or a bare handle of the right
// Go type entered directly in a namespace.
func (s Slot) setFromDict(ops *Operations, def any) {
	switch d := def.(type) {
	case nil:
		s.clearHandle(ops)
	case *wrapperDescr:
		// Client code may enter any wrapper descriptor against the
		// name; only a matching signature can fill the slot.
		if d.slot.Sig() != s.Sig() {
			faultf("wrapper for %s (%s) cannot fill %s (%s)",
				d.slot, d.slot.Sig(), s, s.Sig())
		}
		s.setHandle(ops, d.wrapped)
	default:
		if reflect.TypeOf(def) == s.handleType() {
			s.setHandle(ops, def)
			return
		}
		// A non-wrapper entry under a dunder name (a plain value in a
		// class namespace). It shadows the name for lookup purposes
		// but cannot serve as a dispatch handle.
		s.clearHandle(ops)
	}
}

// emptyHandle returns the sentinel handle of this slot's signature. All
// sentinels report ErrEmptySlot when invoked.
func (s Slot) emptyHandle() any {
	switch s.Sig() {
	case SigUnary:
		return unaryFunc(func(any) (any, error) { return nil, ErrEmptySlot })
	case SigBinary:
		return binaryFunc(func(any, any) (any, error) { return nil, ErrEmptySlot })
	case SigLen:
		return lenFunc(func(any) (int, error) { return 0, ErrEmptySlot })
	case SigPredicate:
		return predicateFunc(func(any) (bool, error) { return false, ErrEmptySlot })
	case SigBinaryPredicate:
		return binPredFunc(func(any, any) (bool, error) { return false, ErrEmptySlot })
	case SigGetAttr:
		return getattrFunc(func(any, string) (any, error) { return nil, ErrEmptySlot })
	case SigSetAttr:
		return setattrFunc(func(any, string, any) error { return ErrEmptySlot })
	case SigDelAttr:
		return delattrFunc(func(any, string) error { return ErrEmptySlot })
	case SigDescrGet:
		return descrGetFunc(func(any, any, *Type) (any, error) { return nil, ErrEmptySlot })
	case SigDescrSet:
		return descrSetFunc(func(any, any, any) error { return ErrEmptySlot })
	case SigDescrDel:
		return descrDelFunc(func(any, any) error { return ErrEmptySlot })
	case SigCall:
		return callFunc(func(any, Args, Kwargs) (any, error) { return nil, ErrEmptySlot })
	case SigInit:
		return initFunc(func(any, Args, Kwargs) error { return ErrEmptySlot })
	case SigNew:
		return newFunc(func(*Type, Args, Kwargs) (any, error) { return nil, ErrEmptySlot })
	case SigSetItem:
		return setItemFunc(func(any, any, any) error { return ErrEmptySlot })
	case SigDelItem:
		return delItemFunc(func(any, any) error { return ErrEmptySlot })
	}
	faultf("no empty handle for signature %v", s.Sig())
	return nil
}

// emptySlotTable returns a table with every slot holding its sentinel.
func emptySlotTable() slotTable {
	var t slotTable
	for s := Slot(0); s < numSlots; s++ {
		s.fieldValue(&t).Set(reflect.ValueOf(s.emptyHandle()))
	}
	return t
}
