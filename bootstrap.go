// bootstrap.go: two-phase construction of the built-in type system
//
// The built-in types refer to one another from the start: object's
// dictionary holds get-set descriptors, whose type subclasses object;
// type's metatype is type itself. The circularity is broken by building
// in two global passes. Phase one creates every shell, fixing names,
// bases, MROs and registry entries while all dictionaries stay empty.
// Phase two fills the dictionaries base-first, so each type derives its
// slot table from completed ancestors.
//
// ensureTypes runs the bootstrap exactly once; every public entry point
// of the package goes through it.
package pyrite

import (
	"math/big"
	"sync"
)

var (
	ObjectType        *Type
	TypeType          *Type
	NoneType          *Type
	StrType           *Type
	IntType           *Type
	BoolType          *Type
	FloatType         *Type
	TupleType         *Type
	MappingProxyType  *Type
	BaseExceptionType *Type

	MemberDescrType   *Type
	GetSetDescrType   *Type
	WrapperDescrType  *Type
	MethodDescrType   *Type
	MethodWrapperType *Type
	BoundMethodType   *Type
)

var bootstrapOnce sync.Once

func ensureTypes() { bootstrapOnce.Do(bootstrap) }

// Builtins constructs the built-in type system if needed and returns the
// public built-in types in bootstrap order. The exported type variables
// are nil until the first runtime entry point runs; code that starts by
// reading them directly (an embedding tool, say) calls Builtins first.
func Builtins() []*Type {
	ensureTypes()
	return []*Type{
		ObjectType,
		TypeType,
		NoneType,
		IntType,
		BoolType,
		FloatType,
		StrType,
		TupleType,
		MappingProxyType,
		BaseExceptionType,
		MemberDescrType,
		GetSetDescrType,
		WrapperDescrType,
		MethodDescrType,
		MethodWrapperType,
		BoundMethodType,
	}
}

// The auxiliary structs naming what each built-in type exposes. The
// field types are the slot handle types; the exposer validates them
// against each dunder's declared signature.

type objectMethods struct {
	Repr         unaryFunc   `py:"__repr__"`
	Str          unaryFunc   `py:"__str__"`
	GetAttribute getattrFunc `py:"__getattribute__"`
	SetAttr      setattrFunc `py:"__setattr__"`
	DelAttr      delattrFunc `py:"__delattr__"`
	New          newFunc     `py:"__new__"`
	Class        GetterFunc  `py:"__class__,getter"`
	Dict         GetterFunc  `py:"__dict__,getter"`
}

type typeMethods struct {
	Repr         unaryFunc   `py:"__repr__"`
	Call         callFunc    `py:"__call__"`
	GetAttribute getattrFunc `py:"__getattribute__"`
	SetAttr      setattrFunc `py:"__setattr__"`
	DelAttr      delattrFunc `py:"__delattr__"`
	New          newFunc     `py:"__new__"`
	Name         GetterFunc  `py:"__name__,getter"`
	MRO          GetterFunc  `py:"__mro__,getter"`
	Bases        GetterFunc  `py:"__bases__,getter"`
	Base         GetterFunc  `py:"__base__,getter"`
	Dict         GetterFunc  `py:"__dict__,getter"`
	Doc          GetterFunc  `py:"__doc__,getter"`
}

type noneMethods struct {
	Repr unaryFunc     `py:"__repr__"`
	Bool predicateFunc `py:"__bool__"`
}

type strMethods struct {
	Repr     unaryFunc     `py:"__repr__"`
	Str      unaryFunc     `py:"__str__"`
	Len      lenFunc       `py:"__len__"`
	Hash     lenFunc       `py:"__hash__"`
	Bool     predicateFunc `py:"__bool__"`
	Contains binPredFunc   `py:"__contains__"`
	GetItem  binaryFunc    `py:"__getitem__"`
	New      newFunc       `py:"__new__"`
}

type strBinops struct {
	Add  binaryFunc `py:"__add__"`
	Mul  binaryFunc `py:"__mul__"`
	RMul binaryFunc `py:"__rmul__"`
	Eq   binaryFunc `py:"__eq__"`
	Ne   binaryFunc `py:"__ne__"`
	Lt   binaryFunc `py:"__lt__"`
	Le   binaryFunc `py:"__le__"`
	Gt   binaryFunc `py:"__gt__"`
	Ge   binaryFunc `py:"__ge__"`
}

type intMethods struct {
	Repr   unaryFunc     `py:"__repr__"`
	Hash   lenFunc       `py:"__hash__"`
	Bool   predicateFunc `py:"__bool__"`
	Neg    unaryFunc     `py:"__neg__"`
	Pos    unaryFunc     `py:"__pos__"`
	Abs    unaryFunc     `py:"__abs__"`
	Invert unaryFunc     `py:"__invert__"`
	Index  unaryFunc     `py:"__index__"`
	Int    unaryFunc     `py:"__int__"`
	Float  unaryFunc     `py:"__float__"`
	New    newFunc       `py:"__new__"`
}

type intBinops struct {
	Add  binaryFunc `py:"__add__"`
	RAdd binaryFunc `py:"__radd__"`
	Sub  binaryFunc `py:"__sub__"`
	RSub binaryFunc `py:"__rsub__"`
	Mul  binaryFunc `py:"__mul__"`
	RMul binaryFunc `py:"__rmul__"`
	Eq   binaryFunc `py:"__eq__"`
	Ne   binaryFunc `py:"__ne__"`
	Lt   binaryFunc `py:"__lt__"`
	Le   binaryFunc `py:"__le__"`
	Gt   binaryFunc `py:"__gt__"`
	Ge   binaryFunc `py:"__ge__"`
}

type boolMethods struct {
	Repr unaryFunc     `py:"__repr__"`
	Bool predicateFunc `py:"__bool__"`
	New  newFunc       `py:"__new__"`
}

type floatMethods struct {
	Repr  unaryFunc     `py:"__repr__"`
	Bool  predicateFunc `py:"__bool__"`
	Neg   unaryFunc     `py:"__neg__"`
	Pos   unaryFunc     `py:"__pos__"`
	Abs   unaryFunc     `py:"__abs__"`
	Float unaryFunc     `py:"__float__"`
	New   newFunc       `py:"__new__"`
}

type floatBinops struct {
	Add  binaryFunc `py:"__add__"`
	RAdd binaryFunc `py:"__radd__"`
	Sub  binaryFunc `py:"__sub__"`
	RSub binaryFunc `py:"__rsub__"`
	Mul  binaryFunc `py:"__mul__"`
	RMul binaryFunc `py:"__rmul__"`
	Eq   binaryFunc `py:"__eq__"`
	Ne   binaryFunc `py:"__ne__"`
	Lt   binaryFunc `py:"__lt__"`
	Le   binaryFunc `py:"__le__"`
	Gt   binaryFunc `py:"__gt__"`
	Ge   binaryFunc `py:"__ge__"`
}

type tupleMethods struct {
	Repr     unaryFunc     `py:"__repr__"`
	Len      lenFunc       `py:"__len__"`
	Bool     predicateFunc `py:"__bool__"`
	Contains binPredFunc   `py:"__contains__"`
	GetItem  binaryFunc    `py:"__getitem__"`
}

type proxyMethods struct {
	Repr     unaryFunc   `py:"__repr__"`
	Len      lenFunc     `py:"__len__"`
	Contains binPredFunc `py:"__contains__"`
	GetItem  binaryFunc  `py:"__getitem__"`
}

type exceptionMethods struct {
	Repr unaryFunc  `py:"__repr__"`
	Str  unaryFunc  `py:"__str__"`
	New  newFunc    `py:"__new__"`
	Args GetterFunc `py:"args,getter"`
}

type memberDescrMethods struct {
	Get      descrGetFunc `py:"__get__"`
	Set      descrSetFunc `py:"__set__"`
	Delete   descrDelFunc `py:"__delete__"`
	Repr     unaryFunc    `py:"__repr__"`
	Name     GetterFunc   `py:"__name__,getter"`
	Objclass GetterFunc   `py:"__objclass__,getter"`
	Doc      GetterFunc   `py:"__doc__,getter"`
}

type getSetDescrMethods struct {
	Get      descrGetFunc `py:"__get__"`
	Set      descrSetFunc `py:"__set__"`
	Delete   descrDelFunc `py:"__delete__"`
	Repr     unaryFunc    `py:"__repr__"`
	Name     GetterFunc   `py:"__name__,getter"`
	Objclass GetterFunc   `py:"__objclass__,getter"`
	Doc      GetterFunc   `py:"__doc__,getter"`
}

type wrapperDescrMethods struct {
	Get      descrGetFunc `py:"__get__"`
	Call     callFunc     `py:"__call__"`
	Repr     unaryFunc    `py:"__repr__"`
	Name     GetterFunc   `py:"__name__,getter"`
	Objclass GetterFunc   `py:"__objclass__,getter"`
	Doc      GetterFunc   `py:"__doc__,getter"`
}

type methodDescrMethods struct {
	Get      descrGetFunc `py:"__get__"`
	Call     callFunc     `py:"__call__"`
	Repr     unaryFunc    `py:"__repr__"`
	Name     GetterFunc   `py:"__name__,getter"`
	Objclass GetterFunc   `py:"__objclass__,getter"`
	Doc      GetterFunc   `py:"__doc__,getter"`
}

type methodWrapperMethods struct {
	Call callFunc   `py:"__call__"`
	Repr unaryFunc  `py:"__repr__"`
	Self GetterFunc `py:"__self__,getter"`
}

type boundMethodMethods struct {
	Call callFunc   `py:"__call__"`
	Repr unaryFunc  `py:"__repr__"`
	Self GetterFunc `py:"__self__,getter"`
}

// bootstrap builds the built-in types. Shells first, in dependency order
// so base pointers resolve; then dictionaries, again base-first so slot
// derivation sees completed ancestors.
func bootstrap() {
	type pending struct {
		spec *Spec
		t    **Type
	}
	var queue []pending

	shell := func(dst **Type, spec *Spec) {
		spec.take()
		*dst = newShell(spec)
		queue = append(queue, pending{spec: spec, t: dst})
	}

	shell(&ObjectType, NewSpec("object", Class[Object]()).
		Doc("The base class of the class hierarchy.").
		Methods(objectMethods{
			Repr:         objectRepr,
			Str:          objectStr,
			GetAttribute: objectGetAttribute,
			SetAttr:      objectSetAttr,
			DelAttr:      objectDelAttr,
			New:          objectNew,
			Class:        objectClassGetter,
			Dict:         objectDictGetter,
		}))

	shell(&TypeType, NewSpec("type", Class[Type]()).
		Base(ObjectType).
		Doc("type(object) -> the object's type\ntype(name, bases, dict) -> a new type").
		Methods(typeMethods{
			Repr:         typeRepr,
			Call:         typeCall,
			GetAttribute: typeGetAttribute,
			SetAttr:      typeSetAttr,
			DelAttr:      typeDelAttr,
			New:          typeNew,
			Name:         typeNameGetter,
			MRO:          typeMROGetter,
			Bases:        typeBasesGetter,
			Base:         typeBaseGetter,
			Dict:         typeDictGetter,
			Doc:          typeDocGetter,
		}))

	// The shells of object and type exist; patch their metatype now so
	// values created during the remaining construction resolve.
	ObjectType.meta = TypeType
	TypeType.meta = TypeType

	shell(&NoneType, NewSpec("NoneType", Class[noneValue]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(noneMethods{Repr: noneRepr, Bool: noneBool}))

	shell(&StrType, NewSpec("str", Class[string]()).
		Base(ObjectType).
		Methods(strMethods{
			Repr:     strRepr,
			Str:      strStr,
			Len:      strLen,
			Hash:     strHash,
			Bool:     strBool,
			Contains: strContains,
			GetItem:  strGetItem,
			New:      strNew,
		}).
		Binops(strBinops{
			Add: strAdd, Mul: strMul, RMul: strRMul,
			Eq: strEq, Ne: strNe, Lt: strLt, Le: strLe, Gt: strGt, Ge: strGe,
		}))

	shell(&IntType, NewSpec("int", Class[int64]()).
		Base(ObjectType).
		Adopt(Class[*big.Int]()).
		Accept(Class[bool]()).
		Methods(intMethods{
			Repr: intRepr, Hash: intHash, Bool: intBool,
			Neg: intNeg, Pos: intPos, Abs: intAbs, Invert: intInvert,
			Index: intIndex, Int: intInt, Float: intFloat,
			New: intNew,
		}).
		Binops(intBinops{
			Add: intAdd, RAdd: intRAdd, Sub: intSub, RSub: intRSub,
			Mul: intMul, RMul: intRMul,
			Eq: intEq, Ne: intNe, Lt: intLt, Le: intLe, Gt: intGt, Ge: intGe,
		}))

	shell(&BoolType, NewSpec("bool", Class[bool]()).
		Base(IntType).
		FlagNot(BaseType).
		Methods(boolMethods{Repr: boolRepr, Bool: boolBool, New: boolNew}))

	shell(&FloatType, NewSpec("float", Class[float64]()).
		Base(ObjectType).
		Operand(Class[int64]()).
		Methods(floatMethods{
			Repr: floatRepr, Bool: floatBool,
			Neg: floatNeg, Pos: floatPos, Abs: floatAbs, Float: floatFloat,
			New: floatNew,
		}).
		Binops(floatBinops{
			Add: floatAdd, RAdd: floatRAdd, Sub: floatSub, RSub: floatRSub,
			Mul: floatMul, RMul: floatRMul,
			Eq: floatEq, Ne: floatNe, Lt: floatLt, Le: floatLe, Gt: floatGt, Ge: floatGe,
		}))

	shell(&TupleType, NewSpec("tuple", Class[[]any]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(tupleMethods{
			Repr: tupleRepr, Len: tupleLen, Bool: tupleBool,
			Contains: tupleContains, GetItem: tupleGetItem,
		}))

	shell(&MappingProxyType, NewSpec("mappingproxy", Class[AttrDict]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(proxyMethods{
			Repr: proxyRepr, Len: proxyLen,
			Contains: proxyContains, GetItem: proxyGetItem,
		}))

	shell(&BaseExceptionType, NewSpec("BaseException", Class[exceptionValue]()).
		Base(ObjectType).
		Doc("Common base class for all exceptions.").
		Methods(exceptionMethods{
			Repr: exceptionRepr, Str: exceptionStr, New: exceptionNew,
			Args: exceptionArgsGetter,
		}))

	shell(&MemberDescrType, NewSpec("member_descriptor", Class[memberDescr]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(memberDescrMethods{
			Get: memberDescrGetSlot, Set: memberDescrSetSlot, Delete: memberDescrDeleteSlot,
			Repr: memberDescrRepr,
			Name: descrNameGetter, Objclass: descrObjclassGetter, Doc: descrDocGetter,
		}))

	shell(&GetSetDescrType, NewSpec("getset_descriptor", Class[getSetDescr]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(getSetDescrMethods{
			Get: getSetDescrGetSlot, Set: getSetDescrSetSlot, Delete: getSetDescrDeleteSlot,
			Repr: getSetDescrRepr,
			Name: descrNameGetter, Objclass: descrObjclassGetter, Doc: descrDocGetter,
		}))

	shell(&WrapperDescrType, NewSpec("wrapper_descriptor", Class[wrapperDescr]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(wrapperDescrMethods{
			Get: wrapperDescrGetSlot, Call: wrapperDescrCallSlot,
			Repr: wrapperDescrRepr,
			Name: descrNameGetter, Objclass: descrObjclassGetter, Doc: descrDocGetter,
		}))

	shell(&MethodDescrType, NewSpec("method_descriptor", Class[methodDescr]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(methodDescrMethods{
			Get: methodDescrGetSlot, Call: methodDescrCallSlot,
			Repr: methodDescrRepr,
			Name: descrNameGetter, Objclass: descrObjclassGetter, Doc: descrDocGetter,
		}))

	shell(&MethodWrapperType, NewSpec("method-wrapper", Class[methodWrapper]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(methodWrapperMethods{
			Call: methodWrapperCallSlot, Repr: methodWrapperRepr,
			Self: methodWrapperSelfGetter,
		}))

	shell(&BoundMethodType, NewSpec("method", Class[boundMethod]()).
		Base(ObjectType).
		FlagNot(BaseType).
		Methods(boundMethodMethods{
			Call: boundMethodCallSlot, Repr: boundMethodRepr,
			Self: boundMethodSelfGetter,
		}))

	// Phase two: the queue is already in base-first order.
	for _, p := range queue {
		(*p.t).fill(p.spec)
	}
}
