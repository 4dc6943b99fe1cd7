// typespec.go: declarative specification of a type under construction
//
// A Spec is the one input to FromSpec. Built-in types configure one in
// their setup code; user code can do the same. The fluent mutators collect
// the name, the implementation class(es), bases, flags, and the auxiliary
// structs whose tagged fields expose methods, get-sets and special methods
// (see exposer.go for the scanning rules). A Spec is consumed exactly once.
package pyrite

import "reflect"

// Class returns the reflect.Type used to identify an implementation class
// in Specs and the representation registry.
func Class[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// MethodFunc is the shape of a plain exposed method: self plus the call
// arguments.
type MethodFunc func(self any, args Args, kwargs Kwargs) (any, error)

// GetterFunc, SetterFunc and DeleterFunc are the shapes of the three parts
// of a get-set attribute.
type (
	GetterFunc  func(self any) (any, error)
	SetterFunc  func(self, value any) error
	DeleterFunc func(self any) error
)

// Spec collects the description of a type before construction.
type Spec struct {
	name string
	impl reflect.Type // canonical implementation class

	adopted  []reflect.Type
	accepted []reflect.Type
	operands []reflect.Type

	bases []*Type
	flags TypeFlags
	meta  *Type
	doc   string

	methodStructs []any // structs with exposed-callable fields
	binopStructs  []any // same, restricted to binary special methods

	consumed bool
}

// NewSpec begins a specification for a type whose canonical implementation
// class is impl (obtain it with Class[T]()).
func NewSpec(name string, impl reflect.Type) *Spec {
	return &Spec{name: name, impl: impl, flags: BaseType}
}

// Adopt adds alternative canonical representations of the type. The index
// order of adopted classes is fixed by call order.
func (s *Spec) Adopt(classes ...reflect.Type) *Spec {
	s.adopted = append(s.adopted, classes...)
	return s
}

// Accept adds classes acceptable as self for this type's methods without
// being representations of it (e.g. bool for int operations).
func (s *Spec) Accept(classes ...reflect.Type) *Spec {
	s.accepted = append(s.accepted, classes...)
	return s
}

// Operand adds classes acceptable only as the right-hand operand of the
// type's binary operations.
func (s *Spec) Operand(classes ...reflect.Type) *Spec {
	s.operands = append(s.operands, classes...)
	return s
}

// Base appends a base type. Several bases may be declared; anything beyond
// one is rejected at MRO construction, not here.
func (s *Spec) Base(t *Type) *Spec {
	s.bases = append(s.bases, t)
	return s
}

// Flag adds a characteristic flag.
func (s *Spec) Flag(f TypeFlags) *Spec {
	s.flags |= f
	return s
}

// FlagNot removes a characteristic flag (e.g. BaseType for final types).
func (s *Spec) FlagNot(f TypeFlags) *Spec {
	s.flags &^= f
	return s
}

// Metatype overrides the type of the constructed type object.
func (s *Spec) Metatype(t *Type) *Spec {
	s.meta = t
	return s
}

func (s *Spec) Doc(doc string) *Spec {
	s.doc = doc
	return s
}

// Methods supplies an auxiliary struct whose tagged fields hold the
// exposed callables of the type: special methods, plain methods and
// get-set parts. May be called more than once.
func (s *Spec) Methods(aux any) *Spec {
	s.methodStructs = append(s.methodStructs, aux)
	return s
}

// Binops supplies an auxiliary struct restricted to binary special
// methods (class-specific operand handling).
func (s *Spec) Binops(aux any) *Spec {
	s.binopStructs = append(s.binopStructs, aux)
	return s
}

// getBases resolves the declared bases, defaulting to [object] for every
// type except the root object type itself.
func (s *Spec) getBases() []*Type {
	if len(s.bases) == 0 {
		if ObjectType == nil {
			// Bootstrapping the root: object has no base.
			return nil
		}
		return []*Type{ObjectType}
	}
	return s.bases
}

// operandClasses assembles the combined operand-class array: canonical
// first, then adopted, accepted, and plain operand classes. Index
// positions are stable for the life of the type.
func (s *Spec) operandClasses() []reflect.Type {
	classes := make([]reflect.Type, 0, 1+len(s.adopted)+len(s.accepted)+len(s.operands))
	classes = append(classes, s.impl)
	classes = append(classes, s.adopted...)
	classes = append(classes, s.accepted...)
	classes = append(classes, s.operands...)
	for i, c := range classes {
		for _, d := range classes[:i] {
			if c == d {
				faultf("class %v appears twice in spec for '%s'", c, s.name)
			}
		}
	}
	return classes
}

// take marks the Spec consumed; a second consumption is a defect.
func (s *Spec) take() {
	if s.consumed {
		faultf("spec for '%s' used twice", s.name)
	}
	s.consumed = true
}
