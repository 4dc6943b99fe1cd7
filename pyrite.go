// Package pyrite is an object runtime in the Python mould: types built
// from slot tables and dictionaries of descriptors, a representation
// registry mapping Go types onto Python ones, and the attribute
// resolution rules that tie them together.
//
// The package exposes three layers. TypeOf and the abstract operations
// (GetAttr, Call, Add, ...) are the dispatch surface an interpreter
// calls. FromSpec and Spec build new types out of tagged Go structs.
// The built-in types (object, type, int, str, ...) come up once, on
// first use, through a two-phase bootstrap.
package pyrite

// Version of the runtime.
const Version = "0.1.0"
