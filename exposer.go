// exposer.go: descriptor factory
//
// The exposer turns an implementation class and the Spec's auxiliary
// structs into the descriptors installed in a new type's dictionary.
//
// Members are discovered on the canonical implementation struct through
// `py` field tags:
//
//	type pointImpl struct {
//	    X    float64 `py:"x"`
//	    Name *string `py:"name,optional"`
//	    ID   int64   `py:"id,readonly"`
//	}
//
// Exposed callables are discovered on the Spec's method structs, whose
// fields hold the functions and whose tags name them:
//
//	type pointMethods struct {
//	    Repr unaryFunc  `py:"__repr__"`         // special method
//	    Mag  GetterFunc `py:"magnitude,getter"` // get-set part
//	    Move MethodFunc `py:"move"`             // plain method
//	}
//
// Any structural problem (an unsupported field type, an unknown dunder,
// a get-set group without a getter, a duplicate name) is a defect in the
// implementation class and faults at type-build time.
package pyrite

import (
	"reflect"
	"strings"
)

type dictEntry struct {
	name  string
	value any
}

// exposeAll produces the complete, ordered dictionary content for a type
// under construction: member descriptors first, then the callables of
// each method struct in declaration order.
func exposeAll(spec *Spec, t *Type) []dictEntry {
	entries := exposeMembers(spec.impl, t)
	for _, aux := range spec.methodStructs {
		entries = append(entries, exposeCallables(aux, t, false)...)
	}
	for _, aux := range spec.binopStructs {
		entries = append(entries, exposeCallables(aux, t, true)...)
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.name] {
			faultf("duplicate attribute '%s' exposed on '%s'", e.name, t.name)
		}
		seen[e.name] = true
	}
	return entries
}

// exposeMembers scans the direct fields of the implementation struct for
// `py` tags and manufactures one member descriptor per marked field.
// Embedded structs are not descended into: their members belong to the
// base type and are found along the MRO.
func exposeMembers(impl reflect.Type, t *Type) []dictEntry {
	st := impl
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil
	}
	var entries []dictEntry
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup("py")
		if !ok || f.Anonymous {
			continue
		}
		name, opts := splitTag(tag)
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		d := &memberDescr{
			descrBase: descrBase{objclass: t, name: name},
			field:     f.Index,
			kind:      memberKindOf(f.Type, t, f.Name),
		}
		for _, opt := range opts {
			switch opt {
			case "readonly":
				d.readonly = true
			case "optional":
				d.optional = true
			default:
				faultf("unknown member option '%s' on %s.%s", opt, t.name, f.Name)
			}
		}
		if d.optional && !d.kind.reference() {
			faultf("member %s.%s: only reference members may be optional", t.name, f.Name)
		}
		entries = append(entries, dictEntry{name: name, value: d})
	}
	return entries
}

func memberKindOf(ft reflect.Type, t *Type, fieldName string) memberKind {
	switch ft.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return memberInt
	case reflect.Float64:
		return memberFloat
	case reflect.Bool:
		return memberBool
	case reflect.String:
		return memberString
	case reflect.Pointer:
		if ft.Elem().Kind() == reflect.String {
			return memberStringRef
		}
	case reflect.Interface:
		if ft.NumMethod() == 0 {
			return memberObject
		}
	}
	faultf("member %s.%s has unsupported field type %v", t.name, fieldName, ft)
	return 0
}

// exposeCallables scans one auxiliary struct. Nil fields are treated as
// absent (a group simply lacks that part). binopsOnly restricts the struct
// to binary special methods.
func exposeCallables(aux any, t *Type, binopsOnly bool) []dictEntry {
	rv := reflect.ValueOf(aux)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		faultf("methods value for '%s' must be a struct, got %T", t.name, aux)
	}
	st := rv.Type()

	var entries []dictEntry
	getsets := map[string]*getSetDescr{}

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup("py")
		if !ok {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() != reflect.Func {
			faultf("exposed field %s.%s is not a function", t.name, f.Name)
		}
		if fv.IsNil() {
			continue
		}
		name, opts := splitTag(tag)
		if name == "" {
			faultf("exposed field %s.%s has no attribute name", t.name, f.Name)
		}

		role := ""
		for _, opt := range opts {
			switch opt {
			case "getter", "setter", "deleter":
				if role != "" {
					faultf("exposed field %s.%s has two roles", t.name, f.Name)
				}
				role = opt
			default:
				faultf("unknown option '%s' on %s.%s", opt, t.name, f.Name)
			}
		}

		if role != "" {
			gs := getsets[name]
			if gs == nil {
				gs = &getSetDescr{descrBase: descrBase{objclass: t, name: name}}
				getsets[name] = gs
				entries = append(entries, dictEntry{name: name, value: gs})
			}
			switch role {
			case "getter":
				if gs.get != nil {
					faultf("two getters for attribute '%s' on '%s'", name, t.name)
				}
				gs.get = convertHandle(fv, reflect.TypeOf(GetterFunc(nil)), t, f.Name).(GetterFunc)
			case "setter":
				if gs.set != nil {
					faultf("two setters for attribute '%s' on '%s'", name, t.name)
				}
				gs.set = convertHandle(fv, reflect.TypeOf(SetterFunc(nil)), t, f.Name).(SetterFunc)
			case "deleter":
				if gs.del != nil {
					faultf("two deleters for attribute '%s' on '%s'", name, t.name)
				}
				gs.del = convertHandle(fv, reflect.TypeOf(DeleterFunc(nil)), t, f.Name).(DeleterFunc)
			}
			continue
		}

		if isDunderName(name) {
			slot, known := forDunderName(name)
			if !known {
				faultf("'%s' is not a recognised special method (%s.%s)", name, t.name, f.Name)
			}
			if binopsOnly && slot.Sig() != SigBinary {
				faultf("binops struct for '%s' may only hold binary methods, not %s", t.name, name)
			}
			wrapped := convertHandle(fv, slot.handleType(), t, f.Name)
			entries = append(entries, dictEntry{name: name, value: &wrapperDescr{
				descrBase: descrBase{objclass: t, name: name},
				slot:      slot,
				wrapped:   wrapped,
			}})
			continue
		}

		if binopsOnly {
			faultf("binops struct for '%s' may only hold special methods, got '%s'", t.name, name)
		}
		meth := convertHandle(fv, reflect.TypeOf(MethodFunc(nil)), t, f.Name).(MethodFunc)
		entries = append(entries, dictEntry{name: name, value: &methodDescr{
			descrBase: descrBase{objclass: t, name: name},
			meth:      meth,
		}})
	}

	for name, gs := range getsets {
		if gs.get == nil {
			faultf("get-set attribute '%s' on '%s' has no getter", name, t.name)
		}
	}
	return entries
}

// convertHandle checks an exposed function against the required handle
// type and converts it (the declared field type may be an equivalent
// unnamed func type).
func convertHandle(fv reflect.Value, want reflect.Type, t *Type, fieldName string) any {
	if !fv.Type().ConvertibleTo(want) {
		faultf("exposed field %s.%s has signature %v, want %v",
			t.name, fieldName, fv.Type(), want)
	}
	return fv.Convert(want).Interface()
}

func splitTag(tag string) (name string, opts []string) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return name, opts
}
