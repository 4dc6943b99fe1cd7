// dict.go: insertion-ordered attribute dictionary
//
// Type dictionaries and instance dictionaries preserve the order in which
// names were first inserted. Go's map does not, so the namespace is a map
// paired with a key slice.
package pyrite

import "golang.org/x/exp/slices"

// AttrDict is an ordered mapping from attribute name to descriptor or
// value. The zero value is not ready for use; call NewAttrDict.
type AttrDict struct {
	keys  []string
	items map[string]any
}

func NewAttrDict() *AttrDict {
	return &AttrDict{items: make(map[string]any)}
}

// Get returns the value stored under name, if any.
func (d *AttrDict) Get(name string) (any, bool) {
	v, ok := d.items[name]
	return v, ok
}

// Set stores value under name, keeping the insertion position of an
// existing key.
func (d *AttrDict) Set(name string, value any) {
	if _, ok := d.items[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.items[name] = value
}

// Delete removes name, reporting whether it was present.
func (d *AttrDict) Delete(name string) bool {
	if _, ok := d.items[name]; !ok {
		return false
	}
	delete(d.items, name)
	i := slices.Index(d.keys, name)
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	return true
}

func (d *AttrDict) Len() int { return len(d.items) }

// Keys returns the names in insertion order.
func (d *AttrDict) Keys() []string {
	return slices.Clone(d.keys)
}

// Range calls fn for every entry in insertion order until fn returns
// false.
func (d *AttrDict) Range(fn func(name string, value any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.items[k]) {
			return
		}
	}
}
