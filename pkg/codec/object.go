package codec

// Object is a string-keyed mapping that preserves insertion order.
//
// JSON objects decode into an Object so that key order observed on the wire
// is the order reported by Keys. Setting an existing key replaces its value
// without moving it.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty ordered mapping.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores value under key, appending the key on first use.
func (o *Object) Set(key string, value any) {
	if _, seen := o.values[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key and whether the key exists.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key exists.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}
