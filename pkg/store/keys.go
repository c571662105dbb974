package store

// DefaultPrefix namespaces keys in shared key-value backends.
const DefaultPrefix = "traitforge:"

// Keyer builds backend keys for a set name.
type Keyer struct {
	prefix string
}

// NewKeyer returns a keyer with the given prefix. An empty prefix selects
// [DefaultPrefix].
//
// Scoping a keyer keeps several projects apart on one server:
//
//	k := store.NewKeyer("traitforge:monsters:")
func NewKeyer(prefix string) Keyer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keyer{prefix: prefix}
}

// Prefix returns the key prefix.
func (k Keyer) Prefix() string { return k.prefix }

// SetKey is the key holding the DNA set called name.
func (k Keyer) SetKey(name string) string { return k.prefix + "set:" + name }

// CursorKey is the key holding the checkpoint of the set called name.
func (k Keyer) CursorKey(name string) string { return k.prefix + "cursor:" + name }
