package cache

import (
	"fmt"
	"sort"
	"strings"
)

const keySeparator = ":"

// Key identifies a cached computation by a prefix, its positional arguments and its named arguments.
//
// Arguments are compared through their fmt.Sprint representation, so two arguments with
// the same string form produce the same key.
type Key struct {
	Prefix string
	Args   []any
	Named  map[string]any
}

// NewKey returns a Key for prefix and the positional arguments args.
func NewKey(prefix string, args ...any) Key {
	return Key{Prefix: prefix, Args: args}
}

// With returns a copy of the Key with the named argument name set to value.
func (k Key) With(name string, value any) Key {
	named := make(map[string]any, len(k.Named)+1)
	for n, v := range k.Named {
		named[n] = v
	}
	named[name] = value
	k.Named = named
	return k
}

// String renders the key as prefix:arg1:arg2:name1=value1:name2=value2,
// with named arguments sorted by name.
func (k Key) String() string {
	return MakeKey(k.Prefix, k.Args, k.Named)
}

// MakeKey derives the cache key string for prefix, positional args and named args.
func MakeKey(prefix string, args []any, named map[string]any) string {
	parts := make([]string, 0, 1+len(args)+len(named))
	parts = append(parts, prefix)
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, named[name]))
	}
	return strings.Join(parts, keySeparator)
}
