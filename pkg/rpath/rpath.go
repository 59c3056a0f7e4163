/*
Package rpath implements namespaced resource paths.

A resource path has the form "namespace:value" (like "minecraft:item/stick").
Content files reference other content either absolutely ("ns:value"),
relative to their own directory ("./sibling", "../other") or without a
namespace, in which case the namespace of the referencing file is used.
*/
package rpath

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultNamespace is used for identifiers that carry no namespace
const DefaultNamespace = "minecraft"

// NamespacePlaceholder is replaced with the current namespace before a reference is resolved
const NamespacePlaceholder = "<namespace>"

var (
	validNamespace = regexp.MustCompile(`^[a-z0-9._-]+$`)
	validValue     = regexp.MustCompile(`^[a-z0-9/._-]+$`)
)

// InvalidPathError is returned when a path or reference can not be parsed
type InvalidPathError struct {
	Input  string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Input, e.Reason)
}

// Path is a namespaced resource location. The zero value is not a valid path
type Path struct {
	namespace string
	value     string
}

// New returns a validated path
func New(namespace, value string) (Path, error) {
	if !IsValidNamespace(namespace) {
		return Path{}, &InvalidPathError{Input: namespace + ":" + value, Reason: "namespace must match [a-z0-9._-]+"}
	}
	if !IsValidValue(value) {
		return Path{}, &InvalidPathError{Input: namespace + ":" + value, Reason: "value must match [a-z0-9/._-]+"}
	}
	return Path{namespace: namespace, value: value}, nil
}

// MustNew is like New but panics on invalid input. Only use it with constants
func MustNew(namespace, value string) Path {
	p, err := New(namespace, value)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses "namespace:value". Input without a namespace gets the DefaultNamespace
func Parse(s string) (Path, error) {
	return ParseWithFallback(s, DefaultNamespace)
}

// MustParse is like Parse but panics on invalid input
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseWithFallback parses "namespace:value" and uses `namespace` when the input has none
func ParseWithFallback(s string, namespace string) (Path, error) {
	if s == "" {
		return Path{}, &InvalidPathError{Input: s, Reason: "empty"}
	}
	ns, value, found := strings.Cut(s, ":")
	if !found {
		return New(namespace, s)
	}
	if strings.Contains(value, ":") {
		return Path{}, &InvalidPathError{Input: s, Reason: "more than one ':'"}
	}
	p, err := New(ns, value)
	if err != nil {
		return Path{}, &InvalidPathError{Input: s, Reason: err.(*InvalidPathError).Reason}
	}
	return p, nil
}

// IsValidNamespace reports whether ns is allowed as a namespace
func IsValidNamespace(ns string) bool { return validNamespace.MatchString(ns) }

// IsValidValue reports whether v is allowed as a path value
func IsValidValue(v string) bool { return validValue.MatchString(v) }

// Namespace returns the namespace part
func (p Path) Namespace() string { return p.namespace }

// Value returns the part after the colon
func (p Path) Value() string { return p.value }

// IsZero reports whether p is the zero Path
func (p Path) IsZero() bool { return p.namespace == "" && p.value == "" }

func (p Path) String() string {
	if p.IsZero() {
		return ""
	}
	return p.namespace + ":" + p.value
}

// Dir returns the directory portion of the value ("item/sword" -> "item").
// Values without a slash have an empty directory
func (p Path) Dir() string {
	i := strings.LastIndexByte(p.value, '/')
	if i < 0 {
		return ""
	}
	return p.value[:i]
}

// Base returns the last segment of the value
func (p Path) Base() string {
	return p.value[strings.LastIndexByte(p.value, '/')+1:]
}

// Append returns a new path with suffix appended to the value
func (p Path) Append(suffix string) Path {
	return Path{namespace: p.namespace, value: p.value + suffix}
}

// WithValue returns a path in the same namespace
func (p Path) WithValue(value string) (Path, error) {
	return New(p.namespace, value)
}

// TrimSuffix returns the path with suffix removed from the value
func (p Path) TrimSuffix(suffix string) Path {
	return Path{namespace: p.namespace, value: strings.TrimSuffix(p.value, suffix)}
}

// Less orders paths by namespace first, then value
func (p Path) Less(o Path) bool {
	if p.namespace != o.namespace {
		return p.namespace < o.namespace
	}
	return p.value < o.value
}

// Compare returns -1, 0 or 1. Suitable for slices.SortFunc
func Compare(a, b Path) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	default:
		return 1
	}
}

// MarshalText implements encoding.TextMarshaler so paths can be used as JSON map keys
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Resolve turns a reference into an absolute path.
//
// Any "<namespace>" placeholder is substituted first. References starting with
// "./" or "../" are resolved against dir (a slash separated directory inside
// namespace). Everything else is parsed as "ns:value", falling back to namespace.
func Resolve(ref string, namespace string, dir string) (Path, error) {
	if ref == "" {
		return Path{}, &InvalidPathError{Input: ref, Reason: "empty reference"}
	}
	ref = strings.ReplaceAll(ref, NamespacePlaceholder, namespace)

	if !strings.HasPrefix(ref, "./") && !strings.HasPrefix(ref, "../") {
		return ParseWithFallback(ref, namespace)
	}

	segments := make([]string, 0, 8)
	for _, s := range strings.Split(dir, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	for _, s := range strings.Split(ref, "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return Path{}, &InvalidPathError{Input: ref, Reason: "invalid relative path escapes root"}
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return Path{}, &InvalidPathError{Input: ref, Reason: "relative path resolves to nothing"}
	}
	p, err := New(namespace, strings.Join(segments, "/"))
	if err != nil {
		return Path{}, &InvalidPathError{Input: ref, Reason: err.(*InvalidPathError).Reason}
	}
	return p, nil
}

// ResolveFrom resolves ref relative to the file identified by from
func ResolveFrom(ref string, from Path) (Path, error) {
	return Resolve(ref, from.namespace, from.Dir())
}
