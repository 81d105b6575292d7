// Package statusmap holds the lookup machinery for translating provider
// status vocabularies into canonical enums. The tables themselves are
// declared next to each adapter; they are data, not control flow, and are
// unit-tested independently.
package statusmap

// Table maps one provider's status strings for one entity onto a canonical
// enum type.
type Table[T ~string] map[string]T

// Map translates raw through the table. Anything not present resolves to
// fallback, the most conservative canonical value for the entity, so an
// unrecognized provider status can never surface as a success.
func (t Table[T]) Map(raw string, fallback T) T {
	if v, ok := t[raw]; ok {
		return v
	}
	return fallback
}

// Outbound maps a canonical vocabulary onto one provider's wire values.
type Outbound[T ~string] map[T]string

// Map translates v outbound. Unmapped canonical values translate to def,
// the provider's "unspecified" vocabulary, rather than being omitted.
func (o Outbound[T]) Map(v T, def string) string {
	if s, ok := o[v]; ok {
		return s
	}
	return def
}
