package ref

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

// ID is a store-assigned sequential entity identifier.
type ID int64

// UID is a globally unique entity identifier. Nodes are addressed by
// uid so independently produced transactions cannot collide.
type UID string

// Key is a human-readable configuration key.
type Key string

// Namespace partitions the entity space. Each namespace fixes the
// canonical reference type for its entities; the types are never mixed.
type Namespace string

const (
	// NamespaceNode holds records addressed by UID.
	NamespaceNode Namespace = "node"

	// NamespaceConfig holds configuration entries addressed by Key.
	NamespaceConfig Namespace = "config"

	// NamespaceTransaction holds the transactions themselves,
	// addressed by sequential id and content hash.
	NamespaceTransaction Namespace = "transaction"
)

// Ref addresses one entity by exactly one concrete representation.
// The zero value is invalid.
type Ref struct {
	id  ID
	uid UID
	key Key
	// kind tracks which representation is set
	kind refKind
}

type refKind uint8

const (
	kindInvalid refKind = iota
	kindID
	kindUID
	kindKey
)

// FromID builds a Ref from a sequential id.
func FromID(id ID) Ref {
	return Ref{id: id, kind: kindID}
}

// FromUID builds a Ref from a globally unique id.
func FromUID(uid UID) Ref {
	return Ref{uid: uid, kind: kindUID}
}

// FromKey builds a Ref from a human-readable key.
func FromKey(key Key) Ref {
	return Ref{key: key, kind: kindKey}
}

// ID returns the sequential id representation, if that is the one set.
func (r Ref) ID() (ID, bool) {
	return r.id, r.kind == kindID
}

// UID returns the uid representation, if that is the one set.
func (r Ref) UID() (UID, bool) {
	return r.uid, r.kind == kindUID
}

// Key returns the key representation, if that is the one set.
func (r Ref) Key() (Key, bool) {
	return r.key, r.kind == kindKey
}

// IsZero reports whether the ref holds no representation.
func (r Ref) IsZero() bool {
	return r.kind == kindInvalid
}

// String returns the serialized form of whichever representation is
// set. Sequential ids render as decimal digits.
func (r Ref) String() string {
	switch r.kind {
	case kindID:
		return strconv.FormatInt(int64(r.id), 10)
	case kindUID:
		return string(r.uid)
	case kindKey:
		return string(r.key)
	default:
		return ""
	}
}

// uidPattern matches the opaque uid shape: a lowercase base36 string of
// at least 8 characters ending in a digit, e.g. "taskAbc1230" style
// identifiers are matched by the broader alnum form below.
var uidPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{7,}[0-9]$`)

// Parse resolves a serialized reference into its concrete
// representation by shape: all-digits is an ID, the opaque uid pattern
// is a UID, anything else is a Key.
func Parse(s string) (Ref, error) {
	if s == "" {
		return Ref{}, fmt.Errorf("empty entity reference")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromID(ID(n)), nil
	}
	if uidPattern.MatchString(s) {
		return FromUID(UID(s)), nil
	}
	return FromKey(Key(s)), nil
}

// ParseIn resolves a serialized reference within a namespace, enforcing
// the namespace's canonical reference type.
func ParseIn(ns Namespace, s string) (Ref, error) {
	r, err := Parse(s)
	if err != nil {
		return Ref{}, err
	}
	switch ns {
	case NamespaceNode:
		if _, ok := r.UID(); !ok {
			return Ref{}, fmt.Errorf("namespace %s requires a uid reference, got %q", ns, s)
		}
	case NamespaceConfig:
		if _, ok := r.Key(); !ok {
			return Ref{}, fmt.Errorf("namespace %s requires a key reference, got %q", ns, s)
		}
	case NamespaceTransaction:
		if _, ok := r.ID(); !ok {
			return Ref{}, fmt.Errorf("namespace %s requires a sequential id reference, got %q", ns, s)
		}
	default:
		return Ref{}, fmt.Errorf("unknown namespace %q", ns)
	}
	return r, nil
}

// NewUID generates a fresh uid for a created node. The uid is derived
// from a random UUID: a leading letter, the hex digits, and a trailing
// checksum digit so the result always matches the opaque uid shape.
func NewUID() UID {
	u := uuid.New()
	buf := make([]byte, 0, 34)
	buf = append(buf, 'n')
	var sum int
	for _, b := range u {
		sum += int(b)
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0f])
	}
	buf = append(buf, byte('0'+sum%10))
	return UID(buf)
}

const hexDigits = "0123456789abcdef"
