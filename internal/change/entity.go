package change

import (
	"github.com/mpazik/binder-sub005/internal/ref"
)

// EntityChangeset is a changeset tagged with how the entity it targets
// is addressed. A Create gets its uid assigned by whoever assembles
// the transaction, never here.
type EntityChangeset interface {
	entityChangeset() // sealed
}

// Create introduces a new entity of the given type. Key is only set
// for configuration entries, which are addressed by key.
type Create struct {
	Type   string
	Key    ref.Key
	Fields Changeset
}

func (Create) entityChangeset() {}

// Update modifies an existing entity addressed by Ref.
type Update struct {
	Ref    ref.Ref
	Fields Changeset
}

func (Update) entityChangeset() {}
