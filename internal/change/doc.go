// Package change implements the changeset algebra: the representation
// of field-level and list-level mutations, normalization of ergonomic
// input shapes, application to a fieldset, merging of consecutive
// changesets (Squash) and undo computation (Inverse).
//
// ValueChange and ListMutation are sealed sum types with exhaustive
// matching; a malformed tuple shape is a construction-time error at
// the normalization boundary, never a runtime surprise inside the
// algebra. All operations are pure: inputs are never mutated and
// results share no structure with them.
package change
