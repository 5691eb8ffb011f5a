// Package model provides the field value types shared by every other
// internal package: a sealed JSON-like Value sum type, the Fieldset
// holding one entity's materialized state, and RFC 8785 canonical JSON
// serialization for content hashing.
//
// This package imports nothing internal; all other internal packages
// may import it. Key constraints:
//   - No float values anywhere - integers only, for hash determinism
//   - Object iteration is deterministic via SortedKeys (UTF-16 order)
//   - MarshalCanonical is the only serialization allowed as hash input
package model
