package change

import (
	"github.com/mpazik/binder-sub005/internal/model"
)

// Squash merges two chronologically ordered changesets into one whose
// application is equivalent to applying older then newer. Inputs are
// not modified.
//
// Per-field rules over the union of keys:
//
//  1. A field present on one side only is carried through.
//  2. A Set or Clear in newer wins outright: a full replace cannot be
//     composed with anything that came before it.
//  3. Set or Clear in older followed by Seq in newer composes at
//     merge time: the list edits are applied to the value older
//     established, producing a single Set. Keeping only the Seq would
//     lose older's replacement and break the equivalence law.
//  4. Seq followed by Seq concatenates, older's mutations first. No
//     retroactive cancellation is attempted: an insert later removed
//     stays as two mutations, which is still equivalent under Apply.
//  5. Patch followed by Patch squashes the nested changesets
//     recursively; Set or Clear followed by Patch composes at merge
//     time like rule 3.
//  6. Patch colliding with Seq on the same field is a modeling error
//     in the caller; the newer side wins (same as rule 2).
func Squash(older, newer Changeset) Changeset {
	out := make(Changeset, len(older)+len(newer))

	for field, oc := range older {
		if _, touched := newer[field]; !touched {
			out[field] = cloneValueChange(oc)
		}
	}

	for field, nc := range newer {
		oc, present := older[field]
		if !present {
			out[field] = cloneValueChange(nc)
			continue
		}
		out[field] = squashField(oc, nc)
	}

	return out
}

func squashField(older, newer ValueChange) ValueChange {
	switch nc := newer.(type) {
	case Set, Clear:
		return cloneValueChange(newer)

	case Seq:
		switch oc := older.(type) {
		case Seq:
			muts := make([]ListMutation, 0, len(oc.Mutations)+len(nc.Mutations))
			for _, m := range oc.Mutations {
				muts = append(muts, cloneMutation(m))
			}
			for _, m := range nc.Mutations {
				muts = append(muts, cloneMutation(m))
			}
			return Seq{Mutations: muts}

		case Set:
			base, ok := oc.Value.(model.Array)
			if ok {
				if composed, err := applyMutations("", model.Clone(base).(model.Array), nc.Mutations); err == nil {
					return Set{Value: composed}
				}
			}
			// List edits on a non-array replacement is a caller
			// modeling error; the newer side wins.
			return cloneValueChange(newer)

		case Clear:
			if composed, err := applyMutations("", model.Array{}, nc.Mutations); err == nil {
				return Set{Value: composed}
			}
			return cloneValueChange(newer)

		default:
			// Patch followed by Seq: modeling error, newer wins.
			return cloneValueChange(newer)
		}

	case Patch:
		switch oc := older.(type) {
		case Patch:
			return Patch{Nested: Squash(oc.Nested, nc.Nested)}

		case Set:
			base, ok := oc.Value.(model.Object)
			if ok {
				if patched, err := Apply(nc.Nested, model.Fieldset(base)); err == nil {
					return Set{Value: model.Object(patched)}
				}
			}
			// Patch on a non-object replacement is a caller modeling
			// error; the newer side wins.
			return cloneValueChange(newer)

		case Clear:
			if patched, err := Apply(nc.Nested, model.Fieldset{}); err == nil {
				return Set{Value: model.Object(patched)}
			}
			return cloneValueChange(newer)

		default:
			// Seq followed by Patch: modeling error, newer wins.
			return cloneValueChange(newer)
		}

	default:
		panic("unknown ValueChange variant")
	}
}
