package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/chain"
	"github.com/mpazik/binder-sub005/internal/store"
)

// RevertResult is the output payload of a successful revert.
type RevertResult struct {
	Reverted int64  `json:"reverted"`
	ID       int64  `json:"id"`
	Hash     string `json:"hash"`
}

func (r RevertResult) String() string {
	return fmt.Sprintf("reverted transaction %d as transaction %d %s", r.Reverted, r.ID, r.Hash)
}

// NewRevertCommand creates the revert command. The target transaction
// stays in the log; its inverse is appended as a new transaction at the
// head.
func NewRevertCommand(rootOpts *RootOptions) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "revert <id>",
		Short: "Append the inverse of a transaction",
		Long: `Compute the inverse of a committed transaction against the state the
chain had just before it, and append the inverse as a new transaction.
Reverting the head restores the previous state exactly; reverting an
older transaction undoes only its changes, leaving later ones intact.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "transaction id must be an integer", err)
			}

			st, err := store.Open(rootOpts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			target, err := st.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				_ = out.Failure(err.Error())
				return WrapExitError(ExitFailure, "transaction not found", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read transaction", err)
			}

			// Prior state is the chain as of the transaction before the
			// target, so the inverse restores exactly what it changed.
			prior, err := st.Materialize(ctx, id-1)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to materialize prior state", err)
			}

			inv, err := chain.Invert(target, prior, author, time.Now().UTC())
			if err != nil {
				_ = out.Failure(err.Error())
				return WrapExitError(ExitFailure, "failed to invert transaction", err)
			}

			headID, headHash, err := st.Head(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read head", err)
			}
			inv.Previous = headHash
			hashed, err := chain.WithHash(inv, headID+1)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to hash transaction", err)
			}

			if err := st.Append(ctx, hashed); err != nil {
				if store.IsConflict(err) {
					_ = out.Failure(err.Error())
					return WrapExitError(ExitFailure, "head moved during revert", err)
				}
				return WrapExitError(ExitCommandError, "failed to append transaction", err)
			}

			return out.Success(RevertResult{Reverted: id, ID: hashed.ID, Hash: hashed.Hash})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author recorded on the inverse transaction")

	return cmd
}
