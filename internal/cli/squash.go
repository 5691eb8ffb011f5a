package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/chain"
	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/store"
)

// NewSquashCommand creates the squash command. It compacts a window of
// the log into one equivalent transaction and prints it; the log itself
// is never rewritten.
func NewSquashCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to int64

	cmd := &cobra.Command{
		Use:   "squash",
		Short: "Compact a window of transactions into one and print it",
		Long: `Fold a consecutive window of transactions into a single transaction
with the same net effect. The squashed transaction keeps the window's
place in the chain and is printed in wire shape; the stored log is not
modified.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			st, err := store.Open(rootOpts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			txs, err := st.Range(context.Background(), from, to)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read window", err)
			}
			if len(txs) == 0 {
				_ = out.Failure("no transactions in window")
				return NewExitError(ExitFailure, "no transactions in window")
			}

			squashed, err := chain.Squash(txs)
			if err != nil {
				_ = out.Failure(err.Error())
				return WrapExitError(ExitFailure, "failed to squash window", err)
			}

			data, err := model.MarshalCanonical(chain.Encode(squashed))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode transaction", err)
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}

	cmd.Flags().Int64Var(&from, "from", 0, "first transaction id in the window (required)")
	cmd.Flags().Int64Var(&to, "to", 0, "last transaction id in the window (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
