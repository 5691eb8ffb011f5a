package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/store"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute every hash and previous link in the log",
		Long: `Replay the whole log, recomputing each transaction's content hash and
checking its link to the one before. The first mismatch fails the
command; a corrupted log is reported, never repaired.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			st, err := store.Open(rootOpts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			if err := st.VerifyChain(context.Background()); err != nil {
				_ = out.Failure(err.Error())
				return WrapExitError(ExitFailure, "chain verification failed", err)
			}
			return out.Success("chain verified")
		},
	}
}
