package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/chain"
	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Print one transaction in its wire shape",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			tx, err := st.Get(context.Background(), id)
			if errors.Is(err, store.ErrNotFound) {
				_ = out.Failure(err.Error())
				return WrapExitError(ExitFailure, "transaction not found", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read transaction", err)
			}

			// The wire shape is already JSON; print it canonically in
			// both output modes.
			data, err := model.MarshalCanonical(chain.Encode(tx))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode transaction", err)
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
