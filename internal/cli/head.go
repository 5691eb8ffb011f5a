package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/store"
)

// HeadResult is the output payload of the head command.
type HeadResult struct {
	ID   int64  `json:"id"`
	Hash string `json:"hash"`
}

func (r HeadResult) String() string {
	return fmt.Sprintf("%d %s", r.ID, r.Hash)
}

// NewHeadCommand creates the head command.
func NewHeadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "head",
		Short:         "Print the id and hash of the latest transaction",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			st, err := store.Open(rootOpts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			id, hash, err := st.Head(context.Background())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read head", err)
			}
			return out.Success(HeadResult{ID: id, Hash: hash})
		},
	}
}
