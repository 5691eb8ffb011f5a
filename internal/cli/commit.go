package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/chain"
	"github.com/mpazik/binder-sub005/internal/ref"
	"github.com/mpazik/binder-sub005/internal/schema"
	"github.com/mpazik/binder-sub005/internal/store"
)

// commitRetries bounds the optimistic-concurrency retry loop.
const commitRetries = 3

// CommitOptions holds flags for the commit command.
type CommitOptions struct {
	*RootOptions
	File   string
	Author string
	Schema string
}

// CommitResult is the output payload of a successful commit.
type CommitResult struct {
	ID   int64  `json:"id"`
	Hash string `json:"hash"`
}

func (r CommitResult) String() string {
	return fmt.Sprintf("committed transaction %d %s", r.ID, r.Hash)
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit a change file as a new transaction",
		Long: `Normalize a YAML change file into a transaction and append it to the log.

The transaction links to the current head; if another writer commits
first, the commit is rebuilt against the new head and retried.

Examples:
  binder commit --file changes.yaml --author alice
  binder commit --file changes.yaml --author alice --schema fields.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "path to YAML change file (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().StringVar(&opts.Author, "author", "", "author recorded on the transaction")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to CUE schema for field validation")

	return cmd
}

func runCommit(opts *CommitOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cf, err := LoadChangeFile(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load change file", err)
	}

	author := opts.Author
	if author == "" {
		author = cf.Author
	}

	var provider schema.Provider
	if opts.Schema != "" {
		reg, err := schema.LoadFile(opts.Schema)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load schema", err)
		}
		provider = reg
	}

	entities, err := cf.Entities(provider)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to normalize changes", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	for attempt := 0; attempt < commitRetries; attempt++ {
		headID, headHash, err := st.Head(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read head", err)
		}
		opts.Logger.Debug("building transaction", "head", headID, "attempt", attempt+1)

		tx, err := chain.Build(headHash, author, time.Now().UTC(), entities, ref.NewUID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build transaction", err)
		}
		hashed, err := chain.WithHash(tx, headID+1)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to hash transaction", err)
		}

		err = st.Append(ctx, hashed)
		if err == nil {
			return out.Success(CommitResult{ID: hashed.ID, Hash: hashed.Hash})
		}
		if !store.IsConflict(err) {
			return WrapExitError(ExitCommandError, "failed to append transaction", err)
		}
		opts.Logger.Debug("head moved, retrying", "error", err)
	}

	_ = out.Failure("commit conflict persisted after retries")
	return NewExitError(ExitFailure, "commit conflict persisted after retries")
}
