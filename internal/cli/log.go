package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpazik/binder-sub005/internal/chain"
	"github.com/mpazik/binder-sub005/internal/store"
)

// LogEntry is one transaction summary in the log output.
type LogEntry struct {
	ID             int64     `json:"id"`
	Hash           string    `json:"hash"`
	Author         string    `json:"author,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Nodes          int       `json:"nodes"`
	Configurations int       `json:"configurations"`
}

// LogResult is the output payload of the log command.
type LogResult struct {
	Transactions []LogEntry `json:"transactions"`
}

func (r LogResult) String() string {
	if len(r.Transactions) == 0 {
		return "empty log"
	}
	var b strings.Builder
	for i, e := range r.Transactions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d  %s  %s  %s  nodes=%d configurations=%d",
			e.ID, e.Hash[:12], e.CreatedAt.Format(time.RFC3339), e.Author, e.Nodes, e.Configurations)
	}
	return b.String()
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to int64

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "List committed transactions in id order",
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
				return WrapExitError(ExitCommandError, "failed to read log", err)
			}

			result := LogResult{Transactions: make([]LogEntry, 0, len(txs))}
			for _, tx := range txs {
				result.Transactions = append(result.Transactions, summarize(tx))
			}
			return out.Success(result)
		},
	}

	cmd.Flags().Int64Var(&from, "from", 1, "first transaction id to list")
	cmd.Flags().Int64Var(&to, "to", math.MaxInt64, "last transaction id to list")

	return cmd
}

func summarize(tx chain.Transaction) LogEntry {
	return LogEntry{
		ID:             tx.ID,
		Hash:           tx.Hash,
		Author:         tx.Author,
		CreatedAt:      tx.CreatedAt,
		Nodes:          len(tx.Nodes),
		Configurations: len(tx.Configurations),
	}
}
