package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/runger/git-forge/internal/config"
	"github.com/runger/git-forge/internal/histstore"
	"github.com/runger/git-forge/internal/picker"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past interactive searches",
	Long: `Show searches submitted in past interactive sessions.

Each interactive session records its submitted search lines in a local
SQLite database. This history is separate from the in-session search
history, which always starts empty.

Examples:
  git-forge history             # show recent searches
  git-forge history -n 50
  git-forge history --clear     # delete all recorded searches`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of searches to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded searches")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	paths := config.DefaultPaths()

	store, err := histstore.Open(paths.DatabaseFile())
	if err != nil {
		return err
	}
	defer store.Close()

	if historyClear {
		n, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d recorded searches\n", n)
		return nil
	}

	entries, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded searches")
		return nil
	}
	for _, e := range entries {
		ts := time.UnixMilli(e.TimestampMs).Format("2006-01-02 15:04")
		fmt.Printf("%s  %s\n", ts, e.Query)
	}
	return nil
}

// searchLogger appends submitted search lines to the local history database,
// all under one session ID. The database is opened on the first submit;
// failures only disable logging, they never interrupt the session.
type searchLogger struct {
	session string
	once    sync.Once
	store   *histstore.Store
}

func newSearchLogger() *searchLogger {
	return &searchLogger{session: uuid.NewString()}
}

func (l *searchLogger) record(raw string) {
	l.once.Do(func() {
		paths := config.DefaultPaths()
		s, err := histstore.Open(paths.DatabaseFile())
		if err != nil {
			slog.Warn("search history disabled", "error", err)
			return
		}
		l.store = s
	})
	if l.store == nil {
		return
	}
	if err := l.store.Record(context.Background(), l.session, raw); err != nil {
		slog.Warn("failed to record search", "error", err)
	}
}

func (l *searchLogger) Close() {
	if l.store != nil {
		l.store.Close()
	}
}

// searchLogHook adapts a searchLogger to a picker option.
func searchLogHook[T any](l *searchLogger) picker.Option[T] {
	return picker.WithSubmitHook[T](l.record)
}
