package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List tailored CVs generated so far",
	Run: func(cmd *cobra.Command, _ []string) {
		listHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func listHistory(cmd *cobra.Command) {
	s := newSession()
	defer s.logger.Sync()

	if s.history == nil {
		s.logger.Fatal("history is not available")
	}

	entries, err := s.history.Entries()
	if err != nil {
		s.logger.Fatal("reading history", zap.Error(err))
	}

	if len(entries) == 0 {
		s.logger.Info("history is empty", zap.String("path", s.history.Path()))
		return
	}

	if err := printHistory(cmd.OutOrStdout(), entries); err != nil {
		s.logger.Fatal("printing history", zap.Error(err))
	}
}

func printHistory(out io.Writer, entries []*history.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "CREATED\tGENERATED ID\tSIMILARITY\tJOB ID\tCV ID\tFILE")
	for _, e := range entries {
		file := e.File
		if file == "" {
			file = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.GeneratedID,
			e.Similarity,
			e.JobID,
			e.CVID,
			file,
		)
	}

	return w.Flush()
}
