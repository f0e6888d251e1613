package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/history"
	"github.com/achrafdevl/talentbridge/internal/wizard"
)

var downloadCmd = &cobra.Command{
	Use:   "download [generated-id]",
	Short: "Download a tailored CV",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		download(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().BoolP("last", "l", false, "download the most recent generation from history")
	downloadCmd.Flags().String("dir", "", "directory for the document (default is download.dir)")
}

func download(cmd *cobra.Command, args []string) {
	ctx, stop := signalContext()
	defer stop()

	s := newSession()
	defer s.logger.Sync()

	last, _ := cmd.Flags().GetBool("last")

	generatedID, err := resolveGeneratedID(args, last, s.history)
	if err != nil {
		s.logger.Fatal("choosing a document", zap.Error(err))
	}

	lookupGeneration(s.history, generatedID, s.logger)

	cfg := s.config.download()
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Dir = dir
	}

	path, err := wizard.SaveDocument(ctx, s.backend, cfg, generatedID, s.logger)
	if err != nil {
		s.logger.Fatal("downloading document", zap.String("generated_id", generatedID), zap.String("reason", wizard.Describe(err)))
	}

	if s.history != nil {
		if err := s.history.RecordDownload(generatedID, path); err != nil {
			s.logger.Warn("recording download failed", zap.Error(err))
		}
	}

	s.logger.Info("document saved", zap.String("generated_id", generatedID), zap.String("path", path))
	fmt.Fprintln(cmd.OutOrStdout(), path)
}

func resolveGeneratedID(args []string, last bool, store *history.Store) (string, error) {
	switch {
	case len(args) == 1 && last:
		return "", errors.New("pass either a generated id or --last, not both")
	case len(args) == 1:
		return args[0], nil
	case !last:
		return "", errors.New("a generated id or --last is required")
	case store == nil:
		return "", errors.New("history is not available")
	}

	entry, err := store.Last()
	if err != nil {
		return "", err
	}
	return entry.GeneratedID, nil
}

// lookupGeneration logs what history knows about id. Unknown ids are still downloaded.
func lookupGeneration(store *history.Store, id string, logger *zap.Logger) *history.Entry {
	if store == nil {
		return nil
	}

	entry, err := store.FindByID(id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		logger.Warn("generated id is not in history", zap.String("generated_id", id), zap.String("path", store.Path()))
		return nil
	case err != nil:
		logger.Warn("reading history", zap.Error(err))
		return nil
	}

	logger.Info("downloading recorded generation",
		zap.String("generated_id", entry.GeneratedID),
		zap.String("job_id", entry.JobID),
		zap.String("cv_id", entry.CVID),
		zap.Int("similarity", entry.Similarity),
	)
	return entry
}
