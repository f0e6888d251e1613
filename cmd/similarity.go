package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/logger"
)

var similarityCmd = &cobra.Command{
	Use:   "similarity",
	Short: "Print how well an uploaded CV matches an uploaded job offer",
	Run: func(cmd *cobra.Command, _ []string) {
		similarity(cmd)
	},
}

func init() {
	rootCmd.AddCommand(similarityCmd)

	similarityCmd.Flags().String("cv-id", "", "identifier of an uploaded CV")
	similarityCmd.Flags().String("job-id", "", "identifier of an uploaded job offer")

	similarityCmd.MarkFlagRequired("cv-id")
	similarityCmd.MarkFlagRequired("job-id")
}

func similarity(cmd *cobra.Command) {
	ctx, stop := signalContext()
	defer stop()

	s := newSession()
	defer s.logger.Sync()

	cvID, _ := cmd.Flags().GetString("cv-id")
	jobID, _ := cmd.Flags().GetString("job-id")

	result, err := s.backend.Similarity(ctx, cvID, jobID)
	if err != nil {
		s.logger.Fatal("computing similarity", append(logger.WizardFields(jobID, cvID, ""), zap.Error(err))...)
	}

	minimum := s.config.Wizard.MinimumSimilarity
	verdict := "eligible for generation"
	if result.Percent() < minimum {
		verdict = "below the minimum"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "similarity: %d%% (minimum %d%%, %s)\n", result.Percent(), minimum, verdict)
}
