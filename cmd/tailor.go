package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/console"
	"github.com/achrafdevl/talentbridge/internal/wizard"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a CV to a job offer, step by step",
	Run: func(_ *cobra.Command, _ []string) {
		tailor()
	},
}

func init() {
	rootCmd.AddCommand(tailorCmd)

	tailorCmd.Flags().Bool("clear-on-back", false, "forget identifiers of later steps when going back")
	tailorCmd.Flags().String("download-dir", "", "directory for downloaded documents")

	viper.BindPFlag("wizard.clear-on-back", tailorCmd.Flags().Lookup("clear-on-back"))
	viper.BindPFlag("download.dir", tailorCmd.Flags().Lookup("download-dir"))
}

// tailor runs the interactive wizard.
func tailor() {
	ctx, stop := signalContext()
	defer stop()

	s := newSession()
	defer s.logger.Sync()

	s.logger.Info("starting the talentbridge wizard", zap.String("version", version))

	controller, err := buildWizard(ctx, s, console.NewPrompter(), console.NewView(os.Stdout))
	if err != nil {
		s.logger.Fatal("building the wizard", zap.Error(err))
	}

	if err := controller.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		}
		s.logger.Fatal("wizard failed", zap.Error(err))
	}
}

func buildWizard(ctx context.Context, s *session, prompter wizard.Prompter, view wizard.View) (*wizard.Controller, error) {
	offer := wizard.NewOfferStage(s.backend, prompter, view, s.logger)
	cv := wizard.NewCVStage(s.backend, prompter, view, s.logger)
	processing := wizard.NewProcessingStage(s.backend, prompter, view, s.config.processing(), s.logger)
	result := wizard.NewResultStage(s.backend, prompter, view, s.config.download(), s.logger)

	if s.history != nil {
		processing.WithRecorder(s.history)
		result.WithRecorder(s.history)
	}

	advise, err := newAdviseFunc(ctx, s.config.AI, offer, cv, s.logger)
	switch {
	case err != nil:
		s.logger.Warn("skipping rejection advisor", zap.Error(err))
	case advise != nil:
		processing.WithAdvisor(advise)
	}

	controller, err := wizard.NewController(s.logger, offer, cv, processing, result)
	if err != nil {
		return nil, err
	}
	controller.ClearOnBack = s.config.Wizard.ClearOnBack

	return controller, nil
}
