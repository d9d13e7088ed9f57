package synthesize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sim0n-says/AnalyseFauneQuebec/config"
	"github.com/sim0n-says/AnalyseFauneQuebec/interrupt"
	"github.com/sim0n-says/AnalyseFauneQuebec/log"
	"github.com/sim0n-says/AnalyseFauneQuebec/synth"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "synthesize",
	Short: "summarize the extracted fact sheets.",
	Long:  "summarize every species of the extraction document with a language model.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context())
	},
}

func Run(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return err
	}
	logger, closer, err := log.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	defer closer.Close()
	logger = logger.With(zap.String("run", uuid.NewString()))
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	sc := cfg.Synthesizer
	apiKey := os.Getenv(sc.APIKeyEnv)
	if apiKey == "" {
		return fmt.Errorf("no API key: set %s in the environment or in .env", sc.APIKeyEnv)
	}

	recs, err := synth.Load(sc.Input)
	if err != nil {
		return fmt.Errorf("read extraction document: %w", err)
	}
	logger.Info("extraction document loaded", zap.String("path", sc.Input), zap.Int("records", len(recs)))

	client := synth.NewChatClient(
		synth.WithEndpoint(sc.Endpoint),
		synth.WithAPIKey(apiKey),
		synth.WithModel(sc.Model),
		synth.WithMaxTokens(sc.MaxTokens),
		synth.WithTemperature(sc.Temperature),
		synth.WithClientTimeout(sc.TimeoutDuration()),
		synth.WithClientLogger(logger.Named("chat")),
	)
	store := synth.NewStore(sc.Output, logger.Named("store"))

	coord := interrupt.New(store, interrupt.WithLogger(logger.Named("interrupt")))
	ctx = coord.Watch(ctx)
	defer coord.Stop()

	s := synth.New(client, store, logger.Named("synth"))
	runErr := s.Run(ctx, recs)
	saveErr := coord.Finish()
	if coord.Interrupted() && errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	stats := s.Stats()
	logger.Info("synthesis finished", zap.Int("summarized", stats.Summarized), zap.Int("skipped", stats.Skipped))
	return multierr.Combine(runErr, saveErr)
}
