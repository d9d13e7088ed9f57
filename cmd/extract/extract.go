package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sim0n-says/AnalyseFauneQuebec/config"
	"github.com/sim0n-says/AnalyseFauneQuebec/engine"
	"github.com/sim0n-says/AnalyseFauneQuebec/interrupt"
	"github.com/sim0n-says/AnalyseFauneQuebec/limiter"
	"github.com/sim0n-says/AnalyseFauneQuebec/log"
	"github.com/sim0n-says/AnalyseFauneQuebec/proxy"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/sim0n-says/AnalyseFauneQuebec/storage"
	"github.com/sim0n-says/AnalyseFauneQuebec/storage/sqlstorage"
	"github.com/sim0n-says/AnalyseFauneQuebec/storage/xmlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "crawl the species fact sheets into an XML document.",
	Long:  "crawl the species fact sheets into an XML document.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context())
	},
}

func Run(ctx context.Context) (err error) {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return err
	}
	logger, closer, err := log.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	defer closer.Close()
	runID := uuid.NewString()
	logger = logger.With(zap.String("run", runID))
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	f, err := NewFetcher(cfg.Fetcher, logger.Named("fetcher"))
	if err != nil {
		return err
	}

	xmlStore, err := xmlstorage.New(
		xmlstorage.WithPath(cfg.Output.Path),
		xmlstorage.WithRoot(cfg.Output.Root),
		xmlstorage.WithLogger(logger.Named("xmlstorage")),
	)
	if err != nil {
		return err
	}
	stores := []spider.Storage{xmlStore}
	if cfg.Storage.SQLDriver != "" {
		sqlStore, err := sqlstorage.New(
			sqlstorage.WithDriver(cfg.Storage.SQLDriver),
			sqlstorage.WithSqlURL(cfg.Storage.SQLURL),
			sqlstorage.WithBatchCount(cfg.Storage.BatchCount),
			sqlstorage.WithRunID(runID),
			sqlstorage.WithLogger(logger.Named("sqlstorage")),
		)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, sqlStore.Close())
		}()
		stores = append(stores, sqlStore)
	}
	store := storage.Multi(stores...)

	policy, err := engine.ParseErrorPolicy(cfg.Output.OnError)
	if err != nil {
		return err
	}

	coord := interrupt.New(store, interrupt.WithLogger(logger.Named("interrupt")))
	ctx = coord.Watch(ctx)
	defer coord.Stop()

	e, err := engine.NewEngine(
		engine.WithFetcher(f),
		engine.WithStorage(coord.Guard(store)),
		engine.WithSite(cfg.Site),
		engine.WithErrorPolicy(policy),
		engine.WithWorkCount(cfg.Output.WorkCount),
		engine.WithCheckpointEvery(cfg.Output.CheckpointEvery),
		engine.WithLogger(logger.Named("engine")),
	)
	if err != nil {
		return err
	}

	runErr := e.Run(ctx)
	saveErr := coord.Finish()
	if coord.Interrupted() && (errors.Is(runErr, context.Canceled) || errors.Is(runErr, interrupt.ErrShuttingDown)) {
		runErr = nil
	}
	if runErr != nil {
		logger.Error("crawl aborted", zap.Error(runErr), zap.Int("saved", xmlStore.Len()))
	}
	return multierr.Combine(runErr, saveErr)
}

// NewFetcher builds the fetcher described by cfg.
func NewFetcher(cfg config.Fetcher, logger *zap.Logger) (spider.Fetcher, error) {
	typ, err := spider.ParseFetchType(cfg.Type)
	if err != nil {
		return nil, err
	}
	p, err := proxy.FromList(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("fetcher.proxy: %w", err)
	}
	return spider.NewFetchService(typ,
		spider.WithLogger(logger),
		spider.WithUserAgent(cfg.UserAgent),
		spider.WithCookie(cfg.Cookie),
		spider.WithTimeout(cfg.TimeoutDuration()),
		spider.WithRetries(cfg.Retries),
		spider.WithProxy(p),
		spider.WithLimiter(limiter.FromConfig(cfg.Limits)),
	), nil
}
