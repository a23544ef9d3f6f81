package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"nftfi/config"
	"nftfi/core"
	"nftfi/core/genesis"
	"nftfi/core/types"
	"nftfi/crypto"
	"nftfi/indexer"
	"nftfi/native/fees"
	"nftfi/native/lending"
	"nftfi/native/loans"
	"nftfi/native/oracle"
	"nftfi/native/raffle"
	"nftfi/native/tokens/cw1155"
	"nftfi/native/tokens/cw20"
	"nftfi/native/tokens/cw721"
	"nftfi/native/vault"
	"nftfi/native/verifier"
	"nftfi/observability/logging"
	"nftfi/observability/metrics"
	"nftfi/rpc"
	"nftfi/storage"
)

const (
	genesisPathEnv      = "NFTFI_GENESIS"
	allowAutogenesisEnv = "NFTFI_ALLOW_AUTOGENESIS"
	envEnv              = "NFTFI_ENV"
)

type envLookupFunc func(string) (string, bool)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis YAML file (overrides NFTFI_GENESIS and config GenesisFile)")
	allowAutogenesisFlag := flag.Bool("allow-autogenesis", false, "DEV ONLY: start an empty chain when no genesis file is supplied")
	flag.Parse()

	if err := run(*configFile, *genesisFlag, *allowAutogenesisFlag || envBool(allowAutogenesisEnv, os.LookupEnv)); err != nil {
		slog.Error("nftfid stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath, genesisFlag string, allowAutogenesis bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env := cfg.Env
	if v := strings.TrimSpace(os.Getenv(envEnv)); v != "" {
		env = v
	}

	var logger *slog.Logger
	if strings.TrimSpace(cfg.LogFile) != "" {
		var closer io.Closer
		logger, closer = logging.SetupWithFile("nftfid", env, cfg.LogFile)
		defer closer.Close()
	} else {
		logger = logging.Setup("nftfid", env)
	}

	genesisPath, err := resolveGenesisPath(genesisFlag, cfg.GenesisFile, allowAutogenesis, os.LookupEnv)
	if err != nil {
		return err
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	hostMetrics := metrics.Host()
	app, err := core.NewApp(db, core.Options{
		ChainID:      cfg.ChainID,
		Prefix:       crypto.AddressPrefix(cfg.Bech32Prefix),
		MaxCallDepth: cfg.MaxCallDepth,
		Logger:       logger,
		Metrics:      hostMetrics,
	})
	if err != nil {
		return fmt.Errorf("open host: %w", err)
	}
	registerContracts(app)

	var index *indexer.Store
	if strings.TrimSpace(cfg.IndexerDSN) != "" {
		index, err = indexer.Open(cfg.IndexerDSN)
		if err != nil {
			return err
		}
		defer index.Close()
		app.SetSink(index)
		logger.Info("transaction indexer enabled")
	}

	if err := initChain(app, genesisPath, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go produceBlocks(ctx, app, cfg.BlockInterval.Std(), logger)

	opts := rpc.Options{
		RateLimit: rpc.RateLimit{RequestsPerMinute: float64(cfg.RateLimit.RequestsPerMinute), Burst: cfg.RateLimit.Burst},
		Logger:    logger,
		Metrics:   hostMetrics,
	}
	if index != nil {
		opts.Index = index
	}
	return rpc.NewServer(app, opts).Serve(ctx, cfg.RPCAddress)
}

// registerContracts makes every contract code available for instantiation.
func registerContracts(app *core.App) {
	app.Register(vault.CodeName, func() types.Contract { return vault.New() })
	app.Register(lending.CodeName, func() types.Contract { return lending.New() })
	app.Register(loans.CodeName, func() types.Contract { return loans.New() })
	app.Register(raffle.CodeName, func() types.Contract { return raffle.New() })
	app.Register(verifier.CodeName, func() types.Contract { return verifier.New() })
	app.Register(oracle.CodeName, func() types.Contract { return oracle.New() })
	app.Register(fees.CodeName, func() types.Contract { return fees.New() })
	app.Register(cw20.CodeName, func() types.Contract { return cw20.New() })
	app.Register(cw721.CodeName, func() types.Contract { return cw721.New() })
	app.Register(cw1155.CodeName, func() types.Contract { return cw1155.New() })
}

func initChain(app *core.App, genesisPath string, logger *slog.Logger) error {
	done, err := app.Initialized()
	if err != nil {
		return err
	}
	if done {
		block := app.BlockInfo()
		logger.Info("resuming chain", "chain_id", block.ChainID, "height", block.Height)
		return nil
	}
	if genesisPath == "" {
		logger.Warn("no genesis supplied, starting an empty chain")
		return app.InitChain(1, uint64(time.Now().Unix()))
	}
	doc, err := config.LoadGenesis(genesisPath)
	if err != nil {
		return err
	}
	addrs, err := genesis.Apply(app, doc)
	if err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	for label, addr := range addrs {
		logger.Info("genesis contract", "label", label, "contract", addr)
	}
	return nil
}

func produceBlocks(ctx context.Context, app *core.App, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			block, err := app.ProduceBlock(now)
			if err != nil {
				logger.Error("produce block", slog.Any("error", err))
				continue
			}
			logger.Debug("block produced", "height", block.Height, "time", block.Time)
		}
	}
}

func resolveGenesisPath(cliPath string, cfgPath string, allowAutogenesis bool, lookup envLookupFunc) (string, error) {
	if trimmed := strings.TrimSpace(cliPath); trimmed != "" {
		return trimmed, nil
	}
	if lookup != nil {
		if value, ok := lookup(genesisPathEnv); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed, nil
			}
		}
	}
	if trimmed := strings.TrimSpace(cfgPath); trimmed != "" {
		return trimmed, nil
	}
	if allowAutogenesis {
		return "", nil
	}
	return "", errors.New("no genesis file provided; supply one via --genesis, " + genesisPathEnv + ", or config, or pass --allow-autogenesis")
}

func envBool(key string, lookup envLookupFunc) bool {
	value, ok := lookup(key)
	if !ok {
		return false
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && parsed
}
