package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stakecast/internal/agent"
	"stakecast/internal/bridge"
	"stakecast/internal/chain"
	"stakecast/internal/config"
	"stakecast/internal/journal"
	"stakecast/internal/listener"
	"stakecast/internal/notify"
	"stakecast/internal/store"
	"stakecast/internal/store/memory"
	"stakecast/internal/store/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "stakecast",
		Short:        "Staking event notification bridge",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the notification pipeline",
		RunE:  runPipeline,
	}

	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for the session store")
	runCmd.Flags().String("store", "postgres", "session store backend (postgres, memory)")
	runCmd.Flags().String("bridge", "direct", "bridge strategy (direct, agent)")
	runCmd.Flags().String("agent-url", "", "agent runtime base URL (required for --bridge agent)")
	runCmd.Flags().Duration("agent-timeout", 30*time.Second, "timeout for agent runtime calls")
	runCmd.Flags().String("telegram-token", "", "Telegram bot token")
	runCmd.Flags().String("twitter-consumer-key", "", "Twitter consumer key")
	runCmd.Flags().String("twitter-consumer-secret", "", "Twitter consumer secret")
	runCmd.Flags().String("twitter-access-token", "", "Twitter access token")
	runCmd.Flags().String("twitter-access-secret", "", "Twitter access secret")
	runCmd.Flags().String("token-symbol", "TNST", "display symbol for token amounts")
	runCmd.Flags().Duration("send-timeout", 10*time.Second, "timeout per outbound send")
	runCmd.Flags().Int("queue-size", 256, "bounded event queue size")
	runCmd.Flags().String("journal", "", "optional JSONL journal path for normalized events")
	runCmd.Flags().String("arb-sepolia-rpc", "", "Arbitrum Sepolia RPC URL (websocket)")
	runCmd.Flags().String("arb-sepolia-staking-address", "", "Arbitrum Sepolia staking contract address")
	runCmd.Flags().String("arb-sepolia-token-address", "", "Arbitrum Sepolia token contract address")
	runCmd.Flags().String("base-sepolia-rpc", "", "Base Sepolia RPC URL (websocket)")
	runCmd.Flags().String("base-sepolia-staking-address", "", "Base Sepolia staking contract address")
	runCmd.Flags().String("base-sepolia-token-address", "", "Base Sepolia token contract address")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)
	root.AddCommand(newSessionsCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	telegram, err := notify.NewTelegramSender(cfg.TelegramToken, cfg.SendTimeout)
	if err != nil {
		return err
	}

	var broadcaster notify.Broadcaster
	if cfg.Twitter.Configured() {
		broadcaster, err = notify.NewTwitterBroadcaster(cfg.Twitter, cfg.SendTimeout)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("twitter credentials missing, public broadcast disabled")
	}

	dispatcher := notify.NewDispatcher(sessions, telegram, broadcaster, cfg.SendTimeout, logger)

	var eventBridge bridge.Bridge
	switch cfg.Bridge {
	case "direct":
		eventBridge = bridge.NewDirect(dispatcher)
	case "agent":
		if cfg.AgentURL == "" {
			return fmt.Errorf("agent url is required for the agent bridge")
		}
		eventBridge = bridge.NewMediated(agent.NewClient(cfg.AgentURL, cfg.AgentTimeout), dispatcher)
	default:
		return fmt.Errorf("unknown bridge strategy: %s", cfg.Bridge)
	}

	queue := listener.NewQueue(cfg.QueueSize, logger)

	var jrnl *journal.Journal
	if cfg.JournalPath != "" {
		jrnl = journal.New(cfg.JournalPath)
	}

	var listeners []*listener.Listener
	var clients []*chain.Client
	defer func() {
		for _, l := range listeners {
			l.Stop()
		}
		for _, c := range clients {
			c.Close()
		}
	}()

	for _, network := range cfg.Networks {
		if !network.Enabled() {
			logger.Info("network disabled, skipping", zap.String("network", network.Name))
			continue
		}
		if err := network.Validate(); err != nil {
			return err
		}

		client, err := chain.NewClient(ctx, network.RPCURL)
		if err != nil {
			return fmt.Errorf("connect %s: %w", network.Name, err)
		}
		clients = append(clients, client)

		chainID, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("get chain id for %s: %w", network.Name, err)
		}
		if chainID.Uint64() != network.ChainID {
			return fmt.Errorf("rpc endpoint for %s reports chain id %s, expected %d",
				network.Name, chainID, network.ChainID)
		}

		normalizer, err := listener.NewNormalizer(network.ChainID, network.Name, cfg.TokenSymbol)
		if err != nil {
			return err
		}

		lst := listener.NewListener(network, client, normalizer, queue, logger)
		if err := lst.Start(ctx); err != nil {
			return err
		}
		listeners = append(listeners, lst)
	}

	if len(listeners) == 0 {
		return fmt.Errorf("no enabled networks, set at least one RPC URL")
	}

	bot := notify.NewBot(telegram.API(), sessions, logger)
	go bot.Run(ctx)

	logger.Info("stakecast start",
		zap.Int("networks", len(listeners)),
		zap.String("store", cfg.Store),
		zap.String("bridge", cfg.Bridge),
		zap.Bool("broadcast", broadcaster != nil),
		zap.String("journal", cfg.JournalPath),
	)

	bridge.Pump(ctx, queue, eventBridge, jrnl, logger)
	return nil
}

func newSessionStore(ctx context.Context, cfg config.Config) (store.SessionStore, func(), error) {
	switch cfg.Store {
	case "postgres":
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		return pg, pg.Close, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
