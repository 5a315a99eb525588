package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/bot"
	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/config"
	"github.com/dev-dhg/tgbot/pkg/cron"
	"github.com/dev-dhg/tgbot/pkg/media"
	"github.com/dev-dhg/tgbot/pkg/messaging"
	"github.com/dev-dhg/tgbot/pkg/messaging/telegram"
	"github.com/dev-dhg/tgbot/pkg/server"
	"github.com/dev-dhg/tgbot/pkg/updates"
)

var logger = loggo.GetLogger("tgbot.cmd.server")

var (
	configFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "tgbot-server",
	Short: "Run the bot: replies, scheduled messages and the HTTP API",
	Long: `tgbot-server answers configured /commands, sends scheduled messages and
serves /send and /cron/run over HTTP.

Updates arrive by long polling when polling.enabled is set, otherwise by
webhook when webhook.url is set. The config file is watched and reloaded
on change; a new token or server port needs a restart.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Config file (default: config.yaml in the config dir)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", `loggo spec, e.g. "<root>=DEBUG"`)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, configDir, configPath, err := config.LoadConfig(configFlag)
	if err != nil {
		return errors.Annotate(err, "loading config")
	}
	if err := configureLogging(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Trace(err)
	}
	logger.Infof("configuration loaded from %s", configPath)

	// Long polling holds the request open for the poll timeout.
	timeout := cfg.Timeout()
	if cfg.Polling.Enabled {
		timeout += time.Duration(cfg.Polling.TimeoutSeconds) * time.Second
	}
	api := botapi.NewClient(cfg.Token,
		botapi.WithBaseURL(cfg.BaseURL),
		botapi.WithTransport(botapi.NewHTTPTransport(timeout)),
	)
	me, err := api.GetMe(ctx)
	if err != nil {
		return errors.Annotate(err, "checking bot token")
	}
	if me.Username != nil {
		logger.Infof("running as @%s", *me.Username)
	}

	resolver, err := newResolver(cfg, configDir)
	if err != nil {
		return err
	}
	providers := messaging.NewRegistry(telegram.NewClient(api, resolver, "Markdown"))

	b := bot.New(api, cfg)
	scheduler := cron.NewScheduler(cfg, providers)
	scheduler.Start()
	defer scheduler.Stop()

	var webhook http.Handler
	switch {
	case cfg.Polling.Enabled:
		if err := api.DeleteWebhook(ctx); err != nil {
			return errors.Annotate(err, "removing webhook before polling")
		}
		poller := updates.NewPoller(api, b, updates.PollerConfig{
			Timeout: cfg.Polling.TimeoutSeconds,
			Limit:   cfg.Polling.Limit,
		})
		go func() {
			if err := poller.Run(ctx); err != nil {
				logger.Errorf("polling stopped: %v", err)
			}
		}()
	case cfg.Webhook.URL != "":
		if err := api.SetWebhook(ctx, cfg.Webhook.URL, botapi.SetWebhookOptions{}); err != nil {
			return errors.Annotate(err, "registering webhook")
		}
		webhook = updates.NewWebhookHandler(b)
		logger.Infof("receiving updates on %s", cfg.Webhook.Path)
	default:
		logger.Warningf("neither polling nor webhook configured, incoming messages are ignored")
	}

	srv := server.NewServer(cfg, providers, scheduler, webhook)

	go func() {
		err := config.WatchConfig(ctx, configPath, func(newCfg *config.Config) {
			if newCfg.Token != cfg.Token || newCfg.Server.Port != cfg.Server.Port {
				logger.Warningf("token or server port changed, restart to apply")
			}
			if err := configureLogging(newCfg); err != nil {
				logger.Warningf("%v", err)
			}
			logger.Infof("applying new configuration")
			b.UpdateConfig(newCfg)
			scheduler.Reload(newCfg)
			srv.UpdateConfig(newCfg)
		})
		if err != nil {
			logger.Errorf("config watcher stopped: %v", err)
		}
	}()

	return errors.Trace(srv.Run(ctx))
}

func configureLogging(cfg *config.Config) error {
	spec := cfg.Logging
	if logLevelFlag != "" {
		spec = logLevelFlag
	}
	if spec == "" {
		return nil
	}
	if err := loggo.ConfigureLoggers(spec); err != nil {
		return errors.Annotatef(err, "configuring logging %q", spec)
	}
	return nil
}

func newResolver(cfg *config.Config, configDir string) (*media.Resolver, error) {
	s3cfg := cfg.Media.S3
	if s3cfg.Region == "" && s3cfg.Endpoint == "" {
		return media.NewResolver(configDir, nil), nil
	}
	client, err := media.NewS3Client(s3cfg)
	if err != nil {
		return nil, errors.Annotate(err, "creating s3 client")
	}
	return media.NewResolver(configDir, client), nil
}
