package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/config"
	"github.com/dev-dhg/tgbot/pkg/media"
	"github.com/dev-dhg/tgbot/pkg/messaging/telegram"
)

var (
	configFlag   string
	logLevelFlag string

	// Set by the root command before any subcommand runs.
	appConfig     *config.Config
	appConfigDir  string
	appConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "tgbot",
	Short: "tgbot - talk to the Telegram Bot API from the command line",
	Long: `tgbot calls Telegram Bot API methods with the token from your config.

The config file is looked up in $TGBOT_CONFIG_DIR, ~/.config/tgbot and the
current directory (config.yaml, config.yml, config.toml or config.json).
Values like ${TGBOT_TOKEN} are expanded from the environment and from .env.`,
	Example: `  # Check the token
  tgbot me

  # Send a message and a photo
  tgbot send text 12345 "hello"
  tgbot send photo 12345 ./cat.png --caption "a cat"

  # Schedule a daily message
  tgbot job add --name morning --schedule "0 8 * * *" --text "good morning" --target 12345`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, path, err := config.LoadConfig(configFlag)
		if err != nil {
			return errors.Annotate(err, "loading config")
		}
		spec := cfg.Logging
		if logLevelFlag != "" {
			spec = logLevelFlag
		}
		if spec != "" {
			if err := loggo.ConfigureLoggers(spec); err != nil {
				return errors.Annotatef(err, "configuring logging %q", spec)
			}
		}
		// job subcommands edit the file and work without a token.
		if cmd.Parent() == nil || cmd.Parent().Name() != "job" {
			if err := cfg.Validate(); err != nil {
				return errors.Trace(err)
			}
		}
		appConfig, appConfigDir, appConfigPath = cfg, dir, path
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", `Logging spec, e.g. "<root>=DEBUG"`)

	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(photosCmd)
	rootCmd.AddCommand(updatesCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(jobCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAPI() *botapi.Client {
	return botapi.NewClient(appConfig.Token,
		botapi.WithBaseURL(appConfig.BaseURL),
		botapi.WithTransport(botapi.NewHTTPTransport(appConfig.Timeout())),
	)
}

func newResolver() (*media.Resolver, error) {
	s3cfg := appConfig.Media.S3
	if s3cfg.Region == "" && s3cfg.Endpoint == "" {
		return media.NewResolver(appConfigDir, nil), nil
	}
	client, err := media.NewS3Client(s3cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return media.NewResolver(appConfigDir, client), nil
}

func parseChatID(s string) (int64, error) {
	return telegram.ParseChatID(s)
}

func parseInt64(name, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.NotValidf("%s %q", name, s)
	}
	return v, nil
}
