package main

import (
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var (
	webhookCertificate    string
	webhookMaxConnections int
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the webhook updates are pushed to",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Register a webhook URL (default webhook.url from the config)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := appConfig.Webhook.URL
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" {
			return errors.NotValidf("empty webhook url")
		}
		opts := botapi.SetWebhookOptions{}
		if cmd.Flags().Changed("max-connections") {
			opts.MaxConnections = botapi.Some(webhookMaxConnections)
		}
		if webhookCertificate != "" {
			resolver, err := newResolver()
			if err != nil {
				return err
			}
			cert, err := resolver.Resolve(cmd.Context(), webhookCertificate)
			if err != nil {
				return errors.Trace(err)
			}
			opts.Certificate = cert
		}
		if err := newAPI().SetWebhook(cmd.Context(), url, opts); err != nil {
			return errors.Trace(err)
		}
		green.Fprintf(cmd.OutOrStdout(), "Webhook set ")
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the webhook and go back to getUpdates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newAPI().DeleteWebhook(cmd.Context()); err != nil {
			return errors.Trace(err)
		}
		green.Fprintln(cmd.OutOrStdout(), "Webhook deleted")
		return nil
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the webhook status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newAPI().GetWebhookInfo(cmd.Context())
		if err != nil {
			return errors.Trace(err)
		}
		w := cmd.OutOrStdout()
		if info.URL == "" {
			fmt.Fprintln(w, "No webhook set (getUpdates mode).")
		} else {
			bold.Fprintf(w, "URL: ")
			fmt.Fprintln(w, info.URL)
		}
		fmt.Fprintf(w, "Custom certificate: %t\n", info.HasCustomCertificate)
		fmt.Fprintf(w, "Pending updates: %d\n", info.PendingUpdateCount)
		if info.MaxConnections != nil {
			fmt.Fprintf(w, "Max connections: %d\n", *info.MaxConnections)
		}
		if info.LastErrorMessage != nil {
			when := ""
			if info.LastErrorDate != nil {
				when = time.Unix(*info.LastErrorDate, 0).Format(time.RFC3339) + " "
			}
			red.Fprintf(w, "Last error: %s%s\n", when, *info.LastErrorMessage)
		}
		return nil
	},
}

func init() {
	webhookSetCmd.Flags().StringVar(&webhookCertificate, "certificate", "", "Public key certificate of a self-signed server")
	webhookSetCmd.Flags().IntVar(&webhookMaxConnections, "max-connections", 40, "Maximum simultaneous connections (1-100)")
	webhookCmd.AddCommand(webhookSetCmd, webhookDeleteCmd, webhookInfoCmd)
}
