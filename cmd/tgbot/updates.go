package main

import (
	"context"
	"fmt"
	"io"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/updates"
)

var (
	updatesOffset  int64
	updatesLimit   int
	updatesTimeout int
	updatesFollow  bool
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Fetch pending updates",
	Long: `Fetch pending updates with getUpdates and print one line per update.

Fetching does not confirm the updates; pass --offset <last id + 1> to do
so. --follow keeps long polling and confirms as it goes, like tgbot-server
does. Both fail while a webhook is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api := newAPI()
		w := cmd.OutOrStdout()
		printer := updates.HandlerFunc(func(_ context.Context, u botapi.Update) {
			printUpdate(w, u)
		})
		if updatesFollow {
			poller := updates.NewPoller(api, printer, updates.PollerConfig{
				Timeout: appConfig.Polling.TimeoutSeconds,
				Limit:   updatesLimit,
			})
			return errors.Trace(poller.Run(cmd.Context()))
		}

		opts := botapi.GetUpdatesOptions{Limit: botapi.Some(updatesLimit)}
		if cmd.Flags().Changed("offset") {
			opts.Offset = botapi.Some(updatesOffset)
		}
		if cmd.Flags().Changed("timeout") {
			opts.Timeout = botapi.Some(updatesTimeout)
		}
		batch, err := api.GetUpdates(cmd.Context(), opts)
		if err != nil {
			return errors.Trace(err)
		}
		if len(batch) == 0 {
			fmt.Fprintln(w, "No pending updates.")
			return nil
		}
		for _, u := range batch {
			printer(cmd.Context(), u)
		}
		return nil
	},
}

func printUpdate(w io.Writer, u botapi.Update) {
	bold.Fprintf(w, "%d", u.UpdateID)
	fmt.Fprintf(w, " %s\n", summarize(u))
}

func init() {
	updatesCmd.Flags().Int64Var(&updatesOffset, "offset", 0, "First update id to return; confirms earlier ones")
	updatesCmd.Flags().IntVar(&updatesLimit, "limit", botapi.DefaultLimit, "Maximum number of updates (1-100)")
	updatesCmd.Flags().IntVar(&updatesTimeout, "timeout", 0, "Long polling timeout in seconds")
	updatesCmd.Flags().BoolVarP(&updatesFollow, "follow", "f", false, "Keep polling until interrupted")
}
