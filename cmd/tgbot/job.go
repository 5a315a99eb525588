package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/config"
)

var (
	jobName     string
	jobSchedule string
	jobText     string
	jobTargets  []string
	jobProvider string
	jobServer   string
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage scheduled messages",
	Long: `Manage the scheduled messages tgbot-server sends.

add and remove rewrite the config file without expanding ${VAR}
placeholders; a running server picks the change up automatically.`,
}

var jobListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List scheduled messages",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(appConfig.Jobs) == 0 {
			fmt.Fprintln(w, "No jobs configured.")
			return nil
		}
		for _, job := range appConfig.Jobs {
			bold.Fprintf(w, "%s", job.Name)
			fmt.Fprintf(w, "  %s  %q", job.Schedule, job.Text)
			ids := make([]string, len(job.Targets))
			for i, t := range job.Targets {
				ids[i] = t.Provider + ":" + t.ID
			}
			dim.Fprintf(w, "  -> %s\n", strings.Join(ids, ", "))
		}
		return nil
	},
}

var jobAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled message",
	Example: `  tgbot job add --name morning --schedule "0 8 * * *" --text "good morning" --target 12345
  tgbot job add --name ping --schedule "@every 1h" --text "#IMAGE#:s3://bucket/chart.png" --target 1 --target 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := newJob(jobName, jobSchedule, jobText, jobProvider, jobTargets)
		if err != nil {
			return err
		}
		err = config.UpdateConfigFile(appConfigPath, func(cfg *config.Config) error {
			if cfg.FindJob(job.Name) >= 0 {
				return errors.AlreadyExistsf("job %q", job.Name)
			}
			cfg.Jobs = append(cfg.Jobs, job)
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		green.Fprintf(cmd.OutOrStdout(), "Added ")
		fmt.Fprintf(cmd.OutOrStdout(), "job %s\n", job.Name)
		return nil
	},
}

var jobRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a scheduled message",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		err := config.UpdateConfigFile(appConfigPath, func(cfg *config.Config) error {
			i := cfg.FindJob(name)
			if i < 0 {
				return errors.NotFoundf("job %q", name)
			}
			cfg.Jobs = append(cfg.Jobs[:i], cfg.Jobs[i+1:]...)
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		green.Fprintf(cmd.OutOrStdout(), "Removed ")
		fmt.Fprintf(cmd.OutOrStdout(), "job %s\n", name)
		return nil
	},
}

var jobRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Ask a running tgbot-server to send a job now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server := jobServer
		if server == "" {
			server = fmt.Sprintf("http://localhost:%d", appConfig.Server.Port)
		}
		body, _ := json.Marshal(map[string]string{"name": args[0]})
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, strings.TrimRight(server, "/")+"/cron/run", bytes.NewReader(body))
		if err != nil {
			return errors.Trace(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if appConfig.Server.AuthToken != "" {
			req.Header.Set("Authorization", "Bearer "+appConfig.Server.AuthToken)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return errors.Annotate(err, "connecting to tgbot-server (is it running?)")
		}
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusAccepted {
			return errors.Errorf("server answered %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
		}
		green.Fprintf(cmd.OutOrStdout(), "Triggered ")
		fmt.Fprintf(cmd.OutOrStdout(), "job %s\n", args[0])
		return nil
	},
}

// newJob validates the flags of job add.
func newJob(name, schedule, text, provider string, targets []string) (config.Job, error) {
	if name == "" || schedule == "" || text == "" {
		return config.Job{}, errors.NotValidf("job without --name, --schedule or --text")
	}
	if len(targets) == 0 {
		return config.Job{}, errors.NotValidf("job without --target")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return config.Job{}, errors.NotValidf("schedule %q: %v", schedule, err)
	}
	job := config.Job{Name: name, Schedule: schedule, Text: text}
	for _, id := range targets {
		job.Targets = append(job.Targets, config.Target{Provider: provider, ID: id})
	}
	return job, nil
}

func init() {
	jobAddCmd.Flags().StringVar(&jobName, "name", "", "Job name")
	jobAddCmd.Flags().StringVar(&jobSchedule, "schedule", "", `Cron schedule, e.g. "0 9 * * *" or "@every 1h"`)
	jobAddCmd.Flags().StringVar(&jobText, "text", "", "Message text, media directives allowed")
	jobAddCmd.Flags().StringArrayVar(&jobTargets, "target", nil, "Chat id to send to (repeatable)")
	jobAddCmd.Flags().StringVar(&jobProvider, "provider", "telegram", "Messaging provider")
	jobRunCmd.Flags().StringVar(&jobServer, "server", "", "Server URL (default http://localhost:<server.port>)")

	jobCmd.AddCommand(jobListCmd, jobAddCmd, jobRemoveCmd, jobRunCmd)
}
