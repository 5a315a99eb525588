package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var fileOutput string

var fileCmd = &cobra.Command{
	Use:   "file <file-id>",
	Short: "Look up a file and optionally download it",
	Example: `  tgbot file AgACAgQAAxkBAAI
  tgbot file AgACAgQAAxkBAAI -o ./downloads/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api := newAPI()
		f, err := api.GetFile(cmd.Context(), args[0])
		if err != nil {
			return errors.Trace(err)
		}
		w := cmd.OutOrStdout()
		bold.Fprintf(w, "%s", f.FileID)
		if f.FilePath != nil {
			fmt.Fprintf(w, "  %s", *f.FilePath)
		}
		if f.FileSize != nil {
			dim.Fprintf(w, "  %d bytes", *f.FileSize)
		}
		fmt.Fprintln(w)

		if fileOutput == "" {
			return nil
		}
		if f.FilePath == nil {
			return errors.NotFoundf("download path for %s", f.FileID)
		}
		dest := fileOutput
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			dest = filepath.Join(dest, filepath.Base(*f.FilePath))
		}
		n, err := download(cmd, api.FileURL(f), dest)
		if err != nil {
			return errors.Trace(err)
		}
		green.Fprintf(w, "Saved ")
		fmt.Fprintf(w, "%d bytes to %s\n", n, dest)
		return nil
	},
}

// download fetches url into dest. url contains the bot token, so errors
// never include it.
func download(cmd *cobra.Command, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.New("building download request")
	}
	client := &http.Client{Timeout: appConfig.Timeout()}
	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.New("downloading file failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("downloading file: %s", resp.Status)
	}
	out, err := os.Create(dest)
	if err != nil {
		return 0, errors.Annotatef(err, "creating %s", dest)
	}
	defer out.Close()
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return n, errors.Annotatef(err, "writing %s", dest)
	}
	return n, nil
}

func init() {
	fileCmd.Flags().StringVarP(&fileOutput, "output", "o", "", "Download to this file or directory")
}
