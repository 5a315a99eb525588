package main

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var (
	photosOffset int
	photosLimit  int
)

var photosCmd = &cobra.Command{
	Use:   "photos <user-id>",
	Short: "List a user's profile pictures",
	Long: `List a user's profile pictures, largest size last.

--limit is clamped into 1..100 by the client.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseInt64("user id", args[0])
		if err != nil {
			return err
		}
		opts := botapi.GetUserProfilePhotosOptions{Limit: botapi.Some(photosLimit)}
		if cmd.Flags().Changed("offset") {
			opts.Offset = botapi.Some(photosOffset)
		}
		photos, err := newAPI().GetUserProfilePhotos(cmd.Context(), userID, opts)
		if err != nil {
			return errors.Trace(err)
		}
		w := cmd.OutOrStdout()
		bold.Fprintf(w, "%d profile photos", photos.TotalCount)
		fmt.Fprintf(w, " (showing %d)\n", len(photos.Photos))
		for i, sizes := range photos.Photos {
			for _, size := range sizes {
				fmt.Fprintf(w, "  [%d] %dx%d ", i, size.Width, size.Height)
				dim.Fprintln(w, size.FileID)
			}
		}
		return nil
	},
}

func init() {
	photosCmd.Flags().IntVar(&photosOffset, "offset", 0, "Number of photos to skip")
	photosCmd.Flags().IntVar(&photosLimit, "limit", botapi.DefaultLimit, "Number of photos to return")
}
