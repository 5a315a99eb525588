package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var (
	sendReplyTo        int64
	sendKeyboard       string
	sendInlineKeyboard string
	sendOneTime        bool
	sendForceReply     bool
	sendRemoveKeyboard bool

	sendParseMode string
	sendNoPreview bool
	sendCaption   string
	sendDuration  int
	sendPerformer string
	sendTitle     string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message or a file",
	Long: `Send a text message, a file or a location to a chat.

Files can be given as a local path, an http(s) URL, a data: URI, an
s3://bucket/key reference (needs media.s3 in the config) or a file_id of
a file Telegram already has.`,
	Example: `  tgbot send text 12345 "*bold*" --parse-mode Markdown
  tgbot send photo 12345 ./cat.png --caption "a cat" --reply-to 17
  tgbot send document 12345 s3://reports/weekly.pdf
  tgbot send text 12345 "pick one" --keyboard "yes,no;maybe" --one-time
  tgbot send location 12345 52.52 13.405`,
}

// fileSender sends one resolved file and returns the message.
type fileSender func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error)

var sendTextCmd = &cobra.Command{
	Use:   "text <chat-id> <text>",
	Short: "Send a text message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		reply, err := replyOptions(cmd)
		if err != nil {
			return err
		}
		opts := botapi.SendMessageOptions{ReplyOptions: reply}
		if cmd.Flags().Changed("parse-mode") {
			opts.ParseMode = botapi.Some(sendParseMode)
		}
		if cmd.Flags().Changed("no-preview") {
			opts.DisableWebPagePreview = botapi.Some(sendNoPreview)
		}
		msg, err := newAPI().SendMessage(cmd.Context(), chatID, args[1], opts)
		if err != nil {
			return errors.Trace(err)
		}
		printMessage(cmd.OutOrStdout(), "Sent", msg)
		return nil
	},
}

var sendLocationCmd = &cobra.Command{
	Use:   "location <chat-id> <latitude> <longitude>",
	Short: "Send a map point",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return errors.NotValidf("latitude %q", args[1])
		}
		lon, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return errors.NotValidf("longitude %q", args[2])
		}
		reply, err := replyOptions(cmd)
		if err != nil {
			return err
		}
		msg, err := newAPI().SendLocation(cmd.Context(), chatID, lat, lon, reply)
		if err != nil {
			return errors.Trace(err)
		}
		printMessage(cmd.OutOrStdout(), "Sent", msg)
		return nil
	},
}

func newFileCmd(use, short string, send fileSender) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <chat-id> <file>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseChatID(args[0])
			if err != nil {
				return err
			}
			reply, err := replyOptions(cmd)
			if err != nil {
				return err
			}
			resolver, err := newResolver()
			if err != nil {
				return err
			}
			file, err := resolver.Resolve(cmd.Context(), args[1])
			if err != nil {
				return errors.Trace(err)
			}
			msg, err := send(cmd.Context(), newAPI(), cmd, chatID, file, reply)
			if err != nil {
				return errors.Trace(err)
			}
			printMessage(cmd.OutOrStdout(), "Sent", msg)
			return nil
		},
	}
}

func optionalString(flags *pflag.FlagSet, name, value string) botapi.Optional[string] {
	if flags.Changed(name) {
		return botapi.Some(value)
	}
	return botapi.None[string]()
}

func optionalInt(flags *pflag.FlagSet, name string, value int) botapi.Optional[int] {
	if flags.Changed(name) {
		return botapi.Some(value)
	}
	return botapi.None[int]()
}

var (
	sendPhotoCmd = newFileCmd("photo", "Send a photo",
		func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error) {
			return api.SendPhoto(ctx, chatID, file, botapi.SendPhotoOptions{
				Caption:      optionalString(cmd.Flags(), "caption", sendCaption),
				ReplyOptions: reply,
			})
		})
	sendAudioCmd = newFileCmd("audio", "Send an audio file for the music player",
		func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error) {
			return api.SendAudio(ctx, chatID, file, botapi.SendAudioOptions{
				Duration:     optionalInt(cmd.Flags(), "duration", sendDuration),
				Performer:    optionalString(cmd.Flags(), "performer", sendPerformer),
				Title:        optionalString(cmd.Flags(), "title", sendTitle),
				ReplyOptions: reply,
			})
		})
	sendDocumentCmd = newFileCmd("document", "Send a general file",
		func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error) {
			return api.SendDocument(ctx, chatID, file, botapi.SendDocumentOptions{
				Caption:      optionalString(cmd.Flags(), "caption", sendCaption),
				ReplyOptions: reply,
			})
		})
	sendStickerCmd = newFileCmd("sticker", "Send a .webp sticker",
		func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error) {
			return api.SendSticker(ctx, chatID, file, reply)
		})
	sendVideoCmd = newFileCmd("video", "Send an mp4 video",
		func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error) {
			return api.SendVideo(ctx, chatID, file, botapi.SendVideoOptions{
				Duration:     optionalInt(cmd.Flags(), "duration", sendDuration),
				Caption:      optionalString(cmd.Flags(), "caption", sendCaption),
				ReplyOptions: reply,
			})
		})
	sendVoiceCmd = newFileCmd("voice", "Send an ogg/opus voice note",
		func(ctx context.Context, api *botapi.Client, cmd *cobra.Command, chatID int64, file botapi.InputFile, reply botapi.ReplyOptions) (*botapi.Message, error) {
			return api.SendVoice(ctx, chatID, file, botapi.SendVoiceOptions{
				Duration:     optionalInt(cmd.Flags(), "duration", sendDuration),
				ReplyOptions: reply,
			})
		})
)

// replyOptions builds the reply_to_message_id and reply_markup parameters
// from the persistent send flags.
func replyOptions(cmd *cobra.Command) (botapi.ReplyOptions, error) {
	var opts botapi.ReplyOptions
	if cmd.Flags().Changed("reply-to") {
		opts.ReplyToMessageID = botapi.Some(sendReplyTo)
	}
	set := 0
	for _, name := range []string{"keyboard", "inline-keyboard", "force-reply", "remove-keyboard"} {
		if cmd.Flags().Changed(name) {
			set++
		}
	}
	if set > 1 {
		return opts, errors.NotValidf("more than one of --keyboard, --inline-keyboard, --force-reply and --remove-keyboard")
	}
	switch {
	case sendKeyboard != "":
		opts.ReplyMarkup = botapi.ReplyKeyboardMarkup{
			Keyboard:        parseRows(sendKeyboard),
			ResizeKeyboard:  true,
			OneTimeKeyboard: sendOneTime,
		}
	case sendInlineKeyboard != "":
		markup, err := parseInlineKeyboard(sendInlineKeyboard)
		if err != nil {
			return opts, err
		}
		opts.ReplyMarkup = markup
	case sendForceReply:
		opts.ReplyMarkup = botapi.ForceReply{}
	case sendRemoveKeyboard:
		opts.ReplyMarkup = botapi.ReplyKeyboardRemove{}
	}
	return opts, nil
}

// parseRows splits "a,b;c" into [[a b] [c]]. Empty labels are dropped.
func parseRows(spec string) [][]string {
	var rows [][]string
	for _, rowSpec := range strings.Split(spec, ";") {
		var row []string
		for _, label := range strings.Split(rowSpec, ",") {
			if label = strings.TrimSpace(label); label != "" {
				row = append(row, label)
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// parseInlineKeyboard reads rows of "label=data" or "label=https://url"
// buttons. A bare label uses itself as callback data.
func parseInlineKeyboard(spec string) (botapi.InlineKeyboardMarkup, error) {
	rows := parseRows(spec)
	if len(rows) == 0 {
		return botapi.InlineKeyboardMarkup{}, errors.NotValidf("empty inline keyboard")
	}
	markup := botapi.InlineKeyboardMarkup{InlineKeyboard: make([][]botapi.InlineKeyboardButton, len(rows))}
	for i, row := range rows {
		for _, button := range row {
			label, target, ok := strings.Cut(button, "=")
			if !ok {
				target = label
			}
			if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
				markup.InlineKeyboard[i] = append(markup.InlineKeyboard[i], botapi.URLButton(label, target))
			} else {
				markup.InlineKeyboard[i] = append(markup.InlineKeyboard[i], botapi.CallbackButton(label, target))
			}
		}
	}
	return markup, nil
}

func init() {
	pf := sendCmd.PersistentFlags()
	pf.Int64Var(&sendReplyTo, "reply-to", 0, "Message id to reply to")
	pf.StringVar(&sendKeyboard, "keyboard", "", `Reply keyboard, rows separated by ";" and buttons by ","`)
	pf.StringVar(&sendInlineKeyboard, "inline-keyboard", "", `Inline keyboard of "label=data" or "label=https://..." buttons`)
	pf.BoolVar(&sendOneTime, "one-time", false, "Hide the reply keyboard after one use")
	pf.BoolVar(&sendForceReply, "force-reply", false, "Ask the client to reply to this message")
	pf.BoolVar(&sendRemoveKeyboard, "remove-keyboard", false, "Remove the current reply keyboard")

	sendTextCmd.Flags().StringVar(&sendParseMode, "parse-mode", "", "Markdown or HTML")
	sendTextCmd.Flags().BoolVar(&sendNoPreview, "no-preview", false, "Disable link previews")
	for _, c := range []*cobra.Command{sendPhotoCmd, sendDocumentCmd, sendVideoCmd} {
		c.Flags().StringVar(&sendCaption, "caption", "", "Caption")
	}
	for _, c := range []*cobra.Command{sendAudioCmd, sendVideoCmd, sendVoiceCmd} {
		c.Flags().IntVar(&sendDuration, "duration", 0, "Duration in seconds")
	}
	sendAudioCmd.Flags().StringVar(&sendPerformer, "performer", "", "Performer")
	sendAudioCmd.Flags().StringVar(&sendTitle, "title", "", "Track name")

	sendCmd.AddCommand(sendTextCmd, sendPhotoCmd, sendAudioCmd, sendDocumentCmd,
		sendStickerCmd, sendVideoCmd, sendVoiceCmd, sendLocationCmd)
}
