package main

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the bot behind the configured token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := newAPI().GetMe(cmd.Context())
		if err != nil {
			return errors.Trace(err)
		}
		printUser(cmd.OutOrStdout(), me)
		return nil
	},
}

var forwardCmd = &cobra.Command{
	Use:     "forward <chat-id> <from-chat-id> <message-id>",
	Short:   "Forward a message from one chat to another",
	Example: `  tgbot forward 12345 -100987654 42`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		fromChatID, err := parseChatID(args[1])
		if err != nil {
			return err
		}
		messageID, err := parseInt64("message id", args[2])
		if err != nil {
			return err
		}
		msg, err := newAPI().ForwardMessage(cmd.Context(), chatID, fromChatID, messageID)
		if err != nil {
			return errors.Trace(err)
		}
		printMessage(cmd.OutOrStdout(), "Forwarded", msg)
		return nil
	},
}

var chatActions = []botapi.ChatAction{
	botapi.ActionTyping,
	botapi.ActionUploadPhoto,
	botapi.ActionRecordVideo,
	botapi.ActionUploadVideo,
	botapi.ActionRecordAudio,
	botapi.ActionUploadAudio,
	botapi.ActionUploadDocument,
	botapi.ActionFindLocation,
}

var actionCmd = &cobra.Command{
	Use:   "action <chat-id> <action>",
	Short: "Show a chat action such as typing",
	Long: `Show a chat action for a few seconds or until the next message.

Actions: ` + actionNames(),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		action, err := parseAction(args[1])
		if err != nil {
			return err
		}
		if err := newAPI().SendChatAction(cmd.Context(), chatID, action); err != nil {
			return errors.Trace(err)
		}
		green.Fprintf(cmd.OutOrStdout(), "Sent ")
		fmt.Fprintf(cmd.OutOrStdout(), "%s to chat %d\n", action, chatID)
		return nil
	},
}

func actionNames() string {
	names := make([]string, len(chatActions))
	for i, a := range chatActions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func parseAction(s string) (botapi.ChatAction, error) {
	for _, a := range chatActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", errors.NotValidf("chat action %q (want one of %s)", s, actionNames())
}
