package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	dim   = color.New(color.Faint)
	red   = color.New(color.FgRed)
)

func printMessage(w io.Writer, verb string, m *botapi.Message) {
	green.Fprintf(w, "%s ", verb)
	fmt.Fprintf(w, "message %d to chat %d", m.MessageID, m.Chat.ID)
	if m.Chat.Username != nil {
		dim.Fprintf(w, " (@%s)", *m.Chat.Username)
	}
	fmt.Fprintln(w)
}

func printUser(w io.Writer, u *botapi.User) {
	bold.Fprintf(w, "%s", displayName(u))
	if u.Username != nil {
		fmt.Fprintf(w, " @%s", *u.Username)
	}
	dim.Fprintf(w, " id=%d", u.ID)
	if u.IsBot {
		dim.Fprint(w, " bot")
	}
	fmt.Fprintln(w)
}

func displayName(u *botapi.User) string {
	if u.LastName != nil {
		return u.FirstName + " " + *u.LastName
	}
	return u.FirstName
}

// summarize renders the interesting part of an update on one line.
func summarize(u botapi.Update) string {
	switch {
	case u.Message != nil:
		return "message " + messageSummary(u.Message)
	case u.EditedMessage != nil:
		return "edited " + messageSummary(u.EditedMessage)
	case u.ChannelPost != nil:
		return "channel post " + messageSummary(u.ChannelPost)
	case u.EditedChannelPost != nil:
		return "edited channel post " + messageSummary(u.EditedChannelPost)
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		data := ""
		if q.Data != nil {
			data = *q.Data
		}
		return fmt.Sprintf("callback from %s: %q", displayName(&q.From), data)
	}
	return "unsupported update"
}

func messageSummary(m *botapi.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "in chat %d", m.Chat.ID)
	if m.From != nil {
		fmt.Fprintf(&b, " from %s", displayName(m.From))
	}
	switch {
	case m.Text != nil:
		fmt.Fprintf(&b, ": %q", *m.Text)
	case m.Photo != nil:
		fmt.Fprintf(&b, ": photo (%d sizes)", len(m.Photo))
	case m.Sticker != nil:
		b.WriteString(": sticker")
	case m.Document != nil:
		b.WriteString(": document")
	case m.Audio != nil:
		b.WriteString(": audio")
	case m.Video != nil:
		b.WriteString(": video")
	case m.Voice != nil:
		b.WriteString(": voice")
	case m.Location != nil:
		fmt.Fprintf(&b, ": location %g,%g", m.Location.Latitude, m.Location.Longitude)
	}
	return b.String()
}
