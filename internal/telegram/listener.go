package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// Handler runs when a status trigger arrives.
type Handler func(ctx context.Context)

// Listener watches the bot's update stream for status commands from the
// configured chat.
type Listener struct {
	client   *Client
	chatID   string
	hold     int
	interval time.Duration
	logger   arbor.ILogger
}

// NewListener creates a Listener over the client's chat. holdSeconds is the
// server-side long-poll hold; interval is the pause between poll rounds.
func NewListener(client *Client, holdSeconds int, interval time.Duration, logger arbor.ILogger) *Listener {
	return &Listener{
		client:   client,
		chatID:   client.chatID,
		hold:     holdSeconds,
		interval: interval,
		logger:   logger,
	}
}

// matches reports whether an update is a status command from the watched
// chat. Edited messages count the same as new ones; matching is
// case-insensitive after trimming.
func (l *Listener) matches(upd Update) bool {
	msg := upd.Message
	if msg == nil {
		msg = upd.EditedMessage
	}
	if msg == nil {
		return false
	}
	if strconv.FormatInt(msg.Chat.ID, 10) != l.chatID {
		return false
	}

	text := strings.ToLower(strings.TrimSpace(msg.Text))
	return text == "/status" || text == "status"
}

// Listen polls until the wall-clock window elapses or maxTriggers commands
// have been handled (zero means no cap), and returns the number of triggers
// handled. Poll errors are logged and absorbed; the loop carries on until
// the window ends.
func (l *Listener) Listen(ctx context.Context, window time.Duration, maxTriggers int, handler Handler) int {
	if !l.client.Configured() {
		if l.logger != nil {
			l.logger.Error().Msg("Bot token or chat ID not set, cannot poll for commands")
		}
		return 0
	}

	deadline := time.Now().Add(window)
	var offset int64
	triggers := 0

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}

		updates, err := l.client.GetUpdates(ctx, offset, l.hold)
		if err != nil {
			if l.logger != nil {
				l.logger.Warn().Err(err).Msg("getUpdates failed, continuing")
			}
		} else {
			for _, upd := range updates {
				// Every update advances the offset, matched or not, so the
				// next poll never replays it.
				offset = upd.UpdateID + 1

				if !l.matches(upd) {
					continue
				}

				triggers++
				if l.logger != nil {
					l.logger.Info().
						Int64("update_id", upd.UpdateID).
						Msg("Status command received")
				}
				handler(ctx)

				if maxTriggers > 0 && triggers >= maxTriggers {
					return triggers
				}
			}
		}

		select {
		case <-ctx.Done():
			return triggers
		case <-time.After(l.interval):
		}
	}

	return triggers
}
