// Package chat holds the conversation bookkeeping around a single chat turn:
// history lines, the prompt window and answer cleanup.
package chat

import (
	"strings"

	"medicalbot/internal/models"
)

// UserLine formats an incoming message as a history entry.
func UserLine(msg string) string {
	return models.UserPrefix + msg
}

// BotLine formats a generated answer as a history entry.
func BotLine(answer string) string {
	return models.BotPrefix + answer
}

// Window returns the last n entries of history. The returned slice shares
// storage with history.
func Window(history []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// BuildContext joins the last n history entries with newlines and ends the
// result with the bot cue so the model continues as the bot.
func BuildContext(history []string, n int) string {
	return strings.Join(Window(history, n), "\n") + "\n" + models.BotCue
}
