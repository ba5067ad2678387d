package resultpush

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lucky-wheel/internal/game"
)

const (
	colorRed   = 0xED4245
	colorBlack = 0x23272A
	colorGreen = 0x57F287
	colorInfo  = 0x5865F2
	colorWarn  = 0xFEE75C

	defaultFooter = "lucky-wheel result push"
)

// FormatMessage renders one lifecycle event as a webhook message. The
// second return is false for events that should not be pushed.
func FormatMessage(ev game.GameEvent) (FormattedMessage, bool) {
	data := asMap(ev.Data)
	base := FormattedMessage{
		Timestamp: eventTimestamp(ev.ServerTS),
		Footer:    defaultFooter,
	}

	switch ev.Event {
	case game.EventSpinCommitted:
		number := intField(data, "number")
		color := stringField(data, "color")
		parity := stringField(data, "parity")
		base.Title = "Spin Result"
		base.Content = fmt.Sprintf("winning number: %d (%s/%s)", number, color, parity)
		base.Description = fmt.Sprintf("The wheel lands on **%d**.", number)
		base.Color = wheelColor(color)
		base.Fields = []MessageField{
			{Name: "Number", Value: fmt.Sprintf("%d", number), Inline: true},
			{Name: "Color", Value: fallback(color, "-"), Inline: true},
			{Name: "Parity", Value: fallback(parity, "-"), Inline: true},
		}
		if returned := intField(data, "returned"); returned > 0 {
			base.Fields = append(base.Fields, MessageField{
				Name: "Still queued", Value: fmt.Sprintf("%d", returned), Inline: true,
			})
		}
	case game.EventSpinEnded:
		base.Title = "Spin Finished"
		base.Content = fmt.Sprintf("spin finished on %d", intField(data, "number"))
		base.Description = fmt.Sprintf("Spin finished on %d, table is open again.", intField(data, "number"))
		base.Color = colorInfo
	case game.EventRoundStarted:
		base.Title = "Round Started"
		base.Content = "a new round is open"
		base.Description = "A new round is open for numbers."
		base.Color = colorInfo
		if ms := intField(data, "duration_ms"); ms > 0 {
			base.Fields = []MessageField{{Name: "Duration", Value: fmt.Sprintf("%ds", ms/1000), Inline: true}}
		}
	case game.EventRoundEndedEmpty:
		base.Title = "Round Ended"
		base.Content = "round ended with no queued numbers"
		base.Description = "The round closed without any queued number; no spin."
		base.Color = colorWarn
	case game.EventGamePaused:
		base.Title = "Game Paused"
		base.Content = "game paused"
		base.Description = "An admin paused the game; no new rounds will start."
		base.Color = colorWarn
	case game.EventGameResumed:
		base.Title = "Game Resumed"
		base.Content = "game resumed"
		base.Description = "The game is running again."
		base.Color = colorGreen
	case game.EventGameStopped:
		base.Title = "Game Stopped"
		base.Content = "game stopped"
		base.Description = "An admin stopped the game. Queued numbers are kept."
		base.Color = colorRed
	case game.EventGameReset:
		base.Title = "Game Reset"
		base.Content = "game reset"
		base.Description = "Hard reset: idle phase, queue cleared, running."
		base.Color = colorWarn
		if dropped := intField(data, "queue_dropped"); dropped > 0 {
			base.Fields = []MessageField{{Name: "Dropped", Value: fmt.Sprintf("%d", dropped), Inline: true}}
		}
	case game.EventForcedIdle:
		base.Title = "Game Idled"
		base.Content = "no frontend activity, game idled"
		base.Description = "No frontend activity past the timeout; the game collapsed to idle."
		base.Color = colorWarn
	default:
		return FormattedMessage{}, false
	}

	return base, true
}

func wheelColor(color string) int {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "red":
		return colorRed
	case "black":
		return colorBlack
	case "green":
		return colorGreen
	}
	return colorInfo
}

func eventTimestamp(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func fallback(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}

func asMap(v any) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// intField reads a numeric field whether it arrived as a Go int or as
// a float64 from a JSON round trip.
func intField(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	switch vv := v.(type) {
	case int:
		return vv
	case int64:
		return int(vv)
	case float64:
		return int(vv)
	}
	return 0
}
