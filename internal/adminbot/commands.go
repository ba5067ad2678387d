// Package adminbot is the chat-style admin surface: a websocket
// console whose text commands drive the game coordinator, with every
// command audited.
package adminbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/roulette"
	"lucky-wheel/internal/store"
)

const defaultHistoryLimit = 10

const helpText = `commands:
!queue <n> [n ...]  queue winning numbers (0-36)
!spin <n>           spin n now, or park it at the queue head while idle
!startround         open a new round
!endround           end the round and commit the first queued number
!list               show the pending queue
!del <n>            remove every queued n (also scrubs the newest stored n)
!clearqueue         drop every queued number
!history [k]        show the last k results
!delresult <id>     soft-delete a stored result
!restore <id>       restore a soft-deleted result
!purge <id>         permanently delete a stored result
!pause / !resume    pause or resume round starts
!stop               stop the game, queue kept
!reset              hard reset: idle phase, queue cleared, running
!status             one-line game status
!help               this text`

// Reply is the outcome of one command, rendered back to the console.
type Reply struct {
	OK   bool
	Text string
}

// Dispatcher parses admin commands and applies them to the game.
type Dispatcher struct {
	coord *game.Coordinator
	store *store.Store
	audit *audit.Recorder
	allow map[string]bool
}

func NewDispatcher(coord *game.Coordinator, st *store.Store, aud *audit.Recorder, adminIDs []string) *Dispatcher {
	allow := map[string]bool{}
	for _, id := range adminIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			allow[id] = true
		}
	}
	return &Dispatcher{coord: coord, store: st, audit: aud, allow: allow}
}

// Allowed reports whether adminID may issue commands. An empty
// allow-list admits every authenticated admin.
func (d *Dispatcher) Allowed(adminID string) bool {
	if len(d.allow) == 0 {
		return true
	}
	return d.allow[adminID]
}

// Dispatch runs one command line for the given actor and returns the
// console reply. Every command, accepted or rejected, lands in the
// audit log; !help is the one exception since it touches nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, actorID, actorName, text string) Reply {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return Reply{Text: "commands start with !, try !help"}
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]
	if actorName == "" {
		actorName = actorID
	}

	if !d.Allowed(actorID) {
		d.audit.Record(ctx, actorID, actorName, "command_rejected", cmd+": not on admin list", false)
		log.Warn().Str("admin", actorID).Str("command", cmd).Msg("command from unlisted admin")
		return Reply{Text: "you are not on the admin list"}
	}

	switch cmd {
	case "!help":
		return Reply{OK: true, Text: helpText}
	case "!status":
		summary := d.coord.StatusSummary(ctx)
		d.audit.Record(ctx, actorID, actorName, "status_view", summary, true)
		return Reply{OK: true, Text: summary}
	case "!queue":
		return d.cmdQueue(ctx, actorID, actorName, args)
	case "!spin":
		return d.cmdSpin(ctx, actorID, actorName, args)
	case "!startround":
		return d.cmdStartRound(ctx, actorID, actorName)
	case "!endround":
		return d.cmdEndRound(ctx, actorID, actorName)
	case "!list":
		return d.cmdList(ctx, actorID, actorName)
	case "!del":
		return d.cmdDel(ctx, actorID, actorName, args)
	case "!clearqueue":
		return d.cmdClearQueue(ctx, actorID, actorName)
	case "!history":
		return d.cmdHistory(ctx, actorID, actorName, args)
	case "!delresult":
		return d.cmdResultFlag(ctx, actorID, actorName, args, "result_delete")
	case "!restore":
		return d.cmdResultFlag(ctx, actorID, actorName, args, "result_restore")
	case "!purge":
		return d.cmdResultFlag(ctx, actorID, actorName, args, "result_purge")
	case "!pause":
		return d.cmdRunState(ctx, actorID, actorName, "game_pause", d.coord.Pause, "game paused, no new rounds will start")
	case "!resume":
		return d.cmdRunState(ctx, actorID, actorName, "game_resume", d.coord.Resume, "game resumed")
	case "!stop":
		return d.cmdRunState(ctx, actorID, actorName, "game_stop", d.coord.Stop, "game stopped, queue kept")
	case "!reset":
		return d.cmdReset(ctx, actorID, actorName)
	default:
		d.audit.Record(ctx, actorID, actorName, "command_unknown", cmd, false)
		return Reply{Text: fmt.Sprintf("unknown command %s, try !help", cmd)}
	}
}

func (d *Dispatcher) cmdQueue(ctx context.Context, actorID, actorName string, args []string) Reply {
	if len(args) == 0 {
		d.audit.Record(ctx, actorID, actorName, "queue_add", "rejected: no numbers given", false)
		return Reply{Text: "usage: !queue <number> [number ...]"}
	}
	queued := make([]int, 0, len(args))
	startedRound := false
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			d.audit.Record(ctx, actorID, actorName, "queue_add",
				fmt.Sprintf("queued %v, then rejected %q", queued, a), false)
			return Reply{Text: fmt.Sprintf("%q is not a number", a)}
		}
		started, err := d.coord.EnqueueNumber(ctx, n)
		if err != nil {
			d.audit.Record(ctx, actorID, actorName, "queue_add",
				fmt.Sprintf("queued %v, then %d failed: %v", queued, n, err), false)
			return Reply{Text: fmt.Sprintf("could not queue %d: %s", n, friendly(err))}
		}
		queued = append(queued, n)
		if started {
			startedRound = true
		}
	}
	d.audit.Record(ctx, actorID, actorName, "queue_add", fmt.Sprintf("queued %v", queued), true)
	out := fmt.Sprintf("queued %s (queue length %d)", joinInts(queued), d.coord.Queue().Len())
	if startedRound {
		out += ", round started"
	}
	return Reply{OK: true, Text: out}
}

func (d *Dispatcher) cmdSpin(ctx context.Context, actorID, actorName string, args []string) Reply {
	if len(args) != 1 {
		d.audit.Record(ctx, actorID, actorName, "manual_spin", "rejected: want one number", false)
		return Reply{Text: "usage: !spin <number>"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		d.audit.Record(ctx, actorID, actorName, "manual_spin", fmt.Sprintf("rejected %q: not a number", args[0]), false)
		return Reply{Text: fmt.Sprintf("%q is not a number", args[0])}
	}
	if err := d.coord.TriggerManualSpin(ctx, n); err != nil {
		d.audit.Record(ctx, actorID, actorName, "manual_spin", fmt.Sprintf("spin %d failed: %v", n, err), false)
		return Reply{Text: friendly(err)}
	}
	d.audit.Record(ctx, actorID, actorName, "manual_spin", fmt.Sprintf("manual spin %d", n), true)
	if d.coord.Snapshot(ctx).IsSpinning {
		return Reply{OK: true, Text: fmt.Sprintf("spinning %d now", n)}
	}
	return Reply{OK: true, Text: fmt.Sprintf("%d parked at the queue head, waiting for the next round", n)}
}

func (d *Dispatcher) cmdStartRound(ctx context.Context, actorID, actorName string) Reply {
	if err := d.coord.StartRound(ctx); err != nil {
		d.audit.Record(ctx, actorID, actorName, "round_start", fmt.Sprintf("failed: %v", err), false)
		return Reply{Text: friendly(err)}
	}
	d.audit.Record(ctx, actorID, actorName, "round_start", "round started", true)
	secs := d.coord.Snapshot(ctx).RoundDurationMS / 1000
	return Reply{OK: true, Text: fmt.Sprintf("round started (%ds)", secs)}
}

func (d *Dispatcher) cmdEndRound(ctx context.Context, actorID, actorName string) Reply {
	if err := d.coord.TriggerRoundEnd(ctx); err != nil {
		d.audit.Record(ctx, actorID, actorName, "round_end", fmt.Sprintf("failed: %v", err), false)
		return Reply{Text: friendly(err)}
	}
	d.audit.Record(ctx, actorID, actorName, "round_end", "round ended early", true)
	snap := d.coord.Snapshot(ctx)
	if snap.IsSpinning && snap.ResultNumber != nil {
		return Reply{OK: true, Text: fmt.Sprintf("round ended, spinning %d", *snap.ResultNumber)}
	}
	return Reply{OK: true, Text: "round ended, queue was empty"}
}

func (d *Dispatcher) cmdList(ctx context.Context, actorID, actorName string) Reply {
	values := d.coord.Queue().Values()
	d.audit.Record(ctx, actorID, actorName, "queue_list", fmt.Sprintf("%d queued", len(values)), true)
	if len(values) == 0 {
		return Reply{OK: true, Text: "queue empty"}
	}
	return Reply{OK: true, Text: fmt.Sprintf("queue (%d): %s", len(values), joinInts(values))}
}

func (d *Dispatcher) cmdDel(ctx context.Context, actorID, actorName string, args []string) Reply {
	if len(args) != 1 {
		d.audit.Record(ctx, actorID, actorName, "queue_remove", "rejected: want one number", false)
		return Reply{Text: "usage: !del <number>"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		d.audit.Record(ctx, actorID, actorName, "queue_remove", fmt.Sprintf("rejected %q: not a number", args[0]), false)
		return Reply{Text: fmt.Sprintf("%q is not a number", args[0])}
	}
	if err := roulette.Validate(n); err != nil {
		d.audit.Record(ctx, actorID, actorName, "queue_remove", fmt.Sprintf("rejected %d: %v", n, err), false)
		return Reply{Text: friendly(err)}
	}

	before := d.coord.Queue().Values()
	removed := d.coord.Queue().RemoveValue(n)

	// the queued value has no foreign key to a stored row; scrubbing
	// the newest result with the same number is best-effort bookkeeping
	scrubbed := 0
	if d.store.IsConfigured() {
		count, err := d.store.SoftDeleteRecentByNumber(ctx, n, 1)
		if err != nil {
			log.Error().Err(err).Int("number", n).Msg("soft delete by number failed")
		} else {
			scrubbed = count
		}
	}

	oldV := fmt.Sprint(before)
	newV := fmt.Sprint(d.coord.Queue().Values())
	d.audit.RecordChange(ctx, actorID, actorName, "queue_remove",
		fmt.Sprintf("removed %d x %d, scrubbed %d stored", removed, n, scrubbed), &oldV, &newV, true)
	return Reply{OK: true, Text: fmt.Sprintf("removed %d queued %d, soft-deleted %d stored result(s)", removed, n, scrubbed)}
}

func (d *Dispatcher) cmdClearQueue(ctx context.Context, actorID, actorName string) Reply {
	before := d.coord.Queue().Values()
	dropped := d.coord.Queue().Clear()
	oldV := fmt.Sprint(before)
	newV := "[]"
	d.audit.RecordChange(ctx, actorID, actorName, "queue_clear",
		fmt.Sprintf("dropped %d", dropped), &oldV, &newV, true)
	return Reply{OK: true, Text: fmt.Sprintf("queue cleared, dropped %d", dropped)}
}

func (d *Dispatcher) cmdHistory(ctx context.Context, actorID, actorName string, args []string) Reply {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		if k, err := strconv.Atoi(args[0]); err == nil && k > 0 {
			limit = k
		}
	}
	if limit > 50 {
		limit = 50
	}
	results, err := d.store.ListResults(ctx, limit, false)
	if errors.Is(err, store.ErrNotConfigured) {
		return Reply{Text: "history unavailable, no database configured"}
	}
	if err != nil {
		d.audit.Record(ctx, actorID, actorName, "history_view", fmt.Sprintf("failed: %v", err), false)
		return Reply{Text: "could not load history"}
	}
	d.audit.Record(ctx, actorID, actorName, "history_view", fmt.Sprintf("listed %d", len(results)), true)
	if len(results) == 0 {
		return Reply{OK: true, Text: "no results yet"}
	}
	lines := make([]string, 0, len(results)+1)
	lines = append(lines, fmt.Sprintf("last %d results:", len(results)))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s  %2d %s/%s  %s",
			r.ID, r.Number, r.Color, r.Parity, r.OccurredAt.Format("2006-01-02 15:04:05")))
	}
	return Reply{OK: true, Text: strings.Join(lines, "\n")}
}

// cmdResultFlag handles the three by-id result mutations, which share
// their shape: one id argument, one store call, found/not-found reply.
func (d *Dispatcher) cmdResultFlag(ctx context.Context, actorID, actorName string, args []string, action string) Reply {
	if len(args) != 1 {
		d.audit.Record(ctx, actorID, actorName, action, "rejected: want one id", false)
		return Reply{Text: "usage: " + map[string]string{
			"result_delete":  "!delresult <id>",
			"result_restore": "!restore <id>",
			"result_purge":   "!purge <id>",
		}[action]}
	}
	id := args[0]

	var found bool
	var err error
	var verb string
	switch action {
	case "result_delete":
		found, err = d.store.SoftDeleteResult(ctx, id)
		verb = "soft-deleted"
	case "result_restore":
		found, err = d.store.RestoreResult(ctx, id)
		verb = "restored"
	case "result_purge":
		found, err = d.store.HardDeleteResult(ctx, id)
		verb = "permanently deleted"
	}
	if errors.Is(err, store.ErrNotConfigured) {
		return Reply{Text: "results unavailable, no database configured"}
	}
	if err != nil {
		d.audit.Record(ctx, actorID, actorName, action, fmt.Sprintf("%s failed: %v", id, err), false)
		return Reply{Text: "store error, see server log"}
	}
	d.audit.Record(ctx, actorID, actorName, action, fmt.Sprintf("%s %s", verb, id), found)
	if !found {
		return Reply{Text: fmt.Sprintf("result %s not found (or already in that state)", id)}
	}
	return Reply{OK: true, Text: fmt.Sprintf("result %s %s", id, verb)}
}

func (d *Dispatcher) cmdRunState(ctx context.Context, actorID, actorName, action string, op func(context.Context) error, okText string) Reply {
	if err := op(ctx); err != nil {
		d.audit.Record(ctx, actorID, actorName, action, fmt.Sprintf("failed: %v", err), false)
		return Reply{Text: friendly(err)}
	}
	d.audit.Record(ctx, actorID, actorName, action, okText, true)
	return Reply{OK: true, Text: okText}
}

func (d *Dispatcher) cmdReset(ctx context.Context, actorID, actorName string) Reply {
	before := fmt.Sprint(d.coord.Queue().Values())
	if err := d.coord.Reset(ctx); err != nil {
		d.audit.Record(ctx, actorID, actorName, "game_reset", fmt.Sprintf("failed: %v", err), false)
		return Reply{Text: friendly(err)}
	}
	newV := "[]"
	d.audit.RecordChange(ctx, actorID, actorName, "game_reset", "hard reset", &before, &newV, true)
	return Reply{OK: true, Text: "game reset: idle, queue cleared, running"}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// friendly maps sentinel errors to console wording.
func friendly(err error) string {
	switch {
	case errors.Is(err, game.ErrBusy):
		return "another operation is in progress, try again"
	case errors.Is(err, game.ErrNotRunning):
		return "game is not running"
	case errors.Is(err, game.ErrAlreadyRunning):
		return "game is already running"
	case errors.Is(err, game.ErrRoundActive):
		return "a round is already active"
	case errors.Is(err, game.ErrNoActiveRound):
		return "no active round"
	case errors.Is(err, game.ErrAlreadySpinning):
		return "a spin is already in progress"
	case errors.Is(err, game.ErrNotSpinning):
		return "no spin in progress"
	case errors.Is(err, roulette.ErrInvalidNumber):
		return "number must be between 0 and 36"
	case errors.Is(err, queue.ErrQueueFull):
		return "queue is full"
	}
	return err.Error()
}
