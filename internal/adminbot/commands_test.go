package adminbot

import (
	"context"
	"strings"
	"testing"
	"time"

	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/store"
	"lucky-wheel/internal/testutil"
)

func newTestDispatcher(t *testing.T, adminIDs []string) (*Dispatcher, *game.Coordinator, *store.Store, func()) {
	t.Helper()
	st, cleanup := testutil.OpenTestStore(t)
	rec := audit.New(st)
	opts := game.Options{
		RoundDuration:    time.Minute,
		SpinAnimation:    time.Minute,
		ActivityTimeout:  time.Minute,
		SweepInterval:    time.Minute,
		LastSpinCacheTTL: time.Minute,
		StoreRetryMax:    2,
		StoreRetryBase:   time.Millisecond,
	}
	coord := game.NewCoordinator(st, rec, queue.New(10), opts)
	return NewDispatcher(coord, st, rec, adminIDs), coord, st, cleanup
}

func TestQueueCommandStartsRound(t *testing.T) {
	d, coord, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()

	reply := d.Dispatch(context.Background(), "alice", "Alice", "!queue 5 17")
	if !reply.OK {
		t.Fatalf("reply = %+v, want ok", reply)
	}
	if !strings.Contains(reply.Text, "round started") {
		t.Fatalf("reply %q missing round start note", reply.Text)
	}
	if coord.Queue().Len() != 2 {
		t.Fatalf("queue length = %d, want 2", coord.Queue().Len())
	}
	if !coord.Snapshot(context.Background()).RoundActive {
		t.Fatal("round not active after !queue on idle machine")
	}
}

func TestQueueCommandRejectsBadNumber(t *testing.T) {
	d, coord, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()

	reply := d.Dispatch(context.Background(), "alice", "", "!queue 40")
	if reply.OK {
		t.Fatalf("reply = %+v, want rejection", reply)
	}
	if coord.Queue().Len() != 0 {
		t.Fatalf("queue length = %d after rejected number, want 0", coord.Queue().Len())
	}

	reply = d.Dispatch(context.Background(), "alice", "", "!queue banana")
	if reply.OK || !strings.Contains(reply.Text, "not a number") {
		t.Fatalf("reply = %+v, want not-a-number message", reply)
	}
}

func TestUnlistedAdminRejected(t *testing.T) {
	d, _, _, cleanup := newTestDispatcher(t, []string{"alice"})
	defer cleanup()
	ctx := context.Background()

	reply := d.Dispatch(ctx, "bob", "Bob", "!queue 5")
	if reply.OK || !strings.Contains(reply.Text, "admin list") {
		t.Fatalf("reply = %+v, want allow-list rejection", reply)
	}

	entries, err := d.audit.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("recent audit: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Action == "command_rejected" && e.ActorID == "bob" && !e.Success {
			found = true
		}
	}
	if !found {
		t.Fatalf("no command_rejected audit entry in %+v", entries)
	}

	if ok := d.Dispatch(ctx, "alice", "", "!status"); !ok.OK {
		t.Fatalf("listed admin rejected: %+v", ok)
	}
}

func TestRejectedCommandsAreAudited(t *testing.T) {
	d, _, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	cases := []struct {
		line   string
		action string
	}{
		{"!queue", "queue_add"},
		{"!spin", "manual_spin"},
		{"!spin abc", "manual_spin"},
		{"!del", "queue_remove"},
		{"!del abc", "queue_remove"},
		{"!del 99", "queue_remove"},
		{"!delresult", "result_delete"},
	}
	for _, tc := range cases {
		before, err := d.audit.Recent(ctx, 50)
		if err != nil {
			t.Fatalf("recent audit before %q: %v", tc.line, err)
		}
		if reply := d.Dispatch(ctx, "alice", "Alice", tc.line); reply.OK {
			t.Fatalf("%q accepted, want rejection", tc.line)
		}
		after, err := d.audit.Recent(ctx, 50)
		if err != nil {
			t.Fatalf("recent audit after %q: %v", tc.line, err)
		}
		if len(after) != len(before)+1 {
			t.Fatalf("%q produced %d audit entries, want exactly 1", tc.line, len(after)-len(before))
		}
		if e := after[0]; e.Action != tc.action || e.Success || e.ActorID != "alice" {
			t.Fatalf("%q audit entry = %+v, want failed %s by alice", tc.line, e, tc.action)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	d, _, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()

	reply := d.Dispatch(context.Background(), "alice", "", "!frobnicate")
	if reply.OK || !strings.Contains(reply.Text, "!help") {
		t.Fatalf("reply = %+v, want unknown-command hint", reply)
	}

	reply = d.Dispatch(context.Background(), "alice", "", "hello there")
	if reply.OK || !strings.Contains(reply.Text, "!help") {
		t.Fatalf("reply = %+v, want command-prefix hint", reply)
	}
}

func TestStatusAndHelp(t *testing.T) {
	d, _, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()

	reply := d.Dispatch(context.Background(), "alice", "", "!status")
	if !reply.OK || !strings.HasPrefix(reply.Text, "state=running") {
		t.Fatalf("status reply = %+v", reply)
	}

	reply = d.Dispatch(context.Background(), "alice", "", "!help")
	if !reply.OK || !strings.Contains(reply.Text, "!queue") {
		t.Fatalf("help reply = %+v", reply)
	}
}

func TestSpinWhileIdleParksNumber(t *testing.T) {
	d, coord, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()

	reply := d.Dispatch(context.Background(), "alice", "", "!spin 32")
	if !reply.OK || !strings.Contains(reply.Text, "waiting") {
		t.Fatalf("reply = %+v, want parked-number message", reply)
	}
	values := coord.Queue().Values()
	if len(values) != 1 || values[0] != 32 {
		t.Fatalf("queue = %v, want [32]", values)
	}
}

func TestSpinDuringRoundCommits(t *testing.T) {
	d, coord, st, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	if err := coord.StartRound(ctx); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	reply := d.Dispatch(ctx, "alice", "", "!spin 0")
	if !reply.OK || !strings.Contains(reply.Text, "spinning 0") {
		t.Fatalf("reply = %+v, want immediate spin", reply)
	}
	results, err := st.ListResults(ctx, 5, false)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 1 || results[0].Number != 0 || results[0].Color != "green" {
		t.Fatalf("results = %+v, want one green zero", results)
	}
}

func TestDelScrubsQueueAndNewestStoredResult(t *testing.T) {
	d, coord, st, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.InsertSpinResult(ctx, 7, "red", "odd"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSpinResult(ctx, 7, "red", "odd"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	coord.Queue().Enqueue(7)
	coord.Queue().Enqueue(3)
	coord.Queue().Enqueue(7)

	reply := d.Dispatch(ctx, "alice", "", "!del 7")
	if !reply.OK {
		t.Fatalf("reply = %+v", reply)
	}
	if !strings.Contains(reply.Text, "removed 2") || !strings.Contains(reply.Text, "soft-deleted 1") {
		t.Fatalf("reply %q, want removed 2 / soft-deleted 1", reply.Text)
	}
	values := coord.Queue().Values()
	if len(values) != 1 || values[0] != 3 {
		t.Fatalf("queue = %v, want [3]", values)
	}
	visible, err := st.ListResults(ctx, 10, false)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("visible results = %d, want 1 after scrub", len(visible))
	}
}

func TestHistoryCommand(t *testing.T) {
	d, _, st, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	r, err := st.InsertSpinResult(ctx, 14, "red", "even")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	reply := d.Dispatch(ctx, "alice", "", "!history")
	if !reply.OK || !strings.Contains(reply.Text, r.ID) {
		t.Fatalf("history reply %q missing id %s", reply.Text, r.ID)
	}

	d2, _, _, cleanup2 := newTestDispatcherNoStore(t)
	defer cleanup2()
	reply = d2.Dispatch(ctx, "alice", "", "!history")
	if reply.OK || !strings.Contains(reply.Text, "no database") {
		t.Fatalf("reply = %+v, want unavailable message", reply)
	}
}

func newTestDispatcherNoStore(t *testing.T) (*Dispatcher, *game.Coordinator, *store.Store, func()) {
	t.Helper()
	st, err := store.Open("sqlite", "")
	if err != nil {
		t.Fatalf("open unconfigured store: %v", err)
	}
	rec := audit.New(st)
	coord := game.NewCoordinator(st, rec, queue.New(10), game.Options{
		RoundDuration: time.Minute, SpinAnimation: time.Minute,
		LastSpinCacheTTL: time.Minute, StoreRetryMax: 1, StoreRetryBase: time.Millisecond,
	})
	return NewDispatcher(coord, st, rec, nil), coord, st, func() { st.Close() }
}

func TestResultFlagCommands(t *testing.T) {
	d, _, st, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	r, err := st.InsertSpinResult(ctx, 20, "black", "even")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	reply := d.Dispatch(ctx, "alice", "", "!delresult "+r.ID)
	if !reply.OK {
		t.Fatalf("delresult reply = %+v", reply)
	}
	reply = d.Dispatch(ctx, "alice", "", "!delresult "+r.ID)
	if reply.OK || !strings.Contains(reply.Text, "not found") {
		t.Fatalf("second delresult reply = %+v, want not found", reply)
	}
	reply = d.Dispatch(ctx, "alice", "", "!restore "+r.ID)
	if !reply.OK {
		t.Fatalf("restore reply = %+v", reply)
	}
	reply = d.Dispatch(ctx, "alice", "", "!purge "+r.ID)
	if !reply.OK {
		t.Fatalf("purge reply = %+v", reply)
	}
	if _, err := st.GetResult(ctx, r.ID); err != store.ErrNotFound {
		t.Fatalf("GetResult after purge = %v, want ErrNotFound", err)
	}
}

func TestRunStateCommands(t *testing.T) {
	d, coord, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	if reply := d.Dispatch(ctx, "alice", "", "!pause"); !reply.OK {
		t.Fatalf("pause reply = %+v", reply)
	}
	if reply := d.Dispatch(ctx, "alice", "", "!pause"); reply.OK || !strings.Contains(reply.Text, "not running") {
		t.Fatalf("second pause reply = %+v", reply)
	}
	if reply := d.Dispatch(ctx, "alice", "", "!resume"); !reply.OK {
		t.Fatalf("resume reply = %+v", reply)
	}
	if reply := d.Dispatch(ctx, "alice", "", "!stop"); !reply.OK {
		t.Fatalf("stop reply = %+v", reply)
	}
	if coord.RunState() != game.RunStateStopped {
		t.Fatalf("run state = %s, want stopped", coord.RunState())
	}

	coord.Queue().Enqueue(9)
	if reply := d.Dispatch(ctx, "alice", "", "!reset"); !reply.OK {
		t.Fatalf("reset reply = %+v", reply)
	}
	if coord.RunState() != game.RunStateRunning {
		t.Fatalf("run state after reset = %s, want running", coord.RunState())
	}
	if coord.Queue().Len() != 0 {
		t.Fatalf("queue length after reset = %d, want 0", coord.Queue().Len())
	}
}

func TestEndRoundCommand(t *testing.T) {
	d, _, _, cleanup := newTestDispatcher(t, nil)
	defer cleanup()
	ctx := context.Background()

	reply := d.Dispatch(ctx, "alice", "", "!endround")
	if reply.OK || !strings.Contains(reply.Text, "no active round") {
		t.Fatalf("reply = %+v, want no-round rejection", reply)
	}

	if r := d.Dispatch(ctx, "alice", "", "!queue 12"); !r.OK {
		t.Fatalf("queue reply = %+v", r)
	}
	reply = d.Dispatch(ctx, "alice", "", "!endround")
	if !reply.OK || !strings.Contains(reply.Text, "spinning 12") {
		t.Fatalf("reply = %+v, want committed 12", reply)
	}
}

func TestAnnouncementText(t *testing.T) {
	events := []string{
		game.EventRoundStarted, game.EventRoundEndedEmpty, game.EventSpinCommitted,
		game.EventSpinEnded, game.EventGamePaused, game.EventGameResumed,
		game.EventGameStopped, game.EventGameReset, game.EventForcedIdle,
	}
	for _, name := range events {
		if announcementText(game.GameEvent{Event: name}) == "" {
			t.Fatalf("no announcement text for %s", name)
		}
	}
	if announcementText(game.GameEvent{Event: "mystery"}) != "" {
		t.Fatal("unknown event produced an announcement")
	}

	got := announcementText(game.GameEvent{
		Event: game.EventSpinCommitted,
		Data:  map[string]any{"number": 17, "color": "black", "parity": "odd"},
	})
	if !strings.Contains(got, "17") || !strings.Contains(got, "black") {
		t.Fatalf("spin announcement = %q, want number and color", got)
	}
}
