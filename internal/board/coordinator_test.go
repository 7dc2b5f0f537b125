package board

import (
	"context"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/balkashynov/kanban/internal/broadcast"
	"github.com/balkashynov/kanban/internal/db"
	"github.com/balkashynov/kanban/internal/models"
)

func pair(t *testing.T, kv db.KV, b broadcast.Broadcaster) (*Store, *Store) {
	t.Helper()
	clock := newClock()
	a := New(kv, WithClock(clock), WithIDGenerator(sequence("a")), WithSource("a"), WithBroadcaster(b))
	c := New(kv, WithClock(clock), WithIDGenerator(sequence("b")), WithSource("b"), WithBroadcaster(b))
	for _, s := range []*Store{a, c} {
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	return a, c
}

// isolated returns two stores on one KV that never hear each other's signals,
// like two processes each running the local bus
func isolated(t *testing.T, kv db.KV) (*Store, *Store) {
	t.Helper()
	clock := newClock()
	a := New(kv, WithClock(clock), WithIDGenerator(sequence("a")), WithSource("a"), WithBroadcaster(broadcast.NewBus()))
	b := New(kv, WithClock(clock), WithIDGenerator(sequence("b")), WithSource("b"), WithBroadcaster(broadcast.NewBus()))
	for _, s := range []*Store{a, b} {
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	return a, b
}

func TestMutationsStartFromLatestStoredBoard(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemory()
	cli, remind := isolated(t, kv)

	created := mustCreate(t, cli, "added from another terminal")
	if _, err := remind.SweepDueSoon(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, err := remind.Task(created); err != nil {
		t.Fatalf("sweep should have adopted the stored board: %v", err)
	}

	moved := mustCreate(t, cli, "moved by the other store")
	if err := remind.Move(ctx, moved, models.ColumnTodo, models.ColumnDoing); err != nil {
		t.Fatalf("move of a task created elsewhere: %v", err)
	}
	local := mustCreate(t, remind, "added locally")

	fresh := newStore(t, kv)
	for _, id := range []string{created, moved, local} {
		if _, err := fresh.Task(id); err != nil {
			t.Fatalf("task %s lost: %v", id, err)
		}
	}
	if column, _, _ := fresh.Locate(moved); column != models.ColumnDoing {
		t.Fatalf("expected %s in doing, got %s", moved, column)
	}
	if got := remind.Adoptions(); got != 2 {
		t.Fatalf("expected two adoptions, got %d", got)
	}
	// cli picked up the sweep before its second create
	if got := cli.Adoptions(); got != 1 {
		t.Fatalf("expected one adoption by cli, got %d", got)
	}
}

func TestSyncReportsBoardsAdoptedByMutations(t *testing.T) {
	ctx := context.Background()
	a, b := isolated(t, db.NewMemory())

	coord := NewCoordinator(b, nil, nil)
	var (
		calls int
		last  models.Board
	)
	coord.OnReplace = func(board models.Board) {
		calls++
		last = board
	}

	fromA := mustCreate(t, a, "from a")
	mustCreate(t, b, "from b")

	replaced, err := coord.Sync(ctx)
	if err != nil || !replaced {
		t.Fatalf("expected the adopted board to be reported, got replaced=%v err=%v", replaced, err)
	}
	if calls != 1 || len(last.Todo) != 2 || last.Todo[1].ID != fromA {
		t.Fatalf("unexpected notification: calls=%d todo=%#v", calls, last.Todo)
	}
	if replaced, _ := coord.Sync(ctx); replaced || calls != 1 {
		t.Fatalf("nothing new must not notify again")
	}
}

func TestCoordinatorPollsWithoutSharedSignals(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := isolated(t, db.NewMemory())
	replaced := runCoordinator(t, ctx, b, broadcast.NewBus(), 10*time.Millisecond)

	id := mustCreate(t, a, "seen by polling")
	got := waitForBoard(t, replaced)
	if len(got.Todo) != 1 || got.Todo[0].ID != id {
		t.Fatalf("unexpected board after poll: %#v", got.Todo)
	}
}

func TestReconcileConvergesStoresSharingStorage(t *testing.T) {
	ctx := context.Background()
	a, b := pair(t, db.NewMemory(), nil)

	if replaced, err := b.Reconcile(ctx); err != nil || replaced {
		t.Fatalf("nothing written yet, got replaced=%v err=%v", replaced, err)
	}

	id := mustCreate(t, a, "shared")
	replaced, err := b.Reconcile(ctx)
	if err != nil || !replaced {
		t.Fatalf("expected b to adopt a's write, got replaced=%v err=%v", replaced, err)
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("stores diverged after reconcile")
	}

	if err := b.Move(ctx, id, models.ColumnTodo, models.ColumnDoing); err != nil {
		t.Fatalf("move: %v", err)
	}
	if replaced, err := a.Reconcile(ctx); err != nil || !replaced {
		t.Fatalf("expected a to adopt b's write, got replaced=%v err=%v", replaced, err)
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("stores diverged after second reconcile")
	}

	if replaced, _ := a.Reconcile(ctx); replaced {
		t.Fatalf("reconcile without new writes must not replace the board")
	}
}

func waitForBoard(t *testing.T, ch <-chan models.Board) models.Board {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for board replacement")
	}
	return models.Board{}
}

func runCoordinator(t *testing.T, ctx context.Context, store *Store, b broadcast.Broadcaster, interval time.Duration) <-chan models.Board {
	t.Helper()
	replaced := make(chan models.Board, 8)
	coord := NewCoordinator(store, b, nil)
	coord.Interval = interval
	coord.OnReplace = func(board models.Board) { replaced <- board }
	done, err := coord.Start(ctx)
	if err != nil {
		t.Fatalf("start coordinator: %v", err)
	}
	t.Cleanup(func() {
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Errorf("coordinator did not stop")
		}
	})
	return replaced
}

func TestCoordinatorFollowsLocalBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := broadcast.NewBus()
	a, b := pair(t, db.NewMemory(), bus)
	replaced := runCoordinator(t, ctx, b, bus, 0)

	id := mustCreate(t, a, "from a")
	got := waitForBoard(t, replaced)
	if len(got.Todo) != 1 || got.Todo[0].ID != id {
		t.Fatalf("unexpected board after signal: %#v", got.Todo)
	}
	if _, err := b.Task(id); err != nil {
		t.Fatalf("b should know the task now: %v", err)
	}
}

func TestCoordinatorFollowsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := db.NewRedis(client)
	signals := broadcast.NewRedis(client, "kanban:test", nil)
	a, b := pair(t, kv, signals)
	replaced := runCoordinator(t, ctx, b, signals, 0)

	id := mustCreate(t, a, "over redis")
	got := waitForBoard(t, replaced)
	if len(got.Todo) != 1 || got.Todo[0].ID != id {
		t.Fatalf("unexpected board after signal: %#v", got.Todo)
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("stores diverged")
	}
}

func TestSyncWithoutChangesDoesNotNotify(t *testing.T) {
	a, _ := pair(t, db.NewMemory(), nil)
	mustCreate(t, a, "local")

	coord := NewCoordinator(a, nil, nil)
	called := false
	coord.OnReplace = func(models.Board) { called = true }
	replaced, err := coord.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if replaced || called {
		t.Fatalf("own writes must not trigger a replacement")
	}
}
