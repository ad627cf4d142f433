package lobby

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/pvpchess"
)

func newTestManagers(t *testing.T) (*Manager, *pvpchess.Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	matches := pvpchess.NewManager(rdb)
	return NewManager(rdb, matches, time.Minute), matches, mr
}

type failingCreator struct{}

func (failingCreator) CreateMatchWithPlayers(ctx context.Context, white, black string) (*chess.Match, error) {
	return nil, errors.New("store unavailable")
}

func TestEnqueuePairsOldestWaitingAsWhite(t *testing.T) {
	m, matches, mr := newTestManagers(t)
	ctx := context.Background()

	first, err := m.Enqueue(ctx, "alice")
	if err != nil || !first.Waiting {
		t.Fatalf("alice: %+v err=%v", first, err)
	}
	again, err := m.Enqueue(ctx, "alice")
	if err != nil || !again.Waiting {
		t.Fatalf("alice again: %+v err=%v", again, err)
	}
	if n, _ := mr.List("lobby:queue"); len(n) != 1 {
		t.Fatalf("queue = %v, want alice once", n)
	}

	paired, err := m.Enqueue(ctx, "bob")
	if err != nil {
		t.Fatalf("bob: %v", err)
	}
	if paired.Waiting || paired.MatchID == "" || paired.Team != chess.Black {
		t.Fatalf("bob ticket %+v", paired)
	}

	status, err := m.Status(ctx, "alice")
	if err != nil {
		t.Fatalf("alice status: %v", err)
	}
	if status.Waiting || status.MatchID != paired.MatchID || status.Team != chess.White {
		t.Fatalf("alice ticket %+v", status)
	}

	match, err := matches.Get(ctx, paired.MatchID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if match.WhitePlayer.Name != "alice" || match.BlackPlayer.Name != "bob" || match.Status != chess.StatusInProgress {
		t.Fatalf("match players %v/%v status %s", match.WhitePlayer, match.BlackPlayer, match.Status)
	}
	if mr.Exists("lobby:queue") {
		list, _ := mr.List("lobby:queue")
		t.Fatalf("queue not drained: %v", list)
	}

	// A paired player re-entering the queue gets the same match back.
	back, err := m.Enqueue(ctx, "bob")
	if err != nil || back.MatchID != paired.MatchID {
		t.Fatalf("bob re-enqueue: %+v err=%v", back, err)
	}
}

func TestExpiredWaitersAreSkipped(t *testing.T) {
	m, _, mr := newTestManagers(t)
	ctx := context.Background()

	if _, err := m.Enqueue(ctx, "alice"); err != nil {
		t.Fatalf("alice: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	ticket, err := m.Enqueue(ctx, "bob")
	if err != nil {
		t.Fatalf("bob: %v", err)
	}
	if !ticket.Waiting {
		t.Fatalf("bob paired with an expired waiter: %+v", ticket)
	}
	list, _ := mr.List("lobby:queue")
	if len(list) != 1 || list[0] != "bob" {
		t.Fatalf("queue = %v, want [bob]", list)
	}
	if _, err := m.Status(ctx, "alice"); !errors.Is(err, ErrNotQueued) {
		t.Fatalf("alice status err = %v", err)
	}
}

func TestLeave(t *testing.T) {
	m, _, _ := newTestManagers(t)
	ctx := context.Background()

	if _, err := m.Enqueue(ctx, "alice"); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := m.Leave(ctx, "alice"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, err := m.Status(ctx, "alice"); !errors.Is(err, ErrNotQueued) {
		t.Fatalf("status after leave: %v", err)
	}
	ticket, err := m.Enqueue(ctx, "bob")
	if err != nil || !ticket.Waiting {
		t.Fatalf("bob: %+v err=%v", ticket, err)
	}
	if err := m.Leave(ctx, " "); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("blank leave: %v", err)
	}
}

func TestEnqueueAssignsGuestName(t *testing.T) {
	m, _, _ := newTestManagers(t)
	ticket, err := m.Enqueue(context.Background(), "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if !strings.HasPrefix(ticket.Player, "guest-") || len(ticket.Player) <= len("guest-") {
		t.Fatalf("guest name %q", ticket.Player)
	}
}

func TestPairingFailureRequeuesWaiter(t *testing.T) {
	_, _, mr := newTestManagers(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	m := NewManager(rdb, failingCreator{}, time.Minute)
	ctx := context.Background()

	if _, err := m.Enqueue(ctx, "alice"); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if _, err := m.Enqueue(ctx, "bob"); err == nil {
		t.Fatalf("expected pairing error")
	}
	ticket, err := m.Status(ctx, "alice")
	if err != nil || !ticket.Waiting {
		t.Fatalf("alice after failed pairing: %+v err=%v", ticket, err)
	}
}
