package matchclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-match/internal/obslog"
	"github.com/park285/cheese-match/pkg/chessdto"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

type UpdateCallback func(*chessdto.MatchDto)

type StateCallback func(State)

// Watcher follows the game-progress socket of one match and reconnects
// with backoff when the connection drops.
type Watcher struct {
	url string

	mu    sync.Mutex
	conn  *websocket.Conn
	state State

	cbM      sync.RWMutex
	onUpdate []UpdateCallback
	onState  []StateCallback

	maxReconnectAttempts int
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// NewWatcher builds a watcher for matchID on a hub at wsBase, e.g.
// ws://localhost:8081.
func NewWatcher(wsBase, matchID string, maxReconnectAttempts int) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		url:                  strings.TrimRight(wsBase, "/") + "/queue/game-progress/" + matchID,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
		rootCtx:              ctx,
		rootCancel:           cancel,
	}
}

func (w *Watcher) OnUpdate(cb UpdateCallback) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.onUpdate = append(w.onUpdate, cb)
}

func (w *Watcher) OnStateChange(cb StateCallback) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.onState = append(w.onState, cb)
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Connect dials once; on failure a background reconnect is scheduled
// and the dial error is returned.
func (w *Watcher) Connect(ctx context.Context) error {
	if s := w.State(); s == StateConnected || s == StateConnecting {
		return nil
	}
	w.setState(StateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := w.dial(dialCtx); err != nil {
		w.setState(StateFailed)
		w.scheduleReconnect()
		return err
	}
	return nil
}

func (w *Watcher) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, w.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	w.setState(StateConnected)

	w.wg.Add(2)
	go w.listen(conn)
	go w.pingLoop(conn)
	return nil
}

func (w *Watcher) listen(conn *websocket.Conn) {
	defer w.wg.Done()
	for {
		var dto chessdto.MatchDto
		if err := wsjson.Read(w.rootCtx, conn, &dto); err != nil {
			if w.isStopping() {
				return
			}
			obslog.L().Warn("watch_read_error", zap.String("url", w.url), zap.Error(err))
			w.drop(conn, "reconnect")
			return
		}

		w.cbM.RLock()
		cbs := append([]UpdateCallback(nil), w.onUpdate...)
		w.cbM.RUnlock()
		for _, cb := range cbs {
			cb(&dto)
		}
	}
}

func (w *Watcher) pingLoop(conn *websocket.Conn) {
	defer w.wg.Done()
	t := time.NewTicker(w.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-w.stopCh:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(w.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			if errors.Is(err, context.Canceled) || w.isStopping() {
				return
			}
			failures++
			if failures >= 2 {
				w.drop(conn, "ping failure")
				return
			}
		}
	}
}

// drop closes conn if it is still current and starts reconnecting.
func (w *Watcher) drop(conn *websocket.Conn, reason string) {
	w.mu.Lock()
	current := w.conn == conn
	if current {
		w.conn = nil
	}
	w.mu.Unlock()
	_ = conn.Close(websocket.StatusGoingAway, reason)
	if !current {
		return
	}
	w.setState(StateDisconnected)
	w.scheduleReconnect()
}

func (w *Watcher) scheduleReconnect() {
	if w.maxReconnectAttempts <= 0 || w.isStopping() {
		return
	}
	w.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= w.maxReconnectAttempts; attempt++ {
			select {
			case <-w.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			ctx, cancel := context.WithTimeout(w.rootCtx, 10*time.Second)
			err := w.dial(ctx)
			cancel()
			if err == nil {
				return
			}
		}
		w.setState(StateFailed)
	}()
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()

	w.cbM.RLock()
	cbs := append([]StateCallback(nil), w.onState...)
	w.cbM.RUnlock()
	for _, cb := range cbs {
		cb(s)
	}
}

func (w *Watcher) Close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	w.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}
	w.rootCancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *Watcher) isStopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}
