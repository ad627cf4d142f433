package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/cheese-match/internal/obslog"
)

// RoutePrefix is where clients open a socket for one match.
const RoutePrefix = "/queue/game-progress/"

type subscriber struct {
	send chan []byte
}

// Hub relays game-progress messages from Redis to WebSocket clients
// subscribed to the same match.
type Hub struct {
	rdb            *redis.Client
	originPatterns []string
	pingInterval   time.Duration
	writeTimeout   time.Duration

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewHub accepts sockets from allowedOrigin, a URL such as
// http://localhost:4200 or "*".
func NewHub(rdb *redis.Client, allowedOrigin string) *Hub {
	return &Hub{
		rdb:            rdb,
		originPatterns: originPatterns(allowedOrigin),
		pingInterval:   30 * time.Second,
		writeTimeout:   5 * time.Second,
		subs:           make(map[string]map[*subscriber]struct{}),
		ready:          make(chan struct{}),
	}
}

func originPatterns(origin string) []string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil
	}
	if origin == "*" {
		return []string{"*"}
	}
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return []string{u.Host}
	}
	return []string{origin}
}

// Ready is closed once the Redis subscription is live.
func (h *Hub) Ready() <-chan struct{} { return h.ready }

// Run consumes game-progress channels until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	ps := h.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	h.readyOnce.Do(func() { close(h.ready) })
	obslog.L().Info("ws_hub_subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.broadcast(strings.TrimPrefix(msg.Channel, channelPrefix), []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(matchID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[matchID] {
		select {
		case s.send <- payload:
		default:
			obslog.L().Warn("ws_slow_subscriber_drop", zap.String("match_id", matchID))
		}
	}
}

func (h *Hub) add(matchID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[matchID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[matchID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) remove(matchID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[matchID], s)
	if len(h.subs[matchID]) == 0 {
		delete(h.subs, matchID)
	}
}

// Subscribers counts open sockets for matchID.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	matchID := strings.TrimPrefix(r.URL.Path, RoutePrefix)
	if matchID == "" || matchID == r.URL.Path || strings.Contains(matchID, "/") {
		http.NotFound(w, r)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.String("match_id", matchID), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	s := &subscriber{send: make(chan []byte, 16)}
	h.add(matchID, s)
	defer h.remove(matchID, s)
	obslog.L().Info("ws_subscribe", zap.String("match_id", matchID), zap.String("remote", r.RemoteAddr))

	// Clients only listen; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			obslog.L().Info("ws_unsubscribe", zap.String("match_id", matchID))
			return
		case payload := <-s.send:
			wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				obslog.L().Warn("ws_write_error", zap.String("match_id", matchID), zap.Error(err))
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				obslog.L().Warn("ws_ping_error", zap.String("match_id", matchID), zap.Error(err))
				return
			}
		}
	}
}
