package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"tareas-cli/internal/model"
	"tareas-cli/internal/projector"

	"github.com/gorilla/websocket"
	"github.com/starfederation/datastar-go/datastar"
)

// hub fans a "something changed" tick out to every live feed.
type hub struct {
	mu     sync.Mutex
	subs   map[chan struct{}]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: map[chan struct{}]struct{}{}}
}

func (h *hub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

func (h *hub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// close ends every feed (on shutdown).
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (s *Server) signals(sess model.Session, sel projector.Selection) map[string]any {
	s.mu.Lock()
	p := s.project(sess.UserID, sel)
	s.mu.Unlock()
	message := ""
	if p.Empty {
		message = projector.EmptyMessage
	}
	return map[string]any{
		"darkMode":  s.cfg.Theme.DarkMode(),
		"title":     projector.ListTitle,
		"filter":    string(p.Selection.Filter),
		"sort":      string(p.Selection.Sort),
		"total":     p.Counts.Total,
		"completed": p.Counts.Completed,
		"pending":   p.Counts.Pending,
		"message":   message,
		"tasks":     toJSON(p.Tasks),
	}
}

// handleEvents streams the caller's projection (rows, counters, theme) as
// Datastar signal patches, once on connect and again after every change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sel := selectionFrom(r)
	ch, cancel := s.hub.subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(s.signals(sess, sel)); err != nil {
		return
	}

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepalive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := sse.MarshalAndPatchSignals(s.signals(sess, sel)); err != nil {
				return
			}
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "://"+strings.TrimSpace(r.Host))
	},
}

// wsRequest changes the filter/sort of a websocket feed.
type wsRequest struct {
	Filter string `json:"filter"`
	Sort   string `json:"sort"`
}

// handleWS pushes the caller's projection on connect and after every change.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, cancel := s.hub.subscribe()
	defer cancel()

	sel := selectionFrom(r)
	selCh := make(chan projector.Selection, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var req wsRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			next := projector.Selection{Filter: projector.ParseFilter(req.Filter), Sort: projector.ParseSort(req.Sort)}
			select {
			case <-selCh:
			default:
			}
			selCh <- next
		}
	}()

	send := func() error {
		s.mu.Lock()
		p := s.project(sess.UserID, sel)
		s.mu.Unlock()
		msg := listPayload(p)
		msg["type"] = "projection"
		return conn.WriteJSON(msg)
	}
	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case sel = <-selCh:
		case _, ok := <-ch:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"))
				return
			}
		}
		if err := send(); err != nil {
			return
		}
	}
}
