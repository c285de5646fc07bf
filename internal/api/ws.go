package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/logging"
)

const (
	watcherSendBuffer = 64
	watcherWriteWait  = 10 * time.Second
)

// watcher is one subscribed connection. Events are queued on send and
// written by the watcher's own goroutine, so a stalled client never
// blocks the broadcaster.
type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

func (w *watcher) writePump() {
	defer w.conn.Close()
	for msg := range w.send {
		w.conn.SetWriteDeadline(time.Now().Add(watcherWriteWait))
		if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = w.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub fans battle notifications out to websocket watchers. It implements
// service.Notifier; the session manager calls it with defensive copies, so
// marshalling here never races with the tick loop. Watchers whose send
// buffer fills up are dropped rather than waited on.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*watcher]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Watch upgrades the connection and subscribes it to one battle's events
// until the client disconnects or falls too far behind.
func (h *Hub) Watch(c *gin.Context) {
	battleID := c.Param("battleID")
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{constants.LogFieldBattleID: battleID})
		return
	}
	w := &watcher{conn: conn, send: make(chan []byte, watcherSendBuffer)}
	h.mu.Lock()
	if h.watchers[battleID] == nil {
		h.watchers[battleID] = make(map[*watcher]bool)
	}
	h.watchers[battleID][w] = true
	h.mu.Unlock()

	go w.writePump()

	// Drain the connection; watchers never send anything meaningful.
	go func() {
		defer h.drop(battleID, w)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(battleID string, w *watcher) {
	h.mu.Lock()
	h.removeLocked(battleID, w)
	h.mu.Unlock()
	w.conn.Close()
}

// removeLocked unregisters a watcher and closes its send channel exactly
// once. Callers hold h.mu; broadcast only sends under the same lock, so
// the close can never race a send.
func (h *Hub) removeLocked(battleID string, w *watcher) {
	conns, ok := h.watchers[battleID]
	if !ok {
		return
	}
	if _, ok := conns[w]; !ok {
		return
	}
	delete(conns, w)
	if len(conns) == 0 {
		delete(h.watchers, battleID)
	}
	close(w.send)
}

type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (h *Hub) broadcast(battleID string, ev event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logging.Error("marshal battle event", err, logging.Fields{constants.LogFieldBattleID: battleID})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[battleID] {
		select {
		case w.send <- msg:
		default:
			h.removeLocked(battleID, w)
		}
	}
}

func (h *Hub) BattleStarted(b *battle.Battle) {
	h.broadcast(b.ID, event{Type: "battle_started", Payload: b})
}

func (h *Hub) TroopDeployed(battleID string, t battle.Troop) {
	h.broadcast(battleID, event{Type: "troop_deployed", Payload: t})
}

func (h *Hub) SpellDeployed(battleID string, s battle.SpellCast) {
	h.broadcast(battleID, event{Type: "spell_deployed", Payload: s})
}

func (h *Hub) TickProcessed(b *battle.Battle) {
	h.broadcast(b.ID, event{Type: "tick", Payload: b})
}

func (h *Hub) BattleEnded(b *battle.Battle, res *battle.Result) {
	h.broadcast(b.ID, event{Type: "battle_ended", Payload: gin.H{"battle": b, "result": res}})
}
