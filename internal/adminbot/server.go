package adminbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/game"
)

type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	id        string
	adminID   string
	adminName string
	authed    bool
}

// Server runs the websocket admin console. A connection authenticates
// once with the shared admin key, then sends command messages; replies
// and broadcast game announcements flow back over the same socket.
type Server struct {
	dispatcher *Dispatcher
	adminKey   string
	upgrader   websocket.Upgrader
	mu         sync.Mutex
	clients    map[*Client]bool
}

func NewServer(d *Dispatcher, adminKey string) *Server {
	return &Server{
		dispatcher: d,
		adminKey:   adminKey,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:    map[*Client]bool{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 8), id: uuid.NewString()}

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "auth":
			if c.authed {
				continue
			}
			var auth AuthMessage
			if err := json.Unmarshal(msg, &auth); err != nil {
				continue
			}
			s.handleAuth(c, auth)
		case "command":
			var cmd CommandMessage
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			if !c.authed {
				s.sendCommandResult(c, cmd.RequestID, Reply{Text: "authenticate first"})
				continue
			}
			reply := s.dispatcher.Dispatch(context.Background(), c.adminID, c.adminName, cmd.Text)
			s.sendCommandResult(c, cmd.RequestID, reply)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) handleAuth(c *Client, auth AuthMessage) {
	if s.adminKey != "" && auth.AdminKey != s.adminKey {
		log.Warn().Str("admin", auth.AdminID).Msg("admin auth with bad key")
		s.sendAuthResult(c, false, "invalid_admin_key", "")
		return
	}
	if !s.dispatcher.Allowed(auth.AdminID) {
		s.dispatcher.audit.Record(context.Background(), auth.AdminID, auth.AdminName,
			"auth_rejected", "not on admin list", false)
		log.Warn().Str("admin", auth.AdminID).Msg("admin auth from unlisted id")
		s.sendAuthResult(c, false, "admin_not_allowed", "")
		return
	}

	c.adminID = auth.AdminID
	c.adminName = auth.AdminName
	if c.adminName == "" {
		c.adminName = auth.AdminID
	}
	c.authed = true
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	log.Info().Str("admin", c.adminID).Str("conn_id", c.id).Msg("admin console connected")
	s.sendAuthResult(c, true, "", c.id)
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	if s.clients[c] {
		delete(s.clients, c)
		log.Info().Str("admin", c.adminID).Str("conn_id", c.id).Msg("admin console disconnected")
	}
	s.mu.Unlock()
	safeClose(c.send)
}

func (s *Server) sendAuthResult(c *Client, ok bool, errCode, connID string) {
	msg, _ := json.Marshal(AuthResult{Type: "auth_result", Ok: ok, Error: errCode, ConnID: connID})
	safeSend(c.send, msg)
}

func (s *Server) sendCommandResult(c *Client, requestID string, reply Reply) {
	msg, _ := json.Marshal(CommandResult{Type: "command_result", RequestID: requestID, Ok: reply.OK, Reply: reply.Text})
	safeSend(c.send, msg)
}

// StartAnnouncer relays game lifecycle events to every connected
// console until ctx ends.
func (s *Server) StartAnnouncer(ctx context.Context, events *game.EventBuffer) {
	ch := events.Subscribe()
	go func() {
		defer events.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				text := announcementText(ev)
				if text == "" {
					continue
				}
				msg, _ := json.Marshal(Announcement{
					Type:        "announcement",
					Event:       ev.Event,
					TimestampMS: ev.ServerTS,
					Text:        text,
				})
				s.broadcast(msg)
			}
		}
	}()
}

func (s *Server) broadcast(msg []byte) {
	s.mu.Lock()
	for c := range s.clients {
		safeSend(c.send, msg)
	}
	s.mu.Unlock()
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}

func announcementText(ev game.GameEvent) string {
	data, _ := ev.Data.(map[string]any)
	switch ev.Event {
	case game.EventRoundStarted:
		return "round started, queue numbers now"
	case game.EventSpinCommitted:
		if n, ok := data["number"]; ok {
			return fmt.Sprintf("spinning: %v (%v %v)", n, data["color"], data["parity"])
		}
		return "spinning"
	case game.EventSpinEnded:
		if n, ok := data["number"]; ok {
			return fmt.Sprintf("spin finished: %v", n)
		}
		return "spin finished"
	case game.EventRoundEndedEmpty:
		return "round ended with no queued numbers"
	case game.EventGamePaused:
		return "game paused"
	case game.EventGameResumed:
		return "game resumed"
	case game.EventGameStopped:
		return "game stopped"
	case game.EventGameReset:
		return "game reset"
	case game.EventForcedIdle:
		return "no frontend activity, game idled"
	}
	return ""
}
