package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Strip is the part of *neopixel.Strip the server drives.
type Strip interface {
	SetLED(index int, c uint32) error
	SetBitmap(a []uint32) error
	Fill(c uint32) error
	Clear() error
	Render() error
	SetBrightness(b uint8)
	Brightness() uint8
	Snapshot() []uint32
	Frame() []byte
	Len() int
	Driver() string
}

// Server exposes a strip over HTTP: a health endpoint, a websocket stream of
// frames and a websocket control channel.
type Server struct {
	mu        sync.Mutex
	strip     Strip
	clock     clock.Clock
	startTime time.Time
	frameID   uint64
	last      []byte
	clients   map[*client]bool
	upgrader  websocket.Upgrader
}

// client serializes writes to one /ws connection.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func New(strip Strip, clk clock.Clock) *Server {
	if clk == nil {
		clk = clock.New()
	}
	return &Server{
		strip:     strip,
		clock:     clk,
		startTime: clk.Now(),
		clients:   map[*client]bool{},
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Handler returns the routes, wrapped with permissive CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/diag", s.HandleDiag)
	return withCORS(mux)
}

// Run broadcasts the strip contents at fps until ctx is done. Unchanged
// frames are skipped.
func (s *Server) Run(ctx context.Context, fps int) {
	ticker := s.clock.Ticker(time.Second / time.Duration(max(1, fps)))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Broadcast(false)
		}
	}
}

// Broadcast sends the frame the driver last put out to every /ws client.
// Without force, a frame identical to the previous one is not sent.
func (s *Server) Broadcast(force bool) {
	rgb := s.strip.Frame()

	s.mu.Lock()
	if !force && bytes.Equal(rgb, s.last) {
		s.mu.Unlock()
		return
	}
	s.last = rgb
	s.frameID++
	id := s.frameID
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: s.clock.Now().UnixNano(), FrameID: id, RGB: rgb})
	for _, c := range clients {
		if err := c.write(b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	// Topology goes out before any frame.
	c.mu.Lock()
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
	s.sendTopology(conn)
	c.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var resp Reply
		var msg Command
		if err := json.Unmarshal(data, &msg); err != nil {
			resp.Error = "bad message: " + err.Error()
		} else if err := s.Apply(msg); err != nil {
			resp.Error = err.Error()
		} else {
			resp.OK = true
		}
		if !resp.OK {
			log.Warn().Str("op", msg.Op).Str("error", resp.Error).Msg("control")
		}
		b, _ := json.Marshal(resp)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"frame_id":   s.frameID,
		"uptime_s":   s.clock.Since(s.startTime).Seconds(),
		"count":      s.strip.Len(),
		"brightness": s.strip.Brightness(),
		"driver":     s.strip.Driver(),
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	top := map[string]any{
		"count":  s.strip.Len(),
		"driver": s.strip.Driver(),
	}
	b, _ := json.Marshal(top)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
