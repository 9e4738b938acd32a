// Package api exposes the operator debug surface: health, prometheus
// metrics, run status, and a websocket live view of display frames.
// It is an observer only; nothing here can mutate battle state.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"spacerobots2/internal/display"
	"spacerobots2/internal/mob"
)

// liveViewFPS paces websocket frame delivery.
const liveViewFPS = 30

// Status is the driver snapshot served at /api/status.
type Status struct {
	TotalBattles    int    `json:"totalBattles"`
	BattlesPending  int    `json:"battlesPending"`
	FrameGeneration uint64 `json:"frameGeneration"`
}

// StatusFunc supplies the current Status without holding driver locks
// across the request.
type StatusFunc func() Status

// Server is the debug HTTP server.
type Server struct {
	router chi.Router
	log    zerolog.Logger

	buffer *display.Buffer
	status StatusFunc

	// The display buffer is single-consumer; serialize websocket
	// readers over it.
	viewMu   sync.Mutex
	upgrader websocket.Upgrader
}

// NewServer wires the routes. buffer may be nil when the run is
// headless with no live view.
func NewServer(buffer *display.Buffer, status StatusFunc, log zerolog.Logger) *Server {
	s := &Server{
		log:    log,
		buffer: buffer,
		status: status,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16384,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/status", s.handleStatus)
	if buffer != nil {
		r.Get("/ws", s.handleLiveView)
	}

	s.router = r
	return s
}

// Start serves until the listener fails; run it in its own goroutine.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("debug server listening")
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status())
}

// wireMob is the live-view wire format: only externally observable
// fields, mirroring the sensor mask.
type wireMob struct {
	ID     mob.ID       `json:"id"`
	Type   string       `json:"type"`
	Player mob.PlayerID `json:"player"`
	Alive  bool         `json:"alive"`
	X      float32      `json:"x"`
	Y      float32      `json:"y"`
}

type wireFrame struct {
	Generation uint64    `json:"generation"`
	Mobs       []wireMob `json:"mobs"`
}

// handleLiveView streams display frames to one websocket client at a
// bounded rate. Frames are taken with frameSkip so a slow client never
// stalls the simulator.
func (s *Server) handleLiveView(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	limiter := rate.NewLimiter(rate.Limit(liveViewFPS), 1)
	ctx := r.Context()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		wf, ok := s.captureFrame()
		if !ok {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(wf); err != nil {
			return
		}
	}
}

// captureFrame pins the latest frame, copies it to the wire format,
// and releases it.
func (s *Server) captureFrame() (wireFrame, bool) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	frame := s.buffer.AcquireMobs(true)
	if frame == nil {
		return wireFrame{}, false
	}
	defer s.buffer.ReleaseMobs()

	wf := wireFrame{
		Generation: frame.Generation,
		Mobs:       make([]wireMob, 0, len(frame.Mobs)),
	}
	for i := range frame.Mobs {
		m := &frame.Mobs[i]
		wf.Mobs = append(wf.Mobs, wireMob{
			ID:     m.ID,
			Type:   m.Type.String(),
			Player: m.PlayerID,
			Alive:  m.Alive,
			X:      m.Pos.X,
			Y:      m.Pos.Y,
		})
	}
	return wf, true
}
