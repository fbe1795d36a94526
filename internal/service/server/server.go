package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"sacred_computing/internal/model"
	"sacred_computing/internal/repository/archive"
	"sacred_computing/internal/repository/healingcode"
	userRepo "sacred_computing/internal/repository/user"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/service/hub"
	"sacred_computing/internal/utils/log"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type (
	HttpServer struct {
		addr   string
		pacing time.Duration

		// baseCtx bounds every connection's processor; canceling it
		// aborts the staged broadcast pauses. Run replaces it with the
		// server's context before accepting traffic.
		baseCtx context.Context

		hub    *hub.Hub
		engine *sacred.Engine

		archiveRepo *archive.ArchiveRepo
		codeRepo    *healingcode.HealingCodeRepo
		userRepo    *userRepo.UserRepo
	}

	// wsSubscriber adapts a websocket connection to the hub's Subscriber
	// interface. The mutex serializes writes; gorilla connections allow
	// only one concurrent writer.
	wsSubscriber struct {
		id   string
		conn *websocket.Conn
		mu   sync.Mutex
	}
)

func NewHttpServer(
	addr string,
	pacing time.Duration,
	h *hub.Hub,
	engine *sacred.Engine,
	archiveRepo *archive.ArchiveRepo,
	codeRepo *healingcode.HealingCodeRepo,
	users *userRepo.UserRepo,
) *HttpServer {
	return &HttpServer{
		addr:        addr,
		pacing:      pacing,
		baseCtx:     context.Background(),
		hub:         h,
		engine:      engine,
		archiveRepo: archiveRepo,
		codeRepo:    codeRepo,
		userRepo:    users,
	}
}

func (s *HttpServer) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", s.HandleWS()).Methods(http.MethodGet)
	r.HandleFunc("/api/healing-codes", s.HandleHealingCodes()).Methods(http.MethodGet)
	r.HandleFunc("/api/soul-archives", s.HandleListArchives()).Methods(http.MethodGet)
	r.HandleFunc("/api/soul-archives", s.HandleCreateArchive()).Methods(http.MethodPost)
	r.HandleFunc("/api/soul-archives/{id}", s.HandleGetArchive()).Methods(http.MethodGet)
	r.HandleFunc("/api/soul-archives/{id}", s.HandleDeleteArchive()).Methods(http.MethodDelete)
	r.HandleFunc("/api/users", s.HandleCreateUser()).Methods(http.MethodPost)

	return r
}

// Run serves until the listener fails or ctx is canceled.
func (s *HttpServer) Run(ctx context.Context) error {
	s.baseCtx = ctx

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("http server listening", zap.String("addr", s.addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HttpServer) HandleWS() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "Failed to upgrade", http.StatusInternalServerError)
			return
		}

		sub := newWSSubscriber(conn)
		proc := NewProcessor(s.hub, s.engine, sub, conn, s.pacing)
		// The request context dies with the handler; the connection
		// outlives it, so the processor rides the server's context
		// instead.
		go proc.Run(s.baseCtx)
	}
}

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (s *wsSubscriber) ID() string {
	return s.id
}

func (s *wsSubscriber) Send(msg *model.BroadcastMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
