// Package server bridges a casino session onto websocket clients. Clients
// send command lines; replies go to the sender and notifications go to
// everyone.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/session"
)

const defaultHistoryLimit = 20

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	httpServer  *http.Server

	session *session.Session
	history session.History
}

// NewServer creates a new WebSocket server
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// The bridge is meant for a local presentation layer.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetSession attaches the session clients will drive. The server is usually
// the session's notifier, so it is created first.
func (s *Server) SetSession(sess *session.Session, history session.History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.history = history
}

// Session returns the attached session, if any.
func (s *Server) Session() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/history", s.handleHistory)
	})
	return r
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop disconnects every client and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.connections = make(map[*Connection]bool)
	s.mu.Unlock()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "id", conn.ID(), "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	_, ok := s.connections[conn]
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	if ok {
		s.logger.Info("Client disconnected", "id", conn.ID(), "total", total)
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Broadcast sends msg to every connected client.
func (s *Server) Broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("Failed to send message to client", "error", err, "id", conn.ID())
			continue
		}
		count++
	}
	s.logger.Debug("Broadcasted message", "type", msg.Type, "recipients", count)
}

// Notify implements notify.Notifier. It runs under the session lock, so it
// reads the balance from the ledger and nothing else from the session.
func (s *Server) Notify(message string, kind notify.Kind) {
	msg := &Message{
		Type:      MessageTypeNotification,
		Kind:      kind,
		Text:      message,
		Timestamp: time.Now(),
	}
	if sess := s.Session(); sess != nil {
		msg.Balance = sess.Balance()
	}
	s.Broadcast(msg)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := newConnection(conn, s)
	s.register(client)

	welcome := &Message{Type: MessageTypeWelcome, Timestamp: time.Now()}
	if sess := s.Session(); sess != nil {
		welcome.Output = sess.Status()
		welcome.Game = string(sess.Current())
		welcome.Balance = sess.Balance()
	}
	_ = client.SendMessage(welcome)
	client.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.Session()
	if sess == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no session attached")
		return
	}
	resp := StatusResponse{
		Game:    string(sess.Current()),
		Active:  []string{},
		Balance: sess.Balance(),
		Status:  sess.Status(),
		Pending: sess.Pending(),
	}
	for _, k := range sess.Active() {
		resp.Active = append(resp.Active, string(k))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()
	if history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "round history is not recorded")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rounds, err := history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to load history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	out := make([]RoundResponse, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, roundResponse(round))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
