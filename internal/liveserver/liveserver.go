// Package liveserver is an observability façade around the execution
// engine: one HTTP endpoint upgrades to a WebSocket connection per run,
// streaming stdout bytes and the final exit code back as they are
// produced. The engine itself never knows it is being watched — this
// package only ever calls the same engine.Run/engine.Engine contract any
// other caller would.
package liveserver

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"aheui/internal/engine"
	"aheui/internal/grid"
	"aheui/internal/trace"
)

// Message is the envelope every frame sent to the client uses.
type Message struct {
	Type     string `json:"type"` // "stdout", "exit", or "error"
	Data     string `json:"data,omitempty"`
	ExitCode int32  `json:"exitCode,omitempty"`
	Session  string `json:"session"`
}

// request is the client's opening frame: the program source and the
// input it should be fed on ReadChar/ReadInt.
type request struct {
	Program string `json:"program"`
	Input   string `json:"input"`
}

// Server upgrades HTTP requests to WebSocket connections and runs one
// program per connection, bounded by Timeout.
type Server struct {
	Timeout  time.Duration
	upgrader websocket.Upgrader
}

// NewServer returns a Server whose runs are bounded by timeout.
func NewServer(timeout time.Duration) *Server {
	return &Server{
		Timeout: timeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req request
	if err := conn.ReadJSON(&req); err != nil {
		return
	}

	session := uuid.NewString()
	ctx, cancel := context.WithTimeout(r.Context(), s.Timeout)
	defer cancel()

	s.run(ctx, conn, session, req)
}

// streamWriter fans every Write call out to the client as a "stdout"
// frame as soon as it happens, instead of buffering a whole run's output.
type streamWriter struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	session string
}

func (sw *streamWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	msg := Message{Type: "stdout", Data: string(p), Session: sw.session}
	if err := sw.conn.WriteJSON(msg); err != nil {
		return 0, err
	}
	return len(p), nil
}

type runResult struct {
	exitCode int32
	err      error
}

func (s *Server) run(ctx context.Context, conn *websocket.Conn, session string, req request) {
	g := grid.Parse(strings.Split(req.Program, "\n"))
	out := &streamWriter{conn: conn, session: session}
	env := engine.NewEnv(g, strings.NewReader(req.Input), out)

	done := make(chan runResult, 1)
	go func() {
		pre := trace.New(g)
		code, err := engine.Run(env, trace.NewTraced(pre))
		done <- runResult{exitCode: code, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			conn.WriteJSON(Message{Type: "error", Data: res.err.Error(), Session: session})
			return
		}
		conn.WriteJSON(Message{Type: "exit", ExitCode: res.exitCode, Session: session})
	case <-ctx.Done():
		// The run's goroutine is left running to completion in the
		// background (the engine has no cancellation hook); only this
		// client-facing report is cut short.
		conn.WriteJSON(Message{Type: "error", Data: "run exceeded the server's time budget", Session: session})
	}
}
