// Package playground serves the front end over a websocket. Each message is
// compiled on its own; no state is kept between messages.
package playground

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"nonek/pkg/ast"
	"nonek/pkg/compiler"
	"nonek/pkg/diag"
	"nonek/pkg/dot"
	"nonek/pkg/lexer"
	"nonek/pkg/parser"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	ModePython = "python"
	ModeDot    = "dot"
	ModeTokens = "tokens"
	ModeAST    = "ast"
)

const readTimeout = 120 * time.Second

// sourceName is used as the file name in rendered diagnostics.
const sourceName = "<playground>"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Request is one compilation request sent by a client.
type Request struct {
	Mode   string `json:"mode"`
	Source string `json:"source"`
}

// Response carries either the output or the rendered error of a request.
// Line is 0 when the error has no position.
type Response struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line,omitempty"`
}

type Server struct {
	opts   compiler.Options
	logger *slog.Logger
}

func New(opts compiler.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{opts: opts, logger: logger}
}

// Run executes a single request.
func (s *Server) Run(req Request) Response {
	var (
		out string
		err error
	)
	switch req.Mode {
	case ModePython, "":
		out, err = compiler.Compile(req.Source, s.opts)
	case ModeDot:
		out, err = dot.Compile(req.Source)
	case ModeTokens:
		out, err = lexer.Dump(req.Source)
	case ModeAST:
		var program *ast.Program
		program, err = parser.Parse(req.Source)
		if err == nil {
			out = program.String()
		}
	default:
		return Response{Error: fmt.Sprintf("unknown mode %q", req.Mode)}
	}
	if err != nil {
		err = diag.WithSource(err, sourceName, req.Source)
		return Response{Error: err.Error(), Kind: diag.Kind(err), Line: diag.Line(err)}
	}
	return Response{Output: out}
}

// Handler routes /ws to the websocket endpoint and /healthz to a liveness probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("playground listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("conn", uuid.New().String())
	logger.Info("websocket connection established", "remote", conn.RemoteAddr().String())

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error("websocket read error", "error", err)
			} else {
				logger.Info("websocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		resp := s.Run(req)
		if resp.Error != "" {
			logger.Debug("request failed", "mode", req.Mode, "kind", resp.Kind, "line", resp.Line)
		} else {
			logger.Debug("request served", "mode", req.Mode, "bytes", len(resp.Output))
		}
		if err := conn.WriteJSON(resp); err != nil {
			logger.Error("websocket write error", "error", err)
			return
		}
	}
}
