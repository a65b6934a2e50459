package playground

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"nonek/pkg/compiler"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/nalgeon/be"
)

func newServer() *Server {
	return New(compiler.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun(t *testing.T) {
	s := newServer()

	resp := s.Run(Request{Mode: ModePython, Source: "Libraries { -> Stdio } Execution { @Stdio.out('hi') }"})
	be.Equal(t, resp.Error, "")
	be.Equal(t, resp.Output, compiler.Header+"print('hi')\n")

	resp = s.Run(Request{Source: "Execution { INT #x }"})
	be.Equal(t, resp.Output, compiler.Header+"x = 0\n")

	resp = s.Run(Request{Mode: ModeDot, Source: "Execution { INT #x }"})
	be.True(t, strings.HasPrefix(resp.Output, "digraph astgraph {"))
	be.True(t, strings.Contains(resp.Output, `[label="VarDecl"]`))

	resp = s.Run(Request{Mode: ModeTokens, Source: "INT #x"})
	be.Equal(t, resp.Output, "1 TYPE \"INT\"\n1 ID \"#x\"\n1 EOF \"\"\n")

	resp = s.Run(Request{Mode: ModeAST, Source: "Execution { INT #x = 1 }"})
	be.Equal(t, resp.Output, "INT #x\n#x = 1\n")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		mode   string
		source string
		kind   string
		line   int
	}{
		{ModePython, "Execution {\n  @Stdio.out('hi')\n}", "SEMANTIC", 2},
		{ModePython, "Execution {\n\n  INT\n}", "SYNTAX", 4},
		{ModeDot, "Execution {\n  INT\n}", "SYNTAX", 3},
		{ModeTokens, "INT\n$", "LEXICAL", 2},
		{ModeAST, "$", "LEXICAL", 1},
	}

	s := newServer()
	for i, tt := range tests {
		resp := s.Run(Request{Mode: tt.mode, Source: tt.source})
		if resp.Kind != tt.kind || resp.Line != tt.line {
			t.Fatalf("tests[%d] - expected %s at line %d, got=%s at line %d (%s)",
				i, tt.kind, tt.line, resp.Kind, resp.Line, resp.Error)
		}
		be.Equal(t, resp.Output, "")
		be.True(t, strings.Contains(resp.Error, "ERROR in <playground>"))
	}

	resp := s.Run(Request{Mode: "wasm", Source: ""})
	be.Equal(t, resp.Error, `unknown mode "wasm"`)
	be.Equal(t, resp.Line, 0)
}

func TestWebsocket(t *testing.T) {
	srv := httptest.NewServer(newServer().Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	be.Err(t, err, nil)
	defer conn.Close()

	requests := []Request{
		{Mode: ModePython, Source: "Execution { INT #a }"},
		{Mode: ModePython, Source: "Execution { #a = 1 }"},
		{Mode: ModeTokens, Source: "#a"},
	}
	var responses []Response
	for _, req := range requests {
		be.Err(t, conn.WriteJSON(req), nil)
		var resp Response
		be.Err(t, conn.ReadJSON(&resp), nil)
		responses = append(responses, resp)
	}

	be.Equal(t, responses[0].Output, compiler.Header+"a = 0\n")
	// Messages are independent, so #a is unknown in the second one.
	be.Equal(t, responses[1].Kind, "SEMANTIC")
	be.Equal(t, responses[1].Line, 1)
	be.Equal(t, responses[2].Output, "1 ID \"#a\"\n1 EOF \"\"\n")
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(newServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	be.Err(t, err, nil)
	defer resp.Body.Close()
	be.Equal(t, resp.StatusCode, http.StatusOK)
}
