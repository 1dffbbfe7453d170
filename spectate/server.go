// Package spectate serves a read-only live view of a game over HTTP and
// websockets.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/brensch/gridsnakes/rules"
	"github.com/brensch/gridsnakes/view"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server is a view.View that publishes every drawn frame to spectators.
type Server struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a server with its own hub.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		hub:    NewHub(logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			// Read-only feed, any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Hub exposes the spectator registry.
func (s *Server) Hub() *Hub { return s.hub }

// ReadUserInputs always returns nothing; spectators cannot steer.
func (s *Server) ReadUserInputs() []view.UserAction { return nil }

// DrawWorld broadcasts a snapshot of g.
func (s *Server) DrawWorld(g *rules.Game) {
	if err := s.hub.Broadcast(view.Snapshot(g)); err != nil {
		s.logger.Error("broadcast frame", "err", err)
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("spectator server listening", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("spectator server: %w", err)
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown spectator server: %w", err)
	}
	return nil
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, ok := s.hub.Latest()
	if !ok {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade spectator", "err", err)
		return
	}
	id := uuid.NewString()
	c := NewConnection(ws)
	s.hub.Add(id, c)
	go c.WritePump()
	c.ReadPump(s.logger)
	s.hub.Remove(id)
}

type pageData struct {
	Frame *view.Frame
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{}
	if f, ok := s.hub.Latest(); ok {
		data.Frame = &f
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

// cellClass names the CSS class for a glyph.
func cellClass(g rune) string {
	switch g {
	case view.GlyphEmpty:
		return "empty"
	case view.GlyphFoodSmall:
		return "food food-1"
	case view.GlyphFoodMedium:
		return "food food-2"
	case view.GlyphFoodLarge:
		return "food food-3"
	case view.GlyphStone:
		return "stone"
	case view.GlyphHead:
		return "snake head"
	case view.GlyphTail:
		return "snake tail"
	case view.GlyphVertical:
		return "snake body-v"
	case view.GlyphHorizontal:
		return "snake body-h"
	}
	return "unknown"
}

type pageCell struct {
	Glyph string
	Class string
}

func rowsOf(f *view.Frame) [][]pageCell {
	out := make([][]pageCell, len(f.Cells))
	for r, row := range f.Cells {
		cells := make([]pageCell, 0, len(row))
		c := 0
		for _, g := range row {
			class := cellClass(g)
			if owner := f.Owners[r][c]; owner >= 0 {
				class += fmt.Sprintf(" p%d", owner)
			}
			cells = append(cells, pageCell{Glyph: string(g), Class: class})
			c++
		}
		out[r] = cells
	}
	return out
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"rows": rowsOf,
	"inc":  func(i int) int { return i + 1 },
}).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>gridsnakes</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; }
#board { border-collapse: collapse; }
#board td { width: 1.2em; height: 1.2em; text-align: center; }
.empty { color: #333; } .food { color: #fc3; } .stone { color: #888; }
.p0 { color: #58f; } .p1 { color: #5e5; } .p2 { color: #e5e; } .p3 { color: #5ee; }
</style>
</head>
<body>
<table id="board">
{{- if .Frame}}
{{range rows .Frame}}<tr>{{range .}}<td class="{{.Class}}">{{.Glyph}}</td>{{end}}</tr>
{{end}}
{{- end}}</table>
<p id="status">{{if .Frame}}{{.Frame.Status}}{{else}}Waiting for the game to start{{end}}</p>
<ul id="snakes">{{if .Frame}}{{range .Frame.Snakes}}<li class="p{{.Player}}">P{{inc .Player}} length {{.Length}}</li>{{end}}{{end}}</ul>
<script>
(function () {
  var classes = {"_": "empty", "'": "food food-1", "^": "food food-2", "A": "food food-3", "!": "stone",
    "o": "snake head", ".": "snake tail", "|": "snake body-v", "=": "snake body-h"};
  function render(f) {
    var board = document.getElementById("board");
    board.innerHTML = "";
    f.cells.forEach(function (row, r) {
      var tr = document.createElement("tr");
      row.split("").forEach(function (g, c) {
        var td = document.createElement("td");
        var owner = f.owners[r][c];
        td.className = (classes[g] || "unknown") + (owner >= 0 ? " p" + owner : "");
        td.textContent = g;
        tr.appendChild(td);
      });
      board.appendChild(tr);
    });
    document.getElementById("status").textContent = f.status;
    var snakes = document.getElementById("snakes");
    snakes.innerHTML = "";
    (f.snakes || []).forEach(function (s) {
      var li = document.createElement("li");
      li.className = "p" + s.player;
      li.textContent = "P" + (s.player + 1) + " length " + s.length;
      snakes.appendChild(li);
    });
  }
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (ev) { render(JSON.parse(ev.data)); };
})();
</script>
</body>
</html>
`))
