package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/pkg/ingest"
	"github.com/xhad/shopsearch/pkg/processor"
	"github.com/xhad/shopsearch/pkg/search"
)

const maxUploadSize = 32 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

type Importer interface {
	Import(ctx context.Context, domain models.Domain, source string) (*ingest.Report, error)
}

type Config struct {
	Addr      string
	UploadDir string
	Logger    *slog.Logger
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Context []string    `json:"context,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type searchRequest struct {
	Query   string   `json:"query"`
	Context []string `json:"context"`
}

type searchResponse struct {
	Result string             `json:"result"`
	Data   []processor.Record `json:"data"`
}

type importResponse struct {
	Message   string   `json:"message"`
	RunID     string   `json:"runId"`
	Total     int      `json:"total"`
	Written   int      `json:"written"`
	Malformed int      `json:"malformed"`
	Errors    []string `json:"errors,omitempty"`
}

type Server struct {
	config   Config
	searcher Searcher
	importer Importer
	// imports of the same domain run one at a time
	importMu map[models.Domain]*sync.Mutex
}

func New(config Config, searcher Searcher, importer Importer) *Server {
	if config.Addr == "" {
		config.Addr = ":8001"
	}
	if config.UploadDir == "" {
		config.UploadDir = "./data"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Server{
		config:   config,
		searcher: searcher,
		importer: importer,
		importMu: map[models.Domain]*sync.Mutex{
			models.DomainCatalog: {},
			models.DomainOrder:   {},
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/importProducts", s.handleImport(models.DomainCatalog))
	mux.HandleFunc("POST /api/importOrders", s.handleImport(models.DomainOrder))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return withCORS(mux)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.config.Addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		s.config.Logger.Info("starting server", "addr", s.config.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	resp, err := s.searcher.Search(r.Context(), search.Request{Query: req.Query, PriorTurns: req.Context})
	if err != nil {
		s.config.Logger.Error("search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Result: resp.Answer, Data: resp.Records})
}

func (s *Server) handleImport(domain models.Domain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded."})
			return
		}
		defer file.Close()

		path, err := s.saveUpload(header.Filename, file)
		if err != nil {
			s.config.Logger.Error("upload failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "File upload failed"})
			return
		}

		// The collection is dropped before it is refilled, so a client that
		// goes away must not stop the import halfway.
		ctx := context.WithoutCancel(r.Context())

		mu := s.importMu[domain]
		mu.Lock()
		report, err := s.importer.Import(ctx, domain, path)
		mu.Unlock()
		if err != nil {
			s.config.Logger.Error("import failed", "domain", domain, "file", path, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error during file processing."})
			return
		}

		resp := importResponse{
			Message:   report.Summary(),
			RunID:     report.RunID,
			Total:     report.Total,
			Written:   report.Written,
			Malformed: report.Malformed,
		}
		for _, e := range report.Errors {
			resp.Errors = append(resp.Errors, e.Error())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) saveUpload(name string, src io.Reader) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.config.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return path, nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.config.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.config.Logger.Warn("error reading message", "error", err)
			}
			return
		}
		if msg.Type != "query" {
			s.sendMessage(conn, Message{Type: "error", Content: fmt.Sprintf("unknown message type %q", msg.Type)})
			continue
		}
		s.handleMessage(r.Context(), conn, msg)
	}
}

func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, msg Message) {
	resp, err := s.searcher.Search(ctx, search.Request{Query: msg.Content, PriorTurns: msg.Context})
	if err != nil {
		s.config.Logger.Error("search failed", "error", err)
		s.sendMessage(conn, Message{Type: "error", Content: "Search failed"})
		return
	}
	s.sendMessage(conn, Message{Type: "response", Content: resp.Answer, Data: resp.Records})
}

func (s *Server) sendMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.config.Logger.Warn("error sending message", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
