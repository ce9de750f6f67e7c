package hashlinks

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// maxBodySize limits the size of URLs accepted for shortening.
const maxBodySize = 1 << 20

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

type Server struct {
	dispatcher *Dispatcher
	logger     *log.Logger
	quiet      bool
}

// NewServer returns a new Server handing requests to d and logging to l.
// If l is nil, a default like the log package's default logger
// will be used, which means logs will appear on os.Stderr.
func NewServer(d *Dispatcher, l *log.Logger) *Server {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}

	return &Server{
		dispatcher: d,
		logger:     l,
	}
}

// SetQuiet turns per-request log lines off or on.
func (s *Server) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// SetupRoutes registers the shorten and resolve handlers on the router.
// POST / shortens the URL in the request body, GET /{id} redirects to the URL
// mapped to id. Other methods are passed on as well, so they get a proper
// error response instead of the router's 405.
func (s *Server) SetupRoutes(r chi.Router) {
	r.Use(requestID, middleware.Recoverer)
	r.HandleFunc("/", s.dispatch)
	r.HandleFunc("/{id}", s.dispatch)
}

// requestID tags every request with an ID, reusing one sent by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the ID the server assigned to the request ctx belongs to.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// dispatch converts the HTTP request into a Request, lets the dispatcher handle
// it and writes the Response back to the client.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeResponse(w, errorResponse(http.StatusBadRequest, "could not read request body: "+err.Error()))
		return
	}

	req := Request{
		Method:          r.Method,
		ID:              chi.URLParam(r, "id"),
		Body:            string(body),
		IsBase64Encoded: strings.EqualFold(r.Header.Get("Content-Transfer-Encoding"), "base64"),
	}

	resp := s.dispatcher.Dispatch(r.Context(), req)

	if !s.quiet {
		s.logger.Println(RequestID(r.Context()), r.Method, r.URL.Path, resp.StatusCode)
	}

	writeResponse(w, resp)
}

// writeResponse writes resp to the client.
func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", resp.ContentType)
	if resp.Location != "" {
		w.Header().Set("Location", resp.Location)
	}
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}
