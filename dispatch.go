package hashlinks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"golang.org/x/xerrors"
)

// ErrInvalidOperation is returned for requests that are neither a lookup nor
// a shorten request with a body.
var ErrInvalidOperation = xerrors.New("invalid operation")

// Request is a transport-independent shorten or lookup request.
type Request struct {
	Method string
	// ID is the path-supplied short ID of a lookup.
	ID string
	// Body is the URL to shorten, base64 encoded if IsBase64Encoded is set.
	Body            string
	IsBase64Encoded bool
}

// Response is what a transport should send back for a Request.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
	// Location is set on redirects.
	Location string
}

// Dispatcher turns Requests into Responses using a Shortener.
type Dispatcher struct {
	shortener *Shortener
	logger    *log.Logger
	quiet     bool
}

// NewDispatcher returns a Dispatcher routing to s and logging rejected
// requests to l. If l is nil, logs go to os.Stderr.
func NewDispatcher(s *Shortener, l *log.Logger) *Dispatcher {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}

	return &Dispatcher{
		shortener: s,
		logger:    l,
	}
}

// SetQuiet turns logging of rejected requests off or on.
func (d *Dispatcher) SetQuiet(quiet bool) {
	d.quiet = quiet
}

// Dispatch handles GET as a lookup of req.ID and POST with a body as a request
// to shorten req.Body. Everything else is answered with a client error without
// touching the index.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	op, arg, err := classify(req)
	if err != nil {
		if !d.quiet {
			d.logger.Println("rejected", req.Method, "request:", err)
		}
		return errorResponse(http.StatusBadRequest, invalidOperationMessage(err))
	}

	switch op {
	case opShorten:
		return d.shorten(ctx, arg)
	default:
		return d.resolve(ctx, arg)
	}
}

type operation int

const (
	opResolve operation = iota
	opShorten
)

// classify returns the operation req asks for and its argument, or an error
// matching ErrInvalidOperation.
func classify(req Request) (operation, string, error) {
	switch {
	case req.Method == http.MethodGet:
		return opResolve, req.ID, nil
	case req.Method == http.MethodPost && req.Body != "":
		longURL, err := decodeBody(req)
		if err != nil {
			return 0, "", err
		}
		return opShorten, longURL, nil
	default:
		return 0, "", ErrInvalidOperation
	}
}

func invalidOperationMessage(err error) string {
	if err == ErrInvalidOperation {
		return "Missing or invalid HTTP Method"
	}
	return "Invalid request: " + err.Error()
}

func (d *Dispatcher) resolve(ctx context.Context, id string) Response {
	longURL, err := d.shortener.Resolve(ctx, id)
	if err != nil {
		if xerrors.Is(err, ErrNotFound) {
			return textResponse(http.StatusNotFound, "404 Not Found")
		}
		return errorResponse(http.StatusInternalServerError, "Internal Server Error: "+err.Error())
	}

	resp := textResponse(http.StatusMovedPermanently, longURL)
	resp.Location = longURL
	return resp
}

func (d *Dispatcher) shorten(ctx context.Context, longURL string) Response {
	id, err := d.shortener.Assign(ctx, longURL)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "Internal Server Error: "+err.Error())
	}
	return textResponse(http.StatusOK, id)
}

// decodeBody returns the URL carried in the request body.
func decodeBody(req Request) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}

	raw, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", xerrors.Errorf("body is not valid base64 (%v): %w", err, ErrInvalidOperation)
	}
	if len(raw) == 0 {
		return "", xerrors.Errorf("decoded body is empty: %w", ErrInvalidOperation)
	}
	return string(raw), nil
}

func textResponse(status int, body string) Response {
	return Response{
		StatusCode:  status,
		ContentType: "text/plain",
		Body:        body,
	}
}

// errorResponse builds a JSON body of the form {"error": msg}.
func errorResponse(status int, msg string) Response {
	body, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{msg})

	return Response{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        string(body),
	}
}
