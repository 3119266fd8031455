// Package testserver serves endpoints that exercise the edges of an HTTP
// exchange: redirect chains, slow responses, informational responses and
// binary bodies.
package testserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MaxDelay bounds /delay so a forgotten client cannot pin a handler.
const MaxDelay = time.Minute

// Echo is the document returned by /echo.
type Echo struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Query   string              `json:"query,omitempty"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
}

// NewHandler returns the endpoint tree:
//
//	/echo              request method, headers and body as JSON
//	/status/{code}     responds with code
//	/delay/{ms}        waits, then responds 200
//	/redirect/{n}      302 chain of n hops ending at /echo
//	/early-hints       103 Early Hints, then 200
//	/bytes/{n}         n bytes cycling 0x00..0xff
//	/health            "healthy"
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", echo)
	mux.HandleFunc("/status/", status)
	mux.HandleFunc("/delay/", delay)
	mux.HandleFunc("/redirect/", redirect)
	mux.HandleFunc("/early-hints", earlyHints)
	mux.HandleFunc("/bytes/", binary)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "healthy")
	})
	return mux
}

func echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	headers := make(map[string][]string, len(r.Header)+1)
	for name, values := range r.Header {
		headers[name] = values
	}
	if r.Host != "" {
		headers["Host"] = []string{r.Host}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Echo{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: headers,
		Body:    string(body),
	})
}

func status(w http.ResponseWriter, r *http.Request) {
	code, err := pathInt(r, "/status/")
	if err != nil || code < 200 || code > 599 {
		http.Error(w, "status must be between 200 and 599", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	fmt.Fprint(w, http.StatusText(code))
}

func delay(w http.ResponseWriter, r *http.Request) {
	ms, err := pathInt(r, "/delay/")
	if err != nil || ms < 0 {
		http.Error(w, "delay must be a non-negative number of milliseconds", http.StatusBadRequest)
		return
	}
	d := time.Duration(ms) * time.Millisecond
	if d > MaxDelay {
		d = MaxDelay
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return
	case <-timer.C:
	}
	fmt.Fprintf(w, "waited %dms", d.Milliseconds())
}

func redirect(w http.ResponseWriter, r *http.Request) {
	n, err := pathInt(r, "/redirect/")
	if err != nil || n < 0 {
		http.Error(w, "hop count must be a non-negative integer", http.StatusBadRequest)
		return
	}
	if n == 0 {
		http.Redirect(w, r, "/echo", http.StatusFound)
		return
	}
	w.Header().Set("X-Hops-Left", strconv.Itoa(n))
	http.Redirect(w, r, fmt.Sprintf("/redirect/%d", n-1), http.StatusFound)
}

func earlyHints(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Link", "</style.css>; rel=preload; as=style")
	w.WriteHeader(http.StatusEarlyHints)
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "hinted")
}

func binary(w http.ResponseWriter, r *http.Request) {
	n, err := pathInt(r, "/bytes/")
	if err != nil || n < 0 || n > 1<<24 {
		http.Error(w, "byte count must be between 0 and 16777216", http.StatusBadRequest)
		return
	}
	body := make([]byte, n)
	for i := range body {
		body[i] = byte(i)
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(body)
}

func pathInt(r *http.Request, prefix string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(r.URL.Path, prefix))
}
