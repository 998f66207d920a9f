package relaysdk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testSecret = "s3cr3t"

// fakeRelay is an in-process stand-in for the relay endpoints.
type fakeRelay struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	issued      int
	valid       map[string]bool
	results     map[string]json.RawMessage
	waiters     map[string][]chan json.RawMessage
	convertBody []ConvertRequest
	reply       string // JSON returned by /api/convert
	noEvents    bool
	denyAll     bool // answer every conversion with 401
	// onConvert runs after a job is accepted, with the token it carried.
	onConvert func(token string)
}

func newFakeRelay(t *testing.T) *fakeRelay {
	t.Helper()

	f := &fakeRelay{
		t:       t,
		valid:   make(map[string]bool),
		results: make(map[string]json.RawMessage),
		waiters: make(map[string][]chan json.RawMessage),
		reply:   `{"message":"Workflow was started"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", f.handleToken)
	mux.HandleFunc("POST /api/convert", f.handleConvert)
	mux.HandleFunc("GET /api/result", f.handleResult)
	mux.HandleFunc("GET /api/events", f.handleEvents)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRelay) client() *Client { return NewClient(f.srv.URL) }

func (f *fakeRelay) revokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = make(map[string]bool)
}

func (f *fakeRelay) issuedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued
}

func (f *fakeRelay) convertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.convertBody)
}

func (f *fakeRelay) lastConvert() ConvertRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.convertBody[len(f.convertBody)-1]
}

func (f *fakeRelay) setOnConvert(hook func(token string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onConvert = hook
}

func (f *fakeRelay) waiting(token string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters[token])
}

// publish plays the engine callback.
func (f *fakeRelay) publish(token, payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.results[token] = json.RawMessage(payload)
	for _, ch := range f.waiters[token] {
		ch <- json.RawMessage(payload)
	}
	delete(f.waiters, token)
}

func (f *fakeRelay) bearer(r *http.Request) (string, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	return tok, f.valid[tok]
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func (f *fakeRelay) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Client-Secret") != testSecret {
		writeJSON(w, http.StatusUnauthorized, `{"error":"Unauthorized: Invalid client secret"}`)
		return
	}

	f.mu.Lock()
	f.issued++
	tok := fmt.Sprintf("tok-%d", f.issued)
	f.valid[tok] = true
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, fmt.Sprintf(`{"token":%q,"expiresIn":900}`, tok))
}

func (f *fakeRelay) handleConvert(w http.ResponseWriter, r *http.Request) {
	tok, ok := f.bearer(r)
	f.mu.Lock()
	deny := f.denyAll
	f.mu.Unlock()
	if !ok || deny {
		writeJSON(w, http.StatusUnauthorized, `{"error":"Unauthorized: Invalid token"}`)
		return
	}

	var req ConvertRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.convertBody = append(f.convertBody, req)
	delete(f.results, tok)
	reply, hook := f.reply, f.onConvert
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, reply)
	if hook != nil {
		hook(tok)
	}
}

func (f *fakeRelay) handleResult(w http.ResponseWriter, r *http.Request) {
	tok, ok := f.bearer(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, `{"error":"Unauthorized: Invalid token"}`)
		return
	}

	f.mu.Lock()
	res, found := f.results[tok]
	f.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, `{"status":"pending"}`)
		return
	}
	writeJSON(w, http.StatusOK, string(res))
}

func (f *fakeRelay) handleEvents(w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("token")

	f.mu.Lock()
	valid, noEvents := f.valid[tok], f.noEvents
	f.mu.Unlock()

	if noEvents {
		http.NotFound(w, r)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "invalid token")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ": keep-alive\n\n")
	w.(http.Flusher).Flush()

	ch := make(chan json.RawMessage, 1)
	f.mu.Lock()
	if res, ok := f.results[tok]; ok {
		ch <- res
	} else {
		f.waiters[tok] = append(f.waiters[tok], ch)
	}
	f.mu.Unlock()

	select {
	case payload := <-ch:
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		w.(http.Flusher).Flush()
	case <-r.Context().Done():
	}
}
