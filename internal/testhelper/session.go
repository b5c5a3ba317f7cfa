// Package testhelper provides Discord sessions whose REST traffic never
// leaves the process.
package testhelper

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
)

// Request is one REST call made through a test session.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Decode unmarshals the request body into v.
func (r Request) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s %s body: %v", r.Method, r.Path, err)
	}
}

// Recorder answers and records REST calls. Respond, when set, chooses the
// status and JSON body per request; otherwise every call gets 200 and "{}".
type Recorder struct {
	Respond func(r *http.Request) (status int, body string)

	mu       sync.Mutex
	requests []Request
}

func (rec *Recorder) RoundTrip(r *http.Request) (*http.Response, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	rec.mu.Lock()
	rec.requests = append(rec.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
	respond := rec.Respond
	rec.mu.Unlock()

	status, payload := http.StatusOK, "{}"
	if respond != nil {
		status, payload = respond(r)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(payload)),
		Request:    r,
	}, nil
}

// Requests returns the calls recorded so far.
func (rec *Recorder) Requests() []Request {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Request, len(rec.requests))
	copy(out, rec.requests)
	return out
}

// Last returns the most recent call.
func (rec *Recorder) Last(t testing.TB) Request {
	t.Helper()
	reqs := rec.Requests()
	if len(reqs) == 0 {
		t.Fatal("no REST request recorded")
	}
	return reqs[len(reqs)-1]
}

// NewSession returns a session that routes REST calls to a Recorder. When
// selfID is set the state holds that bot user, as after READY.
func NewSession(t testing.TB, selfID string) (*discordgo.Session, *Recorder) {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	rec := &Recorder{}
	s.Client = &http.Client{Transport: rec}
	s.MaxRestRetries = 0
	if selfID != "" {
		s.State.User = &discordgo.User{ID: selfID, Username: "distoornament", Bot: true}
	}
	return s, rec
}
