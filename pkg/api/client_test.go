package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/zdash/pkg/metrics"
)

type fakeSession struct {
	mu     sync.Mutex
	token  string
	clears int
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.token = ""
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *fakeSession) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	sess := &fakeSession{token: token}
	c := New(srv.URL+"/api/", sess, 5*time.Second)
	return c, sess
}

func TestRequestAttachesBearer(t *testing.T) {
	var gotAuth, gotID, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}, "tok123")

	if _, err := c.Request(context.Background(), "/registrations", RequestOptions{}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotID == "" {
		t.Error("missing request id")
	}
	if gotPath != "/api/registrations" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestRequestOmitsBearerWithoutToken(t *testing.T) {
	var gotAuth []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values("Authorization")
	}, "")
	if _, err := c.Request(context.Background(), "/x", RequestOptions{}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(gotAuth) != 0 {
		t.Fatalf("expected no authorization header, got %v", gotAuth)
	}
}

func TestRequestAuthExpired(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		for _, body := range []string{"", "forbidden", `{"error":"nope"}`} {
			c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				io.WriteString(w, body)
			}, "tok")
			hooks := 0
			c.OnAuthExpired = func() { hooks++ }

			_, err := c.Request(context.Background(), "/x", RequestOptions{})
			if !errors.Is(err, ErrAuthExpired) {
				t.Fatalf("%d %q: err = %v", code, body, err)
			}
			if sess.clears != 1 {
				t.Fatalf("%d %q: clears = %d, want 1", code, body, sess.clears)
			}
			if hooks != 1 {
				t.Fatalf("%d %q: hooks = %d, want 1", code, body, hooks)
			}
		}
	}
}

func TestRequestFailed(t *testing.T) {
	tests := []struct {
		code int
		body string
		want string
	}{
		{http.StatusInternalServerError, "boom", "boom"},
		{http.StatusNotFound, "", "HTTP error! Status: 404"},
		{http.StatusBadRequest, "  \n", "HTTP error! Status: 400"},
	}
	for _, tc := range tests {
		c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.code)
			io.WriteString(w, tc.body)
		}, "tok")
		_, err := c.Request(context.Background(), "/x", RequestOptions{})
		var rf *RequestFailedError
		if !errors.As(err, &rf) {
			t.Fatalf("%d: expected RequestFailedError, got %v", tc.code, err)
		}
		if rf.Status != tc.code || rf.Error() != tc.want {
			t.Errorf("%d: got %d %q, want %q", tc.code, rf.Status, rf.Error(), tc.want)
		}
		if sess.clears != 0 {
			t.Errorf("%d: session cleared on non-auth failure", tc.code)
		}
	}
}

func TestRequestJSONAndText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/json") {
			w.Header().Set("Content-Type", "application/json;charset=UTF-8")
			io.WriteString(w, `{"a":1,"b":["x"]}`)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "Registration approved")
	}, "tok")

	body, err := c.Request(context.Background(), "/json", RequestOptions{})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	m, ok := body.Value.(map[string]any)
	if !body.IsJSON || !ok || m["a"].(float64) != 1 {
		t.Fatalf("unexpected json body %#v", body.Value)
	}

	body, err = c.Request(context.Background(), "/text", RequestOptions{})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if body.IsJSON || body.Text != "Registration approved" {
		t.Fatalf("unexpected text body %#v", body)
	}
}

func TestRequestBadJSONIsMalformed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"a":`)
	}, "tok")
	_, err := c.Request(context.Background(), "/x", RequestOptions{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v", err)
	}
}

func TestRequestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sess := &fakeSession{token: "tok"}
	c := New(url, sess, time.Second)
	_, err := c.Request(context.Background(), "/x", RequestOptions{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var rf *RequestFailedError
	if errors.As(err, &rf) || errors.Is(err, ErrAuthExpired) {
		t.Fatalf("transport error mistranslated: %v", err)
	}
	if sess.clears != 0 {
		t.Fatal("transport error must not clear the session")
	}
}

func TestRequestQueryAndJSONBody(t *testing.T) {
	var gotQuery, gotType, gotBody, gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query().Get("reason")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}, "tok")

	_, err := c.Request(context.Background(), "/registrations/1/reject", RequestOptions{
		Method: http.MethodPost,
		Query:  map[string][]string{"reason": {"missing docs & id"}},
		JSON:   map[string]string{"k": "v"},
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotMethod != http.MethodPost || gotQuery != "missing docs & id" {
		t.Errorf("method/query = %s %q", gotMethod, gotQuery)
	}
	if gotType != "application/json" || gotBody != `{"k":"v"}` {
		t.Errorf("body = %s %q", gotType, gotBody)
	}
}

func TestRequestRecordsMetrics(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}, "tok")
	c.Metrics = metrics.New()
	c.Request(context.Background(), "/x", RequestOptions{})

	rec := httptest.NewRecorder()
	c.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `zdash_api_requests_total{code="418",method="GET"} 1`) {
		t.Fatalf("metrics missing request:\n%s", rec.Body.String())
	}
}
