package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
	"github.com/msomdec/user-desk/internal/handler"
	"github.com/msomdec/user-desk/internal/remote"
	"github.com/msomdec/user-desk/internal/repository/memory"
	"github.com/msomdec/user-desk/internal/service"
)

const testSessionSecret = "test-secret-for-handler-tests-0123456789"

// upstream mimics the demo users API: writes are echoed but never stored,
// and PUT to an ID it does not know answers 500.
type upstream struct {
	mu    sync.Mutex
	fail  bool
	calls map[string]int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.calls[r.Method+" "+r.URL.Path]++
	fail := u.fail
	u.mu.Unlock()

	if fail {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/users":
		json.NewEncoder(w).Encode([]domain.User{
			{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Company: &domain.Company{Name: "Romaguera-Crona"}},
			{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Company: &domain.Company{Name: "Deckow-Crist"}},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/users":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 11}`)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/users/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/users/"), 10, 64)
		if id < 1 || id > 10 {
			http.Error(w, "TypeError: Cannot read properties of undefined", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"id": `+strconv.FormatInt(id, 10)+`}`)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/users/"):
		io.WriteString(w, `{}`)
	default:
		http.NotFound(w, r)
	}
}

func (u *upstream) setFail(fail bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fail = fail
}

func (u *upstream) count(call string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[call]
}

type testEnv struct {
	srv      *httptest.Server
	upstream *upstream
	client   *http.Client
	sessions *service.SessionService
}

func newTestEnv(t *testing.T, limiter *service.TokenBucket) *testEnv {
	t.Helper()

	up := &upstream{calls: make(map[string]int)}
	upSrv := httptest.NewServer(up)
	t.Cleanup(upSrv.Close)

	users := service.NewUserService(
		remote.New(remote.WithBaseURL(upSrv.URL), remote.WithTimeout(5*time.Second)),
		memory.NewWorkspaceStore(),
	)
	sessions := service.NewSessionService(testSessionSecret, time.Hour)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, users, sessions, limiter, false)

	srv := httptest.NewServer(handler.SecurityHeaders(handler.RequestLogger(mux)))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}

	return &testEnv{
		srv:      srv,
		upstream: up,
		client:   &http.Client{Jar: jar},
		sessions: sessions,
	}
}

// do sends a request with an optional JSON body and returns the status,
// headers and body.
func (e *testEnv) do(t *testing.T, method, path, body string) (int, http.Header, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Datastar-Request", "true")

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, resp.Header, string(data)
}

func (e *testEnv) workspace(t *testing.T) map[string]any {
	t.Helper()
	status, _, body := e.do(t, http.MethodGet, "/api/workspace", "")
	if status != http.StatusOK {
		t.Fatalf("GET /api/workspace: expected 200, got %d: %s", status, body)
	}
	var ws map[string]any
	if err := json.Unmarshal([]byte(body), &ws); err != nil {
		t.Fatalf("decode workspace: %v", err)
	}
	return ws
}
