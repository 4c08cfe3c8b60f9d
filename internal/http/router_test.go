package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	appmatch "padel-score-service/internal/app/match"
	domainmatch "padel-score-service/internal/domain/match"
	"padel-score-service/internal/http/handlers"
	"padel-score-service/internal/kv"
	"padel-score-service/internal/live"
	"padel-score-service/internal/matchlog"
	"padel-score-service/internal/metrics"
	"padel-score-service/internal/persist"
	"padel-score-service/internal/teststubs"
	"padel-score-service/internal/testutil"
)

type routerFixture struct {
	svc    *appmatch.Service
	hub    *live.Hub
	router nethttp.Handler
}

func newRouterFixture(t *testing.T, withAdmin bool) *routerFixture {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	store := teststubs.NewStubKV()
	syncer := persist.New(store, kv.NewMemory(), &testutil.ManualScheduler{}, logger, rec, time.Millisecond)
	log := matchlog.New(store, 5, logger)
	svc := appmatch.NewService(syncer, log, logger, rec, appmatch.Defaults{LabelA: "Team A", LabelB: "Team B", SetsNeededToWin: 2})
	svc.Resume()

	hub := live.NewHub(logger, rec, nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	svc.Subscribe(hub.BroadcastState)

	h := handlers.NewHandler(svc, logger, nil)
	var admin *handlers.AdminHandler
	if withAdmin {
		admin = handlers.NewAdminHandler(svc, "secret", logger)
	}
	router := NewRouter(h, admin, hub, logger, rec, []string{"*"})
	return &routerFixture{svc: svc, hub: hub, router: router}
}

func TestRouterServesMatchEndpoints(t *testing.T) {
	f := newRouterFixture(t, false)

	rr := testutil.Serve(f.router, nethttp.MethodGet, "/match", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)

	body := strings.NewReader(`{"team":"teamA"}`)
	rr = testutil.Serve(f.router, nethttp.MethodPost, "/match/score", body)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)

	var st domainmatch.State
	testutil.DecodeJSON(t, rr, &st)
	if st.TeamA.Points != domainmatch.Fifteen {
		t.Fatalf("expected fifteen, got %v", st.TeamA.Points)
	}
	if got := rr.Header().Get("X-Request-ID"); got == "" {
		t.Fatal("expected request id header from middleware")
	}
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	f := newRouterFixture(t, false)

	rr := testutil.Serve(f.router, nethttp.MethodGet, "/match/score", nil)

	testutil.AssertStatus(t, rr, nethttp.StatusMethodNotAllowed)
	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["error"] != "method not allowed" {
		t.Fatalf("expected json error body, got %+v", body)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	f := newRouterFixture(t, false)

	rr := testutil.Serve(f.router, nethttp.MethodGet, "/nope", nil)

	testutil.AssertStatus(t, rr, nethttp.StatusNotFound)
	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["error"] != "not found" {
		t.Fatalf("expected json error body, got %+v", body)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	f := newRouterFixture(t, false)

	req := httptest.NewRequest(nethttp.MethodOptions, "/match/score", nil)
	req.Header.Set("Origin", "http://scoreboard.local")
	req.Header.Set("Access-Control-Request-Method", nethttp.MethodPost)
	rr := testutil.ServeRequest(f.router, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow origin, got %q", got)
	}
}

func TestRouterAdminMountedOnlyWithHandler(t *testing.T) {
	without := newRouterFixture(t, false)
	rr := testutil.Serve(without.router, nethttp.MethodPost, "/admin/match/clear", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusNotFound)

	with := newRouterFixture(t, true)
	rr = testutil.Serve(with.router, nethttp.MethodPost, "/admin/match/clear", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusUnauthorized)
}

func TestRouterWebsocketFeed(t *testing.T) {
	f := newRouterFixture(t, false)
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	f.hub.BroadcastState(f.svc.Current())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial through middleware stack: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	var ev live.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != live.EventMatchState {
		t.Fatalf("expected %q, got %q", live.EventMatchState, ev.Type)
	}
}
