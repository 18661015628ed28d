package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/vatracker/pkg/controller/http"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
	"github.com/secmon-lab/vatracker/pkg/repository/memory"
	"github.com/secmon-lab/vatracker/pkg/service/storage"
	"github.com/secmon-lab/vatracker/pkg/usecase"
)

// headerAuth treats the assertion header as the user ID
type headerAuth struct{}

func (headerAuth) Authenticate(ctx context.Context, assertion string) (*auth.Identity, error) {
	if assertion == "" {
		return nil, goerr.Wrap(auth.ErrNoIdentity, "missing assertion")
	}
	return &auth.Identity{Subject: assertion, Email: assertion + "@example.com", Name: strings.ToUpper(assertion)}, nil
}

func (headerAuth) IsNoAuthn() bool { return false }

type testServer struct {
	t      *testing.T
	server *httpctrl.Server
	uc     *usecase.UseCases
}

func newTestServer(t *testing.T, opts ...httpctrl.Options) *testServer {
	t.Helper()
	uc := usecase.New(memory.New(),
		usecase.WithAuth(headerAuth{}),
		usecase.WithImageStore(storage.NewMemory()),
		usecase.WithBaseURL("https://tracker.example.com"),
	)
	srv, err := httpctrl.New(uc, opts...)
	gt.NoError(t, err).Required()
	return &testServer{t: t, server: srv, uc: uc}
}

func (s *testServer) do(user, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(s.t, err).Required()
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(usecase.IAPHeader, user)
	}
	w := httptest.NewRecorder()
	s.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

// onboard creates boss "boss" and makes each of vaIDs a member
func (s *testServer) onboard(vaIDs ...string) {
	s.t.Helper()
	w := s.do("boss", http.MethodPost, "/api/me/profile", map[string]string{"role": "boss", "full_name": "The Boss"})
	gt.Number(s.t, w.Code).Equal(http.StatusCreated)

	for _, va := range vaIDs {
		w := s.do("boss", http.MethodPost, "/api/boss/invitations", map[string]any{"email": va + "@example.com", "full_name": "VA " + va})
		gt.Number(s.t, w.Code).Equal(http.StatusCreated)
		inv := decode[map[string]any](s.t, w)
		link := inv["accept_url"].(string)
		token := link[strings.Index(link, "token=")+len("token="):]

		w = s.do(va, http.MethodPost, "/api/invitations/"+token+"/accept", nil)
		gt.Number(s.t, w.Code).Equal(http.StatusOK)
	}
}

func TestServer_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	w := s.do("", http.MethodGet, "/api/me", nil)
	gt.Number(t, w.Code).Equal(http.StatusUnauthorized)

	w = s.do("", http.MethodGet, "/health", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
}

func TestServer_NewWithoutAuth(t *testing.T) {
	_, err := httpctrl.New(usecase.New(memory.New()))
	gt.Value(t, err).NotNil()
}

func TestServer_Me(t *testing.T) {
	s := newTestServer(t)

	w := s.do("u1", http.MethodGet, "/api/me", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	me := decode[map[string]any](t, w)
	gt.Value(t, me["sub"]).Equal("u1")
	gt.Value(t, me["profile"]).Nil()

	w = s.do("u1", http.MethodPost, "/api/me/profile", map[string]string{"role": "va"})
	gt.Number(t, w.Code).Equal(http.StatusCreated)

	w = s.do("u1", http.MethodGet, "/api/me", nil)
	me = decode[map[string]any](t, w)
	profile := me["profile"].(map[string]any)
	gt.Value(t, profile["role"]).Equal("va")

	w = s.do("u2", http.MethodPost, "/api/me/profile", map[string]string{"role": "owner"})
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
}

func TestServer_Activity(t *testing.T) {
	s := newTestServer(t)

	w := s.do("va1", http.MethodGet, "/api/activity/today", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	view := decode[map[string]map[string]any](t, w)
	id := view["activity"]["id"].(string)
	gt.Value(t, view["goals"]["dms_per_day"]).Equal(20.0)

	for range 2 {
		w = s.do("va1", http.MethodPost, "/api/activity/"+id+"/adjust", map[string]any{"field": "dms_sent", "delta": 1})
		gt.Number(t, w.Code).Equal(http.StatusOK)
	}
	view = decode[map[string]map[string]any](t, w)
	gt.Value(t, view["activity"]["dms_sent"]).Equal(2.0)
	gt.Value(t, view["progress"]["dms_percent"]).Equal(10.0)

	w = s.do("va1", http.MethodPut, "/api/activity/"+id, map[string]any{"field": "connections_sent", "value": 30})
	gt.Number(t, w.Code).Equal(http.StatusOK)
	view = decode[map[string]map[string]any](t, w)
	gt.Value(t, view["progress"]["connections_percent"]).Equal(150.0)
	gt.Value(t, view["progress"]["connections_bar_percent"]).Equal(100.0)

	t.Run("validation errors are 400", func(t *testing.T) {
		w := s.do("va1", http.MethodPut, "/api/activity/"+id, map[string]any{"field": "connections_sent", "value": -3})
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
		w = s.do("va1", http.MethodPost, "/api/activity/"+id+"/adjust", map[string]any{"field": "likes", "delta": 1})
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
		w = s.do("va1", http.MethodGet, "/api/activity/date/2999-01-01", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
		w = s.do("va1", http.MethodGet, "/api/activity/history?days=abc", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("other users get 403, unknown rows 404", func(t *testing.T) {
		w := s.do("va2", http.MethodPost, "/api/activity/"+id+"/adjust", map[string]any{"field": "dms_sent", "delta": 1})
		gt.Number(t, w.Code).Equal(http.StatusForbidden)
		w = s.do("va1", http.MethodPost, "/api/activity/nope/adjust", map[string]any{"field": "dms_sent", "delta": 1})
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("history", func(t *testing.T) {
		w := s.do("va1", http.MethodGet, "/api/activity/history", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		h := decode[map[string]any](t, w)
		gt.Value(t, h["days"]).Equal(30.0)
		gt.Array(t, h["activities"].([]any)).Length(1)
	})

	t.Run("goals", func(t *testing.T) {
		w := s.do("va1", http.MethodPost, "/api/goals", map[string]any{"goal_type": "dms_per_day", "target_value": 40})
		gt.Number(t, w.Code).Equal(http.StatusCreated)
		w = s.do("va1", http.MethodGet, "/api/goals", nil)
		goals := decode[map[string]int](t, w)
		gt.Number(t, goals["dms_per_day"]).Equal(40)
		gt.Number(t, goals["connections_per_day"]).Equal(20)
	})
}

func TestServer_Contacts(t *testing.T) {
	s := newTestServer(t)
	s.onboard("va1")

	w := s.do("va1", http.MethodPost, "/api/contacts", map[string]any{
		"name": "Jane", "linkedin_url": "https://www.linkedin.com/in/jane", "notes": "   ",
	})
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)

	w = s.do("va1", http.MethodPost, "/api/contacts", map[string]any{
		"name": "Jane", "linkedin_url": "https://www.linkedin.com/in/jane", "notes": "CTO", "priority": "medium",
	})
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	created := decode[map[string]any](t, w)

	w = s.do("boss", http.MethodGet, "/api/boss/contacts", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	list := decode[map[string]any](t, w)
	gt.Value(t, list["total"]).Equal(1.0)
	groups := list["groups"].([]any)
	gt.Array(t, groups).Length(3)
	medium := groups[2].(map[string]any)
	gt.Value(t, medium["priority"]).Equal("medium")
	first := medium["contacts"].([]any)[0].(map[string]any)
	gt.Value(t, first["va_name"]).Equal("VA va1")

	w = s.do("boss", http.MethodDelete, "/api/contacts/"+created["id"].(string), nil)
	gt.Number(t, w.Code).Equal(http.StatusNotFound)

	w = s.do("va1", http.MethodDelete, "/api/contacts/"+created["id"].(string), nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)

	w = s.do("va1", http.MethodGet, "/api/contacts", nil)
	list = decode[map[string]any](t, w)
	gt.Value(t, list["total"]).Equal(0.0)
}

func multipartImage(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="shot"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	gt.NoError(t, err).Required()
	_, err = part.Write(data)
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.Close()).Required()
	return &body, mw.FormDataContentType()
}

func TestServer_UploadImage(t *testing.T) {
	s := newTestServer(t)

	var img bytes.Buffer
	gt.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8)))).Required()

	body, ct := multipartImage(t, "image/png", img.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/api/contacts/images", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(usecase.IAPHeader, "va1")
	w := httptest.NewRecorder()
	s.server.ServeHTTP(w, req)
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	resp := decode[map[string]string](t, w)
	gt.Bool(t, strings.HasPrefix(resp["url"], storage.MemoryBaseURL+"va1/")).True()

	body, ct = multipartImage(t, "text/plain", []byte("hello"))
	req = httptest.NewRequest(http.MethodPost, "/api/contacts/images", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(usecase.IAPHeader, "va1")
	w = httptest.NewRecorder()
	s.server.ServeHTTP(w, req)
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
}

func TestServer_BossEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.onboard("va1", "va2")

	t.Run("VAs are forbidden", func(t *testing.T) {
		w := s.do("va1", http.MethodGet, "/api/boss/team", nil)
		gt.Number(t, w.Code).Equal(http.StatusForbidden)
	})

	t.Run("users without profile are not found", func(t *testing.T) {
		w := s.do("stranger", http.MethodGet, "/api/boss/team", nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("team aggregate", func(t *testing.T) {
		w := s.do("va1", http.MethodGet, "/api/activity/today", nil)
		view := decode[map[string]map[string]any](t, w)
		id := view["activity"]["id"].(string)
		w = s.do("va1", http.MethodPut, "/api/activity/"+id, map[string]any{"field": "dms_sent", "value": 9})
		gt.Number(t, w.Code).Equal(http.StatusOK)

		w = s.do("boss", http.MethodGet, "/api/boss/team", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		team := decode[map[string]any](t, w)
		gt.Array(t, team["members"].([]any)).Length(2)
		totals := team["totals"].(map[string]any)
		gt.Value(t, totals["total_dms"]).Equal(9.0)
	})

	t.Run("remove VA", func(t *testing.T) {
		w := s.do("boss", http.MethodDelete, "/api/boss/team/va2", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		w = s.do("boss", http.MethodDelete, "/api/boss/team/va2", nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_Invitations(t *testing.T) {
	s := newTestServer(t)
	s.onboard()

	w := s.do("boss", http.MethodPost, "/api/boss/invitations", map[string]any{"email": "new@example.com"})
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	inv := decode[map[string]any](t, w)
	gt.Value(t, inv["hourly_rate"]).Equal(18.0)
	link := inv["accept_url"].(string)
	gt.Bool(t, strings.HasPrefix(link, "https://tracker.example.com/accept-invitation?token=")).True()
	token := link[strings.Index(link, "token=")+len("token="):]

	// public lookup works without an assertion
	w = s.do("", http.MethodGet, "/api/invitations/"+token, nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	pub := decode[map[string]any](t, w)
	gt.Value(t, pub["boss_name"]).Equal("The Boss")
	gt.Value(t, pub["status"]).Equal("pending")

	w = s.do("", http.MethodPost, "/api/invitations/"+token+"/accept", nil)
	gt.Number(t, w.Code).Equal(http.StatusUnauthorized)

	w = s.do("newva", http.MethodPost, "/api/invitations/"+token+"/accept", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)

	w = s.do("", http.MethodGet, "/api/invitations/"+token, nil)
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)

	w = s.do("", http.MethodGet, "/api/invitations/unknown", nil)
	gt.Number(t, w.Code).Equal(http.StatusNotFound)
}

type streamedEvent struct {
	name string
	data map[string]any
}

func parseStream(t *testing.T, body string) []streamedEvent {
	t.Helper()
	var events []streamedEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev streamedEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				gt.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev.data)).Required()
			}
		}
		events = append(events, ev)
	}
	return events
}

func TestServer_TeamStream(t *testing.T) {
	t.Run("empty team sends one snapshot and ends", func(t *testing.T) {
		s := newTestServer(t)
		s.onboard()

		w := s.do("boss", http.MethodGet, "/api/boss/team/stream", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("text/event-stream")

		events := parseStream(t, w.Body.String())
		gt.Array(t, events).Length(2)
		gt.Value(t, events[0].name).Equal("team")
		gt.Value(t, events[0].data["initial"]).Equal(true)
		gt.Value(t, events[1].name).Equal("end")
	})

	t.Run("non-empty team refreshes until the client leaves", func(t *testing.T) {
		s := newTestServer(t, httpctrl.WithPollInterval(20*time.Millisecond))
		s.onboard("va1")

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		req := httptest.NewRequest(http.MethodGet, "/api/boss/team/stream", nil).WithContext(ctx)
		req.Header.Set(usecase.IAPHeader, "boss")
		w := httptest.NewRecorder()
		s.server.ServeHTTP(w, req)
		gt.Bool(t, errors.Is(ctx.Err(), context.DeadlineExceeded)).True()

		events := parseStream(t, w.Body.String())
		gt.Bool(t, len(events) >= 2).True()
		gt.Value(t, events[0].data["initial"]).Equal(true)
		gt.Value(t, events[1].name).Equal("team")
		gt.Value(t, events[1].data["initial"]).Equal(false)
	})
}

func TestServer_Timezone(t *testing.T) {
	s := newTestServer(t)

	w := s.do("va1", http.MethodGet, "/api/activity/today", nil)
	utc := decode[map[string]map[string]any](t, w)

	req := httptest.NewRequest(http.MethodGet, "/api/activity/today", nil)
	req.Header.Set(usecase.IAPHeader, "va1")
	req.Header.Set(httpctrl.TimezoneHeader, "Not/AZone")
	w = httptest.NewRecorder()
	s.server.ServeHTTP(w, req)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	invalid := decode[map[string]map[string]any](t, w)
	gt.Value(t, invalid["activity"]["date"]).Equal(utc["activity"]["date"])
}
