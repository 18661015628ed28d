package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/service/slack"
)

type webhookRecorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (r *webhookRecorder) server(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw, err := io.ReadAll(req.Body)
		gt.NoError(t, err)

		var body map[string]any
		gt.NoError(t, json.Unmarshal(raw, &body))

		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		r.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendTestMessage(t *testing.T) {
	rec := &webhookRecorder{}
	srv := rec.server(t, http.StatusOK)

	svc := slack.New(slack.WithHTTPClient(srv.Client()))
	gt.NoError(t, svc.SendTestMessage(context.Background(), srv.URL)).Required()

	gt.Array(t, rec.bodies).Length(1)
	text, _ := rec.bodies[0]["text"].(string)
	gt.String(t, text).Contains("VA Tracker connected")
}

func TestSendTestMessage_EmptyURL(t *testing.T) {
	svc := slack.New()
	gt.Error(t, svc.SendTestMessage(context.Background(), "  "))
}

func TestSendTestMessage_ServerError(t *testing.T) {
	rec := &webhookRecorder{}
	srv := rec.server(t, http.StatusInternalServerError)

	svc := slack.New(slack.WithHTTPClient(srv.Client()))
	gt.Error(t, svc.SendTestMessage(context.Background(), srv.URL))
}

func TestPostContactFlagged(t *testing.T) {
	rec := &webhookRecorder{}
	srv := rec.server(t, http.StatusOK)

	svc := slack.New(slack.WithHTTPClient(srv.Client()))
	err := svc.PostContactFlagged(context.Background(), srv.URL, slack.ContactAlert{
		ContactName: "Jane Doe",
		LinkedInURL: "https://www.linkedin.com/in/janedoe",
		Notes:       "CTO, replied to DM",
		Priority:    "high",
		VAName:      "Val",
		ImageCount:  2,
	})
	gt.NoError(t, err).Required()

	gt.Array(t, rec.bodies).Length(1)
	raw, err := json.Marshal(rec.bodies[0]["blocks"])
	gt.NoError(t, err).Required()
	blocks := string(raw)
	gt.String(t, blocks).Contains("⚡ HIGH Priority Contact Flagged")
	gt.String(t, blocks).Contains("Jane Doe")
	gt.String(t, blocks).Contains("Screenshots:* 2 attached")
	gt.String(t, blocks).Contains("https://www.linkedin.com/in/janedoe")
}

func TestContactFlaggedBlocks_UnknownPriority(t *testing.T) {
	blocks := slack.ContactFlaggedBlocks(slack.ContactAlert{ContactName: "X", Priority: "critical"})
	gt.Array(t, blocks).Length(6)

	raw, err := json.Marshal(blocks[0])
	gt.NoError(t, err).Required()
	gt.String(t, string(raw)).Contains("🔥 URGENT Priority Contact Flagged")

	// missing VA name falls back to a generic label
	raw, err = json.Marshal(blocks[1])
	gt.NoError(t, err).Required()
	gt.String(t, string(raw)).Contains("Flagged by:*\\nVA")
}

func TestTruncateRunes(t *testing.T) {
	gt.Value(t, slack.TruncateRunes("hello", 10)).Equal("hello")
	gt.Value(t, slack.TruncateRunes("hello world", 5)).Equal("hell…")
	long := strings.Repeat("🔥", 200)
	gt.Number(t, len([]rune(slack.TruncateRunes(long, 150)))).Equal(150)
}
