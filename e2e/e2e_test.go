package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handcloud/internal/app"
	"github.com/ayusman/handcloud/internal/capture"
	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/fixtures"
	"github.com/ayusman/handcloud/internal/render"
	"github.com/ayusman/handcloud/internal/server"
	"github.com/ayusman/handcloud/internal/shape"
	"github.com/ayusman/handcloud/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	controller, err := engine.New(engine.Config{ParticleCount: 500, Generator: shape.NewSeededGenerator(11)})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	application, err := app.New(app.Config{
		Controller: controller,
		Store:      s,
		Camera:     capture.NewSyntheticCamera(160, 120),
		Detector:   detector.NewMockDetector(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()
	application.SetEnabled(true)

	renderer, err := render.New(render.Options{Width: 160, Height: 120})
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}

	srv := server.New(server.Config{
		Store:      s,
		Controller: controller,
		Renderer:   renderer,
		Hands:      application,
		Camera:     application,
	})
	defer srv.Shutdown(context.Background())

	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	frames, err := fixtures.LoadSession("session")
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}

	t.Run("ReplayHands", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/hands"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Dial() error = %v", err)
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		fired := 0
		for i, frame := range frames {
			if err := conn.WriteJSON(frame); err != nil {
				t.Fatalf("frame %d: WriteJSON() error = %v", i, err)
			}
			var reply struct {
				Signals []string `json:"signals"`
			}
			if err := conn.ReadJSON(&reply); err != nil {
				t.Fatalf("frame %d: ReadJSON() error = %v", i, err)
			}
			if len(reply.Signals) > 0 {
				fired++
			}
		}
		if fired != 5 {
			t.Errorf("frames with signals = %d, want 5", fired)
		}
	})

	t.Run("StateAfterReplay", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("GET /api/state error = %v", err)
		}
		defer resp.Body.Close()

		var state struct {
			Shape string `json:"shape"`
		}
		json.NewDecoder(resp.Body).Decode(&state)

		// Two open palms advance twice, then one point-up.
		if state.Shape != "galaxy" {
			t.Errorf("shape = %s, want galaxy", state.Shape)
		}
	})

	t.Run("Events", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events?limit=10")
		if err != nil {
			t.Fatalf("GET /api/events error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			Events []struct {
				SessionID string   `json:"session_id"`
				Signals   []string `json:"signals"`
			} `json:"events"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)

		if len(listed.Events) != 5 {
			t.Fatalf("events = %d, want 5", len(listed.Events))
		}
		latest := listed.Events[0]
		if len(latest.Signals) != 1 || latest.Signals[0] != "two_fingers_up" {
			t.Errorf("latest signals = %v, want [two_fingers_up]", latest.Signals)
		}
		if latest.SessionID == "" {
			t.Error("expected events to belong to the running session")
		}
	})

	t.Run("Session", func(t *testing.T) {
		sess := application.Session()
		if sess == nil {
			t.Fatal("expected an active session")
		}

		resp, err := client.Get(ts.URL + "/api/sessions/" + sess.ID)
		if err != nil {
			t.Fatalf("GET /api/sessions/{id} error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var got struct {
			Active bool `json:"active"`
			Events []struct {
				Shape string `json:"shape"`
			} `json:"events"`
		}
		json.NewDecoder(resp.Body).Decode(&got)
		if !got.Active {
			t.Error("expected session to be active")
		}
		if len(got.Events) != 5 {
			t.Errorf("session events = %d, want 5", len(got.Events))
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/snapshot.png")
		if err != nil {
			t.Fatalf("GET /api/snapshot.png error = %v", err)
		}
		defer resp.Body.Close()

		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %s, want image/png", ct)
		}
	})

	t.Run("SettingsSavedOnStop", func(t *testing.T) {
		application.Stop()

		got, err := s.Settings().Get(store.SettingLastShape)
		if err != nil {
			t.Fatalf("Get(last_shape) error = %v", err)
		}
		if got != "galaxy" {
			t.Errorf("last_shape = %s, want galaxy", got)
		}

		sessions, err := s.Sessions().List(0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(sessions) != 1 || sessions[0].Active() {
			t.Errorf("expected one ended session, got %+v", sessions)
		}
	})
}
