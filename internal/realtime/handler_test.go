package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const testSecret = "ws-test-secret"

type stubInbox struct {
	unread   []models.Notification
	err      error
	onUnread func(userID string)
}

func (s *stubInbox) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	if s.onUnread != nil {
		s.onUnread(userID)
	}
	return s.unread, s.err
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newWSServer(t *testing.T, inbox UnreadSource) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	handler := NewHandler(hub, inbox, testSecret, "http://localhost:3000", zerolog.Nop())

	router := gin.New()
	router.GET("/ws", handler.Connect)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	user := &models.User{Role: models.RolePatient}
	user.ID = userID
	token, err := utils.GenerateToken(user, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestConnect_SnapshotThenPush(t *testing.T) {
	first := models.Notification{RecipientID: "user-1", Content: "first"}
	first.ID = "n-1"
	second := models.Notification{RecipientID: "user-1", Content: "second"}
	second.ID = "n-2"
	hub, url := newWSServer(t, &stubInbox{unread: []models.Notification{second, first}})

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tokenFor(t, "user-1"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	snapshot := readFrame(t, conn)
	if snapshot.Type != EventNotifications {
		t.Fatalf("expected %q frame first, got %q", EventNotifications, snapshot.Type)
	}
	var unread []models.Notification
	if err := json.Unmarshal(snapshot.Data, &unread); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(unread) != 2 || unread[0].ID != "n-2" {
		t.Errorf("unexpected snapshot %+v", unread)
	}

	if hub.UserConnections("user-1") != 1 {
		t.Fatalf("expected the connection to be registered, got %d", hub.UserConnections("user-1"))
	}

	pushed := &models.Notification{RecipientID: "user-1", Content: "Your appointment is confirmed"}
	pushed.ID = "n-3"
	hub.PublishNotification("user-1", pushed)

	live := readFrame(t, conn)
	if live.Type != EventNotification {
		t.Fatalf("expected %q frame, got %q", EventNotification, live.Type)
	}
	var got models.Notification
	if err := json.Unmarshal(live.Data, &got); err != nil {
		t.Fatalf("unmarshal push: %v", err)
	}
	if got.ID != "n-3" || got.Content != pushed.Content {
		t.Errorf("unexpected pushed notification %+v", got)
	}
}

func TestConnect_NotificationDuringSnapshotIsDelivered(t *testing.T) {
	inbox := &stubInbox{}
	hub, url := newWSServer(t, inbox)
	// A notification is stored while the snapshot is being read.
	late := &models.Notification{RecipientID: "user-1", Content: "late arrival"}
	late.ID = "n-late"
	inbox.onUnread = func(userID string) {
		hub.PublishNotification(userID, late)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tokenFor(t, "user-1"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		f := readFrame(t, conn)
		seen[f.Type] = true
		if f.Type == EventNotification {
			var got models.Notification
			if err := json.Unmarshal(f.Data, &got); err != nil {
				t.Fatalf("unmarshal push: %v", err)
			}
			if got.ID != "n-late" {
				t.Errorf("expected n-late, got %s", got.ID)
			}
		}
	}
	if !seen[EventNotification] || !seen[EventNotifications] {
		t.Errorf("expected both the live push and the snapshot, got %v", seen)
	}
}

func TestConnect_BearerHeader(t *testing.T) {
	_, url := newWSServer(t, &stubInbox{})
	header := http.Header{"Authorization": []string{"Bearer " + tokenFor(t, "user-1")}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if f := readFrame(t, conn); f.Type != EventNotifications {
		t.Errorf("expected snapshot frame, got %q", f.Type)
	}
}

func TestConnect_InboxFailureStillConnects(t *testing.T) {
	_, url := newWSServer(t, &stubInbox{err: errors.New("db down")})
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tokenFor(t, "user-1"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	f := readFrame(t, conn)
	if f.Type != EventNotifications || string(f.Data) != "[]" {
		t.Errorf("expected an empty snapshot, got %s %s", f.Type, f.Data)
	}
}

func TestConnect_RejectsMissingOrBadToken(t *testing.T) {
	_, url := newWSServer(t, &stubInbox{})

	for name, target := range map[string]string{
		"missing": url,
		"invalid": url + "?token=not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(target, nil)
			if err == nil {
				t.Fatal("expected the handshake to fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %v", resp)
			}
		})
	}
}

func TestConnect_RejectsForeignOrigin(t *testing.T) {
	_, url := newWSServer(t, &stubInbox{})
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url+"?token="+tokenFor(t, "user-1"), header)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
}

func TestStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	hub.Register(NewClient("c-1", "user-1"))
	hub.Register(NewClient("c-2", "user-1"))
	hub.Register(NewClient("c-3", "user-2"))
	handler := NewHandler(hub, &stubInbox{}, testSecret, "", zerolog.Nop())

	router := gin.New()
	router.GET("/status", handler.Status)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data ConnectionStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Connections != 3 || body.Data.Users != 2 {
		t.Errorf("expected 3 connections across 2 users, got %+v", body.Data)
	}
}
