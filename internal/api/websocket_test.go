package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jhwan-dev/licensegate/internal/registration"
)

// wsURL converts an httptest server URL to a ws:// endpoint URL.
func wsURL(ts *httptest.Server, ticket string) string {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	if ticket != "" {
		u += "?ticket=" + ticket
	}
	return u
}

// getTicket requests a single-use WebSocket ticket as the test admin.
func getTicket(t *testing.T, ts *httptest.Server, token string) string {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/admin/ws-ticket", token, nil)
	if status != http.StatusOK {
		t.Fatalf("ws-ticket status = %d", status)
	}
	ticket, _ := body["ticket"].(string) //nolint:errcheck // checked below
	if ticket == "" {
		t.Fatalf("ws-ticket response missing ticket: %v", body)
	}
	return ticket
}

// dial opens a WebSocket connection with the given ticket.
func dial(t *testing.T, ts *httptest.Server, ticket string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, ticket), nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one message with a deadline.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("setting read deadline: %v", err)
	}
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading websocket message: %v", err)
	}
	return msg
}

func TestWebSocket_RequiresTicket(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/ws")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("ws without ticket status = %d, want 401", resp.StatusCode)
	}
}

func TestWebSocket_RejectsUnknownTicket(t *testing.T) {
	_, ts := newTestServer(t)

	//nolint:bodyclose // Dial returns a closed response on handshake failure
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "bogus"), nil)
	if err == nil {
		t.Fatal("dial with unknown ticket succeeded, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, want 401", resp)
	}
}

func TestWebSocket_TicketIsSingleUse(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts)
	ticket := getTicket(t, ts, token)

	dial(t, ts, ticket)

	//nolint:bodyclose // Dial returns a closed response on handshake failure
	if _, _, err := websocket.DefaultDialer.Dial(wsURL(ts, ticket), nil); err == nil {
		t.Error("second dial with the same ticket succeeded, want failure")
	}
}

func TestWebSocket_Ping(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts)
	conn := dial(t, ts, getTicket(t, ts, token))

	if err := conn.WriteJSON(WSMessage{Type: WSTypePing, ID: "1"}); err != nil {
		t.Fatalf("writing ping: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != WSTypePong || msg.ID != "1" {
		t.Errorf("ping reply = %+v, want pong with id 1", msg)
	}
}

func TestWebSocket_RegistrationEvents(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, ts)
	conn := dial(t, ts, getTicket(t, ts, token))

	// Subscribe to registration change events.
	sub := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: []string{registration.EventTypeUpdated}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("writing subscribe: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != WSTypeResponse {
		t.Fatalf("subscribe reply type = %q, want %q", msg.Type, WSTypeResponse)
	}

	// A registration over HTTP must produce a change event on the socket.
	status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/register", "", map[string]string{"computer_id": "machine-001"})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d", status)
	}

	msg := readMessage(t, conn)
	if msg.Type != WSTypeEvent {
		t.Errorf("message type = %q, want %q", msg.Type, WSTypeEvent)
	}
	if msg.EventType != registration.EventTypeUpdated {
		t.Errorf("event type = %q, want %q", msg.EventType, registration.EventTypeUpdated)
	}

	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		t.Fatalf("re-encoding payload: %v", err)
	}
	var event struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("decoding event payload: %v", err)
	}
	if event.Message == "" {
		t.Error("event payload missing message")
	}

	if got := s.hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
}

func TestWebSocket_UnsubscribedClientGetsNothing(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts)
	conn := dial(t, ts, getTicket(t, ts, token))

	// No subscription: the register event must not reach this client.
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/register", "", map[string]string{"computer_id": "machine-001"})

	if err := conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("setting read deadline: %v", err)
	}
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Errorf("unsubscribed client received %+v, want read timeout", msg)
	}
}
