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

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]domain.Actor

func (v staticVerifier) Verify(token string) (domain.Actor, error) {
	actor, ok := v[token]
	if !ok {
		return domain.Actor{}, errors.New("unknown token")
	}
	return actor, nil
}

var testTokens = staticVerifier{
	"waiter-a":  {TenantID: "tenant-a", StaffID: "w1", Privilege: domain.PrivilegeStaff},
	"kitchen-a": {TenantID: "tenant-a", StaffID: "k1", Privilege: domain.PrivilegeKitchen},
	"waiter-b":  {TenantID: "tenant-b", StaffID: "w2", Privilege: domain.PrivilegeStaff},
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	return startHubWith(t, DefaultOptions())
}

func startHubWith(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()
	hub := NewHub(testTokens, opts, nil, nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, token string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) domain.Event {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var ev domain.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

// assertSilent leaves ws unusable for further reads.
func assertSilent(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err, "no event expected")
}

func TestHub_TenantIsolation(t *testing.T) {
	hub, url := startHub(t)
	waiter := dial(t, url, "waiter-a")
	kitchen := dial(t, url, "kitchen-a")
	other := dial(t, url, "waiter-b")

	require.Eventually(t, func() bool {
		return hub.Connections("tenant-a") == 2 && hub.Connections("tenant-b") == 1
	}, 2*time.Second, 10*time.Millisecond)

	n, err := hub.Broadcast("tenant-b", domain.Event{TenantID: "tenant-b", Name: domain.EventTableReserved})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.EventTableReserved, readEvent(t, other).Name)

	err = hub.Publish(context.Background(), "tenant-a", domain.Event{
		TenantID: "tenant-a",
		Name:     domain.EventTableFreed,
		Payload:  domain.Table{ID: "t5"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EventTableFreed, readEvent(t, waiter).Name)
	assert.Equal(t, domain.EventTableFreed, readEvent(t, kitchen).Name)
	assertSilent(t, other)
}

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	hub, url := startHub(t)

	for _, token := range []string{"", "forged"} {
		_, resp, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Zero(t, hub.Connections("tenant-a"))
}

func TestHub_AuthorizationHeader(t *testing.T) {
	hub, url := startHub(t)
	header := http.Header{}
	header.Set("Authorization", "Bearer kitchen-a")
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer ws.Close()

	require.Eventually(t, func() bool { return hub.Connections("tenant-a") == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SendToConnection(t *testing.T) {
	hub, url := startHub(t)
	ws := dial(t, url, "waiter-a")
	require.Eventually(t, func() bool { return hub.Connections("tenant-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	var connID string
	for id := range hub.conns {
		connID = id
	}
	hub.mu.RUnlock()

	require.NoError(t, hub.SendToConnection(connID, domain.Event{Name: domain.EventWaiterNotification}))
	assert.Equal(t, domain.EventWaiterNotification, readEvent(t, ws).Name)

	assert.ErrorIs(t, hub.SendToConnection("nope", domain.Event{}), ErrUnknownConnection)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub, url := startHub(t)
	ws := dial(t, url, "waiter-b")
	require.Eventually(t, func() bool { return hub.Connections("tenant-b") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return hub.Connections("tenant-b") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDropsTerminals(t *testing.T) {
	hub, url := startHub(t)
	ws := dial(t, url, "waiter-a")
	require.Eventually(t, func() bool { return hub.Connections("tenant-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()

	assert.Zero(t, hub.Connections("tenant-a"))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnencodableEvent(t *testing.T) {
	hub := NewHub(testTokens, Options{}, nil, nil)
	err := hub.Publish(context.Background(), "tenant-a", domain.Event{Payload: func() {}})
	assert.Error(t, err)
}

func TestHub_HeartbeatDropsSilentTerminal(t *testing.T) {
	hub, url := startHubWith(t, Options{PingInterval: 50 * time.Millisecond})
	_ = dial(t, url, "waiter-a")
	reading := dial(t, url, "kitchen-a")
	require.Eventually(t, func() bool { return hub.Connections("tenant-a") == 2 }, 2*time.Second, 10*time.Millisecond)

	// Pongs are only sent while the client reads.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := reading.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return hub.Connections("tenant-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, hub.Connections("tenant-a"), "the answering terminal stays connected")
	select {
	case <-readerDone:
		t.Fatal("answering terminal was disconnected")
	default:
	}

	hub.mu.RLock()
	var staff []string
	for _, c := range hub.conns {
		staff = append(staff, c.StaffID)
	}
	hub.mu.RUnlock()
	assert.Equal(t, []string{"k1"}, staff)
}

func TestHub_AllowedOrigins(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantStatus int
	}{
		{name: "listed origin", allowed: []string{"https://pos.example.com"}, origin: "https://pos.example.com", wantStatus: http.StatusSwitchingProtocols},
		{name: "listed origin with trailing slash", allowed: []string{"https://pos.example.com/"}, origin: "https://pos.example.com", wantStatus: http.StatusSwitchingProtocols},
		{name: "foreign origin", allowed: []string{"https://pos.example.com"}, origin: "https://evil.example.net", wantStatus: http.StatusForbidden},
		{name: "native terminal without origin", allowed: []string{"https://pos.example.com"}, wantStatus: http.StatusSwitchingProtocols},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://anywhere.example.org", wantStatus: http.StatusSwitchingProtocols},
		{name: "unset allows any", origin: "https://anywhere.example.org", wantStatus: http.StatusSwitchingProtocols},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AllowedOrigins = testCase.allowed
			_, url := startHubWith(t, opts)

			header := http.Header{}
			if testCase.origin != "" {
				header.Set("Origin", testCase.origin)
			}
			ws, resp, err := websocket.DefaultDialer.Dial(url+"?token=waiter-a", header)
			require.NotNil(t, resp)
			assert.Equal(t, testCase.wantStatus, resp.StatusCode)
			if testCase.wantStatus == http.StatusSwitchingProtocols {
				require.NoError(t, err)
				ws.Close()
				return
			}
			assert.Error(t, err)
		})
	}
}
