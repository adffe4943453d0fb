package monitor_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/internal/monitor"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/output"
)

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*monitor.Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := monitor.NewHub(nil, monitor.Config{})
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestStateInitOnConnect(t *testing.T) {
	hub, url := startHub(t)
	hub.SetState(monitor.State{Device: "Pad", Active: "/a.json", Configs: []string{"/a.json", "/b.json"}})

	m := read(t, dial(t, url))
	assert.Equal(t, "state_init", m.Type)

	var st monitor.State
	require.NoError(t, json.Unmarshal(m.Data, &st))
	assert.Equal(t, "Pad", st.Device)
	assert.Equal(t, []string{"/a.json", "/b.json"}, st.Configs)
}

func TestBroadcastsReachEveryClient(t *testing.T) {
	hub, url := startHub(t)
	var obs mapping.Observer = hub

	c1, c2 := dial(t, url), dial(t, url)
	// state_init is queued on registration, so reading it means the client
	// is registered.
	require.Equal(t, "state_init", read(t, c1).Type)
	require.Equal(t, "state_init", read(t, c2).Type)

	obs.OnEvent(input.KeyEvent{Code: input.BtnSouth, State: input.Down})
	obs.OnConfigSwitch("/b.json")
	obs.OnAction(output.Pulse{Keys: []input.KeyCode{input.KeyA}})

	for _, c := range []*websocket.Conn{c1, c2} {
		m := read(t, c)
		assert.Equal(t, "config_switched", m.Type)
		assert.JSONEq(t, `{"path":"/b.json"}`, string(m.Data))

		m = read(t, c)
		assert.Equal(t, "action", m.Type)
		assert.JSONEq(t, `{"kind":"pulse","action":"pulse keys=[KEY_A] axes=[]"}`, string(m.Data))
	}

	// New clients see the switched configuration.
	m := read(t, dial(t, url))
	assert.Contains(t, string(m.Data), `"active":"/b.json"`)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, url := startHub(t)
	c := dial(t, url)
	read(t, c)
	require.Equal(t, 1, hub.Clients())

	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunStopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := monitor.NewHub(nil, monitor.Config{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	read(t, c)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
