package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func snapshotAt(tick int64) models.Snapshot {
	return models.Snapshot{
		SessionID: "ws-test",
		Tick:      tick,
		Timestamp: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Metrics: []models.MetricSnapshot{
			{Name: "likes", Value: 700 + tick},
		},
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) models.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var snap models.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	return snap
}

func TestHub_SendsLatestOnConnectThenTicks(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	require.NoError(t, hub.OnSnapshot(snapshotAt(3)))

	conn := dial(t, srv)
	require.Equal(t, int64(3), readSnapshot(t, conn).Tick)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.OnSnapshot(snapshotAt(4)))
	require.NoError(t, hub.OnSnapshot(snapshotAt(5)))
	require.Equal(t, int64(4), readSnapshot(t, conn).Tick)
	got := readSnapshot(t, conn)
	require.Equal(t, int64(5), got.Tick)
	require.Equal(t, int64(705), got.Metrics[0].Value)
}

func TestHub_MultipleClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.OnSnapshot(snapshotAt(1)))
	require.Equal(t, int64(1), readSnapshot(t, a).Tick)
	require.Equal(t, int64(1), readSnapshot(t, b).Tick)
}

func TestHub_ClientDisconnectAndClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	other := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	require.Equal(t, 0, hub.Clients())

	require.NoError(t, other.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
}
