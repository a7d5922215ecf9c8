package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nsf/jsondiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStep() *TraceStep {
	step := NewTraceStep(3, 4, 1002, "mul")
	step.Modes = []uint8{0, 1, 0}
	step.Operands = []int64{4, 3, 4}
	step.PostPC = 8
	step.SetWrite(4, 99)
	step.SetPostMachineState("paused")
	return step
}

func assertSameJSON(t *testing.T, expected, actual []byte) {
	t.Helper()
	opts := jsondiff.DefaultConsoleOptions()
	diff, desc := jsondiff.Compare(expected, actual, &opts)
	assert.Equal(t, jsondiff.FullMatch, diff, desc)
}

func TestJSONLTraceWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewJSONLTraceWriter(&out)
	require.NoError(t, w.WriteStep(sampleStep()))
	out2 := NewTraceStep(4, 8, 4, "out")
	out2.SetOutputProduced(7)
	require.NoError(t, w.WriteStep(out2))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assertSameJSON(t, []byte(`{"step":3,"pc":4,"raw":1002,"opcode":"mul","modes":[0,1,0],
		"operands":[4,3,4],"postPc":8,"relativeBase":0,"postMachineState":"paused",
		"writtenAddr":4,"writtenValue":99}`), []byte(lines[0]))
	assertSameJSON(t, []byte(`{"step":4,"pc":8,"raw":4,"opcode":"out","postPc":0,
		"relativeBase":0,"outputProduced":7}`), []byte(lines[1]))

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteStep(sampleStep()), ErrTraceWriterClosed)
	assert.ErrorIs(t, w.Flush(), ErrTraceWriterClosed)
	assert.NoError(t, w.Close(), "second close is a no-op")
}

func TestJSONLTraceWriterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := NewJSONLTraceWriterFile(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStep(sampleStep()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got TraceStep
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &got))
	assert.Equal(t, "mul", got.Opcode)
	require.NotNil(t, got.WrittenValue)
	assert.Equal(t, int64(99), *got.WrittenValue)
}

type countingWriter struct{ n int }

func (c *countingWriter) WriteStep(*TraceStep) error {
	c.n++
	return nil
}

func TestMultiWriter(t *testing.T) {
	a, b := &countingWriter{}, &countingWriter{}
	mw := MultiWriter{a, b}
	require.NoError(t, mw.WriteStep(sampleStep()))
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func httptestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptestServer(t, hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	step := sampleStep()
	require.NoError(t, hub.WriteStep(step))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	expected, err := json.Marshal(step)
	require.NoError(t, err)
	assertSameJSON(t, expected, data)
}

func TestHubClosed(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped
	assert.ErrorIs(t, hub.WriteStep(sampleStep()), ErrHubClosed)
}

// serverConns dials n clients and returns the server side of each connection,
// with no read loop attached.
func serverConns(t *testing.T, n int) (server, client []*websocket.Conn) {
	t.Helper()
	accepted := make(chan *websocket.Conn, n)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := upgrader.Upgrade(w, r, nil); err == nil {
			accepted <- c
		}
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	for i := 0; i < n; i++ {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		client = append(client, c)
		select {
		case sc := <-accepted:
			server = append(server, sc)
		case <-time.After(2 * time.Second):
			t.Fatal("upgrade timed out")
		}
	}
	return server, client
}

func TestHubDropsFailedClient(t *testing.T) {
	hub := NewHub()
	server, client := serverConns(t, 2)
	dead, live := server[0], server[1]
	require.NoError(t, dead.UnderlyingConn().Close())
	hub.clients[dead] = true
	hub.clients[live] = true

	for i, msg := range []string{`{"step":0}`, `{"step":1}`} {
		hub.send([]byte(msg))
		assert.Equal(t, 1, hub.ClientCount(), "broadcast %d", i)
		assert.False(t, hub.clients[dead])

		require.NoError(t, client[1].SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := client[1].ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, msg, string(data))
	}
}
