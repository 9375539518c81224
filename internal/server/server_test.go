package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/neopixel"
)

func newStrip(t *testing.T, n int) *neopixel.Strip {
	t.Helper()
	cfg := neopixel.DefaultConfig
	cfg.Driver = "sim"
	cfg.LEDCount = n
	cfg.Gamma = false
	s, err := neopixel.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	return s
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, cmd Command) Reply {
	t.Helper()
	require.NoError(t, c.WriteJSON(cmd))
	var r Reply
	require.NoError(t, c.ReadJSON(&r))
	return r
}

func TestControl(t *testing.T) {
	strip := newStrip(t, 4)
	srv := New(strip, clock.NewMock())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := dial(t, ts, "/control")

	assert.True(t, send(t, c, Command{Op: "set", Index: 1, Color: "#ff0000"}).OK)
	assert.Equal(t, []uint32{0, 0xff0000, 0, 0}, strip.Snapshot())

	assert.True(t, send(t, c, Command{Op: "fill", Value: 0x000102}).OK)
	assert.Equal(t, []uint32{0x102, 0x102, 0x102, 0x102}, strip.Snapshot())

	assert.True(t, send(t, c, Command{Op: "bitmap", Leds: []uint32{7, 8}}).OK)
	assert.Equal(t, []uint32{7, 8, 0x102, 0x102}, strip.Snapshot())

	assert.True(t, send(t, c, Command{Op: "clear"}).OK)
	assert.Equal(t, make([]uint32, 4), strip.Snapshot())

	assert.True(t, send(t, c, Command{Op: "brightness", Value: 64}).OK)
	assert.Equal(t, uint8(64), strip.Brightness())
}

func TestControlReportsErrors(t *testing.T) {
	strip := newStrip(t, 2)
	srv := New(strip, clock.NewMock())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := dial(t, ts, "/control")

	r := send(t, c, Command{Op: "set", Index: 2, Value: 1})
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, "index out of range")

	r = send(t, c, Command{Op: "bitmap", Leds: []uint32{1, 2, 3}})
	assert.Contains(t, r.Error, "exceeds channel capacity")

	r = send(t, c, Command{Op: "explode"})
	assert.Contains(t, r.Error, "unknown op")

	r = send(t, c, Command{Op: "brightness", Value: 300})
	assert.False(t, r.OK)

	assert.Equal(t, make([]uint32, 2), strip.Snapshot())
}

func TestFramesBroadcast(t *testing.T) {
	strip := newStrip(t, 2)
	srv := New(strip, clock.NewMock())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := dial(t, ts, "/ws")

	var top map[string]any
	require.NoError(t, c.ReadJSON(&top))
	assert.Equal(t, float64(2), top["count"])
	assert.Equal(t, "sim", top["driver"])

	require.NoError(t, srv.Apply(Command{Op: "set", Index: 0, Value: 0x010203}))

	var f struct {
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	require.NoError(t, c.ReadJSON(&f))
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0}, f.RGB)
}

func TestHealth(t *testing.T) {
	strip := newStrip(t, 3)
	srv := New(strip, clock.NewMock())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, "sim", body["driver"])
}

func TestDiagnose(t *testing.T) {
	strip := newStrip(t, 2)
	srv := New(strip, clock.NewMock())

	codes := func() []string {
		var out []string
		for _, d := range srv.Diagnose() {
			out = append(out, d.Code)
		}
		return out
	}
	assert.Equal(t, []string{"driver.virtual", "frame.dark"}, codes())

	require.NoError(t, srv.Apply(Command{Op: "brightness", Value: 0}))
	require.NoError(t, srv.Apply(Command{Op: "set", Index: 1, Value: 0xff}))
	assert.Equal(t, []string{"driver.virtual", "brightness.zero"}, codes())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diag", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"brightness.zero"`)
}

func TestFramesFollowBrightness(t *testing.T) {
	strip := newStrip(t, 1)
	srv := New(strip, clock.NewMock())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := dial(t, ts, "/ws")
	var top map[string]any
	require.NoError(t, c.ReadJSON(&top))

	var f struct {
		RGB []byte `json:"rgb"`
	}
	require.NoError(t, srv.Apply(Command{Op: "fill", Value: 0xFF8000}))
	require.NoError(t, c.ReadJSON(&f))
	assert.Equal(t, []byte{0xFF, 0x80, 0x00}, f.RGB)

	require.NoError(t, srv.Apply(Command{Op: "brightness", Value: 127}))
	require.NoError(t, c.ReadJSON(&f))
	assert.Equal(t, []byte{0x7F, 0x40, 0x00}, f.RGB, "preview shows the dimmed output")
}

func TestSlowClientDoesNotBlockHealth(t *testing.T) {
	strip := newStrip(t, 2)
	srv := New(strip, clock.NewMock())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := dial(t, ts, "/ws")
	var top map[string]any
	require.NoError(t, c.ReadJSON(&top))

	srv.mu.Lock()
	var slow *client
	for cl := range srv.clients {
		slow = cl
	}
	srv.mu.Unlock()
	require.NotNil(t, slow)

	// Hold the client's writer so the broadcast stalls on it.
	slow.mu.Lock()
	sent := make(chan struct{})
	go func() {
		srv.Broadcast(true)
		close(sent)
	}()

	health := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		health <- rec.Code
	}()
	select {
	case code := <-health:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("/health blocked behind a frame write")
	}

	slow.mu.Unlock()
	<-sent
}
