package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/job"
	"github.com/mastercactapus/gcam/machine/grbl"
	"github.com/mastercactapus/gcam/units"
)

const lineJob = `
machine: {axes: XYZ}
operations:
  - {op: spindle, speed: 1000, rotation: cw}
  - {op: feed, value: 100}
  - {op: linear, to: {X: 10}}
`

type fakeDevice struct {
	sent    []*gcode.Program
	updates chan grbl.Status
}

func (f *fakeDevice) Send(ctx context.Context, p *gcode.Program) (int64, error) {
	f.sent = append(f.sent, p)
	return int64(len(p.Format(false))), nil
}

func (f *fakeDevice) ProbeGrid(ctx context.Context, opt grbl.ProbeGridOptions) ([]coord.Point, error) {
	if opt.Granularity <= 0 {
		return nil, coord.ErrInvalidInput
	}
	return []coord.Point{{X: 0, Y: 0, Z: -1}, {X: 10, Y: 0, Z: -1.5}, {X: 0, Y: 10, Z: -0.5}}, nil
}

func (f *fakeDevice) Status() grbl.Status {
	return grbl.Status{State: "Idle", MPos: coord.Pose{X: units.Millimeters(5)}}
}

func (f *fakeDevice) Updates() <-chan grbl.Status { return f.updates }

func newTestAPI(t *testing.T, ctrl Device) *api {
	t.Helper()
	a := newAPI(apiConfig{DataDir: t.TempDir(), Density: 1, Controller: ctrl})
	t.Cleanup(a.Close)
	return a
}

func do(a *api, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestAPI_Generate(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(a, "POST", "/api/generate", lineJob)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "G1 X10")
	assert.Contains(t, rec.Body.String(), "; ")
	assert.Equal(t, "10", rec.Header().Get("X-Path-Length"))
	assert.Equal(t, "6", rec.Header().Get("X-Cut-Seconds"))

	rec = do(a, "POST", "/api/generate?comments=0", lineJob)
	assert.NotContains(t, rec.Body.String(), ";")
}

func TestAPI_GenerateBadJob(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(a, "POST", "/api/generate", "operations: [{op: linear, to: {X: 1}}]")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(a, "POST", "/api/generate?density=x", lineJob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Data(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(a, "PUT", "/data/jobs/line.yaml", lineJob)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(a, "GET", "/data/jobs/line.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lineJob, rec.Body.String())

	rec = do(a, "PUT", "/data/../escape.yaml", lineJob)
	assert.NotEqual(t, http.StatusInternalServerError, rec.Code)

	rec = do(a, "DELETE", "/data/jobs/line.yaml", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(a, "DELETE", "/data/jobs/line.yaml", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Send(t *testing.T) {
	f := &fakeDevice{updates: make(chan grbl.Status)}
	defer close(f.updates)
	a := newTestAPI(t, f)

	rec := do(a, "POST", "/api/send", lineJob)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	require.Len(t, f.sent, 1)
	assert.Contains(t, f.sent[0].Format(false), "G1 X10")

	rec = do(a, "GET", "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"State":"Idle"`)
}

func TestAPI_Probe(t *testing.T) {
	f := &fakeDevice{updates: make(chan grbl.Status)}
	defer close(f.updates)
	a := newTestAPI(t, f)

	rec := do(a, "POST", "/api/probe?feedRate=100&maxZTravel=5&xDist=10&yDist=10&granularity=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := do(a, "GET", "/data/mesh.yaml", "")
	require.Equal(t, http.StatusOK, stored.Code)
	assert.Equal(t, rec.Body.String(), stored.Body.String())

	j, err := job.Load(strings.NewReader(rec.Body.String() + lineJob))
	require.NoError(t, err)
	require.NotNil(t, j.Mesh)
	assert.Equal(t, -1.0, j.Mesh.Reference)
	assert.Equal(t, 5.0, j.Mesh.Granularity)
	assert.Len(t, j.Mesh.Points, 3)

	rec = do(a, "POST", "/api/probe?feedRate=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_NoController(t *testing.T) {
	a := newTestAPI(t, nil)

	assert.Equal(t, http.StatusServiceUnavailable, do(a, "POST", "/api/send", lineJob).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(a, "GET", "/api/status", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(a, "POST", "/api/probe", "").Code)
}

func TestAPI_Metrics(t *testing.T) {
	a := newTestAPI(t, nil)
	do(a, "POST", "/api/generate", lineJob)
	do(a, "POST", "/api/generate", "operations: [{op: nope}]")

	rec := do(a, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gcam_jobs_total{result="ok"} 1`)
	assert.Contains(t, body, `gcam_jobs_total{result="error"} 1`)
	assert.Contains(t, body, `route="/api/generate"`)
}

func TestAPI_WSPath(t *testing.T) {
	a := newTestAPI(t, nil)
	srv := httptest.NewServer(a)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/path?density=0.5", nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(lineJob)))

	var mv moveJSON
	require.NoError(t, ws.ReadJSON(&mv))
	assert.Equal(t, 2, mv.Index)
	assert.Equal(t, "linear", mv.Kind)
	assert.InDelta(t, 10, mv.Length, 1e-9)
	require.Len(t, mv.Steps, 6)
	assert.InDelta(t, 10, mv.Steps[5].Position.X, 1e-9)

	var done map[string]bool
	require.NoError(t, ws.ReadJSON(&done))
	assert.True(t, done["Done"])

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("operations: [{op: nope}]")))
	var failed map[string]string
	require.NoError(t, ws.ReadJSON(&failed))
	assert.Contains(t, failed["Error"], "nope")
}

func TestSafePath(t *testing.T) {
	ok, name := safePath("/srv/data", "/../../etc/passwd")
	assert.True(t, ok)
	assert.Equal(t, "/srv/data/etc/passwd", name)
}

func TestAPI_CloseStopsUpdates(t *testing.T) {
	dev := &fakeDevice{updates: make(chan grbl.Status)}
	a := newAPI(apiConfig{DataDir: t.TempDir(), Controller: dev})

	dev.updates <- grbl.Status{State: "Run"}

	closed := make(chan struct{})
	go func() {
		a.Close()
		a.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	select {
	case <-a.stopped:
	default:
		t.Fatal("status forwarding still running")
	}
}
