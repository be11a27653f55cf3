package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/job"
	"github.com/mastercactapus/gcam/machine/grbl"
	"github.com/mastercactapus/gcam/units"
)

// Device streams programs to a controller, probes and reports its status.
type Device interface {
	Send(ctx context.Context, p *gcode.Program) (int64, error)
	ProbeGrid(ctx context.Context, opt grbl.ProbeGridOptions) ([]coord.Point, error)
	Status() grbl.Status
	Updates() <-chan grbl.Status
}

type api struct {
	http.Handler
	log      *zap.Logger
	dataDir  string
	density  float64
	sse      *sse.Server
	ctrl     Device
	metrics  *metrics
	upgrader websocket.Upgrader

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type apiConfig struct {
	Log     *zap.Logger
	DataDir string
	Density float64

	// Controller is optional; without it send, probe and status return 503.
	Controller Device
	Registry   *prometheus.Registry
}

func newAPI(cfg apiConfig) *api {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	r := mux.NewRouter()
	a := &api{
		Handler: r,
		log:     cfg.Log,
		dataDir: cfg.DataDir,
		density: cfg.Density,
		ctrl:    cfg.Controller,
		metrics: newMetrics(cfg.Registry),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		sse: sse.NewServer(&sse.Options{
			Logger: zap.NewStdLog(cfg.Log.Named("sse")),
		}),
	}

	r.Use(a.middleware)

	fs := http.StripPrefix("/data", http.FileServer(http.Dir(a.dataDir)))
	r.Methods("GET").PathPrefix("/data/").Handler(fs)
	r.Methods("PUT").PathPrefix("/data/").HandlerFunc(a.putFile)
	r.Methods("DELETE").PathPrefix("/data/").HandlerFunc(a.deleteFile)

	r.Methods("POST").Path("/api/generate").HandlerFunc(a.generate)
	r.Methods("POST").Path("/api/send").HandlerFunc(a.send)
	r.Methods("POST").Path("/api/probe").HandlerFunc(a.probe)
	r.Methods("GET").Path("/api/status").HandlerFunc(a.status)
	r.Path("/ws/path").HandlerFunc(a.wsPath)
	r.PathPrefix("/events/").Handler(a.sse)
	r.Path("/metrics").Handler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	if a.ctrl != nil {
		go a.pushState(a.ctrl.Updates())
	} else {
		close(a.stopped)
	}

	return a
}

// pushState forwards controller status reports to /events/state until the
// api is closed.
func (a *api) pushState(updates <-chan grbl.Status) {
	defer close(a.stopped)
	for {
		var state grbl.Status
		select {
		case <-a.done:
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			state = s
		}
		data, err := json.Marshal(newStatusJSON(state))
		if err != nil {
			a.log.Error("marshal status", zap.Error(err))
			continue
		}
		a.sse.SendMessage("/events/state", sse.SimpleMessage(string(data)))
	}
}

func (a *api) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		<-a.stopped
		a.sse.Shutdown()
	})
}

func (a *api) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")

		route := "unknown"
		if cur := mux.CurrentRoute(req); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		start := time.Now()
		next.ServeHTTP(w, req)
		a.metrics.requests.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
		a.log.Debug("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("remote", req.RemoteAddr),
		)
	})
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		return false, ""
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

func httpStatus(err error) int {
	if errors.Is(err, coord.ErrInvalidInput) || errors.Is(err, coord.ErrUnsupported) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (a *api) parseDensity(req *http.Request) (float64, error) {
	v := req.FormValue("density")
	if v == "" {
		return a.density, nil
	}
	return strconv.ParseFloat(v, 64)
}

// runJob loads a job from r and runs it, recording metrics.
func (a *api) runJob(r io.Reader, density float64) (*gcode.Program, *job.Result, error) {
	j, err := job.Load(r)
	if err == nil {
		var p gcode.Program
		var res *job.Result
		res, err = j.Run(&p, density)
		if err == nil {
			a.metrics.jobs.WithLabelValues("ok").Inc()
			a.metrics.lines.Add(float64(len(p.Lines())))
			a.metrics.length.Observe(float64(res.Length))
			return &p, res, nil
		}
	}
	a.metrics.jobs.WithLabelValues("error").Inc()
	return nil, nil, err
}

// generate runs the job in the request body and returns the program. Every
// line is also published on /events/program.
func (a *api) generate(w http.ResponseWriter, req *http.Request) {
	density, err := a.parseDensity(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	comments := req.FormValue("comments") != "0"

	p, res, err := a.runJob(req.Body, density)
	if err != nil {
		a.log.Warn("generate", zap.Error(err))
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	for _, l := range p.Lines() {
		a.sse.SendMessage("/events/program", sse.SimpleMessage(l.String()))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Path-Length", strconv.FormatFloat(res.Length.Millimeters(), 'f', -1, 64))
	w.Header().Set("X-Rapid-Seconds", strconv.FormatFloat(res.RapidTime.Seconds(), 'f', -1, 64))
	w.Header().Set("X-Cut-Seconds", strconv.FormatFloat(res.CutTime.Seconds(), 'f', -1, 64))
	io.WriteString(w, p.Format(comments))
}

func (a *api) send(w http.ResponseWriter, req *http.Request) {
	if a.ctrl == nil {
		http.Error(w, "no controller connected", http.StatusServiceUnavailable)
		return
	}
	p, _, err := a.runJob(req.Body, a.density)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	n, err := a.ctrl.Send(req.Context(), p)
	if err != nil {
		a.log.Error("send", zap.Int64("bytes", n), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// probe runs a probe grid and stores the mesh as mesh.yaml in the data
// directory. The mesh is also returned.
func (a *api) probe(w http.ResponseWriter, req *http.Request) {
	if a.ctrl == nil {
		http.Error(w, "no controller connected", http.StatusServiceUnavailable)
		return
	}

	var err error
	parse := func(param string) (val float64) {
		if err != nil {
			return 0
		}
		val, err = strconv.ParseFloat(req.FormValue(param), 64)
		return val
	}
	opt := grbl.ProbeGridOptions{
		ProbeOptions: grbl.ProbeOptions{
			FeedRate:  units.MillimetersPerMinute(parse("feedRate")),
			MaxTravel: units.Millimeters(-parse("maxZTravel")),
		},
		DistanceX: units.Millimeters(parse("xDist")),
		DistanceY: units.Millimeters(parse("yDist")),
	}
	granularity := parse("granularity")
	opt.Granularity = units.Millimeters(granularity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, err := a.ctrl.ProbeGrid(req.Context(), opt)
	if err != nil {
		a.log.Error("probe grid", zap.Error(err))
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	var buf bytes.Buffer
	if err := writeMesh(&buf, newMesh(points, granularity)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, name := safePath(a.dataDir, "mesh.yaml"); name != "" {
		os.MkdirAll(filepath.Dir(name), 0755)
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			a.log.Error("write mesh", zap.String("name", name), zap.Error(err))
		}
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(buf.Bytes())
}

type statusJSON struct {
	State string
	MPos  coord.Pose
	WCO   coord.Pose
	WPos  coord.Pose
}

func newStatusJSON(s grbl.Status) statusJSON {
	return statusJSON{State: s.State, MPos: s.MPos, WCO: s.WCO, WPos: s.WPos()}
}

func (a *api) status(w http.ResponseWriter, req *http.Request) {
	if a.ctrl == nil {
		http.Error(w, "no controller connected", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newStatusJSON(a.ctrl.Status())); err != nil {
		a.log.Error("encode status", zap.Error(err))
	}
}

// moveJSON is one expanded move as sent over /ws/path.
type moveJSON struct {
	Index  int
	Kind   string
	Length float64
	Steps  []stepJSON
}

type stepJSON struct {
	Position    coord.Point
	Orientation coord.Quaternion
}

// wsPath reads one job per text message and answers with its moves, one
// message each, followed by an empty "done" message.
func (a *api) wsPath(w http.ResponseWriter, req *http.Request) {
	density, err := a.parseDensity(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws, err := a.upgrader.Upgrade(w, req, nil)
	if err != nil {
		a.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer ws.Close()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.log.Debug("websocket read", zap.Error(err))
			}
			return
		}

		_, res, err := a.runJob(bytes.NewReader(data), density)
		if err != nil {
			if err := ws.WriteJSON(map[string]string{"Error": err.Error()}); err != nil {
				return
			}
			continue
		}
		for _, mv := range res.Moves {
			msg := moveJSON{Index: mv.Index, Kind: mv.Kind, Length: mv.Path.Length.Millimeters()}
			msg.Steps = make([]stepJSON, len(mv.Path.Steps))
			for i, s := range mv.Path.Steps {
				msg.Steps[i] = stepJSON{Position: s.Position, Orientation: s.Orientation}
			}
			if err := ws.WriteJSON(msg); err != nil {
				a.log.Debug("websocket write", zap.Error(err))
				return
			}
		}
		if err := ws.WriteJSON(map[string]bool{"Done": true}); err != nil {
			return
		}
	}
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, strings.TrimPrefix(req.URL.Path, "/data"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	os.MkdirAll(filepath.Dir(name), 0755)
	f, err := os.Create(name)
	if err != nil {
		a.log.Error("create file", zap.String("name", name), zap.Error(err))
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	_, err = io.Copy(f, req.Body)
	if err != nil {
		a.log.Error("write file", zap.String("name", name), zap.Error(err))
		http.Error(w, err.Error(), 500)
		return
	}
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, strings.TrimPrefix(req.URL.Path, "/data"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.Remove(name)
	if errors.Is(err, os.ErrNotExist) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		a.log.Error("delete file", zap.String("name", name), zap.Error(err))
		http.Error(w, err.Error(), 500)
		return
	}
}
