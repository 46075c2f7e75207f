package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/gorilla/mux"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pathviz/internal/db"
	"github.com/banshee-data/pathviz/internal/httputil"
	"github.com/banshee-data/pathviz/internal/render"
	"github.com/banshee-data/pathviz/internal/session"
	"github.com/banshee-data/pathviz/internal/version"
)

// echartsAssetsPrefix is where rendered chart pages load the echarts bundle.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

const (
	defaultViewWidth  = 800
	defaultViewHeight = 600
	maxViewSide       = 4096
)

var contentTypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.Version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var snap session.Snapshot
	if err := s.onLoop(r.Context(), func() { snap = s.sess.Snapshot() }); err != nil {
		httputil.ServiceUnavailable(w, fmt.Sprintf("session busy: %v", err))
		return
	}
	httputil.WriteJSONOK(w, snap)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		httputil.NotFound(w, "run history is disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			httputil.BadRequest(w, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	runs, err := s.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		opsf("recent runs: %v", err)
		httputil.InternalServerError(w, "failed to load runs")
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		httputil.NotFound(w, "run history is disabled")
		return
	}
	run, err := s.runs.GetRun(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, db.ErrRunNotFound):
		httputil.NotFound(w, "run not found")
	case err != nil:
		opsf("get run: %v", err)
		httputil.InternalServerError(w, "failed to load run")
	default:
		httputil.WriteJSONOK(w, run)
	}
}

func (s *Server) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		httputil.NotFound(w, "run history is disabled")
		return
	}
	counts, err := s.runs.CountRuns(r.Context())
	if err != nil {
		opsf("count runs: %v", err)
		httputil.InternalServerError(w, "failed to count runs")
		return
	}
	httputil.WriteJSONOK(w, counts)
}

// handleCostChart renders the cost history as an interactive echarts page,
// with a mark line at the playback cursor.
func (s *Server) handleCostChart(w http.ResponseWriter, r *http.Request) {
	var history []float64
	var cursor int
	var status string
	if err := s.onLoop(r.Context(), func() {
		history = s.sess.CostHistory()
		cursor = s.sess.PlaybackCursor()
		status = s.sess.Status()
	}); err != nil {
		httputil.ServiceUnavailable(w, fmt.Sprintf("session busy: %v", err))
		return
	}

	x := make([]int, len(history))
	y := make([]opts.LineData, len(history))
	for i, c := range history {
		x[i] = i
		y[i] = opts.LineData{Value: c}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Cost History", Width: "100%", Height: "520px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Cost History", Subtitle: fmt.Sprintf("%s frames=%d", status, len(history))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cost", NameLocation: "middle", NameGap: 45}),
	)
	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
	}
	if len(history) > 0 {
		if cursor >= len(history) {
			cursor = len(history) - 1
		}
		seriesOpts = append(seriesOpts,
			charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: "cursor", XAxis: cursor}))
	}
	line.SetXAxis(x).AddSeries("cost", y, seriesOpts...)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(line)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleCostPlot renders the cost history as a static image.
func (s *Server) handleCostPlot(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	width, height, ok := imageSize(w, r, defaultViewWidth, 300)
	if !ok {
		return
	}

	var history []float64
	var cursor int
	if err := s.onLoop(r.Context(), func() {
		history = s.sess.CostHistory()
		cursor = s.sess.PlaybackCursor()
	}); err != nil {
		httputil.ServiceUnavailable(w, fmt.Sprintf("session busy: %v", err))
		return
	}

	var buf bytes.Buffer
	err := render.WriteCostPlot(&buf, format, "Cost History", history, cursor, vg.Length(width)*vg.Inch/96, vg.Length(height)*vg.Inch/96)
	if errors.Is(err, render.ErrNoData) {
		httputil.NotFound(w, "no cost history yet")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}
	httputil.WriteRendered(w, contentTypes[format], func(out io.Writer) error {
		_, err := buf.WriteTo(out)
		return err
	})
}

// handleView renders the path canvas through the live viewport.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	width, height, ok := imageSize(w, r, defaultViewWidth, defaultViewHeight)
	if !ok {
		return
	}
	surf, err := render.NewVGSurface(format, width, height)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := s.onLoop(r.Context(), func() { s.sess.DrawPathView(surf) }); err != nil {
		httputil.ServiceUnavailable(w, fmt.Sprintf("session busy: %v", err))
		return
	}

	var buf bytes.Buffer
	if _, err := surf.WriteTo(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}
	httputil.WriteRendered(w, contentTypes[format], func(out io.Writer) error {
		_, err := buf.WriteTo(out)
		return err
	})
}

// handleViewOps returns the path canvas as a display list of device-space
// primitives.
func (s *Server) handleViewOps(w http.ResponseWriter, r *http.Request) {
	width, height, ok := imageSize(w, r, defaultViewWidth, defaultViewHeight)
	if !ok {
		return
	}
	rec := render.NewRecorder(width, height)
	if err := s.onLoop(r.Context(), func() { s.sess.DrawPathView(rec) }); err != nil {
		httputil.ServiceUnavailable(w, fmt.Sprintf("session busy: %v", err))
		return
	}
	tracef("view display list: %d ops", len(rec.Ops))
	httputil.WriteJSONOK(w, rec)
}

// imageSize reads the optional width and height query params.
func imageSize(w http.ResponseWriter, r *http.Request, defW, defH float64) (float64, float64, bool) {
	size := [2]float64{defW, defH}
	for i, key := range []string{"width", "height"} {
		v := r.URL.Query().Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > maxViewSide {
			httputil.BadRequest(w, fmt.Sprintf("%s must be between 16 and %d", key, maxViewSide))
			return 0, 0, false
		}
		size[i] = float64(n)
	}
	return size[0], size[1], true
}
