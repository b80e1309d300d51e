package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/voxel.paint/internal/httputil"
	"github.com/banshee-data/voxel.paint/internal/version"
)

// echartsAssetsHost serves the echarts JS bundle for the debug pages.
const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// WebServer serves scan statistics over HTTP.
type WebServer struct {
	address     string
	stats       *ScanStats
	history     *CorrectionHistory
	attachAdmin func(*http.ServeMux) error
	server      *http.Server
}

// WebServerConfig contains configuration options for the web server
type WebServerConfig struct {
	Address string
	Stats   *ScanStats
	// History defaults to Stats.History() when nil.
	History *CorrectionHistory
	// AttachAdmin, when set, mounts extra debug routes (e.g. the placement
	// database console) on the server's mux.
	AttachAdmin func(*http.ServeMux) error
}

// NewWebServer creates a new web server with the provided configuration
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:     config.Address,
		stats:       config.Stats,
		history:     config.History,
		attachAdmin: config.AttachAdmin,
	}
	if ws.history == nil && ws.stats != nil {
		ws.history = ws.stats.History()
	}
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.setupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Handler returns the route multiplexer, for tests and embedding.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully. It returns an error only when the
// listener cannot be opened.
func (ws *WebServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ws.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ws.address, err)
	}
	return ws.Serve(ctx, ln)
}

// Serve is Start with a caller-supplied listener.
func (ws *WebServer) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		opsf("starting HTTP server on %s", ln.Addr())
		if err := ws.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			opsf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	diagf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		opsf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			opsf("HTTP server force close error: %v", err)
		}
	}
	diagf("HTTP server routine stopped")
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/scan/stats", ws.handleStats)
	mux.HandleFunc("/api/scan/history", ws.handleHistory)
	mux.HandleFunc("/debug/correction", ws.handleCorrectionChart)
	if ws.attachAdmin != nil {
		if err := ws.attachAdmin(mux); err != nil {
			opsf("admin routes disabled: %v", err)
		}
	}
	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":    "ok",
		"service":   "voxelscan",
		"version":   version.Version,
		"git_sha":   version.GitSHA,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.stats == nil {
		httputil.NotFound(w, "scan statistics are not enabled")
		return
	}
	httputil.WriteJSONOK(w, ws.stats.Snapshot())
}

// handleHistory returns recent corrections, oldest first.
// Query params:
//   - limit (optional) keeps only the newest N points
func (ws *WebServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	points, err := ws.historyPoints(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"count":  len(points),
		"points": points,
	})
}

func (ws *WebServer) historyPoints(r *http.Request) ([]CorrectionPoint, error) {
	if ws.history == nil {
		return []CorrectionPoint{}, nil
	}
	points := ws.history.Points()
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid limit %q", l)
		}
		if n < len(points) {
			points = points[len(points)-n:]
		}
	}
	if points == nil {
		points = []CorrectionPoint{}
	}
	return points, nil
}

// handleCorrectionChart renders the correction factor and measured
// brightness per coloured placement as an HTML line chart.
func (ws *WebServer) handleCorrectionChart(w http.ResponseWriter, r *http.Request) {
	points, err := ws.historyPoints(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if len(points) == 0 {
		httputil.NotFound(w, "no corrections recorded yet")
		return
	}

	xs := make([]string, 0, len(points))
	factors := make([]opts.LineData, 0, len(points))
	brightness := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		xs = append(xs, fmt.Sprintf("%d/%d", p.Tick, p.Source))
		factors = append(factors, opts.LineData{Value: p.Correction})
		brightness = append(brightness, opts.LineData{Value: p.Brightness})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Exposure correction", Width: "100%", Height: "600px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Exposure correction", Subtitle: fmt.Sprintf("points=%d", len(points))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tick/source"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)
	line.SetXAxis(xs).
		AddSeries("correction", factors).
		AddSeries("brightness", brightness)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
