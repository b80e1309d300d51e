// Command voxelscan runs the voxel sampling pipeline headless against a
// synthetic room, optionally logging placements to SQLite and serving live
// statistics over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/config"
	"github.com/banshee-data/voxel.paint/internal/timeutil"
	"github.com/banshee-data/voxel.paint/internal/version"
	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
	"github.com/banshee-data/voxel.paint/internal/voxel/monitor"
	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
	"github.com/banshee-data/voxel.paint/internal/voxel/storage/sqlite"
	"github.com/banshee-data/voxel.paint/internal/voxel/synthetic"
)

type options struct {
	configPath string
	imagePath  string
	dbPath     string
	listen     string
	grpcListen string
	ticks      uint64
	plotDir    string
	warmup     int
	sweepStep  float64
	debug      bool
	trace      bool
	version    bool
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("voxelscan", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.configPath, "config", config.DefaultConfigPath, "Path to the scan config JSON")
	fs.StringVar(&o.imagePath, "image", "", "PNG or JPEG camera frame (default: generated gradient)")
	fs.StringVar(&o.dbPath, "db", "", "SQLite placement log (disabled when empty)")
	fs.StringVar(&o.listen, "listen", "", "HTTP monitor listen address, e.g. :8090 (disabled when empty)")
	fs.StringVar(&o.grpcListen, "grpc-listen", "", "gRPC health service listen address (disabled when empty)")
	fs.Uint64Var(&o.ticks, "ticks", 300, "Number of ticks to run (0 runs until interrupted)")
	fs.StringVar(&o.plotDir, "plot-dir", "", "Directory for correction PNG plots (disabled when empty)")
	fs.IntVar(&o.warmup, "warmup", 3, "Ticks before the camera frame becomes ready")
	fs.Float64Var(&o.sweepStep, "sweep-step", 0.01, "Radians each ray source turns per tick")
	fs.BoolVar(&o.debug, "debug", false, "Enable diagnostic logging")
	fs.BoolVar(&o.trace, "trace", false, "Enable per-sample trace logging")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.warmup < 0 {
		return o, fmt.Errorf("-warmup must not be negative, got %d", o.warmup)
	}
	return o, nil
}

func setupLogging(o options, w io.Writer) {
	var diag, trace io.Writer
	if o.debug || o.trace {
		diag = w
	}
	if o.trace {
		trace = w
	}
	pipeline.SetLogWriters(w, diag, trace)
	monitor.SetLogWriters(w, diag)
}

func loadFrame(path string) (l3exposure.Image, error) {
	if path == "" {
		return l3exposure.FromImage(synthetic.GradientImage(640, 480)), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, err := l3exposure.DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// cameraPose puts the camera at the first ray origin, looking down +Z.
func cameraPose(cfg *config.ScanConfig) l2camera.Pose {
	pos := r3.Vec{Y: 1.5}
	if len(cfg.RaySampleOrigins) > 0 {
		o := cfg.RaySampleOrigins[0].Origin
		pos = r3.Vec{X: o[0], Y: o[1], Z: o[2]}
	}
	return l2camera.NewPose(pos, 0, r3.Vec{})
}

func lensFor(img l3exposure.Image) l2camera.Intrinsics {
	w, h := float64(img.Width()), float64(img.Height())
	return l2camera.Intrinsics{
		FocalLength:    r2.Vec{X: 0.8 * w, Y: 0.8 * w},
		PrincipalPoint: r2.Vec{X: w / 2, Y: h / 2},
		Resolution:     image.Pt(img.Width(), img.Height()),
	}
}

func run(ctx context.Context, o options, clock timeutil.Clock) error {
	cfg, err := config.LoadScanConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	frame, err := loadFrame(o.imagePath)
	if err != nil {
		return err
	}

	oc, err := pipeline.ConfigFromScan(cfg)
	if err != nil {
		return err
	}
	stats := monitor.NewScanStats(monitor.NewCorrectionHistory(monitor.DefaultHistorySize))
	voxels := synthetic.NewMemoryVoxelFactory()

	oc.Sources = synthetic.SweepSources(oc.Sources, r3.Vec{Y: 1}, o.sweepStep)
	oc.Caster = synthetic.NewBoxRoom(r3.Vec{X: -2, Y: 0, Z: -2}, r3.Vec{X: 2, Y: 3, Z: 4})
	oc.Images = synthetic.NewFrameSource(frame, o.warmup)
	oc.Camera = synthetic.NewFixedRig(cameraPose(cfg), lensFor(frame))
	oc.Voxels = voxels
	oc.Clock = clock

	observers := pipeline.TickObservers{stats}
	if o.grpcListen != "" {
		hs := monitor.NewHealthServer(o.grpcListen)
		if err := hs.Start(); err != nil {
			return fmt.Errorf("start health server: %w", err)
		}
		defer hs.Stop()
		observers = append(observers, hs)
	}
	oc.Observer = observers

	var (
		db       *sqlite.DB
		sessions *sqlite.SessionStore
		session  *sqlite.Session
	)
	if o.dbPath != "" {
		db, err = sqlite.Open(o.dbPath)
		if err != nil {
			return fmt.Errorf("open placement log: %w", err)
		}
		defer db.Close()

		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		sessions = sqlite.NewSessionStore(db)
		session, err = sessions.Start(cfg.GetVoxelSize(), string(cfgJSON))
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		log.Printf("recording placements to %s (session %s)", o.dbPath, session.SessionID)
		oc.Sink = sqlite.NewPlacementStore(db, session.SessionID)
	}

	orch, err := pipeline.NewSamplingOrchestrator(oc)
	if err != nil {
		if session != nil {
			if endErr := sessions.End(session.SessionID); endErr != nil {
				log.Printf("failed to end session %s: %v", session.SessionID, endErr)
			}
		}
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if o.listen != "" {
		wsConfig := monitor.WebServerConfig{Address: o.listen, Stats: stats}
		if db != nil {
			wsConfig.AttachAdmin = func(mux *http.ServeMux) error {
				return db.AttachAdminRoutes(mux, filepath.Base(o.dbPath))
			}
		}
		ws := monitor.NewWebServer(wsConfig)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(ctx); err != nil {
				log.Printf("monitor server error: %v", err)
			}
		}()
	}

	runErr := pipeline.Run(ctx, orch, clock, cfg.GetTickInterval(), o.ticks)
	cancel()
	wg.Wait()

	stats.LogSummary()
	log.Printf("placed %d voxels", voxels.Len())

	if session != nil {
		if err := sessions.End(session.SessionID); err != nil {
			log.Printf("failed to end session %s: %v", session.SessionID, err)
		}
	}

	if o.plotDir != "" {
		plotter := monitor.NewCorrectionPlotter(stats.History(),
			cfg.GetTargetBrightness(), cfg.GetMinCorrection(), cfg.GetMaxCorrection())
		paths, err := plotter.Save(o.plotDir)
		switch {
		case errors.Is(err, monitor.ErrNoCorrections):
			log.Printf("no corrections recorded, skipping plots")
		case err != nil:
			log.Printf("failed to save plots: %v", err)
		default:
			log.Printf("wrote %v", paths)
		}
	}
	return runErr
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if o.version {
		fmt.Println("voxelscan", version.String())
		return
	}
	setupLogging(o, os.Stderr)
	log.Printf("voxelscan %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, timeutil.RealClock{}); err != nil {
		log.Fatalf("voxelscan: %v", err)
	}
}
