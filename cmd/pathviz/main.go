// Command pathviz is a terminal workbench for authoring path-planning
// scenes and replaying the optimizer's iterations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/pathviz/internal/config"
	"github.com/banshee-data/pathviz/internal/db"
	"github.com/banshee-data/pathviz/internal/httputil"
	"github.com/banshee-data/pathviz/internal/monitor"
	"github.com/banshee-data/pathviz/internal/optimizer"
	"github.com/banshee-data/pathviz/internal/playback"
	"github.com/banshee-data/pathviz/internal/session"
	"github.com/banshee-data/pathviz/internal/timeutil"
	"github.com/banshee-data/pathviz/internal/tui"
	"github.com/banshee-data/pathviz/internal/version"
)

var (
	optimizerURL = flag.String("optimizer", "", "Optimizer service base URL (overrides PATHVIZ_OPTIMIZER_URL)")
	listen       = flag.String("listen", "", "Debug HTTP listen address; empty disables the monitor")
	dbPath       = flag.String("db", "", "Run history database path (overrides PATHVIZ_DB_PATH)")
	noDB         = flag.Bool("no-db", false, "Do not record run history")
	logFile      = flag.String("log", "", "Log file path (overrides PATHVIZ_LOG_FILE)")
	tunablesPath = flag.String("tunables", "", "Path to a tunables JSON file")
	trace        = flag.Bool("trace", false, "Log per-event and per-frame trace output")
	check        = flag.Bool("check", false, "Check the optimizer service is reachable and exit")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	applyFlags(settings)

	if flag.Arg(0) == "migrate" {
		if err := db.RunMigrateCommand(flag.Args()[1:], settings.DBPath, os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	tunables := config.DefaultTunables()
	if settings.TunablesPath != "" {
		tunables, err = config.LoadTunables(settings.TunablesPath)
		if err != nil {
			log.Fatalf("failed to load tunables: %v", err)
		}
	}

	client := optimizer.NewClient(httputil.NewStandardClient(&http.Client{}), settings.OptimizerURL)

	if *check {
		os.Exit(runCheck(client))
	}

	logOut, closeLog, err := openLog(settings.LogFile)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer closeLog()
	// The terminal belongs to the UI; everything else goes to the log.
	log.SetOutput(logOut)
	var traceOut io.Writer
	if *trace {
		traceOut = logOut
	}
	session.SetLogWriters(logOut, logOut, traceOut)
	optimizer.SetLogWriters(logOut, logOut, traceOut)
	playback.SetLogWriters(logOut, logOut, traceOut)
	monitor.SetLogWriters(logOut, logOut, traceOut)

	log.Printf("starting %s, optimizer %s", version.String(), settings.OptimizerURL)

	cfg := session.Config{
		Optimizer:      client,
		Params:         session.ParamsFromTunables(tunables),
		FrameInterval:  tunables.GetFrameInterval(),
		RequestTimeout: settings.RequestTimeout,
	}

	var runs monitor.RunLister
	if settings.DBPath != "" {
		store, err := db.Open(settings.DBPath)
		if err != nil {
			log.Fatalf("failed to open run history: %v", err)
		}
		defer store.Close()
		cfg.Store = store
		runs = store
	}

	var hub *monitor.Hub
	if settings.ListenAddr != "" {
		hub = monitor.NewHub(timeutil.RealClock{})
		cfg.Publisher = hub
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("failed to initialize screen: %v", err)
	}
	screen.EnableMouse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := session.NewLoop()
	app := tui.New(screen, loop, stop)
	cfg.Display = app
	sess := session.New(loop, cfg)
	app.Attach(sess)

	var wg sync.WaitGroup
	if settings.ListenAddr != "" {
		srv := monitor.NewServer(monitor.Config{
			Address: settings.ListenAddr,
			Loop:    loop,
			Session: sess,
			Runs:    runs,
			Hub:     hub,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Start(ctx); err != nil {
				log.Printf("monitor server: %v", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("input routine: %v", err)
		}
	}()

	// Stop the session on the loop before the loop itself exits, so an
	// in-flight request is cancelled and recorded.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	go func() {
		<-ctx.Done()
		if !loop.Post(func() {
			sess.Stop()
			cancelLoop()
		}) {
			cancelLoop()
		}
	}()
	_ = loop.Run(loopCtx)

	screen.Fini()
	sess.Wait()
	wg.Wait()
	log.Print("shutdown complete")
}

func applyFlags(s *config.Settings) {
	if *optimizerURL != "" {
		s.OptimizerURL = *optimizerURL
	}
	if *listen != "" {
		s.ListenAddr = *listen
	}
	if *dbPath != "" {
		s.DBPath = *dbPath
	}
	if *noDB {
		s.DBPath = ""
	}
	if *logFile != "" {
		s.LogFile = *logFile
	}
	if *tunablesPath != "" {
		s.TunablesPath = *tunablesPath
	}
}

func runCheck(client *optimizer.Client) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := client.Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "optimizer at %s unreachable: %v\n", client.BaseURL(), err)
		return 1
	}
	fmt.Printf("optimizer at %s: %s\n", client.BaseURL(), status)
	return 0
}

// openLog opens path for appending. An empty path discards log output.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
