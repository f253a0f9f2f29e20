package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gogpu/gg"

	"github.com/ayusman/handcloud/internal/app"
	"github.com/ayusman/handcloud/internal/audio"
	"github.com/ayusman/handcloud/internal/config"
	"github.com/ayusman/handcloud/internal/gesture"
	"github.com/ayusman/handcloud/internal/logging"
	"github.com/ayusman/handcloud/internal/render"
	"github.com/ayusman/handcloud/internal/server"
	"github.com/ayusman/handcloud/internal/store"
	"github.com/ayusman/handcloud/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.handcloud/config.yaml)")
	addr := flag.String("addr", "", "HTTP listen address, overrides the config")
	cameraID := flag.Int("camera", -1, "camera device ID, overrides the config")
	withTray := flag.Bool("tray", false, "show the system tray menu")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	fmt.Println("handcloud - hand-controlled particle cloud")

	dataDir, err := config.DataDir()
	if err != nil {
		log.Fatalf("Failed to get data directory: %v", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if *configPath == "" {
		*configPath = filepath.Join(dataDir, config.FileName)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *cameraID >= 0 {
		cfg.CameraID = *cameraID
	}
	if *debug {
		cfg.Debug = true
	}

	logger := logging.New("handcloud", cfg.Debug)
	if cfg.Debug {
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	st, err := store.New(filepath.Join(dataDir, "handcloud.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a, err := app.FromConfig(cfg, st, logger.WithPrefix("app"))
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if cfg.Sound {
		player := audio.NewPlayer(logger.WithPrefix("audio"))
		defer player.Close()
		a.Controller().OnFirework(player.PopFunc())
	}

	if _, err := a.StartOrSynthetic(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	a.SetEnabled(true)

	renderer, err := render.New(render.Options{HUD: true})
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Controller: a.Controller(),
		Renderer:   renderer,
		Hands:      a,
		Camera:     a,
		Logger:     logger.WithPrefix("server"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if *withTray {
		t := tray.New(tray.Actions{
			OnToggle:      a.SetEnabled,
			OnNextShape:   func() string { return a.Controller().NextShape().String() },
			OnFirework:    a.Controller().Firework,
			OnRandomColor: func() { a.Controller().RandomizeColor() },
			OnOpen:        func() { openBrowser(browserURL(cfg.Addr)) },
			OnQuit:        stop,
		})
		a.OnSignals(func(s gesture.Signals) { t.SetLastGesture(s.String()) })
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
	} else {
		<-ctx.Done()
	}

	fmt.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	a.Stop()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
