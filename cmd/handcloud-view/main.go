package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ayusman/handcloud/internal/app"
	"github.com/ayusman/handcloud/internal/audio"
	"github.com/ayusman/handcloud/internal/config"
	"github.com/ayusman/handcloud/internal/logging"
	"github.com/ayusman/handcloud/internal/render"
	"github.com/ayusman/handcloud/internal/store"
	"github.com/ayusman/handcloud/internal/viewer"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.handcloud/config.yaml)")
	cameraID := flag.Int("camera", -1, "camera device ID, overrides the config")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

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
	if *cameraID >= 0 {
		cfg.CameraID = *cameraID
	}
	if *debug {
		cfg.Debug = true
	}

	logger := logging.New("handcloud-view", cfg.Debug)

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
	defer a.Stop()
	a.SetEnabled(true)

	renderer, err := render.New(render.Options{Width: windowWidth, Height: windowHeight, HUD: true})
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	g := newGame(viewer.NewScene(a.Controller(), a, windowWidth, windowHeight), renderer)

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("handcloud - %s", viewer.Help))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Printf("Viewer failed: %v", err)
	}
}
