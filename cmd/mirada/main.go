package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aaguirre/mirada/internal/app"
	"github.com/aaguirre/mirada/internal/config"
	"github.com/aaguirre/mirada/internal/detector"
	"github.com/aaguirre/mirada/internal/server"
	"github.com/aaguirre/mirada/internal/store"
	"github.com/aaguirre/mirada/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	fmt.Println("Mirada - Virtual Eyes")

	// Per-user data directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".mirada")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	path := *configPath
	if path == "" {
		path = filepath.Join(dataDir, "mirada.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the session index
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "mirada.db")
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	detCfg := detector.DefaultConfig()
	detCfg.Script = cfg.Detector.Script
	detCfg.Python = cfg.Detector.Python
	if cfg.Detector.MinConfidence > 0 {
		detCfg.MinConfidence = cfg.Detector.MinConfidence
	}

	a := app.New(app.Config{
		Store:        st,
		CameraID:     cfg.Camera.DeviceID,
		CameraWidth:  cfg.Camera.Width,
		CameraHeight: cfg.Camera.Height,
		Detector:     detCfg,
		JSONDir:      cfg.Recorder.JSONDir,
		VideoDir:     cfg.Recorder.VideoDir,
	})

	avatarStream := server.NewStreamer()
	scanStream := server.NewStreamer()
	hub := server.NewHub()
	tr := tray.New()

	// Fan each processed frame out to the streams, the websocket hub
	// and the tray status line.
	a.OnFrame(func(u app.FrameUpdate) {
		avatarStream.Publish(u.AvatarJPEG)
		scanStream.Publish(u.ScanJPEG)
		hub.Broadcast(u.State)
		if cfg.Tray.Enabled {
			tr.SetStatus(u.State.Mode, u.State.Recording)
		}
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	srv := server.New(server.Config{
		App:    a,
		Store:  st,
		Avatar: avatarStream,
		Scan:   scanStream,
		Hub:    hub,
	})

	serve := func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}

	if cfg.Tray.Enabled {
		tr.OnCommand(func(cmd app.Command) {
			if err := a.HandleCommand(cmd); err != nil {
				log.Printf("tray command %s rejected: %v", cmd, err)
			}
		})
		tr.OnQuit(a.Stop)

		// systray must own the main goroutine.
		go serve()
		tr.Run()
		return
	}

	// Headless: serve until interrupted, then flush the pipeline so an
	// active recording is not lost.
	go serve()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	a.Stop()
}
