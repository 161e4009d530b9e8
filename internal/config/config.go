// Package config loads the Mirada service configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// CameraConfig selects and sizes the capture device.
type CameraConfig struct {
	DeviceID int `yaml:"device_id"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

// DetectorConfig locates the face mesh sidecar.
type DetectorConfig struct {
	// Script is an explicit path to the face mesh script. Empty means
	// search the usual locations.
	Script string `yaml:"script"`
	// Python is the interpreter used to run the script.
	Python string `yaml:"python"`
	// MinConfidence is the detector's minimum detection confidence.
	MinConfidence float64 `yaml:"min_confidence"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RecorderConfig holds the recording artifact directories.
type RecorderConfig struct {
	JSONDir  string `yaml:"json_dir"`
	VideoDir string `yaml:"video_dir"`
}

// StoreConfig holds the session index location. An empty path means
// the per-user default under ~/.mirada.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// TrayConfig toggles the system tray menu.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the top-level service configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Server   ServerConfig   `yaml:"server"`
	Recorder RecorderConfig `yaml:"recorder"`
	Store    StoreConfig    `yaml:"store"`
	Tray     TrayConfig     `yaml:"tray"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			DeviceID: 0,
			Width:    640,
			Height:   480,
		},
		Detector: DetectorConfig{
			Python:        "python3",
			MinConfidence: 0.5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Recorder: RecorderConfig{
			JSONDir:  "animations/json",
			VideoDir: "animations/video",
		},
		Tray: TrayConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing
// file is not an error; the defaults are returned unchanged. Keys
// absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}
