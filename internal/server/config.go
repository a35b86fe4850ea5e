package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the server configuration, loaded from config.json.
type Config struct {
	Listen         string   `json:"listen"`
	DBPath         string   `json:"db_path"`
	Engine         string   `json:"engine"`
	Millis         int      `json:"millis"`
	MultiPV        int      `json:"multipv"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// FindConfigPath walks up from the working directory looking for config.json.
func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	dir := cwd
	for {
		path := filepath.Join(dir, "config.json")
		if _, err := os.Stat(path); err == nil {
			return path, filepath.Dir(path), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", fmt.Errorf("config.json not found from %s", cwd)
}

// LoadConfig reads and decodes config.json, filling defaults for omitted
// fields. The engine path may stay empty; analysis endpoints then report
// engine-unavailable instead of failing startup.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "shogi.db"
	}
	if cfg.Millis <= 0 {
		cfg.Millis = 1000
	}
	if cfg.MultiPV <= 0 {
		cfg.MultiPV = 1
	}
	return cfg, nil
}
