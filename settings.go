package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"tedrecords/internal/cellopen"
)

// Settings represents the application configuration
type Settings struct {
	TelemetryEnabled bool   `json:"telemetry_enabled"`
	FirstRunComplete bool   `json:"first_run_complete"`
	OpenRecordIn     string `json:"open_record_in,omitempty"`
}

// OpenRecordInPreference parses OpenRecordIn, defaulting to the record page.
func (s *Settings) OpenRecordInPreference() cellopen.OpenRecordIn {
	if s == nil || s.OpenRecordIn == "" {
		return cellopen.OpenRecordInRecordPage
	}
	v, err := cellopen.ParseOpenRecordIn(s.OpenRecordIn)
	if err != nil {
		return cellopen.OpenRecordInRecordPage
	}
	return v
}

// getConfigDir returns the configuration directory following the XDG base directory layout
func getConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "tedrecords"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tedrecords"), nil
}

// getSettingsPath returns the full path to settings.json
func getSettingsPath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

// LoadSettings reads settings.json. A missing file means first run and
// yields defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("could not read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("could not parse settings file: %w", err)
	}
	return &settings, nil
}

// SaveSettings writes the settings to path, creating its directory.
func SaveSettings(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write settings file: %w", err)
	}
	return nil
}

// SettingsWatcher reloads settings.json when it changes on disk. Bursts of
// writes are coalesced into one reload.
type SettingsWatcher struct {
	path     string
	debounce time.Duration
	onChange func(*Settings)
	log      logr.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// WatchSettings starts watching path. The settings file need not exist yet;
// its directory is watched so creating it is noticed.
func WatchSettings(path string, debounce time.Duration, log logr.Logger, onChange func(*Settings)) (*SettingsWatcher, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create config directory: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch settings: %w", err)
	}

	sw := &SettingsWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		log:      log,
		watcher:  w,
		done:     make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.loop()
	return sw, nil
}

func (sw *SettingsWatcher) loop() {
	defer sw.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-sw.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case evt, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != sw.path || !evt.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(sw.debounce)
			} else {
				timer.Reset(sw.debounce)
			}
			fire = timer.C
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Error(err, "settings watcher")
		case <-fire:
			fire = nil
			settings, err := LoadSettings(sw.path)
			if err != nil {
				// Editors often write partial files; the next write retries.
				sw.log.V(1).Info("ignoring unreadable settings", "error", err.Error())
				continue
			}
			sw.onChange(settings)
		}
	}
}

// Stop ends the watch and waits for the loop to exit.
func (sw *SettingsWatcher) Stop() error {
	close(sw.done)
	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}
