// Package config is responsible for finding, parsing and merging the
// user configuration with the defaults. The user file lives in the
// standard per-user configuration directory, e.g.
// $HOME/.config/mediaart/config.json on Linux.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/adrg/xdg"
)

const configName = "config.json"

// dirName is the subdirectory under the user configuration directory
// which belongs to this program.
const dirName = "mediaart"

// Config contains a representation for everything in config.json.
type Config struct {
	// CacheDir overrides where cache artifacts are stored. Empty means
	// the standard per-user cache directory.
	CacheDir string `json:"cache_dir"`

	// MaxArtWidth caps the width of stored artwork in pixels. Wider
	// images are scaled down. Zero stores images as they come.
	MaxArtWidth int `json:"max_art_width"`

	// DownloadRequests enables asking an external downloader service
	// for artwork which was not found locally.
	DownloadRequests bool `json:"download_requests"`

	// DownloadInProcess enables downloading missing artwork from the
	// Cover Art Archive directly instead of delegating to a service.
	DownloadInProcess bool `json:"download_in_process"`

	// UserAgent is sent with every request to the MusicBrainz and Cover
	// Art Archive APIs.
	UserAgent string `json:"user_agent"`

	// LogFile receives the program log when set. Empty logs to stderr.
	LogFile string `json:"log_file"`

	// Workers is the number of concurrently processed files.
	Workers int `json:"workers"`
}

// Default returns the configuration used when the user has not said
// anything.
func Default() *Config {
	return &Config{
		DownloadRequests: true,
		MaxArtWidth:      0,
		UserAgent:        "mediaart",
	}
}

// FindAndParse locates the user configuration file and merges it on top
// of the defaults. A missing file is fine, the defaults then stand as
// they are.
func FindAndParse() (*Config, error) {
	cfg := Default()

	path := UserConfigPath()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}

	usrCfg := new(Config)
	if err := usrCfg.parse(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.merge(usrCfg)
	return cfg, nil
}

// UserConfigPath returns the full path to the place where the user's
// configuration file should be.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, dirName, configName)
}

// parse populates the config's fields from the JSON file at filename.
func (cfg *Config) parse(filename string) error {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(contents, cfg)
}

// merge copies an other config on top of this one. Only non-zero values
// are merged.
func (cfg *Config) merge(merged *Config) {
	cfgVal := reflect.ValueOf(cfg).Elem()
	mergedVal := reflect.ValueOf(merged).Elem()

	for i := 0; i < mergedVal.NumField(); i++ {
		mergedField := mergedVal.Field(i)
		if !mergedField.IsValid() || mergedField.IsZero() {
			continue
		}

		cfgField := cfgVal.Field(i)
		if !cfgField.CanSet() {
			continue
		}

		cfgField.Set(mergedField)
	}
}
