package trirast

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// DefaultTrianglesURL is the course-hosted scene the viewer loads when no source is given.
const DefaultTrianglesURL = "https://ncsucgclass.github.io/prog3/triangles.json"

const DefaultFetchTimeout = 3 * time.Second

// Config holds everything the CLI needs to set up a run. Zero values are not
// meaningful; start from DefaultConfig.
type Config struct {
	TrianglesURL string        `json:"triangles_url"`
	FetchTimeout time.Duration `json:"fetch_timeout"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Title        string        `json:"title"`
	AltPosition  bool          `json:"alt_position"`
	Debug        bool          `json:"debug"`
	Camera       Camera        `json:"camera"`
}

func DefaultConfig() Config {
	return Config{
		TrianglesURL: DefaultTrianglesURL,
		FetchTimeout: DefaultFetchTimeout,
		Width:        512,
		Height:       512,
		Title:        "trirast",
		Camera:       DefaultCamera(),
	}
}

// LoadConfig overlays the JSON file at path on DefaultConfig. A missing file is
// not an error and yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// UnmarshalJSON reads fetch_timeout as a duration string ("3s", "500ms") or
// as a number of seconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		FetchTimeout json.RawMessage `json:"fetch_timeout"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.FetchTimeout) == 0 {
		return nil
	}
	d, err := parseTimeout(aux.FetchTimeout)
	if err != nil {
		return fmt.Errorf("fetch_timeout: %w", err)
	}
	c.FetchTimeout = d
	return nil
}

func parseTimeout(raw json.RawMessage) (time.Duration, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return time.ParseDuration(text)
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return 0, fmt.Errorf("want a duration string or seconds, got %s", raw)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout %v must be positive", c.FetchTimeout)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range [%g, %g] is invalid", c.Camera.Near, c.Camera.Far)
	}
	return nil
}
