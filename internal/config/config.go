// Package config loads lazycvs configuration from YAML, the environment and
// command line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chmouel/lazycvs/internal/theme"
	"github.com/chmouel/lazycvs/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultZonPattern matches workspace directories under the base dir.
	DefaultZonPattern = `^zon\d*$|home_zon`
	appName           = "lazycvs"
)

// AppConfig defines the lazycvs configuration options.
type AppConfig struct {
	BaseDir        string        // Directory scanned for workspaces (default: $HOME)
	ZonPattern     string        // Regexp selecting workspace directory names
	CVSCommand     string        // Base version-control tool
	StatusCommand  string        // Status extension providing "up -o" and "revision"
	PatchCommand   string        // patch(1)
	LintCommand    string        // Linter run before commits
	LintExtensions []string      // Extensions the linter understands
	LintEnabled    bool          // Run the linter before commits
	ViewExtensions []string      // Extensions that can be shown as text
	NotifyUsers    []string      // Known NOTIFY recipients, used for validation when non-empty
	Timeout        time.Duration // Per-command timeout, negative disables
	WatchDebounce  time.Duration // Quiet period before a watcher-triggered refresh
	StateDir       string        // Where the current workspace is remembered
	DebugLog       string
	Theme          string
	ShowIcons      bool
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		BaseDir:        home,
		ZonPattern:     DefaultZonPattern,
		CVSCommand:     "cvs",
		StatusCommand:  "jcvs",
		PatchCommand:   "patch",
		LintCommand:    "zlint",
		LintExtensions: []string{".js", ".html", ".css", ".json", ".pl", ".less"},
		LintEnabled:    false,
		ViewExtensions: []string{".js", ".html", ".css", ".txt", ".log", ".json", ".sh", ".pl", ".h", ".c", ".csv", ".patch", ".pem"},
		Timeout:        30 * time.Second,
		WatchDebounce:  600 * time.Millisecond,
		StateDir:       filepath.Join(getStateDir(), appName),
		Theme:          theme.DefaultName,
		ShowIcons:      false,
	}
}

func normalizeList(value any) []string {
	if value == nil {
		return []string{}
	}

	switch v := value.(type) {
	case string:
		return strings.Fields(strings.ReplaceAll(v, ",", " "))
	case []any:
		items := []string{}
		for _, item := range v {
			if item == nil {
				continue
			}
			text := strings.TrimSpace(fmt.Sprintf("%v", item))
			if text != "" {
				items = append(items, text)
			}
		}
		return items
	}
	return []string{}
}

func normalizeExtensions(value any) []string {
	exts := normalizeList(value)
	for i, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[i] = ext
	}
	return exts
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

// coerceDuration accepts Go duration strings ("45s") or a bare number of seconds.
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if d, err := time.ParseDuration(text); err == nil {
			return d
		}
		if n, err := strconv.Atoi(text); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultVal
}

func stringValue(data map[string]any, key string) (string, bool) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", false
	}
	text := strings.TrimSpace(fmt.Sprintf("%v", raw))
	return text, text != ""
}

// apply overlays the values present in data onto cfg.
func (cfg *AppConfig) apply(data map[string]any) {
	if v, ok := stringValue(data, "base_dir"); ok {
		if expanded, err := utils.ExpandPath(v); err == nil {
			v = expanded
		}
		cfg.BaseDir = v
	}
	if v, ok := stringValue(data, "zon_pattern"); ok {
		if _, err := regexp.Compile(v); err == nil {
			cfg.ZonPattern = v
		}
	}
	if v, ok := stringValue(data, "cvs_command"); ok {
		cfg.CVSCommand = v
	}
	if v, ok := stringValue(data, "status_command"); ok {
		cfg.StatusCommand = v
	}
	if v, ok := stringValue(data, "patch_command"); ok {
		cfg.PatchCommand = v
	}
	if v, ok := stringValue(data, "lint_command"); ok {
		cfg.LintCommand = v
	}
	if raw, ok := data["lint_extensions"]; ok {
		cfg.LintExtensions = normalizeExtensions(raw)
	}
	if raw, ok := data["view_extensions"]; ok {
		cfg.ViewExtensions = normalizeExtensions(raw)
	}
	if raw, ok := data["notify_users"]; ok {
		cfg.NotifyUsers = normalizeList(raw)
	}
	cfg.LintEnabled = coerceBool(data["lint_enabled"], cfg.LintEnabled)
	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)
	cfg.Timeout = coerceDuration(data["timeout"], cfg.Timeout)
	cfg.WatchDebounce = coerceDuration(data["watch_debounce"], cfg.WatchDebounce)
	if cfg.WatchDebounce < 0 {
		cfg.WatchDebounce = 0
	}
	if v, ok := stringValue(data, "state_dir"); ok {
		if expanded, err := utils.ExpandPath(v); err == nil {
			v = expanded
		}
		cfg.StateDir = v
	}
	if v, ok := stringValue(data, "debug_log"); ok {
		cfg.DebugLog = v
	}
	if v, ok := stringValue(data, "theme"); ok {
		if normalized := theme.Normalize(v); normalized != "" {
			cfg.Theme = normalized
		}
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func getStateDir() string {
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}

// LoadConfig reads the configuration from YAML, then applies LAZYCVS_*
// environment overrides. A missing file yields the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := filepath.Clean(filepath.Join(getConfigDir(), appName))

	var paths []string
	if configPath != "" {
		expanded, err := utils.ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !utils.IsPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	cfg := DefaultConfig()
	for _, path := range paths {
		// #nosec G304 -- path is constrained to the config directory
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg = parseConfig(yamlData)
		break
	}

	cfg.apply(envOverrides(os.Environ()))
	return cfg, nil
}

// ApplyCLIOverrides applies --config key=value pairs, the highest precedence source.
func (cfg *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	cfg.apply(data)
	return nil
}

// IsLintable reports whether path has one of the lint extensions.
func (cfg *AppConfig) IsLintable(path string) bool {
	return hasExtension(cfg.LintExtensions, path)
}

// IsViewable reports whether path can be shown as text. Paths without an
// extension always can.
func (cfg *AppConfig) IsViewable(path string) bool {
	if filepath.Ext(path) == "" {
		return true
	}
	return hasExtension(cfg.ViewExtensions, path)
}

func hasExtension(exts []string, path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
