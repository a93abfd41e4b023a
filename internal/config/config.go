package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DefaultFile is the name of the optional settings file.
const DefaultFile = "config.toml"

type Config struct {
	SkinsDir            string
	InstalledDir        string
	ProfilesDir         string
	ChampionCatalogPath string
	SkinCatalogPath     string
	VersionPath         string
	ImageDir            string

	ModToolsPath string
	GamePath     string
	ToolTimeout  time.Duration

	ListenAddr   string
	PollInterval time.Duration
	StopTimeout  time.Duration

	SyncOnStart bool
	SyncWorkers int

	LCUPort  string
	LCUToken string

	DiscordToken     string
	DiscordChannelID string

	LogLevel string
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		SkinsDir:            "skins",
		InstalledDir:        "installed",
		ProfilesDir:         "profiles",
		ChampionCatalogPath: "champion.json",
		SkinCatalogPath:     "skins.json",
		VersionPath:         "version",
		ImageDir:            "id_skins",
		ModToolsPath:        "mod-tools.exe",
		ToolTimeout:         2 * time.Minute,
		ListenAddr:          "127.0.0.1:5000",
		PollInterval:        300 * time.Millisecond,
		StopTimeout:         2 * time.Second,
		SyncOnStart:         true,
		SyncWorkers:         32,
		LogLevel:            "info",
	}
}

// Load builds the configuration from defaults, then the settings file (if any), then
// .env and the process environment. An empty path searches for config.toml in the
// working directory and next to the executable.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := findFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		if err := config.loadFile(file); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	if err := config.loadEnv(); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func findFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}

	candidates := []string{DefaultFile}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), DefaultFile))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

// duration lets the settings file spell durations as "300ms" or "2m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type fileConfig struct {
	Paths struct {
		Skins           *string `toml:"skins"`
		Installed       *string `toml:"installed"`
		Profiles        *string `toml:"profiles"`
		ChampionCatalog *string `toml:"champion_catalog"`
		SkinCatalog     *string `toml:"skin_catalog"`
		Version         *string `toml:"version"`
		Images          *string `toml:"images"`
	} `toml:"paths"`
	Tools struct {
		ModTools *string   `toml:"mod_tools"`
		Game     *string   `toml:"game"`
		Timeout  *duration `toml:"timeout"`
	} `toml:"tools"`
	Server struct {
		Listen       *string   `toml:"listen"`
		PollInterval *duration `toml:"poll_interval"`
		StopTimeout  *duration `toml:"stop_timeout"`
	} `toml:"server"`
	Sync struct {
		OnStart *bool `toml:"on_start"`
		Workers *int  `toml:"workers"`
	} `toml:"sync"`
	Discord struct {
		Token     *string `toml:"token"`
		ChannelID *string `toml:"channel_id"`
	} `toml:"discord"`
	LogLevel *string `toml:"log_level"`
}

func (c *Config) loadFile(path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("error decoding %s: %w", path, err)
	}

	setString(&c.SkinsDir, f.Paths.Skins)
	setString(&c.InstalledDir, f.Paths.Installed)
	setString(&c.ProfilesDir, f.Paths.Profiles)
	setString(&c.ChampionCatalogPath, f.Paths.ChampionCatalog)
	setString(&c.SkinCatalogPath, f.Paths.SkinCatalog)
	setString(&c.VersionPath, f.Paths.Version)
	setString(&c.ImageDir, f.Paths.Images)
	setString(&c.ModToolsPath, f.Tools.ModTools)
	setString(&c.GamePath, f.Tools.Game)
	setDuration(&c.ToolTimeout, f.Tools.Timeout)
	setString(&c.ListenAddr, f.Server.Listen)
	setDuration(&c.PollInterval, f.Server.PollInterval)
	setDuration(&c.StopTimeout, f.Server.StopTimeout)
	if f.Sync.OnStart != nil {
		c.SyncOnStart = *f.Sync.OnStart
	}
	if f.Sync.Workers != nil {
		c.SyncWorkers = *f.Sync.Workers
	}
	setString(&c.DiscordToken, f.Discord.Token)
	setString(&c.DiscordChannelID, f.Discord.ChannelID)
	setString(&c.LogLevel, f.LogLevel)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *duration) {
	if v != nil {
		*dst = v.Duration
	}
}

func (c *Config) loadEnv() error {
	stringVars := map[string]*string{
		"SKINS_DIR":          &c.SkinsDir,
		"INSTALLED_DIR":      &c.InstalledDir,
		"PROFILES_DIR":       &c.ProfilesDir,
		"CHAMPION_CATALOG":   &c.ChampionCatalogPath,
		"SKIN_CATALOG":       &c.SkinCatalogPath,
		"VERSION_FILE":       &c.VersionPath,
		"IMAGE_DIR":          &c.ImageDir,
		"MOD_TOOLS_PATH":     &c.ModToolsPath,
		"GAME_PATH":          &c.GamePath,
		"LISTEN_ADDR":        &c.ListenAddr,
		"LCU_PORT":           &c.LCUPort,
		"LCU_TOKEN":          &c.LCUToken,
		"DISCORD_TOKEN":      &c.DiscordToken,
		"DISCORD_CHANNEL_ID": &c.DiscordChannelID,
		"LOG_LEVEL":          &c.LogLevel,
	}
	for envVar, dst := range stringVars {
		if v, ok := os.LookupEnv(envVar); ok && v != "" {
			*dst = v
		}
	}

	durationVars := map[string]*time.Duration{
		"TOOL_TIMEOUT":  &c.ToolTimeout,
		"POLL_INTERVAL": &c.PollInterval,
		"STOP_TIMEOUT":  &c.StopTimeout,
	}
	for envVar, dst := range durationVars {
		if v := os.Getenv(envVar); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", envVar, v, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("SYNC_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SYNC_ON_START %q: %w", v, err)
		}
		c.SyncOnStart = b
	}
	if v := os.Getenv("SYNC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SYNC_WORKERS %q: %w", v, err)
		}
		c.SyncWorkers = n
	}

	return nil
}

// RegisterFlags declares the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("skins-dir", "", "Directory holding one sub-directory of skins per champion")
	fs.String("mod-tools", "", "Path to the mod-tools executable")
	fs.String("game", "", "Game directory (auto-detected when empty)")
	fs.String("listen", "", "Address of the local web page")
	fs.Duration("poll-interval", 0, "Champion select polling interval")
	fs.Bool("sync-on-start", true, "Check Data Dragon for new skins at startup")
	fs.IntP("workers", "w", 0, "Parallel workers for catalog sync")
}

// ApplyFlags copies every flag the user actually set over the loaded values,
// then validates again.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if fs.Changed("skins-dir") {
		c.SkinsDir, _ = fs.GetString("skins-dir")
	}
	if fs.Changed("mod-tools") {
		c.ModToolsPath, _ = fs.GetString("mod-tools")
	}
	if fs.Changed("game") {
		c.GamePath, _ = fs.GetString("game")
	}
	if fs.Changed("listen") {
		c.ListenAddr, _ = fs.GetString("listen")
	}
	if fs.Changed("poll-interval") {
		c.PollInterval, _ = fs.GetDuration("poll-interval")
	}
	if fs.Changed("sync-on-start") {
		c.SyncOnStart, _ = fs.GetBool("sync-on-start")
	}
	if fs.Changed("workers") {
		c.SyncWorkers, _ = fs.GetInt("workers")
	}
	return c.validate()
}

func (c *Config) validate() error {
	requiredVars := map[string]*string{
		"SKINS_DIR":      &c.SkinsDir,
		"INSTALLED_DIR":  &c.InstalledDir,
		"PROFILES_DIR":   &c.ProfilesDir,
		"MOD_TOOLS_PATH": &c.ModToolsPath,
		"LISTEN_ADDR":    &c.ListenAddr,
	}

	var missingVars []string

	for envVar, value := range requiredVars {
		if *value == "" {
			missingVars = append(missingVars, envVar)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required settings: %v", missingVars)
	}

	var invalid []string
	if c.PollInterval <= 0 {
		invalid = append(invalid, "POLL_INTERVAL must be positive")
	}
	if c.StopTimeout <= 0 {
		invalid = append(invalid, "STOP_TIMEOUT must be positive")
	}
	if c.ToolTimeout <= 0 {
		invalid = append(invalid, "TOOL_TIMEOUT must be positive")
	}
	if c.SyncWorkers <= 0 {
		invalid = append(invalid, "SYNC_WORKERS must be positive")
	}
	if c.DiscordToken != "" && c.DiscordChannelID == "" {
		invalid = append(invalid, "DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, fmt.Sprintf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid settings: %v", invalid)
	}

	return nil
}

// DiscordEnabled reports whether champion announcements should go to Discord.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}
