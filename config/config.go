package config

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"

    "github.com/spf13/viper"
)

// FileName is the settings file looked up in the data directory.
const FileName = "themeplane.config"

// EnvPrefix prefixes environment overrides, e.g. THEMEPLANE_LISTEN_ADDR.
const EnvPrefix = "THEMEPLANE"

type Config struct {
    DataDir       string `json:"data_dir" mapstructure:"data_dir"`
    ListenAddr    string `json:"listen_addr" mapstructure:"listen_addr"`
    LogLevel      string `json:"log_level" mapstructure:"log_level"`
    LogJSON       bool   `json:"log_json" mapstructure:"log_json"`
    BasePalette   string `json:"base_palette,omitempty" mapstructure:"base_palette"` // config file whose palette replaces the built-in base
    ReadOnly      bool   `json:"read_only" mapstructure:"read_only"`
    KeepRevisions string `json:"keep_revisions" mapstructure:"keep_revisions"` // revision retention, "off" keeps everything
    PruneEvery    string `json:"prune_every" mapstructure:"prune_every"`
}

func Default() Config {
    return Config{
        DataDir:       ".",
        ListenAddr:    ":8080",
        LogLevel:      "info",
        LogJSON:       false,
        ReadOnly:      false,
        KeepRevisions: "2160h",
        PruneEvery:    "1h",
    }
}

// Load reads settings from the data directory. A missing file yields the
// defaults; THEMEPLANE_* environment variables override both.
func Load(dataDir string) (Config, error) {
    def := Default()

    v := viper.New()
    v.SetConfigFile(filepath.Join(dataDir, FileName))
    v.SetConfigType("json")
    v.SetEnvPrefix(EnvPrefix)
    v.AutomaticEnv()

    v.SetDefault("data_dir", def.DataDir)
    v.SetDefault("listen_addr", def.ListenAddr)
    v.SetDefault("log_level", def.LogLevel)
    v.SetDefault("log_json", def.LogJSON)
    v.SetDefault("base_palette", def.BasePalette)
    v.SetDefault("read_only", def.ReadOnly)
    v.SetDefault("keep_revisions", def.KeepRevisions)
    v.SetDefault("prune_every", def.PruneEvery)

    if err := v.ReadInConfig(); err != nil {
        var notFound viper.ConfigFileNotFoundError
        if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
            return Config{}, err
        }
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return Config{}, err
    }

    if cfg.DataDir == "" {
        cfg.DataDir = def.DataDir
    }
    if cfg.ListenAddr == "" {
        cfg.ListenAddr = def.ListenAddr
    }
    if cfg.LogLevel == "" {
        cfg.LogLevel = def.LogLevel
    }

    return cfg, nil
}

func Save(cfg Config) error {
    cfgPath := filepath.Join(cfg.DataDir, FileName)

    // Create directory if it doesn't exist
    if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
        return err
    }

    tmp := cfgPath + ".tmp"
    f, err := os.Create(tmp)
    if err != nil {
        return err
    }
    defer f.Close()

    enc := json.NewEncoder(f)
    enc.SetIndent("", "  ")
    if err := enc.Encode(cfg); err != nil {
        os.Remove(tmp)
        return err
    }

    if err := f.Close(); err != nil {
        os.Remove(tmp)
        return err
    }

    return os.Rename(tmp, cfgPath)
}
