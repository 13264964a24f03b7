package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/protocol"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "tldrscope.yaml"

// EnvPrefix prefixes environment overrides, e.g. TLDRSCOPE_TOPN.
const EnvPrefix = "TLDRSCOPE"

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Dialect         domain.Dialect
	DocFlag         string
	TopN            int
	OutputDir       string
	Formats         []string
	ArchivePath     string
	MetricsTextfile string
	MetricsAddr     string
	LogLevel        string
	WatchDebounce   time.Duration
}

// FlagKeys maps CLI flag names onto config keys.
var FlagKeys = map[string]string{
	"dialect":      "dialect",
	"doc-flag":     "docFlag",
	"top":          "topN",
	"output":       "outputDir",
	"format":       "formats",
	"archive":      "archive.path",
	"metrics-file": "metrics.textfile",
	"metrics-addr": "metrics.addr",
	"log-level":    "log.level",
	"debounce":     "watch.debounceMs",
}

var knownFormats = map[string]struct{}{
	"json":     {},
	"yaml":     {},
	"toml":     {},
	"markdown": {},
	"html":     {},
}

type rawSettings struct {
	Dialect   string     `mapstructure:"dialect"`
	DocFlag   string     `mapstructure:"docFlag"`
	TopN      int        `mapstructure:"topN"`
	OutputDir string     `mapstructure:"outputDir"`
	Formats   []string   `mapstructure:"formats"`
	Archive   rawArchive `mapstructure:"archive"`
	Metrics   rawMetrics `mapstructure:"metrics"`
	Log       rawLog     `mapstructure:"log"`
	Watch     rawWatch   `mapstructure:"watch"`
}

type rawArchive struct {
	Path string `mapstructure:"path"`
}

type rawMetrics struct {
	Textfile string `mapstructure:"textfile"`
	Addr     string `mapstructure:"addr"`
}

type rawLog struct {
	Level string `mapstructure:"level"`
}

type rawWatch struct {
	DebounceMs int `mapstructure:"debounceMs"`
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dialect", string(domain.DialectAuto))
	v.SetDefault("docFlag", domain.DefaultDocFlag)
	v.SetDefault("topN", domain.DefaultTopN)
	v.SetDefault("outputDir", domain.DefaultOutputDir)
	v.SetDefault("formats", domain.DefaultFormats)
	v.SetDefault("archive.path", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", domain.DefaultLogLevel)
	v.SetDefault("watch.debounceMs", domain.DefaultWatchDebounceMs)
}

// Load resolves settings from defaults, the YAML file at path, TLDRSCOPE_*
// environment variables and changed flags, in increasing precedence. An
// empty path falls back to DefaultFile when present.
func (l *Loader) Load(ctx context.Context, path string, flags *pflag.FlagSet) (Settings, error) {
	v := newViper()

	data, source, err := readConfigFile(path)
	if err != nil {
		return Settings{}, err
	}
	if data != nil {
		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return Settings{}, err
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", source), zap.Strings("missing", missing))
		}
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return Settings{}, domain.E(domain.CodeInvalidArgument, "config.load", "parse config", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Settings{}, domain.E(domain.CodeInternal, "config.load", fmt.Sprintf("bind flag %q", name), err)
				}
			}
		}
	}

	var raw rawSettings
	if err := v.Unmarshal(&raw); err != nil {
		return Settings{}, domain.E(domain.CodeInvalidArgument, "config.load", "decode config", err)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Settings{}, err
		}
	}
	return normalize(raw)
}

func readConfigFile(path string) ([]byte, string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err == nil {
		return data, path, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	return nil, "", domain.E(domain.CodeInvalidArgument, "config.load", fmt.Sprintf("read config %s", path), err)
}

func normalize(raw rawSettings) (Settings, error) {
	var errs []string

	dialect, err := protocol.ParseDialect(raw.Dialect)
	if err != nil {
		errs = append(errs, fmt.Sprintf("dialect: unknown value %q", raw.Dialect))
	}
	if raw.TopN < 1 {
		errs = append(errs, "topN must be >= 1")
	}
	if raw.Watch.DebounceMs < 0 {
		errs = append(errs, "watch.debounceMs must be >= 0")
	}
	formats := make([]string, 0, len(raw.Formats))
	for _, format := range splitFormats(raw.Formats) {
		if _, ok := knownFormats[format]; !ok {
			errs = append(errs, fmt.Sprintf("formats: unknown format %q", format))
			continue
		}
		formats = append(formats, format)
	}
	if _, err := zapLevel(raw.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: unknown level %q", raw.Log.Level))
	}
	if len(errs) > 0 {
		return Settings{}, domain.E(domain.CodeInvalidArgument, "config.load", strings.Join(errs, "; "), nil)
	}

	docFlag := strings.TrimSpace(raw.DocFlag)
	if docFlag == "" {
		docFlag = domain.DefaultDocFlag
	}
	if len(formats) == 0 {
		formats = append(formats, domain.DefaultFormats...)
	}
	outputDir := strings.TrimSpace(raw.OutputDir)
	if outputDir == "" {
		outputDir = domain.DefaultOutputDir
	}
	return Settings{
		Dialect:         dialect,
		DocFlag:         docFlag,
		TopN:            raw.TopN,
		OutputDir:       outputDir,
		Formats:         formats,
		ArchivePath:     strings.TrimSpace(raw.Archive.Path),
		MetricsTextfile: strings.TrimSpace(raw.Metrics.Textfile),
		MetricsAddr:     strings.TrimSpace(raw.Metrics.Addr),
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.Log.Level)),
		WatchDebounce:   time.Duration(raw.Watch.DebounceMs) * time.Millisecond,
	}, nil
}

// splitFormats accepts both list values and comma-joined strings, which is
// how environment variables arrive.
func splitFormats(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, part := range protocol.SplitList(value, ",") {
			part = strings.ToLower(part)
			if part == "md" {
				part = "markdown"
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

func zapLevel(raw string) (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(raw)))
}
