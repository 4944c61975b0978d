// Package config 加载 tunesort 的分层配置
//
// 优先级从低到高: 代码默认值 → YAML 文件 → 命令行覆盖。
//
//	cfg, err := config.Load("tunesort.yaml", map[string]any{"log.level": "debug"})
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// Config 完整配置
type Config struct {
	System  System  `koanf:"system" yaml:"system"`
	Log     Log     `koanf:"log" yaml:"log"`
	Library Library `koanf:"library" yaml:"library"`
	Watch   Watch   `koanf:"watch" yaml:"watch"`
	Metrics Metrics `koanf:"metrics" yaml:"metrics"`
}

// System Actor 系统配置
type System struct {
	Name string `koanf:"name" yaml:"name"`
	// PoisonPolicy drop 或 drain
	PoisonPolicy string `koanf:"poison_policy" yaml:"poison_policy"`
}

// Log 日志配置
type Log struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // text 或 json
}

// Library 整理规则
type Library struct {
	// Root 整理后的目标目录，为空时留在源目录
	Root string `koanf:"root" yaml:"root"`
	// Pattern 文件名模式，依次接收音轨号和标题
	Pattern    string   `koanf:"pattern" yaml:"pattern"`
	Extensions []string `koanf:"extensions" yaml:"extensions"`
	// Copy 为 true 时复制而不是移动
	Copy bool `koanf:"copy" yaml:"copy"`
}

// Watch 目录监听配置
type Watch struct {
	Debounce Duration `koanf:"debounce" yaml:"debounce"`
}

// Metrics Prometheus 指标配置
type Metrics struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
}

// Duration 以 "500ms" 形式读写的时长
type Duration time.Duration

// UnmarshalText 实现 encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML 实现 yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std 转换为 time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default 返回默认配置
func Default() *Config {
	return &Config{
		System: System{
			Name:         "tunesort",
			PoisonPolicy: actor.PoisonDrop.String(),
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Library: Library{
			Pattern:    "%02d - %s",
			Extensions: []string{".mp3"},
		},
		Watch: Watch{
			Debounce: Duration(500 * time.Millisecond),
		},
		Metrics: Metrics{
			Addr: ":9090",
		},
	}
}

// Load 依次加载默认值、YAML 文件和覆盖项
// path 为空时跳过文件；overrides 的键使用点号路径，如 "log.level"
func Load(path string, overrides map[string]any) (*Config, error) {
	k, err := defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	return finish(k, overrides)
}

// LoadBytes 与 Load 相同，但从内存中的 YAML 读取
func LoadBytes(data []byte, overrides map[string]any) (*Config, error) {
	k, err := defaults()
	if err != nil {
		return nil, err
	}

	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(k, overrides)
}

func defaults() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	return k, nil
}

func finish(k *koanf.Koanf, overrides map[string]any) (*Config, error) {
	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	var cfg Config
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	var errs []error

	if _, ok := actor.ParsePoisonPolicy(c.System.PoisonPolicy); !ok {
		errs = append(errs, fmt.Errorf("system.poison_policy: unknown policy %q", c.System.PoisonPolicy))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Library.Pattern != "" && strings.Count(c.Library.Pattern, "%") < 2 {
		errs = append(errs, fmt.Errorf("library.pattern: %q needs a track and a title verb", c.Library.Pattern))
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, errors.New("watch.debounce: must be positive"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr: required when metrics are enabled"))
	}

	return errors.Join(errs...)
}

// PoisonPolicy 返回 Actor 系统的终止策略
func (c *Config) PoisonPolicy() actor.PoisonPolicy {
	p, _ := actor.ParsePoisonPolicy(c.System.PoisonPolicy)
	return p
}

// SlogLevel 解析日志级别
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if strings.EqualFold(c.Log.Level, "warning") {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// Dump 以 YAML 输出配置
func (c *Config) Dump() (string, error) {
	out, err := yamlv3.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
