// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config 讀取程序層級的設定：先套預設值，再疊上 YAML 檔，最後以 RANDWHEEL_* 環境變數覆寫。
//
// 巢狀欄位的環境變數以雙底線分隔，例如 RANDWHEEL_SERVER__BASE_URL 對應 server.base_url。
package config

import (
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/server/logger"
	"github.com/zintix-labs/randwheel/server/netsvr/middleware"
	"github.com/zintix-labs/randwheel/spec"
	"github.com/zintix-labs/randwheel/stats"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	EnvPrefix   = "RANDWHEEL_"
	DefaultPath = "randwheel.yaml"
)

// Config 是 randwheel 指令的完整設定，對應 randwheel.yaml。
type Config struct {
	Log    LogConfig    `yaml:"log"    koanf:"log"`
	Server ServerConfig `yaml:"server" koanf:"server"`
	Wheel  WheelConfig  `yaml:"wheel"  koanf:"wheel"`
	Sim    SimConfig    `yaml:"sim"    koanf:"sim"`
}

type LogConfig struct {
	Mode   string `yaml:"mode"   koanf:"mode"`   // dev | prod | silence
	Buffer int    `yaml:"buffer" koanf:"buffer"` // AsyncHandler 緩衝，0 代表同步輸出
	File   string `yaml:"file"   koanf:"file"`   // 非空時寫入檔案（終端介面使用）
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             koanf:"addr"`
	BaseURL         string        `yaml:"base_url"         koanf:"base_url"`
	SessionTTL      time.Duration `yaml:"session_ttl"      koanf:"session_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"   koanf:"sweep_interval"`
	MaxSessions     int           `yaml:"max_sessions"     koanf:"max_sessions"`
	EventBuffer     int           `yaml:"event_buffer"     koanf:"event_buffer"`
	CORSOrigins     []string      `yaml:"cors_origins"     koanf:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     koanf:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    koanf:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     koanf:"idle_timeout"`
	Compression     Compression   `yaml:"compression"      koanf:"compression"`
}

// Compression 對應 middleware.CompressConfig；zstd_level 為 fastest | default | better | best。
type Compression struct {
	GzipLevel int      `yaml:"gzip_level" koanf:"gzip_level"`
	ZstdLevel string   `yaml:"zstd_level" koanf:"zstd_level"`
	MinSize   int      `yaml:"min_size"   koanf:"min_size"`
	SkipPaths []string `yaml:"skip_paths" koanf:"skip_paths"`
}

type WheelConfig struct {
	Setting string `yaml:"setting" koanf:"setting"` // 轉盤設定檔路徑，空字串用內嵌預設
	Seed    int64  `yaml:"seed"    koanf:"seed"`    // -1 代表每次啟動隨機
	Locale  string `yaml:"locale"  koanf:"locale"`  // 終端介面的語系
}

type SimConfig struct {
	Rounds  int    `yaml:"rounds"  koanf:"rounds"`
	Workers int    `yaml:"workers" koanf:"workers"`
	Format  string `yaml:"format"  koanf:"format"` // table | json | yaml
}

// DefaultConfig 回傳預設設定。
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Mode: "dev", Buffer: 1024},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      30 * time.Minute,
			SweepInterval:   time.Minute,
			MaxSessions:     10000,
			EventBuffer:     16,
			ShutdownTimeout: 5 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			Compression: Compression{
				GzipLevel: gzip.DefaultCompression,
				ZstdLevel: zstd.SpeedFastest.String(),
				MinSize:   middleware.DefaultMinSize,
				SkipPaths: []string{"/healthz", "/api/vitals"},
			},
		},
		Wheel: WheelConfig{Seed: -1, Locale: "en"},
		Sim:   SimConfig{Rounds: 100000, Workers: 1, Format: "table"},
	}
}

// Load 讀取 path（不存在時略過），再疊上環境變數。
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errs.Wrap(err, "reading config "+path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errs.Wrap(err, "accessing config "+path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errs.Wrap(err, "loading env overrides")
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errs.Wrap(err, "unmarshalling config")
	}
	return cfg, nil
}

// envKey 把 RANDWHEEL_SERVER__BASE_URL 轉成 server.base_url。
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save 把設定寫成 YAML。
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errs.Wrap(err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(err, "writing config to "+path)
	}
	return nil
}

// Validate 檢查設定是否可用，錯誤為 errs.Warn。
func (c *Config) Validate() error {
	if _, err := logger.ParseMode(c.Log.Mode); err != nil {
		return err
	}
	if c.Log.Buffer < 0 {
		return errs.NewWarn("log.buffer must be non-negative")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errs.NewWarn("server timeouts must be non-negative")
	}
	if _, err := c.Server.Compression.Config(); err != nil {
		return err
	}
	if c.Server.MaxSessions < 0 || c.Server.EventBuffer < 0 {
		return errs.NewWarn("server.max_sessions and server.event_buffer must be non-negative")
	}
	if c.Sim.Rounds < 1 {
		return errs.NewWarn("sim.rounds must be at least 1")
	}
	if c.Sim.Workers < 1 {
		return errs.NewWarn("sim.workers must be at least 1")
	}
	switch strings.ToLower(c.Sim.Format) {
	case "table", "json", "yaml", "yml":
	default:
		return errs.Warnf("sim.format must be one of table, json, yaml: %q", c.Sim.Format)
	}
	return nil
}

// Config 轉成 middleware.CompressConfig，等級不合法時回傳 errs.Warn。
func (c Compression) Config() (middleware.CompressConfig, error) {
	if c.GzipLevel < gzip.StatelessCompression || c.GzipLevel > gzip.BestCompression {
		return middleware.CompressConfig{}, errs.Warnf("server.compression.gzip_level out of range: %d", c.GzipLevel)
	}
	cc := middleware.CompressConfig{GzipLevel: c.GzipLevel, MinSize: c.MinSize, SkipPaths: c.SkipPaths}
	if c.ZstdLevel != "" {
		ok, lv := zstd.EncoderLevelFromString(c.ZstdLevel)
		if !ok {
			return middleware.CompressConfig{}, errs.Warnf("server.compression.zstd_level must be fastest, default, better or best: %q", c.ZstdLevel)
		}
		cc.ZstdLevel = lv
	}
	return cc, nil
}

// WheelSetting 讀取 wheel.setting 指向的轉盤設定檔，未設定時回傳內嵌預設。
func (c *Config) WheelSetting() (*spec.WheelSetting, error) {
	if c.Wheel.Setting == "" {
		return spec.Default(), nil
	}
	data, err := os.ReadFile(c.Wheel.Setting)
	if err != nil {
		return nil, errs.Wrap(err, "reading wheel setting "+c.Wheel.Setting)
	}
	if strings.HasSuffix(strings.ToLower(c.Wheel.Setting), ".json") {
		return spec.GetWheelSettingByJSON(data)
	}
	return spec.GetWheelSettingByYAML(data)
}

// Render 回傳 sim.format 對應的報表輸出器。
func (c *Config) Render() stats.SpinReportRender {
	return stats.RenderFor(strings.ToLower(c.Sim.Format))
}
