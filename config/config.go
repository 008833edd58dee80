// Package config loads cover-letter-tool settings from flags, COVERLETTER_*
// environment variables and .coverletter.yaml via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/wohhie/cover-letter-tool/fonts"
	"github.com/wohhie/cover-letter-tool/layout"
)

// EnvPrefix 是环境变量前缀，例如 COVERLETTER_PAGE_MARGIN。
const EnvPrefix = "COVERLETTER"

// 渲染后端名称。
const (
	BackendCanvas = "canvas"
	BackendCore   = "core"
)

// Config 是解析后的完整配置。
type Config struct {
	Page    PageConfig    `mapstructure:"page"`
	Font    FontConfig    `mapstructure:"font"`
	Render  RenderConfig  `mapstructure:"render"`
	Preview PreviewConfig `mapstructure:"preview"`
	State   StateConfig   `mapstructure:"state"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`

	// Geometry 由 Page 与 Font 中的长度字符串换算得到。
	Geometry layout.Geometry `mapstructure:"-"`
}

type PageConfig struct {
	Width  string `mapstructure:"width"`
	Height string `mapstructure:"height"`
	Margin string `mapstructure:"margin"`
}

type FontConfig struct {
	Size       string `mapstructure:"size"`
	LineHeight string `mapstructure:"line-height"`
	Face       string `mapstructure:"face"`
}

type RenderConfig struct {
	Backend          string `mapstructure:"backend"`
	JustifyThreshold int    `mapstructure:"justify-threshold"`
	DocxFont         string `mapstructure:"docx-font"`
}

type PreviewConfig struct {
	Columns int `mapstructure:"columns"`
	Rows    int `mapstructure:"rows"`
}

type StateConfig struct {
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults 注册所有配置项的默认值。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("page.width", "595.28pt")
	v.SetDefault("page.height", "841.89pt")
	v.SetDefault("page.margin", "72pt")
	v.SetDefault("font.size", "11pt")
	v.SetDefault("font.line-height", "14.5pt")
	v.SetDefault("font.face", fonts.Default)
	v.SetDefault("render.backend", BackendCanvas)
	v.SetDefault("render.justify-threshold", layout.DefaultJustifyThreshold)
	v.SetDefault("render.docx-font", "Calibri")
	v.SetDefault("preview.columns", 0)
	v.SetDefault("preview.rows", 0)
	v.SetDefault("state.path", DefaultStatePath())
	v.SetDefault("output.dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New 创建带默认值与环境变量绑定的 viper 实例。
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile 读取配置文件：path 为空时在当前目录和用户配置目录查找 .coverletter.yaml。
// 找不到默认配置文件不算错误。
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(".coverletter")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "cover-letter-tool"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	return nil
}

// Load 从 v 解析配置并校验。
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	geo, err := cfg.geometry()
	if err != nil {
		return nil, err
	}
	cfg.Geometry = geo

	switch cfg.Render.Backend {
	case BackendCanvas, BackendCore:
	default:
		return nil, fmt.Errorf("render.backend 只能是 %s 或 %s，实际为 %q", BackendCanvas, BackendCore, cfg.Render.Backend)
	}
	if cfg.Render.JustifyThreshold <= 0 {
		return nil, fmt.Errorf("render.justify-threshold 必须为正数")
	}
	if cfg.Preview.Columns < 0 || cfg.Preview.Rows < 0 {
		return nil, fmt.Errorf("preview.columns / preview.rows 不能为负数")
	}
	return &cfg, nil
}

func (c *Config) geometry() (layout.Geometry, error) {
	width, err := lengthPt("page.width", c.Page.Width)
	if err != nil {
		return layout.Geometry{}, err
	}
	height, err := lengthPt("page.height", c.Page.Height)
	if err != nil {
		return layout.Geometry{}, err
	}
	margin, err := lengthPt("page.margin", c.Page.Margin)
	if err != nil {
		return layout.Geometry{}, err
	}
	size, err := lengthPt("font.size", c.Font.Size)
	if err != nil {
		return layout.Geometry{}, err
	}
	lh, err := layout.ParseLineHeight(c.Font.LineHeight)
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("font.line-height: %w", err)
	}

	geo := layout.Geometry{
		Width:      width,
		Height:     height,
		Margin:     layout.Uniform(margin),
		FontSize:   size,
		LineHeight: lh.Resolve(size),
	}
	if geo.ContentWidth() <= 0 || geo.ContentHeight() <= 0 {
		return layout.Geometry{}, fmt.Errorf("页边距 %gpt 超出页面 %gx%gpt", margin, width, height)
	}
	if geo.FontSize <= 0 || geo.LineHeight <= 0 {
		return layout.Geometry{}, fmt.Errorf("字号与行高必须为正数")
	}
	return geo, nil
}

func lengthPt(key, value string) (float64, error) {
	l, err := layout.ParseRawLengthStr(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return l.ToPT(), nil
}

// DefaultStatePath 返回用户配置目录下的状态数据库路径。
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".cover-letter-tool", "state.db")
	}
	return filepath.Join(dir, "cover-letter-tool", "state.db")
}
