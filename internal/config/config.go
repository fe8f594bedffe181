package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/videocanvas/internal/geometry"
)

const (
	DefaultBackgroundColor      = "#000000"
	DefaultSelectionBorderColor = "#2563eb"
	DefaultSelectionLineWidth   = 2
	DefaultTouchZoomThreshold   = 10
	DefaultConcurrency          = 5
)

// CanvasProps: параметры сборки поверхности редактора
type CanvasProps struct {
	// Target: идентификатор области, к которой привязывается поверхность
	Target               string              `yaml:"target"`
	VideoSize            geometry.Dimensions `yaml:"videoSize"`
	CanvasSize           geometry.Dimensions `yaml:"canvasSize"`
	BackgroundColor      string              `yaml:"backgroundColor"`
	SelectionBorderColor string              `yaml:"selectionBorderColor"`
	SelectionLineWidth   float64             `yaml:"selectionLineWidth"`
	UniScaleTransform    *bool               `yaml:"uniScaleTransform"`
	EnableRetinaScaling  *bool               `yaml:"enableRetinaScaling"`
	TouchZoomThreshold   float64             `yaml:"touchZoomThreshold"`
}

// WithDefaults заполняет незаданные поля значениями по умолчанию
func (p CanvasProps) WithDefaults() CanvasProps {
	if p.BackgroundColor == "" {
		p.BackgroundColor = DefaultBackgroundColor
	}
	if p.SelectionBorderColor == "" {
		p.SelectionBorderColor = DefaultSelectionBorderColor
	}
	if p.SelectionLineWidth == 0 {
		p.SelectionLineWidth = DefaultSelectionLineWidth
	}
	if p.UniScaleTransform == nil {
		p.UniScaleTransform = boolPtr(true)
	}
	if p.EnableRetinaScaling == nil {
		p.EnableRetinaScaling = boolPtr(true)
	}
	if p.TouchZoomThreshold == 0 {
		p.TouchZoomThreshold = DefaultTouchZoomThreshold
	}
	return p
}

// Config: конфигурация сессии, читается из YAML
type Config struct {
	Canvas CanvasProps `yaml:"canvas"`
	// Concurrency: сколько проб метаданных одновременно в работе
	Concurrency int `yaml:"concurrency"`
	// FFprobePath: бинарник ffprobe для проб видео/аудио
	FFprobePath string  `yaml:"ffprobePath"`
	SeekTime    float64 `yaml:"seekTime"`
	ShowStats   bool    `yaml:"showStats"`
	LogLevel    string  `yaml:"logLevel"`
}

func Default() *Config {
	return &Config{
		Canvas:      CanvasProps{Target: "canvas"}.WithDefaults(),
		Concurrency: DefaultConcurrency,
		FFprobePath: "ffprobe",
		LogLevel:    "info",
	}
}

// Load читает YAML поверх значений по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	cfg.Canvas = cfg.Canvas.WithDefaults()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return cfg, nil
}

func boolPtr(b bool) *bool { return &b }
