package geometry

import (
	"errors"
	"fmt"
)

var ErrZeroDimension = errors.New("dimension must be positive")

// Dimensions: размер в пикселях (видео или поверхности)
type Dimensions struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (d Dimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%gx%g: %w", d.Width, d.Height, ErrZeroDimension)
	}
	return nil
}

// CanvasMetadata описывает поверхность редактора относительно видео.
// ScaleX/ScaleY = размер поверхности / размер видео по соответствующей оси.
type CanvasMetadata struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`
	ScaleX      float64 `json:"scaleX"`
	ScaleY      float64 `json:"scaleY"`
}

// InitialMetadata: состояние до первой сборки поверхности
func InitialMetadata() CanvasMetadata {
	return CanvasMetadata{ScaleX: 1, ScaleY: 1}
}

func NewCanvasMetadata(canvas, video Dimensions) CanvasMetadata {
	meta := CanvasMetadata{
		Width:  canvas.Width,
		Height: canvas.Height,
	}
	if canvas.Height != 0 {
		meta.AspectRatio = canvas.Width / canvas.Height
	}
	return RecomputeScale(meta, video)
}

// RecomputeScale пересчитывает коэффициенты масштаба под новый размер видео.
// Нулевой размер видео: ошибка конфигурации, проверяется вызывающей стороной.
func RecomputeScale(meta CanvasMetadata, video Dimensions) CanvasMetadata {
	meta.ScaleX = meta.Width / video.Width
	meta.ScaleY = meta.Height / video.Height
	return meta
}

// ToVideoSpace переводит координаты поверхности в пиксели видео.
func ToVideoSpace(x, y float64, meta CanvasMetadata, video Dimensions) (float64, float64) {
	return x / (meta.Width / video.Width), y / (meta.Height / video.Height)
}

// ToSurfaceSpace: обратное преобразование, используется при построении объектов.
func ToSurfaceSpace(x, y float64, meta CanvasMetadata) (float64, float64) {
	return x * meta.ScaleX, y * meta.ScaleY
}
