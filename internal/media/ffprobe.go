package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ivlev/videocanvas/internal/geometry"
)

// Runner запускает внешнюю команду и возвращает её объединённый вывод
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w, output: %s", name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// FFProbe читает длительность и размеры аудио/видео через системный ffprobe
type FFProbe struct {
	Path string
	Run  Runner
}

func NewFFProbe(path string) *FFProbe {
	if path == "" {
		path = "ffprobe"
	}
	return &FFProbe{Path: path, Run: execRunner}
}

func (p *FFProbe) AudioDuration(ctx context.Context, loc string) (float64, error) {
	out, err := p.Run(ctx, p.Path, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", loc)
	if err != nil {
		return 0, err
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("разбор длительности %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *FFProbe) VideoMeta(ctx context.Context, loc string) (VideoMeta, error) {
	out, err := p.Run(ctx, p.Path,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "json",
		loc,
	)
	if err != nil {
		return VideoMeta{}, err
	}
	return parseVideoMeta(out)
}

// ImageDimensions: ffprobe умеет читать и одиночные кадры
func (p *FFProbe) ImageDimensions(ctx context.Context, loc string) (geometry.Dimensions, error) {
	m, err := p.VideoMeta(ctx, loc)
	if err != nil {
		return geometry.Dimensions{}, err
	}
	return geometry.Dimensions{Width: m.Width, Height: m.Height}, nil
}

func parseVideoMeta(out []byte) (VideoMeta, error) {
	var po probeOutput
	if err := json.Unmarshal(out, &po); err != nil {
		return VideoMeta{}, fmt.Errorf("разбор вывода ffprobe: %w", err)
	}
	if len(po.Streams) == 0 || po.Streams[0].Width == 0 || po.Streams[0].Height == 0 {
		return VideoMeta{}, errors.New("видеопоток не найден")
	}

	meta := VideoMeta{
		Width:  float64(po.Streams[0].Width),
		Height: float64(po.Streams[0].Height),
	}
	if po.Format.Duration != "" && po.Format.Duration != "N/A" {
		d, err := strconv.ParseFloat(po.Format.Duration, 64)
		if err != nil {
			return VideoMeta{}, fmt.Errorf("разбор длительности %q: %w", po.Format.Duration, err)
		}
		meta.Duration = d
	}
	return meta, nil
}
