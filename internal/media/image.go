package media

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/videocanvas/internal/geometry"
)

// ImageProber читает размеры изображения по заголовку файла, не декодируя пиксели.
// Поддерживаются локальные пути, file:// и http(s):// локаторы.
// Для .pdf возвращается размер первой страницы.
type ImageProber struct {
	Client *http.Client
}

func NewImageProber() *ImageProber {
	return &ImageProber{Client: http.DefaultClient}
}

func (p *ImageProber) ImageDimensions(ctx context.Context, loc string) (geometry.Dimensions, error) {
	if isPDF(loc) && !isRemote(loc) {
		return pdfPageDimensions(localPath(loc))
	}

	rc, err := p.open(ctx, loc)
	if err != nil {
		return geometry.Dimensions{}, err
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return geometry.Dimensions{}, fmt.Errorf("заголовок изображения: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return geometry.Dimensions{}, fmt.Errorf("пустое изображение (%s)", format)
	}
	return geometry.Dimensions{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

func (p *ImageProber) open(ctx context.Context, loc string) (io.ReadCloser, error) {
	if !isRemote(loc) {
		return os.Open(localPath(loc))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", loc, resp.Status)
	}
	return resp.Body, nil
}

func pdfPageDimensions(path string) (geometry.Dimensions, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return geometry.Dimensions{}, err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return geometry.Dimensions{}, fmt.Errorf("в документе %s нет страниц", path)
	}
	rect, err := doc.Bound(0)
	if err != nil {
		return geometry.Dimensions{}, err
	}
	return geometry.Dimensions{Width: float64(rect.Dx()), Height: float64(rect.Dy())}, nil
}

func isRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

func isPDF(loc string) bool {
	return strings.HasSuffix(strings.ToLower(loc), ".pdf")
}

func localPath(loc string) string {
	return strings.TrimPrefix(loc, "file://")
}

// Composite направляет пробы изображений в ImageProber, а аудио и видео: в FFProbe
type Composite struct {
	Images *ImageProber
	AV     *FFProbe
}

func NewComposite(ffprobePath string) *Composite {
	return &Composite{
		Images: NewImageProber(),
		AV:     NewFFProbe(ffprobePath),
	}
}

func (c *Composite) AudioDuration(ctx context.Context, loc string) (float64, error) {
	return c.AV.AudioDuration(ctx, loc)
}

func (c *Composite) ImageDimensions(ctx context.Context, loc string) (geometry.Dimensions, error) {
	return c.Images.ImageDimensions(ctx, loc)
}

func (c *Composite) VideoMeta(ctx context.Context, loc string) (VideoMeta, error) {
	return c.AV.VideoMeta(ctx, loc)
}
