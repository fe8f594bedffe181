package media

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/limit"
)

// VideoMeta: размеры и длительность видеоресурса
type VideoMeta struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Duration float64 `json:"duration"`
}

// Prober читает метаданные медиаресурсов по локатору (путь или URL)
type Prober interface {
	AudioDuration(ctx context.Context, loc string) (float64, error)
	ImageDimensions(ctx context.Context, loc string) (geometry.Dimensions, error)
	VideoMeta(ctx context.Context, loc string) (VideoMeta, error)
}

// Cache мемоизирует результаты Prober. Успешные результаты живут до конца
// процесса, ошибки не кэшируются. Одновременные промахи по одному локатору
// схлопываются в одну пробу.
type Cache struct {
	prober  Prober
	limiter *limit.Limiter
	logger  *slog.Logger

	mu     sync.RWMutex
	audio  map[string]float64
	images map[string]geometry.Dimensions
	videos map[string]VideoMeta

	flights singleflight.Group
}

type CacheOption func(*Cache)

// WithLimiter задаёт очередь, через которую идут пробы изображений
func WithLimiter(l *limit.Limiter) CacheOption {
	return func(c *Cache) { c.limiter = l }
}

func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

func NewCache(p Prober, opts ...CacheOption) *Cache {
	c := &Cache{
		prober:  p,
		limiter: limit.Default(),
		logger:  slog.Default(),
		audio:   make(map[string]float64),
		images:  make(map[string]geometry.Dimensions),
		videos:  make(map[string]VideoMeta),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) Limiter() *limit.Limiter {
	return c.limiter
}

// AudioDuration возвращает длительность аудио в секундах
func (c *Cache) AudioDuration(ctx context.Context, loc string) (float64, error) {
	c.mu.RLock()
	d, ok := c.audio[loc]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	v, err := c.shared(ctx, "audio:"+loc, func(ctx context.Context) (any, error) {
		d, err := c.prober.AudioDuration(ctx, loc)
		if err != nil {
			return nil, probeError(ProbeAudio, loc, err)
		}
		c.mu.Lock()
		c.audio[loc] = d
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		c.logger.Debug("audio probe failed", "locator", loc, "error", err)
		return 0, err
	}
	return v.(float64), nil
}

// ImageDimensions возвращает натуральный размер изображения.
// Промахи проходят через очередь limiter.
func (c *Cache) ImageDimensions(ctx context.Context, loc string) (geometry.Dimensions, error) {
	c.mu.RLock()
	d, ok := c.images[loc]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	v, err := c.shared(ctx, "image:"+loc, func(ctx context.Context) (any, error) {
		return limit.Do(ctx, c.limiter, func() (geometry.Dimensions, error) {
			d, err := c.prober.ImageDimensions(ctx, loc)
			if err != nil {
				return geometry.Dimensions{}, probeError(ProbeImage, loc, err)
			}
			// пишем в кэш внутри задачи: результат сохранится, даже если ожидающий уже ушёл по ctx
			c.mu.Lock()
			c.images[loc] = d
			c.mu.Unlock()
			return d, nil
		})
	})
	if err != nil {
		c.logger.Debug("image probe failed", "locator", loc, "error", err)
		return geometry.Dimensions{}, err
	}
	return v.(geometry.Dimensions), nil
}

// VideoMeta возвращает размеры и длительность видео
func (c *Cache) VideoMeta(ctx context.Context, loc string) (VideoMeta, error) {
	c.mu.RLock()
	m, ok := c.videos[loc]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err := c.shared(ctx, "video:"+loc, func(ctx context.Context) (any, error) {
		m, err := c.prober.VideoMeta(ctx, loc)
		if err != nil {
			return nil, probeError(ProbeVideo, loc, err)
		}
		c.mu.Lock()
		c.videos[loc] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		c.logger.Debug("video probe failed", "locator", loc, "error", err)
		return VideoMeta{}, err
	}
	return v.(VideoMeta), nil
}

// shared выполняет fn одним полётом на key. Полёт идёт на контексте без
// отмены, каждый вызвавший ждёт его только до отмены своего ctx.
func (c *Cache) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (any, error) {
		return fn(flightCtx)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len: сколько записей в каждом из трёх кэшей
func (c *Cache) Len() (audio, images, videos int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.audio), len(c.images), len(c.videos)
}
