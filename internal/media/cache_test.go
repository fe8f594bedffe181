package media

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/limit"
)

type fakeProber struct {
	audioCalls, imageCalls, videoCalls atomic.Int32

	mu      sync.Mutex
	failing map[string]int // сколько раз подряд вернуть ошибку
	gate    chan struct{}
	onImage func()
}

func newFakeProber() *fakeProber {
	return &fakeProber{failing: make(map[string]int)}
}

func (f *fakeProber) fail(loc string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[loc] > 0 {
		f.failing[loc]--
		return errors.New("corrupt header")
	}
	return nil
}

func (f *fakeProber) AudioDuration(_ context.Context, loc string) (float64, error) {
	f.audioCalls.Add(1)
	if err := f.fail(loc); err != nil {
		return 0, err
	}
	return 12.5, nil
}

func (f *fakeProber) ImageDimensions(_ context.Context, loc string) (geometry.Dimensions, error) {
	f.imageCalls.Add(1)
	if f.onImage != nil {
		f.onImage()
	}
	if f.gate != nil {
		<-f.gate
	}
	if err := f.fail(loc); err != nil {
		return geometry.Dimensions{}, err
	}
	return geometry.Dimensions{Width: 640, Height: 480}, nil
}

func (f *fakeProber) VideoMeta(_ context.Context, loc string) (VideoMeta, error) {
	f.videoCalls.Add(1)
	if err := f.fail(loc); err != nil {
		return VideoMeta{}, err
	}
	return VideoMeta{Width: 1920, Height: 1080, Duration: 30}, nil
}

func TestCacheProbesOnce(t *testing.T) {
	p := newFakeProber()
	c := NewCache(p, WithLimiter(limit.New(2)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := c.AudioDuration(ctx, "a.mp3")
		require.NoError(t, err)
		assert.Equal(t, 12.5, d)

		dim, err := c.ImageDimensions(ctx, "a.png")
		require.NoError(t, err)
		assert.Equal(t, geometry.Dimensions{Width: 640, Height: 480}, dim)

		m, err := c.VideoMeta(ctx, "a.mp4")
		require.NoError(t, err)
		assert.Equal(t, 30.0, m.Duration)
	}

	assert.Equal(t, int32(1), p.audioCalls.Load())
	assert.Equal(t, int32(1), p.imageCalls.Load())
	assert.Equal(t, int32(1), p.videoCalls.Load())

	a, i, v := c.Len()
	assert.Equal(t, []int{1, 1, 1}, []int{a, i, v})
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	p := newFakeProber()
	p.failing["broken.png"] = 1
	p.failing["broken.mp4"] = 1
	p.failing["broken.mp3"] = 1
	c := NewCache(p)
	ctx := context.Background()

	_, err := c.ImageDimensions(ctx, "broken.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
	var pe *ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ProbeImage, pe.Kind)
	assert.Equal(t, "broken.png", pe.Locator)

	_, err = c.VideoMeta(ctx, "broken.mp4")
	assert.ErrorIs(t, err, ErrUnreadable)
	_, err = c.AudioDuration(ctx, "broken.mp3")
	assert.ErrorIs(t, err, ErrUnreadable)

	// повторный вызов снова идёт в пробу и теперь успешен
	_, err = c.ImageDimensions(ctx, "broken.png")
	require.NoError(t, err)
	_, err = c.VideoMeta(ctx, "broken.mp4")
	require.NoError(t, err)
	_, err = c.AudioDuration(ctx, "broken.mp3")
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.imageCalls.Load())
	assert.Equal(t, int32(2), p.videoCalls.Load())
	assert.Equal(t, int32(2), p.audioCalls.Load())
}

func TestCacheDeduplicatesConcurrentMisses(t *testing.T) {
	p := newFakeProber()
	p.gate = make(chan struct{})
	entered := make(chan struct{}, 16)
	p.onImage = func() { entered <- struct{}{} }
	c := NewCache(p, WithLimiter(limit.New(5)))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]geometry.Dimensions, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := c.ImageDimensions(context.Background(), "same.png")
			assert.NoError(t, err)
			results[i] = d
		}(i)
	}

	<-entered
	// даём остальным вызовам время присоединиться к полёту
	time.Sleep(50 * time.Millisecond)
	close(p.gate)
	wg.Wait()

	assert.Equal(t, int32(1), p.imageCalls.Load())
	for _, d := range results {
		assert.Equal(t, 640.0, d.Width)
	}
}

func TestCacheCancelledCallerLeavesFlightAlive(t *testing.T) {
	p := newFakeProber()
	p.gate = make(chan struct{})
	entered := make(chan struct{}, 4)
	p.onImage = func() { entered <- struct{}{} }
	c := NewCache(p, WithLimiter(limit.New(2)))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.ImageDimensions(ctxA, "shared.png")
		errA <- err
	}()
	<-entered

	type result struct {
		d   geometry.Dimensions
		err error
	}
	resB := make(chan result, 1)
	go func() {
		d, err := c.ImageDimensions(context.Background(), "shared.png")
		resB <- result{d, err}
	}()
	// даём второму вызову присоединиться к полёту
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(p.gate)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 640.0, b.d.Width)
	assert.Equal(t, int32(1), p.imageCalls.Load())

	// результат полёта попал в кэш, хотя первый вызвавший ушёл
	_, err := c.ImageDimensions(context.Background(), "shared.png")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.imageCalls.Load())
}

func TestCacheImageProbesGoThroughLimiter(t *testing.T) {
	l := limit.New(1)
	p := newFakeProber()
	var active []int
	p.onImage = func() { active = append(active, l.Active()) }
	c := NewCache(p, WithLimiter(l))

	_, err := c.ImageDimensions(context.Background(), "x.png")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, active)
	assert.Same(t, l, c.Limiter())

	// попадание в кэш не занимает слот
	p.onImage = func() { t.Fatal("cache hit must not probe") }
	_, err = c.ImageDimensions(context.Background(), "x.png")
	require.NoError(t, err)
}

func TestProbeErrorPassesContextErrors(t *testing.T) {
	assert.ErrorIs(t, probeError(ProbeVideo, "x", context.Canceled), context.Canceled)
	assert.NotErrorIs(t, probeError(ProbeVideo, "x", context.Canceled), ErrUnreadable)

	inner := &ProbeError{Kind: ProbeAudio, Locator: "y", Err: errors.New("bad")}
	assert.Same(t, inner, probeError(ProbeVideo, "x", inner))
}
