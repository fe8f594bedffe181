package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/media"
	"github.com/ivlev/videocanvas/internal/system"
)

// ProbeOptions holds flags of the probe command.
type ProbeOptions struct {
	Kind string
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "probe <locator>...",
		Short: "Resolve media metadata through the probe cache",
		Long: `Resolve audio duration, image dimensions or video size and duration for
each locator (path, file:// or http(s):// URL). Probes run concurrently
under the configured cap; repeated locators are probed once.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), rootOpts, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "auto", "Тип ресурса: auto, audio, image, video")

	return cmd
}

// kindOf определяет тип ресурса по расширению
func kindOf(loc, forced string) (media.ProbeKind, error) {
	switch forced {
	case "audio":
		return media.ProbeAudio, nil
	case "image":
		return media.ProbeImage, nil
	case "video":
		return media.ProbeVideo, nil
	case "", "auto":
	default:
		return "", fmt.Errorf("unknown kind %q", forced)
	}

	switch {
	case system.HasExt(loc, system.AudioExts...):
		return media.ProbeAudio, nil
	case system.HasExt(loc, system.VideoExts...):
		return media.ProbeVideo, nil
	default:
		return media.ProbeImage, nil
	}
}

func runProbe(ctx context.Context, rootOpts *RootOptions, opts *ProbeOptions, locs []string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rootOpts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if _, err := kindOf("", opts.Kind); err != nil {
		return err
	}

	cache := newCache(cfg, newLogger(cfg, errOut))

	lines := make([]string, len(locs))
	failedAt := make([]bool, len(locs))
	var g errgroup.Group
	for i, loc := range locs {
		g.Go(func() error {
			kind, _ := kindOf(loc, opts.Kind)
			line, err := probeOne(ctx, cache, kind, loc)
			if err != nil {
				lines[i] = fmt.Sprintf("[!] %s: %v", loc, err)
				failedAt[i] = true
				return err
			}
			lines[i] = line
			return nil
		})
	}
	err := g.Wait()

	failed := 0
	for i, l := range lines {
		if failedAt[i] {
			failed++
		}
		fmt.Fprintln(out, l)
	}
	audio, images, videos := cache.Len()
	fmt.Fprintf(out, "[*] В кэше: аудио %d | изображений %d | видео %d\n", audio, images, videos)
	printStats(cfg, out)

	if err != nil {
		return fmt.Errorf("%d из %d проб завершились ошибкой: %w", failed, len(locs), err)
	}
	return nil
}

func probeOne(ctx context.Context, cache *media.Cache, kind media.ProbeKind, loc string) (string, error) {
	switch kind {
	case media.ProbeAudio:
		d, err := cache.AudioDuration(ctx, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[+] %s: audio %.2fs", loc, d), nil
	case media.ProbeVideo:
		m, err := cache.VideoMeta(ctx, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[+] %s: video %gx%g %.2fs", loc, m.Width, m.Height, m.Duration), nil
	default:
		d, err := cache.ImageDimensions(ctx, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[+] %s: image %gx%g", loc, d.Width, d.Height), nil
	}
}
