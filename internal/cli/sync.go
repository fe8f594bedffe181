package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ivlev/videocanvas/internal/composition"
	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/engine"
	"github.com/ivlev/videocanvas/internal/objects"
	"github.com/ivlev/videocanvas/internal/surface"
)

// SyncOptions holds flags of the sync command.
type SyncOptions struct {
	Output       string
	Seek         float64
	CanvasWidth  float64
	CanvasHeight float64
	Replace      bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "sync [composition.yaml]",
		Short: "Place a composition on a headless surface and replay its gestures",
		Long: `Load a composition, build a surface for it, add every element at the
seek time and replay the scripted gestures. Each selection or update is
printed; with --output the reconciled composition is written back as YAML.

Without an argument the newest file in input/compositions is used.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSync(cmd.Context(), rootOpts, opts, path, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Куда записать композицию после жестов")
	cmd.Flags().Float64Var(&opts.Seek, "seek", -1, "Время воспроизведения в секундах (по умолчанию из композиции)")
	cmd.Flags().Float64Var(&opts.CanvasWidth, "canvas-width", 0, "Ширина поверхности")
	cmd.Flags().Float64Var(&opts.CanvasHeight, "canvas-height", 0, "Высота поверхности")
	cmd.Flags().BoolVar(&opts.Replace, "replace", true, "Очистить поверхность перед добавлением")

	return cmd
}

func runSync(ctx context.Context, rootOpts *RootOptions, opts *SyncOptions, path string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rootOpts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if path == "" {
		latest, err := composition.FindLatest(composition.DefaultDir)
		if err != nil {
			return fmt.Errorf("%w. Положите композицию в %s/", err, composition.DefaultDir)
		}
		path = latest
		fmt.Fprintf(out, "[*] Выбран файл: %s\n", path)
	}

	comp, err := composition.Read(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения композиции: %w", err)
	}

	props := canvasProps(cfg, comp, opts)
	seek := cfg.SeekTime
	if comp.SeekTime > 0 {
		seek = comp.SeekTime
	}
	if opts.Seek >= 0 {
		seek = opts.Seek
	}

	logger := newLogger(cfg, errOut)
	cache := newCache(cfg, logger)

	factory := &surface.MemoryFactory{}
	eng := engine.New(factory, objects.Headless(cache),
		engine.WithLogger(logger),
		engine.WithWarning(func(err error) {
			fmt.Fprintf(out, "[!] %v\n", err)
		}),
		engine.WithOperation(func(op engine.Operation, el element.Element) {
			fmt.Fprintf(out, "[*] %s %s (%s) x=%.2f y=%.2f w=%.2f h=%.2f r=%.2f\n",
				op, el.ID, el.Type, el.Props.X, el.Props.Y, el.Props.Width, el.Props.Height, el.Props.Rotation)
		}),
	)
	defer eng.Dispose()

	if err := eng.Build(props); err != nil {
		return err
	}

	meta := eng.CanvasMetadata()
	fmt.Fprintln(out, "--- [VIDEOCANVAS: SYNC] ---")
	fmt.Fprintf(out, "[*] Композиция: %s | Элементов: %d | Жестов: %d\n", path, len(comp.Elements), len(comp.Gestures))
	fmt.Fprintf(out, "[*] Видео: %gx%g | Поверхность: %gx%g | Масштаб: %.3f/%.3f | Время: %.2fs\n",
		props.VideoSize.Width, props.VideoSize.Height, meta.Width, meta.Height, meta.ScaleX, meta.ScaleY, seek)
	fmt.Fprintln(out, "-----------------------------")

	report := eng.AddElements(ctx, engine.Batch{
		Elements:        comp.Elements,
		SeekTime:        seek,
		Caption:         comp.Caption,
		ReplaceExisting: opts.Replace,
	})
	fmt.Fprintf(out, "[*] Добавлено: %d | Ошибок: %d\n", len(report.Added), len(report.Failed))
	for _, el := range comp.Elements {
		if err, ok := report.Failed[el.ID]; ok {
			fmt.Fprintf(out, "[!] %s (%s): %v\n", el.ID, el.Type, err)
		}
	}

	mem := factory.Last()
	err = composition.Replay(mem, comp.Gestures, func(g composition.Gesture, err error) {
		fmt.Fprintf(out, "[!] Жест пропущен: %v\n", err)
	})
	if err != nil {
		return err
	}

	if opts.Output != "" {
		for i := range comp.Elements {
			if el, ok := eng.Element(comp.Elements[i].ID); ok {
				comp.Elements[i] = el
			}
		}
		comp.Gestures = nil
		if err := composition.Write(comp, opts.Output); err != nil {
			return fmt.Errorf("ошибка записи композиции: %w", err)
		}
		fmt.Fprintf(out, "[+] Композиция сохранена: %s\n", opts.Output)
	}

	printStats(cfg, out)
	return nil
}

// canvasProps: флаги важнее композиции, композиция важнее конфигурации
func canvasProps(cfg *config.Config, comp *composition.Composition, opts *SyncOptions) config.CanvasProps {
	props := cfg.Canvas
	if comp.VideoSize.Width > 0 && comp.VideoSize.Height > 0 {
		props.VideoSize = comp.VideoSize
	}
	if comp.CanvasSize.Width > 0 && comp.CanvasSize.Height > 0 {
		props.CanvasSize = comp.CanvasSize
	}
	if opts.CanvasWidth > 0 {
		props.CanvasSize.Width = opts.CanvasWidth
	}
	if opts.CanvasHeight > 0 {
		props.CanvasSize.Height = opts.CanvasHeight
	}
	// без размера поверхности рисуем 1:1 с видео
	if props.CanvasSize.Width <= 0 || props.CanvasSize.Height <= 0 {
		props.CanvasSize = props.VideoSize
	}
	return props
}
