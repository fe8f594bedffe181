// Package cli implements the videocanvas command line: a headless driver for
// the sync engine and a media metadata probe.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/limit"
	"github.com/ivlev/videocanvas/internal/media"
	"github.com/ivlev/videocanvas/internal/system"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Stats      bool

	// Config is loaded in PersistentPreRunE
	Config *config.Config
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "videocanvas",
		Short: "Headless editor canvas for video compositions",
		Long: `videocanvas builds an editing surface for a video composition,
places its elements, replays scripted gestures and reports how the
composition changed. It also probes media metadata through the same
bounded, memoized cache the editor uses.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if opts.ConfigPath != "" {
				loaded, err := config.Load(opts.ConfigPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("log-level") || opts.LogLevel == "" {
				cfg.LogLevel = opts.LogLevel
			}
			if opts.Stats {
				cfg.ShowStats = true
			}
			if _, err := parseLevel(cfg.LogLevel); err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML-конфигурация сессии")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Уровень логов: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.Stats, "stats", false, "Показать статистику хоста после выполнения")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewProbeCommand(opts))

	return cmd
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := parseLevel(cfg.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newCache(cfg *config.Config, logger *slog.Logger) *media.Cache {
	return media.NewCache(
		media.NewComposite(cfg.FFprobePath),
		media.WithLimiter(limit.New(cfg.Concurrency)),
		media.WithLogger(logger),
	)
}

func printStats(cfg *config.Config, w io.Writer) {
	if !cfg.ShowStats {
		return
	}
	s, err := system.CollectStats()
	if err != nil {
		fmt.Fprintf(w, "[!] Статистика недоступна: %v\n", err)
	}
	s.Print(w)
}
