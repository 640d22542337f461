package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"lifepath/internal/cache"
	"lifepath/internal/catalog"
	"lifepath/internal/config"
	"lifepath/internal/db"
	"lifepath/internal/game"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	accent  = color.New(color.FgCyan, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func main() {
	root := &cobra.Command{
		Use:          "lifepath-catalog",
		Short:        "Manage the lifepath event catalog",
		SilenceUsage: true,
	}

	root.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newListCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newServiceFromEnv(ctx context.Context) (*game.Service, func(), error) {
	cfg, err := config.LoadCatalogFromEnv()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	var cch cache.Cache
	closeCache := func() {}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		cch = redisCache
		closeCache = func() { _ = redisCache.Close() }
	}

	svc := game.NewService(pool, cch, logger, game.Options{})
	cleanup := func() {
		closeCache()
		pool.Close()
	}
	return svc, cleanup, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Upsert event and decision templates from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, decisions, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			svc, cleanup, err := newServiceFromEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.SyncCatalog(ctx, templates, decisions); err != nil {
				return err
			}
			success.Printf("imported %d events, %d decisions\n", len(templates), len(decisions))
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <catalog.yaml>",
		Short: "Write the current catalog to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			svc, cleanup, err := newServiceFromEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			templates, decisions, err := svc.ExportCatalog(ctx)
			if err != nil {
				return err
			}
			if err := catalog.WriteFile(args[0], templates, decisions); err != nil {
				return err
			}
			success.Printf("exported %d events, %d decisions to %s\n", len(templates), len(decisions), args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List event templates in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			svc, cleanup, err := newServiceFromEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			templates, _, err := svc.ExportCatalog(ctx)
			if err != nil {
				return err
			}
			for _, t := range templates {
				state := "active"
				if !t.Active {
					state = "inactive"
				}
				accent.Printf("%-32s", t.ID)
				neutral.Printf(" %-16s %-10s ages %d-%d %s\n", t.Category, t.Rarity, t.MinAge, t.MaxAge, state)
			}
			neutral.Printf("%d templates\n", len(templates))
			return nil
		},
	}
}
