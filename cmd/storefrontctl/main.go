// Command storefrontctl инструменты администратора витрины: распределение
// учётных данных, уведомления, создание администраторов и импорт.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/storage/repository"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	// atFlag дата, на которую считаются назначения и уведомления (2006-01-02).
	atFlag string
)

var rootCmd = &cobra.Command{
	Use:          "storefrontctl",
	Short:        "Storefront administration tool",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.MustLoad()
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&atFlag, "at", "", "evaluate as of this date (YYYY-MM-DD), defaults to now")

	rootCmd.AddCommand(planCmd, alertsCmd, importCmd, adminCmd)
	adminCmd.AddCommand(adminCreateCmd)
}

// clock возвращает текущее время либо полдень даты из --at.
func clock(at string) (func() time.Time, error) {
	if at == "" {
		return time.Now, nil
	}
	day, err := time.Parse(time.DateOnly, at)
	if err != nil {
		return nil, fmt.Errorf("invalid --at value %q: %w", at, err)
	}
	fixed := day.Add(12 * time.Hour)
	return func() time.Time { return fixed }, nil
}

func openStorage(ctx context.Context) (*repository.Storage, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	return db, nil
}

func closeStorage(db *repository.Storage, w io.Writer) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(w, "failed to close storage: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
