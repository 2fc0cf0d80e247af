// Command recalculate_budgets rebuilds every department's category balances from
// its approved budget requests and prints the result.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sort"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/platform/config"
	"github.com/shukrishariff-oms/pms-istmo/internal/repositories/database/pgsql"
	"github.com/shukrishariff-oms/pms-istmo/pkg/database"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report drift without rewriting balances")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		logger.Error("recalculate_budgets needs the postgres driver", slog.String("driver", cfg.StorageDriver))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	repos := pgsql.NewRepositoryProvider(dbPool)
	budget := services.NewServiceContainer(repos).Budget

	if *dryRun {
		departments, err := repos.DepartmentRepo.ListDepartments(ctx)
		if err != nil {
			logger.Error("Failed to list departments", slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, d := range departments {
			drift, err := budget.CheckDrift(ctx, d.DepartmentID)
			if err != nil {
				logger.Error("Failed to check drift", slog.String("department", d.Code), slog.String("error", err.Error()))
				os.Exit(1)
			}
			for _, dr := range drift {
				logger.Info("Drift",
					slog.String("department", d.Code),
					slog.String("category", dr.Category),
					slog.String("stored", dr.Stored.String()),
					slog.String("expected", dr.Expected.String()),
				)
			}
		}
		return
	}

	results, err := budget.ReconcileAll(ctx)
	if err != nil {
		logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	departmentIDs := make([]string, 0, len(results))
	for id := range results {
		departmentIDs = append(departmentIDs, id)
	}
	sort.Strings(departmentIDs)
	for _, id := range departmentIDs {
		sums := results[id]
		categories := make([]string, 0, len(sums))
		for c := range sums {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		attrs := []any{slog.String("department_id", id), slog.Int("categories", len(sums))}
		for _, c := range categories {
			attrs = append(attrs, slog.String(c, sums[c].String()))
		}
		logger.Info("Department reconciled", attrs...)
	}
	logger.Info("Recalculation complete", slog.Int("departments", len(results)))
}
