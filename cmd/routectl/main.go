// Command routectl is a small operational CLI around the routing engine.
// It calls the same internal/engine.Engine the HTTP server uses, giving
// the facade a second caller for ad-hoc or scripted runs.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shiva/crewrouter/config"
	"github.com/shiva/crewrouter/internal/engine"
	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/internal/repository"
	"github.com/shiva/crewrouter/pkg/cache"
	"github.com/shiva/crewrouter/pkg/db"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "routectl",
		Short: "Operational CLI for the crew routing engine",
	}
	root.AddCommand(newOptimizeCmd())
	return root
}

func newOptimizeCmd() *cobra.Command {
	var (
		crew       string
		date       string
		maxHours   float64
		maxPoints  int
		strategy   string
		deadlineMS int
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run one optimization pass for a crew and print the resulting route as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := zap.NewNop()
			ctx := cmd.Context()

			pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pgPool.Close()

			redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer redisClient.Close()

			ticketRepo := repository.NewTicketRepository(pgPool)
			oracle := distancecache.NewOracle(distancecache.NewRedisStore(redisClient, ""), cfg.Engine.AvgSpeedKmph, logger)
			eng := engine.New(ticketRepo, oracle, logger, cfg.Engine.BreakerFailureThreshold)

			if maxHours <= 0 {
				maxHours = cfg.Engine.DefaultMaxHours
			}
			if maxPoints <= 0 {
				maxPoints = cfg.Engine.DefaultMaxPoints
			}
			if strategy == "" {
				strategy = cfg.Engine.DefaultStrategy
			}

			req := model.OptimizeRequest{
				CrewType:   model.CrewType(crew),
				Date:       date,
				MaxHours:   maxHours,
				MaxPoints:  maxPoints,
				Strategy:   model.Strategy(strategy),
				DeadlineMS: deadlineMS,
			}

			route, err := eng.Optimize(ctx, req)
			if err != nil {
				return fmt.Errorf("optimize: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(route)
		},
	}

	cmd.Flags().StringVar(&crew, "crew", "", "crew type (asphalt|hydraulic|electric|sanitation|general)")
	cmd.Flags().StringVar(&date, "date", "", "service date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&maxHours, "max-hours", 0, "shift budget in hours (defaults to engine config)")
	cmd.Flags().IntVar(&maxPoints, "max-points", 0, "max stops per crew (defaults to engine config)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "urgency_first|geographic|mixed (defaults to engine config)")
	cmd.Flags().IntVar(&deadlineMS, "deadline-ms", 0, "optional wall-clock deadline in milliseconds")
	cmd.MarkFlagRequired("crew")
	cmd.MarkFlagRequired("date")

	return cmd
}
