// cmd/tpn-planner/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mcp-tpn-planner/internal/conditions"
	"mcp-tpn-planner/internal/config"
	"mcp-tpn-planner/internal/models"
	"mcp-tpn-planner/internal/patient"
	"mcp-tpn-planner/internal/planner"
	"mcp-tpn-planner/internal/profiles"
	"mcp-tpn-planner/internal/render"
	"mcp-tpn-planner/internal/server"
	"mcp-tpn-planner/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tpn-planner",
		Short:         "Parenteral nutrition dosing schedule planner",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(conditionsCmd())
	root.AddCommand(versionCmd())
	return root
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.ConsoleLogs() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newResolver(logger zerolog.Logger) (*planner.Resolver, error) {
	cat, err := conditions.Default()
	if err != nil {
		return nil, fmt.Errorf("load condition catalog: %w", err)
	}
	return planner.NewResolver(cat, planner.WithLogger(logger)), nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (MCP tools, REST API, metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host, _ = cmd.Flags().GetString("host")
			}
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("db-path") {
				cfg.DBPath, _ = cmd.Flags().GetString("db-path")
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().String("host", "0.0.0.0", "Host address")
	cmd.Flags().Int("port", 8011, "Port for HTTP transport")
	cmd.Flags().String("db-path", "/data/tpn-planner.db", "Database path")
	return cmd
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg)

	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.DBPath).Msg("failed to open storage")
		return err
	}

	resolver, err := newResolver(logger)
	if err != nil {
		stor.Close()
		return err
	}

	srv, err := server.NewPlannerServer(cfg, stor, resolver, logger)
	if err != nil {
		stor.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(context.Background()); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

type outputOptions struct {
	format string
	save   bool
	dbPath string
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "table", "Output format: table, json, csv or html")
	cmd.Flags().BoolVar(&o.save, "save", false, "Store the resolved schedules in the database")
	cmd.Flags().StringVar(&o.dbPath, "db-path", "", "Database path for --save (defaults to DB_PATH)")
}

// emit prints schedules and stores them when --save is set.
func (o *outputOptions) emit(cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger, schedules []*models.Schedule) error {
	format, err := render.ParseFormat(o.format)
	if err != nil {
		return err
	}

	if o.save {
		path := o.dbPath
		if path == "" {
			path = cfg.DBPath
		}
		stor, err := storage.NewSQLiteStorage(path)
		if err != nil {
			return err
		}
		defer stor.Close()
		for _, s := range schedules {
			if err := stor.SaveSchedule(s); err != nil {
				return err
			}
			logger.Info().Str("schedule_id", s.ID).Str("patient", s.Patient.Name).Msg("schedule saved")
		}
	}

	return render.Write(cmd.OutOrStdout(), format, schedules...)
}

func resolveCmd() *cobra.Command {
	var (
		out          outputOptions
		profile      string
		name         string
		variant      string
		sex          string
		age          float64
		height       float64
		weight       float64
		days         int
		conditionIDs []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a dosing schedule for one patient",
		Example: `  tpn-planner resolve --variant adult --age 45 --height 170 --weight 70 --sex male \
      --condition acute_kidney_injury --condition aki_crrt --days 7
  tpn-planner resolve --profile patient.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			var req planner.Request
			if profile != "" {
				reqs, err := profiles.LoadFile(profile, cfg.DefaultTotalDays)
				if err != nil {
					return err
				}
				if len(reqs) != 1 {
					return fmt.Errorf("%s holds %d patients; use the batch command", profile, len(reqs))
				}
				req = reqs[0]
				if cmd.Flags().Changed("days") {
					req.TotalDays = days
				}
			} else {
				v, err := patient.ParseVariant(variant)
				if err != nil {
					return err
				}
				var s patient.Sex
				if sex != "" {
					if s, err = patient.ParseSex(sex); err != nil {
						return err
					}
				}
				req.Profile = patient.NewProfile(name, v, age, height, weight, s, conditionIDs...)
				req.TotalDays = days
				if req.TotalDays == 0 {
					req.TotalDays = cfg.DefaultTotalDays
				}
			}

			resolver, err := newResolver(logger)
			if err != nil {
				return err
			}
			sched, err := resolver.Resolve(cmd.Context(), req.Profile, req.TotalDays)
			if err != nil {
				return err
			}
			return out.emit(cmd, cfg, logger, []*models.Schedule{sched})
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "YAML profile file (overrides patient flags)")
	cmd.Flags().StringVar(&name, "name", "patient", "Patient name")
	cmd.Flags().StringVar(&variant, "variant", "adult", "Patient variant: adult, child, term_infant, preterm_infant")
	cmd.Flags().Float64Var(&age, "age", 0, "Age in years (adult, child) or days (infants)")
	cmd.Flags().Float64Var(&height, "height", 0, "Height in cm")
	cmd.Flags().Float64Var(&weight, "weight", 0, "Weight in kg")
	cmd.Flags().StringVar(&sex, "sex", "", "male or female")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to schedule (defaults to DEFAULT_TOTAL_DAYS)")
	cmd.Flags().StringArrayVarP(&conditionIDs, "condition", "c", nil, "Active condition id; repeat in activation order")
	out.register(cmd)
	return cmd
}

func batchCmd() *cobra.Command {
	var out outputOptions
	cmd := &cobra.Command{
		Use:   "batch <profiles.yaml>",
		Short: "Resolve every patient in a YAML profile file concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			reqs, err := profiles.LoadFile(args[0], cfg.DefaultTotalDays)
			if err != nil {
				return err
			}
			resolver, err := newResolver(logger)
			if err != nil {
				return err
			}
			schedules, err := resolver.ResolveBatch(cmd.Context(), reqs)
			if err != nil {
				return err
			}
			logger.Debug().Int("patients", len(schedules)).Msg("batch complete")
			return out.emit(cmd, cfg, logger, schedules)
		},
	}
	out.register(cmd)
	return cmd
}

func conditionsCmd() *cobra.Command {
	var population string
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "List the clinical conditions known to the planner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := conditions.Default()
			if err != nil {
				return err
			}
			list := cat.List()
			if population != "" {
				list = cat.ListFor(models.Population(strings.ToLower(population)))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPOPULATION\tREFINES")
			for _, c := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Population, strings.Join(c.Parents, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&population, "population", "", "Only conditions for adult or pediatric patients")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tpn-planner version %s\n", server.Version)
		},
	}
}
