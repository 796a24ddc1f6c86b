// vizsel is the CLI for the visualization variant selector and column
// resolver. It exists for operators tuning the catalog and for offline
// replay of selection decisions; services embed the library packages
// directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vizsel/internal/catalog"
	"vizsel/internal/config"
	"vizsel/internal/embedding"
	"vizsel/internal/logging"
	"vizsel/internal/pipeline"
	"vizsel/internal/profile"
	"vizsel/internal/reasoning"
	"vizsel/internal/resolver"
	"vizsel/internal/store"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vizsel",
	Short: "Visualization variant selector and column resolver",
	Long: `vizsel picks the best visualization variant for a dashboard widget from
the measured shape of its data and the user's question, and resolves
natural-language questions to concrete equipment-table columns.

Selection walks an escalation graph: hard elimination, deterministic
scoring, semantic tie-break, LLM tie-break, deterministic fallback. Every
run terminates with a concrete variant.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.DebugMode = true
		}
		return logging.Initialize(cfg.Workspace, cfg.Logging.DebugMode, cfg.Logging.Level, cfg.Logging.Categories)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// =============================================================================
// SELECT
// =============================================================================

var (
	selScenario  string
	selQuery     string
	selEntities  int
	selMetrics   int
	selInstances int
	selShapeFlag map[string]*bool
)

var shapeFlagNames = []string{
	"timeseries", "cumulative", "binary", "percentage", "alerts",
	"phase-data", "high-variance", "flow", "rate", "hierarchy", "multi-numeric",
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run one variant selection and print the decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, cache, err := buildSelector()
		if err != nil {
			return err
		}
		if cache != nil {
			defer cache.Close()
		}

		shape := profile.DataShapeProfile{
			EntityCount:           selEntities,
			MetricCount:           selMetrics,
			InstanceCount:         selInstances,
			HasTimeseries:         *selShapeFlag["timeseries"],
			HasCumulativeMetric:   *selShapeFlag["cumulative"],
			HasBinaryMetric:       *selShapeFlag["binary"],
			HasPercentageMetric:   *selShapeFlag["percentage"],
			HasAlerts:             *selShapeFlag["alerts"],
			HasPhaseData:          *selShapeFlag["phase-data"],
			HasHighVariance:       *selShapeFlag["high-variance"],
			HasFlowMetric:         *selShapeFlag["flow"],
			HasRateMetric:         *selShapeFlag["rate"],
			HasHierarchy:          *selShapeFlag["hierarchy"],
			MultiNumericPotential: *selShapeFlag["multi-numeric"],
		}

		result := sel.RunSelection(cmd.Context(), pipeline.Request{
			Scenario: selScenario,
			Query:    selQuery,
			Shape:    shape,
		})

		logger.Info("selection complete",
			zap.String("variant", result.Variant),
			zap.Float64("confidence", result.Confidence),
			zap.String("method", result.Method))
		return printJSON(result)
	},
}

// buildSelector wires the full selection stack from config.
func buildSelector() (*pipeline.Selector, *store.EmbedCache, error) {
	cat := catalog.Builtin()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		cat = loaded
	}

	engine, err := embedding.NewEngine(cfg.Embedding)
	if err != nil {
		logger.Warn("embedding backend unavailable, semantic layer degrades", zap.Error(err))
	}

	var cache *store.EmbedCache
	if cfg.Embedding.CachePath != "" {
		cache, err = store.OpenEmbedCache(cfg.Embedding.CachePath)
		if err != nil {
			logger.Warn("embedding cache unavailable", zap.Error(err))
			cache = nil
		}
	}

	client, err := reasoning.NewGenAIClient(cfg.Reasoning, cfg.ReasoningTimeout())
	if err != nil {
		logger.Warn("reasoning backend unavailable, tie-break degrades", zap.Error(err))
	}
	var breaker *reasoning.TieBreaker
	if client != nil {
		breaker = reasoning.NewTieBreaker(client)
	}

	sel, err := pipeline.New(&cfg, cat, engine, breaker, cache)
	if err != nil {
		return nil, nil, err
	}
	return sel, cache, nil
}

// =============================================================================
// RESOLVE
// =============================================================================

var (
	resTable     string
	resEquipment string
	resScenario  string
	resColumns   string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [question]...",
	Short: "Resolve questions to table columns",
	Long: `Resolve maps each question to a numeric column of the table. Multiple
questions are resolved as one batch with diversity tracking, so widgets on
the same dashboard bind distinct columns where possible.

Columns are given as a comma-separated list of name[:label[:unit]] specs;
a name of "ts" or a "timestamp" label marks the time column.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, err := parseColumns(resColumns)
		if err != nil {
			return err
		}

		scenarios := make([]string, len(args))
		for i := range scenarios {
			scenarios[i] = resScenario
		}

		matches := resolver.ResolveDiverseColumns(args, resTable, columns, resEquipment, scenarios)
		out := make([]any, len(matches))
		for i, m := range matches {
			if m == nil {
				out[i] = nil
				continue
			}
			out[i] = *m
		}
		return printJSON(out)
	},
}

// parseColumns decodes the --columns flag.
func parseColumns(raw string) ([]resolver.Column, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("--columns is required")
	}
	var out []resolver.Column
	for _, part := range strings.Split(raw, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 3)
		col := resolver.Column{Name: fields[0], Numeric: true, HasData: true}
		if len(fields) > 1 {
			col.Label = fields[1]
		}
		if len(fields) > 2 {
			col.Unit = fields[2]
		}
		if col.Name == "ts" || strings.EqualFold(col.Label, "timestamp") {
			col.Timestamp = true
			col.Numeric = false
		}
		out = append(out, col)
	}
	return out, nil
}

// =============================================================================
// CATALOG
// =============================================================================

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the variant catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.Builtin()
		if cfg.CatalogPath != "" {
			loaded, err := catalog.LoadFile(cfg.CatalogPath)
			if err != nil {
				return err
			}
			cat = loaded
		}

		for _, scenario := range cat.Scenarios() {
			fmt.Printf("%s:\n", scenario)
			for _, v := range cat.Variants(scenario) {
				marker := " "
				if v.Default {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, v.Name)
			}
		}
		return nil
	},
}

var catalogWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Serve a catalog file with hot reload until interrupted",
	Long: `Watch loads the catalog file and keeps it in sync with edits on disk.
Broken edits are rejected and the previous table keeps serving; every reload
is recorded in the catalog log. Intended for operators tuning a catalog
override against a running dashboard.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("watching catalog", zap.String("path", args[0]))
		return catalog.RunWatch(ctx, catalog.Builtin(), args[0])
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse and validate a catalog YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("OK: %d scenarios\n", len(cat.Scenarios()))
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	selectCmd.Flags().StringVar(&selScenario, "scenario", "trend", "widget scenario")
	selectCmd.Flags().StringVar(&selQuery, "query", "", "user question")
	selectCmd.Flags().IntVar(&selEntities, "entities", 1, "entity count")
	selectCmd.Flags().IntVar(&selMetrics, "metrics", 1, "metric count")
	selectCmd.Flags().IntVar(&selInstances, "instances", 100, "instance count")
	selShapeFlag = make(map[string]*bool, len(shapeFlagNames))
	for _, name := range shapeFlagNames {
		selShapeFlag[name] = selectCmd.Flags().Bool(name, false, "shape: "+strings.ReplaceAll(name, "-", " "))
	}

	resolveCmd.Flags().StringVar(&resTable, "table", "", "source table name")
	resolveCmd.Flags().StringVar(&resEquipment, "equipment", "", "equipment family prefix")
	resolveCmd.Flags().StringVar(&resScenario, "scenario", "", "widget scenario")
	resolveCmd.Flags().StringVar(&resColumns, "columns", "", "comma-separated name[:label[:unit]] specs")
	_ = resolveCmd.MarkFlagRequired("table")
	_ = resolveCmd.MarkFlagRequired("columns")

	catalogCmd.AddCommand(catalogValidateCmd, catalogWatchCmd)
	rootCmd.AddCommand(selectCmd, resolveCmd, catalogCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
