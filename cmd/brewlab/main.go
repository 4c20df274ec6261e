package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ak/brewlab/internal/app"
	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/services"
	"github.com/ak/brewlab/internal/flowchart"
	"github.com/ak/brewlab/internal/infrastructure/config"
	"github.com/ak/brewlab/internal/infrastructure/database"
	"github.com/ak/brewlab/internal/infrastructure/repositories"
	"github.com/ak/brewlab/internal/optimizer"
	"github.com/ak/brewlab/internal/pkg/logger"
	"github.com/ak/brewlab/workflows"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
)

func main() {
	app.Version = version

	rootCmd := &cobra.Command{
		Use:   "brewlab",
		Short: "Brewlab - flowchart driven beer recipe optimizer",
		Long: `Brewlab analyzes beer recipes against style guidelines and walks
configurable YAML flowcharts that adjust grain bills, hops and yeast until
the recipe lands inside the style, or converts recipes between unit systems.`,
		SilenceUsage: true,
	}

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("brewlab version %s (built %s)\n", version, buildTime)
		},
	})

	// Serve command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the brewlab API server",
		RunE:  runServe,
	})

	// Analyze command
	analyzeCmd := &cobra.Command{
		Use:   "analyze <recipe.json>",
		Short: "Run a workflow over a recipe file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().String("style", "", "style code from the built-in catalog, e.g. 21A")
	analyzeCmd.Flags().String("workflow", "", "workflow name (defaults to workflows.default_name)")
	analyzeCmd.Flags().String("unit-system", "", "target unit system: metric or imperial")
	analyzeCmd.Flags().String("workflow-file", "", "run an unregistered workflow file instead of a named workflow")
	rootCmd.AddCommand(analyzeCmd)

	// Validate command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "validate <workflow.yaml>...",
		Short: "Validate workflow definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	})

	// Seed command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Seed the MongoDB catalog with built-in ingredients and styles",
		RunE:  runSeed,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and the logger shared by every command
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)
	return cfg, log, nil
}

// workflowLoader layers the configured override directory over the embedded defaults
func workflowLoader(cfg *config.Config, log *logger.Logger) *flowchart.Loader {
	var sources []fs.FS
	if cfg.Workflows.Dir != "" {
		sources = append(sources, os.DirFS(cfg.Workflows.Dir))
	}
	sources = append(sources, workflows.Defaults())
	return flowchart.NewLoader(log, sources...)
}

// openStorage returns the repository provider for the configured driver. The
// returned MongoDB is nil for the memory driver.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories.Provider, *database.MongoDB, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		repos := repositories.NewMemoryProvider()
		if cfg.Storage.SeedData {
			if _, err := repositories.Seed(ctx, repos, log); err != nil {
				return nil, nil, err
			}
		}
		return repos, nil, nil
	}

	mongodb, err := database.NewMongoDB(cfg.MongoDB, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	if err := mongodb.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	repos := repositories.NewProvider(mongodb)
	if cfg.Storage.SeedData {
		if _, err := repositories.Seed(ctx, repos, log); err != nil {
			return nil, mongodb, err
		}
	}
	return repos, mongodb, nil
}

func closeMongo(mongodb *database.MongoDB, log *logger.Logger) {
	if mongodb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mongodb.Close(ctx); err != nil {
		log.Error("Failed to close MongoDB connection", zap.Error(err))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting brewlab",
		zap.String("version", version),
		zap.String("environment", cfg.App.Env),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, mongodb, err := openStorage(ctx, cfg, log)
	defer closeMongo(mongodb, log)
	if err != nil {
		return err
	}

	loader := workflowLoader(cfg, log)
	if _, err := loader.Load(cfg.Workflows.DefaultName); err != nil {
		return fmt.Errorf("failed to load default workflow: %w", err)
	}

	application, err := app.New(cfg, log, mongodb, repos, loader)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      application.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("address", cfg.GetAddress()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server shutdown complete")
	return nil
}

// runAnalyze always uses the in-memory catalog so it works offline
func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read recipe: %w", err)
	}
	var recipe models.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return fmt.Errorf("failed to parse recipe: %w", err)
	}

	styleCode, _ := cmd.Flags().GetString("style")
	workflowName, _ := cmd.Flags().GetString("workflow")
	unitSystem, _ := cmd.Flags().GetString("unit-system")

	ctx := cmd.Context()
	repos := repositories.NewMemoryProvider()
	if _, err := repositories.Seed(ctx, repos, log); err != nil {
		return err
	}

	if file, _ := cmd.Flags().GetString("workflow-file"); file != "" {
		return analyzeWithFile(cmd, file, &recipe, styleCode, unitSystem, repos, cfg, log)
	}

	svc := services.NewAnalysisService(workflowLoader(cfg, log), repos.Style, repos.Ingredient, nil,
		services.AnalysisConfig{
			DefaultWorkflow: cfg.Workflows.DefaultName,
			MaxSteps:        cfg.Workflows.MaxSteps,
		}, log)

	resp, err := svc.AnalyzeRecipe(ctx, services.AnalyzeRequest{
		Recipe:       recipe,
		StyleID:      styleCode,
		UnitSystem:   unitSystem,
		WorkflowName: workflowName,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// analyzeWithFile runs a workflow file straight through the engine, bypassing
// the loader. Useful while authoring a flowchart.
func analyzeWithFile(cmd *cobra.Command, file string, recipe *models.Recipe, styleCode, unitSystem string,
	repos *repositories.Provider, cfg *config.Config, log *logger.Logger) error {
	engine, err := flowchart.NewEngineFromFile(file, optimizer.DefaultDependencies(repos.Ingredient, log),
		flowchart.WithMaxSteps(cfg.Workflows.MaxSteps))
	if err != nil {
		return err
	}
	for _, w := range engine.Validate().Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	var style *models.StyleGuidelines
	if styleCode != "" {
		s, err := repos.Style.GetByCode(cmd.Context(), styleCode)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("style %q not found", styleCode)
		}
		style = &s.Guidelines
	}

	var opts []optimizer.ContextOption
	if unitSystem != "" {
		us, ok := brewing.ParseUnitSystem(unitSystem)
		if !ok {
			return fmt.Errorf("unit system must be metric or imperial, got %q", unitSystem)
		}
		opts = append(opts, optimizer.WithTargetUnitSystem(us))
	}

	log.Info("Running workflow file", zap.String("workflow", engine.Definition().WorkflowName), zap.String("file", file))
	result := engine.ExecuteWorkflow(cmd.Context(), recipe, style, opts...)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	invalid := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		def, err := flowchart.Parse(data)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "%s: INVALID\n  %v\n", path, err)
			continue
		}

		result := flowchart.Validate(def)
		status := "OK"
		if !result.Valid {
			status = "INVALID"
			invalid++
		}
		fmt.Fprintf(out, "%s: %s (%s, %d nodes)\n", path, status, def.WorkflowName, len(def.Nodes))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d workflow(s) invalid", invalid, len(args))
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Storage.Driver != config.StorageMongoDB {
		return fmt.Errorf("seed requires storage.driver=%s, got %q", config.StorageMongoDB, cfg.Storage.Driver)
	}

	mongodb, err := database.NewMongoDB(cfg.MongoDB, log)
	if err != nil {
		return fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	if err := mongodb.Connect(cmd.Context()); err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer closeMongo(mongodb, log)

	res, err := repositories.Seed(cmd.Context(), repositories.NewProvider(mongodb), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d ingredients, %d styles (%d skipped)\n", res.Ingredients, res.Styles, res.Skipped)
	return nil
}
