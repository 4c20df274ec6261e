package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	"github.com/ak/brewlab/internal/flowchart"
	"github.com/ak/brewlab/internal/optimizer"
	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"github.com/ak/brewlab/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisService runs workflows over recipes and manages the workflow catalog
type AnalysisService interface {
	AnalyzeRecipe(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
	ListWorkflows() ([]WorkflowSummary, error)
	GetWorkflow(name string) (*flowchart.Definition, error)
	ValidateWorkflow(name string) (*flowchart.ValidationResult, error)
	ValidateDefinition(data []byte) (*flowchart.ValidationResult, error)
	ReloadWorkflows(name string) error
}

type AnalyzeRequest struct {
	Recipe          models.Recipe           `json:"recipe" binding:"required"`
	StyleID         string                  `json:"style_id"`
	StyleGuidelines *models.StyleGuidelines `json:"style_guidelines"` // Inline alternative to style_id
	UnitSystem      string                  `json:"unit_system"`      // metric or imperial
	WorkflowName    string                  `json:"workflow_name"`
}

// MetricAnalysis compares one metric against its style range
type MetricAnalysis struct {
	Value   float64  `json:"value"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Target  *float64 `json:"target,omitempty"`
	InRange bool     `json:"in_range"`
}

type AnalyzeResponse struct {
	AnalysisID            string                    `json:"analysis_id"`
	WorkflowName          string                    `json:"workflow_name"`
	Success               bool                      `json:"success"`
	CurrentMetrics        models.Metrics            `json:"current_metrics"`
	StyleAnalysis         map[string]MetricAnalysis `json:"style_analysis,omitempty"`
	OptimizedRecipe       *models.Recipe            `json:"optimized_recipe,omitempty"`
	OptimizedMetrics      *models.Metrics           `json:"optimized_metrics,omitempty"`
	RecipeChanges         []models.ChangeRecord     `json:"recipe_changes"`
	OptimizationPerformed bool                      `json:"optimization_performed"`
	ExecutionPath         []flowchart.Step          `json:"execution_path"`
	Error                 string                    `json:"error,omitempty"`
	ErrorKind             flowchart.ErrorKind       `json:"error_kind,omitempty"`
	RolledBack            bool                      `json:"rolled_back,omitempty"`
	AnalysisTimestamp     time.Time                 `json:"analysis_timestamp"`
}

type WorkflowSummary struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Nodes       int    `json:"nodes"`
}

// AnalysisConfig tunes workflow execution
type AnalysisConfig struct {
	DefaultWorkflow string
	MaxSteps        int
}

type analysisService struct {
	loader      *flowchart.Loader
	styles      repositories.StyleRepository
	ingredients repositories.IngredientRepository
	metrics     *flowchart.Metrics
	cfg         AnalysisConfig
	logger      *logger.Logger

	// engines are cached per definition; a reload swaps the definition and so the key
	mu      sync.Mutex
	engines map[*flowchart.Definition]*flowchart.Engine
}

// NewAnalysisService creates a new analysis service. metrics may be nil.
func NewAnalysisService(
	loader *flowchart.Loader,
	styles repositories.StyleRepository,
	ingredients repositories.IngredientRepository,
	metrics *flowchart.Metrics,
	cfg AnalysisConfig,
	log *logger.Logger,
) AnalysisService {
	if cfg.DefaultWorkflow == "" {
		cfg.DefaultWorkflow = "recipe_optimization"
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = flowchart.DefaultMaxSteps
	}
	if log == nil {
		log = logger.Global()
	}
	return &analysisService{
		loader:      loader,
		styles:      styles,
		ingredients: ingredients,
		metrics:     metrics,
		cfg:         cfg,
		logger:      log.WithComponent("analysis_service"),
		engines:     make(map[*flowchart.Definition]*flowchart.Engine),
	}
}

func (s *analysisService) AnalyzeRecipe(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if err := models.ValidateRecipe(&req.Recipe); err != nil {
		var verr *models.RecipeValidationError
		if errors.As(err, &verr) {
			return nil, apperrors.Validation("invalid recipe").WithDetails(verr.Problems)
		}
		return nil, apperrors.Validation(err.Error())
	}

	var target brewing.UnitSystem
	if req.UnitSystem != "" {
		us, ok := brewing.ParseUnitSystem(req.UnitSystem)
		if !ok {
			return nil, apperrors.InvalidInput("unit_system must be metric or imperial")
		}
		target = us
	}

	style, err := s.resolveStyle(ctx, req)
	if err != nil {
		return nil, err
	}

	name := req.WorkflowName
	if name == "" {
		name = s.cfg.DefaultWorkflow
	}
	engine, err := s.engine(name)
	if err != nil {
		return nil, err
	}

	analysisID := uuid.NewString()
	log := s.logger.WithAnalysis(analysisID).WithWorkflow(name)
	log.Info("Analyzing recipe", zap.String("recipe", req.Recipe.Name), zap.String("style", req.StyleID))

	var opts []optimizer.ContextOption
	if target != "" {
		opts = append(opts, optimizer.WithTargetUnitSystem(target))
	}
	result := engine.ExecuteWorkflow(ctx, &req.Recipe, style, opts...)

	resp := &AnalyzeResponse{
		AnalysisID:            analysisID,
		WorkflowName:          name,
		Success:               result.Success,
		CurrentMetrics:        result.InitialMetrics,
		StyleAnalysis:         styleAnalysis(result.InitialMetrics, style),
		RecipeChanges:         result.Changes,
		OptimizationPerformed: result.Success,
		ExecutionPath:         result.ExecutionPath,
		Error:                 result.Error,
		ErrorKind:             result.ErrorKind,
		RolledBack:            result.RolledBack,
		AnalysisTimestamp:     time.Now().UTC(),
	}
	if resp.RecipeChanges == nil {
		resp.RecipeChanges = []models.ChangeRecord{}
	}
	if result.Success {
		resp.OptimizedRecipe = result.FinalRecipe
		final := result.FinalMetrics
		resp.OptimizedMetrics = &final
	}

	log.Info("Analysis finished",
		zap.Bool("success", result.Success),
		zap.Int("changes", len(result.Changes)),
		zap.Int("steps", len(result.ExecutionPath)))
	return resp, nil
}

func (s *analysisService) resolveStyle(ctx context.Context, req AnalyzeRequest) (*models.StyleGuidelines, error) {
	if req.StyleID == "" {
		return req.StyleGuidelines, nil
	}
	style, err := s.styles.GetByCode(ctx, strings.TrimSpace(req.StyleID))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if style == nil {
		return nil, apperrors.StyleNotFound(req.StyleID)
	}
	return &style.Guidelines, nil
}

// engine returns the cached engine for a workflow's current definition
func (s *analysisService) engine(name string) (*flowchart.Engine, error) {
	def, err := s.definition(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[def]; ok {
		return e, nil
	}
	deps := optimizer.DefaultDependencies(s.ingredients, s.logger)
	e, err := flowchart.NewEngine(def, deps,
		flowchart.WithMaxSteps(s.cfg.MaxSteps),
		flowchart.WithMetrics(s.metrics))
	if err != nil {
		return nil, workflowError(name, err)
	}
	s.engines[def] = e
	return e, nil
}

func (s *analysisService) definition(name string) (*flowchart.Definition, error) {
	def, err := s.loader.Load(name)
	if err != nil {
		return nil, workflowError(name, err)
	}
	return def, nil
}

func workflowError(name string, err error) error {
	var cfgErr *flowchart.ConfigError
	switch {
	case errors.Is(err, flowchart.ErrWorkflowNotFound):
		return apperrors.WorkflowNotFound(name)
	case errors.As(err, &cfgErr):
		return apperrors.WorkflowInvalid(name, cfgErr.Problems)
	}
	return apperrors.Internal(err.Error())
}

func (s *analysisService) ListWorkflows() ([]WorkflowSummary, error) {
	names, err := s.loader.List()
	if err != nil {
		return nil, apperrors.Internal(err.Error())
	}
	out := make([]WorkflowSummary, 0, len(names))
	for _, name := range names {
		def, err := s.loader.Load(name)
		if err != nil {
			s.logger.Warn("Skipping unloadable workflow", zap.String("workflow", name), zap.Error(err))
			continue
		}
		out = append(out, WorkflowSummary{
			Name:        name,
			Version:     def.Version,
			Description: strings.TrimSpace(def.Description),
			Nodes:       len(def.Nodes),
		})
	}
	return out, nil
}

func (s *analysisService) GetWorkflow(name string) (*flowchart.Definition, error) {
	return s.definition(name)
}

func (s *analysisService) ValidateWorkflow(name string) (*flowchart.ValidationResult, error) {
	def, err := s.definition(name)
	if err != nil {
		return nil, err
	}
	v := flowchart.Validate(def)
	return &v, nil
}

// ValidateDefinition checks an uploaded workflow without registering it.
// Parse problems are reported as validation errors, not as a failed call.
func (s *analysisService) ValidateDefinition(data []byte) (*flowchart.ValidationResult, error) {
	def, err := flowchart.Parse(data)
	if err != nil {
		var cfgErr *flowchart.ConfigError
		if errors.As(err, &cfgErr) {
			return &flowchart.ValidationResult{Valid: false, Errors: cfgErr.Problems}, nil
		}
		return nil, apperrors.InvalidInput(err.Error())
	}
	v := flowchart.Validate(def)
	return &v, nil
}

// ReloadWorkflows reloads one workflow, or all of them when name is empty
func (s *analysisService) ReloadWorkflows(name string) error {
	if name == "" {
		err := s.loader.ReloadAll()
		s.mu.Lock()
		s.engines = make(map[*flowchart.Definition]*flowchart.Engine)
		s.mu.Unlock()
		if err != nil {
			return apperrors.New(apperrors.ErrWorkflowInvalid, "some workflows failed to reload", http.StatusUnprocessableEntity).WithDetails(err.Error())
		}
		return nil
	}
	old, _ := s.loader.Load(name)
	if _, err := s.loader.Reload(name); err != nil {
		return workflowError(name, err)
	}
	if old != nil {
		s.mu.Lock()
		delete(s.engines, old)
		s.mu.Unlock()
	}
	return nil
}

func styleAnalysis(m models.Metrics, style *models.StyleGuidelines) map[string]MetricAnalysis {
	if style == nil || len(style.Ranges) == 0 {
		return nil
	}
	out := make(map[string]MetricAnalysis, len(models.AllMetrics))
	for _, metric := range models.AllMetrics {
		v, _ := m.Value(metric)
		a := MetricAnalysis{Value: v, InRange: true}
		if r, ok := style.Range(metric); ok {
			a.Min = models.Float(r.Min)
			a.Max = models.Float(r.Max)
			a.Target = models.Float(r.Midpoint())
			a.InRange = r.Contains(v)
		}
		out[metric] = a
	}
	return out
}
