package flowchart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/optimizer"
	"github.com/ak/brewlab/internal/pkg/logger"
	"go.uber.org/zap"
)

// DefaultMaxSteps bounds every run so cyclic workflows terminate
const DefaultMaxSteps = 100

// Step is one entry of a run's execution path
type Step struct {
	NodeID   string         `json:"node_id"`
	NodeType NodeType       `json:"node_type"`
	Data     map[string]any `json:"data"`
}

// Result is the outcome of one workflow run
type Result struct {
	Success        bool                  `json:"success"`
	WorkflowName   string                `json:"workflow_name"`
	Changes        []models.ChangeRecord `json:"changes"`
	ExecutionPath  []Step                `json:"execution_path"`
	InitialMetrics models.Metrics        `json:"initial_metrics"`
	FinalMetrics   models.Metrics        `json:"final_metrics"`
	FinalRecipe    *models.Recipe        `json:"final_recipe,omitempty"`
	Error          string                `json:"error,omitempty"`
	ErrorKind      ErrorKind             `json:"error_kind,omitempty"`
	RolledBack     bool                  `json:"rolled_back,omitempty"`
}

// Engine executes one workflow definition. It holds no per-run state and
// may be shared across goroutines.
type Engine struct {
	def      *Definition
	nodes    map[string]Node
	deps     optimizer.Dependencies
	maxSteps int
	metrics  *Metrics
	log      *logger.Logger
}

// Option configures an Engine
type Option func(e *Engine)

// WithMaxSteps overrides DefaultMaxSteps
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithMetrics records runs into m
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine builds the node graph for def. Nodes of unknown type are
// reported together in a *ConfigError.
func NewEngine(def *Definition, deps optimizer.Dependencies, opts ...Option) (*Engine, error) {
	if def == nil {
		return nil, &ConfigError{Problems: []string{"workflow definition is nil"}}
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	e := &Engine{
		def:      def,
		nodes:    make(map[string]Node, len(def.Nodes)),
		deps:     deps,
		maxSteps: DefaultMaxSteps,
		log:      log.WithComponent("flowchart").WithWorkflow(def.WorkflowName),
	}
	for _, opt := range opts {
		opt(e)
	}

	var problems []string
	for _, id := range def.NodeIDs() {
		n, err := NewNode(id, def.Nodes[id])
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		e.nodes[id] = n
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Workflow: def.WorkflowName, Problems: problems}
	}
	return e, nil
}

// Definition returns the workflow the engine runs
func (e *Engine) Definition() *Definition {
	return e.def
}

// Validate runs the structural checks on the engine's definition
func (e *Engine) Validate() ValidationResult {
	return Validate(e.def)
}

// ExecuteWorkflow runs the workflow over a copy of recipe. The caller's
// recipe is never modified. A failed run is rolled back: the result carries
// the changes attempted but no final recipe.
func (e *Engine) ExecuteWorkflow(ctx context.Context, recipe *models.Recipe, style *models.StyleGuidelines, opts ...optimizer.ContextOption) (res *Result) {
	started := time.Now()
	res = &Result{WorkflowName: e.def.WorkflowName}
	if recipe == nil {
		return e.fail(res, nil, ErrorKindInternal, "recipe is required", started)
	}

	// rc stays nil if building the context panics
	var rc *optimizer.RecipeContext
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Workflow panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = e.fail(res, rc, ErrorKindInternal, "internal error during workflow execution", started)
		}
	}()

	working := recipe.Clone()
	rc = optimizer.NewRecipeContext(&working, style, e.deps, opts...)
	res.InitialMetrics = rc.Metrics

	current := e.def.StartNode
	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			return e.fail(res, rc, ErrorKindCanceled, fmt.Sprintf("workflow canceled: %v", err), started)
		}
		if steps >= e.maxSteps {
			return e.fail(res, rc, ErrorKindStepLimit, ErrStepLimitExceeded.Error(), started)
		}

		node, ok := e.nodes[current]
		if !ok {
			return e.fail(res, rc, ErrorKindNode, fmt.Sprintf("node %q not found", current), started)
		}

		out, err := node.Execute(ctx, rc)
		if err != nil {
			kind := ErrorKindNode
			if errors.Is(err, optimizer.ErrUnknownCondition) {
				kind = ErrorKindCondition
			}
			return e.fail(res, rc, kind, fmt.Sprintf("node %s: %v", node.ID(), err), started)
		}

		res.ExecutionPath = append(res.ExecutionPath, Step{NodeID: node.ID(), NodeType: node.Type(), Data: out.Data})
		e.metrics.observeStep(e.def.WorkflowName, node.Type())
		if node.Type() == NodeTypeAction {
			e.metrics.observeChanges(e.def.WorkflowName, e.def.Nodes[node.ID()].Strategy, len(out.Changes))
		}
		e.log.Debug("Executed node",
			zap.String("node_id", node.ID()),
			zap.String("node_type", string(node.Type())),
			zap.Int("changes", len(out.Changes)),
			zap.String("next", out.NextNodeID))

		if out.StopExecution || out.NextNodeID == "" {
			break
		}
		current = out.NextNodeID
	}

	res.Success = true
	res.Changes = rc.Changes()
	res.FinalMetrics = rc.Metrics
	res.FinalRecipe = &working
	e.metrics.observeRun(e.def.WorkflowName, ErrorKindNone, time.Since(started))
	return res
}

func (e *Engine) fail(res *Result, rc *optimizer.RecipeContext, kind ErrorKind, msg string, started time.Time) *Result {
	res.Success = false
	res.Error = msg
	res.ErrorKind = kind
	res.RolledBack = true
	res.FinalRecipe = nil
	res.FinalMetrics = res.InitialMetrics
	if rc != nil {
		res.Changes = rc.Changes()
	}
	e.log.Error("Workflow failed",
		zap.String("error_kind", string(kind)),
		zap.String("error", msg),
		zap.Int("steps", len(res.ExecutionPath)))
	e.metrics.observeRun(e.def.WorkflowName, kind, time.Since(started))
	return res
}
