package app

import (
	"context"
	"io"

	"github.com/ak/brewlab/internal/app/middleware"
	"github.com/ak/brewlab/internal/domain/services"
	"github.com/ak/brewlab/internal/optimizer"
	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxDefinitionBytes caps uploaded workflow documents
const maxDefinitionBytes = 1 << 20

// ==================== Analysis handlers ====================

// analyzeRecipe runs a workflow over the posted recipe. A workflow that fails
// at runtime still answers 200; the envelope carries error and error_kind.
func (a *Application) analyzeRecipe(c *gin.Context) {
	var req services.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, apperrors.InvalidInput(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if a.config.Server.AnalyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Server.AnalyzeTimeout)
		defer cancel()
	}

	resp, err := a.analysis.AnalyzeRecipe(ctx, req)
	if err != nil {
		a.failWith(c, err)
		return
	}

	middleware.SetAnalysis(c, resp.AnalysisID, resp.WorkflowName)
	a.logger.WithAnalysis(resp.AnalysisID).Info("Recipe analyzed",
		zap.String("workflow", resp.WorkflowName),
		zap.Bool("success", resp.Success),
		zap.Int("changes", len(resp.RecipeChanges)),
		zap.Int("steps", len(resp.ExecutionPath)),
	)
	successResponse(c, resp)
}

// ==================== Workflow handlers ====================

func (a *Application) listWorkflows(c *gin.Context) {
	workflows, err := a.analysis.ListWorkflows()
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, workflows)
}

func (a *Application) getWorkflow(c *gin.Context) {
	def, err := a.analysis.GetWorkflow(c.Param("name"))
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, def)
}

func (a *Application) validateWorkflow(c *gin.Context) {
	result, err := a.analysis.ValidateWorkflow(c.Param("name"))
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, result)
}

// validateWorkflowDefinition checks an uploaded YAML or JSON document without
// registering it.
func (a *Application) validateWorkflowDefinition(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDefinitionBytes))
	if err != nil {
		errorResponse(c, apperrors.InvalidInput("Failed to read request body"))
		return
	}
	if len(data) == 0 {
		errorResponse(c, apperrors.InvalidInput("Workflow document is required"))
		return
	}

	result, err := a.analysis.ValidateDefinition(data)
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, result)
}

func (a *Application) reloadWorkflows(c *gin.Context) {
	if err := a.analysis.ReloadWorkflows(""); err != nil {
		a.failWith(c, err)
		return
	}
	a.logger.Info("Workflows reloaded")
	a.listWorkflows(c)
}

func (a *Application) reloadWorkflow(c *gin.Context) {
	name := c.Param("name")
	if err := a.analysis.ReloadWorkflows(name); err != nil {
		a.failWith(c, err)
		return
	}
	a.logger.WithWorkflow(name).Info("Workflow reloaded")
	a.getWorkflow(c)
}

func (a *Application) listStrategies(c *gin.Context) {
	successResponse(c, optimizer.Strategies())
}

func (a *Application) listConditions(c *gin.Context) {
	successResponse(c, optimizer.Conditions())
}
