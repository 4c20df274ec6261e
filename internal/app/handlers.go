package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Version is overridden at build time
var Version = "0.1.0"

// readyTimeout bounds the database ping behind /ready
const readyTimeout = 3 * time.Second

// APIResponse is the standard API response format
type APIResponse struct {
	Success   bool                `json:"success"`
	Data      interface{}         `json:"data,omitempty"`
	Error     *apperrors.APIError `json:"error,omitempty"`
	Meta      *APIMeta            `json:"meta,omitempty"`
	Timestamp string              `json:"timestamp"`
}

type APIMeta struct {
	Page       int   `json:"page,omitempty"`
	PerPage    int   `json:"per_page,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func paginatedResponse(c *gin.Context, data interface{}, page, perPage int, total int64) {
	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func errorResponse(c *gin.Context, err *apperrors.APIError) {
	c.JSON(err.HTTPStatus, APIResponse{
		Success:   false,
		Error:     err,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// failWith maps a service error onto its API error and status
func (a *Application) failWith(c *gin.Context, err error) {
	apiErr := apperrors.As(err)
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		a.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	errorResponse(c, apiErr)
}

func getObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	idStr := c.Param(param)
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		errorResponse(c, apperrors.InvalidInput("Invalid ID format"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func getPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// Health and info endpoints

func (a *Application) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	if a.mongodb != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := a.mongodb.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not ready",
				"reason":    "database unavailable",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	if _, err := a.analysis.GetWorkflow(a.config.Workflows.DefaultName); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"reason":    "default workflow unavailable",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Application) apiInfo(c *gin.Context) {
	successResponse(c, gin.H{
		"name":             "brewlab",
		"version":          Version,
		"description":      "Flowchart driven beer recipe analysis and optimization",
		"default_workflow": a.config.Workflows.DefaultName,
		"storage":          a.config.Storage.Driver,
	})
}
