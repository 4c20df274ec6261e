package app

import (
	"strconv"
	"strings"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	"github.com/ak/brewlab/internal/domain/services"
	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ==================== Ingredient handlers ====================

func (a *Application) listIngredients(c *gin.Context) {
	page, limit := getPagination(c)
	filter := repositories.IngredientFilter{
		Type:       models.IngredientType(c.Query("type")),
		ActiveOnly: c.Query("active_only") != "false",
		Page:       page,
		Limit:      limit,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		errorResponse(c, apperrors.InvalidInput("type must be grain, hop, yeast or other"))
		return
	}

	ingredients, total, err := a.catalog.ListIngredients(c.Request.Context(), filter)
	if err != nil {
		a.failWith(c, err)
		return
	}

	paginatedResponse(c, ingredients, page, limit, total)
}

// searchIngredients exposes the substitution candidate search used by the
// optimizer strategies.
func (a *Application) searchIngredients(c *gin.Context) {
	criteria := models.SimilarityCriteria{
		Type:      models.IngredientType(c.Query("type")),
		GrainType: c.Query("grain_type"),
		YeastType: c.Query("yeast_type"),
	}
	if !criteria.Type.Valid() {
		errorResponse(c, apperrors.InvalidInput("type must be grain, hop, yeast or other"))
		return
	}
	for _, part := range strings.Split(c.Query("name"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			criteria.NameContains = append(criteria.NameContains, part)
		}
	}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			errorResponse(c, apperrors.InvalidInput("limit must be a positive integer"))
			return
		}
		criteria.Limit = n
	}

	results, err := a.catalog.SearchIngredients(c.Request.Context(), criteria)
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, results)
}

func (a *Application) getIngredient(c *gin.Context) {
	id, ok := getObjectID(c, "id")
	if !ok {
		return
	}

	ingredient, err := a.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, ingredient)
}

func (a *Application) createIngredient(c *gin.Context) {
	var req services.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, apperrors.InvalidInput(err.Error()))
		return
	}

	ingredient, err := a.catalog.CreateIngredient(c.Request.Context(), req)
	if err != nil {
		a.failWith(c, err)
		return
	}
	createdResponse(c, ingredient)
}

func (a *Application) updateIngredient(c *gin.Context) {
	id, ok := getObjectID(c, "id")
	if !ok {
		return
	}

	var req services.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, apperrors.InvalidInput(err.Error()))
		return
	}

	ingredient, err := a.catalog.UpdateIngredient(c.Request.Context(), id, req)
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, ingredient)
}

func (a *Application) deleteIngredient(c *gin.Context) {
	id, ok := getObjectID(c, "id")
	if !ok {
		return
	}

	if err := a.catalog.DeleteIngredient(c.Request.Context(), id); err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, gin.H{"message": "Ingredient deleted"})
}

// ==================== Style handlers ====================

func (a *Application) listStyles(c *gin.Context) {
	styles, err := a.catalog.ListStyles(c.Request.Context())
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, styles)
}

func (a *Application) getStyle(c *gin.Context) {
	style, err := a.catalog.GetStyle(c.Request.Context(), c.Param("code"))
	if err != nil {
		a.failWith(c, err)
		return
	}
	successResponse(c, style)
}
