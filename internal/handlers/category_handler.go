package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/services"
)

type CategoryHandler struct {
	categories *services.CategoryService
	audit      *services.AuditService
}

func NewCategoryHandler(categories *services.CategoryService, audit *services.AuditService) *CategoryHandler {
	return &CategoryHandler{categories: categories, audit: audit}
}

type categoryRequest struct {
	CategoryName string `json:"category_name" form:"category_name"`
}

// CreateCategory handles category creation
// POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Malformed request body.", nil)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), services.CategoryInput{CategoryName: req.CategoryName})
	if err != nil {
		respondServiceError(c, err, msgCategoryNotFound, "Failed to add category.")
		return
	}
	recordAudit(c, h.audit, services.ActionCreateCategory, "category", category.ID, map[string]interface{}{
		"category_name": category.CategoryName,
	})
	respondSuccess(c, http.StatusCreated, "Category added successfully.", gin.H{"category": category})
}

// UpdateCategory renames a category
// PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, msgCategoryNotFound)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Malformed request body.", nil)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, services.CategoryInput{CategoryName: req.CategoryName})
	if err != nil {
		respondServiceError(c, err, msgCategoryNotFound, "Failed to update category.")
		return
	}
	recordAudit(c, h.audit, services.ActionUpdateCategory, "category", category.ID, map[string]interface{}{
		"category_name": category.CategoryName,
	})
	respondSuccess(c, http.StatusOK, "Category updated successfully.", gin.H{"category": category})
}

// DeleteCategory removes a category together with its songs
// DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, msgCategoryNotFound)
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, msgCategoryNotFound, "Failed to delete category.")
		return
	}
	recordAudit(c, h.audit, services.ActionDeleteCategory, "category", id, nil)
	respondSuccess(c, http.StatusOK, "Category deleted successfully.", nil)
}
