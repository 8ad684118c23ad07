package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	db *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

type ListCategoriesOutput struct {
	Body struct {
		Categories []string `json:"categories"`
	}
}

func (h *CategoryHandler) HandleEventCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	var categories []models.EventCategory
	if err := h.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list categories")
	}

	out := &ListCategoriesOutput{}
	for _, c := range categories {
		out.Body.Categories = append(out.Body.Categories, c.Name)
	}
	return out, nil
}

func (h *CategoryHandler) HandleNewsCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	var categories []models.NewsCategory
	if err := h.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list categories")
	}

	out := &ListCategoriesOutput{}
	for _, c := range categories {
		out.Body.Categories = append(out.Body.Categories, c.Name)
	}
	return out, nil
}
