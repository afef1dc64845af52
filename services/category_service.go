package services

import (
	"context"
	"strings"
	"time"

	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
)

type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, st store.Store, category models.Category) (string, error)
	GetCategoriesForUser(ctx context.Context, st store.Store, userID string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, st store.Store, category models.Category) error
	DeleteCategory(ctx context.Context, st store.Store, id string) error
}

type CategoryService struct{}

func NewCategoryService() *CategoryService {
	return &CategoryService{}
}

// CreateCategory creates a category for the owner. Name uniqueness is scoped
// per owner and checked by reading all of the owner's categories first; the
// store has no unique constraint to lean on.
func (s *CategoryService) CreateCategory(ctx context.Context, st store.Store, category models.Category) (string, error) {
	if category.UserID == "" || strings.TrimSpace(category.Name) == "" {
		return "", ErrInvalidInput
	}

	existing, err := s.GetCategoriesForUser(ctx, st, category.UserID)
	if err != nil {
		return "", err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, category.Name) {
			return "", ErrCategoryExists
		}
	}

	id, err := st.PushID(ctx, categoriesRef)
	if err != nil {
		return "", err
	}
	category.ID = id
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().UnixMilli()
	}

	if err := st.Write(ctx, store.Join(categoriesRef, id), category); err != nil {
		return "", err
	}
	return id, nil
}

func (s *CategoryService) GetCategoriesForUser(ctx context.Context, st store.Store, userID string) ([]models.Category, error) {
	snaps, err := st.QueryEqual(ctx, categoriesRef, "userId", userID)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(snaps))
	for _, snap := range snaps {
		var category models.Category
		if err := snap.Decode(&category); err != nil {
			continue
		}
		category.ID = snap.Key
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, st store.Store, category models.Category) error {
	if category.ID == "" {
		return ErrInvalidInput
	}
	return st.Write(ctx, store.Join(categoriesRef, category.ID), category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, st store.Store, id string) error {
	return st.MultiWrite(ctx, map[string]interface{}{
		store.Join(categoriesRef, id): nil,
	})
}

var CategoryServiceInstance CategoryServiceInterface
