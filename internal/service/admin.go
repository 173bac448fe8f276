package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/utafrali/catalog/internal/admin"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/pagination"
)

// AdminService serves the read-only back-office listings.
type AdminService struct {
	registry *admin.Registry
	repo     repository.AdminRepository
}

// NewAdminService creates a new admin service.
func NewAdminService(registry *admin.Registry, repo repository.AdminRepository) *AdminService {
	return &AdminService{registry: registry, repo: repo}
}

// Models describes every registered model.
func (s *AdminService) Models() []admin.Summary {
	models := s.registry.Models()
	out := make([]admin.Summary, len(models))
	for i, m := range models {
		out[i] = m.Summary()
	}
	return out
}

// List returns one page of the named model's rows. search only applies to
// models with search fields.
func (s *AdminService) List(ctx context.Context, model, search string, page pagination.Params) (*pagination.Result[admin.Row], error) {
	m, ok := s.registry.Get(model)
	if !ok {
		return nil, apperrors.NotFound("admin model", model)
	}

	rows, total, err := s.repo.List(ctx, m, strings.TrimSpace(search), page)
	if err != nil {
		return nil, fmt.Errorf("admin list %s: %w", m.Name, err)
	}

	result := pagination.NewResult(rows, total, page)
	return &result, nil
}
