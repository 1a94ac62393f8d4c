// Package roulette implements the admin-facing roulette options CRUD.
package roulette

import (
	"context"

	"github.com/copasapp/copas-api/internal/app"
	"github.com/copasapp/copas-api/internal/db"
	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/repository"
	"github.com/copasapp/copas-api/internal/utils/pagination"
)

type Service struct {
	appCtx *app.AppContext
	repo   *repository.RouletteRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewRouletteRepository(appCtx.DB),
	}
}

// Input is the create/update payload for an option.
type Input struct {
	Name        string
	Description string
	State       bool
}

func (s *Service) Create(ctx context.Context, in Input) (*db.RouletteOption, error) {
	if in.Name == "" {
		return nil, svcErr.Validation("name is required")
	}
	option := &db.RouletteOption{
		Name:        in.Name,
		Description: in.Description,
		State:       in.State,
	}
	if err := s.repo.Create(ctx, option); err != nil {
		s.appCtx.Logger.Error("roulette insert failed", "err", err)
		return nil, err
	}
	return option, nil
}

// Page is one page of options plus the unpaginated total.
type Page struct {
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Total int64               `json:"total"`
	Data  []db.RouletteOption `json:"data"`
}

func (s *Service) List(ctx context.Context, p pagination.Params) (*Page, error) {
	options, total, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []db.RouletteOption{}
	}
	return &Page{Page: p.Page, Limit: p.Limit, Total: total, Data: options}, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*db.RouletteOption, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uint64, in Input) (*db.RouletteOption, error) {
	option, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	option.Name = in.Name
	option.Description = in.Description
	option.State = in.State
	if err := s.repo.Update(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

func (s *Service) Delete(ctx context.Context, id uint64) (*db.RouletteOption, error) {
	return s.repo.Delete(ctx, id)
}
