// Package openingstock provides the OpeningStock document service.
package openingstock

import (
	"context"
	"fmt"
	"time"

	"posline/internal/core/id"
	"posline/internal/core/numerator"
	"posline/internal/core/tx"
	"posline/internal/domain"
	"posline/internal/domain/document"
	"posline/internal/domain/stock"
	"posline/pkg/logger"
)

const (
	// NumberPrefix is the document number prefix, e.g. OS-2026-00001.
	NumberPrefix = "OS"

	NumeratorStrategy = numerator.StrategyStrict
)

// Service provides business operations for opening stock documents.
// Opening stock adds quantity, so no availability pre-check applies,
// but every save still invalidates the session stock cache.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	cache     stock.CacheInvalidator
	hooks     *domain.HookRegistry[*OpeningStock]
}

// NewService creates an opening stock service.
func NewService(
	repo Repository,
	gen numerator.Generator,
	txManager tx.Manager,
	cache stock.CacheInvalidator,
) *Service {
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		cache:     cache,
		hooks:     domain.NewHookRegistry[*OpeningStock](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*OpeningStock] {
	return s.hooks
}

// Create validates, numbers and persists a new opening stock entry.
func (s *Service) Create(ctx context.Context, doc *OpeningStock) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotals()
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateStock(doc.Lines)

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "opening stock created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// GetByID retrieves an opening stock document with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*OpeningStock, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update saves edits to an opening stock document.
func (s *Service) Update(ctx context.Context, doc *OpeningStock) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotals()
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	original, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get original lines: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateStock(doc.Lines)
	s.invalidateStock(original)

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// Delete soft-deletes an opening stock document.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return fmt.Errorf("get lines: %w", err)
	}

	if err := s.repo.Delete(ctx, docID); err != nil {
		return err
	}

	s.invalidateStock(lines)

	if err := s.hooks.RunAfterDelete(ctx, doc); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "id", docID, "error", err)
	}

	logger.Info(ctx, "opening stock deleted", "id", docID)
	return nil
}

// List retrieves opening stock documents with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*OpeningStock], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) invalidateStock(lines []*document.LineItem) {
	if s.cache == nil {
		return
	}
	seen := make(map[id.ID]struct{}, len(lines))
	for _, l := range lines {
		if !l.HasProduct() {
			continue
		}
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		s.cache.Invalidate(l.ProductID)
	}
}
