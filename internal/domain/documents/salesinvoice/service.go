// Package salesinvoice provides the SalesInvoice document service.
package salesinvoice

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

// Service provides business operations for sales invoices. Saving a
// document changes real stock, so every save re-validates availability
// against live stock and invalidates the session stock cache.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	validator *stock.Validator
	cache     stock.CacheInvalidator
	hooks     *domain.HookRegistry[*SalesInvoice]
}

// NewService creates a sales invoice service.
func NewService(
	repo Repository,
	gen numerator.Generator,
	txManager tx.Manager,
	liveStock stock.Lookup,
	cache stock.CacheInvalidator,
) *Service {
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		validator: stock.NewValidator(liveStock),
		cache:     cache,
		hooks:     domain.NewHookRegistry[*SalesInvoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*SalesInvoice] {
	return s.hooks
}

// Create validates, numbers and persists a new invoice. The stock
// pre-check and the insert are not atomic with respect to other
// terminals; the backing store keeps final authority.
func (s *Service) Create(ctx context.Context, doc *SalesInvoice) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotals()
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.validator.Validate(ctx, doc.Lines, nil); err != nil {
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

	logger.Info(ctx, "sales invoice created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// GetByID retrieves an invoice with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*SalesInvoice, error) {
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

// Update re-validates stock with the persisted lines credited back,
// then saves. A version conflict surfaces as CONCURRENT_MODIFICATION
// and leaves doc untouched so the caller can retry.
func (s *Service) Update(ctx context.Context, doc *SalesInvoice) error {
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

	if err := s.validator.Validate(ctx, doc.Lines, stock.BuildCreditBack(original)); err != nil {
		return err
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

// Delete soft-deletes an invoice and releases its stock.
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

	logger.Info(ctx, "sales invoice deleted", "id", docID)
	return nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesInvoice], error) {
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
