package product

import (
	"context"
	"fmt"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/core/tx"
	"posline/internal/domain"
	"posline/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Product]
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Product](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Product] {
	return s.hooks
}

// Create creates a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.hooks.RunBeforeCreate(ctx, p); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, p); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	return nil
}

// GetByID retrieves a product with its alternate units.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, s.normalizeGetErr(err, productID.String())
	}

	if err := s.loadUnits(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByCode retrieves a product by its catalog code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, s.normalizeGetErr(err, code)
	}

	if err := s.loadUnits(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByTag resolves a scanned barcode/serial tag to a product and, when the
// tag belongs to an alternate unit, that unit's id.
func (s *Service) FindByTag(ctx context.Context, tag string) (*Product, *id.ID, error) {
	if tag == "" {
		return nil, nil, apperror.NewValidation("tag is required")
	}

	p, unitID, err := s.repo.FindByTag(ctx, tag)
	if err != nil {
		return nil, nil, s.normalizeGetErr(err, tag)
	}

	if err := s.loadUnits(ctx, p); err != nil {
		return nil, nil, err
	}
	return p, unitID, nil
}

// Update updates an existing product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.hooks.RunBeforeUpdate(ctx, p); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a product.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.repo.SetDeletionMark(ctx, productID, true)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// GetTree retrieves the product group hierarchy starting at rootID.
func (s *Service) GetTree(ctx context.Context, rootID *id.ID) ([]*Product, error) {
	return s.repo.GetTree(ctx, rootID)
}

func (s *Service) loadUnits(ctx context.Context, p *Product) error {
	units, err := s.repo.GetAlternateUnits(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("get alternate units: %w", err)
	}
	p.AlternateUnits = units
	return nil
}

func (s *Service) normalizeGetErr(err error, idOrCode any) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("product", idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", "product").WithDetail("id", idOrCode)
}
