package reconcile

import (
	"context"

	"github.com/google/uuid"

	"building-cost/core/types"
)

// Repository is the narrow persistence contract the reconciler consumes.
// It is entity-shaped CRUD plus simple filtered lookups; no query
// language is assumed. store.Repository satisfies it.
type Repository interface {
	FindBuilding(ctx context.Context, id uuid.UUID) (*types.Building, error)
	ListBuildings(ctx context.Context) ([]types.Building, error)
	CreateBuilding(ctx context.Context, b *types.Building) error

	FindPeriod(ctx context.Context, buildingID uuid.UUID, year int) (*types.BillingPeriod, error)
	CreatePeriod(ctx context.Context, p *types.BillingPeriod) error

	ListUnits(ctx context.Context, buildingID uuid.UUID) ([]types.Unit, error)
	CreateUnit(ctx context.Context, u *types.Unit) error

	ListServices(ctx context.Context, buildingID uuid.UUID) ([]types.Service, error)
	CreateService(ctx context.Context, s *types.Service) error

	FindOwnerByName(ctx context.Context, name string) (*types.Owner, error)
	CreateOwner(ctx context.Context, o *types.Owner) error
	OwnershipExists(ctx context.Context, ownerID, unitID uuid.UUID) (bool, error)
	CreateOwnership(ctx context.Context, o *types.Ownership) error

	ListAdvances(ctx context.Context, periodID, unitID uuid.UUID) ([]types.AdvanceMonthly, error)
	ListPayments(ctx context.Context, periodID, unitID uuid.UUID) ([]types.Payment, error)

	DeleteResultsForPeriod(ctx context.Context, periodID uuid.UUID) error
	CreateResult(ctx context.Context, r *types.BillingResult) error

	// WithinTx runs fn inside one transaction scope. The destructive
	// delete of prior period results and the inserts that replace them
	// always share a scope so a reader never observes a mixed state.
	WithinTx(ctx context.Context, fn func(Repository) error) error
}
