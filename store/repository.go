package store

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"building-cost/core/reconcile"
	"building-cost/core/types"
	"building-cost/internal/errors"
)

var _ reconcile.Repository = (*Store)(nil)

// FindBuilding returns the building or nil when absent.
func (s *Store) FindBuilding(ctx context.Context, id uuid.UUID) (*types.Building, error) {
	var row buildingRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("find building", err)
	}
	b := buildingFromRow(&row)
	return &b, nil
}

func (s *Store) ListBuildings(ctx context.Context) ([]types.Building, error) {
	var rows []buildingRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list buildings", err)
	}
	out := make([]types.Building, len(rows))
	for i := range rows {
		out[i] = buildingFromRow(&rows[i])
	}
	return out, nil
}

func (s *Store) CreateBuilding(ctx context.Context, b *types.Building) error {
	if err := s.db.WithContext(ctx).Create(buildingToRow(b)).Error; err != nil {
		return errors.Persistence("create building", err)
	}
	return nil
}

func (s *Store) FindPeriod(ctx context.Context, buildingID uuid.UUID, year int) (*types.BillingPeriod, error) {
	var row periodRow
	err := s.db.WithContext(ctx).
		First(&row, "building_id = ? AND year = ?", buildingID, year).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("find period", err)
	}
	return &types.BillingPeriod{ID: row.ID, BuildingID: row.BuildingID, Year: row.Year, Name: row.Name}, nil
}

func (s *Store) CreatePeriod(ctx context.Context, p *types.BillingPeriod) error {
	row := periodRow{ID: p.ID, BuildingID: p.BuildingID, Year: p.Year, Name: p.Name}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create period", err)
	}
	return nil
}

// ListUnits returns the building's units with meters and readings
// attached, ordered by name.
func (s *Store) ListUnits(ctx context.Context, buildingID uuid.UUID) ([]types.Unit, error) {
	var rows []unitRow
	if err := s.db.WithContext(ctx).
		Where("building_id = ?", buildingID).Order("name").Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list units", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	units := make([]types.Unit, 0, len(rows))
	unitIndex := make(map[uuid.UUID]int, len(rows))
	unitIDs := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		u, err := unitFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		unitIndex[u.ID] = len(units)
		unitIDs = append(unitIDs, u.ID)
		units = append(units, u)
	}

	var meters []meterRow
	if err := s.db.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).Order("serial").Find(&meters).Error; err != nil {
		return nil, errors.Persistence("list meters", err)
	}
	if len(meters) == 0 {
		return units, nil
	}

	meterIDs := make([]uuid.UUID, len(meters))
	for i := range meters {
		meterIDs[i] = meters[i].ID
	}
	var readings []meterReadingRow
	if err := s.db.WithContext(ctx).
		Where("meter_id IN ?", meterIDs).Order("date").Find(&readings).Error; err != nil {
		return nil, errors.Persistence("list meter readings", err)
	}
	byMeter := make(map[uuid.UUID][]types.MeterReading)
	for i := range readings {
		byMeter[readings[i].MeterID] = append(byMeter[readings[i].MeterID], readingFromRow(&readings[i]))
	}

	for i := range meters {
		m := meterFromRow(&meters[i])
		m.Readings = byMeter[m.ID]
		idx := unitIndex[m.UnitID]
		units[idx].Meters = append(units[idx].Meters, m)
	}
	return units, nil
}

func (s *Store) CreateUnit(ctx context.Context, u *types.Unit) error {
	row, err := unitToRow(u)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Persistence("create unit", err)
	}
	return nil
}

func (s *Store) ListServices(ctx context.Context, buildingID uuid.UUID) ([]types.Service, error) {
	var rows []serviceRow
	if err := s.db.WithContext(ctx).
		Where("building_id = ?", buildingID).Order("name").Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list services", err)
	}
	out := make([]types.Service, len(rows))
	for i := range rows {
		out[i] = serviceFromRow(&rows[i])
	}
	return out, nil
}

func (s *Store) CreateService(ctx context.Context, svc *types.Service) error {
	if err := s.db.WithContext(ctx).Create(serviceToRow(svc)).Error; err != nil {
		return errors.Persistence("create service", err)
	}
	return nil
}

func (s *Store) FindOwnerByName(ctx context.Context, name string) (*types.Owner, error) {
	var row ownerRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("find owner", err)
	}
	return &types.Owner{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		BankAccount:    row.BankAccount,
		VariableSymbol: row.VariableSymbol,
	}, nil
}

func (s *Store) CreateOwner(ctx context.Context, o *types.Owner) error {
	row := ownerRow{
		ID:             o.ID,
		Name:           o.Name,
		Email:          o.Email,
		BankAccount:    o.BankAccount,
		VariableSymbol: o.VariableSymbol,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create owner", err)
	}
	return nil
}

func (s *Store) OwnershipExists(ctx context.Context, ownerID, unitID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ownershipRow{}).
		Where("owner_id = ? AND unit_id = ?", ownerID, unitID).Count(&count).Error
	if err != nil {
		return false, errors.Persistence("count ownerships", err)
	}
	return count > 0, nil
}

func (s *Store) CreateOwnership(ctx context.Context, o *types.Ownership) error {
	row := ownershipRow{ID: o.ID, OwnerID: o.OwnerID, UnitID: o.UnitID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create ownership", err)
	}
	return nil
}

func (s *Store) ListAdvances(ctx context.Context, periodID, unitID uuid.UUID) ([]types.AdvanceMonthly, error) {
	var rows []advanceRow
	if err := s.db.WithContext(ctx).
		Where("period_id = ? AND unit_id = ?", periodID, unitID).Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list advances", err)
	}
	out := make([]types.AdvanceMonthly, len(rows))
	for i, r := range rows {
		out[i] = types.AdvanceMonthly{
			ID: r.ID, UnitID: r.UnitID, ServiceID: r.ServiceID,
			PeriodID: r.PeriodID, Month: r.Month, Amount: r.Amount,
		}
	}
	return out, nil
}

func (s *Store) ListPayments(ctx context.Context, periodID, unitID uuid.UUID) ([]types.Payment, error) {
	var rows []paymentRow
	if err := s.db.WithContext(ctx).
		Where("period_id = ? AND unit_id = ?", periodID, unitID).Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list payments", err)
	}
	out := make([]types.Payment, len(rows))
	for i, r := range rows {
		out[i] = types.Payment{ID: r.ID, UnitID: r.UnitID, PeriodID: r.PeriodID, Date: r.Date, Amount: r.Amount}
	}
	return out, nil
}

// DeleteResultsForPeriod removes the period's results and their
// breakdown lines.
func (s *Store) DeleteResultsForPeriod(ctx context.Context, periodID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	sub := db.Model(&resultRow{}).Select("id").Where("period_id = ?", periodID)
	if err := db.Where("result_id IN (?)", sub).Delete(&resultLineRow{}).Error; err != nil {
		return errors.Persistence("delete result lines", err)
	}
	if err := db.Where("period_id = ?", periodID).Delete(&resultRow{}).Error; err != nil {
		return errors.Persistence("delete results", err)
	}
	return nil
}

func (s *Store) CreateResult(ctx context.Context, res *types.BillingResult) error {
	row, lines, err := resultToRows(res)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if err := db.Create(row).Error; err != nil {
		return errors.Persistence("create result", err)
	}
	if len(lines) > 0 {
		if err := db.Create(&lines).Error; err != nil {
			return errors.Persistence("create result lines", err)
		}
	}
	return nil
}

// ListResults returns the period's billing results with breakdown lines,
// ordered by unit.
func (s *Store) ListResults(ctx context.Context, periodID uuid.UUID) ([]types.BillingResult, error) {
	var rows []resultRow
	if err := s.db.WithContext(ctx).
		Where("period_id = ?", periodID).Order("unit_id").Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list results", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	var lines []resultLineRow
	if err := s.db.WithContext(ctx).
		Where("result_id IN ?", ids).Order("service_name").Find(&lines).Error; err != nil {
		return nil, errors.Persistence("list result lines", err)
	}
	byResult := make(map[uuid.UUID][]resultLineRow)
	for _, l := range lines {
		byResult[l.ResultID] = append(byResult[l.ResultID], l)
	}

	out := make([]types.BillingResult, 0, len(rows))
	for i := range rows {
		res, err := resultFromRows(&rows[i], byResult[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ListCosts returns the period's recorded costs.
func (s *Store) ListCosts(ctx context.Context, periodID uuid.UUID) ([]types.Cost, error) {
	var rows []costRow
	if err := s.db.WithContext(ctx).
		Where("period_id = ?", periodID).Order("date").Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list costs", err)
	}
	out := make([]types.Cost, len(rows))
	for i, r := range rows {
		out[i] = types.Cost{
			ID: r.ID, ServiceID: r.ServiceID, PeriodID: r.PeriodID,
			Amount: r.Amount, Description: r.Description, Date: r.Date,
		}
	}
	return out, nil
}

func (s *Store) CreateCost(ctx context.Context, c *types.Cost) error {
	row := costRow{
		ID: c.ID, ServiceID: c.ServiceID, PeriodID: c.PeriodID,
		Amount: c.Amount, Description: c.Description, Date: c.Date,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create cost", err)
	}
	return nil
}

// ListPersonMonths returns the period's per-month resident counts.
func (s *Store) ListPersonMonths(ctx context.Context, periodID uuid.UUID) ([]types.PersonMonth, error) {
	var rows []personMonthRow
	if err := s.db.WithContext(ctx).
		Where("period_id = ?", periodID).Find(&rows).Error; err != nil {
		return nil, errors.Persistence("list person months", err)
	}
	out := make([]types.PersonMonth, len(rows))
	for i, r := range rows {
		out[i] = types.PersonMonth{ID: r.ID, UnitID: r.UnitID, PeriodID: r.PeriodID, Month: r.Month, Count: r.Count}
	}
	return out, nil
}

func (s *Store) CreateMeter(ctx context.Context, m *types.Meter) error {
	row := meterRow{
		ID: m.ID, UnitID: m.UnitID, Type: string(m.Type),
		Serial: m.Serial, PrecomputedCost: m.PrecomputedCost,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create meter", err)
	}
	return nil
}

func (s *Store) CreateMeterReading(ctx context.Context, r *types.MeterReading) error {
	row := meterReadingRow{
		ID: r.ID, MeterID: r.MeterID, Date: r.Date,
		StartValue: r.Start, EndValue: r.End, Consumption: r.Consumption,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create meter reading", err)
	}
	return nil
}

func (s *Store) CreateAdvance(ctx context.Context, a *types.AdvanceMonthly) error {
	row := advanceRow{
		ID: a.ID, UnitID: a.UnitID, ServiceID: a.ServiceID,
		PeriodID: a.PeriodID, Month: a.Month, Amount: a.Amount,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create advance", err)
	}
	return nil
}

func (s *Store) CreatePayment(ctx context.Context, p *types.Payment) error {
	row := paymentRow{ID: p.ID, UnitID: p.UnitID, PeriodID: p.PeriodID, Date: p.Date, Amount: p.Amount}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Persistence("create payment", err)
	}
	return nil
}

// OwnersByUnit returns the building's owners keyed by unit ID. A unit
// with multiple owners keeps the first by owner name.
func (s *Store) OwnersByUnit(ctx context.Context, buildingID uuid.UUID) (map[uuid.UUID]*types.Owner, error) {
	var units []unitRow
	if err := s.db.WithContext(ctx).
		Select("id").Where("building_id = ?", buildingID).Find(&units).Error; err != nil {
		return nil, errors.Persistence("list units", err)
	}
	if len(units) == 0 {
		return map[uuid.UUID]*types.Owner{}, nil
	}
	unitIDs := make([]uuid.UUID, len(units))
	for i := range units {
		unitIDs[i] = units[i].ID
	}

	var edges []ownershipRow
	if err := s.db.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).Find(&edges).Error; err != nil {
		return nil, errors.Persistence("list ownerships", err)
	}
	if len(edges) == 0 {
		return map[uuid.UUID]*types.Owner{}, nil
	}

	ownerIDs := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ownerIDs = append(ownerIDs, e.OwnerID)
	}
	var owners []ownerRow
	if err := s.db.WithContext(ctx).
		Where("id IN ?", ownerIDs).Order("name").Find(&owners).Error; err != nil {
		return nil, errors.Persistence("list owners", err)
	}
	byID := make(map[uuid.UUID]*types.Owner, len(owners))
	for i := range owners {
		r := &owners[i]
		byID[r.ID] = &types.Owner{
			ID:             r.ID,
			Name:           r.Name,
			Email:          r.Email,
			BankAccount:    r.BankAccount,
			VariableSymbol: r.VariableSymbol,
		}
	}

	out := make(map[uuid.UUID]*types.Owner, len(edges))
	for _, e := range edges {
		owner := byID[e.OwnerID]
		if owner == nil {
			continue
		}
		if existing, ok := out[e.UnitID]; ok && existing.Name <= owner.Name {
			continue
		}
		out[e.UnitID] = owner
	}
	return out, nil
}

// WithinTx runs fn inside one database transaction. The repository view
// handed to fn shares the Store's configuration but routes through the
// transaction connection.
func (s *Store) WithinTx(ctx context.Context, fn func(reconcile.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}
