package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"building-cost/core/types"
	"building-cost/internal/errors"
)

// Row models mirror the domain types one table each. Nested collections
// that are never queried individually (unit parameters, monthly arrays,
// embedded readings) are stored as JSON text columns; everything the
// reconciler or calculator filters on gets its own column.

type buildingRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Street      string
	HouseNumber string
	City        string
	BankAccount string
}

func (buildingRow) TableName() string { return "buildings" }

type unitRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuildingID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Name             string    `gorm:"not null"`
	ShareNumerator   float64
	ShareDenominator float64
	Area             float64
	Residents        int
	Parameters       string // JSON object of named numeric attributes
}

func (unitRow) TableName() string { return "units" }

type meterRow struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Type            string
	Serial          string
	PrecomputedCost *float64
}

func (meterRow) TableName() string { return "meters" }

type meterReadingRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeterID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Date        time.Time
	StartValue  float64 `gorm:"column:start_value"`
	EndValue    float64 `gorm:"column:end_value"`
	Consumption *float64
}

func (meterReadingRow) TableName() string { return "meter_readings" }

type serviceRow struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuildingID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name          string    `gorm:"not null"`
	Code          string
	UnitOfMeasure string
	Methodology   string `gorm:"not null"`
	FixedAmount   *float64
	Divisor       *float64
	PricePerUnit  *float64
	ParameterKey  string
	FormulaText   string
	MeterType     string
}

func (serviceRow) TableName() string { return "services" }

type costRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	PeriodID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Amount      float64
	Description string
	Date        time.Time
}

func (costRow) TableName() string { return "costs" }

type periodRow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuildingID uuid.UUID `gorm:"type:uuid;index;not null"`
	Year       int       `gorm:"index;not null"`
	Name       string
}

func (periodRow) TableName() string { return "billing_periods" }

type ownerRow struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"index;not null"`
	Email          string
	BankAccount    string
	VariableSymbol string
}

func (ownerRow) TableName() string { return "owners" }

type ownershipRow struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null"`
	UnitID  uuid.UUID `gorm:"type:uuid;index;not null"`
}

func (ownershipRow) TableName() string { return "ownerships" }

type advanceRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID *uuid.UUID
	PeriodID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Month     int
	Amount    float64
}

func (advanceRow) TableName() string { return "advances_monthly" }

type paymentRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitID   uuid.UUID `gorm:"type:uuid;index;not null"`
	PeriodID uuid.UUID `gorm:"type:uuid;index;not null"`
	Date     time.Time
	Amount   float64
}

func (paymentRow) TableName() string { return "payments" }

type personMonthRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitID   uuid.UUID `gorm:"type:uuid;index;not null"`
	PeriodID uuid.UUID `gorm:"type:uuid;index;not null"`
	Month    int
	Count    int
}

func (personMonthRow) TableName() string { return "person_months" }

type resultRow struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	PeriodID        uuid.UUID `gorm:"type:uuid;index;not null"`
	UnitID          uuid.UUID `gorm:"type:uuid;index;not null"`
	TotalCost       float64
	TotalPrescribed float64
	TotalPaid       float64
	Balance         float64
	Prescribed      string // JSON array of 12 amounts
	Paid            string // JSON array of 12 amounts
}

func (resultRow) TableName() string { return "billing_results" }

type resultLineRow struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ResultID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID     uuid.UUID `gorm:"type:uuid"`
	ServiceName   string
	BuildingTotal float64
	UnitCost      float64
	UnitAdvance   float64
	UnitBalance   float64
	BasisLabel    string
	BuildingUnits float64
	PricePerUnit  float64
	UnitUnits     float64
	ShareText     string
	Readings      string // JSON array of embedded reading snapshots
}

func (resultLineRow) TableName() string { return "billing_result_services" }

func allModels() []interface{} {
	return []interface{}{
		&buildingRow{}, &unitRow{}, &meterRow{}, &meterReadingRow{},
		&serviceRow{}, &costRow{}, &periodRow{}, &ownerRow{},
		&ownershipRow{}, &advanceRow{}, &paymentRow{}, &personMonthRow{},
		&resultRow{}, &resultLineRow{},
	}
}

// --- conversions ---

func buildingToRow(b *types.Building) *buildingRow {
	return &buildingRow{
		ID:          b.ID,
		Name:        b.Name,
		Street:      b.Street,
		HouseNumber: b.HouseNumber,
		City:        b.City,
		BankAccount: b.BankAccount,
	}
}

func buildingFromRow(r *buildingRow) types.Building {
	return types.Building{
		ID:          r.ID,
		Name:        r.Name,
		Street:      r.Street,
		HouseNumber: r.HouseNumber,
		City:        r.City,
		BankAccount: r.BankAccount,
	}
}

func unitToRow(u *types.Unit) (*unitRow, error) {
	params := ""
	if len(u.Parameters) > 0 {
		raw, err := json.Marshal(u.Parameters)
		if err != nil {
			return nil, errors.Persistence("encode unit parameters", err)
		}
		params = string(raw)
	}
	return &unitRow{
		ID:               u.ID,
		BuildingID:       u.BuildingID,
		Name:             u.Name,
		ShareNumerator:   u.ShareNumerator,
		ShareDenominator: u.ShareDenominator,
		Area:             u.Area,
		Residents:        u.Residents,
		Parameters:       params,
	}, nil
}

func unitFromRow(r *unitRow) (types.Unit, error) {
	u := types.Unit{
		ID:               r.ID,
		BuildingID:       r.BuildingID,
		Name:             r.Name,
		ShareNumerator:   r.ShareNumerator,
		ShareDenominator: r.ShareDenominator,
		Area:             r.Area,
		Residents:        r.Residents,
	}
	if r.Parameters != "" {
		if err := json.Unmarshal([]byte(r.Parameters), &u.Parameters); err != nil {
			return u, errors.Persistence("decode unit parameters", err)
		}
	}
	return u, nil
}

func meterFromRow(r *meterRow) types.Meter {
	return types.Meter{
		ID:              r.ID,
		UnitID:          r.UnitID,
		Type:            types.MeterType(r.Type),
		Serial:          r.Serial,
		PrecomputedCost: r.PrecomputedCost,
	}
}

func readingFromRow(r *meterReadingRow) types.MeterReading {
	return types.MeterReading{
		ID:          r.ID,
		MeterID:     r.MeterID,
		Date:        r.Date,
		Start:       r.StartValue,
		End:         r.EndValue,
		Consumption: r.Consumption,
	}
}

func serviceToRow(s *types.Service) *serviceRow {
	return &serviceRow{
		ID:            s.ID,
		BuildingID:    s.BuildingID,
		Name:          s.Name,
		Code:          s.Code,
		UnitOfMeasure: s.UnitOfMeasure,
		Methodology:   string(s.Methodology),
		FixedAmount:   s.FixedAmount,
		Divisor:       s.Divisor,
		PricePerUnit:  s.PricePerUnit,
		ParameterKey:  s.ParameterKey,
		FormulaText:   s.FormulaText,
		MeterType:     string(s.MeterType),
	}
}

func serviceFromRow(r *serviceRow) types.Service {
	return types.Service{
		ID:            r.ID,
		BuildingID:    r.BuildingID,
		Name:          r.Name,
		Code:          r.Code,
		UnitOfMeasure: r.UnitOfMeasure,
		Methodology:   types.Methodology(r.Methodology),
		FixedAmount:   r.FixedAmount,
		Divisor:       r.Divisor,
		PricePerUnit:  r.PricePerUnit,
		ParameterKey:  r.ParameterKey,
		FormulaText:   r.FormulaText,
		MeterType:     types.MeterType(r.MeterType),
	}
}

func resultToRows(res *types.BillingResult) (*resultRow, []resultLineRow, error) {
	prescribed, err := json.Marshal(res.Prescribed)
	if err != nil {
		return nil, nil, errors.Persistence("encode prescribed months", err)
	}
	paid, err := json.Marshal(res.Paid)
	if err != nil {
		return nil, nil, errors.Persistence("encode paid months", err)
	}
	row := &resultRow{
		ID:              res.ID,
		PeriodID:        res.PeriodID,
		UnitID:          res.UnitID,
		TotalCost:       res.TotalCost,
		TotalPrescribed: res.TotalPrescribed,
		TotalPaid:       res.TotalPaid,
		Balance:         res.Balance,
		Prescribed:      string(prescribed),
		Paid:            string(paid),
	}

	lines := make([]resultLineRow, 0, len(res.Services))
	for _, s := range res.Services {
		readings := ""
		if len(s.Readings) > 0 {
			raw, err := json.Marshal(s.Readings)
			if err != nil {
				return nil, nil, errors.Persistence("encode line readings", err)
			}
			readings = string(raw)
		}
		lines = append(lines, resultLineRow{
			ID:            s.ID,
			ResultID:      res.ID,
			ServiceID:     s.ServiceID,
			ServiceName:   s.ServiceName,
			BuildingTotal: s.BuildingTotal,
			UnitCost:      s.UnitCost,
			UnitAdvance:   s.UnitAdvance,
			UnitBalance:   s.UnitBalance,
			BasisLabel:    s.BasisLabel,
			BuildingUnits: s.BuildingUnits,
			PricePerUnit:  s.PricePerUnit,
			UnitUnits:     s.UnitUnits,
			ShareText:     s.ShareText,
			Readings:      readings,
		})
	}
	return row, lines, nil
}

func resultFromRows(row *resultRow, lines []resultLineRow) (types.BillingResult, error) {
	res := types.BillingResult{
		ID:              row.ID,
		PeriodID:        row.PeriodID,
		UnitID:          row.UnitID,
		TotalCost:       row.TotalCost,
		TotalPrescribed: row.TotalPrescribed,
		TotalPaid:       row.TotalPaid,
		Balance:         row.Balance,
	}
	if row.Prescribed != "" {
		if err := json.Unmarshal([]byte(row.Prescribed), &res.Prescribed); err != nil {
			return res, errors.Persistence("decode prescribed months", err)
		}
	}
	if row.Paid != "" {
		if err := json.Unmarshal([]byte(row.Paid), &res.Paid); err != nil {
			return res, errors.Persistence("decode paid months", err)
		}
	}
	for i := range lines {
		l := &lines[i]
		line := types.BillingServiceCost{
			ID:            l.ID,
			ResultID:      l.ResultID,
			ServiceID:     l.ServiceID,
			ServiceName:   l.ServiceName,
			BuildingTotal: l.BuildingTotal,
			UnitCost:      l.UnitCost,
			UnitAdvance:   l.UnitAdvance,
			UnitBalance:   l.UnitBalance,
			BasisLabel:    l.BasisLabel,
			BuildingUnits: l.BuildingUnits,
			PricePerUnit:  l.PricePerUnit,
			UnitUnits:     l.UnitUnits,
			ShareText:     l.ShareText,
		}
		if l.Readings != "" {
			if err := json.Unmarshal([]byte(l.Readings), &line.Readings); err != nil {
				return res, errors.Persistence("decode line readings", err)
			}
		}
		res.Services = append(res.Services, line)
	}
	return res, nil
}
