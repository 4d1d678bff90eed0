package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"building-cost/internal/errors"

	"building-cost/core/numeric"
	"building-cost/core/textnorm"
)

// rowLabels are normalized service-name values that mark header/footer
// rows leaking into the data, never real services.
var rowLabels = map[string]struct{}{
	"total":    {},
	"subtotal": {},
	"sum":      {},
	"summary":  {},
	"result":   {},
	"celkem":   {},
	"spolu":    {},
}

// Parse turns wire rows into the typed per-unit model. Single malformed
// rows become warnings; Parse fails only structurally, on a wholly empty
// source. Missing required columns are rejected by the table decoders
// before rows exist.
func Parse(rows []Row) (*Parsed, error) {
	if len(rows) == 0 {
		return nil, errors.Parsing("empty snapshot source", nil)
	}

	p := &Parsed{}
	byName := make(map[string]*UnitSnapshot)
	pendingMeters := make(map[string][]MeterSnapshot)

	for i, row := range rows {
		ref := rowRef(row, i)

		if !row.DataType.Known() {
			p.warnf("%s: unknown data type %q, row dropped", ref, string(row.DataType))
			continue
		}

		if row.DataType == DataBuildingInfo {
			p.Building = &BuildingInfo{
				BankAccount: numeric.CleanText(row.Vals[0]),
				Address:     numeric.CleanText(row.Vals[1]),
				Name:        numeric.CleanText(row.Vals[2]),
			}
			continue
		}

		unitName := strings.TrimSpace(row.UnitName)
		if unitName == "" || unitName == BuildingUnitName {
			p.warnf("%s: row has no unit name, dropped", ref)
			continue
		}

		unit := byName[unitName]
		if unit == nil {
			unit = &UnitSnapshot{Name: unitName}
			byName[unitName] = unit
			p.Units = append(p.Units, unit)
		}

		switch row.DataType {
		case DataInfo:
			parseInfo(unit, row)
		case DataCost:
			if cost, ok := parseCost(p, row, ref); ok {
				unit.Costs = append(unit.Costs, cost)
			}
		case DataMeter:
			pendingMeters[unitName] = append(pendingMeters[unitName], parseMeter(row))
		case DataPaymentMonthly:
			unit.PaidLabel = row.Key
			unit.PaidMonths = parseMonths(row)
		case DataAdvanceMonthly:
			unit.PrescribedLabel = row.Key
			unit.PrescribedMonths = parseMonths(row)
		case DataFixedPayment:
			unit.FixedPayments = append(unit.FixedPayments, FixedPayment{
				Name:   numeric.CleanText(row.Key),
				Amount: numeric.ParseFloatDefault(row.Vals[0], 0),
			})
		}
	}

	for _, unit := range p.Units {
		attachMeters(p, unit, pendingMeters[unit.Name])
	}

	return p, nil
}

func (p *Parsed) warnf(format string, args ...interface{}) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}

func rowRef(row Row, index int) string {
	if row.SourceRow != "" {
		return "source row " + row.SourceRow
	}
	return fmt.Sprintf("row %d", index+1)
}

func parseInfo(unit *UnitSnapshot, row Row) {
	unit.OwnerName = numeric.CleanText(row.Vals[0])
	unit.VariableSymbol = numeric.CleanText(row.Vals[1])
	unit.Email = numeric.CleanText(row.Vals[2])
	if v, ok := numeric.ParseFloat(row.Vals[3]); ok {
		unit.TotalResult = &v
	}
	unit.BankAccount = numeric.CleanText(row.Vals[4])
	unit.Note = numeric.CleanText(row.Vals[5])
}

func parseCost(p *Parsed, row Row, ref string) (*CostSnapshot, bool) {
	name := numeric.CleanText(row.Key)
	if reason, pseudo := pseudoService(name); pseudo {
		p.warnf("%s: service name %q rejected (%s), row dropped", ref, row.Key, reason)
		return nil, false
	}

	balance, explicitBalance := numeric.ParseFloat(row.Vals[3])
	return &CostSnapshot{
		ServiceName:     name,
		BuildingTotal:   numeric.ParseFloatDefault(row.Vals[0], 0),
		UnitCost:        numeric.ParseFloatDefault(row.Vals[1], 0),
		UnitAdvance:     numeric.ParseFloatDefault(row.Vals[2], 0),
		UnitBalance:     balance,
		ExplicitBalance: explicitBalance,
		BasisLabel:      numeric.CleanText(row.Vals[4]),
		BuildingUnits:   numeric.ParseFloatDefault(row.Vals[5], 0),
		PricePerUnit:    numeric.ParseFloatDefault(row.Vals[6], 0),
		UnitUnits:       numeric.ParseFloatDefault(row.Vals[7], 0),
		ShareText:       numeric.CleanText(row.Vals[8]),
	}, true
}

// pseudoService detects header/footer artifacts masquerading as service
// names: empty or sentinel values, row labels like "Total" and bare
// numeric or currency values.
func pseudoService(cleaned string) (string, bool) {
	if cleaned == "" {
		return "empty or placeholder", true
	}
	if _, ok := rowLabels[textnorm.Normalize(cleaned)]; ok {
		return "row label", true
	}
	if _, ok := numeric.ParseFloat(cleaned); ok {
		return "numeric value", true
	}
	return "", false
}

func parseMeter(row Row) MeterSnapshot {
	m := MeterSnapshot{
		ServiceName: numeric.CleanText(row.Key),
		Serial:      numeric.CleanText(row.Vals[0]),
		Start:       numeric.ParseFloatDefault(row.Vals[1], 0),
		End:         numeric.ParseFloatDefault(row.Vals[2], 0),
	}
	if v, ok := numeric.ParseFloat(row.Vals[3]); ok {
		m.Consumption = v
	} else if d := m.End - m.Start; d > 0 {
		m.Consumption = d
	}
	return m
}

func parseMonths(row Row) []float64 {
	months := make([]float64, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, numeric.ParseFloatDefault(row.Vals[i], 0))
	}
	return months
}

// attachMeters associates meter rows to the unit's cost lines by
// case-insensitive substring match on service name. Costs are tried
// longest name first so overlapping names resolve to the most specific
// line. Unmatched meters are retained on the unit with a warning.
func attachMeters(p *Parsed, unit *UnitSnapshot, meters []MeterSnapshot) {
	if len(meters) == 0 {
		return
	}

	costs := make([]*CostSnapshot, len(unit.Costs))
	copy(costs, unit.Costs)
	sort.SliceStable(costs, func(a, b int) bool {
		return len(costs[a].ServiceName) > len(costs[b].ServiceName)
	})

	for _, meter := range meters {
		target := matchCost(costs, meter.ServiceName)
		if target == nil {
			p.warnf("unit %q: meter %q (%s) matches no cost row, kept unattached",
				unit.Name, meter.Serial, meter.ServiceName)
			unit.LooseMeters = append(unit.LooseMeters, meter)
			continue
		}
		target.Meters = append(target.Meters, meter)
	}
}

func matchCost(costs []*CostSnapshot, meterService string) *CostSnapshot {
	m := strings.ToLower(strings.TrimSpace(meterService))
	if m == "" {
		return nil
	}
	for _, c := range costs {
		s := strings.ToLower(c.ServiceName)
		if strings.Contains(s, m) || strings.Contains(m, s) {
			return c
		}
	}
	return nil
}
