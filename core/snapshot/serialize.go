package snapshot

import "building-cost/core/numeric"

// Default monthly row labels used when the source supplied none.
const (
	DefaultPaidLabel       = "Payments"
	DefaultPrescribedLabel = "Advances"
)

// Serialize renders the typed model back into wire rows. Numeric cells
// use the canonical locale format; zero renders as the empty string so
// "no data" survives the round trip.
func Serialize(p *Parsed) []Row {
	var rows []Row

	if p.Building != nil {
		row := Row{
			UnitName: BuildingUnitName,
			DataType: DataBuildingInfo,
			Key:      KeyBuildingBankAccount,
		}
		row.Vals[0] = p.Building.BankAccount
		row.Vals[1] = p.Building.Address
		row.Vals[2] = p.Building.Name
		rows = append(rows, row)
	}

	for _, unit := range p.Units {
		rows = append(rows, serializeInfo(unit))

		for _, cost := range unit.Costs {
			rows = append(rows, serializeCost(unit.Name, cost))
			for _, meter := range cost.Meters {
				rows = append(rows, serializeMeter(unit.Name, meter))
			}
		}
		for _, meter := range unit.LooseMeters {
			rows = append(rows, serializeMeter(unit.Name, meter))
		}

		if len(unit.PrescribedMonths) > 0 {
			rows = append(rows, serializeMonths(unit.Name, DataAdvanceMonthly,
				labelOr(unit.PrescribedLabel, DefaultPrescribedLabel), unit.PrescribedMonths))
		}
		if len(unit.PaidMonths) > 0 {
			rows = append(rows, serializeMonths(unit.Name, DataPaymentMonthly,
				labelOr(unit.PaidLabel, DefaultPaidLabel), unit.PaidMonths))
		}

		for _, fp := range unit.FixedPayments {
			row := Row{UnitName: unit.Name, DataType: DataFixedPayment, Key: fp.Name}
			row.Vals[0] = numeric.FormatAmount(fp.Amount)
			rows = append(rows, row)
		}
	}

	return rows
}

func serializeInfo(unit *UnitSnapshot) Row {
	row := Row{UnitName: unit.Name, DataType: DataInfo, Key: KeyDetail}
	row.Vals[0] = unit.OwnerName
	row.Vals[1] = unit.VariableSymbol
	row.Vals[2] = unit.Email
	if unit.TotalResult != nil {
		row.Vals[3] = numeric.FormatAmount(*unit.TotalResult)
	}
	row.Vals[4] = unit.BankAccount
	row.Vals[5] = unit.Note
	return row
}

func serializeCost(unitName string, cost *CostSnapshot) Row {
	row := Row{UnitName: unitName, DataType: DataCost, Key: cost.ServiceName}
	row.Vals[0] = numeric.FormatAmount(cost.BuildingTotal)
	row.Vals[1] = numeric.FormatAmount(cost.UnitCost)
	row.Vals[2] = numeric.FormatAmount(cost.UnitAdvance)
	row.Vals[3] = numeric.FormatAmount(cost.UnitBalance)
	row.Vals[4] = cost.BasisLabel
	row.Vals[5] = numeric.FormatAmount(cost.BuildingUnits)
	row.Vals[6] = numeric.FormatAmount(cost.PricePerUnit)
	row.Vals[7] = numeric.FormatAmount(cost.UnitUnits)
	row.Vals[8] = cost.ShareText
	return row
}

func serializeMeter(unitName string, meter MeterSnapshot) Row {
	row := Row{UnitName: unitName, DataType: DataMeter, Key: meter.ServiceName}
	row.Vals[0] = meter.Serial
	row.Vals[1] = numeric.FormatAmount(meter.Start)
	row.Vals[2] = numeric.FormatAmount(meter.End)
	row.Vals[3] = numeric.FormatAmount(meter.Consumption)
	return row
}

func serializeMonths(unitName string, dataType DataType, label string, months []float64) Row {
	row := Row{UnitName: unitName, DataType: dataType, Key: label}
	for i := 0; i < len(months) && i < 12; i++ {
		row.Vals[i] = numeric.FormatAmount(months[i])
	}
	return row
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
