package valuation

import (
	"errors"
	"math"
)

type LBOInputs struct {
	Ticker        string  `json:"ticker,omitempty"`
	EBITDABase    float64 `json:"ebitda_base"` // millions
	EntryMultiple float64 `json:"entry_multiple"`
	ExitMultiple  float64 `json:"exit_multiple"`
	LeverageRatio float64 `json:"leverage_ratio"` // debt / EBITDA at entry
	EBITDAGrowth  float64 `json:"ebitda_growth"`  // annual
	HoldYears     int     `json:"hold_years"`
}

func DefaultLBOInputs() LBOInputs {
	return LBOInputs{
		EBITDABase:    250.0,
		EntryMultiple: 10.0,
		ExitMultiple:  11.0,
		LeverageRatio: 5.5,
		EBITDAGrowth:  0.08,
		HoldYears:     5,
	}
}

type LBOEntry struct {
	EnterpriseValue float64 `json:"enterprise_value"`
	Debt            float64 `json:"debt"`
	Equity          float64 `json:"equity"`
	FeesAndExpenses float64 `json:"fees_and_expenses"`
	TotalUses       float64 `json:"total_uses"`
}

type LBOExit struct {
	EBITDA          float64 `json:"ebitda"`
	EnterpriseValue float64 `json:"enterprise_value"`
	RemainingDebt   float64 `json:"remaining_debt"`
	Equity          float64 `json:"equity"`
}

type LBOReturns struct {
	MoM float64 `json:"mom"` // multiple of money
	IRR float64 `json:"irr"`
}

type LBOSensitivity struct {
	ExitMultipleRange []float64   `json:"exit_multiple_range"`
	LeverageRange     []float64   `json:"leverage_range"`
	IRRGrid           [][]float64 `json:"irr_grid"` // percent
}

type LBOResult struct {
	Inputs           LBOInputs      `json:"inputs"`
	Entry            LBOEntry       `json:"entry"`
	EBITDAProjection []float64      `json:"ebitda_projection"`
	Exit             LBOExit        `json:"exit"`
	Returns          LBOReturns     `json:"returns"`
	Sensitivity      LBOSensitivity `json:"sensitivity"`
}

func (in LBOInputs) validate() error {
	if in.HoldYears <= 0 {
		return errors.New("hold_years must be positive")
	}
	if in.EBITDABase <= 0 {
		return errors.New("ebitda_base must be positive")
	}
	if in.EntryMultiple <= 0 || in.ExitMultiple <= 0 {
		return errors.New("entry and exit multiples must be positive")
	}
	if in.LeverageRatio >= in.EntryMultiple {
		return errors.New("leverage ratio must be below the entry multiple")
	}
	return nil
}

// CalculateLBO runs a simplified leveraged buyout: buy at the entry multiple
// funded by debt at the leverage ratio, grow EBITDA over the hold, pay down
// 15% of the original debt per year, and sell at the exit multiple.
func CalculateLBO(in LBOInputs) (*LBOResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	entryEV := in.EBITDABase * in.EntryMultiple
	debt := in.EBITDABase * in.LeverageRatio
	equity := entryEV - debt
	fees := entryEV * 0.02

	projection := make([]float64, 0, in.HoldYears)
	ebitda := in.EBITDABase
	for i := 0; i < in.HoldYears; i++ {
		ebitda *= 1 + in.EBITDAGrowth
		projection = append(projection, round1(ebitda))
	}
	exitEBITDA := projection[len(projection)-1]

	exitEV := exitEBITDA * in.ExitMultiple
	remainingDebt := math.Max(0, debt-debt*0.15*float64(in.HoldYears))
	exitEquity := exitEV - remainingDebt

	mom := exitEquity / equity
	irr := math.Pow(mom, 1/float64(in.HoldYears)) - 1

	exitRange := []float64{in.ExitMultiple - 1.0, in.ExitMultiple - 0.5, in.ExitMultiple, in.ExitMultiple + 0.5, in.ExitMultiple + 1.0}
	leverageRange := []float64{in.LeverageRatio - 1.0, in.LeverageRatio - 0.5, in.LeverageRatio, in.LeverageRatio + 0.5, in.LeverageRatio + 1.0}

	grid := make([][]float64, 0, len(exitRange))
	for _, exitMult := range exitRange {
		row := make([]float64, 0, len(leverageRange))
		for _, lev := range leverageRange {
			cellDebt := in.EBITDABase * lev
			cellEquity := entryEV - cellDebt
			cellIRR := 0.0
			if cellEquity > 0 {
				cellRemaining := math.Max(0, cellDebt-cellDebt*0.15*float64(in.HoldYears))
				cellExitEquity := exitEBITDA*exitMult - cellRemaining
				cellMoM := cellExitEquity / cellEquity
				if cellMoM > 0 {
					cellIRR = math.Pow(cellMoM, 1/float64(in.HoldYears)) - 1
				}
			}
			row = append(row, round2(cellIRR*100))
		}
		grid = append(grid, row)
	}

	return &LBOResult{
		Inputs: in,
		Entry: LBOEntry{
			EnterpriseValue: round1(entryEV),
			Debt:            round1(debt),
			Equity:          round1(equity),
			FeesAndExpenses: round1(fees),
			TotalUses:       round1(entryEV + fees),
		},
		EBITDAProjection: projection,
		Exit: LBOExit{
			EBITDA:          exitEBITDA,
			EnterpriseValue: round1(exitEV),
			RemainingDebt:   round1(remainingDebt),
			Equity:          round1(exitEquity),
		},
		Returns: LBOReturns{
			MoM: round2(mom),
			IRR: round2(irr * 100),
		},
		Sensitivity: LBOSensitivity{
			ExitMultipleRange: exitRange,
			LeverageRange:     leverageRange,
			IRRGrid:           grid,
		},
	}, nil
}
