// Package valuation implements the DCF and LBO calculators behind the
// valuation endpoints. The calculators are pure: closed-form arithmetic over
// small fixed-length projections, no I/O.
package valuation

import (
	"errors"
	"fmt"
	"math"
)

type DCFInputs struct {
	Ticker          string    `json:"ticker,omitempty"`
	RevenueBase     float64   `json:"revenue_base"`   // millions
	RevenueGrowth   []float64 `json:"revenue_growth"` // per-year growth rates
	EBITDAMargin    []float64 `json:"ebitda_margin"`  // per-year margins
	TaxRate         float64   `json:"tax_rate"`
	CapexPctRevenue []float64 `json:"capex_pct_revenue"` // CapEx as % of revenue
	NWCPctRevenue   float64   `json:"nwc_pct_revenue"`   // net working capital as % of revenue
	WACC            float64   `json:"wacc"`
	LTG             float64   `json:"ltg"` // long-term growth rate
	Years           int       `json:"years"`
}

// DefaultDCFInputs returns a plausible 5-year base case. Request bodies are
// decoded over these defaults so partial inputs work.
func DefaultDCFInputs() DCFInputs {
	return DCFInputs{
		RevenueBase:     1000.0,
		RevenueGrowth:   []float64{0.15, 0.12, 0.10, 0.08, 0.05},
		EBITDAMargin:    []float64{0.25, 0.26, 0.27, 0.27, 0.28},
		TaxRate:         0.25,
		CapexPctRevenue: []float64{0.08, 0.07, 0.06, 0.06, 0.05},
		NWCPctRevenue:   0.05,
		WACC:            0.10,
		LTG:             0.025,
		Years:           5,
	}
}

type DCFProjections struct {
	Revenues      []float64 `json:"revenues"`
	EBITDAs       []float64 `json:"ebitdas"`
	FreeCashFlows []float64 `json:"free_cash_flows"`
}

type DCFValuation struct {
	PVOfFCFs        float64 `json:"pv_of_fcfs"`
	PVOfTerminal    float64 `json:"pv_of_terminal"`
	EnterpriseValue float64 `json:"enterprise_value"`
	TerminalValue   float64 `json:"terminal_value"`
}

type DCFSensitivity struct {
	WACCRange []float64   `json:"wacc_range"`
	LTGRange  []float64   `json:"ltg_range"`
	EVGrid    [][]float64 `json:"ev_grid"`
}

type DCFResult struct {
	Inputs      DCFInputs      `json:"inputs"`
	Projections DCFProjections `json:"projections"`
	Valuation   DCFValuation   `json:"valuation"`
	Sensitivity DCFSensitivity `json:"sensitivity"`
}

func (in DCFInputs) validate() error {
	if in.Years <= 0 {
		return errors.New("years must be positive")
	}
	if len(in.RevenueGrowth) < in.Years || len(in.EBITDAMargin) < in.Years || len(in.CapexPctRevenue) < in.Years {
		return fmt.Errorf("growth, margin and capex series must cover %d years", in.Years)
	}
	if in.WACC <= in.LTG {
		return errors.New("wacc must exceed long-term growth")
	}
	return nil
}

// CalculateDCF projects free cash flows, discounts them plus a Gordon-growth
// terminal value at WACC, and builds a WACC x LTG sensitivity grid.
func CalculateDCF(in DCFInputs) (*DCFResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	revenues := make([]float64, 0, in.Years)
	ebitdas := make([]float64, 0, in.Years)
	fcfs := make([]float64, 0, in.Years)

	baseRevenue := in.RevenueBase
	for i := 0; i < in.Years; i++ {
		revenue := baseRevenue * (1 + in.RevenueGrowth[i])
		ebitda := revenue * in.EBITDAMargin[i]

		nopat := ebitda * (1 - in.TaxRate)
		capex := revenue * in.CapexPctRevenue[i]
		nwcChange := revenue * in.NWCPctRevenue * in.RevenueGrowth[i]
		fcf := nopat - capex - nwcChange

		revenues = append(revenues, round1(revenue))
		ebitdas = append(ebitdas, round1(ebitda))
		fcfs = append(fcfs, round1(fcf))

		baseRevenue = revenue
	}

	terminalFCF := fcfs[len(fcfs)-1] * (1 + in.LTG)
	terminalValue := terminalFCF / (in.WACC - in.LTG)

	pvSum := 0.0
	for i, fcf := range fcfs {
		pvSum += fcf / math.Pow(1+in.WACC, float64(i+1))
	}
	pvTerminal := terminalValue / math.Pow(1+in.WACC, float64(in.Years))
	enterpriseValue := pvSum + pvTerminal

	waccRange := []float64{in.WACC - 0.02, in.WACC - 0.01, in.WACC, in.WACC + 0.01, in.WACC + 0.02}
	ltgRange := []float64{in.LTG - 0.01, in.LTG - 0.005, in.LTG, in.LTG + 0.005, in.LTG + 0.01}

	grid := make([][]float64, 0, len(waccRange))
	for _, wacc := range waccRange {
		row := make([]float64, 0, len(ltgRange))
		for _, ltg := range ltgRange {
			ev := enterpriseValue // degenerate cell when the formula breaks down
			if wacc > ltg {
				tv := terminalFCF / (wacc - ltg)
				pv := tv / math.Pow(1+wacc, float64(in.Years))
				for i, fcf := range fcfs {
					pv += fcf / math.Pow(1+wacc, float64(i+1))
				}
				ev = pv
			}
			row = append(row, math.Round(ev))
		}
		grid = append(grid, row)
	}

	return &DCFResult{
		Inputs: in,
		Projections: DCFProjections{
			Revenues:      revenues,
			EBITDAs:       ebitdas,
			FreeCashFlows: fcfs,
		},
		Valuation: DCFValuation{
			PVOfFCFs:        round1(pvSum),
			PVOfTerminal:    round1(pvTerminal),
			EnterpriseValue: round1(enterpriseValue),
			TerminalValue:   round1(terminalValue),
		},
		Sensitivity: DCFSensitivity{
			WACCRange: waccRange,
			LTGRange:  ltgRange,
			EVGrid:    grid,
		},
	}, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
