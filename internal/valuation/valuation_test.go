package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDCFSingleYear(t *testing.T) {
	in := DCFInputs{
		RevenueBase:     100,
		RevenueGrowth:   []float64{0},
		EBITDAMargin:    []float64{0.5},
		TaxRate:         0.2,
		CapexPctRevenue: []float64{0.1},
		NWCPctRevenue:   0,
		WACC:            0.10,
		LTG:             0,
		Years:           1,
	}

	res, err := CalculateDCF(in)
	require.NoError(t, err)

	// revenue 100, ebitda 50, nopat 40, capex 10, fcf 30
	require.Len(t, res.Projections.FreeCashFlows, 1)
	assert.InDelta(t, 30.0, res.Projections.FreeCashFlows[0], 0.01)

	// terminal value 30/0.10 = 300, everything discounted one year
	assert.InDelta(t, 300.0, res.Valuation.TerminalValue, 0.1)
	assert.InDelta(t, 30.0/1.1, res.Valuation.PVOfFCFs, 0.1)
	assert.InDelta(t, 300.0/1.1, res.Valuation.PVOfTerminal, 0.1)
	assert.InDelta(t, 300.0, res.Valuation.EnterpriseValue, 0.2)
}

func TestCalculateDCFDefaults(t *testing.T) {
	res, err := CalculateDCF(DefaultDCFInputs())
	require.NoError(t, err)

	require.Len(t, res.Projections.Revenues, 5)
	require.Len(t, res.Sensitivity.EVGrid, 5)
	for _, row := range res.Sensitivity.EVGrid {
		require.Len(t, row, 5)
	}

	assert.Greater(t, res.Valuation.EnterpriseValue, 0.0)
	assert.InDelta(t, res.Valuation.PVOfFCFs+res.Valuation.PVOfTerminal,
		res.Valuation.EnterpriseValue, 0.5)

	// lower discount rate, higher value
	assert.Greater(t, res.Sensitivity.EVGrid[0][2], res.Sensitivity.EVGrid[4][2])
	// higher terminal growth, higher value
	assert.Greater(t, res.Sensitivity.EVGrid[2][4], res.Sensitivity.EVGrid[2][0])
}

func TestCalculateDCFRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DCFInputs)
	}{
		{"zero years", func(in *DCFInputs) { in.Years = 0 }},
		{"short series", func(in *DCFInputs) { in.RevenueGrowth = in.RevenueGrowth[:2] }},
		{"wacc below ltg", func(in *DCFInputs) { in.WACC = 0.02; in.LTG = 0.03 }},
		{"wacc equals ltg", func(in *DCFInputs) { in.WACC = 0.025 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultDCFInputs()
			tt.mutate(&in)
			_, err := CalculateDCF(in)
			assert.Error(t, err)
		})
	}
}

func TestCalculateLBOFlatCase(t *testing.T) {
	in := LBOInputs{
		EBITDABase:    100,
		EntryMultiple: 10,
		ExitMultiple:  10,
		LeverageRatio: 5,
		EBITDAGrowth:  0,
		HoldYears:     5,
	}

	res, err := CalculateLBO(in)
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, res.Entry.EnterpriseValue, 0.01)
	assert.InDelta(t, 500.0, res.Entry.Debt, 0.01)
	assert.InDelta(t, 500.0, res.Entry.Equity, 0.01)
	assert.InDelta(t, 20.0, res.Entry.FeesAndExpenses, 0.01)

	// 15% of original debt repaid each year for 5 years leaves 25%
	assert.InDelta(t, 125.0, res.Exit.RemainingDebt, 0.01)
	assert.InDelta(t, 875.0, res.Exit.Equity, 0.01)
	assert.InDelta(t, 1.75, res.Returns.MoM, 0.001)
	assert.InDelta(t, 11.84, res.Returns.IRR, 0.05)
}

func TestCalculateLBOSensitivityShape(t *testing.T) {
	res, err := CalculateLBO(DefaultLBOInputs())
	require.NoError(t, err)

	require.Len(t, res.Sensitivity.IRRGrid, 5)
	for _, row := range res.Sensitivity.IRRGrid {
		require.Len(t, row, 5)
	}
	// a richer exit multiple improves returns at the same leverage
	assert.Greater(t, res.Sensitivity.IRRGrid[4][2], res.Sensitivity.IRRGrid[0][2])
}

func TestCalculateLBORejectsBadInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LBOInputs)
	}{
		{"zero hold", func(in *LBOInputs) { in.HoldYears = 0 }},
		{"zero ebitda", func(in *LBOInputs) { in.EBITDABase = 0 }},
		{"leverage above entry", func(in *LBOInputs) { in.LeverageRatio = 12 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultLBOInputs()
			tt.mutate(&in)
			_, err := CalculateLBO(in)
			assert.Error(t, err)
		})
	}
}
