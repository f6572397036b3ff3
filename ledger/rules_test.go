package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sandogh/fund-engine/ledger"
)

func TestValidateAmount_CapitalContribution(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		ok     bool
	}{
		{"minimum", 5_000_000, true},
		{"multiple", 15_000_000, true},
		{"below minimum", 4_999_999, false},
		{"not a multiple", 7_500_000, false},
		{"zero", 0, false},
		{"negative", -5_000_000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.ValidateAmount(ledger.TxCapitalContribution, decimal.NewFromInt(tc.amount))
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ledger.ErrInvalidAmount)
			}
		})
	}
}

func TestValidateAmount_RecurringDue(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		ok     bool
	}{
		{"one step", 250_000, true},
		{"two steps", 500_000, true},
		{"off step", 100_000, false},
		{"off step large", 260_000, false},
		// Divisibility is the only rule for dues; sign is unconstrained.
		{"negative step", -250_000, true},
		{"zero", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.ValidateAmount(ledger.TxRecurringDue, decimal.NewFromInt(tc.amount))
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ledger.ErrInvalidAmount)
			}
		})
	}
}

func TestValidateAmount_Drawdown(t *testing.T) {
	// Any integral amount passes.
	require.NoError(t, ledger.ValidateAmount(ledger.TxDrawdown, decimal.NewFromInt(1)))
	require.NoError(t, ledger.ValidateAmount(ledger.TxDrawdown, decimal.NewFromInt(123_456_789)))

	// Fractional Toman never passes, for any type.
	err := ledger.ValidateAmount(ledger.TxDrawdown, decimal.NewFromFloat(10.5))
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestValidateAmount_UnknownType(t *testing.T) {
	err := ledger.ValidateAmount("gift", decimal.NewFromInt(250_000))
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestInvalidAmountError_CarriesContext(t *testing.T) {
	err := ledger.ValidateAmount(ledger.TxCapitalContribution, decimal.NewFromInt(100))

	var amountErr *ledger.InvalidAmountError
	require.ErrorAs(t, err, &amountErr)
	require.Equal(t, ledger.TxCapitalContribution, amountErr.Type)
	require.Contains(t, amountErr.Error(), "5,000,000")
}
