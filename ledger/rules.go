/*
rules.go - Transaction-type-specific amount rules

PURPOSE:
  Pure predicates evaluated before any store mutation. A rejected amount
  writes nothing; the caller corrects the input and retries.

RULES:
  capital_contribution  amount >= 5,000,000 and a multiple of 5,000,000
  recurring_due         amount a multiple of 250,000 (any sign, incl. zero)
  drawdown              any integral amount

Tracking-code uniqueness is deliberately NOT pre-checked here: it is a
storage-level invariant enforced on insert.
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT CONSTANTS
// =============================================================================

var (
	// MinCapitalContribution is the floor and step for capital contributions.
	MinCapitalContribution = decimal.NewFromInt(5_000_000)

	// RecurringDueStep is the required multiple for recurring dues.
	RecurringDueStep = decimal.NewFromInt(250_000)
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateAmount checks the amount-shape rule for a transaction type.
// Returns an *InvalidAmountError (unwrapping to ErrInvalidAmount) on
// violation, nil otherwise.
func ValidateAmount(txType TransactionType, amount decimal.Decimal) error {
	if !amount.IsInteger() {
		return &InvalidAmountError{Type: txType, Amount: amount, Rule: "must be a whole number of Toman"}
	}

	switch txType {
	case TxCapitalContribution:
		if amount.LessThan(MinCapitalContribution) {
			return &InvalidAmountError{Type: txType, Amount: amount, Rule: "must be at least 5,000,000"}
		}
		if !amount.Mod(MinCapitalContribution).IsZero() {
			return &InvalidAmountError{Type: txType, Amount: amount, Rule: "must be a multiple of 5,000,000"}
		}
	case TxRecurringDue:
		// The inherited rule checks only divisibility: negative multiples and
		// zero pass, unlike the contribution floor above. Kept as-is pending
		// product clarification. TODO: confirm whether dues need a positive floor.
		if !amount.Mod(RecurringDueStep).IsZero() {
			return &InvalidAmountError{Type: txType, Amount: amount, Rule: "must be a multiple of 250,000"}
		}
	case TxDrawdown:
		// No shape constraint beyond integrality.
	default:
		return &InvalidAmountError{Type: txType, Amount: amount, Rule: "unknown transaction type"}
	}
	return nil
}
