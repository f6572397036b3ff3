/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNT DISPLAY:
  Every amount travels twice: as a raw integer (for clients that compute)
  and as a grouped Toman string (for clients that render). The display
  string comes from one shared go-money formatter.

DATES:
  Responses carry both calendars: "date" is the local (Jalali) label the
  fund operates in, "date_canonical" the canonical YYYY-MM-DD day.

VALIDATION:
  Validation is done in handlers and the ledger, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: The domain types these mirror
*/
package api

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// tomanFormatter renders whole-Toman amounts with digit grouping, e.g.
// "10,000,000 تومان".
var tomanFormatter = money.NewFormatter(0, ".", ",", "تومان", "1 %s")

func formatToman(amount decimal.Decimal) string {
	return tomanFormatter.Format(amount.IntPart())
}

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// MemberDTO represents a member in API responses.
type MemberDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Username            string `json:"username"`
	EnrolledOn          string `json:"enrolled_on"`
	EnrolledOnCanonical string `json:"enrolled_on_canonical"`
	Balance             int64  `json:"balance"`
	BalanceDisplay      string `json:"balance_display"`
	Points              int64  `json:"points"`
}

// RegisterMemberRequest is the request to enroll a member.
type RegisterMemberRequest struct {
	Name       string `json:"name"`
	EnrolledOn string `json:"enrolled_on"`
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

// LoginRequest is the request to authenticate.
type LoginRequest struct {
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

// LoginResponse reports the authenticated member.
type LoginResponse struct {
	Member MemberDTO `json:"member"`
}

// RecordTransactionRequest is the request to append a transaction.
type RecordTransactionRequest struct {
	MemberName   string `json:"member_name"`
	Date         string `json:"date"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	TrackingCode string `json:"tracking_code"`
}

// TransactionDTO represents a log entry in API responses.
type TransactionDTO struct {
	ID            string `json:"id"`
	MemberID      string `json:"member_id"`
	Date          string `json:"date"`
	DateCanonical string `json:"date_canonical"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	Type          string `json:"type"`
	Description   string `json:"description,omitempty"`
	TrackingCode  string `json:"tracking_code"`
}

// TotalsDTO carries a member's lifetime per-type sums.
type TotalsDTO struct {
	MemberID                  string `json:"member_id"`
	CapitalContributed        int64  `json:"capital_contributed"`
	CapitalContributedDisplay string `json:"capital_contributed_display"`
	RecurringDuesPaid         int64  `json:"recurring_dues_paid"`
	RecurringDuesPaidDisplay  string `json:"recurring_dues_paid_display"`
}

// HistoryEntryDTO is one day of a member's accrual history.
type HistoryEntryDTO struct {
	Date            string `json:"date"`
	DateCanonical   string `json:"date_canonical"`
	Balance         int64  `json:"balance"`
	BalanceDisplay  string `json:"balance_display"`
	PointsEarned    int64  `json:"points_earned"`
	PointsTotal     int64  `json:"points_total"`
}

// FundBalanceDTO is the fund-wide balance total.
type FundBalanceDTO struct {
	Total        int64  `json:"total"`
	TotalDisplay string `json:"total_display"`
	Members      int    `json:"members"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
