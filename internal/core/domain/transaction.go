package domain

import "github.com/shopspring/decimal"

// Transaction represents a single dated money movement. The sign of Amount
// carries the transaction type: negative is an expense, non-negative is
// income (or a zero marker entry).
type Transaction struct {
	ID          string          `json:"id"`                    // Primary Key (UUID), stable across sync
	Date        string          `json:"date"`                  // ISO-8601 calendar date (yyyy-mm-dd), no time component
	Amount      decimal.Decimal `json:"amount"`                // Signed; negative = expense
	Description string          `json:"description,omitempty"` // Free text, optional
	CategoryID  string          `json:"categoryId"`            // FK -> Category.ID; may dangle, resolved at read time
	TagIDs      []string        `json:"tagIds"`                // FK -> Tag.ID; dangling entries filtered at read time
	IsPinned    bool            `json:"isPinned"`
}

// IsExpense reports whether the transaction records money going out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}
