package domain

import "github.com/shopspring/decimal"

// Settings is the singleton preference record shared through the sync
// envelope. DarkMode is presentation-only and passed through unchanged.
type Settings struct {
	InitialBalance decimal.Decimal `json:"initialBalance"` // Balance before any recorded transaction
	DarkMode       bool            `json:"darkMode"`
}

// DefaultSettings returns the settings used before any snapshot has been
// pulled or when the remote carries none.
func DefaultSettings() Settings {
	return Settings{InitialBalance: decimal.Zero, DarkMode: false}
}
