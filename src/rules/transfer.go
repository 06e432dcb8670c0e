package rules

import "strings"

// transferCodes are the provider detailed categories that mark money moving
// between a user's own accounts.
var transferCodes = map[string]struct{}{
	"TRANSFER_IN_ACCOUNT_TRANSFER":                 {},
	"TRANSFER_IN_CASH_ADVANCES_AND_LOANS":          {},
	"TRANSFER_IN_DEPOSIT":                          {},
	"TRANSFER_IN_INVESTMENT_AND_RETIREMENT_FUNDS":  {},
	"TRANSFER_IN_SAVINGS":                          {},
	"TRANSFER_IN_OTHER_TRANSFER_IN":                {},
	"TRANSFER_OUT_ACCOUNT_TRANSFER":                {},
	"TRANSFER_OUT_INVESTMENT_AND_RETIREMENT_FUNDS": {},
	"TRANSFER_OUT_SAVINGS":                         {},
	"TRANSFER_OUT_WITHDRAWAL":                      {},
	"TRANSFER_OUT_OTHER_TRANSFER_OUT":              {},
	"LOAN_PAYMENTS_CREDIT_CARD_PAYMENT":            {},
}

// IsTransfer reports whether a detailed provider category is a transfer.
// Transfers are never auto-categorized.
func IsTransfer(detailed string) bool {
	_, ok := transferCodes[strings.ToUpper(strings.TrimSpace(detailed))]
	return ok
}

// IsTransferPrimary reports whether a primary provider category is a transfer.
func IsTransferPrimary(primary string) bool {
	switch strings.ToUpper(strings.TrimSpace(primary)) {
	case "TRANSFER_IN", "TRANSFER_OUT":
		return true
	}
	return false
}
