package types

import "time"

// Confirmation represents a proposed, not-yet-executed transfer. It is
// created after recipient resolution and gas estimation succeed, and is
// consumed on explicit confirm or cancel. At most one confirmation may be
// outstanding per chat session at any time.
//
// Fields:
// - ID: unique identity of this proposal, used to discard stale results.
// - SessionID: the chat session that owns the proposal.
// - Amount: transfer amount as a decimal string in display units.
// - Token: token symbol, uppercase.
// - TokenAddress: ERC-20 contract address, empty for the native token.
// - Recipient: validated 0x recipient address.
// - GasEstimate: estimated cost as a decimal string in native token units.
// - CreatedAt: proposal creation time, used for expiry.
type Confirmation struct {
	ID           string
	SessionID    string
	Amount       string
	Token        string
	TokenAddress string
	Recipient    string
	GasEstimate  string
	CreatedAt    time.Time
}
