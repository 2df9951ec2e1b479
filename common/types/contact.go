package types

import "time"

// Contact is a saved recipient owned by a wallet address.
type Contact struct {
	Name    string
	Address string
	Group   string
}

// Team is a named group of members owned by a wallet address.
type Team struct {
	Name        string
	Description string
	Members     []string
}

// ActivityEntry is a best-effort log line describing one handled message.
// Writing it must never affect the outcome of the pipeline.
type ActivityEntry struct {
	SessionID string
	Action    Action
	Message   string
	Intent    string
	Result    string
	CreatedAt time.Time
}
