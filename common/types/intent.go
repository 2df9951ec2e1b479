package types

// Action identifies what a parsed chat message asks the agent to do.
type Action string

const (
	// ActionTransfer represents a token transfer request.
	ActionTransfer Action = "transfer"
	// ActionBalance represents a balance inquiry.
	ActionBalance Action = "balance"
	// ActionAddContact represents a request to save a contact.
	ActionAddContact Action = "add_contact"
	// ActionCreateTeam represents a request to create a team.
	ActionCreateTeam Action = "create_team"
	// ActionHistory represents a request for past transactions.
	ActionHistory Action = "history"
)

// Intent is the structured interpretation of a chat message. Each action has
// its own variant carrying only the fields that action needs, so a transfer
// handler can never accidentally read a team name meant for another action.
//
// Intents are constructed once per message and never mutated afterwards.
type Intent interface {
	// Action returns the action this intent represents.
	Action() Action

	// Confidence returns how certain the parser is that the intent is
	// correct, in [0, 1]. Consumers must treat anything below the
	// reliability threshold as untrusted.
	Confidence() float64
}

// TransferIntent asks to move an amount of a token to a recipient.
// Recipient may be a contact name or a 0x address; Amount is a decimal
// string in display units.
type TransferIntent struct {
	Amount    string
	Token     string
	Recipient string
	Score     float64
}

func (TransferIntent) Action() Action        { return ActionTransfer }
func (i TransferIntent) Confidence() float64 { return i.Score }

// BalanceIntent asks for the sender's balance of a token. An empty Token
// means the chain's native token.
type BalanceIntent struct {
	Token string
	Score float64
}

func (BalanceIntent) Action() Action        { return ActionBalance }
func (i BalanceIntent) Confidence() float64 { return i.Score }

// AddContactIntent asks to save a named contact with an on-chain address.
type AddContactIntent struct {
	Name    string
	Address string
	Group   string
	Score   float64
}

func (AddContactIntent) Action() Action        { return ActionAddContact }
func (i AddContactIntent) Confidence() float64 { return i.Score }

// CreateTeamIntent asks to create a team of contacts.
type CreateTeamIntent struct {
	Name        string
	Description string
	Score       float64
}

func (CreateTeamIntent) Action() Action        { return ActionCreateTeam }
func (i CreateTeamIntent) Confidence() float64 { return i.Score }

// HistoryIntent asks for the sender's past transactions over a period
// such as "today", "week" or "month".
type HistoryIntent struct {
	Period string
	Score  float64
}

func (HistoryIntent) Action() Action        { return ActionHistory }
func (i HistoryIntent) Confidence() float64 { return i.Score }
