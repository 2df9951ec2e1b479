package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/common/units"
	"github.com/chainchat-labs/chainchat/executor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HandleMessage resolves one chat message end to end: parse the intent,
// dispatch on its action, and reply. A transfer intent ends in a proposed
// confirmation, never in an executed transfer; execution only happens
// through Confirm.
//
// Parameters:
// - ctx: the context for managing the request.
// - sessionID: the chat session the message belongs to.
// - w: the sender's wallet.
// - message: the raw chat message.
//
// Returns:
// - *Reply: the reply to show the user.
// - error: an error if a collaborator failed in a way the user cannot fix
// by rephrasing.
func (p *Pipeline) HandleMessage(ctx context.Context, sessionID string, w executor.Wallet, message string) (*Reply, error) {
	intent, err := p.parser.Parse(ctx, message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse message")
	}
	if intent == nil {
		p.logActivity(sessionID, "", message, "", "no intent matched")
		return &Reply{Text: "I didn't catch that. Try something like \"send 50 " + p.config.NativeSymbol + " to alice\" or \"balance\"."}, nil
	}

	p.logger.WithFields(logrus.Fields{
		"session": sessionID,
		"action":  intent.Action(),
	}).Info("Intent resolved")

	var reply *Reply
	switch v := intent.(type) {
	case types.TransferIntent:
		reply, err = p.handleTransfer(ctx, sessionID, w, v)
	case types.BalanceIntent:
		reply, err = p.handleBalance(ctx, w, v)
	case types.AddContactIntent:
		reply, err = p.handleAddContact(ctx, w, v)
	case types.CreateTeamIntent:
		reply, err = p.handleCreateTeam(ctx, w, v)
	case types.HistoryIntent:
		reply, err = p.handleHistory(ctx, w, v)
	default:
		reply = &Reply{Text: "I can't help with that yet."}
	}
	if err != nil {
		return nil, err
	}

	p.logActivity(sessionID, intent.Action(), message, intentJSON(intent), reply.Text)
	return reply, nil
}

// handleTransfer runs the proposal half of a transfer: resolve the
// recipient, estimate the cost and place a confirmation in the session's
// slot. An unresolvable recipient stops the pipeline before any chain
// interaction.
func (p *Pipeline) handleTransfer(ctx context.Context, sessionID string, w executor.Wallet, intent types.TransferIntent) (*Reply, error) {
	token, ok := p.config.Token(strings.ToUpper(intent.Token))
	if !ok {
		return &Reply{Text: fmt.Sprintf("I don't support the token %q on %s.", intent.Token, p.config.Name)}, nil
	}

	amount, err := units.ToBaseUnits(intent.Amount, token.Decimals)
	if err != nil || amount.Sign() <= 0 {
		return &Reply{Text: fmt.Sprintf("I couldn't read the amount %q. Please use a positive number.", intent.Amount)}, nil
	}

	sender := w.Address().Hex()
	resolution, err := p.resolver.Resolve(ctx, sender, intent.Recipient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve recipient")
	}
	if resolution.NeedsAddress {
		if resolution.Query == "" {
			return &Reply{Text: "Who should receive the transfer? Send a contact name or a 0x address."}, nil
		}
		return &Reply{Text: fmt.Sprintf("I couldn't find %q in your contacts. Send the 0x address instead.", resolution.Query)}, nil
	}

	estimate := p.estimator.EstimateTransferCost(ctx, sender, resolution.Address, amount, token.Address)

	confirmation := &types.Confirmation{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Amount:       intent.Amount,
		Token:        token.Symbol,
		TokenAddress: token.Address,
		Recipient:    resolution.Address,
		GasEstimate:  estimate,
		CreatedAt:    time.Now(),
	}

	if err := p.gate.Propose(confirmation); err != nil {
		if errors.Is(err, cherrors.ErrConfirmationPending) {
			return &Reply{Text: "You already have a transfer waiting for confirmation. Reply yes to confirm it or no to cancel it first."}, nil
		}
		return nil, errors.Wrap(err, "failed to propose confirmation")
	}

	text := fmt.Sprintf(
		"Send %s %s to %s? Estimated network cost ~%s %s. Reply yes to confirm or no to cancel.",
		confirmation.Amount, confirmation.Token, confirmation.Recipient,
		confirmation.GasEstimate, p.config.NativeSymbol,
	)
	return &Reply{Text: text, Proposed: confirmation}, nil
}

func (p *Pipeline) handleBalance(ctx context.Context, w executor.Wallet, intent types.BalanceIntent) (*Reply, error) {
	if p.balances == nil {
		return &Reply{Text: "Balance lookups are not available right now."}, nil
	}

	symbol := strings.ToUpper(intent.Token)
	if symbol == "" {
		symbol = p.config.NativeSymbol
	}
	token, ok := p.config.Token(symbol)
	if !ok {
		return &Reply{Text: fmt.Sprintf("I don't support the token %q on %s.", intent.Token, p.config.Name)}, nil
	}

	balance, err := p.balances.GetBalance(ctx, w.Address().Hex(), token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return &Reply{Text: fmt.Sprintf("Your %s balance is %s.", token.Symbol, balance)}, nil
}

// addressPattern matches a 0x-prefixed 40-hex-character address.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func (p *Pipeline) handleAddContact(ctx context.Context, w executor.Wallet, intent types.AddContactIntent) (*Reply, error) {
	if p.store == nil {
		return &Reply{Text: "Contacts are not available right now."}, nil
	}
	if intent.Name == "" || intent.Address == "" {
		return &Reply{Text: "To save a contact, tell me a name and a 0x address."}, nil
	}
	// The AI path can hand back any text here; a contact saved with a
	// malformed address would only fail much later, at submission.
	if !addressPattern.MatchString(intent.Address) {
		return &Reply{Text: fmt.Sprintf("%q doesn't look like a valid 0x address, so I didn't save the contact.", intent.Address)}, nil
	}

	err := p.store.CreateContact(ctx, w.Address().Hex(), types.Contact{
		Name:    intent.Name,
		Address: intent.Address,
		Group:   intent.Group,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create contact")
	}
	return &Reply{Text: fmt.Sprintf("Saved %s as %s.", intent.Name, intent.Address)}, nil
}

func (p *Pipeline) handleCreateTeam(ctx context.Context, w executor.Wallet, intent types.CreateTeamIntent) (*Reply, error) {
	if p.store == nil {
		return &Reply{Text: "Teams are not available right now."}, nil
	}
	if intent.Name == "" {
		return &Reply{Text: "To create a team, tell me its name."}, nil
	}

	err := p.store.CreateTeam(ctx, w.Address().Hex(), types.Team{
		Name:        intent.Name,
		Description: intent.Description,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create team")
	}
	return &Reply{Text: fmt.Sprintf("Created team %s.", intent.Name)}, nil
}

func (p *Pipeline) handleHistory(ctx context.Context, w executor.Wallet, intent types.HistoryIntent) (*Reply, error) {
	if p.store == nil {
		return &Reply{Text: "Transaction history is not available right now."}, nil
	}

	since := historyStart(intent.Period, time.Now())
	records, err := p.store.Transactions(ctx, w.Address().Hex(), since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load transactions")
	}
	if len(records) == 0 {
		return &Reply{Text: fmt.Sprintf("No transactions in the last %s.", intent.Period)}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your transactions for the last %s:\n", intent.Period)
	for _, record := range records {
		fmt.Fprintf(&b, "- %s %s to %s (%s, %s)\n",
			record.Amount, record.Token, record.To, record.Status, shortHash(record.Hash))
	}
	return &Reply{Text: strings.TrimRight(b.String(), "\n")}, nil
}

// historyStart maps a history period to its starting time.
func historyStart(period string, now time.Time) time.Time {
	switch period {
	case "today":
		return now.Add(-24 * time.Hour)
	case "month":
		return now.Add(-30 * 24 * time.Hour)
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:8] + "…" + hash[len(hash)-4:]
}

// intentJSON renders an intent for the activity log.
func intentJSON(intent types.Intent) string {
	payload := map[string]interface{}{
		"action":     intent.Action(),
		"confidence": intent.Confidence(),
		"fields":     intent,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}
