// Package resolver maps the free-text recipient of a transfer intent to a
// validated on-chain address using the sender's saved contacts.
package resolver

import (
	"context"
	"regexp"
	"strings"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// addressPattern matches a 0x-prefixed 40-hex-character address.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ContactSource provides the saved contacts of a wallet address.
type ContactSource interface {
	// Contacts returns the contacts saved by the given owner address.
	Contacts(ctx context.Context, owner string) ([]types.Contact, error)
}

// Resolution is the outcome of recipient resolution. When NeedsAddress is
// set, no address could be found and the caller must ask the user for one
// instead of proceeding; that outcome is not an error.
type Resolution struct {
	Address      string
	NeedsAddress bool
	Query        string
}

// Resolver resolves transfer recipients against a contact source.
type Resolver struct {
	contacts ContactSource
	logger   *logrus.Logger
}

// NewResolver creates a new recipient resolver.
func NewResolver(contacts ContactSource, logger *logrus.Logger) *Resolver {
	return &Resolver{contacts: contacts, logger: logger}
}

// Resolve turns a recipient (a contact name or a 0x address) into a
// validated address.
//
// An address-shaped recipient is accepted unchanged. Otherwise the sender's
// contacts are matched by case-insensitive name prefix, first match in list
// order winning. An unresolvable recipient yields NeedsAddress rather than
// an error; only the contact lookup itself can fail.
func (r *Resolver) Resolve(ctx context.Context, sender, recipient string) (Resolution, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return Resolution{NeedsAddress: true, Query: recipient}, nil
	}

	if addressPattern.MatchString(recipient) {
		return Resolution{Address: recipient, Query: recipient}, nil
	}

	contacts, err := r.contacts.Contacts(ctx, sender)
	if err != nil {
		return Resolution{}, errors.Wrap(err, "failed to load contacts")
	}

	needle := strings.ToLower(recipient)
	for _, contact := range contacts {
		if strings.HasPrefix(strings.ToLower(contact.Name), needle) {
			r.logger.WithFields(logrus.Fields{
				"recipient": recipient,
				"contact":   contact.Name,
			}).Debug("Recipient resolved from contacts")
			return Resolution{Address: contact.Address, Query: recipient}, nil
		}
	}

	return Resolution{NeedsAddress: true, Query: recipient}, nil
}
