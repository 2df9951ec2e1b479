package intentparser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
)

// normalize turns raw model output into a typed intent. The model is
// instructed to answer with bare JSON, but real responses arrive fenced,
// prefixed or with trailing prose, so the outermost object is extracted
// before decoding. Alternate key spellings are folded into canonical fields
// and missing fields are defaulted before the confidence gate is applied.
func (p *Parser) normalize(content string) (types.Intent, error) {
	raw, err := extractObject(content)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, errors.Wrap(err, "AI response is not valid JSON")
	}
	if fields == nil {
		return nil, errors.New("AI response is a null object")
	}

	foldAliases(fields)

	action, ok := fields["action"].(string)
	if !ok || action == "" {
		return nil, errors.New("AI response has no action")
	}

	confidence := floatField(fields, "confidence", 0.5)
	if confidence < confidenceThreshold {
		return nil, errors.Errorf("AI confidence %.2f below threshold", confidence)
	}

	amount := stringField(fields, "amount", "0")
	token := strings.ToUpper(stringField(fields, "token", p.chain.NativeSymbol))
	recipient := stringField(fields, "recipient", "")

	switch types.Action(action) {
	case types.ActionTransfer:
		return types.TransferIntent{
			Amount:    amount,
			Token:     token,
			Recipient: recipient,
			Score:     confidence,
		}, nil
	case types.ActionBalance:
		return types.BalanceIntent{
			Token: token,
			Score: confidence,
		}, nil
	case types.ActionAddContact:
		return types.AddContactIntent{
			Name:    stringField(fields, "name", ""),
			Address: recipient,
			Group:   stringField(fields, "group", ""),
			Score:   confidence,
		}, nil
	case types.ActionCreateTeam:
		return types.CreateTeamIntent{
			Name:        stringField(fields, "teamName", ""),
			Description: stringField(fields, "description", ""),
			Score:       confidence,
		}, nil
	case types.ActionHistory:
		return types.HistoryIntent{
			Period: stringField(fields, "period", "week"),
			Score:  confidence,
		}, nil
	default:
		return nil, errors.Errorf("AI returned unknown action %q", action)
	}
}

// aliasFields maps alternate key spellings the model tends to produce onto
// the canonical field names.
var aliasFields = map[string]string{
	"team_name":    "teamName",
	"team":         "teamName",
	"contact_name": "name",
	"contact":      "name",
	"address":      "recipient",
	"to":           "recipient",
	"value":        "amount",
	"symbol":       "token",
}

// foldAliases rewrites alternate key spellings in place without clobbering a
// canonical field that is already present.
func foldAliases(fields map[string]interface{}) {
	for alias, canonical := range aliasFields {
		v, ok := fields[alias]
		if !ok {
			continue
		}
		if _, exists := fields[canonical]; !exists {
			fields[canonical] = v
		}
		delete(fields, alias)
	}
}

// extractObject returns the outermost JSON object embedded in the text.
func extractObject(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", errors.New("AI response contains no JSON object")
	}
	return content[start : end+1], nil
}

// stringField reads a field that may arrive as a string or a number,
// returning fallback when absent or unusable.
func stringField(fields map[string]interface{}, key, fallback string) string {
	switch v := fields[key].(type) {
	case string:
		if v == "" {
			return fallback
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fallback
	}
}

// floatField reads a numeric field that may arrive as a number or a numeric
// string, returning fallback when absent or unusable.
func floatField(fields map[string]interface{}, key string, fallback float64) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return fallback
	default:
		return fallback
	}
}
