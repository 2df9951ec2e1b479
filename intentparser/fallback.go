package intentparser

import (
	"regexp"
	"strings"

	"github.com/chainchat-labs/chainchat/common/types"
)

// fallbackConfidence is assigned to every fallback match. The rules are
// deterministic, so a match is trusted well above the AI threshold.
const fallbackConfidence = 0.9

// addressPattern matches a 0x-prefixed 40-hex-character address.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// fallbackRule pairs a pattern with an intent constructor. Rules are tried
// in order and the first rule that both matches and constructs an intent
// wins. A constructor may return nil to discard its match, e.g. when the
// captured token symbol is not supported; the scan then continues.
type fallbackRule struct {
	name  string
	re    *regexp.Regexp
	build func(p *Parser, m []string, message string) types.Intent
}

var fallbackRules = []fallbackRule{
	{
		name: "send",
		re:   regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:send|transfer)\s+(\d+(?:\.\d+)?)\s*(?:([a-zA-Z]{2,10})\s+)?to\s+(\S+?)\s*$`),
		build: func(p *Parser, m []string, _ string) types.Intent {
			token, ok := p.fallbackToken(m[2])
			if !ok {
				return nil
			}
			return types.TransferIntent{
				Amount:    m[1],
				Token:     token,
				Recipient: m[3],
				Score:     fallbackConfidence,
			}
		},
	},
	{
		name: "pay",
		re:   regexp.MustCompile(`(?i)^\s*(?:please\s+)?pay\s+(\S+)\s+(\d+(?:\.\d+)?)\s*([a-zA-Z]{2,10})?\s*$`),
		build: func(p *Parser, m []string, _ string) types.Intent {
			token, ok := p.fallbackToken(m[3])
			if !ok {
				return nil
			}
			return types.TransferIntent{
				Amount:    m[2],
				Token:     token,
				Recipient: m[1],
				Score:     fallbackConfidence,
			}
		},
	},
	{
		name: "add contact",
		re:   regexp.MustCompile(`(?i)^\s*(?:add|save)\s+(?:contact\s+)?(\w+)\s+(?:with\s+address\s+|at\s+|as\s+)?(0x[0-9a-fA-F]{40})\s*$`),
		build: func(_ *Parser, m []string, _ string) types.Intent {
			return types.AddContactIntent{
				Name:    m[1],
				Address: m[2],
				Score:   fallbackConfidence,
			}
		},
	},
	{
		name: "create team",
		re:   regexp.MustCompile(`(?i)^\s*create\s+(?:a\s+)?(?:new\s+)?team\s+(?:called\s+|named\s+)?(.+?)\s*$`),
		build: func(_ *Parser, m []string, _ string) types.Intent {
			return types.CreateTeamIntent{
				Name:  m[1],
				Score: fallbackConfidence,
			}
		},
	},
	{
		name: "balance",
		re:   regexp.MustCompile(`(?i)\b(?:balance|how\s+much)\b`),
		build: func(p *Parser, _ []string, message string) types.Intent {
			return types.BalanceIntent{
				Token: p.findSupportedToken(message),
				Score: fallbackConfidence,
			}
		},
	},
	{
		name: "history",
		re:   regexp.MustCompile(`(?i)\b(?:history|transactions?|activity)\b`),
		build: func(_ *Parser, _ []string, message string) types.Intent {
			return types.HistoryIntent{
				Period: findPeriod(message),
				Score:  fallbackConfidence,
			}
		},
	},
}

// Fallback runs the deterministic rule list against a message. It returns
// nil when no rule matches; that is not an error, the message is simply not
// an actionable command.
func (p *Parser) Fallback(message string) types.Intent {
	for _, rule := range fallbackRules {
		m := rule.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		if intent := rule.build(p, m, message); intent != nil {
			return intent
		}
	}
	return nil
}

// fallbackToken normalizes a captured token symbol. Empty means the native
// token; an unsupported symbol discards the whole match.
func (p *Parser) fallbackToken(captured string) (string, bool) {
	if captured == "" {
		return p.chain.NativeSymbol, true
	}
	symbol := strings.ToUpper(captured)
	if !p.chain.Supported(symbol) {
		return "", false
	}
	return symbol, true
}

// findSupportedToken returns the first supported token symbol mentioned in
// the message, or empty for the native token.
func (p *Parser) findSupportedToken(message string) string {
	for _, word := range strings.Fields(message) {
		symbol := strings.ToUpper(strings.Trim(word, ".,!?"))
		if p.chain.Supported(symbol) {
			return symbol
		}
	}
	return ""
}

var periodPattern = regexp.MustCompile(`(?i)\b(today|week|month)\b`)

func findPeriod(message string) string {
	if m := periodPattern.FindStringSubmatch(message); m != nil {
		return strings.ToLower(m[1])
	}
	return "week"
}
