package intentparser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chainchat-labs/chainchat/common/types"
)

// systemPromptTemplate instructs the model to answer with nothing but a JSON
// object matching one of the fixed action schemas.
const systemPromptTemplate = `You are a payment assistant for an EVM chain. Interpret the user's message and respond with ONLY a JSON object, no prose, matching exactly one of these schemas:

{"action":"transfer","amount":"<decimal string>","token":"<symbol>","recipient":"<name or 0x address>","confidence":<0..1>}
{"action":"balance","token":"<symbol or empty>","confidence":<0..1>}
{"action":"add_contact","name":"<name>","recipient":"<0x address>","group":"<group or empty>","confidence":<0..1>}
{"action":"create_team","teamName":"<name>","description":"<text or empty>","confidence":<0..1>}
{"action":"history","period":"<today|week|month>","confidence":<0..1>}

The native token is %s. Supported token symbols: %s.
Use "0" for amount when the action moves no funds. Set confidence to how certain you are the interpretation is correct.`

// buildSystemPrompt renders the schema prompt for the configured chain.
func buildSystemPrompt(chain *types.ChainConfig) string {
	symbols := make([]string, 0, len(chain.Tokens)+1)
	symbols = append(symbols, chain.NativeSymbol)
	for sym := range chain.Tokens {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return fmt.Sprintf(systemPromptTemplate, chain.NativeSymbol, strings.Join(symbols, ", "))
}
