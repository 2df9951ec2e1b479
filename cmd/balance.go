package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [token]",
	Short: "Show the wallet balance",
	Long: `Show the configured wallet's balance of the native token, or of a
configured ERC-20 token.

Examples:
  chainchat balance
  chainchat balance USDC`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.close()

	chainConfig := a.cfg.ChainConfig()
	symbol := chainConfig.NativeSymbol
	if len(args) == 1 {
		symbol = strings.ToUpper(args[0])
	}

	token, ok := chainConfig.Token(symbol)
	if !ok {
		printError(fmt.Errorf("token %q is not configured on %s", symbol, chainConfig.Name))
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Start()
	balance, err := a.chain.GetBalance(ctx, a.wallet.Address().Hex(), token)
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	color.Green("%s %s", balance, token.Symbol)
}
