package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "chainchat",
	Short: "A chat-driven agent for on-chain transfers",
	Long: `chainchat turns plain chat commands into verified on-chain transfers.
Every transfer is proposed with a cost estimate first and only executes
after you explicitly confirm it.

Examples:
  chainchat chat
  chainchat balance
  chainchat balance USDC`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
