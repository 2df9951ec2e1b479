package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chainchat-labs/chainchat/pipeline"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive transfer session",
	Long: `Open a chat session with the agent. Describe what you want in plain
language and confirm or cancel proposed transfers.

Examples:
  > send 50 STT to alice
  > pay 0x1111111111111111111111111111111111111111 25 USDC
  > balance
  > add contact alice 0x2222222222222222222222222222222222222222
  > show my transactions this week

Reply "yes" to confirm a proposed transfer, "no" to cancel it, and
"exit" to leave.`,
	Run: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.close()

	sessionID := uuid.NewString()
	bold := color.New(color.Bold)
	prompt := color.New(color.FgCyan)

	bold.Printf("chainchat on %s, wallet %s\n", a.cfg.ChainName, a.wallet.Address().Hex())
	fmt.Println(`Type what you want to do, or "exit" to leave.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		switch strings.ToLower(message) {
		case "exit", "quit":
			return
		case "yes", "y", "confirm":
			respond(func() (*pipeline.Reply, error) {
				return a.pipeline.Confirm(ctx, sessionID, a.wallet)
			})
			continue
		case "no", "n", "cancel":
			respond(func() (*pipeline.Reply, error) {
				return a.pipeline.Cancel(sessionID)
			})
			continue
		}

		respond(func() (*pipeline.Reply, error) {
			return a.pipeline.HandleMessage(ctx, sessionID, a.wallet, message)
		})
	}
}

// respond runs one pipeline call behind a spinner and prints the reply.
func respond(call func() (*pipeline.Reply, error)) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Start()
	reply, err := call()
	s.Stop()

	if err != nil && reply == nil {
		printError(err)
		return
	}
	if reply.Proposed != nil {
		color.Yellow(reply.Text)
		return
	}
	if err != nil {
		color.Red(reply.Text)
		return
	}
	fmt.Println(reply.Text)
}
