// Command mag is an AI-mediated command execution assistant: natural
// language in, policy-checked file writes and shell commands out.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/magproject/mag/internal/cli"
	"github.com/magproject/mag/internal/conversation"
	"github.com/magproject/mag/internal/coordinator"
	"github.com/magproject/mag/internal/executor"
	"github.com/magproject/mag/internal/llm"
	"github.com/magproject/mag/internal/policy"
	"github.com/magproject/mag/internal/provider"
	"github.com/magproject/mag/internal/todo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Exit codes: 0 normal, 1 recoverable error, 2 configuration failure.
const (
	exitError  = 1
	exitConfig = 2
)

var validProviders = map[string]bool{
	"gemini": true, "chatgpt": true, "claude": true, "mistral": true,
}

func main() {
	var providerFlag string

	rootCmd := &cobra.Command{
		Use:   "mag [request...]",
		Short: "AI-mediated command execution assistant",
		Long: `mag turns natural-language requests into policy-checked operations:
file writes previewed and confirmed before they land, and shell commands
run through an allow/deny filter.

With no arguments the interactive shell starts; with arguments the words
are concatenated as a one-shot request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if providerFlag != "" && !validProviders[providerFlag] {
				fmt.Fprintf(os.Stderr, "Error: invalid provider %q\nValid providers: gemini, chatgpt, claude, mistral\n", providerFlag)
				os.Exit(exitError)
			}
			return run(providerFlag, args)
		},
	}
	rootCmd.Flags().StringVar(&providerFlag, "provider", "", "model provider (gemini|chatgpt|claude|mistral)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(exitError)
	}
}

func run(providerOverride string, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	// Policy loads first; a malformed document is fatal with exit status 2
	// and a readable diagnostic, no implicit repair.
	doc, err := policy.LoadOrCreate(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		fmt.Fprintln(os.Stderr, "Fix the policy file or delete it to regenerate defaults.")
		os.Exit(exitConfig)
	}
	engine := policy.NewEngine(doc, root)

	logger, closeLog, err := cli.NewDebugLogger(root)
	if err != nil {
		return err
	}
	defer closeLog()

	adapter, err := selectAdapter(providerOverride)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(exitConfig)
	}

	model, err := llm.NewClient(adapter, engine)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(exitConfig)
	}

	console := cli.NewConsole()
	reader := cli.NewStdinReader(root)
	ui := cli.NewUserInterface(console, reader)
	conv := conversation.NewManager(root)

	coord := coordinator.New(
		model, engine, todo.NewManager(), executor.NewFileWriter(), executor.NewRunner(),
		ui, logger, coordinator.Options{Autonomous: true},
	)

	if len(args) > 0 {
		return runOneShot(coord, conv, strings.Join(args, " "))
	}

	shell := cli.NewShell(coord, conv, console, reader, logger, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := policy.NewWatcher(engine, root, logger).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		defer cancel()
		return shell.Run()
	})
	return group.Wait()
}

// runOneShot processes a single request and flushes the session.
func runOneShot(coord *coordinator.Coordinator, conv *conversation.Manager, request string) error {
	conv.AddUserMessage(request)
	reply, err := coord.Run(request, conv.History())
	if err != nil {
		return err
	}
	if reply != "" {
		conv.AddAssistantMessage(reply, coord.Provider())
	}
	return conv.Save()
}

// selectAdapter maps a friendly override to its adapter, or auto-detects
// from the environment when no override was given.
func selectAdapter(friendly string) (provider.Adapter, error) {
	if friendly == "" {
		return provider.Detect()
	}
	return provider.New(coordinator.InternalProviderName(friendly))
}
