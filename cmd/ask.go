package cmd

import (
	"fmt"
	"strings"

	"github.com/FazinHan/lmstudio-webapp/internal/app"
	"github.com/FazinHan/lmstudio-webapp/internal/chat"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/spf13/cobra"
)

const cliSessionID = "cli"

func askCommand(app app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the model and print the reply.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ask(cmd, args, app)
		},
	}
}

func ask(cmd *cobra.Command, args []string, app app.App) error {
	relay, closeStore, err := newMemoryRelay(app)
	if err != nil {
		return err
	}
	defer closeStore()

	reply, err := relay.Send(cmd.Context(), cliSessionID, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to generate response: %v", err)
	}

	formattedRes, err := app.Format().FormatMarkdown(reply)
	if err != nil {
		return fmt.Errorf("failed to format response: %v", err)
	}
	cmd.OutOrStdout().Write([]byte(formattedRes))
	return nil
}

// newMemoryRelay builds a relay over a process-local session store for the
// terminal commands.
func newMemoryRelay(app app.App) (*chat.Relay, func() error, error) {
	prompt, err := resolvePrompt()
	if err != nil {
		return nil, nil, err
	}

	client, err := newLLMClient(app)
	if err != nil {
		return nil, nil, err
	}

	store, err := app.Sessions().Open(session.KindMemory, session.Options{SystemPrompt: prompt})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %v", err)
	}

	return chat.NewRelay(store, chat.NewCompleter(client)), store.Close, nil
}
