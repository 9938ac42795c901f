package cmd

import (
	"context"
	"fmt"

	"github.com/FazinHan/lmstudio-webapp/internal/app"
	"github.com/FazinHan/lmstudio-webapp/internal/config"
	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/FazinHan/lmstudio-webapp/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type chatTurn interface {
	Send(ctx context.Context, sessionID string, text string) (string, error)
}

func chatCommand(app app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the model in the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, app)
		},
	}
}

func runChat(cmd *cobra.Command, app app.App) error {
	relay, closeStore, err := newMemoryRelay(app)
	if err != nil {
		return err
	}
	defer closeStore()

	transcript, err := relay.Start(cmd.Context(), cliSessionID)
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}

	TUIModel := app.TUI().InitialModel(ui.InitialModelOptions{
		Title:          fmt.Sprintf("%s @ %s", viper.GetString(config.ENV_MODEL), viper.GetString(config.ENV_ENDPOINT)),
		Messages:       transcript,
		GetBotResponse: makeBotResponder(cmd.Context(), relay, cliSessionID),
	})
	if _, err := app.TUI().Run(TUIModel); err != nil {
		return fmt.Errorf("error running interactive mode: %v", err)
	}
	return nil
}

func makeBotResponder(ctx context.Context, relay chatTurn, sessionID string) func(string) tea.Cmd {
	return func(text string) tea.Cmd {
		return func() tea.Msg {
			reply, err := relay.Send(ctx, sessionID, text)
			if err != nil {
				return llm.Message{
					Role:    llm.Assistant,
					Content: fmt.Sprintf("Error: failed to generate response: %v", err),
				}
			}

			return llm.Message{
				Role:    llm.Assistant,
				Content: reply,
			}
		}
	}
}
