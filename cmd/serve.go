package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FazinHan/lmstudio-webapp/internal/app"
	"github.com/FazinHan/lmstudio-webapp/internal/chat"
	"github.com/FazinHan/lmstudio-webapp/internal/config"
	"github.com/FazinHan/lmstudio-webapp/internal/notify"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/FazinHan/lmstudio-webapp/internal/web"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const notifyTimeout = 30 * time.Second

func serve(cmd *cobra.Command, app app.App) error {
	prompt, err := resolvePrompt()
	if err != nil {
		return err
	}

	client, err := newLLMClient(app)
	if err != nil {
		return err
	}

	store, err := app.Sessions().Open(session.Kind(viper.GetString(config.ENV_SESSION_STORE)), session.Options{
		SystemPrompt: prompt,
		Path:         viper.GetString(config.ENV_SESSION_DB),
	})
	if err != nil {
		return fmt.Errorf("failed to open session store: %v", err)
	}
	defer store.Close()

	relay := chat.NewRelay(store, chat.NewCompleter(client))
	server := web.NewServer(relay, web.Options{
		Title:        fmt.Sprintf("Chat with %s", viper.GetString(config.ENV_MODEL)),
		RateLimit:    viper.GetInt(config.ENV_RATE_LIMIT),
		SecureCookie: true,
	})

	port := viper.GetInt(config.ENV_PORT)
	ip := app.Notify().LocalIP()
	accessURL := fmt.Sprintf("https://%s:%d", ip, port)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "--- Web App is Running ---")
	fmt.Fprintf(out, "Access it from this computer at: https://localhost:%d\n", port)
	fmt.Fprintf(out, "Access it from other devices at: %s\n", accessURL)
	fmt.Fprintln(out, "--------------------------")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if noNotify, _ := cmd.Flags().GetBool("no-notify"); !noNotify {
		err := app.Notify().Notify(ctx, notify.EmailOptions{
			Credentials: notify.Credentials{
				Sender:    viper.GetString(config.ENV_SENDER_EMAIL),
				Password:  viper.GetString(config.ENV_SENDER_PASSWORD),
				Recipient: viper.GetString(config.ENV_RECIPIENT_EMAIL),
			},
			Host:    viper.GetString(config.ENV_SMTP_HOST),
			Port:    viper.GetInt(config.ENV_SMTP_PORT),
			Timeout: notifyTimeout,
		}, accessURL, ip)
		if err != nil {
			logrus.WithError(err).Warn("FAILED to send email")
		}
	}

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	logrus.WithFields(logrus.Fields{
		"addr":          addr,
		"provider":      viper.GetString(config.ENV_PROVIDER),
		"model":         viper.GetString(config.ENV_MODEL),
		"endpoint":      viper.GetString(config.ENV_ENDPOINT),
		"session_store": viper.GetString(config.ENV_SESSION_STORE),
	}).Info("Starting server")

	if err := app.Web().Serve(ctx, server, addr, viper.GetString(config.ENV_CERT_FILE), viper.GetString(config.ENV_KEY_FILE)); err != nil {
		return fmt.Errorf("error serving: %v", err)
	}
	return nil
}
