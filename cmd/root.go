package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/FazinHan/lmstudio-webapp/internal/app"
	"github.com/FazinHan/lmstudio-webapp/internal/config"
	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/FazinHan/lmstudio-webapp/internal/logging"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RootCommand(app app.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lmstudio-webapp",
		Short: "Chat with a local language model from any device on your network.",
		Args:  cobra.NoArgs,
		Example: `
lmstudio-webapp   # Serve https://0.0.0.0:5000 backed by LM Studio on 127.0.0.1:1234
lmstudio-webapp --provider ollama --endpoint http://127.0.0.1:11434 --model llama3
lmstudio-webapp --session-store sqlite --session-db chats.db
lmstudio-webapp ask "What is a goroutine?"
lmstudio-webapp chat
	`,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, app)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().SortFlags = false

	rootCmd.PersistentFlags().StringP("prompt", "p", config.DEFAULT_PROMPT,
		fmt.Sprintf(
			`System prompt every conversation starts with. (env: %s)
- If <value> is a number, it will look for the environment variable %s_<number> instead.
`, config.GetEnvWithPrefix(config.ENV_PROMPT), config.GetEnvWithPrefix(config.ENV_PROMPT)))
	rootCmd.PersistentFlags().String("provider", config.DEFAULT_PROVIDER,
		fmt.Sprintf("Inference server API, one of %v. (env: %s)", llm.LLMProviders, config.GetEnvWithPrefix(config.ENV_PROVIDER)))
	rootCmd.PersistentFlags().String("model", config.DEFAULT_MODEL,
		fmt.Sprintf("Model identifier sent to the inference server. (env: %s)", config.GetEnvWithPrefix(config.ENV_MODEL)))
	rootCmd.PersistentFlags().String("endpoint", config.DEFAULT_ENDPOINT,
		fmt.Sprintf("Inference server base URL. (env: %s)", config.GetEnvWithPrefix(config.ENV_ENDPOINT)))
	rootCmd.PersistentFlags().String("api-key", config.DEFAULT_API_KEY,
		fmt.Sprintf("API key sent to OpenAI-compatible servers. (env: %s)", config.GetEnvWithPrefix(config.ENV_API_KEY)))
	rootCmd.PersistentFlags().Float64("temperature", config.DEFAULT_TEMPERATURE,
		fmt.Sprintf("Sampling temperature. (env: %s)", config.GetEnvWithPrefix(config.ENV_TEMPERATURE)))
	rootCmd.PersistentFlags().Duration("timeout", config.DEFAULT_TIMEOUT,
		fmt.Sprintf("Timeout of a single inference request. (env: %s)", config.GetEnvWithPrefix(config.ENV_TIMEOUT)))
	rootCmd.PersistentFlags().String("log-level", config.DEFAULT_LOG_LEVEL,
		fmt.Sprintf("Log level. (env: %s)", config.GetEnvWithPrefix(config.ENV_LOG_LEVEL)))
	rootCmd.PersistentFlags().String("log-format", config.DEFAULT_LOG_FORMAT,
		fmt.Sprintf("Log format, text or json. (env: %s)", config.GetEnvWithPrefix(config.ENV_LOG_FORMAT)))
	rootCmd.PersistentFlags().String("env-file", config.DEFAULT_ENV_FILE, "Dotenv file with settings and email credentials, ignored when missing.")

	rootCmd.Flags().Int("port", config.DEFAULT_PORT,
		fmt.Sprintf("Port to listen on, all interfaces. (env: %s)", config.GetEnvWithPrefix(config.ENV_PORT)))
	rootCmd.Flags().String("cert", config.DEFAULT_CERT_FILE,
		fmt.Sprintf("TLS certificate file. (env: %s)", config.GetEnvWithPrefix(config.ENV_CERT_FILE)))
	rootCmd.Flags().String("key", config.DEFAULT_KEY_FILE,
		fmt.Sprintf("TLS private key file. (env: %s)", config.GetEnvWithPrefix(config.ENV_KEY_FILE)))
	rootCmd.Flags().String("session-store", config.DEFAULT_SESSION_STORE,
		fmt.Sprintf("Session store backend, one of %v. (env: %s)", session.Kinds, config.GetEnvWithPrefix(config.ENV_SESSION_STORE)))
	rootCmd.Flags().String("session-db", config.DEFAULT_SESSION_DB,
		fmt.Sprintf("SQLite database used by the sqlite session store. (env: %s)", config.GetEnvWithPrefix(config.ENV_SESSION_DB)))
	rootCmd.Flags().Int("rate-limit", 0,
		fmt.Sprintf("Maximum chat requests per minute, 0 disables the limit. (env: %s)", config.GetEnvWithPrefix(config.ENV_RATE_LIMIT)))
	rootCmd.Flags().Bool("no-notify", false, "Do not send the startup notification email.")

	viper.BindPFlag(config.ENV_PROMPT, rootCmd.PersistentFlags().Lookup("prompt"))
	viper.BindPFlag(config.ENV_PROVIDER, rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag(config.ENV_MODEL, rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag(config.ENV_ENDPOINT, rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag(config.ENV_API_KEY, rootCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag(config.ENV_TEMPERATURE, rootCmd.PersistentFlags().Lookup("temperature"))
	viper.BindPFlag(config.ENV_TIMEOUT, rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag(config.ENV_LOG_LEVEL, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.ENV_LOG_FORMAT, rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag(config.ENV_PORT, rootCmd.Flags().Lookup("port"))
	viper.BindPFlag(config.ENV_CERT_FILE, rootCmd.Flags().Lookup("cert"))
	viper.BindPFlag(config.ENV_KEY_FILE, rootCmd.Flags().Lookup("key"))
	viper.BindPFlag(config.ENV_SESSION_STORE, rootCmd.Flags().Lookup("session-store"))
	viper.BindPFlag(config.ENV_SESSION_DB, rootCmd.Flags().Lookup("session-db"))
	viper.BindPFlag(config.ENV_RATE_LIMIT, rootCmd.Flags().Lookup("rate-limit"))

	viper.SetEnvPrefix(config.ENV_PREFIX)
	viper.AutomaticEnv()
	config.BindNotificationEnv()

	rootCmd.AddCommand(askCommand(app), chatCommand(app))

	return rootCmd
}

func setup(cmd *cobra.Command, args []string) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		envFile = config.DEFAULT_ENV_FILE
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	logging.Init(viper.GetString(config.ENV_LOG_LEVEL), viper.GetString(config.ENV_LOG_FORMAT), cmd.ErrOrStderr())

	return validate(cmd, args)
}

func validate(cmd *cobra.Command, args []string) error {
	provider := viper.GetString(config.ENV_PROVIDER)
	if !slices.Contains(llm.LLMProviders, llm.LLMProvider(provider)) {
		return fmt.Errorf("invalid provider '%s'. Valid providers are: %v", provider, llm.LLMProviders)
	}

	model := viper.GetString(config.ENV_MODEL)
	if model == "" {
		return fmt.Errorf("model must be specified '%s'", model)
	}
	prompt := viper.GetString(config.ENV_PROMPT)
	if prompt == "" {
		return fmt.Errorf("prompt must be specified '%s'", prompt)
	}

	temperature := viper.GetFloat64(config.ENV_TEMPERATURE)
	if temperature < config.MIN_TEMPERATURE || temperature > config.MAX_TEMPERATURE {
		return fmt.Errorf("temperature must be between %.1f and %.1f, got %v", config.MIN_TEMPERATURE, config.MAX_TEMPERATURE, temperature)
	}

	store := viper.GetString(config.ENV_SESSION_STORE)
	if !slices.Contains(session.Kinds, session.Kind(store)) {
		return fmt.Errorf("invalid session store '%s'. Valid stores are: %v", store, session.Kinds)
	}

	return nil
}

func resolvePrompt() (string, error) {
	prompt := viper.GetString(config.ENV_PROMPT)
	promptNo, err := strconv.Atoi(prompt)
	if err == nil {
		promptEnv := fmt.Sprintf("%s_%v", config.ENV_PROMPT, promptNo)
		prompt = viper.GetString(promptEnv)
		if prompt == "" {
			return "", fmt.Errorf("invalid instructions no, env variable not found %s", promptEnv)
		}
	}
	return prompt, nil
}

func newLLMClient(app app.App) (llm.LLMClient, error) {
	provider := viper.GetString(config.ENV_PROVIDER)
	client, err := app.LLM().NewClient(llm.LLMProvider(provider), llm.LLMClientOptions{
		Model:       viper.GetString(config.ENV_MODEL),
		Endpoint:    viper.GetString(config.ENV_ENDPOINT),
		APIKey:      viper.GetString(config.ENV_API_KEY),
		Temperature: viper.GetFloat64(config.ENV_TEMPERATURE),
		Timeout:     viper.GetDuration(config.ENV_TIMEOUT),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %v", err)
	}
	return client, nil
}
