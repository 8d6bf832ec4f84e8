package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, AI providers, batching and pacing.

Settings live in ~/.lecturelens/config.toml. API keys that are not set there
are read from GOOGLE_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY and
ANTHROPIC_API_KEY, or from a .env file in the working directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by key, for example:

  lecturelens settings set batch.size 10
  lecturelens settings set pacing.requests_per_minute 60
  lecturelens settings set storage.backend postgres

Run 'lecturelens settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by set",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively choose the provider and model used to embed transcripts.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively choose the provider and model used to answer chat questions.`,
	RunE:  runSettingsLLM,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configured providers respond",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if jsonOutput {
		masked := *settings
		masked.Embedding.APIKey = maskOptional(settings.Embedding.APIKey)
		masked.LLM.APIKey = maskOptional(settings.LLM.APIKey)
		masked.Storage.DSN = maskOptional(settings.Storage.DSN)
		return writeJSON(cmd, masked)
	}

	cmd.Println(styled(headingStyle, "[Storage]"))
	cmd.Printf("  Data dir:    %s\n", settings.DataDir)
	cmd.Printf("  Backend:     %s\n", settings.Storage.Backend)
	if settings.Storage.DSN != "" {
		cmd.Printf("  DSN:         %s\n", maskAPIKey(settings.Storage.DSN))
	}
	cmd.Printf("  Archive raw: %t\n", settings.Storage.ArchiveRaw)
	cmd.Println()

	cmd.Println(styled(headingStyle, "[Embedding]"))
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" || settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(settings.Embedding.BaseURL))
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println(styled(headingStyle, "[LLM]"))
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" || settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(settings.LLM.BaseURL))
	}
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	printAPIKey(cmd, settings.LLM.Provider, settings.LLM.APIKey)
	printStatus(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println(styled(headingStyle, "[Batch]"))
	cmd.Printf("  Size: %d\n", settings.Batch.Size)
	cmd.Printf("  Chunk size: %d\n", settings.Batch.ChunkSize)
	cmd.Printf("  Max retries: %d\n", settings.Batch.MaxRetries)
	cmd.Printf("  Resume by chunk: %t\n", settings.Batch.ResumeByChunk)
	cmd.Println()

	cmd.Println(styled(headingStyle, "[Pacing]"))
	cmd.Printf("  Item delay: %s\n", settings.Pacing.ItemDelay)
	cmd.Printf("  Batch delay: %s\n", settings.Pacing.BatchDelay)
	if settings.Pacing.RequestsPerMinute > 0 {
		cmd.Printf("  Requests per minute: %g (burst %d)\n", settings.Pacing.RequestsPerMinute, settings.Pacing.Burst)
	} else {
		cmd.Printf("  Requests per minute: unlimited\n")
	}
	cmd.Printf("  Backoff: %s\n", settings.Pacing.Backoff)
	cmd.Println()

	cmd.Println(styled(headingStyle, "[Query]"))
	cmd.Printf("  Top K: %d\n", settings.Query.TopK)
	cmd.Printf("  Chat top K: %d\n", settings.Query.ChatTopK)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireService("settings", settingsService); err != nil {
		return err
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService); err != nil {
		return err
	}

	keys := settingsService.Keys()
	if jsonOutput {
		return writeJSON(cmd, keys)
	}
	for _, k := range keys {
		cmd.Println(k)
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService); err != nil {
		return err
	}

	var failed bool
	cmd.Print("Embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Println(styled(warnStyle, "FAILED: "+err.Error()))
		failed = true
	} else {
		cmd.Println(styled(successStyle, "OK"))
	}

	cmd.Print("LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Println(styled(warnStyle, "FAILED: "+err.Error()))
		failed = true
	} else {
		cmd.Println(styled(successStyle, "OK"))
	}

	if failed {
		return errors.New("configuration is not valid")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService); err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		label:     "Embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService); err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		label:     "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	})
}

// providerPrompt describes one provider selection flow.
type providerPrompt struct {
	label     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Printf("Select %s Provider\n", p.label)
	for i, provider := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.providers), 1)
	selected := p.providers[idx-1]

	defaultModel := p.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (leave empty to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := p.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", p.label, err)
	}

	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", p.label, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", p.label, selected.Description(), model)
	return nil
}

func printAPIKey(cmd *cobra.Command, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	if configured {
		cmd.Printf("  Status: %s\n", styled(successStyle, "configured"))
		return
	}
	cmd.Printf("  Status: %s\n", styled(warnStyle, "not configured"))
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal, otherwise from reader.
func readPassword(reader *bufio.Reader) string {
	if stdinIsTerminal() {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskOptional(s string) string {
	if s == "" {
		return ""
	}
	return maskAPIKey(s)
}
