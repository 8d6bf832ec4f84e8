package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

var embedCmd = &cobra.Command{
	Use:   "embed [session-id]",
	Short: "Generate embeddings for a session",
	Long: `Chunks and embeds every document of a session with the configured
embedding provider.

Embedding resumes where it stopped: chunks embedded by an earlier run are
skipped, so the command can be re-run after a rate limit or an interruption.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	if err := requireService("embed", embedService); err != nil {
		return err
	}

	defer logger.Elapsed("embed")()

	report, err := embedService.EmbedSession(commandContext(cmd), args[0])
	switch {
	case errors.Is(err, domain.ErrEmbeddingInProgress):
		return fmt.Errorf("session %s is already being embedded", args[0])
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fmt.Errorf("%w: run 'lecturelens settings embedding' to configure a provider", err)
	case err != nil:
		return fmt.Errorf("embed failed: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd, report)
	}
	printEmbedReport(cmd, report)
	return nil
}

func printEmbedReport(cmd *cobra.Command, report *domain.EmbedReport) {
	cmd.Println(styled(headingStyle, "Embedded session "+report.SessionID))
	cmd.Printf("  Generated: %d\n", report.EmbeddingsGenerated)
	cmd.Printf("  Skipped:   %d\n", report.Skipped)
	cmd.Printf("  Failed:    %d\n", report.Failed)
	cmd.Printf("  Total:     %d\n", report.TotalEmbeddings)

	if len(report.Errors) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(styled(warnStyle, "Errors:"))
	for _, e := range report.Errors {
		cmd.Printf("  %s: %s\n", e.ID, e.Message)
	}
	cmd.Println(styled(mutedStyle, "Run the command again to retry failed chunks."))
}
