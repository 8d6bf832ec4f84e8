// Package cli implements the lecturelens command line using cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/core/ports/driving"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Services holds the driving ports used by the commands.
type Services struct {
	Ingest   driving.IngestService
	Embed    driving.EmbedService
	Query    driving.QueryService
	Chat     driving.ChatService
	Session  driving.SessionService
	Settings driving.SettingsService
}

var (
	ingestService   driving.IngestService
	embedService    driving.EmbedService
	queryService    driving.QueryService
	chatService     driving.ChatService
	sessionService  driving.SessionService
	settingsService driving.SettingsService
)

var (
	verboseFlag bool
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "lecturelens",
	Short: "Ask questions about your recorded lectures",
	Long: `LectureLens turns folders of lecture subtitles into a searchable
knowledge base.

Ingest a course folder of .srt or .vtt files, embed it with the provider of
your choice, then query or chat with it. Answers cite the course and chapter
they come from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
}

// SetServices wires the services used by the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	embedService = s.Embed
	queryService = s.Query
	chatService = s.Chat
	sessionService = s.Session
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errNotConfigured = errors.New("service not configured")

// requireService returns an error naming the service when svc is nil.
func requireService(name string, svc any) error {
	if svc == nil {
		return fmt.Errorf("%s %w", name, errNotConfigured)
	}
	return nil
}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return isTerminal(os.Stdin.Fd())
}
