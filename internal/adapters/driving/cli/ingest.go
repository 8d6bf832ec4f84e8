package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/connectors"
	"github.com/custodia-labs/lecturelens/internal/connectors/filesystem"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

var (
	ingestNoRootName bool
	ingestEmbed      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Ingest a folder of lecture subtitles",
	Long: `Reads every .srt and .vtt file under a course folder and stores the
cleaned transcripts in a new session.

The folder layout gives each transcript its course and chapter:

  Biology/Week 1/01 Cells.srt  ->  course "Biology", chapter "Week 1"

Use --no-root-name when the folder holds several courses, so that its
subfolders become the course names. Other files are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoRootName, "no-root-name", false,
		"treat subfolders of the directory as courses")
	ingestCmd.Flags().BoolVar(&ingestEmbed, "embed", false, "embed the new session after ingest")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireService("ingest", ingestService); err != nil {
		return err
	}
	if ingestEmbed {
		if err := requireService("embed", embedService); err != nil {
			return err
		}
	}

	ctx := commandContext(cmd)

	var opts []filesystem.Option
	if ingestNoRootName {
		opts = append(opts, filesystem.WithoutRootName())
	}
	conn := filesystem.New(args[0], opts...)
	defer conn.Close()

	files, err := connectors.Collect(ctx, conn)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	result, err := ingestService.Ingest(ctx, files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var report *domain.EmbedReport
	if ingestEmbed {
		report, err = embedService.EmbedSession(ctx, result.SessionID)
		if err != nil {
			return fmt.Errorf("embed failed: %w", err)
		}
	}

	if jsonOutput {
		return writeJSON(cmd, struct {
			*domain.IngestResult
			Embed *domain.EmbedReport `json:"embed,omitempty"`
		}{result, report})
	}

	cmd.Println(styled(headingStyle, "Session "+result.SessionID))
	cmd.Printf("  Files processed:     %d\n", result.FilesProcessed)
	cmd.Printf("  Files skipped:       %d\n", result.FilesSkipped)
	cmd.Printf("  Documents generated: %d\n", result.DocumentsGenerated)
	cmd.Println()
	printCourseStructure(cmd, result.CourseStructure)

	if report != nil {
		cmd.Println()
		printEmbedReport(cmd, report)
	} else {
		cmd.Println()
		cmd.Println(styled(mutedStyle, "Next: lecturelens embed "+result.SessionID))
	}
	return nil
}

// printCourseStructure prints courses and chapters sorted by name,
// with filenames in ingestion order.
func printCourseStructure(cmd *cobra.Command, cs domain.CourseStructure) {
	if len(cs) == 0 {
		cmd.Println("No courses found.")
		return
	}

	courses := make([]string, 0, len(cs))
	for c := range cs {
		courses = append(courses, c)
	}
	sort.Strings(courses)

	for _, course := range courses {
		cmd.Println(styled(headingStyle, course))
		chapters := make([]string, 0, len(cs[course]))
		for ch := range cs[course] {
			chapters = append(chapters, ch)
		}
		sort.Strings(chapters)

		for _, chapter := range chapters {
			cmd.Printf("  %s\n", chapter)
			for _, f := range cs[course][chapter] {
				cmd.Printf("    %s\n", styled(mutedStyle, f))
			}
		}
	}
}
