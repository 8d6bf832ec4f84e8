package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

var (
	queryTopK        int
	queryShowContext bool
)

var queryCmd = &cobra.Command{
	Use:   "query [session-id] [question]",
	Short: "Find the lecture passages closest to a question",
	Long: `Embeds the question and ranks the session's passages by cosine
similarity. Prints the best matches with their course, chapter and file.

Use --context to print the assembled context block that chat sends to the LLM.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to return (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryShowContext, "context", false, "print the assembled context block")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := requireService("query", queryService); err != nil {
		return err
	}
	if queryTopK < 0 {
		return fmt.Errorf("%w: --top-k must not be negative", domain.ErrInvalidInput)
	}

	sessionID := args[0]
	question := strings.Join(args[1:], " ")

	result, err := queryService.Query(commandContext(cmd), sessionID, question, queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd, result)
	}
	return outputQueryTable(cmd, result)
}

func outputQueryTable(cmd *cobra.Command, result *domain.QueryResult) error {
	if result.IsEmpty() {
		cmd.Println("No results found. Has the session been embedded?")
		return nil
	}

	rows := make([][]string, 0, len(result.Results))
	for i, r := range result.Results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.3f", r.Score),
			r.Metadata.Course,
			r.Metadata.Chapter,
			r.Metadata.Filename,
			truncate(strings.Join(strings.Fields(r.Content), " "), 60),
		})
	}
	cmd.Println(renderTable(
		[]string{"#", "Score", "Course", "Chapter", "File", "Passage"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	))

	if queryShowContext {
		cmd.Println()
		cmd.Println(styled(headingStyle, "Context"))
		cmd.Println(result.ContextBlock)
	}
	return nil
}
