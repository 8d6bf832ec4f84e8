package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04"

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage ingested sessions",
	Long:    `List, inspect and delete the sessions created by ingest.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session and its course structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session and its embeddings",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsDeleteForce bool

func init() {
	sessionsDeleteCmd.Flags().BoolVarP(&sessionsDeleteForce, "force", "f", false, "delete without confirmation")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if err := requireService("session", sessionService); err != nil {
		return err
	}

	sessions, err := sessionService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if jsonOutput {
		if sessions == nil {
			sessions = []domain.Session{}
		}
		return writeJSON(cmd, sessions)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions. Run 'lecturelens ingest <directory>' to create one.")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		rows = append(rows, []string{
			s.ID,
			s.CreatedAt.Local().Format(timeLayout),
			strings.Join(courseNames(s.CourseStructure), ", "),
			strconv.Itoa(s.DocumentCount),
			strconv.Itoa(s.RecordCount),
			modelLabel(s),
		})
	}
	cmd.Println(renderTable(
		[]string{"ID", "Created", "Courses", "Docs", "Records", "Model"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if err := requireService("session", sessionService); err != nil {
		return err
	}

	session, err := sessionService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd, session)
	}

	cmd.Println(styled(headingStyle, "Session "+session.ID))
	cmd.Printf("  Created:         %s\n", session.CreatedAt.Local().Format(timeLayout))
	cmd.Printf("  Updated:         %s\n", session.UpdatedAt.Local().Format(timeLayout))
	cmd.Printf("  Files processed: %d\n", session.FilesProcessed)
	cmd.Printf("  Documents:       %d\n", session.DocumentCount)
	cmd.Printf("  Records:         %d\n", session.RecordCount)
	cmd.Printf("  Model:           %s\n", modelLabel(session))
	cmd.Println()
	printCourseStructure(cmd, session.CourseStructure)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	if err := requireService("session", sessionService); err != nil {
		return err
	}

	id := args[0]
	if !sessionsDeleteForce && stdinIsTerminal() {
		cmd.Printf("Delete session %s and all its embeddings? [y/N]: ", id)
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := sessionService.Delete(commandContext(cmd), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	cmd.Printf("Session %s deleted.\n", id)
	return nil
}

func courseNames(cs domain.CourseStructure) []string {
	names := make([]string, 0, len(cs))
	for c := range cs {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

func modelLabel(s *domain.Session) string {
	if s.EmbeddingModel == "" {
		return "(not embedded)"
	}
	if s.Dimensions > 0 {
		return fmt.Sprintf("%s (%dd)", s.EmbeddingModel, s.Dimensions)
	}
	return s.EmbeddingModel
}
