package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listJSON bool

var (
	listHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listNameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	listTaskTypeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	listDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions with their task types and descriptions",
	Long: `List every session known to the multiplexer, joined with its recorded
metadata. Sessions without metadata are shown with the default oneshot
task type. --json emits the list as a JSON array for programmatic use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		sessions, err := eng.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if listJSON {
			emitJSON(sessions)
			return nil
		}

		if len(sessions) == 0 {
			fmt.Println(listDimStyle.Render("no sessions"))
			return nil
		}

		fmt.Printf("%s  %s  %s  %s  %s\n",
			listHeaderStyle.Render(pad("NAME", 24)),
			listHeaderStyle.Render(pad("TASK", 12)),
			listHeaderStyle.Render(pad("WINDOWS", 7)),
			listHeaderStyle.Render(pad("AGE", 8)),
			listHeaderStyle.Render("DESCRIPTION"),
		)
		for _, s := range sessions {
			taskType := string(s.TaskType)
			if taskType == "" {
				taskType = "oneshot"
			}
			fmt.Printf("%s  %s  %s  %s  %s\n",
				listNameStyle.Render(pad(s.Name, 24)),
				listTaskTypeStyle.Render(pad(taskType, 12)),
				pad(fmt.Sprintf("%d", s.Windows), 7),
				pad(age(s.Created), 8),
				listDimStyle.Render(s.Description),
			)
		}
		return nil
	},
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + fmt.Sprintf("%*s", width-len(s), "")
}

// age renders a coarse human duration since t ("3m", "2h", "5d").
func age(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit the session list as JSON")
	rootCmd.AddCommand(listCmd)
}
