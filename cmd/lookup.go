package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/people-finder/internal/model"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Look up a person interactively",
	Long:  "Runs the full lookup funnel in the terminal: searches for the name, then asks up to four narrowing questions and prints the matched people.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		query := strings.Join(args, " ")
		fmt.Printf("Searching for %q...\n", query)

		sess, out, err := env.Service.Start(ctx, query)
		if err != nil {
			return eris.Wrap(err, "start lookup")
		}

		reader := bufio.NewReader(os.Stdin)
		for out.Question != nil {
			selected, err := promptAnswer(reader, out.Question)
			if err != nil {
				return err
			}

			out, err = env.Service.Advance(ctx, sess.ID, out.Question.QuestionID, selected)
			if err != nil {
				return eris.Wrap(err, "advance lookup")
			}
		}

		switch {
		case out.Results != nil:
			printResults(out.Results)
		case out.NoMatch != nil:
			fmt.Println("\nNo match found.")
		}

		return nil
	},
}

// promptAnswer prints a question's options and reads the chosen option
// ID from stdin. Entering a number picks by position; anything else is
// passed through as a free-form answer.
func promptAnswer(reader *bufio.Reader, q *model.Question) (string, error) {
	fmt.Printf("\n%s\n", q.Title)
	for i, opt := range q.Options {
		fmt.Printf("  %d) %s\n", i+1, opt.Label)
	}
	fmt.Print("> ")

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", eris.Wrap(err, "read answer")
	}
	line = strings.TrimSpace(line)

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1].ID, nil
	}
	return line, nil
}

func printResults(res *model.FinalResults) {
	fmt.Printf("\nFound %d match(es)", len(res.Results))
	if res.CacheUsed {
		fmt.Print(" (cached)")
	}
	fmt.Println()

	for _, p := range res.Results {
		fmt.Printf("\n%s (confidence %.2f)\n", p.FullName, p.Confidence)
		if p.Profession != "" {
			fmt.Printf("  Profession: %s\n", p.Profession)
		}
		if p.Location != "" {
			fmt.Printf("  Location:   %s\n", p.Location)
		}
		if p.Employer != "" {
			fmt.Printf("  Employer:   %s\n", p.Employer)
		}
		if len(p.Education) > 0 {
			fmt.Printf("  Education:  %s\n", strings.Join(p.Education, "; "))
		}
		if len(p.Emails) > 0 {
			fmt.Printf("  Emails:     %s\n", strings.Join(p.Emails, ", "))
		}
		if len(p.Phones) > 0 {
			fmt.Printf("  Phones:     %s\n", strings.Join(p.Phones, ", "))
		}
		if p.Social.LinkedIn != "" {
			fmt.Printf("  LinkedIn:   %s\n", p.Social.LinkedIn)
		}
	}
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
