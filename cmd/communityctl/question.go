package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	questionentity "github.com/nextstepz/community/internal/domain/question/entity"
	"github.com/nextstepz/community/internal/mirror"
)

var questionCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "Browse the Q&A section",
}

var questionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions, newest first",
	RunE:  runQuestionList,
}

var questionFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List the most liked questions",
	RunE:  runQuestionFeatured,
}

var questionViewCmd = &cobra.Command{
	Use:   "view <question-id>",
	Short: "Open a question, counting a view",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionView,
}

var questionLikeCmd = &cobra.Command{
	Use:   "like <question-id>",
	Short: "Toggle your like on a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionLike,
}

var questionStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show Q&A section totals",
	RunE:  runQuestionStats,
}

var questionExpertsCmd = &cobra.Command{
	Use:   "experts",
	Short: "List users who answered the most questions",
	RunE:  runQuestionExperts,
}

func init() {
	questionListCmd.Flags().Int("page", 1, "page number")
	questionListCmd.Flags().Int("limit", 10, "questions per page")
	questionFeaturedCmd.Flags().Int("limit", 3, "number of questions")
	questionExpertsCmd.Flags().Int("limit", 5, "number of experts")

	questionCmd.AddCommand(
		questionListCmd,
		questionFeaturedCmd,
		questionViewCmd,
		questionLikeCmd,
		questionStatsCmd,
		questionExpertsCmd,
	)
	rootCmd.AddCommand(questionCmd)
}

func runQuestionList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	list, err := client.Questions(cmd.Context(), page, limit)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	renderQuestions(cmd.OutOrStdout(), list, time.Now())
	return nil
}

func runQuestionFeatured(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	list, err := client.FeaturedQuestions(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	renderQuestions(cmd.OutOrStdout(), list, time.Now())
	return nil
}

func renderQuestions(out io.Writer, list []questionentity.Question, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tVIEWS\tLIKES\tANSWERS\tAGE\tTITLE")
	for _, q := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			q.ID, questionStatus(q), q.ViewCount, q.LikesCount, q.CommentsCount,
			age(now, q.CreatedAt), excerpt(q.Title, 70))
	}
	w.Flush()
}

func questionStatus(q questionentity.Question) string {
	switch {
	case q.Resolved():
		return "resolved"
	case q.IsAnswered:
		return "answered"
	default:
		return "open"
	}
}

func runQuestionView(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	q, err := client.Question(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	m := mirror.NewQuestion(client, *q, newLogger())
	// the question is shown even when the view is not counted
	_ = m.RecordView(cmd.Context())

	snap := m.Snapshot()
	if asJSON {
		return printJSON(cmd.OutOrStdout(), snap)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n\n", snap.Title, strings.Repeat("=", len([]rune(snap.Title))))
	fmt.Fprintln(out, snap.Content)
	fmt.Fprintln(out)
	if len(snap.Tags) > 0 {
		fmt.Fprintf(out, "tags: %s\n", strings.Join(snap.Tags, ", "))
	}
	fmt.Fprintf(out, "%s · %d views · %d likes · %d answers · %s\n",
		questionStatus(snap), snap.ViewCount, snap.LikesCount, snap.CommentsCount, age(time.Now(), snap.CreatedAt))
	return nil
}

func runQuestionLike(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	q, err := client.Question(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	m := mirror.NewQuestion(client, *q, newLogger())
	if err := m.ToggleLike(cmd.Context()); err != nil {
		return err
	}

	snap := m.Snapshot()
	if asJSON {
		return printJSON(cmd.OutOrStdout(), snap)
	}
	state := "unliked"
	if snap.IsLiked {
		state = "liked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s question %s, %d likes\n", state, snap.ID, snap.LikesCount)
	return nil
}

func runQuestionStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	stats, err := client.QuestionStats(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "questions\t%d\n", stats.TotalQuestions)
	fmt.Fprintf(w, "unanswered\t%d\n", stats.UnansweredCount)
	fmt.Fprintf(w, "resolved\t%d%%\n", stats.ResolvedRate)
	fmt.Fprintf(w, "answers this week\t%d\n", stats.AnswersThisWeek)
	return w.Flush()
}

func runQuestionExperts(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	experts, err := client.TopExperts(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), experts)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tANSWERS")
	for _, e := range experts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.ID, e.Name, e.Role, e.QuestionCount)
	}
	return w.Flush()
}
