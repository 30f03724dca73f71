package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	commententity "github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/mirror"
	"github.com/nextstepz/community/internal/thread"
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Read and answer comment threads under posts and questions",
}

var threadShowCmd = &cobra.Command{
	Use:   "show <post|question> <id>",
	Short: "Print a comment thread",
	Long: `Prints the comments under a post or question, replies indented under
their parent. Use --collapsed to list only top-level comments with their
reply counts, and --expand to open chosen comments.`,
	Args: cobra.ExactArgs(2),
	RunE: runThreadShow,
}

var threadReplyCmd = &cobra.Command{
	Use:   "reply <post|question> <id> <content>",
	Short: "Add a comment, or a reply with --parent",
	Args:  cobra.ExactArgs(3),
	RunE:  runThreadReply,
}

var threadLikeCmd = &cobra.Command{
	Use:   "like <post|question> <id> <comment-id>",
	Short: "Toggle your like on a comment",
	Args:  cobra.ExactArgs(3),
	RunE:  runThreadLike,
}

func init() {
	threadShowCmd.Flags().Bool("collapsed", false, "show only top-level comments")
	threadShowCmd.Flags().StringSlice("expand", nil, "comment ids whose replies are shown when collapsed")
	threadReplyCmd.Flags().String("parent", "", "comment id to reply to")

	threadCmd.AddCommand(threadShowCmd, threadReplyCmd, threadLikeCmd)
	rootCmd.AddCommand(threadCmd)
}

func parseTarget(kind, id string) (commententity.Target, error) {
	t := commententity.Target{Type: commententity.TargetType(strings.ToLower(kind)), ID: id}
	if !t.Type.Valid() {
		return t, fmt.Errorf("unknown thread kind %q, want post or question", kind)
	}
	return t, nil
}

// loadThread opens a mirror of the thread and fills it from the server
func loadThread(cmd *cobra.Command, kind, id string) (*mirror.Thread, error) {
	target, err := parseTarget(kind, id)
	if err != nil {
		return nil, err
	}
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	m := mirror.NewThread(client, target, newLogger())
	if err := m.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return m, nil
}

func runThreadShow(cmd *cobra.Command, args []string) error {
	m, err := loadThread(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), m.Tree().Nested())
	}

	collapsed, _ := cmd.Flags().GetBool("collapsed")
	ids, _ := cmd.Flags().GetStringSlice("expand")
	renderThread(cmd.OutOrStdout(), m.Tree(), thread.NewExpanded(ids...), !collapsed, time.Now())
	return nil
}

func runThreadReply(cmd *cobra.Command, args []string) error {
	m, err := loadThread(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	parent, _ := cmd.Flags().GetString("parent")
	if err := m.Reply(cmd.Context(), parent, args[2]); err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), m.Tree().Nested())
	}
	renderThread(cmd.OutOrStdout(), m.Tree(), m.Expanded(), false, time.Now())
	fmt.Fprintf(cmd.OutOrStdout(), "%d comments\n", m.TotalComments())
	return nil
}

func runThreadLike(cmd *cobra.Command, args []string) error {
	m, err := loadThread(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	id := args[2]
	if err := m.ToggleLike(cmd.Context(), id); err != nil {
		return err
	}

	c, _ := m.Tree().Get(id)
	if asJSON {
		return printJSON(cmd.OutOrStdout(), c)
	}
	state := "unliked"
	if c.IsLiked {
		state = "liked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s comment %s, %d likes\n", state, c.ID, c.Likes)
	return nil
}

// renderThread prints comments depth-first. Unless all is set, replies are
// printed only under comments in expanded.
func renderThread(w io.Writer, tree *thread.Tree, expanded thread.Expanded, all bool, now time.Time) {
	if tree.Len() == 0 {
		fmt.Fprintln(w, "Chưa có bình luận nào")
		return
	}

	var visit func(list []thread.Comment, depth int)
	visit = func(list []thread.Comment, depth int) {
		for _, c := range list {
			pad := strings.Repeat("  ", thread.IndentLevel(depth))
			name := c.Author.Name
			if c.Author.Verified {
				name += " ✓"
			}
			fmt.Fprintf(w, "%s%s  %s · %s · %d likes\n", pad, c.ID, name, age(now, c.Timestamp), c.Likes)
			for _, line := range strings.Split(c.Content, "\n") {
				fmt.Fprintf(w, "%s  %s\n", pad, line)
			}

			kids := tree.Children(c.ID)
			if len(kids) == 0 {
				continue
			}
			if all || expanded.Has(c.ID) {
				visit(kids, depth+1)
			} else {
				fmt.Fprintf(w, "%s  [%d replies]\n", pad, len(kids))
			}
		}
	}
	visit(tree.Roots(), 0)
}
