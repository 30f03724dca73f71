package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	postentity "github.com/nextstepz/community/internal/domain/post/entity"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
	"github.com/nextstepz/community/internal/mirror"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show a page of the community feed",
	RunE:  runFeed,
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Act on a single feed post",
}

var postLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostLike,
}

var postShareCmd = &cobra.Command{
	Use:   "share <post-id>",
	Short: "Count a share of a post and print its public link path",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostShare,
}

func init() {
	feedCmd.Flags().Int("page", 1, "page number")
	feedCmd.Flags().Int("limit", 10, "posts per page")
	feedCmd.Flags().String("category", "", "category, or 'trending' to sort by engagement")
	feedCmd.Flags().StringSlice("hashtag", nil, "hashtags to match (any)")
	feedCmd.Flags().StringSlice("topic", nil, "topics to match (any)")
	feedCmd.Flags().StringP("query", "q", "", "search in content and author name")
	rootCmd.AddCommand(feedCmd)

	postCmd.AddCommand(postLikeCmd, postShareCmd)
	rootCmd.AddCommand(postCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	q := community.PostQuery{}
	q.Page, _ = cmd.Flags().GetInt("page")
	q.Limit, _ = cmd.Flags().GetInt("limit")
	q.Category, _ = cmd.Flags().GetString("category")
	q.Hashtags, _ = cmd.Flags().GetStringSlice("hashtag")
	q.Topics, _ = cmd.Flags().GetStringSlice("topic")
	q.Search, _ = cmd.Flags().GetString("query")

	page, err := client.Posts(cmd.Context(), q)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), page)
	}
	renderFeed(cmd.OutOrStdout(), page, time.Now())
	return nil
}

func renderFeed(out io.Writer, page *postentity.Page, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tCATEGORY\tLIKES\tCOMMENTS\tAGE\tCONTENT")
	for _, p := range page.Posts {
		liked := ""
		if p.IsLiked {
			liked = "♥"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%s\t%d\t%s\t%s\n",
			p.ID, p.Author.Name, p.Category, p.LikesCount, liked, p.CommentsCount,
			age(now, p.CreatedAt), excerpt(p.Content, 60))
	}
	w.Flush()

	pg := page.Pagination
	fmt.Fprintf(out, "page %d/%d, %d posts\n", pg.Page, max(pg.TotalPages, 1), pg.Total)
}

func runPostLike(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	p, err := client.Post(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	m := mirror.NewPost(client, *p, newLogger())
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
	fmt.Fprintf(cmd.OutOrStdout(), "%s post %s, %d likes\n", state, snap.ID, snap.LikesCount)
	return nil
}

func runPostShare(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	p, err := client.Post(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	m := mirror.NewPost(client, *p, newLogger())
	if err := m.Share(cmd.Context()); err != nil {
		return err
	}

	snap := m.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "/shared/%s (%d shares)\n", snap.ID, snap.ShareCount)
	return nil
}

// age renders how long ago t was, the way the feed does
func age(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "vừa xong"
	case d < time.Hour:
		return fmt.Sprintf("%d phút", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d giờ", int(d.Hours()))
	default:
		return fmt.Sprintf("%d ngày", int(d.Hours()/24))
	}
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
