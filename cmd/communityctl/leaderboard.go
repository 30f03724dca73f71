package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nextstepz/community/internal/domain/leaderboard/entity"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
)

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Show the community leaderboard",
	RunE:    runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().Int("limit", 50, "number of rows")
	leaderboardCmd.Flags().String("sort", "score", "score, followers, streak, posts or likes")
	leaderboardCmd.Flags().StringP("query", "q", "", "filter by name, title or company")
	rootCmd.AddCommand(leaderboardCmd)
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	sort, _ := cmd.Flags().GetString("sort")
	if _, err := entity.ParseSortField(sort); err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	q := community.LeaderboardQuery{Sort: sort}
	q.Limit, _ = cmd.Flags().GetInt("limit")
	q.Search, _ = cmd.Flags().GetString("query")

	entries, err := client.Leaderboard(cmd.Context(), q)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), entries)
	}
	renderLeaderboard(cmd.OutOrStdout(), entries)
	return nil
}

func renderLeaderboard(out io.Writer, entries []entity.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSCORE\tPOSTS\tLIKES\tFOLLOWERS\tSTREAK\tTIER")
	for _, e := range entries {
		name := e.User.Name
		if e.User.Verified {
			name += " ✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			entity.Medal(e.Rank), name,
			entity.FormatCount(e.Score), entity.FormatCount(e.Posts),
			entity.FormatCount(e.Likes), entity.FormatCount(e.Followers),
			e.Streak, e.Tier)
	}
	w.Flush()
}
