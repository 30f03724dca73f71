package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Find people to follow",
}

var usersSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List users you might follow",
	RunE:  runUsersSuggest,
}

var usersFollowCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Toggle following a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersFollow,
}

func init() {
	usersCmd.AddCommand(usersSuggestCmd, usersFollowCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersSuggest(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	list, err := client.Suggestions(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tFOLLOWERS")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Role, u.Followers)
	}
	return w.Flush()
}

func runUsersFollow(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	res, err := client.Follow(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	if res.IsFollowing {
		fmt.Fprintf(cmd.OutOrStdout(), "following %s\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "unfollowed %s\n", args[0])
	}
	return nil
}
