package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextstepz/community/internal/validate"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print an access token",
	Long: `Signs in with email and password and prints the access token as an
export line, ready to be evaluated by the shell.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	session, err := client.Login(cmd.Context(), validate.LoginForm{Email: email, Password: password})
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), session)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "export COMMUNITY_TOKEN=%s\n", session.AccessToken)
	fmt.Fprintf(cmd.ErrOrStderr(), "Signed in as %s, token expires %s\n",
		session.User.DisplayName(), session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
