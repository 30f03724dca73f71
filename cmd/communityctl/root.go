package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextstepz/community/internal/config"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
	"github.com/nextstepz/community/internal/mirror"
)

var (
	baseURL string
	token   string
	asJSON  bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "communityctl",
	Short: "Command line client for the NextStepZ community API",
	Long: `communityctl reads the feed, comment threads, Q&A, leaderboard and company
directory of a NextStepZ community server, and can post replies and likes on
behalf of a logged-in user. Settings come from COMMUNITY_* environment variables
or a .env file; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (default from COMMUNITY_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (default from COMMUNITY_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and reconciliation to stderr")
}

// newClient builds an API client from the environment and the global flags
func newClient() (*community.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("loading client config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if token != "" {
		cfg.Token = token
	}

	return community.New(
		community.WithBaseURL(cfg.BaseURL),
		community.WithToken(cfg.Token),
		community.WithTimeout(cfg.Timeout),
	), nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errorMessage turns failures into the text the web client would show,
// keeping the server's own message for errors the client has no wording for
func errorMessage(err error) string {
	var apiErr *community.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" &&
		apiErr.Status != http.StatusBadRequest && apiErr.Status != http.StatusUnauthorized {
		return apiErr.Message
	}
	if msg := mirror.UserMessage(err); msg != mirror.MsgGeneric {
		return msg
	}
	return err.Error()
}
