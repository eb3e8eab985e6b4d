package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timewise/timewise/client"
)

const requestTimeout = 15 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app holds the persistent flags shared by every subcommand.
type app struct {
	serverURL string
	token     string
	devMode   bool
	debug     bool
}

func (a *app) client() (*client.Client, error) {
	opts := []client.Option{client.WithDebugLogging(a.debug)}
	if a.devMode {
		return client.NewWithDevMode(a.serverURL, opts...)
	}
	return client.New(a.serverURL, append(opts, client.WithToken(a.token))...)
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "timewisectl",
		Short:         "Command-line client for the TimeWise timesheet service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if a.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.serverURL, "server", getEnv("TIMEWISE_SERVER", "http://localhost:8080"), "Base URL of the TimeWise service")
	rootCmd.PersistentFlags().StringVar(&a.token, "token", os.Getenv("TIMEWISE_TOKEN"), "Session token (or TIMEWISE_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&a.devMode, "dev", false, "Use the local development token")
	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newRegisterCmd(a))
	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newWhoAmICmd(a))
	rootCmd.AddCommand(newEntriesCmd(a))
	rootCmd.AddCommand(newCalendarCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newSuggestCmd(a))
	rootCmd.AddCommand(newLookupCmd(a, "clients"))
	rootCmd.AddCommand(newLookupCmd(a, "tasks"))

	return rootCmd
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, password, username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			u, err := c.Register(ctx, email, password, username)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s (%s)\n", u.Username, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 6 characters (required)")
	cmd.Flags().StringVar(&username, "username", "", "Display name, at least 3 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			sess, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}
			log.Debug().Str("user_id", sess.UserID).Time("expires_at", sess.ExpiresAt).Msg("logged in")
			fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := c.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			me, err := c.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", me.Username, me.Email, me.UserID)
			return nil
		},
	}
}
