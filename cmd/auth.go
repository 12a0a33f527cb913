package cmd

import (
	"errors"
	"fmt"

	"github.com/mockhub/mockhub-console/internal/console"
	"github.com/mockhub/mockhub-console/internal/router"
	"github.com/mockhub/mockhub-console/internal/session"
	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		loc, err := c.Enter(ctx, "/register")
		if err != nil {
			return err
		}
		if loc.Route.Name != router.RouteRegister {
			return alreadyLoggedIn(cmd, c)
		}

		password, err := passwordFlag()
		if err != nil {
			return err
		}

		err = c.Session.Register(ctx, session.RegisterInput{Name: authName, Email: authEmail, Password: password})
		if err != nil {
			return sessionError(c, err)
		}

		return printLoggedIn(cmd, c)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session for later commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		loc, err := c.Enter(ctx, appCfg.Routes.Login)
		if err != nil {
			return err
		}
		if loc.Route.Name != router.RouteLogin {
			return alreadyLoggedIn(cmd, c)
		}

		password, err := passwordFlag()
		if err != nil {
			return err
		}

		if err := c.Session.Login(ctx, authEmail, password); err != nil {
			return sessionError(c, err)
		}

		return printLoggedIn(cmd, c)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		c.Session.Logout(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		if _, err := enterProtected(ctx, c, "/profile"); err != nil {
			return err
		}

		user, err := c.Session.FetchUser(ctx)
		if err != nil {
			return err
		}

		if err := printJSON(cmd.OutOrStdout(), user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mocks are served under %s\n", c.Users.PathPrefix())
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{registerCmd, loginCmd} {
		cmd.Flags().StringVar(&authEmail, "email", "", "account email")
		cmd.Flags().StringVar(&authPassword, "password", "", "account password, prompted for when empty")
		cmd.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "username, defaults to the local part of the email")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}

func passwordFlag() (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

// sessionError prefers the message the session recorded for the user.
func sessionError(c *console.Console, err error) error {
	if msg := c.Session.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func alreadyLoggedIn(cmd *cobra.Command, c *console.Console) error {
	user := c.Session.CurrentUser()
	if user == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Already logged in, run `mockhub logout` first")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s, run `mockhub logout` first\n", user.Email)
	return nil
}

func printLoggedIn(cmd *cobra.Command, c *console.Console) error {
	user, err := c.Session.FetchUser(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s, mocks are served under %s\n", user.Email, c.Users.PathPrefix())
	return nil
}
