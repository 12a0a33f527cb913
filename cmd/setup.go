package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/mockhub/mockhub-console/internal/console"
	"github.com/mockhub/mockhub-console/internal/router"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in, run `mockhub login` first")

// commonSetUp sets the log level and loads the config.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
}

// openConsole restores the session and wires the client side.
func openConsole(ctx context.Context) *console.Console {
	commonSetUp()

	c, err := console.Open(ctx, appCfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session")
	}
	return c
}

// enterProtected navigates to path and fails when the session has to log
// in first.
func enterProtected(ctx context.Context, c *console.Console, path string) (router.Location, error) {
	loc, err := c.Enter(ctx, path)
	if err != nil {
		return loc, err
	}
	if loc.Route.Name == router.RouteLogin {
		return loc, errNotLoggedIn
	}
	return loc, nil
}

// readPassword prompts for a password without echo. Input that is not a
// terminal is read as a single line.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
