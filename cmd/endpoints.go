package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mockhub/mockhub-console/internal/dialog"
	"github.com/mockhub/mockhub-console/internal/services"
	"github.com/mockhub/mockhub-console/models"
	"github.com/spf13/cobra"
)

var (
	endpointGroup    string
	endpointPath     string
	endpointMethod   string
	endpointData     string
	endpointDataFile string
)

var endpointsCmd = &cobra.Command{
	Use:     "endpoints",
	Aliases: []string{"endpoint"},
	Short:   "Manage the endpoints of a group",
}

var endpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the endpoints of a group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}
		if c.Session.CurrentUser() == nil {
			if _, err := c.Session.FetchUser(ctx); err != nil {
				return err
			}
		}

		endpoints, err := c.Services.Endpoints.ListByGroup(ctx, endpointGroup)
		if err != nil {
			return err
		}

		group := models.Group{Endpoint: endpointGroup}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tMETHOD\tPATH\tURL")
		for _, e := range endpoints {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.Method, e.Path, c.Services.Endpoints.PublicURL(group, e))
		}
		return tw.Flush()
	},
}

var endpointsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}

		endpoint, err := c.Services.Endpoints.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), endpoint)
	},
}

var endpointsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add an endpoint to a group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}

		data, err := endpointPayload()
		if err != nil {
			return err
		}

		endpoint, err := c.Services.Endpoints.Create(ctx, services.EndpointInput{
			Path:      endpointPath,
			Method:    endpointMethod,
			JSONData:  data,
			GroupName: endpointGroup,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created endpoint %d: %s %s\n", endpoint.ID, endpoint.Method, endpoint.Path)
		return nil
	},
}

var endpointsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the method, path or payload of an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}

		current, err := c.Services.Endpoints.Get(ctx, id)
		if err != nil {
			return err
		}

		in := services.EndpointInput{Path: current.Path, Method: current.Method, JSONData: current.JSONData}
		if cmd.Flags().Changed("path") {
			in.Path = endpointPath
		}
		if cmd.Flags().Changed("method") {
			in.Method = endpointMethod
		}
		if cmd.Flags().Changed("data") || cmd.Flags().Changed("data-file") {
			if in.JSONData, err = endpointPayload(); err != nil {
				return err
			}
		}

		updated, err := c.Services.Endpoints.Update(ctx, id, in)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), updated)
	},
}

var endpointsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}

		endpoint, err := c.Services.Endpoints.Get(ctx, id)
		if err != nil {
			return err
		}

		return confirmDelete(cmd, dialog.Config{
			Title:    "Delete endpoint",
			ItemName: endpoint.Name,
		}, func() error {
			return c.Services.Endpoints.Delete(ctx, id)
		})
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <group-endpoint> [path]",
	Short: "Print the public URL of a mock",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		if _, err := enterProtected(ctx, c, "/profile"); err != nil {
			return err
		}
		if c.Session.CurrentUser() == nil {
			if _, err := c.Session.FetchUser(ctx); err != nil {
				return err
			}
		}

		var path string
		if len(args) == 2 {
			path = args[1]
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Users.FullURL(appCfg.API.BaseURL, args[0], path))
		return nil
	},
}

func init() {
	endpointsListCmd.Flags().StringVar(&endpointGroup, "group", "", "endpoint segment of the group")
	endpointsListCmd.MarkFlagRequired("group")

	endpointsCreateCmd.Flags().StringVar(&endpointGroup, "group", "", "endpoint segment of the group")
	endpointsCreateCmd.MarkFlagRequired("group")

	for _, cmd := range []*cobra.Command{endpointsCreateCmd, endpointsUpdateCmd} {
		cmd.Flags().StringVar(&endpointPath, "path", "", "path below the group, {name} matches any segment")
		cmd.Flags().StringVar(&endpointMethod, "method", "GET", "HTTP method")
		cmd.Flags().StringVar(&endpointData, "data", "", "JSON payload")
		cmd.Flags().StringVar(&endpointDataFile, "data-file", "", "file holding the JSON payload")
	}
	endpointsCreateCmd.MarkFlagRequired("path")

	endpointsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "delete without asking")

	endpointsCmd.AddCommand(endpointsListCmd, endpointsGetCmd, endpointsCreateCmd, endpointsUpdateCmd, endpointsDeleteCmd)
	rootCmd.AddCommand(endpointsCmd, urlCmd)
}

// endpointPayload returns the payload given by --data or --data-file. The
// payload is sent as written.
func endpointPayload() (any, error) {
	if endpointDataFile != "" {
		b, err := os.ReadFile(endpointDataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		return string(b), nil
	}
	if endpointData == "" {
		return nil, nil
	}
	return endpointData, nil
}
