package cmd

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/mockhub/mockhub-console/internal/console"
	"github.com/mockhub/mockhub-console/internal/dialog"
	"github.com/mockhub/mockhub-console/models"
	"github.com/spf13/cobra"
)

var (
	groupName        string
	groupEndpoint    string
	groupDescription string
	groupInactive    bool
	assumeYes        bool
)

var groupsCmd = &cobra.Command{
	Use:     "groups",
	Aliases: []string{"group"},
	Short:   "Manage API groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your API groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}

		groups, err := c.Services.Groups.List(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tENDPOINT\tACTIVE\tDESCRIPTION")
		for _, g := range groups {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", g.ID, g.Name, g.Endpoint, g.IsActive, g.Description)
		}
		return tw.Flush()
	},
}

var groupsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a group and its endpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		group, err := enterGroup(ctx, c, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), group)
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		if _, err := enterProtected(ctx, c, appCfg.Routes.Home); err != nil {
			return err
		}

		group, err := c.Services.Groups.Create(ctx, models.Group{
			Name:        groupName,
			Endpoint:    groupEndpoint,
			Description: groupDescription,
			IsActive:    !groupInactive,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created group %d, served under %s\n", group.ID, c.Users.UserPath(group.Endpoint, ""))
		return nil
	},
}

var groupsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the name or description of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		group, err := enterGroup(ctx, c, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("name") {
			group.Name = groupName
		}
		if cmd.Flags().Changed("description") {
			group.Description = groupDescription
		}

		updated, err := c.Services.Groups.Update(ctx, group.ID, *group)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), updated)
	},
}

var groupsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Activate or deactivate a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		group, err := enterGroup(ctx, c, args[0])
		if err != nil {
			return err
		}

		updated, err := c.Services.Groups.ToggleStatus(ctx, group.ID, !group.IsActive)
		if err != nil {
			return err
		}

		state := "inactive"
		if updated.IsActive {
			state = "active"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Group %s is now %s\n", updated.Name, state)
		return nil
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a group and its endpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openConsole(ctx)
		defer c.Close()

		group, err := enterGroup(ctx, c, args[0])
		if err != nil {
			return err
		}

		return confirmDelete(cmd, dialog.Config{
			Title:    "Delete group",
			Message:  "The group and all of its endpoints will be removed.",
			ItemName: group.Name,
		}, func() error {
			return c.Services.Groups.Delete(ctx, group.ID)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{groupsCreateCmd, groupsUpdateCmd} {
		cmd.Flags().StringVar(&groupName, "name", "", "group name")
		cmd.Flags().StringVar(&groupDescription, "description", "", "group description")
	}
	groupsCreateCmd.Flags().StringVar(&groupEndpoint, "endpoint", "", "URL segment the group is served under")
	groupsCreateCmd.Flags().BoolVar(&groupInactive, "inactive", false, "create the group deactivated")
	groupsCreateCmd.MarkFlagRequired("name")
	groupsCreateCmd.MarkFlagRequired("endpoint")

	groupsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "delete without asking")

	groupsCmd.AddCommand(groupsListCmd, groupsGetCmd, groupsCreateCmd, groupsUpdateCmd, groupsToggleCmd, groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

// enterGroup navigates to the group page and loads the group.
func enterGroup(ctx context.Context, c *console.Console, arg string) (*models.Group, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	if _, err := enterProtected(ctx, c, fmt.Sprintf("/groups/%d", id)); err != nil {
		return nil, err
	}
	return c.Services.Groups.Get(ctx, id)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// confirmDelete runs del after confirmation, or directly with --yes.
func confirmDelete(cmd *cobra.Command, cfg dialog.Config, del func() error) error {
	if assumeYes {
		if err := del(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
		return nil
	}

	cfg.OnConfirm = del
	result, err := dialog.Confirm(cfg)
	if err != nil {
		return err
	}
	if !result.Confirmed {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}
	if result.Err != nil {
		return result.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
	return nil
}
