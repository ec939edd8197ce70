package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"spaces-client/models"

	"github.com/spf13/cobra"
)

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "List the spaces you belong to",
	Args:  cobra.NoArgs,
	RunE:  runSpaces,
}

var createSpaceCmd = &cobra.Command{
	Use:   "create-space <name>",
	Short: "Create a new space",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreateSpace,
}

var spaceCmd = &cobra.Command{
	Use:   "space",
	Short: "Manage a single space",
}

var (
	flagSpaceDescription string
	flagRoleColor        string
	flagRolePermissions  []string
)

func init() {
	createSpaceCmd.Flags().StringVarP(&flagSpaceDescription, "description", "d", "", "space description")

	createRole := &cobra.Command{
		Use:   "create-role <space> <name>",
		Short: "Create a role in a space",
		Args:  cobra.ExactArgs(2),
		RunE:  runCreateRole,
	}
	createRole.Flags().StringVar(&flagRoleColor, "color", "", "role colour, e.g. #ff8800")
	createRole.Flags().StringSliceVar(&flagRolePermissions, "perm", nil, "permission to grant; repeat or comma-separate")

	spaceCmd.AddCommand(
		&cobra.Command{Use: "leave <space>", Short: "Leave a space", Args: cobra.ExactArgs(1), RunE: runLeaveSpace},
		&cobra.Command{Use: "delete <space>", Short: "Delete a space you administer", Args: cobra.ExactArgs(1), RunE: runDeleteSpace},
		&cobra.Command{Use: "bans <space>", Short: "List banned users", Args: cobra.ExactArgs(1), RunE: runBans},
		&cobra.Command{Use: "unban <space> <nickname|id>", Short: "Lift a ban", Args: cobra.ExactArgs(2), RunE: runUnban},
		&cobra.Command{Use: "roles <space>", Short: "List roles", Args: cobra.ExactArgs(1), RunE: runRoles},
		&cobra.Command{Use: "assign-role <space> <nickname> <role>", Short: "Give a member a role", Args: cobra.ExactArgs(3), RunE: runAssignRole},
		&cobra.Command{Use: "perms <space>", Short: "Show your permissions in a space", Args: cobra.ExactArgs(1), RunE: runMyPermissions},
		createRole,
	)
	rootCmd.AddCommand(spacesCmd, createSpaceCmd, spaceCmd)
}

// spaceCommand opens the app, checks the session and resolves the space
// named by the first argument.
func spaceCommand(cmd *cobra.Command, args []string, run func(ctx context.Context, a *app, space models.Space) error) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}
	ctx := cmd.Context()
	space, err := a.findSpace(ctx, args[0])
	if err != nil {
		return err
	}
	return run(ctx, a, space)
}

func (a *app) findSpace(ctx context.Context, query string) (models.Space, error) {
	spaces, err := a.client.Spaces(ctx)
	if err != nil {
		return models.Space{}, err
	}
	if id, err := models.ParseID(query); err == nil {
		for _, s := range spaces {
			if s.ID == id {
				return s, nil
			}
		}
	}
	for _, s := range spaces {
		if strings.EqualFold(s.Name, query) {
			return s, nil
		}
	}
	return models.Space{}, fmt.Errorf("no space matches %q", query)
}

func runSpaces(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}
	spaces, err := a.client.Spaces(cmd.Context())
	if err != nil {
		return err
	}
	a.view.Spaces(spaces, 0)
	return nil
}

func runCreateSpace(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}

	req := models.CreateSpaceRequest{Name: strings.Join(args, " ")}
	if flagSpaceDescription != "" {
		req.Description = &flagSpaceDescription
	}
	space, err := a.client.CreateSpace(cmd.Context(), req)
	if err != nil {
		return err
	}
	a.dialogs.Success(cmd.Context(), "Space created", fmt.Sprintf("%s (#%s)", space.Name, space.ID))
	return nil
}

func runLeaveSpace(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		if !a.dialogs.Confirm(ctx, "Leave space", fmt.Sprintf("Leave %s?", space.Name)) {
			return nil
		}
		if err := a.client.LeaveSpace(ctx, space.ID); err != nil {
			return err
		}
		a.dialogs.Success(ctx, "Left space", space.Name)
		return nil
	})
}

func runDeleteSpace(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		if !a.dialogs.Confirm(ctx, "Delete space", fmt.Sprintf("Delete %s and all of its messages? This cannot be undone.", space.Name)) {
			return nil
		}
		if err := a.client.DeleteSpace(ctx, space.ID); err != nil {
			return err
		}
		a.dialogs.Success(ctx, "Space deleted", space.Name)
		return nil
	})
}

func runBans(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		bans, err := a.client.Bans(ctx, space.ID)
		if err != nil {
			return err
		}
		if len(bans) == 0 {
			a.dialogs.Info(ctx, space.Name, "Nobody is banned.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USER\tREASON\tUNTIL")
		for _, b := range bans {
			until := "forever"
			if b.Until != nil && !b.Until.IsZero() {
				until = b.Until.Local().Format("2006-01-02 15:04")
			}
			name := b.Nickname
			if name == "" {
				name = "User#" + b.UserID.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, b.Reason, until)
		}
		return w.Flush()
	})
}

func runUnban(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		bans, err := a.client.Bans(ctx, space.ID)
		if err != nil {
			return err
		}
		target := strings.TrimPrefix(args[1], "@")
		for _, b := range bans {
			if strings.EqualFold(b.Nickname, target) || "#"+b.UserID.String() == target || b.UserID.String() == target {
				if err := a.client.Unban(ctx, space.ID, b.UserID); err != nil {
					return err
				}
				a.dialogs.Success(ctx, "Ban lifted", target)
				return nil
			}
		}
		return fmt.Errorf("%s is not banned from %s", target, space.Name)
	})
}

func runRoles(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		roles, err := a.client.Roles(ctx, space.ID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRIORITY\tPERMISSIONS")
		for _, r := range roles {
			perms := make([]string, len(r.Permissions))
			for i, p := range r.Permissions {
				perms[i] = string(p)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Priority, strings.Join(perms, ","))
		}
		return w.Flush()
	})
}

func runCreateRole(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		req := models.CreateRoleRequest{Name: args[1]}
		for _, p := range flagRolePermissions {
			req.Permissions = append(req.Permissions, models.Permission(strings.TrimSpace(p)))
		}
		if flagRoleColor != "" {
			req.Color = &flagRoleColor
		}
		role, err := a.client.CreateRole(ctx, space.ID, req)
		if err != nil {
			return err
		}
		a.dialogs.Success(ctx, "Role created", fmt.Sprintf("%s (#%s)", role.Name, role.ID))
		return nil
	})
}

func runAssignRole(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		members, err := a.client.Participants(ctx, space.ID)
		if err != nil {
			return err
		}
		roles, err := a.client.Roles(ctx, space.ID)
		if err != nil {
			return err
		}

		nickname := strings.TrimPrefix(args[1], "@")
		var userID models.ID
		for _, m := range members {
			if strings.EqualFold(m.Nickname, nickname) {
				userID = m.ID
			}
		}
		if userID == 0 {
			return fmt.Errorf("%s is not a member of %s", nickname, space.Name)
		}
		for _, r := range roles {
			if strings.EqualFold(r.Name, args[2]) {
				if err := a.client.AssignRole(ctx, space.ID, userID, r.ID); err != nil {
					return err
				}
				a.dialogs.Success(ctx, "Role assigned", fmt.Sprintf("%s is now %s", nickname, r.Name))
				return nil
			}
		}
		return fmt.Errorf("no role named %q in %s", args[2], space.Name)
	})
}

func runMyPermissions(cmd *cobra.Command, args []string) error {
	return spaceCommand(cmd, args, func(ctx context.Context, a *app, space models.Space) error {
		perms, err := a.client.MyPermissions(ctx, space.ID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if perms.IsAdmin {
			fmt.Fprintf(out, "You administer %s.\n", space.Name)
		}
		for _, p := range perms.Permissions {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil
	})
}
