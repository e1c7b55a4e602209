package main

import (
	"context"
	"fmt"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/user"
	"github.com/spf13/cobra"
)

func userCmd(o *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Authenticate and administer user accounts",
		Long: "Privileged subcommands log in with --as and --password; " +
			"the password may also come from INVENTAR_PASSWORD.",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.as, "as", "", "Username to act as")
	pf.StringVar(&o.password, "password", "", "Password of the acting user")

	cmd.AddCommand(
		userVerifyCmd(o),
		userAddCmd(o),
		userDeleteCmd(o),
		userListCmd(o),
		userPasswdCmd(o),
		userResetAdminCmd(o),
	)
	return cmd
}

func userVerifyCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <username>",
		Short: "Check a password and print the user's role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				role, err := a.Users.Verify(ctx, args[0], o.credentials())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), role)
				return nil
			})
		},
	}
}

func userAddCmd(o *rootOpts) *cobra.Command {
	var newPassword, role string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user account (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sess, err := o.session(ctx, a)
				if err != nil {
					return err
				}
				u, err := a.Users.AddUser(ctx, sess, args[0], newPassword, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added user %d %s (%s)\n", u.ID, u.Username, u.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&newPassword, "new-password", "", "Password of the new account")
	cmd.Flags().StringVar(&role, "role", user.RoleUser, "Role: admin or user")
	return cmd
}

func userDeleteCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sess, err := o.session(ctx, a)
				if err != nil {
					return err
				}
				if err := a.Users.DeleteUser(ctx, sess, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
				return nil
			})
		},
	}
}

func userListCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sess, err := o.session(ctx, a)
				if err != nil {
					return err
				}
				users, err := a.Users.ListUsers(ctx, sess)
				if err != nil {
					return err
				}
				t := newTable(cmd.OutOrStdout(), "ID", "Username", "Role", "Created")
				for _, u := range users {
					t.Append([]string{itoa(u.ID), u.Username, u.Role, u.CreatedAt.Local().Format("2006-01-02 15:04")})
				}
				t.Render()
				return nil
			})
		},
	}
}

func userPasswdCmd(o *rootOpts) *cobra.Command {
	var newPassword string
	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change a password (your own, or anyone's as admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sess, err := o.session(ctx, a)
				if err != nil {
					return err
				}
				if err := a.Users.ResetPassword(ctx, sess, args[0], newPassword); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password")
	return cmd
}

func userResetAdminCmd(o *rootOpts) *cobra.Command {
	var newPassword string
	cmd := &cobra.Command{
		Use:   "reset-admin",
		Short: "Recreate the admin account with a new password",
		Long: "Recovery for a lost admin password. Anyone with write access to " +
			"the database file can run it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				u, err := a.Users.ResetAdmin(ctx, newPassword)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin account %d reset\n", u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New admin password")
	return cmd
}
