package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expense-share/client/internal/router"
	"github.com/expense-share/client/internal/store"
)

// withEnv wraps a command body with environment setup and teardown.
func withEnv(run func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		env, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		return run(ctx, cmd, env, args)
	}
}

var (
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			user := env.app.Auth.CurrentUser.Get()
			if user == nil {
				return errors.New("not signed in; set username and password in the config or LEDGER_USERNAME and LEDGER_PASSWORD")
			}
			return printJSON(cmd.OutOrStdout(), user)
		}),
	}

	groupsCmd = &cobra.Command{
		Use:   "groups",
		Short: "List your groups",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			if err := online(ctx, env.app.Groups.FetchGroups); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env.app.Groups.Groups.Get())
		}),
	}

	groupCmd = &cobra.Command{
		Use:   "group <group-id>",
		Short: "Show one group and its members",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			groupID, err := parseID(args[0], "group id")
			if err != nil {
				return err
			}
			if offlineFlag {
				for _, g := range env.app.Groups.Groups.Get() {
					if g.ID == groupID {
						return printJSON(cmd.OutOrStdout(), g)
					}
				}
				return fmt.Errorf("group %d is not cached", groupID)
			}
			if err := env.app.Groups.FetchGroup(ctx, groupID); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env.app.Groups.ActiveGroup.Get())
		}),
	}

	categoriesCmd = &cobra.Command{
		Use:   "categories <group-id>",
		Short: "List a group's categories",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			groupID, err := parseID(args[0], "group id")
			if err != nil {
				return err
			}
			categories := env.app.Categories(store.NewRef(groupID))
			if err := categories.FetchCategories(ctx); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), categories.Categories.Get())
		}),
	}

	expensesCmd = &cobra.Command{
		Use:   "expenses <group-id>",
		Short: "List a group's expenses, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			groupID, err := parseID(args[0], "group id")
			if err != nil {
				return err
			}
			err = online(ctx, func(ctx context.Context) error {
				return env.app.Expenses.FetchExpenses(ctx, groupID)
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env.app.Expenses.Expenses(groupID))
		}),
	}

	settlementsCmd = &cobra.Command{
		Use:   "settlements <group-id>",
		Short: "Show recommended transfers and recorded settlements",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			groupID, err := parseID(args[0], "group id")
			if err != nil {
				return err
			}
			err = online(ctx, func(ctx context.Context) error {
				return env.app.Expenses.FetchSettlements(ctx, groupID)
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env.app.Expenses.Settlements(groupID))
		}),
	}

	subscriptionsCmd = &cobra.Command{
		Use:   "subscriptions <group-id>",
		Short: "List a group's recurring costs by due date",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			groupID, err := parseID(args[0], "group id")
			if err != nil {
				return err
			}
			subs, err := env.app.Subscriptions().List(ctx, groupID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), subs)
		}),
	}

	invitesCmd = &cobra.Command{
		Use:   "invites",
		Short: "List your pending group invites",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			if err := online(ctx, env.app.Invites.FetchInvites); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env.app.Invites.Invites.Get())
		}),
	}

	acceptInviteCmd = &cobra.Command{
		Use:   "accept-invite <invite-id>",
		Short: "Accept a group invite",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			if offlineFlag {
				return errors.New("accept-invite needs the API")
			}
			inviteID, err := parseID(args[0], "invite id")
			if err != nil {
				return err
			}
			invite, err := env.app.Invites.AcceptInvite(ctx, inviteID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), invite)
		}),
	}

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Show what you paid and owe in each group",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			if err := online(ctx, env.app.Profile.FetchSpendingSummary); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env.app.Profile.Summary.Get())
		}),
	}

	openCmd = &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve an app path through the route guard",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			guard := router.NewGuard(router.New(), env.app.Auth)
			decision, err := guard.BeforeEach(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), newOpenResult(decision))
		}),
	}
)

type openResult struct {
	Route    string            `json:"route"`
	Params   map[string]string `json:"params,omitempty"`
	Props    bool              `json:"props,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func newOpenResult(d *router.Decision) openResult {
	return openResult{
		Route:    d.Match.Route.Name,
		Params:   d.Match.Params,
		Props:    d.Match.Route.Props,
		Redirect: d.Redirect,
	}
}
