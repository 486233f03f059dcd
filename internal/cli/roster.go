package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/MrEthical07/goFieldOps/fieldapi"
)

func (a *app) runRoster(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("fieldops roster <kind> [add NAME | rm ID]")
	}
	kind, rest := args[0], args[1:]

	switch kind {
	case "users":
		if len(rest) > 0 {
			return usageError("users are read-only")
		}
		users, err := a.api.Roster.Users(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Name, u.Role, u.IsActive)
		}
		return tw.Flush()
	case "employees":
		return a.rosterEmployees(ctx, rest)
	default:
		return a.rosterItems(ctx, kind, rest)
	}
}

func (a *app) rosterEmployees(ctx context.Context, args []string) error {
	if len(args) == 0 {
		employees, err := a.api.Roster.Employees(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tLEGACY")
		for _, e := range employees {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Name, e.LegacyID)
		}
		return tw.Flush()
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return usageError("fieldops roster employees add FIRST [LAST]")
		}
		e, err := a.api.Roster.CreateEmployee(ctx, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added employee %d %s\n", e.ID, e.Name)
		return nil
	case "rm":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := a.api.Roster.DeleteEmployee(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "removed employee %d\n", id)
		return nil
	default:
		return usageError("unknown roster action %q", args[0])
	}
}

func (a *app) rosterItems(ctx context.Context, kind string, args []string) error {
	if !validKind(kind) {
		return usageError("unknown roster kind %q", kind)
	}

	if len(args) == 0 {
		items, err := a.api.Roster.Items(ctx, kind)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tLEGACY")
		for _, it := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", it.ID, it.Name, it.LegacyID)
		}
		return tw.Flush()
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return usageError("fieldops roster %s add NAME", kind)
		}
		it, err := a.api.Roster.CreateItem(ctx, kind, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %d %s\n", it.ID, it.Name)
		return nil
	case "rm":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := a.api.Roster.DeleteItem(ctx, kind, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "removed %d\n", id)
		return nil
	default:
		return usageError("unknown roster action %q", args[0])
	}
}

func validKind(kind string) bool {
	for _, k := range fieldapi.RosterKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func idArg(args []string) (int, error) {
	if len(args) != 2 {
		return 0, usageError("rm takes exactly one id")
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, usageError("id must be a number")
	}
	return id, nil
}
