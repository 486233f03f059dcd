package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/MrEthical07/goFieldOps/bulk"
)

func (a *app) runTemplate(args []string) error {
	fs := newFlagSet("template", a.errOut)
	output := fs.String("o", bulk.TemplateFileName, "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := bulk.WriteTemplate(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", *output)
	return nil
}

func (a *app) runUpload(ctx context.Context, args []string) error {
	fs := newFlagSet("upload", a.errOut)
	dryRun := fs.Bool("dry-run", false, "validate the sheet without creating jobs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("fieldops upload [-dry-run] <file>")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	rows, err := bulk.ReadRows(f, path)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	users, err := a.api.Roster.Users(ctx)
	if err != nil {
		return err
	}
	plan, skipped := bulk.Plan(rows, users)
	for _, s := range skipped {
		fmt.Fprintf(a.errOut, "skipping row %d: %s\n", s.Line, s.Reason)
	}
	if len(plan) == 0 {
		return fmt.Errorf("no jobs could be read from %s; check the format and user emails", path)
	}

	if *dryRun {
		for _, p := range plan {
			fmt.Fprintf(a.out, "row %d: %s for %s (%d links)\n", p.Line, p.JobNumber, p.UserName, len(p.Links))
		}
		return nil
	}

	res, err := bulk.Upload(ctx, a.api.Jobs, plan)
	for _, e := range res.Errors {
		fmt.Fprintln(a.errOut, e.Error())
	}
	fmt.Fprintf(a.out, "created %d job(s), %d failed\n", res.Succeeded, res.Failed)
	return err
}
