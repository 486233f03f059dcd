package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MrEthical07/goFieldOps/fieldapi"
)

func newFlagSet(name string, errOut io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	return fs
}

func (a *app) runJobs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("fieldops jobs open|closed|list|get")
	}

	switch args[0] {
	case "open":
		jobs, err := a.api.Jobs.MyOpen(ctx)
		if err != nil {
			return err
		}
		return a.printJobs(jobs)
	case "closed":
		jobs, err := a.api.Jobs.MyClosed(ctx)
		if err != nil {
			return err
		}
		return a.printJobs(jobs)
	case "list":
		fs := newFlagSet("jobs list", a.errOut)
		selected := fs.String("selected", fieldapi.ListAllComplete, "all or admin_incomplete")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		jobs, err := a.api.Jobs.List(ctx, *selected)
		if err != nil {
			return err
		}
		return a.printExistingJobs(jobs)
	case "get":
		if len(args) != 2 {
			return usageError("fieldops jobs get <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return usageError("job id must be a number")
		}
		job, err := a.api.Jobs.Get(ctx, id)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	default:
		return usageError("unknown jobs subcommand %q", args[0])
	}
}

func (a *app) printJobs(jobs []fieldapi.Job) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tCUSTOMER\tLOCATION\tDATE")
	for _, j := range jobs {
		id := "-"
		if j.ID != nil {
			id = strconv.Itoa(*j.ID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, j.JobNumber, j.Customer, j.Location, dateOnly(j.Date))
	}
	return tw.Flush()
}

func (a *app) printExistingJobs(jobs []fieldapi.ExistingJob) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tCUSTOMER\tLOCATION\tDATE\tCREW")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", j.ID, j.JobNumber, j.Customer, j.Location, dateOnly(j.Date), len(j.Employees))
	}
	return tw.Flush()
}

func dateOnly(s string) string {
	if len(s) >= len(fieldapi.ReportDateLayout) {
		return s[:len(fieldapi.ReportDateLayout)]
	}
	return s
}

func (a *app) runReport(ctx context.Context, args []string) error {
	fs := newFlagSet("report", a.errOut)
	date := fs.String("date", time.Now().Format(fieldapi.ReportDateLayout), "report day (YYYY-MM-DD)")
	output := fs.String("o", "", "output file (default daily-report-<date>.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	day, err := time.Parse(fieldapi.ReportDateLayout, strings.TrimSpace(*date))
	if err != nil {
		return usageError("-date must be YYYY-MM-DD")
	}
	data, err := a.api.Jobs.DailyReport(ctx, day)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = fieldapi.ReportFileName(day)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", path)
	return nil
}
