package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goFieldOps "github.com/MrEthical07/goFieldOps"
	"github.com/MrEthical07/goFieldOps/fieldapi"
)

// PlannedJob is a validated row ready to be created.
type PlannedJob struct {
	Line        int
	UserID      int
	UserName    string
	Customer    string
	JobNumber   string
	Location    string
	Description string
	Links       []string
}

// Skipped is a row Plan left out.
type Skipped struct {
	Line   int
	Reason string
}

// Plan validates rows and resolves their Email to a user. Rows missing a
// required column or naming an unknown user are returned in skipped.
func Plan(rows []Row, users []fieldapi.User) (planned []PlannedJob, skipped []Skipped) {
	byEmail := make(map[string]fieldapi.User, len(users))
	for _, u := range users {
		byEmail[strings.ToLower(u.Email)] = u
	}

	for _, row := range rows {
		if missing := missingColumn(row); missing != "" {
			skipped = append(skipped, Skipped{Line: row.Line, Reason: missing + " is empty"})
			continue
		}
		email := row.Get(ColEmail)
		u, ok := byEmail[strings.ToLower(email)]
		if !ok || u.ID <= 0 {
			skipped = append(skipped, Skipped{Line: row.Line, Reason: "no user with email " + email})
			continue
		}

		name := u.Name
		if name == "" {
			name = email
		}
		planned = append(planned, PlannedJob{
			Line:        row.Line,
			UserID:      u.ID,
			UserName:    name,
			Customer:    row.Get(ColCustomer),
			JobNumber:   row.Get(ColJobName),
			Location:    row.Get(ColLocation),
			Description: row.Get(ColDescription),
			Links:       splitLinks(row.Get(ColLinks)),
		})
	}
	return planned, skipped
}

func missingColumn(row Row) string {
	for _, col := range []string{ColEmail, ColCustomer, ColJobName, ColLocation, ColDescription} {
		if row.Get(col) == "" {
			return col
		}
	}
	return ""
}

func splitLinks(s string) []string {
	links := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			links = append(links, part)
		}
	}
	return links
}

// JobCreator creates a predefined job. *fieldapi.JobsService implements it.
type JobCreator interface {
	CreateForUser(ctx context.Context, job fieldapi.Job) (*fieldapi.Job, error)
}

// RowError is a planned job the API rejected.
type RowError struct {
	Line      int
	JobNumber string
	Err       error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Line, e.JobNumber, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

type Result struct {
	Succeeded int
	Failed    int
	Errors    []RowError
}

// Upload creates the planned jobs in order. A failed row does not stop the
// upload; a canceled context or an ended session does, and is returned
// alongside the partial result.
func Upload(ctx context.Context, jobs JobCreator, plan []PlannedJob) (Result, error) {
	var res Result
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		now := time.Now()
		userID := p.UserID
		_, err := jobs.CreateForUser(ctx, fieldapi.Job{
			CreatedByID:    &userID,
			Customer:       p.Customer,
			JobNumber:      p.JobNumber,
			Location:       p.Location,
			Description:    p.Description,
			Links:          p.Links,
			CreatedAt:      now.UTC().Format(time.RFC3339),
			Date:           now.Format(fieldapi.ReportDateLayout),
			Employees:      []fieldapi.EmployeeJob{},
			Subcontractors: []fieldapi.SubcontractorJob{},
			Equipment:      []fieldapi.EquipmentJob{},
			Drivers:        []fieldapi.DriverVehicleJob{},
			Parts:          []fieldapi.PartJob{},
		})
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, RowError{Line: p.Line, JobNumber: p.JobNumber, Err: err})
			if errors.Is(err, goFieldOps.ErrUnauthenticated) {
				return res, err
			}
			continue
		}
		res.Succeeded++
	}
	return res, nil
}
