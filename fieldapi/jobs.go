package fieldapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ReportDateLayout is the report_date query format.
const ReportDateLayout = "2006-01-02"

// JobsService reads, creates and submits jobs.
type JobsService struct {
	client *Client
}

// Get fetches one job. Jobs the caller may not see are ErrNotFound.
func (s *JobsService) Get(ctx context.Context, id int) (*Job, error) {
	var out Job
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyClosed lists the jobs the caller has submitted.
func (s *JobsService) MyClosed(ctx context.Context) ([]Job, error) {
	var out []Job
	if err := s.client.do(ctx, http.MethodGet, "/my_jobs/closed", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyOpen lists the predefined jobs assigned to the caller and not yet
// submitted.
func (s *JobsService) MyOpen(ctx context.Context) ([]Job, error) {
	var out []Job
	if err := s.client.do(ctx, http.MethodGet, "/my_jobs/open", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateForUser creates a predefined job for job.CreatedByID. Admin only.
func (s *JobsService) CreateForUser(ctx context.Context, job Job) (*Job, error) {
	var out Job
	if err := s.client.do(ctx, http.MethodPost, "/admin_jobs", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Utilize submits a filled-in job.
func (s *JobsService) Utilize(ctx context.Context, job Job) (*Job, error) {
	var out Job
	if err := s.client.do(ctx, http.MethodPost, "/jobs", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns jobs for administrators. selected is ListAllComplete or
// ListAdminIncomplete.
func (s *JobsService) List(ctx context.Context, selected string) ([]ExistingJob, error) {
	var out []ExistingJob
	path := "/jobs?selected=" + url.QueryEscape(selected)
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DailyReport downloads the CSV report for day.
func (s *JobsService) DailyReport(ctx context.Context, day time.Time) ([]byte, error) {
	return s.client.raw(ctx, http.MethodGet, "/daily-report?report_date="+day.Format(ReportDateLayout))
}

// ReportFileName is the conventional download name for the report of day.
func ReportFileName(day time.Time) string {
	return "daily-report-" + day.Format(ReportDateLayout) + ".csv"
}
