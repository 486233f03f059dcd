package bulk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goFieldOps "github.com/MrEthical07/goFieldOps"
	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(line int, email, customer, job, location, desc, links string) Row {
	return Row{Line: line, Fields: map[string]string{
		ColEmail:       email,
		ColCustomer:    customer,
		ColJobName:     job,
		ColLocation:    location,
		ColDescription: desc,
		ColLinks:       links,
	}}
}

var testUsers = []fieldapi.User{
	{ID: 7, Email: "Sam@Example.com", Name: "Sam"},
	{ID: 8, Email: "noname@example.com"},
}

func TestPlan(t *testing.T) {
	rows := []Row{
		row(2, "sam@example.com", "Acme", "SO-1", "Yard", "Fix", " https://a , ,https://b "),
		row(3, "sam@example.com", "Acme", "SO-2", "", "Fix", ""),
		row(4, "ghost@example.com", "Acme", "SO-3", "Yard", "Fix", ""),
		row(5, "noname@example.com", "Beta", "SO-4", "Dock", "Paint", ""),
	}

	planned, skipped := Plan(rows, testUsers)
	require.Len(t, planned, 2)
	assert.Equal(t, 7, planned[0].UserID)
	assert.Equal(t, []string{"https://a", "https://b"}, planned[0].Links)
	assert.Equal(t, "noname@example.com", planned[1].UserName)
	assert.Equal(t, []string{}, planned[1].Links)

	require.Len(t, skipped, 2)
	assert.Equal(t, Skipped{Line: 3, Reason: "Location is empty"}, skipped[0])
	assert.Equal(t, 4, skipped[1].Line)
}

type fakeCreator struct {
	created []fieldapi.Job
	failOn  map[string]error
}

func (f *fakeCreator) CreateForUser(_ context.Context, job fieldapi.Job) (*fieldapi.Job, error) {
	if err := f.failOn[job.JobNumber]; err != nil {
		return nil, err
	}
	f.created = append(f.created, job)
	return &job, nil
}

func TestUploadCountsFailures(t *testing.T) {
	plan := []PlannedJob{
		{Line: 2, UserID: 7, JobNumber: "SO-1", Customer: "Acme"},
		{Line: 3, UserID: 7, JobNumber: "SO-2", Customer: "Acme"},
		{Line: 4, UserID: 8, JobNumber: "SO-3", Customer: "Beta", Links: []string{"x"}},
	}
	creator := &fakeCreator{failOn: map[string]error{"SO-2": errors.New("boom")}}

	res, err := Upload(context.Background(), creator, plan)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.EqualError(t, res.Errors[0], "row 3 (SO-2): boom")

	require.Len(t, creator.created, 2)
	job := creator.created[1]
	assert.Equal(t, 8, *job.CreatedByID)
	assert.False(t, job.IsEdit)
	assert.NotNil(t, job.Employees)
	assert.NotEmpty(t, job.Date)
}

func TestUploadStopsWhenSessionEnds(t *testing.T) {
	plan := []PlannedJob{
		{Line: 2, JobNumber: "SO-1"},
		{Line: 3, JobNumber: "SO-2"},
	}
	ended := fmt.Errorf("%w: %w", goFieldOps.ErrUnauthenticated, goFieldOps.ErrRefreshFailed)
	creator := &fakeCreator{failOn: map[string]error{"SO-1": ended}}

	res, err := Upload(context.Background(), creator, plan)
	assert.ErrorIs(t, err, goFieldOps.ErrUnauthenticated)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, creator.created)
}

func TestUploadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Upload(ctx, &fakeCreator{}, []PlannedJob{{Line: 2, JobNumber: "SO-1"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Succeeded)
}
