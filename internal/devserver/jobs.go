package devserver

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/gorilla/mux"
)

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	acct := s.caller(r)
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	rec := s.findJobLocked(id)
	s.mu.Unlock()

	if rec == nil || (acct.user.Role != fieldapi.RoleAdmin && !ownedBy(rec.job, acct.user.ID)) {
		writeDetail(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.job)
}

func (s *Server) handleMyClosed(w http.ResponseWriter, r *http.Request) {
	acct := s.caller(r)

	s.mu.Lock()
	out := []fieldapi.Job{}
	for _, rec := range s.jobs {
		if !rec.predefined && ownedBy(rec.job, acct.user.ID) {
			out = append(out, rec.job)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMyOpen(w http.ResponseWriter, r *http.Request) {
	acct := s.caller(r)

	s.mu.Lock()
	out := []fieldapi.Job{}
	for _, rec := range s.jobs {
		if rec.predefined && ownedBy(rec.job, acct.user.ID) && !s.submittedLocked(*rec.job.ID) {
			out = append(out, rec.job)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// handleCreateForUser stores a predefined job assigned to job.createdById.
func (s *Server) handleCreateForUser(w http.ResponseWriter, r *http.Request) {
	admin := s.caller(r)
	var job fieldapi.Job
	if !decodeJSON(w, r, &job) {
		return
	}
	if job.CreatedByID == nil {
		writeDetail(w, http.StatusBadRequest, "createdById is required")
		return
	}
	if msg := validateJob(job); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.userExistsLocked(*job.CreatedByID) {
		writeDetail(w, http.StatusBadRequest, "assigned user does not exist")
		return
	}
	adminID := admin.user.ID
	job.AdminCreatedByID = &adminID
	job.CreatedFromJobID = nil
	rec := s.storeJobLocked(job, true)
	writeJSON(w, http.StatusCreated, rec.job)
}

// handleUtilizeJob stores a submission by the caller. A submission naming
// createdFromJobId closes that predefined job.
func (s *Server) handleUtilizeJob(w http.ResponseWriter, r *http.Request) {
	acct := s.caller(r)
	var job fieldapi.Job
	if !decodeJSON(w, r, &job) {
		return
	}
	if msg := validateJob(job); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if job.CreatedFromJobID != nil {
		src := s.findJobLocked(*job.CreatedFromJobID)
		if src == nil || !src.predefined || !ownedBy(src.job, acct.user.ID) {
			writeDetail(w, http.StatusNotFound, "predefined job not found")
			return
		}
		if s.submittedLocked(*src.job.ID) {
			writeDetail(w, http.StatusConflict, "job already submitted")
			return
		}
		job.AdminCreatedByID = src.job.AdminCreatedByID
	}
	uid := acct.user.ID
	job.CreatedByID = &uid
	rec := s.storeJobLocked(job, false)
	writeJSON(w, http.StatusCreated, rec.job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("selected")
	if selected != fieldapi.ListAllComplete && selected != fieldapi.ListAdminIncomplete {
		writeDetail(w, http.StatusBadRequest, "selected must be all or admin_incomplete")
		return
	}

	s.mu.Lock()
	out := []fieldapi.ExistingJob{}
	for _, rec := range s.jobs {
		switch {
		case selected == fieldapi.ListAllComplete && !rec.predefined:
			out = append(out, s.expandLocked(rec.job))
		case selected == fieldapi.ListAdminIncomplete && rec.predefined && !s.submittedLocked(*rec.job.ID):
			out = append(out, s.expandLocked(rec.job))
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// handleDailyReport writes one CSV row per employee time entry of the jobs
// submitted for report_date. Jobs without entries get a single row.
func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse(fieldapi.ReportDateLayout, r.URL.Query().Get("report_date"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "report_date must be YYYY-MM-DD")
		return
	}
	date := day.Format(fieldapi.ReportDateLayout)

	s.mu.Lock()
	rows := [][]string{{"Job Number", "Customer", "Location", "Date", "Employee", "Start", "End", "Description"}}
	for _, rec := range s.jobs {
		if rec.predefined || !strings.HasPrefix(rec.job.Date, date) {
			continue
		}
		ex := s.expandLocked(rec.job)
		if len(ex.Employees) == 0 {
			rows = append(rows, []string{ex.JobNumber, ex.Customer, ex.Location, date, "", "", "", ex.Description})
			continue
		}
		for _, e := range ex.Employees {
			name := strings.TrimSpace(e.Employee.FirstName + " " + e.Employee.LastName)
			rows = append(rows, []string{ex.JobNumber, ex.Customer, ex.Location, date, name, e.StartTime, e.EndTime, e.Description})
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fieldapi.ReportFileName(day)))
	cw := csv.NewWriter(w)
	_ = cw.WriteAll(rows)
}

func validateJob(job fieldapi.Job) string {
	switch {
	case strings.TrimSpace(job.Customer) == "":
		return "customer is required"
	case strings.TrimSpace(job.JobNumber) == "":
		return "jobNumber is required"
	}
	return ""
}

func ownedBy(job fieldapi.Job, userID int) bool {
	return job.CreatedByID != nil && *job.CreatedByID == userID
}

func (s *Server) storeJobLocked(job fieldapi.Job, predefined bool) *jobRecord {
	id := s.allocID()
	job.ID = &id
	job.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if job.Date == "" {
		job.Date = time.Now().UTC().Format(fieldapi.ReportDateLayout)
	}
	rec := &jobRecord{job: job, predefined: predefined}
	s.jobs = append(s.jobs, rec)
	return rec
}

func (s *Server) findJobLocked(id int) *jobRecord {
	for _, rec := range s.jobs {
		if *rec.job.ID == id {
			return rec
		}
	}
	return nil
}

func (s *Server) submittedLocked(predefinedID int) bool {
	for _, rec := range s.jobs {
		if !rec.predefined && rec.job.CreatedFromJobID != nil && *rec.job.CreatedFromJobID == predefinedID {
			return true
		}
	}
	return false
}

func (s *Server) userExistsLocked(id int) bool {
	for _, acct := range s.byUID {
		if acct.user.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) expandLocked(job fieldapi.Job) fieldapi.ExistingJob {
	ex := fieldapi.ExistingJob{
		ID:               *job.ID,
		CreatedFromJobID: job.CreatedFromJobID,
		AdminCreatedByID: job.AdminCreatedByID,
		CreatedAt:        job.CreatedAt,
		Customer:         job.Customer,
		JobNumber:        job.JobNumber,
		Location:         job.Location,
		IsEdit:           job.IsEdit,
		Description:      job.Description,
		Date:             job.Date,
		Links:            job.Links,
	}
	if job.CreatedByID != nil {
		ex.CreatedByID = *job.CreatedByID
	}

	for i, e := range job.Employees {
		emp := s.employees[e.EmployeeID]
		ex.Employees = append(ex.Employees, fieldapi.ExistingEmployeeJob{
			ID:          i + 1,
			GroupID:     e.GroupID,
			JobID:       ex.ID,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Description: e.Description,
			Employee:    fieldapi.PersonRef{ID: emp.ID, FirstName: emp.FirstName, LastName: emp.LastName},
		})
	}
	for i, e := range job.Equipment {
		ex.Equipment = append(ex.Equipment, fieldapi.ExistingEquipmentJob{
			ID:        i + 1,
			JobID:     ex.ID,
			Equipment: s.namedRefLocked("equipment", e.EquipmentID),
			Hours:     e.Hours,
		})
	}
	for i, sc := range job.Subcontractors {
		ex.Subcontractors = append(ex.Subcontractors, fieldapi.ExistingSubcontractorJob{
			ID:            i + 1,
			JobID:         ex.ID,
			Subcontractor: s.namedRefLocked("subcontractors", sc.SubcontractorID),
			HoursPerMan:   sc.HoursPerMan,
			NumberOfMen:   sc.NumberOfMen,
			Description:   sc.Description,
		})
	}
	for i, d := range job.Drivers {
		driver := s.employees[d.DriverID]
		ex.Drivers = append(ex.Drivers, fieldapi.ExistingDriverVehicleJob{
			ID:      i + 1,
			JobID:   ex.ID,
			Driver:  fieldapi.PersonRef{ID: driver.ID, FirstName: driver.FirstName, LastName: driver.LastName},
			Vehicle: s.namedRefLocked("vehicles", d.VehicleID),
		})
	}
	for i, p := range job.Parts {
		ex.Parts = append(ex.Parts, fieldapi.ExistingPartJob{
			ID:          i + 1,
			JobID:       ex.ID,
			Quantity:    p.Quantity,
			Description: p.Description,
			PartNumber:  p.PartNumber,
		})
	}
	return ex
}

func (s *Server) namedRefLocked(kind string, id int) fieldapi.NamedRef {
	item := s.items[kind][id]
	return fieldapi.NamedRef{ID: item.ID, Name: item.Name}
}
