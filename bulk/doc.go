// Package bulk turns a spreadsheet of predefined jobs into API calls.
//
// The expected layout is the one produced by WriteTemplate: a header row
// with Email, Customer, Job Name, Location, Description and Links, one job
// per following row. ReadRows parses .xlsx and legacy .xls files, Plan
// resolves emails against the user roster and Upload creates the jobs one
// by one.
package bulk
