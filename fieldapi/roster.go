package fieldapi

import (
	"context"
	"fmt"
	"net/http"
)

// RosterService manages users, employees and the named resources jobs
// reference.
type RosterService struct {
	client *Client
}

// RosterKinds lists the kinds accepted by Items, CreateItem and DeleteItem.
var RosterKinds = []string{"vehicles", "equipment", "subcontractors"}

// Users lists every account. Admin only.
func (s *RosterService) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.client.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterService) Employees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := s.client.do(ctx, http.MethodGet, "/employees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterService) CreateEmployee(ctx context.Context, firstName, lastName string) (*Employee, error) {
	in := map[string]string{"firstName": firstName, "lastName": lastName}
	var out Employee
	if err := s.client.do(ctx, http.MethodPost, "/employees", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RosterService) DeleteEmployee(ctx context.Context, id int) error {
	return s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/employees/%d", id), nil, nil)
}

func (s *RosterService) Vehicles(ctx context.Context) ([]Vehicle, error) {
	return s.Items(ctx, "vehicles")
}

func (s *RosterService) CreateVehicle(ctx context.Context, name string) (*Vehicle, error) {
	return s.CreateItem(ctx, "vehicles", name)
}

func (s *RosterService) DeleteVehicle(ctx context.Context, id int) error {
	return s.DeleteItem(ctx, "vehicles", id)
}

func (s *RosterService) Equipment(ctx context.Context) ([]Equipment, error) {
	return s.Items(ctx, "equipment")
}

func (s *RosterService) CreateEquipment(ctx context.Context, name string) (*Equipment, error) {
	return s.CreateItem(ctx, "equipment", name)
}

func (s *RosterService) DeleteEquipment(ctx context.Context, id int) error {
	return s.DeleteItem(ctx, "equipment", id)
}

func (s *RosterService) Subcontractors(ctx context.Context) ([]Subcontractor, error) {
	return s.Items(ctx, "subcontractors")
}

func (s *RosterService) CreateSubcontractor(ctx context.Context, name string) (*Subcontractor, error) {
	return s.CreateItem(ctx, "subcontractors", name)
}

func (s *RosterService) DeleteSubcontractor(ctx context.Context, id int) error {
	return s.DeleteItem(ctx, "subcontractors", id)
}

// Items lists a named-resource kind from RosterKinds.
func (s *RosterService) Items(ctx context.Context, kind string) ([]Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var out []Item
	if err := s.client.do(ctx, http.MethodGet, "/"+kind, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterService) CreateItem(ctx context.Context, kind, name string) (*Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var out Item
	if err := s.client.do(ctx, http.MethodPost, "/"+kind, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RosterService) DeleteItem(ctx context.Context, kind string, id int) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%d", kind, id), nil, nil)
}

func checkKind(kind string) error {
	for _, k := range RosterKinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("unknown roster kind %q", kind)
}
