package devserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/gorilla/mux"
)

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]fieldapi.User, 0, len(s.byUID))
	for _, acct := range s.byUID {
		out = append(out, acct.user)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]fieldapi.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.FirstName) == "" {
		writeDetail(w, http.StatusBadRequest, "firstName is required")
		return
	}

	s.mu.Lock()
	e := s.addEmployeeLocked(in.FirstName, in.LastName)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	_, ok := s.employees[id]
	delete(s.employees, id)
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "employee not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	s.mu.Lock()
	out := make([]fieldapi.Item, 0, len(s.items[kind]))
	for _, it := range s.items[kind] {
		out = append(out, it)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	var in struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	it := s.addItemLocked(kind, in.Name)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	id, _ := strconv.Atoi(vars["id"])

	s.mu.Lock()
	_, ok := s.items[kind][id]
	delete(s.items[kind], id)
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addEmployeeLocked(first, last string) fieldapi.Employee {
	id := s.allocID()
	e := fieldapi.Employee{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Name:      strings.TrimSpace(first + " " + last),
		LegacyID:  "E" + strconv.Itoa(id),
	}
	s.employees[id] = e
	return e
}

func (s *Server) addItemLocked(kind, name string) fieldapi.Item {
	id := s.allocID()
	it := fieldapi.Item{
		ID:       id,
		Name:     name,
		LegacyID: strings.ToUpper(kind[:1]) + strconv.Itoa(id),
	}
	s.items[kind][id] = it
	return it
}
