package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"tableflip.dev/zdash/pkg/record"
)

var validate = validator.New()

type loginRequest struct {
	SelfID   string `json:"selfId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req := loginRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed login request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Self ID and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[req.SelfID]
	if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)) != nil {
		s.log.Debug().Str("selfId", req.SelfID).Msg("fakeapi: login rejected")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := s.issueLocked(a.SelfID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"token":    token,
		"userType": a.UserType,
		"selfId":   a.SelfID,
		"name":     a.Name,
		"message":  "Login successful",
	})
}

func (s *Server) listRegistrations(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(mux.Vars(r)["status"])
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []record.Registration{}
	for _, reg := range s.registrations {
		if status == "" || reg.Status.Key() == status {
			out = append(out, reg)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) registrationAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	reg := s.findRegistration(record.ID(vars["id"]))
	if reg == nil {
		writeError(w, http.StatusNotFound, "Registration not found")
		return
	}
	switch vars["action"] {
	case "approve":
		if reg.Status.Key() != "PENDING" {
			writeError(w, http.StatusBadRequest, "Registration is not pending")
			return
		}
		reg.Status = record.S("APPROVED")
	case "reject":
		if strings.TrimSpace(q.Get("reason")) == "" {
			writeError(w, http.StatusBadRequest, "Rejection reason is required")
			return
		}
		reg.Status = record.S("REJECTED")
		reg.RejectionReason = q.Get("reason")
	case "share":
		if strings.TrimSpace(q.Get("sharedWith")) == "" {
			writeError(w, http.StatusBadRequest, "Recipient is required")
			return
		}
		reg.SharedWith = q.Get("sharedWith")
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) findRegistration(id record.ID) *record.Registration {
	for i := range s.registrations {
		if s.registrations[i].ID == id {
			return &s.registrations[i]
		}
	}
	return nil
}

// listContacts answers the unfiltered list as a page object and the filtered
// list as a bare array; both shapes occur in production.
func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(mux.Vars(r)["status"])
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []record.ContactInquiry{}
	for _, c := range s.contacts {
		if status == "" || c.Status.Key() == status {
			out = append(out, c)
		}
	}
	if status == "" {
		writeJSON(w, http.StatusOK, map[string]any{"content": out, "totalElements": len(out)})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) contactStatistics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := map[string]int{}
	for _, c := range s.contacts {
		byStatus[c.Status.Key()]++
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(s.contacts), "byStatus": byStatus})
}

func (s *Server) findContact(id record.ID) *record.ContactInquiry {
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return &s.contacts[i]
		}
	}
	return nil
}

func (s *Server) assignContact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findContact(record.ID(mux.Vars(r)["id"]))
	if c == nil {
		writeError(w, http.StatusNotFound, "Inquiry not found")
		return
	}
	to := strings.TrimSpace(r.URL.Query().Get("assignedTo"))
	if to == "" {
		writeError(w, http.StatusBadRequest, "Assignee is required")
		return
	}
	c.AssignedTo = to
	if c.Status.Key() == "NEW" || c.Status.Key() == "PENDING" {
		c.Status = record.S("IN_PROGRESS")
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) contactStatus(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(r.URL.Query().Get("status"))
	if !known(record.KindContact, status) {
		writeError(w, http.StatusBadRequest, "Invalid status: "+status)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findContact(record.ID(mux.Vars(r)["id"]))
	if c == nil {
		writeError(w, http.StatusNotFound, "Inquiry not found")
		return
	}
	c.Status = record.S(status)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) shareContact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findContact(record.ID(mux.Vars(r)["id"]))
	if c == nil {
		writeError(w, http.StatusNotFound, "Inquiry not found")
		return
	}
	to := strings.TrimSpace(q.Get("sharedWith"))
	if to == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Recipient is required"})
		return
	}
	c.SharedWith = to
	c.ShareNotes = q.Get("shareNotes")
	c.SharedAt = record.Timestamp{Time: s.now()}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Inquiry shared with " + to,
		"sharedAt": c.SharedAt,
	})
}

func (s *Server) myTasks(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	status := strings.ToUpper(mux.Vars(r)["status"])
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []record.Task{}
	for _, t := range s.tasks[p.SelfID] {
		if status == "" || t.Status.Key() == status {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	vars := mux.Vars(r)
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()

	var task *record.Task
	for i := range s.tasks[p.SelfID] {
		if s.tasks[p.SelfID][i].ID == record.ID(vars["id"]) {
			task = &s.tasks[p.SelfID][i]
		}
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	switch vars["field"] {
	case "status":
		status := strings.ToUpper(q.Get("status"))
		if !known(record.KindTask, status) {
			writeError(w, http.StatusBadRequest, "Invalid status: "+status)
			return
		}
		task.Status = record.S(status)
	case "notes":
		task.Notes = q.Get("note")
	case "progress":
		hours, err := strconv.Atoi(q.Get("actualHours"))
		if err != nil || hours < 0 {
			writeError(w, http.StatusBadRequest, "actualHours must be a non-negative integer")
			return
		}
		task.ActualHours = record.Number(hours)
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]record.Project{}, s.projects...))
}

func (s *Server) clientProjects(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.allowedSelf(r, id) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.projectsOfLocked(id))
}

func (s *Server) projectsOfLocked(clientID string) []record.Project {
	out := []record.Project{}
	for _, pid := range s.clientProject[clientID] {
		for _, p := range s.projects {
			if p.ID == pid {
				out = append(out, p)
			}
		}
	}
	return out
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.allowedSelf(r, vars["id"]) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if vars["kind"] == "clients" {
		projects := s.projectsOfLocked(vars["id"])
		stats := map[string]any{"totalProjects": len(projects), "activeProjects": 0, "completedProjects": 0, "totalSpent": 0.0, "recentReports": 0}
		for _, p := range projects {
			switch p.Status.Key() {
			case "ACTIVE":
				stats["activeProjects"] = stats["activeProjects"].(int) + 1
			case "COMPLETED":
				stats["completedProjects"] = stats["completedProjects"].(int) + 1
			}
			stats["totalSpent"] = stats["totalSpent"].(float64) + float64(p.Budget)*float64(p.ProgressPercentage)/100
		}
		writeJSON(w, http.StatusOK, stats)
		return
	}

	tasks := s.tasks[vars["id"]]
	completed, pending, hours := 0, 0, 0.0
	projects := map[record.ID]bool{}
	for _, t := range tasks {
		switch t.Status.Key() {
		case "COMPLETED":
			completed++
		case "CANCELLED":
		default:
			pending++
		}
		hours += float64(t.ActualHours)
		if t.ProjectID != "" {
			projects[t.ProjectID] = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalTasks":     len(tasks),
		"completedTasks": completed,
		"pendingTasks":   pending,
		"hoursWorked":    hours,
		"activeProjects": len(projects),
	})
}

// allowedSelf lets users read their own dashboards; admins read any.
func (s *Server) allowedSelf(r *http.Request, id string) bool {
	p := principalFrom(r.Context())
	return p.Role == "ADMIN" || p.SelfID == id
}

func known(kind record.Kind, status string) bool {
	for _, s := range record.Statuses(kind) {
		if s == status {
			return true
		}
	}
	return false
}
