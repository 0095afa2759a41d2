package fakeapi

import (
	"time"

	"tableflip.dev/zdash/pkg/record"
)

// Seeded credentials.
var (
	Admin    = Account{SelfID: "ADMIN001", Name: "Ada Admin", UserType: "ADMIN", Password: "admin123"}
	Employee = Account{SelfID: "EMP001", Name: "Eli Employee", UserType: "EMPLOYEE", Password: "employee123"}
	Client   = Account{SelfID: "CLI001", Name: "Cleo Client", UserType: "CLIENT", Password: "client123"}
)

func (s *Server) seed() {
	s.accounts = map[string]*Account{}
	for _, a := range []Account{Admin, Employee, Client} {
		a := a
		s.accounts[a.SelfID] = &a
	}
	at := func(days int) record.Timestamp {
		return record.Timestamp{Time: time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local).AddDate(0, 0, days)}
	}

	s.registrations = []record.Registration{
		{ID: s.id(), FirstName: "Priya", LastName: "Nair", Email: "priya@example.com", Phone: "555-0101", Department: "Engineering", UserType: "EMPLOYEE", ProjectID: "P-100", Status: record.S("PENDING"), CreatedAt: at(0)},
		{ID: s.id(), FirstName: "Tom", LastName: "Okafor", Email: "tom@example.com", Department: "Sales", UserType: "CLIENT", Status: record.S("APPROVED"), CreatedAt: at(1)},
		{ID: s.id(), FirstName: "Mei", LastName: "Chen", Email: "mei@example.com", Phone: "555-0103", Department: "Design", UserType: "EMPLOYEE", Status: record.S("REJECTED"), RejectionReason: "Duplicate request", CreatedAt: at(2)},
	}
	s.contacts = []record.ContactInquiry{
		{ID: s.id(), FullName: "Jordan Reyes", Email: "jordan@example.com", Organization: "Reyes Ltd", Subject: "Pricing", Message: "Could you send a quote for a ten seat plan?", Status: record.S("PENDING"), CreatedAt: at(3)},
		{ID: s.id(), FullName: "Sam Patel", Email: "sam@example.com", Subject: "Support", Message: "The export button does nothing on my laptop.", Status: record.S("IN_PROGRESS"), AssignedTo: "EMP001", CreatedAt: at(4)},
		{ID: s.id(), FullName: "Alex Kim", Email: "alex@example.com", Subject: "Partnership", Message: "We would like to discuss a reseller agreement.", Status: record.S("RESOLVED"), CreatedAt: at(5)},
	}

	p1, p2 := s.id(), s.id()
	s.projects = []record.Project{
		{ID: p1, ProjectID: "P-100", ProjectName: "Portal Revamp", Status: record.S("ACTIVE"), Priority: record.S("HIGH"), Department: "Engineering", ProgressPercentage: 60, Budget: 50000, StartDate: at(-30), EndDate: at(60)},
		{ID: p2, ProjectID: "P-200", ProjectName: "Data Migration", Status: record.S("COMPLETED"), Priority: record.S("MEDIUM"), Department: "Operations", ProgressPercentage: 100, Budget: 20000, StartDate: at(-90), EndDate: at(-10)},
	}
	s.clientProject = map[string][]record.ID{Client.SelfID: {p1, p2}}

	s.tasks = map[string][]record.Task{
		Employee.SelfID: {
			{ID: s.id(), Title: "Wire login page", Status: record.S("TODO"), Priority: record.S("HIGH"), ProjectID: p1, AssignedTo: Employee.SelfID, DueDate: at(7), EstimatedHours: 8, CreatedAt: at(0)},
			{ID: s.id(), Title: "Review schema", Status: record.S("IN_PROGRESS"), Priority: record.S("MEDIUM"), ProjectID: p1, AssignedTo: Employee.SelfID, DueDate: at(3), EstimatedHours: 4, ActualHours: 2, CreatedAt: at(1)},
			{ID: s.id(), Title: "Archive old data", Status: record.S("COMPLETED"), Priority: record.S("LOW"), ProjectID: p2, AssignedTo: Employee.SelfID, EstimatedHours: 6, ActualHours: 5, CreatedAt: at(-20)},
		},
	}
}

// AddRegistration appends a registration and returns its id.
func (s *Server) AddRegistration(r record.Registration) record.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	if r.Status.Name == "" {
		r.Status = record.S("PENDING")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = record.Timestamp{Time: s.now()}
	}
	s.registrations = append(s.registrations, r)
	return r.ID
}

// AddContact appends an inquiry and returns its id.
func (s *Server) AddContact(c record.ContactInquiry) record.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	if c.Status.Name == "" {
		c.Status = record.S("PENDING")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = record.Timestamp{Time: s.now()}
	}
	s.contacts = append(s.contacts, c)
	return c.ID
}

// AddTask assigns a task to selfID and returns its id.
func (s *Server) AddTask(selfID string, t record.Task) record.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	t.AssignedTo = selfID
	if t.Status.Name == "" {
		t.Status = record.S("TODO")
	}
	s.tasks[selfID] = append(s.tasks[selfID], t)
	return t.ID
}

// Registration returns a copy of the registration with id.
func (s *Server) Registration(id record.ID) (record.Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findRegistration(id); r != nil {
		return *r, true
	}
	return record.Registration{}, false
}

// Contact returns a copy of the inquiry with id.
func (s *Server) Contact(id record.ID) (record.ContactInquiry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findContact(id); c != nil {
		return *c, true
	}
	return record.ContactInquiry{}, false
}

// Task returns a copy of selfID's task with id.
func (s *Server) Task(selfID string, id record.ID) (record.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks[selfID] {
		if t.ID == id {
			return t, true
		}
	}
	return record.Task{}, false
}
