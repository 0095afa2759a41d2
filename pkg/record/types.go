package record

import (
	"strings"
)

// Registration is a pending or decided account request.
type Registration struct {
	ID              ID        `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Department      string    `json:"department,omitempty"`
	UserType        string    `json:"userType,omitempty"`
	ProjectID       ID        `json:"projectId,omitempty"`
	SelfID          string    `json:"selfId,omitempty"`
	Status          Status    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	SharedWith      string    `json:"sharedWith,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
}

// FullName joins the name parts, skipping blanks.
func (r Registration) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// ContactInquiry is a message submitted through the public contact form.
type ContactInquiry struct {
	ID           ID        `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	AssignedTo   string    `json:"assignedTo,omitempty"`
	SharedWith   string    `json:"sharedWith,omitempty"`
	ShareNotes   string    `json:"shareNotes,omitempty"`
	SharedAt     Timestamp `json:"sharedAt"`
	Response     string    `json:"responseNotes,omitempty"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// Task is a unit of work assigned to an employee.
type Task struct {
	ID                 ID        `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Status             Status    `json:"status"`
	Priority           Status    `json:"priority"`
	ProjectID          ID        `json:"projectId,omitempty"`
	AssignedTo         string    `json:"assignedTo,omitempty"`
	DueDate            Timestamp `json:"dueDate"`
	EstimatedHours     Number    `json:"estimatedHours,omitempty"`
	ActualHours        Number    `json:"actualHours,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	ProgressPercentage Number    `json:"progressPercentage,omitempty"`
	Overdue            bool      `json:"overdue,omitempty"`
	CreatedAt          Timestamp `json:"createdAt"`
}

// Project is a client engagement.
type Project struct {
	ID                 ID        `json:"id"`
	ProjectID          ID        `json:"projectId,omitempty"`
	ProjectName        string    `json:"projectName"`
	Description        string    `json:"description,omitempty"`
	Status             Status    `json:"status"`
	Priority           Status    `json:"priority"`
	Department         string    `json:"department,omitempty"`
	ProgressPercentage Number    `json:"progressPercentage,omitempty"`
	Budget             Number    `json:"budget,omitempty"`
	StartDate          Timestamp `json:"startDate"`
	EndDate            Timestamp `json:"endDate"`
}

// Statistics is the free-form counter map from /contact/statistics.
type Statistics map[string]any
