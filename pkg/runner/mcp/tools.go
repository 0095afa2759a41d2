package mcp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/view"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerWhoamiTool(srv, svc)
	registerShowSectionTool(srv, svc)
	registerListRegistrationsTool(srv, svc)
	registerListContactsTool(srv, svc)
	registerContactStatisticsTool(srv, svc)
	registerListTasksTool(srv, svc)
	registerListProjectsTool(srv, svc)

	registerRecordAction(srv, svc, "approve_registration", "Approve a pending registration.", view.ActionApproveRegistration)
	registerRecordAction(srv, svc, "reject_registration", "Reject a registration with a reason.", view.ActionRejectRegistration,
		input{name: "reason", description: "Reason for rejection.", required: true})
	registerRecordAction(srv, svc, "share_registration", "Share a registration with a project or email.", view.ActionShareRegistration,
		input{name: "shared_with", description: "Project ID or email to share with.", required: true})
	registerRecordAction(srv, svc, "assign_contact", "Assign a contact inquiry to an employee.", view.ActionAssignContact,
		input{name: "assigned_to", description: "Employee Self ID.", required: true})
	registerRecordAction(srv, svc, "resolve_contact", "Mark a contact inquiry resolved.", view.ActionResolveContact)
	registerRecordAction(srv, svc, "share_contact", "Share a contact inquiry.", view.ActionShareContact,
		input{name: "shared_with", description: "Project ID or email to share with.", required: true},
		input{name: "notes", description: "Optional sharing notes."})
	registerRecordAction(srv, svc, "update_task_status", "Change the status of one of your tasks.", view.ActionTaskStatus,
		input{name: "status", description: "New task status.", required: true, enum: record.Statuses(record.KindTask)})
	registerRecordAction(srv, svc, "add_task_note", "Add a note to one of your tasks.", view.ActionTaskNote,
		input{name: "note", description: "Note text.", required: true})
	registerRecordAction(srv, svc, "log_task_hours", "Record the actual hours spent on a task.", view.ActionTaskHours,
		input{name: "hours", description: "Actual hours, a whole number.", required: true})
}

func registerWhoamiTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"whoami",
		mcp.WithDescription("Show the signed-in Z+ user and role."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Whoami()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerShowSectionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"show_section",
		mcp.WithDescription("Render a dashboard section (see the zdash://sections resource for ids)."),
		mcp.WithString("section",
			mcp.Description("Section id; defaults to the dashboard overview."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panel, err := svc.Section(ctx, request.GetString("section", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(panel)
	})
}

func registerListRegistrationsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_registrations",
		mcp.WithDescription("List user registrations. Administrators only."),
		mcp.WithString("status",
			mcp.Description("Status filter: all, pending, approved or rejected."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := request.GetString("status", "all")
		items, err := svc.Registrations(ctx, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"status":        status,
			"count":         len(items),
			"registrations": items,
		})
	})
}

func registerListContactsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_contacts",
		mcp.WithDescription("List contact inquiries. Administrators only."),
		mcp.WithString("status",
			mcp.Description("Status filter such as all, pending or resolved."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := request.GetString("status", "all")
		items, err := svc.Contacts(ctx, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"status":   status,
			"count":    len(items),
			"contacts": items,
		})
	})
}

func registerContactStatisticsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"contact_statistics",
		mcp.WithDescription("Counters of contact inquiries by status."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.ContactStatistics(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(stats)
	})
}

func registerListTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List your tasks. Employees only."),
		mcp.WithString("status",
			mcp.Description("Status filter such as all, todo, in_progress or completed."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := request.GetString("status", "all")
		items, err := svc.Tasks(ctx, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"status": status,
			"count":  len(items),
			"tasks":  items,
		})
	})
}

func registerListProjectsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_projects",
		mcp.WithDescription("List the projects visible to you. Employees and clients."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.Projects(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"count":    len(items),
			"projects": items,
		})
	})
}

type input struct {
	name        string
	description string
	required    bool
	enum        []string
}

// registerRecordAction adds a tool that runs action on the record named by
// its id argument. inputs map, in order, onto the action's prompts.
func registerRecordAction(srv *server.MCPServer, svc *Service, name, description, action string, inputs ...input) {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record identifier."),
		),
	}
	for _, in := range inputs {
		props := []mcp.PropertyOption{mcp.Description(in.description)}
		if in.required {
			props = append(props, mcp.Required())
		}
		if len(in.enum) > 0 {
			props = append(props, mcp.Enum(in.enum...))
		}
		opts = append(opts, mcp.WithString(in.name, props...))
	}
	tool := mcp.NewTool(name, opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		values := make([]string, 0, len(inputs))
		for _, in := range inputs {
			v := request.GetString(in.name, "")
			if in.required && v == "" {
				return mcp.NewToolResultError(fmt.Sprintf("%s is required", in.name)), nil
			}
			if in.name == "hours" {
				if _, err := strconv.Atoi(v); err != nil {
					return mcp.NewToolResultError("hours must be a whole number"), nil
				}
			}
			values = append(values, v)
		}

		dto, err := svc.Perform(ctx, action, id, values...)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
