package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerSessionResource(srv, svc)
	registerSectionsResource(srv, svc)
	registerSectionTemplate(srv, svc)
}

func registerSessionResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"zdash://session",
		"Session",
		mcp.WithResourceDescription("The signed-in Z+ user."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dto, err := svc.Whoami()
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerSectionsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"zdash://sections",
		"Sections",
		mcp.WithResourceDescription("Dashboard sections available to the signed-in role."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := svc.Sections()
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"sections": list,
			"count":    len(list),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerSectionTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"zdash://sections/{id}",
		"Section Content",
		mcp.WithTemplateDescription("What a dashboard section shows: title, fields, table and actions."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("section id is required")
		}

		panel, err := svc.Section(ctx, id)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"section": id,
			"panel":   panel,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
