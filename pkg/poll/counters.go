package poll

import (
	"context"

	"tableflip.dev/zdash/pkg/store"
)

// Source counts the items at a list endpoint.
type Source interface {
	Count(ctx context.Context, endpoint string) (int, error)
}

// EndpointCounter counts items at endpoint through src.
func EndpointCounter(src Source, name, endpoint, message string) Counter {
	return Counter{
		Name:    name,
		Message: message,
		Fetch: func(ctx context.Context) (int, error) {
			return src.Count(ctx, endpoint)
		},
	}
}

// CountersFor returns the counters each dashboard tracks.
func CountersFor(role store.Role, src Source) []Counter {
	switch role {
	case store.RoleAdmin:
		return []Counter{
			EndpointCounter(src, "pendingRegistrations", "/registrations/pending", "%d new registration(s) pending approval!"),
			EndpointCounter(src, "pendingContacts", "/contact/status/PENDING", "%d new contact inquiry(s) received!"),
		}
	case store.RoleEmployee:
		return []Counter{
			EndpointCounter(src, "openTasks", "/tasks/my-tasks/status/TODO", "%d new task(s) assigned to you!"),
		}
	}
	return nil
}
