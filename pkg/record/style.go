package record

// Style is the semantic colour class for a status badge.
type Style string

const (
	StyleWarning   Style = "warning"
	StyleSuccess   Style = "success"
	StyleDanger    Style = "danger"
	StyleInfo      Style = "info"
	StyleSecondary Style = "secondary"
	StyleLight     Style = "light"
	StylePrimary   Style = "primary"
)

// Kind selects which status table a record uses.
type Kind string

const (
	KindRegistration Kind = "registration"
	KindContact      Kind = "contact"
	KindTask         Kind = "task"
	KindProject      Kind = "project"
)

var styles = map[Kind]map[string]Style{
	KindRegistration: {
		"PENDING":     StyleWarning,
		"APPROVED":    StyleSuccess,
		"REJECTED":    StyleDanger,
		"SUSPENDED":   StyleSecondary,
		"DEACTIVATED": StyleSecondary,
	},
	KindContact: {
		"NEW":            StyleInfo,
		"PENDING":        StyleWarning,
		"IN_PROGRESS":    StyleInfo,
		"CONTACTED":      StylePrimary,
		"QUALIFIED":      StylePrimary,
		"NOT_INTERESTED": StyleSecondary,
		"RESOLVED":       StyleSuccess,
		"CONVERTED":      StyleSuccess,
		"CLOSED":         StyleSecondary,
	},
	KindTask: {
		"TODO":        StyleWarning,
		"IN_PROGRESS": StyleInfo,
		"IN_REVIEW":   StylePrimary,
		"COMPLETED":   StyleSuccess,
		"CANCELLED":   StyleDanger,
		"ON_HOLD":     StyleSecondary,
	},
	KindProject: {
		"PLANNING":  StyleInfo,
		"ACTIVE":    StyleSuccess,
		"ON_HOLD":   StyleWarning,
		"COMPLETED": StylePrimary,
		"CANCELLED": StyleDanger,
		"SUSPENDED": StyleSecondary,
	},
}

// StyleFor maps a status to its badge style. Unknown statuses are light.
func StyleFor(kind Kind, s Status) Style {
	if st, ok := styles[kind][s.Key()]; ok {
		return st
	}
	return StyleLight
}

// Statuses lists the known status names for kind, for prompts and
// completion.
func Statuses(kind Kind) []string {
	switch kind {
	case KindRegistration:
		return []string{"PENDING", "APPROVED", "REJECTED", "SUSPENDED", "DEACTIVATED"}
	case KindContact:
		return []string{"NEW", "PENDING", "IN_PROGRESS", "CONTACTED", "QUALIFIED", "NOT_INTERESTED", "RESOLVED", "CONVERTED", "CLOSED"}
	case KindTask:
		return []string{"TODO", "IN_PROGRESS", "IN_REVIEW", "COMPLETED", "CANCELLED", "ON_HOLD"}
	case KindProject:
		return []string{"PLANNING", "ACTIVE", "ON_HOLD", "COMPLETED", "CANCELLED", "SUSPENDED"}
	}
	return nil
}
