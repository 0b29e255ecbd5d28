// AngelaMos | 2026
// entity.go

package catalog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

type ResourceType int

const (
	TypeCamera ResourceType = iota
	TypeAlert
	TypeReport
	TypePolicy
	TypeUser
	TypeIntegration
	TypePage

	numResourceTypes
)

type TypeStyle struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// typeStyles is indexed by ResourceType; adding a type without a row here
// leaves a zero TypeStyle that TestTypeStylesComplete rejects.
var typeStyles = [numResourceTypes]TypeStyle{
	TypeCamera:      {Name: "camera", Label: "Camera", Icon: "video", Color: "blue"},
	TypeAlert:       {Name: "alert", Label: "Alert", Icon: "bell", Color: "red"},
	TypeReport:      {Name: "report", Label: "Report", Icon: "file-text", Color: "green"},
	TypePolicy:      {Name: "policy", Label: "Policy", Icon: "shield", Color: "purple"},
	TypeUser:        {Name: "user", Label: "User", Icon: "user", Color: "gray"},
	TypeIntegration: {Name: "integration", Label: "Integration", Icon: "plug", Color: "orange"},
	TypePage:        {Name: "page", Label: "Page", Icon: "layout", Color: "slate"},
}

func (t ResourceType) Style() TypeStyle {
	if t < 0 || t >= numResourceTypes {
		return TypeStyle{}
	}
	return typeStyles[t]
}

func (t ResourceType) String() string {
	return t.Style().Name
}

func ResourceTypes() []ResourceType {
	types := make([]ResourceType, 0, numResourceTypes)
	for t := ResourceType(0); t < numResourceTypes; t++ {
		types = append(types, t)
	}
	return types
}

func ParseResourceType(s string) (ResourceType, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t := ResourceType(0); t < numResourceTypes; t++ {
		if typeStyles[t].Name == name {
			return t, true
		}
	}
	return 0, false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusWarning  Status = "warning"
	StatusError    Status = "error"
)

func parseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return "", true
	case StatusActive, StatusInactive, StatusWarning, StatusError:
		return st, true
	default:
		return "", false
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func parsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return "", true
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, true
	default:
		return "", false
	}
}

// Resource is one searchable directory entry.
type Resource struct {
	ID           string
	Title        string
	Description  string
	Category     string
	Type         ResourceType
	URL          string
	Status       Status
	Priority     Priority
	PlanRequired *entitlement.Plan
}

// Record is the raw, string-typed form of a Resource as stored in the
// database or a catalog file.
type Record struct {
	ID           string `db:"id"            koanf:"id"`
	Title        string `db:"title"         koanf:"title"`
	Description  string `db:"description"   koanf:"description"`
	Category     string `db:"category"      koanf:"category"`
	Type         string `db:"type"          koanf:"type"`
	URL          string `db:"url"           koanf:"url"`
	Status       string `db:"status"        koanf:"status"`
	Priority     string `db:"priority"      koanf:"priority"`
	PlanRequired string `db:"plan_required" koanf:"plan_required"`
	Position     int    `db:"position"      koanf:"position"`
}

// FromRecord converts a raw record. Unknown types are rejected. Unknown status
// and priority values are dropped. An unknown plan tag hides the resource from
// every non-elevated viewer.
func FromRecord(rec Record) (Resource, error) {
	if rec.ID == "" {
		return Resource{}, fmt.Errorf("resource without id: %w", core.ErrInvalidInput)
	}

	typ, ok := ParseResourceType(rec.Type)
	if !ok {
		return Resource{}, fmt.Errorf(
			"resource %s: unknown type %q: %w",
			rec.ID,
			rec.Type,
			core.ErrInvalidInput,
		)
	}

	status, ok := parseStatus(rec.Status)
	if !ok {
		slog.Warn("dropping unknown resource status",
			"resource_id", rec.ID,
			"status", rec.Status,
		)
	}

	priority, ok := parsePriority(rec.Priority)
	if !ok {
		slog.Warn("dropping unknown resource priority",
			"resource_id", rec.ID,
			"priority", rec.Priority,
		)
	}

	plan, ok := entitlement.RequiredPlan(rec.PlanRequired)
	if !ok {
		slog.Warn("unrecognized plan requirement, restricting resource",
			"resource_id", rec.ID,
			"plan_required", rec.PlanRequired,
		)
	}

	return Resource{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		Category:     rec.Category,
		Type:         typ,
		URL:          rec.URL,
		Status:       status,
		Priority:     priority,
		PlanRequired: plan,
	}, nil
}

// FromRecords converts records in order, skipping the ones FromRecord rejects.
func FromRecords(records []Record) []Resource {
	resources := make([]Resource, 0, len(records))
	for _, rec := range records {
		res, err := FromRecord(rec)
		if err != nil {
			slog.Warn("skipping catalog record", "error", err)
			continue
		}
		resources = append(resources, res)
	}
	return resources
}
