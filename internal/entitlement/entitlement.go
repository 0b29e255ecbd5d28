// AngelaMos | 2026
// entitlement.go

// Package entitlement decides which directory resources a viewer may see,
// based on the viewer's role and subscription plan.
package entitlement

import (
	"strings"
)

type Role int

const (
	RoleViewer Role = iota
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = [...]string{
	RoleViewer:     "viewer",
	RoleAdmin:      "admin",
	RoleSuperAdmin: "super_admin",
}

func (r Role) String() string {
	if r < RoleViewer || r > RoleSuperAdmin {
		return roleNames[RoleViewer]
	}
	return roleNames[r]
}

// Elevated roles bypass every plan check.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole maps unknown input to RoleViewer so a bad role never widens access.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "super_admin":
		return RoleSuperAdmin
	default:
		return RoleViewer
	}
}

func ValidRole(s string) bool {
	for _, name := range roleNames {
		if s == name {
			return true
		}
	}
	return false
}

type Plan int

const (
	PlanBasic Plan = iota
	PlanPro
	PlanBusiness
	PlanEnterprise

	// PlanUnrecognized stands in for a resource requirement that could not be
	// parsed. It ranks above every real plan, so only elevated roles see it.
	PlanUnrecognized
)

var planNames = [...]string{
	PlanBasic:        "basic",
	PlanPro:          "pro",
	PlanBusiness:     "business",
	PlanEnterprise:   "enterprise",
	PlanUnrecognized: "unrecognized",
}

func (p Plan) String() string {
	if p < PlanBasic || p > PlanUnrecognized {
		return planNames[PlanUnrecognized]
	}
	return planNames[p]
}

func (p Plan) Index() int {
	return int(p)
}

// Plans lists the real plans in ascending order.
func Plans() []Plan {
	return []Plan{PlanBasic, PlanPro, PlanBusiness, PlanEnterprise}
}

func ParsePlan(s string) (Plan, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return PlanBasic, true
	case "pro":
		return PlanPro, true
	case "business":
		return PlanBusiness, true
	case "enterprise":
		return PlanEnterprise, true
	default:
		return PlanBasic, false
	}
}

func ValidPlan(s string) bool {
	_, ok := ParsePlan(s)
	return ok
}

// ViewerPlan resolves a viewer's plan, treating anything unrecognized as basic.
func ViewerPlan(s string) Plan {
	p, _ := ParsePlan(s)
	return p
}

// RequiredPlan resolves a resource's plan tag. An empty tag means no
// requirement and yields nil. An unrecognized tag yields PlanUnrecognized and
// ok=false so the caller can log it.
//
// Reading an unrecognized tag as the lowest plan would show the resource to
// every viewer. PlanUnrecognized is stricter: the resource stays hidden from
// every non-elevated viewer until the tag is fixed.
func RequiredPlan(s string) (*Plan, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}

	p, ok := ParsePlan(s)
	if !ok {
		unrecognized := PlanUnrecognized
		return &unrecognized, false
	}

	return &p, true
}

// Viewer is passed by value into every visibility check. A role or plan
// change produces a new Viewer.
type Viewer struct {
	Role Role
	Plan Plan
}

func NewViewer(role, plan string) Viewer {
	return Viewer{
		Role: ParseRole(role),
		Plan: ViewerPlan(plan),
	}
}

func (v Viewer) Satisfies(p Plan) bool {
	return v.Plan.Index() >= p.Index()
}

// Visible reports whether v may see a resource tagged with required.
func Visible(required *Plan, v Viewer) bool {
	if v.Role.Elevated() {
		return true
	}

	if required == nil {
		return true
	}

	return v.Satisfies(*required)
}
