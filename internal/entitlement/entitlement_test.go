// AngelaMos | 2026
// entitlement_test.go

package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planPtr(p Plan) *Plan {
	return &p
}

func allRequirements() []*Plan {
	reqs := []*Plan{nil, planPtr(PlanUnrecognized)}
	for _, p := range Plans() {
		reqs = append(reqs, planPtr(p))
	}
	return reqs
}

func TestVisible_AdminBypass(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleSuperAdmin} {
		for _, req := range allRequirements() {
			v := Viewer{Role: role, Plan: PlanBasic}
			assert.True(t, Visible(req, v), "role %s must see everything", role)
		}
	}
}

func TestVisible_Monotonic(t *testing.T) {
	plans := Plans()
	for _, req := range allRequirements() {
		for i, low := range plans {
			for _, high := range plans[i:] {
				v1 := Viewer{Role: RoleViewer, Plan: low}
				v2 := Viewer{Role: RoleViewer, Plan: high}
				if Visible(req, v1) {
					assert.True(t, Visible(req, v2),
						"visible to %s but not to %s", low, high)
				}
			}
		}
	}
}

func TestVisible_NoRequirement(t *testing.T) {
	assert.True(t, Visible(nil, Viewer{Role: RoleViewer, Plan: PlanBasic}))
}

func TestVisible_PlanComparison(t *testing.T) {
	tests := []struct {
		name     string
		required Plan
		viewer   Plan
		want     bool
	}{
		{"basic sees basic", PlanBasic, PlanBasic, true},
		{"basic misses pro", PlanPro, PlanBasic, false},
		{"pro sees pro", PlanPro, PlanPro, true},
		{"business sees pro", PlanPro, PlanBusiness, true},
		{"business misses enterprise", PlanEnterprise, PlanBusiness, false},
		{"enterprise sees enterprise", PlanEnterprise, PlanEnterprise, true},
		{"enterprise misses unrecognized", PlanUnrecognized, PlanEnterprise, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Viewer{Role: RoleViewer, Plan: tt.viewer}
			assert.Equal(t, tt.want, Visible(planPtr(tt.required), v))
		})
	}
}

func TestParsePlan(t *testing.T) {
	p, ok := ParsePlan(" Business ")
	assert.True(t, ok)
	assert.Equal(t, PlanBusiness, p)

	p, ok = ParsePlan("platinum")
	assert.False(t, ok)
	assert.Equal(t, PlanBasic, p)
}

func TestViewerPlan_FailsClosed(t *testing.T) {
	assert.Equal(t, PlanBasic, ViewerPlan("unlimited"))
	assert.Equal(t, PlanEnterprise, ViewerPlan("ENTERPRISE"))
}

func TestRequiredPlan(t *testing.T) {
	req, ok := RequiredPlan("")
	assert.True(t, ok)
	assert.Nil(t, req)

	req, ok = RequiredPlan("pro")
	assert.True(t, ok)
	require.NotNil(t, req)
	assert.Equal(t, PlanPro, *req)

	req, ok = RequiredPlan("gold")
	assert.False(t, ok)
	require.NotNil(t, req)
	assert.Equal(t, PlanUnrecognized, *req)
	assert.False(t, Visible(req, Viewer{Role: RoleViewer, Plan: PlanEnterprise}))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleSuperAdmin, ParseRole("super_admin"))
	assert.Equal(t, RoleViewer, ParseRole("root"))
	assert.Equal(t, "super_admin", RoleSuperAdmin.String())
	assert.True(t, ValidRole("viewer"))
	assert.False(t, ValidRole("owner"))
}

func TestNewViewer(t *testing.T) {
	v := NewViewer("admin", "bogus")
	assert.Equal(t, Viewer{Role: RoleAdmin, Plan: PlanBasic}, v)
}
