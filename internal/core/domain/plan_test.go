package domain

import "testing"

func TestPlanIndex_Ordering(t *testing.T) {
	if !(PlanIndex(PlanFree) < PlanIndex(PlanBasic) &&
		PlanIndex(PlanBasic) < PlanIndex(PlanPro) &&
		PlanIndex(PlanPro) < PlanIndex(PlanEnterprise)) {
		t.Error("plan order must be free < basic < pro < enterprise")
	}
	if PlanIndex("platinum") != -1 {
		t.Error("unknown plan must have index -1")
	}
}

func TestLookupPlan(t *testing.T) {
	p, ok := LookupPlan(PlanPro)
	if !ok || p.Name != "Pro" || p.APILimit != 100000 {
		t.Errorf("unexpected pro entry: %+v", p)
	}
	if _, ok := LookupPlan("platinum"); ok {
		t.Error("unknown plan must not resolve")
	}

	e, _ := LookupPlan(PlanEnterprise)
	if e.APILimit != Unlimited || e.ModelsLimit != Unlimited || e.ProjectsLimit != Unlimited {
		t.Errorf("enterprise limits must all be unlimited: %+v", e)
	}
}

func TestFormatLimit(t *testing.T) {
	if got := FormatLimit(1000); got != "1000" {
		t.Errorf("FormatLimit(1000) = %q", got)
	}
	if got := FormatLimit(Unlimited); got != "Unlimited" {
		t.Errorf("FormatLimit(Unlimited) = %q", got)
	}
}

func TestPermissionsForPlan(t *testing.T) {
	free := PermissionsForPlan(PlanFree)
	if free.APIAccess || free.SSO {
		t.Errorf("free plan grants nothing: %+v", free)
	}

	basic := PermissionsForPlan(PlanBasic)
	if !basic.APIAccess || !basic.TeamMembers || basic.CustomModels {
		t.Errorf("basic grants api+team only: %+v", basic)
	}

	pro := PermissionsForPlan(PlanPro)
	if !pro.CustomModels || !pro.WhiteLabel || !pro.PrioritySupport || pro.SSO {
		t.Errorf("pro grants everything but SSO: %+v", pro)
	}

	ent := PermissionsForPlan(PlanEnterprise)
	if !ent.SSO || !ent.APIAccess {
		t.Errorf("enterprise grants all: %+v", ent)
	}

	unknown := PermissionsForPlan("platinum")
	if unknown.APIAccess {
		t.Errorf("unknown plan grants nothing: %+v", unknown)
	}
}

func TestPermissions_Allows(t *testing.T) {
	p := PermissionsForPlan(PlanEnterprise)
	for _, f := range []string{
		FeatureAPIAccess, FeatureTeamMembers, FeatureCustomModels,
		FeatureWhiteLabel, FeaturePrioritySupport, FeatureSSO,
	} {
		if !p.Allows(f) {
			t.Errorf("enterprise must allow %q", f)
		}
	}
	if p.Allows("made-up") {
		t.Error("unknown feature names are denied")
	}
}
