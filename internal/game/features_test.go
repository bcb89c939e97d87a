package game

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestAutoSelectOnlyPicksReadyFeatures(t *testing.T) {
	e, _ := newTestEngine(t, 6, noRandomEvents)
	e.rand = &fixedRand{floats: []float64{0.5}}

	want := []string{"User Accounts", "Onboarding Flow", "Caching Layer"}
	for _, name := range want {
		res, err := e.DevelopFeature(FeatureSpec{})
		if err != nil {
			t.Fatalf("develop: %v", err)
		}
		if res.Feature.Name != name {
			t.Fatalf("got %q want %q", res.Feature.Name, name)
		}
		if len(res.Feature.Dependencies) != 0 {
			t.Fatalf("%s picked with unmet dependencies %v", name, res.Feature.Dependencies)
		}
	}
	res, err := e.DevelopFeature(FeatureSpec{})
	if err != nil {
		t.Fatalf("develop: %v", err)
	}
	if !strings.HasPrefix(res.Feature.Name, "Core Improvement") {
		t.Fatalf("fallback name %q", res.Feature.Name)
	}
}

func TestDevelopFeatureChargesUpFront(t *testing.T) {
	e, _ := newTestEngine(t, 6, noRandomEvents)
	cash := e.Company().Cash
	res, err := e.DevelopFeature(FeatureSpec{Name: "Dark Mode", Complexity: "Simple"})
	if err != nil {
		t.Fatalf("develop: %v", err)
	}
	if res.Amount != 10_000 || e.Company().Cash != cash-10_000 {
		t.Fatalf("amount %v cash %v", res.Amount, e.Company().Cash)
	}
	if res.Feature.Category != FeatureCore || res.Feature.TimeRequired != 1 {
		t.Fatalf("feature %+v", res.Feature)
	}
	if _, err := e.DevelopFeature(FeatureSpec{Complexity: "epic"}); !errors.Is(err, ErrUnknownComplexity) {
		t.Fatalf("got %v", err)
	}
}

func TestDependencyGating(t *testing.T) {
	e, _ := newTestEngine(t, 6, noRandomEvents)
	if _, err := e.DevelopFeature(FeatureSpec{Name: "Search", Complexity: "simple", Dependencies: []string{"User Accounts"}}); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		e.updateProduct()
	}
	search := e.company.Product.Features[0]
	if search.Completed || search.Progress > 0.99 {
		t.Fatalf("blocked feature progressed: %+v", search)
	}

	if _, err := e.DevelopFeature(FeatureSpec{Name: "User Accounts", Complexity: "simple"}); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		e.updateProduct()
		f := e.company.Product.Features
		if f[1].Completed {
			break
		}
		if f[0].Completed {
			t.Fatalf("dependent finished before its dependency")
		}
	}
	for range 10 {
		e.updateProduct()
	}
	for _, f := range e.company.Product.Features {
		if !f.Completed || f.Progress != 1 {
			t.Fatalf("feature not finished: %+v", f)
		}
	}
	if e.company.Product.Development != 1 {
		t.Fatalf("development %v", e.company.Product.Development)
	}
}

func TestNamedCatalogFeatureKeepsDependencies(t *testing.T) {
	e, _ := newTestEngine(t, 6, noRandomEvents)
	res, err := e.DevelopFeature(FeatureSpec{Name: "enterprise plans", Complexity: "simple", Dependencies: []string{"Audit Logs", "Payments"}})
	if err != nil {
		t.Fatal(err)
	}
	f := res.Feature
	want := []string{"Usage Billing", "Team Workspaces", "Audit Logs", "Payments"}
	if f.Name != "Enterprise Plans" || f.Category != FeatureMonetization || !slices.Equal(f.Dependencies, want) {
		t.Fatalf("feature %+v", f)
	}
	for range 10 {
		e.updateProduct()
	}
	if got := e.company.Product.Features[0]; got.Completed {
		t.Fatalf("completed without its dependencies: %+v", got)
	}
}

func TestFeatureCompletionRaisesQuality(t *testing.T) {
	e, _ := newTestEngine(t, 6, noRandomEvents)
	e.company.Team.Employees = append(e.company.Team.Employees, Employee{ID: "dev-2", Role: "developer", Performance: 1})
	e.company.Team.Employees[1].Performance = 1
	if _, err := e.DevelopFeature(FeatureSpec{Name: "Export", Complexity: "simple"}); err != nil {
		t.Fatal(err)
	}
	q := e.company.Product.Quality
	e.updateProduct()
	f := e.company.Product.Features[0]
	if !f.Completed {
		t.Fatalf("feature not completed: %+v", f)
	}
	want := clamp01(q+0.1) * (1 - e.balance.QualityDecay)
	if diff := e.company.Product.Quality - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("quality %v want %v", e.company.Product.Quality, want)
	}
	if len(e.turnFeatures) != 1 {
		t.Fatalf("completed features not recorded")
	}
}
