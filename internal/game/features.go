package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type FeatureSpec struct {
	Name         string   `json:"name"`
	Complexity   string   `json:"complexity"`
	Category     string   `json:"category"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type catalogFeature struct {
	Name         string
	Category     string
	Complexity   string
	Dependencies []string
}

const (
	FeatureCore           = "core"
	FeatureGrowth         = "growth"
	FeatureInfrastructure = "infrastructure"
	FeatureMonetization   = "monetization"
)

var featureCatalog = []catalogFeature{
	{Name: "User Accounts", Category: FeatureCore, Complexity: "simple"},
	{Name: "Search", Category: FeatureCore, Complexity: "medium", Dependencies: []string{"User Accounts"}},
	{Name: "Notifications", Category: FeatureCore, Complexity: "simple", Dependencies: []string{"User Accounts"}},
	{Name: "Team Workspaces", Category: FeatureCore, Complexity: "medium", Dependencies: []string{"User Accounts"}},
	{Name: "Onboarding Flow", Category: FeatureGrowth, Complexity: "simple"},
	{Name: "Referral Program", Category: FeatureGrowth, Complexity: "simple", Dependencies: []string{"User Accounts"}},
	{Name: "Social Sharing", Category: FeatureGrowth, Complexity: "simple", Dependencies: []string{"Referral Program"}},
	{Name: "Caching Layer", Category: FeatureInfrastructure, Complexity: "medium"},
	{Name: "Audit Logs", Category: FeatureInfrastructure, Complexity: "medium", Dependencies: []string{"User Accounts"}},
	{Name: "Multi-Region Deploy", Category: FeatureInfrastructure, Complexity: "complex", Dependencies: []string{"Caching Layer"}},
	{Name: "Payments", Category: FeatureMonetization, Complexity: "medium", Dependencies: []string{"User Accounts"}},
	{Name: "Usage Billing", Category: FeatureMonetization, Complexity: "medium", Dependencies: []string{"Payments"}},
	{Name: "Enterprise Plans", Category: FeatureMonetization, Complexity: "complex", Dependencies: []string{"Usage Billing", "Team Workspaces"}},
}

// randReader feeds engine randomness to uuid so ids replay with the seed.
type randReader struct{ r Rand }

func (rr randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.Intn(256))
	}
	return len(p), nil
}

func newID(r Rand) string {
	id, err := uuid.NewRandomFromReader(randReader{r})
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// nextCatalogFeature picks among catalog entries that are not yet taken and
// whose dependencies are all completed. ok is false when nothing qualifies.
func (e *Engine) nextCatalogFeature(category string) (catalogFeature, bool) {
	taken := make(map[string]bool)
	done := make(map[string]bool)
	for _, f := range e.company.Product.Features {
		taken[f.Name] = true
		if f.Completed {
			done[f.Name] = true
		}
	}
	var eligible []catalogFeature
	for _, cf := range featureCatalog {
		if taken[cf.Name] || (category != "" && cf.Category != category) {
			continue
		}
		ready := true
		for _, dep := range cf.Dependencies {
			if !done[dep] {
				ready = false
				break
			}
		}
		if ready {
			eligible = append(eligible, cf)
		}
	}
	if len(eligible) == 0 {
		return catalogFeature{}, false
	}
	return pick(e.rand, eligible), true
}

func (e *Engine) fallbackFeatureName(category string) string {
	if category == "" {
		category = FeatureCore
	}
	n := 1
	for _, f := range e.company.Product.Features {
		if f.Category == category {
			n++
		}
	}
	return fmt.Sprintf("%s%s Improvement %d", strings.ToUpper(category[:1]), category[1:], n)
}

func catalogEntry(name string) (catalogFeature, bool) {
	for _, cf := range featureCatalog {
		if strings.EqualFold(cf.Name, name) {
			return cf, true
		}
	}
	return catalogFeature{}, false
}

// mergeDependencies keeps the catalog order and appends extra names once.
func mergeDependencies(catalog, extra []string) []string {
	out := append([]string(nil), catalog...)
	for _, d := range extra {
		d = strings.TrimSpace(d)
		if d != "" && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// DevelopFeature starts building a feature and pays for it up front. An empty
// name picks the next feature from the catalog.
func (e *Engine) DevelopFeature(spec FeatureSpec) (Result, error) {
	if err := e.commandable(); err != nil {
		return rejected(err)
	}
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Category = strings.ToLower(strings.TrimSpace(spec.Category))
	spec.Complexity = strings.ToLower(strings.TrimSpace(spec.Complexity))
	if spec.Complexity != "" {
		if _, ok := e.balance.Complexities[spec.Complexity]; !ok {
			return rejected(fmt.Errorf("%w: %s", ErrUnknownComplexity, spec.Complexity))
		}
	}

	var chosen *catalogFeature
	if spec.Name == "" {
		if cf, ok := e.nextCatalogFeature(spec.Category); ok {
			chosen = &cf
		}
	} else if cf, ok := catalogEntry(spec.Name); ok {
		chosen = &cf
	}
	complexity := spec.Complexity
	if complexity == "" {
		complexity = "medium"
		if chosen != nil {
			complexity = chosen.Complexity
		}
	}
	cx := e.balance.Complexities[complexity]
	c := e.company
	if cx.Cost > c.Cash {
		return rejected(fmt.Errorf("%w: %s costs %s", ErrInsufficientFunds, complexity, money(cx.Cost)))
	}

	f := Feature{
		ID:           newID(e.rand),
		Name:         spec.Name,
		Complexity:   complexity,
		Category:     spec.Category,
		Cost:         cx.Cost,
		TimeRequired: max(cx.TimeRequired, 1),
		Impact:       cx.Impact,
		Dependencies: spec.Dependencies,
	}
	switch {
	case chosen != nil:
		f.Name = chosen.Name
		f.Category = chosen.Category
		f.Dependencies = mergeDependencies(chosen.Dependencies, spec.Dependencies)
	case f.Name == "":
		f.Name = e.fallbackFeatureName(spec.Category)
	}
	if f.Category == "" {
		f.Category = FeatureCore
	}
	f.Dependencies = append([]string(nil), f.Dependencies...)

	c.Cash -= cx.Cost
	c.Product.Features = append(c.Product.Features, f)
	e.notify(fmt.Sprintf("Started developing %s", f.Name), NotifyInfo)

	res := applied()
	res.Amount = cx.Cost
	res.Feature = &f
	return res, nil
}

// updateProduct advances every feature in development. A feature whose
// dependencies are not all complete stalls just short of done.
func (e *Engine) updateProduct() {
	c := e.company
	power := 0.0
	developers := 0
	for _, emp := range c.Team.Employees {
		if emp.Role == "developer" {
			power += emp.Performance
			developers++
		}
	}
	power *= c.Team.Morale

	done := make(map[string]bool)
	for _, f := range c.Product.Features {
		if f.Completed {
			done[f.Name] = true
		}
	}

	for i := range c.Product.Features {
		f := &c.Product.Features[i]
		if f.Completed {
			continue
		}
		if developers > 0 {
			f.Progress += power / float64(f.TimeRequired) / float64(developers)
		}
		blocked := false
		for _, dep := range f.Dependencies {
			if !done[dep] {
				blocked = true
				break
			}
		}
		if blocked {
			f.Progress = min(f.Progress, 0.99)
			continue
		}
		if f.Progress >= 1 {
			f.Progress = 1
			f.Completed = true
			f.CompletedAt = e.state.CurrentTurn
			done[f.Name] = true
			c.Product.Quality = clamp01(c.Product.Quality + f.Impact)
			e.turnFeatures = append(e.turnFeatures, *f)
			e.notify("Feature completed: "+f.Name, NotifySuccess)
		}
		f.Progress = clamp01(f.Progress)
	}

	c.Product.Quality = clamp01(c.Product.Quality * (1 - e.balance.QualityDecay))
	if n := len(c.Product.Features); n > 0 {
		completed := 0
		for _, f := range c.Product.Features {
			if f.Completed {
				completed++
			}
		}
		c.Product.Development = float64(completed) / float64(n)
	} else {
		c.Product.Development = 0
	}
}
