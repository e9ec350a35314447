package contextclient

import (
	"sort"
)

// Role identifies which upstream context provider a fetch is addressed to.
type Role string

const (
	RoleStory      Role = "story"
	RoleUI         Role = "ui"
	RoleAutomation Role = "automation"
)

// IsValid checks if the role is one of the known provider roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStory, RoleUI, RoleAutomation:
		return true
	default:
		return false
	}
}

// StoryContext is the requirement a scenario is generated for.
// StoryID is required; every other field may be empty.
type StoryContext struct {
	StoryID            string   `json:"storyId"`
	Summary            string   `json:"summary"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	Status             string   `json:"status"`
	Priority           string   `json:"priority,omitempty"`
	Labels             []string `json:"labels"`
	Components         []string `json:"components"`
}

// UIContext carries the ground-truth selectors scraped from the UI source tree.
// Elements maps "attribute:value" keys to rendered CSS selectors.
type UIContext struct {
	Repo          string            `json:"repo"`
	SelectorCount int               `json:"selectorCount"`
	Elements      map[string]string `json:"elements"`
}

// Empty reports whether no selectors are available.
func (u *UIContext) Empty() bool {
	return u == nil || len(u.Elements) == 0
}

// Selectors returns the distinct selector values, sorted for stable output.
func (u *UIContext) Selectors() []string {
	if u == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(u.Elements))
	out := make([]string, 0, len(u.Elements))
	for _, sel := range u.Elements {
		if _, ok := seen[sel]; ok {
			continue
		}
		seen[sel] = struct{}{}
		out = append(out, sel)
	}
	sort.Strings(out)
	return out
}

// Keys returns the element keys in sorted order.
func (u *UIContext) Keys() []string {
	if u == nil {
		return nil
	}
	keys := make([]string, 0, len(u.Elements))
	for k := range u.Elements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AutomationContext describes an existing automation suite whose step phrases
// should be reused rather than duplicated.
type AutomationContext struct {
	Repo          string   `json:"repo"`
	Framework     string   `json:"framework"`
	FeatureFiles  []string `json:"featureFiles"`
	ExistingSteps []string `json:"existingSteps"`
}
