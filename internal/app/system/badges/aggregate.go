package badges

import "github.com/dalemusser/compoundhub/internal/domain/models"

// Snapshot is the set of collections already held in memory, keyed by source.
// A source that failed to load is simply absent (or empty) and its counters
// degrade to zero.
type Snapshot map[string][]models.WorkItem

// Viewer describes who is looking at the badges.
type Viewer struct {
	SuperAdmin bool
}

// Counts is the result of one aggregation.
type Counts struct {
	ByDomain  map[string]int `json:"by_domain"`
	Dashboard int            `json:"dashboard"`
}

// Get returns the counter for domain (zero when hidden or unknown).
func (c Counts) Get(domain string) int { return c.ByDomain[domain] }

// Live holds counts that a subscription already maintains, keyed by source.
// A live count stands for the rule's match on that source, so it only suits
// sources read by a single rule.
type Live map[string]int

// Aggregate evaluates every visible rule against snap. The dashboard total
// is the sum of the visible actionable counters.
func (r *Registry) Aggregate(snap Snapshot, v Viewer) Counts {
	return r.AggregateLive(snap, nil, v)
}

// AggregateLive is Aggregate with live counts taking the place of snapshot
// items for their sources.
func (r *Registry) AggregateLive(snap Snapshot, live Live, v Viewer) Counts {
	out := Counts{ByDomain: make(map[string]int, len(r.rules))}
	for _, rule := range r.rules {
		if rule.SuperAdminOnly && !v.SuperAdmin {
			continue
		}
		n, ok := live[rule.Source]
		if !ok {
			n = Count(snap[rule.Source], rule.Match)
		}
		out.ByDomain[rule.Domain] = n
		if rule.Actionable {
			out.Dashboard += n
		}
	}
	return out
}

// Count returns how many items satisfy p.
func Count(items []models.WorkItem, p Predicate) int {
	n := 0
	for _, it := range items {
		if p(it) {
			n++
		}
	}
	return n
}

// UsersAsItems projects users onto work items so the users counter can share
// the generic predicates: Status carries the approval status.
func UsersAsItems(users []models.User) []models.WorkItem {
	out := make([]models.WorkItem, 0, len(users))
	for _, u := range users {
		out = append(out, models.WorkItem{
			ID:        u.ID,
			Status:    u.ApprovalStatus,
			IsDeleted: u.IsDeleted,
		})
	}
	return out
}
