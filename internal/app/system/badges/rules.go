// Package badges computes "needs attention" counters for the staff console.
//
// Each functional domain is one Rule in a Registry: a source collection, a
// predicate over the fetched items, and flags describing whether the counter
// is actionable work (summed into the dashboard total) and who may see it.
// Counters are always derived from the snapshot passed in; nothing is cached.
package badges

import (
	"strings"

	"github.com/dalemusser/compoundhub/internal/domain/models"
)

// Source collections read by the default rules.
const (
	SourceUsers           = "users"
	SourceBookings        = "bookings"
	SourceServiceBookings = "service_bookings"
	SourceOrders          = "orders"
	SourceComplaints      = "complaints"
	SourceSupportTickets  = "support_tickets"
	SourceFines           = "fines"
	SourceGatePasses      = "gate_passes"
	SourceDeviceResets    = "device_reset_requests"
	SourceUnitRequests    = "unit_requests"
	SourceAdminRequests   = "admin_requests"
	SourceStores          = "stores"
	SourceNews            = "news"
)

// Domain names reported to clients.
const (
	DomainUsers           = "users"
	DomainBookings        = "bookings"
	DomainServiceBookings = "service_bookings"
	DomainOrders          = "orders"
	DomainComplaints      = "complaints"
	DomainSupportTickets  = "support_tickets"
	DomainFines           = "fines"
	DomainGatePasses      = "gate_passes"
	DomainDeviceResets    = "device_resets"
	DomainUnitRequests    = "unit_requests"
	DomainAdminRequests   = "admin_requests"
	DomainActiveStores    = "active_stores"
	DomainPublishedNews   = "published_news"
)

// Predicate decides whether one item counts.
type Predicate func(models.WorkItem) bool

// Rule binds a domain to its source and predicate.
type Rule struct {
	Domain         string
	Source         string
	Match          Predicate
	Actionable     bool // summed into the dashboard total
	SuperAdminOnly bool // hidden from other roles
}

// StatusIn matches items whose status equals one of statuses. The comparison
// is case-sensitive; complaint statuses such as "In Progress" are stored as
// written by the mobile apps.
func StatusIn(statuses ...string) Predicate {
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return func(it models.WorkItem) bool {
		_, ok := set[it.Status]
		return ok
	}
}

// StatusInOrMissing is StatusIn that also matches items with no status.
func StatusInOrMissing(statuses ...string) Predicate {
	in := StatusIn(statuses...)
	return func(it models.WorkItem) bool {
		return strings.TrimSpace(it.Status) == "" || in(it)
	}
}

// NotDeleted narrows p to items that are not soft-deleted.
func NotDeleted(p Predicate) Predicate {
	return func(it models.WorkItem) bool {
		return !it.IsDeleted && p(it)
	}
}

// Registry is an ordered set of rules. Adding a domain is adding a rule.
type Registry struct {
	rules []Rule
}

// NewRegistry returns a registry holding rules in order.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Register appends a rule, replacing any existing rule for the same domain.
func (r *Registry) Register(rule Rule) {
	for i := range r.rules {
		if r.rules[i].Domain == rule.Domain {
			r.rules[i] = rule
			return
		}
	}
	r.rules = append(r.rules, rule)
}

// Rules returns a copy of the registered rules.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Sources lists the distinct source collections the rules read, in order.
func (r *Registry) Sources() []string {
	seen := make(map[string]bool, len(r.rules))
	var out []string
	for _, rule := range r.rules {
		if !seen[rule.Source] {
			seen[rule.Source] = true
			out = append(out, rule.Source)
		}
	}
	return out
}

// VisibleSources lists the sources read by the rules v may see.
func (r *Registry) VisibleSources(v Viewer) []string {
	seen := make(map[string]bool, len(r.rules))
	var out []string
	for _, rule := range r.rules {
		if rule.SuperAdminOnly && !v.SuperAdmin {
			continue
		}
		if !seen[rule.Source] {
			seen[rule.Source] = true
			out = append(out, rule.Source)
		}
	}
	return out
}

// Default returns the console's standard counters.
func Default() *Registry {
	return NewRegistry(
		Rule{Domain: DomainUsers, Source: SourceUsers, Match: NotDeleted(StatusIn(models.StatusPending)), Actionable: true},
		Rule{Domain: DomainBookings, Source: SourceBookings, Match: StatusIn("pending"), Actionable: true},
		Rule{Domain: DomainServiceBookings, Source: SourceServiceBookings, Match: StatusIn("open", "processing"), Actionable: true},
		Rule{Domain: DomainOrders, Source: SourceOrders, Match: StatusIn("pending", "processing"), Actionable: true},
		Rule{Domain: DomainComplaints, Source: SourceComplaints, Match: StatusIn("Open", "In Progress"), Actionable: true},
		Rule{Domain: DomainSupportTickets, Source: SourceSupportTickets, Match: StatusInOrMissing("open"), Actionable: true},
		Rule{Domain: DomainFines, Source: SourceFines, Match: StatusIn("issued", "disputed"), Actionable: true},
		Rule{Domain: DomainGatePasses, Source: SourceGatePasses, Match: StatusIn("pending", "requested", "active"), Actionable: true},
		Rule{Domain: DomainDeviceResets, Source: SourceDeviceResets, Match: StatusIn(models.StatusPending), Actionable: true},
		Rule{Domain: DomainUnitRequests, Source: SourceUnitRequests, Match: StatusIn(models.StatusPending), Actionable: true},
		Rule{Domain: DomainAdminRequests, Source: SourceAdminRequests, Match: StatusIn(models.StatusPending), Actionable: true, SuperAdminOnly: true},
		Rule{Domain: DomainActiveStores, Source: SourceStores, Match: StatusIn("active")},
		Rule{Domain: DomainPublishedNews, Source: SourceNews, Match: StatusIn("published")},
	)
}
