package badges_test

import (
	"testing"

	"github.com/dalemusser/compoundhub/internal/app/system/badges"
	"github.com/dalemusser/compoundhub/internal/domain/models"
)

func items(statuses ...string) []models.WorkItem {
	out := make([]models.WorkItem, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, models.WorkItem{Status: s})
	}
	return out
}

func fullSnapshot() badges.Snapshot {
	return badges.Snapshot{
		badges.SourceUsers: badges.UsersAsItems([]models.User{
			{ApprovalStatus: "pending"},
			{ApprovalStatus: "pending", IsDeleted: true},
			{ApprovalStatus: "approved"},
		}),
		badges.SourceBookings:        items("pending", "pending", "confirmed"),
		badges.SourceServiceBookings: items("open", "processing", "done"),
		badges.SourceOrders:          items("pending", "processing", "delivered"),
		badges.SourceComplaints:      items("Open", "In Progress", "Closed", "open"),
		badges.SourceSupportTickets:  items("open", "", "closed"),
		badges.SourceFines:           items("issued", "disputed", "paid"),
		badges.SourceGatePasses:      items("pending", "requested", "active", "expired"),
		badges.SourceDeviceResets:    items("pending", "done"),
		badges.SourceUnitRequests:    items("pending", "approved", "rejected"),
		badges.SourceAdminRequests:   items("pending", "pending"),
		badges.SourceStores:          items("active", "active", "closed"),
		badges.SourceNews:            items("published", "draft"),
	}
}

func TestAggregate_DefaultRules(t *testing.T) {
	got := badges.Default().Aggregate(fullSnapshot(), badges.Viewer{SuperAdmin: true})

	want := map[string]int{
		badges.DomainUsers:           1,
		badges.DomainBookings:        2,
		badges.DomainServiceBookings: 2,
		badges.DomainOrders:          2,
		badges.DomainComplaints:      2,
		badges.DomainSupportTickets:  2,
		badges.DomainFines:           2,
		badges.DomainGatePasses:      3,
		badges.DomainDeviceResets:    1,
		badges.DomainUnitRequests:    1,
		badges.DomainAdminRequests:   2,
		badges.DomainActiveStores:    2,
		badges.DomainPublishedNews:   1,
	}
	for domain, n := range want {
		if got.Get(domain) != n {
			t.Errorf("%s: got %d, want %d", domain, got.Get(domain), n)
		}
	}

	// informational counters (stores, news) are not part of the total
	if got.Dashboard != 20 {
		t.Errorf("Dashboard: got %d, want 20", got.Dashboard)
	}
}

func TestAggregate_TotalIsSumOfActionable(t *testing.T) {
	reg := badges.Default()
	got := reg.Aggregate(fullSnapshot(), badges.Viewer{SuperAdmin: true})

	sum := 0
	for _, rule := range reg.Rules() {
		if rule.Actionable {
			sum += got.Get(rule.Domain)
		}
	}
	if sum != got.Dashboard {
		t.Errorf("Dashboard %d != sum of actionable counters %d", got.Dashboard, sum)
	}
}

func TestAggregate_AdminRequestsHiddenFromNonSuperAdmin(t *testing.T) {
	snap := fullSnapshot()
	super := badges.Default().Aggregate(snap, badges.Viewer{SuperAdmin: true})
	admin := badges.Default().Aggregate(snap, badges.Viewer{})

	if _, ok := admin.ByDomain[badges.DomainAdminRequests]; ok {
		t.Error("admin_requests should not be reported to non-superadmins")
	}
	if super.Dashboard-admin.Dashboard != 2 {
		t.Errorf("dashboard difference: got %d, want 2", super.Dashboard-admin.Dashboard)
	}
}

func TestAggregate_MissingSourceDegradesToZero(t *testing.T) {
	snap := fullSnapshot()
	delete(snap, badges.SourceOrders)

	got := badges.Default().Aggregate(snap, badges.Viewer{})
	if got.Get(badges.DomainOrders) != 0 {
		t.Errorf("orders: got %d, want 0", got.Get(badges.DomainOrders))
	}
	if _, ok := got.ByDomain[badges.DomainOrders]; !ok {
		t.Error("orders counter should still be reported")
	}
}

func TestAggregate_RecomputedFromInput(t *testing.T) {
	reg := badges.Default()
	snap := fullSnapshot()
	before := reg.Aggregate(snap, badges.Viewer{})

	snap[badges.SourceBookings] = append(snap[badges.SourceBookings], models.WorkItem{Status: "pending"})
	after := reg.Aggregate(snap, badges.Viewer{})

	if after.Get(badges.DomainBookings) != before.Get(badges.DomainBookings)+1 {
		t.Errorf("bookings: got %d, want %d", after.Get(badges.DomainBookings), before.Get(badges.DomainBookings)+1)
	}
	if after.Dashboard != before.Dashboard+1 {
		t.Errorf("dashboard: got %d, want %d", after.Dashboard, before.Dashboard+1)
	}
}

func TestRegistry_RegisterReplacesDomain(t *testing.T) {
	reg := badges.NewRegistry(
		badges.Rule{Domain: "parcels", Source: "parcels", Match: badges.StatusIn("waiting"), Actionable: true},
	)
	reg.Register(badges.Rule{Domain: "parcels", Source: "parcels", Match: badges.StatusIn("arrived"), Actionable: true})

	if n := len(reg.Rules()); n != 1 {
		t.Fatalf("rules: got %d, want 1", n)
	}
	got := reg.Aggregate(badges.Snapshot{"parcels": items("waiting", "arrived", "arrived")}, badges.Viewer{})
	if got.Get("parcels") != 2 {
		t.Errorf("parcels: got %d, want 2", got.Get("parcels"))
	}
}

func TestRegistry_Sources(t *testing.T) {
	srcs := badges.Default().Sources()
	if len(srcs) != 13 {
		t.Errorf("sources: got %d, want 13 (%v)", len(srcs), srcs)
	}
	if srcs[0] != badges.SourceUsers {
		t.Errorf("first source: got %q, want %q", srcs[0], badges.SourceUsers)
	}
}

func TestRegistry_VisibleSources(t *testing.T) {
	reg := badges.Default()
	staff := reg.VisibleSources(badges.Viewer{})
	super := reg.VisibleSources(badges.Viewer{SuperAdmin: true})

	if len(super) != len(staff)+1 {
		t.Errorf("super admin should see exactly one more source: %d vs %d", len(super), len(staff))
	}
	for _, s := range staff {
		if s == badges.SourceAdminRequests {
			t.Error("admin requests must not be fetched for staff")
		}
	}
}

func TestAggregateLive_ReplacesSourceCount(t *testing.T) {
	snap := badges.Snapshot{
		badges.SourceDeviceResets: items("pending"),
		badges.SourceBookings:     items("pending", "pending"),
	}
	r := badges.Default()
	v := badges.Viewer{}

	base := r.Aggregate(snap, v)
	live := r.AggregateLive(snap, badges.Live{badges.SourceDeviceResets: 4}, v)

	if got := live.Get(badges.DomainDeviceResets); got != 4 {
		t.Errorf("device resets: got %d, want 4", got)
	}
	if got := live.Get(badges.DomainBookings); got != 2 {
		t.Errorf("bookings: got %d, want 2", got)
	}
	if live.Dashboard != base.Dashboard+3 {
		t.Errorf("dashboard: got %d, base %d", live.Dashboard, base.Dashboard)
	}

	if got := r.AggregateLive(snap, nil, v); got.Dashboard != base.Dashboard {
		t.Errorf("nil live should match Aggregate: got %d, want %d", got.Dashboard, base.Dashboard)
	}
}
