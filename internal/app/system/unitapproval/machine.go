// Package unitapproval resolves resident unit requests.
//
// A request moves pending -> approved or pending -> rejected and never
// leaves a terminal state. Resolution runs three steps in order: the request
// update, the requester's membership update, and a localized notification.
// The request update is conditional on the request still being pending, so a
// second resolution fails with ErrAlreadyResolved. A notification failure
// never undoes the first two steps.
package unitapproval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/app/system/telemetry"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the request does not exist in the project.
	ErrNotFound = errors.New("unit request not found")
	// ErrAlreadyResolved is returned for a request that is no longer pending.
	ErrAlreadyResolved = errors.New("unit request has already been resolved")
)

// ValidationError reports missing input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Requests is the unit-request side of the store. MarkApproved and
// MarkRejected only update a pending request and report whether they did.
// GetByID returns mongo.ErrNoDocuments when nothing matches.
type Requests interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.UnitRequest, error)
	MarkApproved(ctx context.Context, id, actor primitive.ObjectID, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, actor primitive.ObjectID, at time.Time, reason string) (bool, error)
}

// Memberships is the user side of the store.
type Memberships interface {
	// ApproveMembership sets approval_status=approved on the membership
	// matching (projectID, unit) and reports whether one matched.
	ApproveMembership(ctx context.Context, userID, projectID primitive.ObjectID, unit string) (bool, error)
	// AddMembership appends m to the user's memberships.
	AddMembership(ctx context.Context, userID primitive.ObjectID, m models.Membership) error
	// RemoveMembership pulls the membership matching (projectID, unit) and
	// reports whether one was removed.
	RemoveMembership(ctx context.Context, userID, projectID primitive.ObjectID, unit string) (bool, error)
}

// Outcome describes what a resolution did.
type Outcome struct {
	Request           models.UnitRequest `json:"request"`
	MembershipUpdated bool               `json:"membership_updated"`
	MembershipCreated bool               `json:"membership_created"`
	MembershipRemoved bool               `json:"membership_removed"`
	Notified          bool               `json:"notified"`
	NotifyError       string             `json:"notify_error,omitempty"`
}

// Message is the combined outcome shown to staff.
func (o Outcome) Message() string {
	verb := "approved"
	if o.Request.Status == models.StatusRejected {
		verb = "rejected"
	}
	msg := fmt.Sprintf("Request for unit %s %s.", o.Request.Unit, verb)
	if o.Notified {
		return msg + " The resident was notified."
	}
	return msg + " The resident could not be notified."
}

// Machine runs the transitions.
type Machine struct {
	requests    Requests
	memberships Memberships
	notifier    notify.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// New wires a Machine.
func New(requests Requests, memberships Memberships, notifier notify.Dispatcher, logger *zap.Logger) *Machine {
	return &Machine{
		requests:    requests,
		memberships: memberships,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the clock; used by tests.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

func (m *Machine) load(ctx context.Context, projectID, id primitive.ObjectID) (models.UnitRequest, error) {
	req, err := m.requests.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return req, ErrNotFound
	}
	if err != nil {
		return req, err
	}
	if req.ProjectID != projectID {
		return req, ErrNotFound
	}
	if req.IsTerminal() {
		return req, ErrAlreadyResolved
	}
	return req, nil
}

// Approve approves a pending request. When the requester has no membership
// matching the request's (project, unit), one is created from the request.
func (m *Machine) Approve(ctx context.Context, projectID, requestID, actor primitive.ObjectID) (Outcome, error) {
	req, err := m.load(ctx, projectID, requestID)
	if err != nil {
		return Outcome{}, err
	}

	at := m.now().UTC()
	ok, err := m.requests.MarkApproved(ctx, requestID, actor, at)
	if err != nil {
		return Outcome{}, fmt.Errorf("approve request: %w", err)
	}
	if !ok {
		return Outcome{}, ErrAlreadyResolved
	}
	req.Status = models.StatusApproved
	req.ApprovedAt = &at
	req.ApprovedBy = &actor
	out := Outcome{Request: req}
	telemetry.ObserveUnitRequest(models.StatusApproved)

	matched, err := m.memberships.ApproveMembership(ctx, req.UserID, req.ProjectID, req.Unit)
	if err != nil {
		return out, fmt.Errorf("approve membership: %w", err)
	}
	if matched {
		out.MembershipUpdated = true
	} else {
		err := m.memberships.AddMembership(ctx, req.UserID, models.Membership{
			ProjectID:      req.ProjectID,
			Unit:           req.Unit,
			Role:           req.Role,
			ApprovalStatus: models.StatusApproved,
		})
		if err != nil {
			return out, fmt.Errorf("create membership: %w", err)
		}
		out.MembershipCreated = true
	}

	m.send(ctx, &out, notify.UnitApproved(req.UserID, req.ProjectID, req.ProjectName, req.Unit))
	return out, nil
}

// Reject rejects a pending request with a reason and removes the matching
// membership from the requester.
func (m *Machine) Reject(ctx context.Context, projectID, requestID, actor primitive.ObjectID, reason string) (Outcome, error) {
	reason = htmlsanitize.PlainText(reason)
	if reason == "" {
		return Outcome{}, &ValidationError{Field: "reason", Msg: "a rejection reason is required"}
	}

	req, err := m.load(ctx, projectID, requestID)
	if err != nil {
		return Outcome{}, err
	}

	at := m.now().UTC()
	ok, err := m.requests.MarkRejected(ctx, requestID, actor, at, reason)
	if err != nil {
		return Outcome{}, fmt.Errorf("reject request: %w", err)
	}
	if !ok {
		return Outcome{}, ErrAlreadyResolved
	}
	req.Status = models.StatusRejected
	req.RejectedAt = &at
	req.RejectedBy = &actor
	req.RejectionReason = reason
	out := Outcome{Request: req}
	telemetry.ObserveUnitRequest(models.StatusRejected)

	removed, err := m.memberships.RemoveMembership(ctx, req.UserID, req.ProjectID, req.Unit)
	if err != nil {
		return out, fmt.Errorf("remove membership: %w", err)
	}
	out.MembershipRemoved = removed

	m.send(ctx, &out, notify.UnitRejected(req.UserID, req.ProjectID, req.ProjectName, req.Unit, reason))
	return out, nil
}

func (m *Machine) send(ctx context.Context, out *Outcome, msg notify.Message) {
	if err := m.notifier.Send(ctx, msg); err != nil {
		out.NotifyError = err.Error()
		m.logger.Warn("unit request notification failed",
			zap.String("request_id", out.Request.ID.Hex()),
			zap.String("user_id", out.Request.UserID.Hex()),
			zap.Error(err))
		return
	}
	out.Notified = true
}
