// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/compoundhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config.Admin.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for staff actions (approvals, bulk actions, user removal).
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ProjectID != nil {
		fields = append(fields, zap.String("project_id", event.ProjectID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := DestAll
	if event.Category == audit.CategoryAdmin && l.config.Admin != "" {
		setting = l.config.Admin
	}
	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}

	if setting == DestAll || setting == DestDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) admin(r *http.Request, eventType string, projectID, actorID primitive.ObjectID, userID *primitive.ObjectID, details map[string]string) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ProjectID: &projectID,
		ActorID:   &actorID,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	}
}

// UnitRequestApproved logs an approval.
func (l *Logger) UnitRequestApproved(ctx context.Context, r *http.Request, projectID, actorID, userID, requestID primitive.ObjectID, unit string, notified bool) {
	l.Log(ctx, l.admin(r, audit.EventUnitRequestApproved, projectID, actorID, &userID, map[string]string{
		"request_id": requestID.Hex(),
		"unit":       unit,
		"notified":   strconv.FormatBool(notified),
	}))
}

// UnitRequestRejected logs a rejection with its reason.
func (l *Logger) UnitRequestRejected(ctx context.Context, r *http.Request, projectID, actorID, userID, requestID primitive.ObjectID, unit, reason string, notified bool) {
	l.Log(ctx, l.admin(r, audit.EventUnitRequestRejected, projectID, actorID, &userID, map[string]string{
		"request_id": requestID.Hex(),
		"unit":       unit,
		"reason":     reason,
		"notified":   strconv.FormatBool(notified),
	}))
}

// BulkAction logs one bulk notify/suspend batch. The event is marked failed
// when any occupant failed.
func (l *Logger) BulkAction(ctx context.Context, r *http.Request, projectID, actorID primitive.ObjectID, eventType, batchID, target string, succeeded, failed int) {
	e := l.admin(r, eventType, projectID, actorID, nil, map[string]string{
		"batch_id":  batchID,
		"target":    target,
		"succeeded": strconv.Itoa(succeeded),
		"failed":    strconv.Itoa(failed),
	})
	if failed > 0 {
		e.Success = false
		e.FailureReason = strconv.Itoa(failed) + " occupant(s) failed"
	}
	l.Log(ctx, e)
}

// UserDeleted logs a soft delete.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, projectID, actorID, userID primitive.ObjectID) {
	l.Log(ctx, l.admin(r, audit.EventUserDeleted, projectID, actorID, &userID, nil))
}

// UserRemoved logs a removal from the project.
func (l *Logger) UserRemoved(ctx context.Context, r *http.Request, projectID, actorID, userID primitive.ObjectID) {
	l.Log(ctx, l.admin(r, audit.EventUserRemoved, projectID, actorID, &userID, nil))
}
