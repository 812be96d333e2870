// Package bulkaction applies one staff action to every occupant of a unit or
// a building.
//
// Each occupant is handled independently: a failure is counted and the rest
// carry on. The result is final only after every occupant has settled, and
// SuccessCount+FailureCount always equals the number of resolved occupants.
package bulkaction

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Target kinds.
const (
	KindUnit     = "unit"
	KindBuilding = "building"
)

// Actions.
const (
	ActionNotify  = "notify"
	ActionSuspend = "suspend"
)

// Target names a unit ("{building}-{unit}") or a whole building.
type Target struct {
	Kind        string `json:"kind"`
	BuildingNum string `json:"building_num"`
	UnitNum     string `json:"unit_num,omitempty"`
}

// Payload carries the action inputs. Title and Message apply to notify;
// Reason, SuspensionType and DurationDays to suspend.
type Payload struct {
	Title          string `json:"title,omitempty"`
	Message        string `json:"message,omitempty"`
	Reason         string `json:"reason,omitempty"`
	SuspensionType string `json:"suspension_type,omitempty"`
	DurationDays   int    `json:"duration_days,omitempty"`
}

// Request is one bulk action issued by a staff member in a project.
type Request struct {
	ProjectID primitive.ObjectID
	ActorID   primitive.ObjectID
	Target    Target
	Action    string
	Payload   Payload
}

// Failure records one occupant that could not be processed.
type Failure struct {
	UserID primitive.ObjectID `json:"user_id"`
	Error  string             `json:"error"`
}

// Result is the aggregate outcome. NoOp is set when the target resolved to
// no occupants; that is "nothing to do", not an error.
type Result struct {
	BatchID      string    `json:"batch_id"`
	Action       string    `json:"action"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	NoOp         bool      `json:"no_op"`
	Failures     []Failure `json:"failures,omitempty"`
}

// Summary is the one-line outcome shown to staff.
func (r Result) Summary() string {
	if r.NoOp {
		return "No occupants found for this target."
	}
	return fmt.Sprintf("%d succeeded, %d failed", r.SuccessCount, r.FailureCount)
}

// ValidationError reports the missing or invalid input that stopped an
// action before it started.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}
