package bulkaction

import (
	"github.com/dalemusser/compoundhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/app/system/occupancy"
	"github.com/dalemusser/compoundhub/internal/domain/models"
)

// MaxDurationDays bounds temporary suspensions.
const MaxDurationDays = 365

// clean normalizes and validates req, returning the cleaned copy.
func clean(req Request) (Request, error) {
	req.Target.Kind = normalize.Token(req.Target.Kind)
	req.Target.BuildingNum = normalize.UnitPart(req.Target.BuildingNum)
	req.Target.UnitNum = normalize.UnitPart(req.Target.UnitNum)
	req.Action = normalize.Token(req.Action)

	if req.ProjectID.IsZero() {
		return req, &ValidationError{Field: "project_id", Msg: "required"}
	}
	if req.Target.BuildingNum == "" {
		return req, &ValidationError{Field: "building_num", Msg: "required"}
	}
	switch req.Target.Kind {
	case KindUnit:
		if req.Target.UnitNum == "" {
			return req, &ValidationError{Field: "unit_num", Msg: "required for a unit target"}
		}
	case KindBuilding:
	default:
		return req, &ValidationError{Field: "kind", Msg: `must be "unit" or "building"`}
	}

	p := &req.Payload
	switch req.Action {
	case ActionNotify:
		p.Title = htmlsanitize.PlainText(p.Title)
		p.Message = htmlsanitize.Body(p.Message)
		if p.Message == "" {
			return req, &ValidationError{Field: "message", Msg: "required"}
		}
		if p.Title == "" {
			p.Title = defaultTitle(req.Target.Kind)
		}
	case ActionSuspend:
		p.Reason = htmlsanitize.PlainText(p.Reason)
		p.SuspensionType = normalize.Token(p.SuspensionType)
		if p.Reason == "" {
			return req, &ValidationError{Field: "reason", Msg: "required"}
		}
		switch p.SuspensionType {
		case models.SuspensionTemporary:
			if p.DurationDays <= 0 || p.DurationDays > MaxDurationDays {
				return req, &ValidationError{Field: "duration_days", Msg: "must be between 1 and 365 for a temporary suspension"}
			}
		case models.SuspensionPermanent:
			p.DurationDays = 0
		default:
			return req, &ValidationError{Field: "suspension_type", Msg: `must be "temporary" or "permanent"`}
		}
		if req.ActorID.IsZero() {
			return req, &ValidationError{Field: "actor", Msg: "a signed-in staff member is required"}
		}
	default:
		return req, &ValidationError{Field: "action", Msg: `must be "notify" or "suspend"`}
	}
	return req, nil
}

func defaultTitle(kind string) string {
	if kind == KindBuilding {
		return "Building Notification"
	}
	return "Unit Notification"
}

// Matcher returns the unit matcher for t.
func (t Target) Matcher() occupancy.UnitMatcher {
	if t.Kind == KindBuilding {
		return occupancy.InBuilding(t.BuildingNum)
	}
	return occupancy.ExactUnit(models.UnitIdentifier(t.BuildingNum, t.UnitNum))
}
