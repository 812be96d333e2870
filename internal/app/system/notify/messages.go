package notify

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnitApproved builds the message sent when a unit request is approved.
func UnitApproved(userID, projectID primitive.ObjectID, projectName, unit string) Message {
	return Message{
		UserID:         userID,
		ProjectID:      projectID,
		Title:          "Unit Request Approved",
		Body:           fmt.Sprintf("Your request for unit %s in %s has been approved.", unit, projectName),
		TitleLocalized: "تمت الموافقة على طلب الوحدة",
		BodyLocalized:  fmt.Sprintf("تمت الموافقة على طلبك للوحدة %s في %s.", unit, projectName),
		Severity:       SeveritySuccess,
		Category:       CategoryUnitRequest,
	}
}

// UnitRejected builds the message sent when a unit request is rejected.
// reason is expected to be sanitized already.
func UnitRejected(userID, projectID primitive.ObjectID, projectName, unit, reason string) Message {
	return Message{
		UserID:         userID,
		ProjectID:      projectID,
		Title:          "Unit Request Rejected",
		Body:           fmt.Sprintf("Your request for unit %s in %s was rejected. Reason: %s", unit, projectName, reason),
		TitleLocalized: "تم رفض طلب الوحدة",
		BodyLocalized:  fmt.Sprintf("تم رفض طلبك للوحدة %s في %s. السبب: %s", unit, projectName, reason),
		Severity:       SeverityWarning,
		Category:       CategoryUnitRequest,
	}
}

// Bulk builds a staff broadcast to one occupant.
func Bulk(userID, projectID primitive.ObjectID, title, body string) Message {
	return Message{
		UserID:    userID,
		ProjectID: projectID,
		Title:     title,
		Body:      body,
		Severity:  SeverityInfo,
		Category:  CategoryBulk,
	}
}
