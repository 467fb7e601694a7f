// Package notify publishes user lifecycle events to external channels.
package notify

import (
	"fmt"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
)

// Action names the user lifecycle change an event reports.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is one change notification. Payload is serialized as the message body.
type Event struct {
	Action     Action
	UserID     string
	Subject    string
	Payload    any
	OccurredAt time.Time
}

// FieldChange is the before and after value of one updated field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// UpdateDetails is the payload of an update event.
type UpdateDetails struct {
	Details map[string]FieldChange `json:"details"`
}

// UserInfo is the payload of create and delete events.
func UserInfo(u *models.User) map[string]any {
	u.NormalizeLists()
	return map[string]any{
		models.FieldUsername:  u.Username,
		models.FieldFirstName: u.FirstName,
		models.FieldLastName:  u.LastName,
		models.FieldEmail:     u.Email,
		models.FieldContact:   u.Contact,
		models.FieldLocation:  u.Location,
		models.FieldInterests: u.Interests,
		models.FieldAge:       u.Age,
		models.FieldGender:    u.Gender,
	}
}

func UserCreated(u *models.User) Event {
	return Event{
		Action:     ActionCreate,
		UserID:     u.ID,
		Subject:    fmt.Sprintf("User %s inserted successfully", u.ID),
		Payload:    UserInfo(u),
		OccurredAt: time.Now().UTC(),
	}
}

// UserUpdated reports the fields set by patch with their old and new values.
func UserUpdated(before *models.User, patch models.UserPatch) Event {
	old := fieldValues(before)
	changes := make(map[string]FieldChange)
	for field, value := range patch.Fields() {
		changes[field] = FieldChange{Old: old[field], New: value}
	}

	return Event{
		Action:     ActionUpdate,
		UserID:     before.ID,
		Subject:    fmt.Sprintf("User data updated for user_id %s", before.ID),
		Payload:    UpdateDetails{Details: changes},
		OccurredAt: time.Now().UTC(),
	}
}

func UserDeleted(u *models.User) Event {
	return Event{
		Action:     ActionDelete,
		UserID:     u.ID,
		Subject:    fmt.Sprintf("User %s has been deleted", u.ID),
		Payload:    UserInfo(u),
		OccurredAt: time.Now().UTC(),
	}
}

func fieldValues(u *models.User) map[string]any {
	u.NormalizeLists()
	var age any
	if u.Age != nil {
		age = *u.Age
	}
	return map[string]any{
		models.FieldUsername:               u.Username,
		models.FieldFirstName:              u.FirstName,
		models.FieldLastName:               u.LastName,
		models.FieldContact:                u.Contact,
		models.FieldLocation:               u.Location,
		models.FieldGender:                 u.Gender,
		models.FieldInterests:              u.Interests,
		models.FieldAge:                    age,
		models.FieldFriends:                u.Friends,
		models.FieldGroupMemberList:        u.GroupMemberList,
		models.FieldGroupOrganizerList:     u.GroupOrganizerList,
		models.FieldEventOrganizerList:     u.EventOrganizerList,
		models.FieldEventParticipationList: u.EventParticipationList,
	}
}
