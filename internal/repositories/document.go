package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
)

// DefaultTimeout bounds a single repository call when none is configured.
const DefaultTimeout = 5 * time.Second

// userDocument is the JSON body stored in users.doc.
type userDocument struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`

	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Contact   string   `json:"contact"`
	Location  string   `json:"location"`
	Gender    string   `json:"gender"`
	Interests []string `json:"interests"`
	Age       *int     `json:"age"`

	Friends                []string `json:"friends"`
	GroupMemberList        []string `json:"group_member_list"`
	GroupOrganizerList     []string `json:"group_organizer_list"`
	EventOrganizerList     []string `json:"event_organizer_list"`
	EventParticipationList []string `json:"event_participation_list"`
}

func newUserDocument(u *models.User) userDocument {
	u.NormalizeLists()
	return userDocument{
		Username:               u.Username,
		Email:                  u.Email,
		PasswordHash:           u.PasswordHash,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Contact:                u.Contact,
		Location:               u.Location,
		Gender:                 u.Gender,
		Interests:              u.Interests,
		Age:                    u.Age,
		Friends:                u.Friends,
		GroupMemberList:        u.GroupMemberList,
		GroupOrganizerList:     u.GroupOrganizerList,
		EventOrganizerList:     u.EventOrganizerList,
		EventParticipationList: u.EventParticipationList,
	}
}

func (d userDocument) toUser(id string, createdAt, updatedAt time.Time) *models.User {
	u := &models.User{
		ID:                     id,
		Username:               d.Username,
		Email:                  d.Email,
		PasswordHash:           d.PasswordHash,
		FirstName:              d.FirstName,
		LastName:               d.LastName,
		Contact:                d.Contact,
		Location:               d.Location,
		Gender:                 d.Gender,
		Interests:              d.Interests,
		Age:                    d.Age,
		Friends:                d.Friends,
		GroupMemberList:        d.GroupMemberList,
		GroupOrganizerList:     d.GroupOrganizerList,
		EventOrganizerList:     d.EventOrganizerList,
		EventParticipationList: d.EventParticipationList,
		CreatedAt:              createdAt,
		UpdatedAt:              updatedAt,
	}
	u.NormalizeLists()
	return u
}

// normalizeEmail is the matching key for an address. The stored value keeps
// the submitted case; lookups and the unique index compare this key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateProjection rejects empty or non-whitelisted field lists.
func validateProjection(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields requested", models.ErrBadRequest)
	}
	for _, f := range fields {
		if !models.ProjectableFields[f] {
			return fmt.Errorf("%w: field %q cannot be projected", models.ErrBadRequest, f)
		}
	}
	return nil
}

// projectUser returns the requested fields of u keyed by document name.
func projectUser(u *models.User, fields []string) map[string]any {
	u.NormalizeLists()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case models.FieldUsername:
			out[f] = u.Username
		case models.FieldEmail:
			out[f] = u.Email
		case models.FieldFirstName:
			out[f] = u.FirstName
		case models.FieldLastName:
			out[f] = u.LastName
		case models.FieldContact:
			out[f] = u.Contact
		case models.FieldLocation:
			out[f] = u.Location
		case models.FieldGender:
			out[f] = u.Gender
		case models.FieldInterests:
			out[f] = u.Interests
		case models.FieldAge:
			out[f] = u.Age
		case models.FieldFriends:
			out[f] = u.Friends
		case models.FieldGroupMemberList:
			out[f] = u.GroupMemberList
		case models.FieldGroupOrganizerList:
			out[f] = u.GroupOrganizerList
		case models.FieldEventOrganizerList:
			out[f] = u.EventOrganizerList
		case models.FieldEventParticipationList:
			out[f] = u.EventParticipationList
		}
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}
