package handlers

import (
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
)

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=30"`
	FirstName string   `json:"first_name" validate:"required,max=30"`
	LastName  string   `json:"last_name" validate:"required,max=30"`
	Email     string   `json:"email" validate:"required,email,max=254"`
	Password  string   `json:"password" validate:"required,min=8,max=128"`
	Contact   *string  `json:"contact" validate:"required"`
	Location  *string  `json:"location" validate:"required"`
	Gender    *string  `json:"gender" validate:"required"`
	Interests []string `json:"interests" validate:"required"`
	Age       *int     `json:"age" validate:"omitempty,gte=13,lte=150"`

	Friends                []string `json:"friends"`
	GroupMemberList        []string `json:"group_member_list"`
	GroupOrganizerList     []string `json:"group_organizer_list"`
	EventOrganizerList     []string `json:"event_organizer_list"`
	EventParticipationList []string `json:"event_participation_list"`
}

// toModel keeps every submitted value as sent. Email matching is
// case-insensitive in the store, not by rewriting the address.
func (req CreateUserRequest) toModel() *models.User {
	u := &models.User{
		Username:               req.Username,
		Email:                  req.Email,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Contact:                deref(req.Contact),
		Location:               deref(req.Location),
		Gender:                 deref(req.Gender),
		Interests:              req.Interests,
		Age:                    req.Age,
		Friends:                req.Friends,
		GroupMemberList:        req.GroupMemberList,
		GroupOrganizerList:     req.GroupOrganizerList,
		EventOrganizerList:     req.EventOrganizerList,
		EventParticipationList: req.EventParticipationList,
	}
	u.NormalizeLists()
	return u
}

// UpdateProfileRequest is a partial update. Omitted or null fields are left
// unchanged. Email and username are not updatable here.
type UpdateProfileRequest struct {
	FirstName *string   `json:"first_name" validate:"omitempty,min=1,max=30"`
	LastName  *string   `json:"last_name" validate:"omitempty,min=1,max=30"`
	Contact   *string   `json:"contact"`
	Location  *string   `json:"location"`
	Gender    *string   `json:"gender"`
	Interests *[]string `json:"interests"`
	Age       *int      `json:"age" validate:"omitempty,gte=13,lte=150"`

	Friends                *[]string `json:"friends"`
	GroupMemberList        *[]string `json:"group_member_list"`
	GroupOrganizerList     *[]string `json:"group_organizer_list"`
	EventOrganizerList     *[]string `json:"event_organizer_list"`
	EventParticipationList *[]string `json:"event_participation_list"`
}

func (req UpdateProfileRequest) toPatch() models.UserPatch {
	return models.UserPatch{
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Contact:                req.Contact,
		Location:               req.Location,
		Gender:                 req.Gender,
		Interests:              req.Interests,
		Age:                    req.Age,
		Friends:                req.Friends,
		GroupMemberList:        req.GroupMemberList,
		GroupOrganizerList:     req.GroupOrganizerList,
		EventOrganizerList:     req.EventOrganizerList,
		EventParticipationList: req.EventParticipationList,
	}
}

// UpdateUsernameRequest represents the request body for a username change
type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
}

// UserResponse represents a user in the HTTP response. The password hash is
// never serialized.
type UserResponse struct {
	ID                     string   `json:"id"`
	Username               string   `json:"username"`
	Email                  string   `json:"email"`
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	Contact                string   `json:"contact"`
	Location               string   `json:"location"`
	Gender                 string   `json:"gender"`
	Interests              []string `json:"interests"`
	Age                    *int     `json:"age"`
	Friends                []string `json:"friends"`
	GroupMemberList        []string `json:"group_member_list"`
	GroupOrganizerList     []string `json:"group_organizer_list"`
	EventOrganizerList     []string `json:"event_organizer_list"`
	EventParticipationList []string `json:"event_participation_list"`
	CreatedAt              string   `json:"created_at,omitempty"`
	UpdatedAt              string   `json:"updated_at,omitempty"`
}

// ListUsersResponse represents a page of users
type ListUsersResponse struct {
	Users []*UserResponse `json:"users"`
}

// MessageResponse is a one-line confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is returned by the liveness and logout endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// SSOTokenResponse is returned once an SSO session has been reconciled.
type SSOTokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *UserResponse `json:"user"`
}

// userModelToResponse converts a user model to a response DTO
func userModelToResponse(user *models.User) *UserResponse {
	user.NormalizeLists()
	return &UserResponse{
		ID:                     user.ID,
		Username:               user.Username,
		Email:                  user.Email,
		FirstName:              user.FirstName,
		LastName:               user.LastName,
		Contact:                user.Contact,
		Location:               user.Location,
		Gender:                 user.Gender,
		Interests:              user.Interests,
		Age:                    user.Age,
		Friends:                user.Friends,
		GroupMemberList:        user.GroupMemberList,
		GroupOrganizerList:     user.GroupOrganizerList,
		EventOrganizerList:     user.EventOrganizerList,
		EventParticipationList: user.EventParticipationList,
		CreatedAt:              formatTime(user.CreatedAt),
		UpdatedAt:              formatTime(user.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
