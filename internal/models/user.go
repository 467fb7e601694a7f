package models

import (
	"time"
)

// Age bounds for a user profile.
const (
	MinAge = 13
	MaxAge = 150
)

// User is the single internal representation of a user record. Store-specific
// document shapes are converted to and from this type inside the repositories.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // always set; SSO accounts hold a hash of a random placeholder

	FirstName string
	LastName  string
	Contact   string
	Location  string
	Gender    string
	Interests []string
	Age       *int

	Friends                []string
	GroupMemberList        []string
	GroupOrganizerList     []string
	EventOrganizerList     []string
	EventParticipationList []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeLists replaces nil list fields with empty slices so records always
// serialize lists as [] rather than null.
func (u *User) NormalizeLists() {
	for _, list := range []*[]string{
		&u.Interests,
		&u.Friends,
		&u.GroupMemberList,
		&u.GroupOrganizerList,
		&u.EventOrganizerList,
		&u.EventParticipationList,
	} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// Document field names shared by every store backend.
const (
	FieldUsername               = "username"
	FieldEmail                  = "email"
	FieldPasswordHash           = "password_hash"
	FieldFirstName              = "first_name"
	FieldLastName               = "last_name"
	FieldContact                = "contact"
	FieldLocation               = "location"
	FieldGender                 = "gender"
	FieldInterests              = "interests"
	FieldAge                    = "age"
	FieldFriends                = "friends"
	FieldGroupMemberList        = "group_member_list"
	FieldGroupOrganizerList     = "group_organizer_list"
	FieldEventOrganizerList     = "event_organizer_list"
	FieldEventParticipationList = "event_participation_list"
)

// ProjectableFields lists the fields ProjectedGet may return. Credentials are
// deliberately absent.
var ProjectableFields = map[string]bool{
	FieldUsername:               true,
	FieldEmail:                  true,
	FieldFirstName:              true,
	FieldLastName:               true,
	FieldContact:                true,
	FieldLocation:               true,
	FieldGender:                 true,
	FieldInterests:              true,
	FieldAge:                    true,
	FieldFriends:                true,
	FieldGroupMemberList:        true,
	FieldGroupOrganizerList:     true,
	FieldEventOrganizerList:     true,
	FieldEventParticipationList: true,
}

// Named projections used by the sub-view endpoints.
var (
	EventFields  = []string{FieldEventOrganizerList, FieldEventParticipationList}
	GroupFields  = []string{FieldGroupMemberList, FieldGroupOrganizerList}
	FriendFields = []string{FieldFriends}
)

// UserPatch is a partial update. A nil field is left untouched.
type UserPatch struct {
	Username  *string
	FirstName *string
	LastName  *string
	Contact   *string
	Location  *string
	Gender    *string
	Interests *[]string
	Age       *int

	Friends                *[]string
	GroupMemberList        *[]string
	GroupOrganizerList     *[]string
	EventOrganizerList     *[]string
	EventParticipationList *[]string
}

// Fields returns the set fields keyed by document field name.
func (p UserPatch) Fields() map[string]any {
	fields := make(map[string]any)

	setString := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	setList := func(name string, v *[]string) {
		if v != nil {
			list := *v
			if list == nil {
				list = []string{}
			}
			fields[name] = list
		}
	}

	setString(FieldUsername, p.Username)
	setString(FieldFirstName, p.FirstName)
	setString(FieldLastName, p.LastName)
	setString(FieldContact, p.Contact)
	setString(FieldLocation, p.Location)
	setString(FieldGender, p.Gender)
	setList(FieldInterests, p.Interests)
	if p.Age != nil {
		fields[FieldAge] = *p.Age
	}
	setList(FieldFriends, p.Friends)
	setList(FieldGroupMemberList, p.GroupMemberList)
	setList(FieldGroupOrganizerList, p.GroupOrganizerList)
	setList(FieldEventOrganizerList, p.EventOrganizerList)
	setList(FieldEventParticipationList, p.EventParticipationList)

	return fields
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Contact != nil {
		u.Contact = *p.Contact
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Interests != nil {
		u.Interests = *p.Interests
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
	if p.Friends != nil {
		u.Friends = *p.Friends
	}
	if p.GroupMemberList != nil {
		u.GroupMemberList = *p.GroupMemberList
	}
	if p.GroupOrganizerList != nil {
		u.GroupOrganizerList = *p.GroupOrganizerList
	}
	if p.EventOrganizerList != nil {
		u.EventOrganizerList = *p.EventOrganizerList
	}
	if p.EventParticipationList != nil {
		u.EventParticipationList = *p.EventParticipationList
	}
	u.NormalizeLists()
}

// UserFilter narrows List results. Empty fields do not filter.
type UserFilter struct {
	Interest string
	Location string
}

// Page is an offset-based page request. Number starts at 1.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the number of records to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
