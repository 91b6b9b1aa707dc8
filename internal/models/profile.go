package models

import (
	"fmt"
	"time"
)

// ProfileFields is the user-editable part of a profile. It is comparable, so
// dirty tracking is a plain == against a snapshot.
type ProfileFields struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
}

// Set assigns one field by its JSON name.
func (f *ProfileFields) Set(name, value string) error {
	switch name {
	case "full_name":
		f.FullName = value
	case "phone":
		f.Phone = value
	case "location":
		f.Location = value
	case "skills":
		f.Skills = value
	case "experience":
		f.Experience = value
	case "education":
		f.Education = value
	default:
		return fmt.Errorf("unknown profile field %q", name)
	}
	return nil
}

type Profile struct {
	UserID     string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName   string `gorm:"column:full_name;type:text" json:"full_name"`
	Phone      string `gorm:"column:phone;type:text" json:"phone"`
	Location   string `gorm:"column:location;type:text" json:"location"`
	Skills     string `gorm:"column:skills;type:text" json:"skills"`
	Experience string `gorm:"column:experience;type:text" json:"experience"`
	Education  string `gorm:"column:education;type:text" json:"education"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// DefaultProfile is the record shape served before the first write.
func DefaultProfile(userID string) *Profile {
	return &Profile{UserID: userID}
}

func (p *Profile) Fields() ProfileFields {
	return ProfileFields{
		FullName:   p.FullName,
		Phone:      p.Phone,
		Location:   p.Location,
		Skills:     p.Skills,
		Experience: p.Experience,
		Education:  p.Education,
	}
}

func (p *Profile) Apply(f ProfileFields) {
	p.FullName = f.FullName
	p.Phone = f.Phone
	p.Location = f.Location
	p.Skills = f.Skills
	p.Experience = f.Experience
	p.Education = f.Education
}
