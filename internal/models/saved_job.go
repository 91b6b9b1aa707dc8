package models

import "time"

const (
	LocationNotSpecified = "Location not specified"
	CategoryNotSpecified = "Category not specified"
)

// SavedJob is a denormalized snapshot of a JobListing owned by one identity.
// There is at most one per (user_id, job_id); ID is derived from that pair.
type SavedJob struct {
	ID     string `bson:"_id" json:"-"`
	UserID string `bson:"user_id" json:"user_id"`
	JobID  string `bson:"job_id" json:"id"`

	Title       string `bson:"title" json:"title"`
	CompanyName string `bson:"company_name" json:"company_name"`
	CompanyLogo string `bson:"company_logo" json:"company_logo"`
	Location    string `bson:"location" json:"location"`

	SalaryMin float64 `bson:"salary_min" json:"salary_min"`
	SalaryMax float64 `bson:"salary_max" json:"salary_max"`

	Description  string `bson:"description" json:"description"`
	Category     string `bson:"category" json:"category"`
	ContractType string `bson:"contract_type" json:"contract_type"`
	Created      string `bson:"created" json:"created"`
	RedirectURL  string `bson:"redirect_url" json:"redirect_url"`

	SavedAt time.Time `bson:"saved_at" json:"saved_at"`
}

func SavedJobKey(userID, jobID string) string {
	return userID + "/" + jobID
}

// NewSavedJob builds the snapshot stored for userID. Missing listing fields
// fall back to empty strings, zero salaries or the "not specified" sentinels.
func NewSavedJob(userID string, j JobListing, now time.Time) *SavedJob {
	now = now.UTC()

	s := &SavedJob{
		ID:           SavedJobKey(userID, j.ID),
		UserID:       userID,
		JobID:        j.ID,
		Title:        j.Title,
		CompanyName:  j.CompanyDisplayName(),
		CompanyLogo:  j.CompanyLogo,
		Location:     j.LocationDisplayName(),
		Description:  j.Description,
		Category:     j.CategoryLabel(),
		ContractType: j.ContractType,
		Created:      j.Created,
		RedirectURL:  j.RedirectURL,
		SavedAt:      now,
	}
	if s.Location == "" {
		s.Location = LocationNotSpecified
	}
	if s.Category == "" {
		s.Category = CategoryNotSpecified
	}
	if j.SalaryMin != nil {
		s.SalaryMin = *j.SalaryMin
	}
	if j.SalaryMax != nil {
		s.SalaryMax = *j.SalaryMax
	}
	if s.Created == "" {
		s.Created = now.Format(time.RFC3339)
	}
	return s
}

// Listing turns the snapshot back into a listing so it can be shown and
// re-saved through the same path as a fresh search result.
func (s SavedJob) Listing() JobListing {
	j := JobListing{
		ID:           s.JobID,
		Title:        s.Title,
		CompanyName:  s.CompanyName,
		CompanyLogo:  s.CompanyLogo,
		Description:  s.Description,
		ContractType: s.ContractType,
		Created:      s.Created,
		RedirectURL:  s.RedirectURL,
	}
	if s.CompanyName != "" {
		j.Company = &DisplayName{DisplayName: s.CompanyName}
	}
	if s.Location != "" && s.Location != LocationNotSpecified {
		j.Location = &DisplayName{DisplayName: s.Location}
	}
	if s.Category != "" && s.Category != CategoryNotSpecified {
		j.Category = &Category{Label: s.Category}
	}
	if s.SalaryMin != 0 {
		v := s.SalaryMin
		j.SalaryMin = &v
	}
	if s.SalaryMax != 0 {
		v := s.SalaryMax
		j.SalaryMax = &v
	}
	return j
}
