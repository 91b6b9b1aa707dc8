package models

// DisplayName is the nested {"display_name": ...} shape the listings API uses
// for companies and locations.
type DisplayName struct {
	DisplayName string `json:"display_name"`
}

type Category struct {
	Label string `json:"label"`
	Tag   string `json:"tag,omitempty"`
}

// JobListing is one posting as returned by the listings API. Listings are
// transient: they live only as long as the result set they came with.
type JobListing struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	Company     *DisplayName `json:"company,omitempty"`
	CompanyName string       `json:"company_name,omitempty"`
	CompanyLogo string       `json:"company_logo,omitempty"`

	Location *DisplayName `json:"location,omitempty"`

	SalaryMin *float64 `json:"salary_min,omitempty"`
	SalaryMax *float64 `json:"salary_max,omitempty"`

	Description  string    `json:"description,omitempty"`
	Category     *Category `json:"category,omitempty"`
	ContractType string    `json:"contract_type,omitempty"`
	ContractTime string    `json:"contract_time,omitempty"`
	Created      string    `json:"created,omitempty"`
	RedirectURL  string    `json:"redirect_url,omitempty"`
}

func (j JobListing) CompanyDisplayName() string {
	if j.CompanyName != "" {
		return j.CompanyName
	}
	if j.Company != nil {
		return j.Company.DisplayName
	}
	return ""
}

func (j JobListing) LocationDisplayName() string {
	if j.Location != nil {
		return j.Location.DisplayName
	}
	return ""
}

func (j JobListing) CategoryLabel() string {
	if j.Category != nil {
		return j.Category.Label
	}
	return ""
}

// ListingsResult is the decoded form of the listings payload. The proxy never
// decodes it; only clients do.
type ListingsResult struct {
	Results []JobListing `json:"results"`
	Count   int          `json:"count"`
	Mean    float64      `json:"mean,omitempty"`
}
