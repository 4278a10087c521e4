package types

import "strings"

// Address holds the flat postal-address columns shared by profiles.
type Address struct {
	Line1      string  `gorm:"column:address_line1" json:"address_line1"`
	Line2      *string `gorm:"column:address_line2" json:"address_line2,omitempty"`
	City       string  `gorm:"column:city" json:"city"`
	State      string  `gorm:"column:state" json:"state"`
	PostalCode string  `gorm:"column:postal_code" json:"postal_code"`
	Country    string  `gorm:"column:country" json:"country"`
}

// MissingFields lists the required address fields that are blank.
func (a Address) MissingFields() []string {
	missing := []string{}
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "address_line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	return missing
}

// Complete reports whether every required field is populated.
func (a Address) Complete() bool {
	return len(a.MissingFields()) == 0
}

// CountryOrDefault returns the country code, defaulting to US.
func (a Address) CountryOrDefault() string {
	country := strings.TrimSpace(a.Country)
	if country == "" {
		return "US"
	}
	return country
}
