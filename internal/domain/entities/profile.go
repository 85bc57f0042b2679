// Package entities defines the core domain types for mock drill campaigns.
package entities

import "strings"

// TargetProfile holds everything collected about a drill target in the first
// wizard stage. All fields except AdditionalInfo must be present before the
// profile may advance the wizard.
type TargetProfile struct {
	Name            string `json:"name"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	Department      string `json:"department"`
	City            string `json:"city"`
	DateOfBirth     string `json:"dob"`
	Hobbies         string `json:"hobbies"`
	FamilyInfo      string `json:"familyInfo"`
	SocialInfo      string `json:"socialInfo"`
	EmployeeHistory string `json:"employeeHistory"`
	AdditionalInfo  string `json:"additionalInfo"`
}

// MissingFields returns the JSON names of required fields that are empty.
func (p *TargetProfile) MissingFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{"name", p.Name},
		{"age", p.Age},
		{"gender", p.Gender},
		{"department", p.Department},
		{"city", p.City},
		{"dob", p.DateOfBirth},
		{"hobbies", p.Hobbies},
		{"familyInfo", p.FamilyInfo},
		{"socialInfo", p.SocialInfo},
		{"employeeHistory", p.EmployeeHistory},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsComplete reports whether every required field is non-empty.
func (p *TargetProfile) IsComplete() bool {
	return len(p.MissingFields()) == 0
}
