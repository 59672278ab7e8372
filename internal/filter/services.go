// Package filter selects clinics from the published dataset by the criteria
// a visitor picks on the map.
package filter

import "github.com/jjenkins/clinicmap/internal/model"

// Service tags accepted by the virtual clinic filter
const (
	TagAbortion        = "abortion"
	TagGenderAffirming = "gender_affirming"
	TagPrEP            = "prep"
	TagContraception   = "contraception"
	TagSTITesting      = "sti_testing"
)

// Service tags accepted only by the physical map filter
const (
	TagHIVTesting = "hiv_testing"
	TagPEP        = "pep"
	TagVaccines   = "vaccines"
)

// ServiceTags lists the selectable service tags in display order
var ServiceTags = []string{TagAbortion, TagGenderAffirming, TagPrEP, TagContraception, TagSTITesting}

// IsServiceTag reports whether tag is understood by either filter
func IsServiceTag(tag string) bool {
	switch tag {
	case TagAbortion, TagGenderAffirming, TagPrEP, TagContraception, TagSTITesting,
		TagHIVTesting, TagPEP, TagVaccines:
		return true
	default:
		return false
	}
}

// Offers reports whether the services include the capability named by tag.
// Unrecognized tags never match.
func Offers(s model.Services, tag string) bool {
	switch tag {
	case TagAbortion:
		return s.Abortion
	case TagGenderAffirming:
		return s.GenderAffirming
	case TagPrEP:
		return s.PrEP
	case TagContraception:
		return s.Contraception
	case TagSTITesting:
		return s.STITesting
	default:
		return false
	}
}

// VirtualClinics returns the clinics offering at least one of the selected
// services, in their original order. An empty selection returns nothing.
func VirtualClinics(clinics []model.VirtualClinicRecord, selected []string) []model.VirtualClinicRecord {
	if len(selected) == 0 {
		return []model.VirtualClinicRecord{}
	}

	result := []model.VirtualClinicRecord{}
	for _, clinic := range clinics {
		for _, tag := range selected {
			if Offers(clinic.Services, tag) {
				result = append(result, clinic)
				break
			}
		}
	}
	return result
}
