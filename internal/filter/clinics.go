package filter

import (
	"strings"

	"github.com/jjenkins/clinicmap/internal/model"
)

// BeyondTwentyFourWeeks is the gestational selection meaning "later than 24 weeks"
const BeyondTwentyFourWeeks = 99

// Criteria is the set of map filters a visitor has active.
// Zero-valued fields do not restrict the result.
type Criteria struct {
	Query            string
	Services         []string // all must be offered
	Insurance        []string // any must be accepted
	Access           []string // any must apply
	Boroughs         []string
	GestationalWeeks *int
}

// Empty reports whether no filter is active
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Query) == "" && len(c.Services) == 0 && len(c.Insurance) == 0 &&
		len(c.Access) == 0 && len(c.Boroughs) == 0 && c.GestationalWeeks == nil
}

// Clinics returns the physical clinics matching every active criterion, in
// their original order. Unlike VirtualClinics, no active criteria means no
// restriction.
func Clinics(clinics []model.ClinicProperties, c Criteria) []model.ClinicProperties {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	result := []model.ClinicProperties{}
	for _, clinic := range clinics {
		if query != "" && !strings.Contains(strings.ToLower(clinic.Name), query) {
			continue
		}
		if !offersAll(clinic, c.Services) {
			continue
		}
		if len(c.Insurance) > 0 && !anyFlag(clinic, c.Insurance, insuranceFlag) {
			continue
		}
		if len(c.Access) > 0 && !anyFlag(clinic, c.Access, accessFlag) {
			continue
		}
		if len(c.Boroughs) > 0 && !contains(c.Boroughs, clinic.Borough) {
			continue
		}
		if c.GestationalWeeks != nil && !servesGestationalAge(clinic, *c.GestationalWeeks) {
			continue
		}
		result = append(result, clinic)
	}
	return result
}

func offersAll(p model.ClinicProperties, tags []string) bool {
	for _, tag := range tags {
		if !propertyService(p, tag) {
			return false
		}
	}
	return true
}

func propertyService(p model.ClinicProperties, tag string) bool {
	switch tag {
	case TagSTITesting:
		return p.HasSTITesting
	case TagHIVTesting:
		return p.HasHIVTesting
	case TagPrEP:
		return p.HasPrEP
	case TagPEP:
		return p.HasPEP
	case TagContraception:
		return p.HasContraception
	case TagAbortion:
		return p.HasAbortion
	case TagGenderAffirming:
		return p.HasGenderAffirming
	case TagVaccines:
		return p.HasVaccines
	default:
		return false
	}
}

func insuranceFlag(p model.ClinicProperties, key string) bool {
	switch key {
	case "accepts_medicaid":
		return p.AcceptsMedicaid
	case "accepts_medicare":
		return p.AcceptsMedicare
	case "sliding_scale":
		return p.SlidingScale
	case "no_insurance_ok":
		return p.NoInsuranceOK
	default:
		return false
	}
}

func accessFlag(p model.ClinicProperties, key string) bool {
	switch key {
	case "walk_in":
		return p.WalkIn
	case "appointment_only":
		return p.AppointmentOnly
	case "youth_friendly":
		return p.YouthFriendly
	case "anonymous_testing":
		return p.AnonymousTesting
	case "lgbtq_focused":
		return p.LGBTQFocused
	default:
		return false
	}
}

func anyFlag(p model.ClinicProperties, keys []string, flag func(model.ClinicProperties, string) bool) bool {
	for _, key := range keys {
		if flag(p, key) {
			return true
		}
	}
	return false
}

func servesGestationalAge(p model.ClinicProperties, weeks int) bool {
	if weeks == BeyondTwentyFourWeeks {
		return p.OffersLateTerm || (p.AbortionProcedureMaxWeeks != nil && *p.AbortionProcedureMaxWeeks > 24)
	}
	if p.AbortionMedicationMaxWeeks != nil && *p.AbortionMedicationMaxWeeks >= weeks {
		return true
	}
	return p.AbortionProcedureMaxWeeks != nil && *p.AbortionProcedureMaxWeeks >= weeks
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
