package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Remote field names in the clinics table
const (
	FieldClinicName      = "Clinic Name"
	FieldAddress         = "Address"
	FieldBorough         = "Borough"
	FieldLatitude        = "Latitude"
	FieldLongitude       = "Longitude"
	FieldBBL             = "BBL"
	FieldPhone           = "Phone"
	FieldContactEmail    = "Update Contact Email"
	FieldPublicEmail     = "Public Email"
	FieldWebsite         = "Website"
	FieldHours           = "Hours"
	FieldNearestSubway   = "Nearest Subway"
	FieldNearestBus      = "Nearest Bus"
	FieldIsVirtual       = "Is Virtual"
	FieldOrganization    = "Organization"
	FieldClinicType      = "Clinic Type"
	FieldLastVerified    = "Last Verified"
	FieldDataSources     = "Data Sources"
	FieldSTITesting      = "STI Testing"
	FieldHIVTesting      = "HIV Testing"
	FieldPrEP            = "PrEP"
	FieldPEP             = "PEP"
	FieldContraception   = "Contraception"
	FieldAbortion        = "Abortion"
	FieldGenderAffirming = "Gender-Affirming Care"
	FieldVaccines        = "Vaccines"
	FieldAcceptsMedicaid = "Accepts Medicaid"
	FieldOffersLateTerm  = "Offers Late-Term (20+ weeks)"
)

// Remote field names in the hours table
const (
	FieldHoursLabel      = "Label"
	FieldHoursDays       = "Days"
	FieldHoursDaysOfWeek = "Days of Week"
	FieldHoursDepartment = "Department"
	FieldHoursOpen       = "Open Time"
	FieldHoursClose      = "Close Time"
	FieldHoursAllDay     = "All Day"
	FieldHoursNotes      = "Notes"
	FieldHoursClinic     = "Clinic"
)

// Fields is the raw field-name to value mapping of a remote record
type Fields map[string]any

// String returns the field as a trimmed string, or "" if absent or not textual
func (f Fields) String(name string) string {
	switch v := f[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Bool returns the field as a bool; checkboxes are absent when unchecked
func (f Fields) Bool(name string) bool {
	v, _ := f[name].(bool)
	return v
}

// Float returns the field as a float, or nil if absent or unparseable.
// Zero is treated as absent, since an unset coordinate is never 0.
func (f Fields) Float(name string) *float64 {
	var n float64
	switch v := f[name].(type) {
	case float64:
		n = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n == 0 {
		return nil
	}
	return &n
}

// Int returns the field as an int, or nil if absent or unparseable
func (f Fields) Int(name string) *int {
	n := f.Float(name)
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}

// Strings returns a multi-select or linked-record field as a string slice
func (f Fields) Strings(name string) []string {
	switch v := f[name].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// DecodeClinic converts a clinics-table record into a ClinicRecord
func DecodeClinic(id string, f Fields) ClinicRecord {
	return ClinicRecord{
		ID:           id,
		Name:         f.String(FieldClinicName),
		Address:      f.String(FieldAddress),
		Borough:      f.String(FieldBorough),
		Latitude:     f.Float(FieldLatitude),
		Longitude:    f.Float(FieldLongitude),
		BBL:          f.String(FieldBBL),
		Phone:        f.String(FieldPhone),
		ContactEmail: f.String(FieldContactEmail),
		PublicEmail:  f.String(FieldPublicEmail),
		Website:      f.String(FieldWebsite),
		HoursText:    f.String(FieldHours),

		Organization: f.String(FieldOrganization),
		ClinicType:   f.String(FieldClinicType),

		Services: Services{
			STITesting:      f.Bool(FieldSTITesting),
			HIVTesting:      f.Bool(FieldHIVTesting),
			PrEP:            f.Bool(FieldPrEP),
			PEP:             f.Bool(FieldPEP),
			Contraception:   f.Bool(FieldContraception),
			Abortion:        f.Bool(FieldAbortion),
			GenderAffirming: f.Bool(FieldGenderAffirming),
			Vaccines:        f.Bool(FieldVaccines),
		},
		Insurance: Insurance{
			AcceptsMedicaid: f.Bool(FieldAcceptsMedicaid),
			AcceptsMedicare: f.Bool("Accepts Medicare"),
			SlidingScale:    f.Bool("Sliding Scale"),
			NoInsuranceOK:   f.Bool("No Insurance OK"),
			Plans:           f.Strings("Insurance Plans Accepted"),
		},
		Abortion: AbortionDetail{
			Medication:         f.Bool("Medication Abortion"),
			InClinic:           f.Bool("In-Clinic Abortion"),
			MedicationLimit:    f.String("Abortion: Medication (limit)"),
			ProcedureLimit:     f.String("Abortion: Procedure (limit)"),
			MedicationMaxWeeks: f.Int("Abortion Medication Max Weeks"),
			ProcedureMaxWeeks:  f.Int("Abortion Procedure Max Weeks"),
			OffersLateTerm:     f.Bool(FieldOffersLateTerm),
		},

		WalkIn:           f.Bool("Walk-ins OK"),
		AppointmentOnly:  f.Bool("Appointment Only"),
		LGBTQFocused:     f.Bool("LGBTQ+ Focused"),
		YouthFriendly:    f.Bool("Youth Friendly"),
		AnonymousTesting: f.Bool("Anonymous Testing"),

		NearestSubway: f.String(FieldNearestSubway),
		NearestBus:    f.String(FieldNearestBus),

		IsVirtual:    f.Bool(FieldIsVirtual),
		LastVerified: f.String(FieldLastVerified),
		DataSources:  f.String(FieldDataSources),
	}
}

// DecodeHours converts an hours-table record into an HoursEntry
func DecodeHours(id string, f Fields) HoursEntry {
	return HoursEntry{
		ID:         id,
		Label:      f.String(FieldHoursLabel),
		Days:       f.String(FieldHoursDays),
		DaysOfWeek: f.Strings(FieldHoursDaysOfWeek),
		Department: f.String(FieldHoursDepartment),
		OpenTime:   f.String(FieldHoursOpen),
		CloseTime:  f.String(FieldHoursClose),
		AllDay:     f.Bool(FieldHoursAllDay),
		Notes:      f.String(FieldHoursNotes),
		ClinicIDs:  f.Strings(FieldHoursClinic),
	}
}
