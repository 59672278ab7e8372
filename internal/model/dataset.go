package model

import (
	"encoding/json"
	"time"
)

// FeatureCollection is the published GeoJSON dataset consumed by the map
type FeatureCollection struct {
	Type     string          `json:"type"`
	Features []Feature       `json:"features"`
	Metadata DatasetMetadata `json:"metadata"`
}

// DatasetMetadata describes how and when the dataset was generated
type DatasetMetadata struct {
	Generated         time.Time `json:"generated"`
	Source            string    `json:"source"`
	TotalRecords      int       `json:"total_records"`
	RecordsWithCoords int       `json:"records_with_coords"`
}

// Feature is a single physical clinic in the dataset
type Feature struct {
	Type       string           `json:"type"`
	Geometry   Point            `json:"geometry"`
	Properties ClinicProperties `json:"properties"`
}

// Point is a GeoJSON point geometry; coordinates are [longitude, latitude]
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// HoursProperties is the dataset shape of an hours entry
type HoursProperties struct {
	Department string   `json:"department"`
	Days       []string `json:"days"`
	Open       string   `json:"open"`
	Close      string   `json:"close"`
	AllDay     bool     `json:"allDay"`
	Notes      string   `json:"notes"`
}

// ClinicProperties is the dataset shape of a physical clinic
type ClinicProperties struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	Borough   string            `json:"borough"`
	Phone     string            `json:"phone"`
	Website   string            `json:"website"`
	Hours     []HoursProperties `json:"hours"`
	HoursText string            `json:"hours_text"`

	Organization string `json:"organization"`
	ClinicType   string `json:"clinic_type"`

	HasSTITesting      bool `json:"has_sti_testing"`
	HasHIVTesting      bool `json:"has_hiv_testing"`
	HasPrEP            bool `json:"has_prep"`
	HasPEP             bool `json:"has_pep"`
	HasContraception   bool `json:"has_contraception"`
	HasAbortion        bool `json:"has_abortion"`
	HasGenderAffirming bool `json:"has_gender_affirming"`
	HasVaccines        bool `json:"has_vaccines"`

	MedicationAbortion         bool   `json:"medication_abortion"`
	InClinicAbortion           bool   `json:"in_clinic_abortion"`
	AbortionMedicationLimit    string `json:"abortion_medication_limit"`
	AbortionProcedureLimit     string `json:"abortion_procedure_limit"`
	AbortionMedicationMaxWeeks *int   `json:"abortion_medication_max_weeks"`
	AbortionProcedureMaxWeeks  *int   `json:"abortion_procedure_max_weeks"`
	OffersLateTerm             bool   `json:"offers_late_term"`

	AcceptsMedicaid bool     `json:"accepts_medicaid"`
	AcceptsMedicare bool     `json:"accepts_medicare"`
	SlidingScale    bool     `json:"sliding_scale"`
	NoInsuranceOK   bool     `json:"no_insurance_ok"`
	InsurancePlans  []string `json:"insurance_plans"`

	WalkIn          bool `json:"walk_in"`
	AppointmentOnly bool `json:"appointment_only"`

	LGBTQFocused     bool `json:"lgbtq_focused"`
	YouthFriendly    bool `json:"youth_friendly"`
	AnonymousTesting bool `json:"anonymous_testing"`

	NearestSubway string `json:"nearest_subway"`
	NearestBus    string `json:"nearest_bus"`

	IsVirtual    bool   `json:"is_virtual"`
	LastVerified string `json:"last_verified"`
	DataSources  string `json:"data_sources"`
}

// NewFeature builds a dataset feature from a clinic record.
// The second return value is false when the clinic has no coordinates.
func NewFeature(c *ClinicRecord) (Feature, bool) {
	if !c.HasCoordinates() {
		return Feature{}, false
	}

	hours := make([]HoursProperties, 0, len(c.Hours))
	for _, h := range c.Hours {
		days := h.DaysOfWeek
		if days == nil {
			days = []string{}
		}
		department := h.Department
		if department == "" {
			department = "General"
		}
		hours = append(hours, HoursProperties{
			Department: department,
			Days:       days,
			Open:       h.OpenTime,
			Close:      h.CloseTime,
			AllDay:     h.AllDay,
			Notes:      h.Notes,
		})
	}

	plans := c.Plans
	if plans == nil {
		plans = []string{}
	}

	return Feature{
		Type: "Feature",
		Geometry: Point{
			Type:        "Point",
			Coordinates: [2]float64{*c.Longitude, *c.Latitude},
		},
		Properties: ClinicProperties{
			ID:        c.ID,
			Name:      c.Name,
			Address:   c.Address,
			Borough:   c.Borough,
			Phone:     c.Phone,
			Website:   c.Website,
			Hours:     hours,
			HoursText: c.HoursText,

			Organization: c.Organization,
			ClinicType:   c.ClinicType,

			HasSTITesting:      c.Services.STITesting,
			HasHIVTesting:      c.Services.HIVTesting,
			HasPrEP:            c.Services.PrEP,
			HasPEP:             c.Services.PEP,
			HasContraception:   c.Services.Contraception,
			HasAbortion:        c.Services.Abortion,
			HasGenderAffirming: c.Services.GenderAffirming,
			HasVaccines:        c.Services.Vaccines,

			MedicationAbortion:         c.Abortion.Medication,
			InClinicAbortion:           c.Abortion.InClinic,
			AbortionMedicationLimit:    c.Abortion.MedicationLimit,
			AbortionProcedureLimit:     c.Abortion.ProcedureLimit,
			AbortionMedicationMaxWeeks: c.Abortion.MedicationMaxWeeks,
			AbortionProcedureMaxWeeks:  c.Abortion.ProcedureMaxWeeks,
			OffersLateTerm:             c.Abortion.OffersLateTerm,

			AcceptsMedicaid: c.AcceptsMedicaid,
			AcceptsMedicare: c.AcceptsMedicare,
			SlidingScale:    c.SlidingScale,
			NoInsuranceOK:   c.NoInsuranceOK,
			InsurancePlans:  plans,

			WalkIn:          c.WalkIn,
			AppointmentOnly: c.AppointmentOnly,

			LGBTQFocused:     c.LGBTQFocused,
			YouthFriendly:    c.YouthFriendly,
			AnonymousTesting: c.AnonymousTesting,

			NearestSubway: c.NearestSubway,
			NearestBus:    c.NearestBus,

			IsVirtual:    c.IsVirtual,
			LastVerified: c.LastVerified,
			DataSources:  c.DataSources,
		},
	}, true
}

// virtualClinicJSON is the published shape of a virtual clinic
type virtualClinicJSON struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Website            string `json:"website"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	HasSTITesting      bool   `json:"has_sti_testing"`
	HasHIVTesting      bool   `json:"has_hiv_testing"`
	HasPrEP            bool   `json:"has_prep"`
	HasPEP             bool   `json:"has_pep"`
	HasContraception   bool   `json:"has_contraception"`
	HasAbortion        bool   `json:"has_abortion"`
	HasGenderAffirming bool   `json:"has_gender_affirming"`
	HasVaccines        bool   `json:"has_vaccines"`
	LGBTQFocused       bool   `json:"lgbtq_focused"`
	AcceptsMedicaid    bool   `json:"accepts_medicaid"`
	AcceptsMedicare    bool   `json:"accepts_medicare"`
	SlidingScale       bool   `json:"sliding_scale"`
	NoInsuranceOK      bool   `json:"no_insurance_ok"`
}

// MarshalJSON encodes the record with flat has_* capability keys
func (v VirtualClinicRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(virtualClinicJSON{
		ID:                 v.ID,
		Name:               v.Name,
		Website:            v.Website,
		Phone:              v.Phone,
		Email:              v.PublicEmail,
		HasSTITesting:      v.Services.STITesting,
		HasHIVTesting:      v.Services.HIVTesting,
		HasPrEP:            v.Services.PrEP,
		HasPEP:             v.Services.PEP,
		HasContraception:   v.Services.Contraception,
		HasAbortion:        v.Services.Abortion,
		HasGenderAffirming: v.Services.GenderAffirming,
		HasVaccines:        v.Services.Vaccines,
		LGBTQFocused:       v.LGBTQFocused,
		AcceptsMedicaid:    v.AcceptsMedicaid,
		AcceptsMedicare:    v.AcceptsMedicare,
		SlidingScale:       v.SlidingScale,
		NoInsuranceOK:      v.NoInsuranceOK,
	})
}

// UnmarshalJSON decodes the flat has_* shape written by MarshalJSON
func (v *VirtualClinicRecord) UnmarshalJSON(data []byte) error {
	var raw virtualClinicJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = VirtualClinicRecord{
		ID:          raw.ID,
		Name:        raw.Name,
		Website:     raw.Website,
		Phone:       raw.Phone,
		PublicEmail: raw.Email,
		Services: Services{
			STITesting:      raw.HasSTITesting,
			HIVTesting:      raw.HasHIVTesting,
			PrEP:            raw.HasPrEP,
			PEP:             raw.HasPEP,
			Contraception:   raw.HasContraception,
			Abortion:        raw.HasAbortion,
			GenderAffirming: raw.HasGenderAffirming,
			Vaccines:        raw.HasVaccines,
		},
		LGBTQFocused: raw.LGBTQFocused,
		Insurance: Insurance{
			AcceptsMedicaid: raw.AcceptsMedicaid,
			AcceptsMedicare: raw.AcceptsMedicare,
			SlidingScale:    raw.SlidingScale,
			NoInsuranceOK:   raw.NoInsuranceOK,
		},
	}
	return nil
}
