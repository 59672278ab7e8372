package model

// Services holds the capability flags a clinic can offer
type Services struct {
	STITesting      bool
	HIVTesting      bool
	PrEP            bool
	PEP             bool
	Contraception   bool
	Abortion        bool
	GenderAffirming bool
	Vaccines        bool
}

// Any reports whether at least one capability flag is set
func (s Services) Any() bool {
	return s.STITesting || s.HIVTesting || s.PrEP || s.PEP ||
		s.Contraception || s.Abortion || s.GenderAffirming || s.Vaccines
}

// Insurance holds the payment options a clinic accepts
type Insurance struct {
	AcceptsMedicaid bool
	AcceptsMedicare bool
	SlidingScale    bool
	NoInsuranceOK   bool
	Plans           []string
}

// AbortionDetail describes the abortion methods a clinic offers and their gestational limits
type AbortionDetail struct {
	Medication         bool
	InClinic           bool
	MedicationLimit    string
	ProcedureLimit     string
	MedicationMaxWeeks *int
	ProcedureMaxWeeks  *int
	OffersLateTerm     bool
}

// ClinicRecord represents a physical clinic location from the clinics table.
// Optional remote fields stay zero-valued (or nil for coordinates) when absent.
type ClinicRecord struct {
	ID           string
	Name         string
	Address      string
	Borough      string
	Latitude     *float64
	Longitude    *float64
	BBL          string
	Phone        string
	ContactEmail string
	PublicEmail  string
	Website      string
	HoursText    string
	Hours        []HoursEntry

	Organization string
	ClinicType   string

	Services Services
	Insurance
	Abortion AbortionDetail

	WalkIn           bool
	AppointmentOnly  bool
	LGBTQFocused     bool
	YouthFriendly    bool
	AnonymousTesting bool

	NearestSubway string
	NearestBus    string

	IsVirtual    bool
	LastVerified string
	DataSources  string
}

// HasCoordinates reports whether both latitude and longitude are present
func (c *ClinicRecord) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// HasHours reports whether any schedule information is known
func (c *ClinicRecord) HasHours() bool {
	return len(c.Hours) > 0 || c.HoursText != ""
}

// VirtualClinicRecord represents a telehealth-only provider.
// It shares the capability vocabulary of ClinicRecord but has no location or hours.
type VirtualClinicRecord struct {
	ID           string
	Name         string
	Website      string
	Phone        string
	PublicEmail  string
	Services     Services
	LGBTQFocused bool
	Insurance
}

// Virtual converts a clinic record flagged as virtual into its telehealth shape
func (c *ClinicRecord) Virtual() VirtualClinicRecord {
	return VirtualClinicRecord{
		ID:           c.ID,
		Name:         c.Name,
		Website:      c.Website,
		Phone:        c.Phone,
		PublicEmail:  c.PublicEmail,
		Services:     c.Services,
		LGBTQFocused: c.LGBTQFocused,
		Insurance:    c.Insurance,
	}
}
