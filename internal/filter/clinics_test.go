package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jjenkins/clinicmap/internal/model"
)

func intPtr(i int) *int { return &i }

func clinicFixture() []model.ClinicProperties {
	return []model.ClinicProperties{
		{ID: "1", Name: "Chelsea Sexual Health Clinic", Borough: "Manhattan", HasSTITesting: true, HasPrEP: true, AcceptsMedicaid: true, WalkIn: true},
		{ID: "2", Name: "Bronx Women's Center", Borough: "Bronx", HasAbortion: true, AbortionMedicationMaxWeeks: intPtr(10), AbortionProcedureMaxWeeks: intPtr(14), SlidingScale: true},
		{ID: "3", Name: "Brooklyn Family Planning", Borough: "Brooklyn", HasAbortion: true, HasContraception: true, AbortionProcedureMaxWeeks: intPtr(26), AppointmentOnly: true},
		{ID: "4", Name: "Queens Late Term Services", Borough: "Queens", HasAbortion: true, OffersLateTerm: true},
	}
}

func ids(clinics []model.ClinicProperties) []string {
	out := []string{}
	for _, c := range clinics {
		out = append(out, c.ID)
	}
	return out
}

func TestClinics(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria returns all", Criteria{}, []string{"1", "2", "3", "4"}},
		{"name search is case insensitive", Criteria{Query: "  bronx "}, []string{"2"}},
		{"services require all", Criteria{Services: []string{TagAbortion, TagContraception}}, []string{"3"}},
		{"unknown service matches nothing", Criteria{Services: []string{"massage"}}, []string{}},
		{"insurance matches any", Criteria{Insurance: []string{"accepts_medicaid", "sliding_scale"}}, []string{"1", "2"}},
		{"access matches any", Criteria{Access: []string{"walk_in", "appointment_only"}}, []string{"1", "3"}},
		{"borough membership", Criteria{Boroughs: []string{"Queens", "Bronx"}}, []string{"2", "4"}},
		{"gestational weeks by either method", Criteria{GestationalWeeks: intPtr(12)}, []string{"2", "3"}},
		{"gestational weeks beyond limits", Criteria{GestationalWeeks: intPtr(20)}, []string{"3"}},
		{"beyond 24 weeks", Criteria{GestationalWeeks: intPtr(BeyondTwentyFourWeeks)}, []string{"3", "4"}},
		{"combined", Criteria{Services: []string{TagAbortion}, Boroughs: []string{"Brooklyn", "Bronx"}, GestationalWeeks: intPtr(14)}, []string{"2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Clinics(clinicFixture(), tt.criteria)))
		})
	}
}

func TestCriteria_Empty(t *testing.T) {
	assert.True(t, Criteria{}.Empty())
	assert.True(t, Criteria{Query: "   "}.Empty())
	assert.False(t, Criteria{Boroughs: []string{"Bronx"}}.Empty())
	assert.False(t, Criteria{GestationalWeeks: intPtr(8)}.Empty())
}
