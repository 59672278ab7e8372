package service

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jjenkins/clinicmap/internal/model"
)

// QualityGap names a record that is missing some attribute
type QualityGap struct {
	ID      string
	Name    string
	Address string
}

// QualityReport counts data-quality gaps across the clinics table
type QualityReport struct {
	Total              int
	MissingCoordinates []QualityGap
	MissingPhone       []QualityGap
	MissingHours       int
	MissingBorough     int
	MissingServices    int
}

// QualityAudit computes completeness findings for every record. It has no side effects.
func QualityAudit(clinics []model.ClinicRecord) *QualityReport {
	report := &QualityReport{
		Total:              len(clinics),
		MissingCoordinates: []QualityGap{},
		MissingPhone:       []QualityGap{},
	}

	for i := range clinics {
		c := &clinics[i]
		gap := QualityGap{ID: c.ID, Name: c.Name, Address: c.Address}

		if !c.HasCoordinates() {
			report.MissingCoordinates = append(report.MissingCoordinates, gap)
		}
		if c.Phone == "" {
			report.MissingPhone = append(report.MissingPhone, gap)
		}
		if !c.HasHours() {
			report.MissingHours++
		}
		if c.Borough == "" {
			report.MissingBorough++
		}
		if !c.Services.Any() {
			report.MissingServices++
		}
	}

	return report
}

// Print writes the report in the operator-facing text format
func (r *QualityReport) Print(w io.Writer) {
	fmt.Fprintln(w, "=== DATA QUALITY GAPS ===")
	fmt.Fprintf(w, "Total records: %d\n", r.Total)
	fmt.Fprintf(w, "Missing coordinates: %d\n", len(r.MissingCoordinates))
	fmt.Fprintf(w, "Missing phone: %d\n", len(r.MissingPhone))
	fmt.Fprintf(w, "Missing hours: %d\n", r.MissingHours)
	fmt.Fprintf(w, "Missing borough: %d\n", r.MissingBorough)
	fmt.Fprintf(w, "Missing all services: %d\n", r.MissingServices)

	fmt.Fprintln(w, "\n=== RECORDS MISSING COORDINATES ===")
	for _, g := range r.MissingCoordinates {
		address := g.Address
		if address == "" {
			address = "NO ADDRESS"
		}
		fmt.Fprintf(w, "  - %s: %s\n", g.Name, address)
	}

	fmt.Fprintln(w, "\n=== RECORDS MISSING PHONE ===")
	for _, g := range r.MissingPhone {
		fmt.Fprintf(w, "  - %s\n", g.Name)
	}
}

// ContactEntry is a clinic name paired with the contact value that put it in a partition
type ContactEntry struct {
	ID    string
	Name  string
	Value string
}

// ContactReport partitions clinics by the contact information they expose
type ContactReport struct {
	Total          int
	WithEmail      []ContactEntry
	EmailInPhone   []ContactEntry
	WithoutContact []ContactEntry
}

// ContactAudit finds clinics with a contact email, clinics whose phone field
// holds an email address, and clinics with neither phone nor email.
func ContactAudit(clinics []model.ClinicRecord) *ContactReport {
	report := &ContactReport{
		Total:          len(clinics),
		WithEmail:      []ContactEntry{},
		EmailInPhone:   []ContactEntry{},
		WithoutContact: []ContactEntry{},
	}

	for _, c := range clinics {
		if c.ContactEmail != "" {
			report.WithEmail = append(report.WithEmail, ContactEntry{ID: c.ID, Name: c.Name, Value: c.ContactEmail})
		}
		if strings.Contains(c.Phone, "@") {
			report.EmailInPhone = append(report.EmailInPhone, ContactEntry{ID: c.ID, Name: c.Name, Value: c.Phone})
		}
		if c.Phone == "" && c.ContactEmail == "" {
			report.WithoutContact = append(report.WithoutContact, ContactEntry{ID: c.ID, Name: c.Name})
		}
	}

	return report
}

// Print writes the report in the operator-facing text format
func (r *ContactReport) Print(w io.Writer) {
	fmt.Fprintln(w, "=== CLINICS WITH UPDATE CONTACT EMAIL ===")
	fmt.Fprintf(w, "%d of %d have emails\n\n", len(r.WithEmail), r.Total)
	for _, e := range r.WithEmail {
		fmt.Fprintf(w, "  %s: %s\n", e.Name, e.Value)
	}

	fmt.Fprintln(w, "\n=== PHONE FIELD WITH @ (possible emails) ===")
	for _, e := range r.EmailInPhone {
		fmt.Fprintf(w, "  %s: %s\n", e.Name, e.Value)
	}

	fmt.Fprintln(w, "\n=== CLINICS WITHOUT ANY CONTACT INFO ===")
	for _, e := range r.WithoutContact {
		fmt.Fprintf(w, "  %s\n", e.Name)
	}
}

// BoroughCoverage counts hours coverage for one borough
type BoroughCoverage struct {
	Borough string
	Total   int
	Missing int
}

// HoursCoverageReport summarizes which published clinics have no hours
type HoursCoverageReport struct {
	Total        int
	MissingHours []string
	ByBorough    []BoroughCoverage
}

// HoursCoverage inspects the published dataset for clinics without hours
func HoursCoverage(fc *model.FeatureCollection) *HoursCoverageReport {
	report := &HoursCoverageReport{
		Total:        len(fc.Features),
		MissingHours: []string{},
	}

	boroughs := make(map[string]*BoroughCoverage)
	for _, f := range fc.Features {
		p := f.Properties
		borough := p.Borough
		if borough == "" {
			borough = "Unknown"
		}
		cov, ok := boroughs[borough]
		if !ok {
			cov = &BoroughCoverage{Borough: borough}
			boroughs[borough] = cov
		}
		cov.Total++
		if len(p.Hours) == 0 {
			cov.Missing++
			report.MissingHours = append(report.MissingHours, p.Name)
		}
	}

	for _, cov := range boroughs {
		report.ByBorough = append(report.ByBorough, *cov)
	}
	sort.Slice(report.ByBorough, func(i, j int) bool {
		return report.ByBorough[i].Borough < report.ByBorough[j].Borough
	})

	return report
}

// Print writes the report in the operator-facing text format
func (r *HoursCoverageReport) Print(w io.Writer) {
	fmt.Fprintf(w, "Total physical clinics: %d\n", r.Total)
	fmt.Fprintf(w, "Missing hours: %d\n", len(r.MissingHours))
	coverage := 0.0
	if r.Total > 0 {
		coverage = float64(r.Total-len(r.MissingHours)) / float64(r.Total) * 100
	}
	fmt.Fprintf(w, "Coverage: %.0f%%\n\n", coverage)

	fmt.Fprintln(w, "By borough:")
	for _, b := range r.ByBorough {
		fmt.Fprintf(w, "  %s: %d total, %d missing\n", b.Borough, b.Total, b.Missing)
	}

	fmt.Fprintln(w, "\nMissing hours:")
	for _, name := range r.MissingHours {
		fmt.Fprintf(w, " - %s\n", name)
	}
}
