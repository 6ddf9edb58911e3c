// Package finance projects gross and net earnings from an hourly rate
// using a simplified German (Bayern) tax model.
package finance

import "github.com/radum/pontaj/internal/timeutil"

const (
	hoursPerDay    = 8
	weeksPerMonth  = 4.33
	weeksPerYear   = 52
	monthsPerYear  = 12
	basicAllowance = 10908
	upperBracket   = 62810

	incomeTaxBaseRate     = 0.14
	incomeTaxProgressRate = 0.2397
	incomeTaxTopRate      = 0.42
	socialRate            = 0.20
	solidarityRate        = 0.00825

	healthRate       = 0.146
	pensionRate      = 0.186
	unemploymentRate = 0.024
	careRate         = 0.031
)

// Settings holds the projection inputs. Tax and social class are kept
// for display; the simplified model only distinguishes class 1.
type Settings struct {
	HourlyRate  float64
	WeeklyHours float64
	TaxClass    int
	SocialClass int
}

// DefaultSettings mirrors the app defaults.
func DefaultSettings() Settings {
	return Settings{
		HourlyRate:  16.5,
		WeeklyHours: 40,
		TaxClass:    1,
		SocialClass: 1,
	}
}

// Income holds one figure per projection horizon.
type Income struct {
	Hourly  float64
	Daily   float64
	Weekly  float64
	Monthly float64
	Yearly  float64
}

// Taxes breaks the yearly tax load into its components.
type Taxes struct {
	IncomeTax           float64
	SocialContributions float64
	SolidaritySurcharge float64
	Total               float64
}

// SocialBreakdown splits the yearly social contributions by insurance
// branch.
type SocialBreakdown struct {
	Health       float64
	Pension      float64
	Unemployment float64
	Care         float64
	Total        float64
}

// Breakdown is the full projection.
type Breakdown struct {
	Gross  Income
	Net    Income
	Taxes  Taxes
	Social SocialBreakdown
}

// Gross projects gross income across all horizons. A day counts eight
// hours, a month 4.33 weeks.
func (s Settings) Gross() Income {
	weekly := s.HourlyRate * s.WeeklyHours

	return Income{
		Hourly:  s.HourlyRate,
		Daily:   s.HourlyRate * hoursPerDay,
		Weekly:  weekly,
		Monthly: weekly * weeksPerMonth,
		Yearly:  weekly * weeksPerYear,
	}
}

// YearlyTaxes computes the tax load on the projected yearly gross.
func (s Settings) YearlyTaxes() Taxes {
	yearly := s.Gross().Yearly

	var incomeTax float64

	if yearly > basicAllowance {
		if yearly <= upperBracket {
			taxable := yearly - basicAllowance
			incomeTax = taxable*incomeTaxBaseRate +
				(taxable-basicAllowance)*incomeTaxProgressRate
		} else {
			incomeTax = yearly * incomeTaxTopRate
		}
	}

	social := yearly * socialRate
	solidarity := incomeTax * solidarityRate

	return Taxes{
		IncomeTax:           incomeTax,
		SocialContributions: social,
		SolidaritySurcharge: solidarity,
		Total:               incomeTax + social + solidarity,
	}
}

// Calculate produces the full gross/net/tax breakdown.
func (s Settings) Calculate() Breakdown {
	gross := s.Gross()
	taxes := s.YearlyTaxes()

	yearlyHours := s.WeeklyHours * weeksPerYear
	taxPerHour := 0.0

	if yearlyHours > 0 {
		taxPerHour = taxes.Total / yearlyHours
	}

	net := Income{
		Hourly:  clamp(gross.Hourly - taxPerHour),
		Daily:   clamp(gross.Daily - taxPerHour*hoursPerDay),
		Weekly:  clamp(gross.Weekly - taxes.Total/weeksPerYear),
		Monthly: clamp(gross.Monthly - taxes.Total/monthsPerYear),
		Yearly:  clamp(gross.Yearly - taxes.Total),
	}

	return Breakdown{
		Gross: gross,
		Net:   net,
		Taxes: taxes,
		Social: SocialBreakdown{
			Health:       gross.Yearly * healthRate,
			Pension:      gross.Yearly * pensionRate,
			Unemployment: gross.Yearly * unemploymentRate,
			Care:         gross.Yearly * careRate,
			Total:        gross.Yearly * socialRate,
		},
	}
}

// Earned converts logged work time into gross and net amounts using the
// effective hourly rates.
func (s Settings) Earned(workMs int64) (gross, net float64) {
	b := s.Calculate()
	hours := float64(workMs) / float64(timeutil.MsInHour)

	return hours * b.Gross.Hourly, hours * b.Net.Hourly
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}

	return v
}
