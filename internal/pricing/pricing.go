package pricing

import (
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// SurchargeRate is the bank charge added on top of the school fee share.
const SurchargeRate = 0.02

var defaultFees = map[string]int64{
	"MBA":     816450,
	"MSC_ACC": 425000,
	"MSC_FIN": 425000,
	"PGD_ACC": 275000,
	"PGD_MGT": 275000,
}

// Schedule maps a program code to its base total fee in whole currency units.
// A Schedule is never mutated after it is built.
type Schedule struct {
	fees map[string]int64
}

// NewSchedule copies fees into a new Schedule.
func NewSchedule(fees map[string]int64) *Schedule {
	return &Schedule{fees: maps.Clone(fees)}
}

// DefaultSchedule returns the compiled-in fee table.
func DefaultSchedule() *Schedule {
	return NewSchedule(defaultFees)
}

// LoadSchedule reads a program→fee table from a YAML (or JSON) file.
func LoadSchedule(path string) (*Schedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fee schedule: %w", err)
	}

	fees := map[string]int64{}
	if err := yaml.Unmarshal(b, &fees); err != nil {
		return nil, fmt.Errorf("parsing fee schedule %s: %w", path, err)
	}
	if len(fees) == 0 {
		return nil, fmt.Errorf("fee schedule %s is empty", path)
	}
	for program, fee := range fees {
		if strings.TrimSpace(program) == "" {
			return nil, fmt.Errorf("fee schedule %s: empty program code", path)
		}
		if fee <= 0 {
			return nil, fmt.Errorf("fee schedule %s: fee for %s must be positive, got %d", path, program, fee)
		}
	}

	return NewSchedule(fees), nil
}

// TotalFee returns the base fee for program and whether the program is known.
func (s *Schedule) TotalFee(program string) (int64, bool) {
	fee, ok := s.fees[program]
	return fee, ok
}

// Programs returns the known program codes in sorted order.
func (s *Schedule) Programs() []string {
	programs := maps.Keys(s.fees)
	slices.Sort(programs)
	return programs
}

// Fees returns a copy of the whole table.
func (s *Schedule) Fees() map[string]int64 {
	return maps.Clone(s.fees)
}

// Breakdown is what a payer is charged for a share of a program's fee.
type Breakdown struct {
	TotalFee    float64 `json:"totalFee"`
	SchoolFees  float64 `json:"schoolFees"`
	BankCharges float64 `json:"bankCharges"`
	TotalAmount float64 `json:"totalAmount"`
}

// Compute returns the breakdown for paying percentage percent of program's fee.
//
// An unknown program yields a zero breakdown rather than an error. The
// percentage is not range checked: negative or >100 values flow through the
// arithmetic as given.
func (s *Schedule) Compute(program string, percentage float64) Breakdown {
	fee, ok := s.TotalFee(program)
	if !ok {
		return Breakdown{}
	}

	totalFee := float64(fee)
	schoolFees := totalFee * percentage / 100
	bankCharges := schoolFees * SurchargeRate

	return Breakdown{
		TotalFee:    totalFee,
		SchoolFees:  schoolFees,
		BankCharges: bankCharges,
		TotalAmount: schoolFees + bankCharges,
	}
}

// ChargeAmount is TotalAmount rounded half away from zero to whole units.
func (b Breakdown) ChargeAmount() int64 {
	return int64(math.Round(b.TotalAmount))
}
