package pricing

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCompute_ReferenceBreakdowns(t *testing.T) {
	s := DefaultSchedule()

	got := s.Compute("MBA", 50)
	want := Breakdown{TotalFee: 816450, SchoolFees: 408225, BankCharges: 8164.5, TotalAmount: 416389.5}
	if got != want {
		t.Fatalf("MBA@50 got %+v want %+v", got, want)
	}
	if amt := got.ChargeAmount(); amt != 416390 {
		t.Fatalf("MBA@50 charge amount got %d want %d", amt, 416390)
	}

	got = s.Compute("PGD_ACC", 100)
	want = Breakdown{TotalFee: 275000, SchoolFees: 275000, BankCharges: 5500, TotalAmount: 280500}
	if got != want {
		t.Fatalf("PGD_ACC@100 got %+v want %+v", got, want)
	}
	if amt := got.ChargeAmount(); amt != 280500 {
		t.Fatalf("PGD_ACC@100 charge amount got %d want %d", amt, 280500)
	}
}

func TestCompute_FormulaHoldsForEveryProgram(t *testing.T) {
	s := DefaultSchedule()
	for _, program := range s.Programs() {
		fee, _ := s.TotalFee(program)
		for _, p := range []float64{0, 1, 12.5, 33.3, 50, 75, 100} {
			b := s.Compute(program, p)
			school := float64(fee) * p / 100
			bank := school * SurchargeRate
			if b.TotalFee != float64(fee) || b.SchoolFees != school || b.BankCharges != bank || b.TotalAmount != school+bank {
				t.Fatalf("%s@%v got %+v", program, p, b)
			}
		}
	}
}

func TestCompute_UnknownProgramIsZero(t *testing.T) {
	b := DefaultSchedule().Compute("ASTRONAUTICS", 100)
	if b != (Breakdown{}) {
		t.Fatalf("unknown program got %+v want zero breakdown", b)
	}
	if b.ChargeAmount() != 0 {
		t.Fatalf("unknown program charge amount got %d", b.ChargeAmount())
	}
}

// Percentages outside 0..100 are accepted as given.
func TestCompute_PercentageNotRangeChecked(t *testing.T) {
	s := DefaultSchedule()

	b := s.Compute("PGD_ACC", -10)
	if b.SchoolFees != -27500 || b.BankCharges != -550 || b.TotalAmount != -28050 {
		t.Fatalf("negative percentage got %+v", b)
	}

	b = s.Compute("PGD_ACC", 200)
	if b.SchoolFees != 550000 || b.TotalAmount != 561000 {
		t.Fatalf(">100 percentage got %+v", b)
	}

	b = s.Compute("MBA", math.NaN())
	if !math.IsNaN(b.TotalAmount) {
		t.Fatalf("NaN percentage got %+v", b)
	}

	b = s.Compute("MBA", math.Inf(1))
	if !math.IsInf(b.TotalAmount, 1) {
		t.Fatalf("+Inf percentage got %+v", b)
	}
}

func TestSchedule_Immutable(t *testing.T) {
	src := map[string]int64{"MBA": 100}
	s := NewSchedule(src)
	src["MBA"] = 1

	fees := s.Fees()
	fees["MBA"] = 2
	fees["NEW"] = 3

	if fee, _ := s.TotalFee("MBA"); fee != 100 {
		t.Fatalf("schedule mutated through caller map, fee=%d", fee)
	}
	if _, ok := s.TotalFee("NEW"); ok {
		t.Fatalf("schedule gained a program through Fees() copy")
	}
}

func TestSchedule_ProgramsSorted(t *testing.T) {
	s := NewSchedule(map[string]int64{"PGD_ACC": 1, "MBA": 2, "MSC_FIN": 3})
	got := s.Programs()
	want := []string{"MBA", "MSC_FIN", "PGD_ACC"}
	if len(got) != len(want) {
		t.Fatalf("programs got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("programs got %v want %v", got, want)
		}
	}
}

func TestLoadSchedule(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "fees.yaml")
	if err := os.WriteFile(path, []byte("MBA: 900000\nPGD_ACC: 300000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSchedule(path)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if fee, ok := s.TotalFee("MBA"); !ok || fee != 900000 {
		t.Fatalf("MBA fee got %d ok=%v", fee, ok)
	}

	jsonPath := filepath.Join(dir, "fees.json")
	if err := os.WriteFile(jsonPath, []byte(`{"MBA": 816450}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSchedule(jsonPath); err != nil {
		t.Fatalf("load json: %v", err)
	}

	cases := map[string]string{
		"empty.yaml":    "",
		"zero.yaml":     "MBA: 0\n",
		"negative.yaml": "MBA: -5\n",
		"broken.yaml":   "MBA: [1, 2\n",
	}
	for name, body := range cases {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSchedule(p); err == nil {
			t.Fatalf("LoadSchedule(%s) expected error", name)
		}
	}

	if _, err := LoadSchedule(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
