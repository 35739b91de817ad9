package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alovak/tuitionpay/internal/pricing"
)

var (
	flagProgram    = flag.String("program", "", "program code, e.g. MBA")
	flagPercentage = flag.Float64("percentage", 100, "share of the program fee being paid")
	flagFees       = flag.String("fees", "", "fee schedule file (YAML/JSON); defaults to the built-in table")
	flagRelay      = flag.String("relay", "", "relay base URL; when set the quote comes from POST /api/calculate-payment")
	flagList       = flag.Bool("list", false, "list known programs and exit")
	flagJSON       = flag.Bool("json", false, "print the breakdown as JSON")
)

func main() {
	flag.Parse()

	fees := pricing.DefaultSchedule()
	if *flagFees != "" {
		fees = must1(pricing.LoadSchedule(*flagFees))
	}

	if *flagList {
		for _, p := range fees.Programs() {
			fee, _ := fees.TotalFee(p)
			fmt.Printf("%-10s %d\n", p, fee)
		}
		return
	}

	program := normalizeProgram(*flagProgram)
	if program == "" {
		fail("-program is required (use -list to see codes)")
	}

	var b pricing.Breakdown
	if *flagRelay != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b = must1(remoteQuote(ctx, *flagRelay, program, *flagPercentage))
	} else {
		if _, ok := fees.TotalFee(program); !ok {
			fmt.Fprintf(os.Stderr, "warning: unknown program %s quotes as zero\n", program)
		}
		b = fees.Compute(program, *flagPercentage)
	}

	if *flagJSON {
		enc, _ := json.MarshalIndent(b, "", "  ")
		fmt.Println(string(enc))
		return
	}

	fmt.Printf("PROGRAM: %s @ %g%%\n", program, *flagPercentage)
	fmt.Printf("TOTAL FEE:    %12.2f\n", b.TotalFee)
	fmt.Printf("SCHOOL FEES:  %12.2f\n", b.SchoolFees)
	fmt.Printf("BANK CHARGES: %12.2f\n", b.BankCharges)
	fmt.Printf("TOTAL:        %12.2f  (charged %d)\n", b.TotalAmount, b.ChargeAmount())
}

// normalizeProgram upper-cases the code and joins words with underscores,
// so "pgd acc" and "PGD_ACC" name the same program.
func normalizeProgram(s string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	return strings.Join(fields, "_")
}

func remoteQuote(ctx context.Context, base, program string, percentage float64) (pricing.Breakdown, error) {
	body, _ := json.Marshal(map[string]any{"program": program, "percentage": percentage})
	target := strings.TrimRight(base, "/") + "/api/calculate-payment"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return pricing.Breakdown{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return pricing.Breakdown{}, fmt.Errorf("calculate-payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return pricing.Breakdown{}, fmt.Errorf("calculate-payment status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var b pricing.Breakdown
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return pricing.Breakdown{}, fmt.Errorf("decode calculate-payment: %w", err)
	}
	return b, nil
}

func must1[T any](v T, err error) T {
	if err != nil {
		fail("%v", err)
	}
	return v
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
