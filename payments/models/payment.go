package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Percentage is the share of a program's fee being paid. It decodes from a
// JSON number or from a numeric string such as "50".
type Percentage float64

func (p *Percentage) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("percentage must be a number, got %s", string(b))
	}
	*p = Percentage(v)
	return nil
}

// Valid reports whether p is present and finite.
func (p *Percentage) Valid() bool {
	return p != nil && !math.IsNaN(float64(*p)) && !math.IsInf(float64(*p), 0)
}

// PaymentRequest is what the portal submits to start a tuition payment.
// Any amount the client may have computed is ignored.
type PaymentRequest struct {
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Gender     string      `json:"gender"`
	Program    string      `json:"program"`
	Percentage *Percentage `json:"percentage"`
}

// MissingFields lists the required text fields that are empty.
func (r PaymentRequest) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"fullName", r.FullName},
		{"email", r.Email},
		{"phone", r.Phone},
		{"gender", r.Gender},
		{"program", r.Program},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type CalculateRequest struct {
	Program    string      `json:"program"`
	Percentage *Percentage `json:"percentage"`
}

type PaymentResponse struct {
	PaymentURL string `json:"payment_url"`
	// TransactionRef is logged, not returned to the client.
	TransactionRef string `json:"-"`
}

type FeeStructureResponse struct {
	FeeStructure map[string]int64 `json:"feeStructure"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
