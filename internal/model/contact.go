package model

import (
	"fmt"
	"regexp"
	"time"
)

var phoneDigits = regexp.MustCompile(`\D`)

// PhoneNumber is a single phone entry on a contact.
// Number always carries at least 10 digits; shorter strings are rejected
// at construction so a stored contact never holds an unusable number.
type PhoneNumber struct {
	Number    string `json:"number"`
	Extension string `json:"extension,omitempty"`
	Type      string `json:"type"`
}

// NewPhoneNumber validates the digit count and applies the default type.
// Only digits count toward the minimum; formatting characters never do.
func NewPhoneNumber(number, extension, phoneType string) (PhoneNumber, error) {
	digits := phoneDigits.ReplaceAllString(number, "")
	if len(digits) < 10 {
		return PhoneNumber{}, fmt.Errorf("phone number too short: %q", number)
	}
	if phoneType == "" {
		phoneType = "primary"
	}
	return PhoneNumber{Number: number, Extension: extension, Type: phoneType}, nil
}

// Address holds best-effort postal address components. Every field is
// optional; an Address with nothing set is treated as absent by callers.
type Address struct {
	Unit       string `json:"unit,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Empty reports whether no field is set.
func (a *Address) Empty() bool {
	if a == nil {
		return true
	}
	return a.Unit == "" && a.Street == "" && a.City == "" && a.State == "" &&
		a.PostalCode == "" && a.Country == ""
}

// AnyLocation reports whether at least one of street, city, state or
// postal code is set. Unit or country alone do not make an address.
func (a *Address) AnyLocation() bool {
	if a == nil {
		return false
	}
	return a.Street != "" || a.City != "" || a.State != "" || a.PostalCode != ""
}

// ExtractedContact is the result of one extraction call. RawText is the
// verbatim input and is never modified after construction; any fix-up
// produces a new record via Clone rather than mutating in place.
type ExtractedContact struct {
	ClientName       string             `json:"client_name,omitempty"`
	CompanyName      string             `json:"company_name,omitempty"`
	PhoneNumbers     []PhoneNumber      `json:"phone_numbers"`
	Email            string             `json:"email,omitempty"`
	Address          *Address           `json:"address,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	RawText          string             `json:"raw_text"`
	ExtractedAt      time.Time          `json:"extracted_at"`
	ConfidenceScores map[string]float64 `json:"confidence_scores,omitempty"`
}

// Clone returns a deep copy. Phone list, address and confidence map are
// owned exclusively by each record.
func (c *ExtractedContact) Clone() *ExtractedContact {
	if c == nil {
		return nil
	}
	out := *c
	out.PhoneNumbers = append([]PhoneNumber(nil), c.PhoneNumbers...)
	if c.Address != nil {
		addr := *c.Address
		out.Address = &addr
	}
	if c.ConfidenceScores != nil {
		out.ConfidenceScores = make(map[string]float64, len(c.ConfidenceScores))
		for k, v := range c.ConfidenceScores {
			out.ConfidenceScores[k] = v
		}
	}
	return &out
}

// HasData reports whether the record carries anything worth returning:
// a name, company, email, phone, notes, or any located address field.
func (c *ExtractedContact) HasData() bool {
	if c == nil {
		return false
	}
	return c.ClientName != "" || c.CompanyName != "" || c.Email != "" ||
		len(c.PhoneNumbers) > 0 || c.Notes != "" || c.Address.AnyLocation()
}
