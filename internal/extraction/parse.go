package extraction

import (
	"regexp"
	"strings"
	"time"

	"github.com/agenthands/rolodex/internal/model"
	"github.com/agenthands/rolodex/internal/validate"
)

const extPlaceholder = "ext or null"

var (
	nonDigit   = regexp.MustCompile(`\D`)
	spaceRuns  = regexp.MustCompile(`\s+`)
	commaRuns  = regexp.MustCompile(`,\s*,`)
	tailComma  = regexp.MustCompile(`,\s*$`)
	extMarkers = regexp.MustCompile(`(?i)ext|x`)
)

// notProvided recognizes the literal sentinel models use for absent
// fields.
func notProvided(s string) bool {
	return strings.Contains(strings.ToLower(s), "not provided")
}

// parseContact reconciles the raw model JSON into a contact record.
// Field-level failures (unparseable phone, bogus email) null or drop the
// offending field and never abort the whole extraction.
func parseContact(raw *rawContact, rawText string) *model.ExtractedContact {
	var phones []model.PhoneNumber
	for _, p := range raw.PhoneNumbers {
		if p.Number == "" {
			continue
		}
		number := p.Number
		extension := p.Extension
		if !p.Bare && extMarkers.MatchString(number) {
			// An inline marker in the number wins only over a missing or
			// placeholder extension field.
			stripped, inlineExt := validate.ExtractExtension(number)
			if inlineExt != "" && (extension == "" || extension == extPlaceholder) {
				extension = inlineExt
			}
			if inlineExt != "" {
				number = stripped
			}
		}
		if extension == extPlaceholder {
			extension = ""
		}
		phone, err := model.NewPhoneNumber(validate.NormalizePhone(number), extension, p.Type)
		if err != nil {
			continue
		}
		phones = append(phones, phone)
	}

	// The address is copied field-by-field; the model is assumed closer
	// to ground truth than our heuristics, so no validation here.
	var address *model.Address
	if raw.Address != nil {
		addr := model.Address{
			Unit:       string(raw.Address.Unit),
			Street:     string(raw.Address.Street),
			City:       string(raw.Address.City),
			State:      string(raw.Address.State),
			PostalCode: string(raw.Address.PostalCode),
			Country:    string(raw.Address.Country),
		}
		if !addr.Empty() {
			address = &addr
		}
	}

	clientName := string(raw.ClientName)
	if notProvided(clientName) {
		clientName = ""
	}
	companyName := string(raw.CompanyName)
	if notProvided(companyName) {
		companyName = ""
	}
	email := string(raw.Email)
	if notProvided(email) || !strings.Contains(email, "@") {
		email = ""
	}

	notes := cleanNotes(string(raw.Notes), phones, address)

	return &model.ExtractedContact{
		ClientName:   clientName,
		CompanyName:  companyName,
		PhoneNumbers: phones,
		Email:        email,
		Address:      address,
		Notes:        notes,
		RawText:      rawText,
		ExtractedAt:  time.Now(),
	}
}

// cleanNotes strips already-extracted information out of the notes
// field: the trailing 10 digits of every known phone and the literal
// text of every address component, followed by whitespace and comma
// cleanup.
func cleanNotes(notes string, phones []model.PhoneNumber, address *model.Address) string {
	if notes == "" || notProvided(notes) {
		return ""
	}
	for _, phone := range phones {
		digits := nonDigit.ReplaceAllString(phone.Number, "")
		if len(digits) < 10 {
			continue
		}
		re, err := regexp.Compile(`\b` + digits[len(digits)-10:] + `\b`)
		if err == nil {
			notes = re.ReplaceAllString(notes, "")
		}
	}
	if address != nil {
		for _, component := range []string{address.Street, address.City, address.State, address.PostalCode} {
			if component != "" {
				notes = strings.ReplaceAll(notes, component, "")
			}
		}
	}
	notes = spaceRuns.ReplaceAllString(notes, " ")
	notes = commaRuns.ReplaceAllString(notes, ",")
	notes = tailComma.ReplaceAllString(notes, "")
	notes = strings.TrimSpace(notes)
	if notes == "" || notes == "," {
		return ""
	}
	return notes
}
