package extraction

import (
	"regexp"
	"strings"

	"github.com/agenthands/rolodex/internal/model"
	"github.com/agenthands/rolodex/internal/validate"
)

var (
	tenDigitRun = regexp.MustCompile(`\b\d{10}\b`)
	usPhoneForm = regexp.MustCompile(`\b\d{10}\b|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	phoneJunk   = strings.NewReplacer("-", "", " ", "", "(", "", ")", "", ".", "")
)

// salvagePhones corrects the known model failure mode of conflating
// street numbers with phone numbers. Phones that already carry a sane
// US digit count pass through untouched; every other entry is
// re-scanned for exactly one embedded 10-digit run. If the list ends
// up empty, the original input text is scanned instead and any
// standard US formats are appended as primary numbers. Always returns
// a new record.
func salvagePhones(contact *model.ExtractedContact) *model.ExtractedContact {
	out := contact.Clone()

	var fixed []model.PhoneNumber
	for _, phone := range out.PhoneNumbers {
		digits := nonDigit.ReplaceAllString(phone.Number, "")
		if len(digits) == 10 || (len(digits) == 11 && digits[0] == '1') {
			fixed = append(fixed, phone)
			continue
		}
		// Scan the string as written first: a conflated "13567 2392184565"
		// still carries the real number as its own 10-digit run. Stripping
		// separators is the fallback for formatted variants.
		runs := tenDigitRun.FindAllString(phone.Number, -1)
		if len(runs) != 1 {
			runs = tenDigitRun.FindAllString(phoneJunk.Replace(phone.Number), -1)
		}
		if len(runs) != 1 {
			continue
		}
		salvaged, err := model.NewPhoneNumber(validate.NormalizePhone(runs[0]), phone.Extension, phone.Type)
		if err != nil {
			continue
		}
		fixed = append(fixed, salvaged)
	}
	if len(fixed) > 0 {
		out.PhoneNumbers = fixed
	}

	if len(out.PhoneNumbers) == 0 {
		seen := map[string]bool{}
		for _, match := range usPhoneForm.FindAllString(out.RawText, -1) {
			digits := phoneJunk.Replace(match)
			if len(digits) < 10 || seen[digits] {
				continue
			}
			phone, err := model.NewPhoneNumber(validate.NormalizePhone(match), "", "primary")
			if err != nil {
				continue
			}
			seen[digits] = true
			out.PhoneNumbers = append(out.PhoneNumbers, phone)
		}
	}
	return out
}
