package extraction

// systemPrompt pins the output contract; everything that is not JSON is
// treated as a malformed response and retried.
const systemPrompt = "You MUST return ONLY valid JSON for contact extraction. No explanations, no code."

// extractionPrompt embeds the input text. Kept deliberately blunt: the
// most common failure mode of small local models is conflating street
// numbers with phone numbers, so the 10-digit rule is spelled out twice.
const extractionPrompt = `Extract contact information from this text: %s

Instructions:
1. Extract phone numbers (ONLY 10-digit sequences like 2392184565, not street numbers)
2. Extract addresses (street like "13567 Little Gem Cir", city, state, zip)
3. Extract names and emails if present
4. Put EVERYTHING ELSE in notes field (job references, service details, problems, times, etc.)

IMPORTANT: Phone numbers are 10 consecutive digits. Don't combine street numbers with phone numbers.

Rule: Extract actual values from the input text, not examples.
For notes: Include ALL text that isn't a phone number, address, or email.
Don't truncate the notes - include everything that doesn't fit in other fields.

Return this JSON with actual values:
{
  "client_name": null,
  "company_name": null,
  "email": null,
  "phone_numbers": [{"number": "actual phone number", "extension": null, "type": "primary"}],
  "address": {
    "unit": null,
    "street": "actual street",
    "city": "actual city",
    "state": "actual state",
    "postal_code": "actual zip",
    "country": "USA"
  },
  "notes": "copy all remaining text here"
}`
