package fastpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanExtract(t *testing.T) {
	e := New(nil)

	assert.True(t, e.CanExtract("Call me at 555-123-4567"))
	assert.True(t, e.CanExtract("Customer: Jane Doe"))
	assert.False(t, e.CanExtract("no digits or labels here"))
	assert.False(t, e.CanExtract(strings.Repeat("x", 1300)+" 555-123-4567"))
}

func TestShortDigitRunIsNotAPhone(t *testing.T) {
	e := New(nil)
	contact := e.Extract("Call Bob at 555-9876 regarding the project")
	require.NotNil(t, contact)
	assert.Empty(t, contact.PhoneNumbers)
}

func TestExtractBusinessCardStyleText(t *testing.T) {
	text := "John Smith from TechCorp called about the quarterly review. " +
		"Reach him at (555) 123-4567 ext. 234 or his mobile 555-987-6543. " +
		"Email: john.smith@techcorp.com " +
		"Office: Suite 1500, 123 Business Boulevard, San Francisco, CA 94105, USA"

	e := New(nil)
	contact := e.Extract(text)
	require.NotNil(t, contact)

	require.Len(t, contact.PhoneNumbers, 2)
	assert.Equal(t, "234", contact.PhoneNumbers[0].Extension)
	assert.Equal(t, "", contact.PhoneNumbers[1].Extension)

	assert.Equal(t, "john.smith@techcorp.com", contact.Email)

	require.NotNil(t, contact.Address)
	assert.Equal(t, "San Francisco", contact.Address.City)
	assert.Equal(t, "CA", contact.Address.State)
	assert.Equal(t, "94105", contact.Address.PostalCode)
	assert.Equal(t, "Suite 1500", contact.Address.Unit)
	assert.Equal(t, "123 Business Boulevard", contact.Address.Street)

	assert.Equal(t, text, contact.RawText)
	assert.NotNil(t, contact.ConfidenceScores)
	assert.Equal(t, 0.9, contact.ConfidenceScores["phone_numbers"])
}

func TestConfidenceScoresAreOwnedPerRecord(t *testing.T) {
	e := New(nil)
	first := e.Extract("Customer: Jane Doe Phone: 555-123-4567")
	require.NotNil(t, first)
	first.ConfidenceScores["phone_numbers"] = 0.0

	second := e.Extract("Customer: Jane Doe Phone: 555-123-4567")
	require.NotNil(t, second)
	assert.Equal(t, 0.9, second.ConfidenceScores["phone_numbers"])
}

func TestExtractIsIdempotent(t *testing.T) {
	text := "Customer: Jane Doe Phone: 555-123-4567 Address: 42 Oak Street, Springfield, IL 62704"
	e := New(nil)

	first := e.Extract(text)
	second := e.Extract(text)
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, first.PhoneNumbers, second.PhoneNumbers)
	assert.Equal(t, first.ClientName, second.ClientName)
	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.Notes, second.Notes)
}

func TestLabeledCustomerName(t *testing.T) {
	e := New(nil)
	contact := e.Extract("Customer: Jane Doe Phone: 555-123-4567")
	require.NotNil(t, contact)
	assert.Equal(t, "Jane Doe", contact.ClientName)
	require.Len(t, contact.PhoneNumbers, 1)
}

func TestContactAtCompanyPattern(t *testing.T) {
	e := New(nil)
	contact := e.Extract("Contact Mary Johnson at Acme Corp, phone 555-123-4567")
	require.NotNil(t, contact)
	assert.Equal(t, "Mary Johnson", contact.ClientName)
	assert.Equal(t, "Acme Corp", contact.CompanyName)
}

func TestLabeledAddressSection(t *testing.T) {
	e := New(nil)
	contact := e.Extract("Customer: Bob Address: 13567 Little Gem Cir, Fort Myers, Florida 33913 Service: garage door repair 555-123-4567")
	require.NotNil(t, contact)
	require.NotNil(t, contact.Address)
	assert.Equal(t, "FL", contact.Address.State)
	assert.Equal(t, "33913", contact.Address.PostalCode)
	assert.Equal(t, "Fort Myers", contact.Address.City)
	assert.Contains(t, contact.Address.Street, "Little Gem Cir")
	// The service description stays in notes.
	assert.Contains(t, contact.Notes, "garage door repair")
}

func TestMultiplePhonesPreserveOrder(t *testing.T) {
	e := New(nil)
	contact := e.Extract("Home 2395551234, work (239) 555-9876 please")
	require.NotNil(t, contact)
	require.Len(t, contact.PhoneNumbers, 2)
	assert.Contains(t, contact.PhoneNumbers[0].Number, "2395551234")
	assert.Contains(t, contact.PhoneNumbers[1].Number, "(239) 555-9876")
}

func TestNotesAbsorbLeftoverText(t *testing.T) {
	e := New(nil)
	contact := e.Extract("keypad not working, 2392184565, needs visit 8-10AM")
	require.NotNil(t, contact)
	require.Len(t, contact.PhoneNumbers, 1)
	assert.Contains(t, contact.Notes, "keypad not working")
	assert.Contains(t, contact.Notes, "needs visit")
	assert.NotContains(t, contact.Notes, "2392184565")
}
