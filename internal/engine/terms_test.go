package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestTermsStandardBond(t *testing.T) {
	options := SuggestTerms(d("50000"), d("600"), DefaultSettings())

	want := []struct {
		label  string
		amount string
	}{{"4 wk", "150"}, {"6 wk", "100"}, {"10 wk", "60"}}
	for i, w := range want {
		assert.Equal(t, i+1, options[i].Index)
		assert.Equal(t, w.label, options[i].Label)
		assert.Equal(t, FrequencyWeekly, options[i].Frequency)
		assertAmount(t, w.amount, options[i].Amount)
	}
}

func TestSuggestTermsHighBond(t *testing.T) {
	options := SuggestTerms(d("150000"), d("9000"), DefaultSettings())

	want := []struct {
		label  string
		amount string
	}{{"3 mo", "3000"}, {"6 mo", "1500"}, {"9 mo", "1000"}}
	for i, w := range want {
		assert.Equal(t, w.label, options[i].Label)
		assert.Equal(t, FrequencyMonthly, options[i].Frequency)
		assertAmount(t, w.amount, options[i].Amount)
	}
}

func TestSuggestTermsThresholdIsInclusive(t *testing.T) {
	assert.True(t, IsHighBond(d("100000"), DefaultSettings()))
	assert.False(t, IsHighBond(d("99999.99"), DefaultSettings()))
}

func TestSuggestTermsRoundsToCents(t *testing.T) {
	options := SuggestTerms(d("1000"), d("100"), DefaultSettings())
	assertAmount(t, "25", options[0].Amount)
	assertAmount(t, "16.67", options[1].Amount)
	assertAmount(t, "10", options[2].Amount)
}

func TestSuggestTermsNothingRemaining(t *testing.T) {
	options := SuggestTerms(d("5000"), d("-20"), DefaultSettings())
	for _, o := range options {
		assert.True(t, o.Amount.IsZero())
		assert.NotEmpty(t, o.Label)
	}
}
