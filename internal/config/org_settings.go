package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sjperalta/bailbooks-api/internal/engine"
)

// OrgSettings are the organization-level knobs of the premium engine. They are read
// once at startup and passed explicitly to every engine call.
type OrgSettings struct {
	PremiumRate       decimal.Decimal `json:"premium_rate"`
	DownPaymentRatio  decimal.Decimal `json:"down_payment_ratio"`
	HighBondThreshold decimal.Decimal `json:"high_bond_threshold"`
	AgingBoundaries   []int           `json:"aging_boundaries"`
	Currency          string          `json:"currency"`
	AgencyName        string          `json:"agency_name"`
}

// orgSettingsFile mirrors the YAML document. Amounts are strings so they are parsed
// as decimals, never through float64.
type orgSettingsFile struct {
	PremiumRate       string `yaml:"premium_rate"`
	DownPaymentRatio  string `yaml:"down_payment_ratio"`
	HighBondThreshold string `yaml:"high_bond_threshold"`
	AgingBoundaries   []int  `yaml:"aging_boundaries"`
	Currency          string `yaml:"currency"`
	AgencyName        string `yaml:"agency_name"`
}

// DefaultOrgSettings returns the stock organization settings.
func DefaultOrgSettings() OrgSettings {
	s := engine.DefaultSettings()
	return OrgSettings{
		PremiumRate:       s.PremiumRate,
		DownPaymentRatio:  s.DownPaymentRatio,
		HighBondThreshold: s.HighBondThreshold,
		AgingBoundaries:   s.AgingBoundaries,
		Currency:          "USD",
		AgencyName:        "Bail Books",
	}
}

// LoadOrgSettings overlays the YAML file at path onto the defaults. An empty path
// yields the defaults.
func LoadOrgSettings(path string) (OrgSettings, error) {
	settings := DefaultOrgSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read org settings: %w", err)
	}
	if err := settings.overlay(data); err != nil {
		return settings, fmt.Errorf("parse org settings %s: %w", path, err)
	}
	if err := settings.ToEngine().Validate(); err != nil {
		return settings, fmt.Errorf("invalid org settings %s: %w", path, err)
	}
	return settings, nil
}

func (s *OrgSettings) overlay(data []byte) error {
	var file orgSettingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	amounts := []struct {
		raw string
		dst *decimal.Decimal
		key string
	}{
		{file.PremiumRate, &s.PremiumRate, "premium_rate"},
		{file.DownPaymentRatio, &s.DownPaymentRatio, "down_payment_ratio"},
		{file.HighBondThreshold, &s.HighBondThreshold, "high_bond_threshold"},
	}
	for _, a := range amounts {
		if a.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(a.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", a.key, err)
		}
		*a.dst = v
	}

	if len(file.AgingBoundaries) > 0 {
		s.AgingBoundaries = file.AgingBoundaries
	}
	if file.Currency != "" {
		s.Currency = file.Currency
	}
	if file.AgencyName != "" {
		s.AgencyName = file.AgencyName
	}
	return nil
}

// ToEngine converts the settings to the engine's parameter struct.
func (s OrgSettings) ToEngine() engine.Settings {
	return engine.Settings{
		PremiumRate:       s.PremiumRate,
		DownPaymentRatio:  s.DownPaymentRatio,
		HighBondThreshold: s.HighBondThreshold,
		AgingBoundaries:   append([]int(nil), s.AgingBoundaries...),
	}
}
