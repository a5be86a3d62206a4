package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings are the business knobs shared by the services.
type Settings struct {
	MaxRewardValue    decimal.Decimal
	FeatureCostPerDay decimal.Decimal
	RewardValidity    time.Duration
	MaxSolveTime      time.Duration
	CacheTTL          time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		MaxRewardValue:    decimal.NewFromInt(10000),
		FeatureCostPerDay: decimal.NewFromInt(99),
		RewardValidity:    30 * 24 * time.Hour,
		MaxSolveTime:      300 * time.Second,
		CacheTTL:          5 * time.Minute,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if !s.MaxRewardValue.IsPositive() {
		s.MaxRewardValue = d.MaxRewardValue
	}
	if s.FeatureCostPerDay.IsNegative() || s.FeatureCostPerDay.IsZero() {
		s.FeatureCostPerDay = d.FeatureCostPerDay
	}
	if s.RewardValidity <= 0 {
		s.RewardValidity = d.RewardValidity
	}
	if s.MaxSolveTime <= 0 {
		s.MaxSolveTime = d.MaxSolveTime
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = d.CacheTTL
	}
	return s
}
