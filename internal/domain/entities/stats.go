package entities

import "fmt"

// DashboardStats is the derived aggregate shown on the dashboard home page.
// Rates are percentages rendered with one decimal place, matching the
// dashboard's display contract.
type DashboardStats struct {
	TotalDrills  int    `json:"totalDrills"`
	TotalTargets int    `json:"totalTargets"`
	ClickRate    string `json:"clickRate"`
	OpenRate     string `json:"openRate"`
	SuccessRate  string `json:"successRate"`
}

// ComputeDashboardStats aggregates the drill collection. Distinct targets are
// counted by contact. Success rate keeps the max(total,1) denominator so an
// empty collection reads as 0.0 rather than NaN.
func ComputeDashboardStats(drills []DrillRecord) DashboardStats {
	targets := make(map[string]struct{}, len(drills))
	var clicked, opened int
	for _, d := range drills {
		targets[d.TargetContact] = struct{}{}
		if d.Analytics.LinkClicked {
			clicked++
		}
		if d.Analytics.EmailOpened {
			opened++
		}
	}

	total := len(drills)
	var clickRate, openRate float64
	if total > 0 {
		clickRate = float64(clicked) / float64(total) * 100
		openRate = float64(opened) / float64(total) * 100
	}
	denom := total
	if denom < 1 {
		denom = 1
	}
	successRate := float64(total-clicked) / float64(denom) * 100

	return DashboardStats{
		TotalDrills:  total,
		TotalTargets: len(targets),
		ClickRate:    fmt.Sprintf("%.1f", clickRate),
		OpenRate:     fmt.Sprintf("%.1f", openRate),
		SuccessRate:  fmt.Sprintf("%.1f", successRate),
	}
}
