package web

import (
	"time"

	"github.com/ericfisherdev/vpspanel/internal/domain/model"
)

// infoPage is the name of the dashboard template.
const infoPage = "info-page"

// toInfoPageContext builds the variables passed to the info-page template.
// vps_list carries the statuses; the totals feed the summary header.
func toInfoPageContext(statuses []model.ServiceStatus, now time.Time) map[string]any {
	var used, allowance uint64
	for _, s := range statuses {
		used += s.DataCounter
		allowance += s.PlanMonthlyData
	}

	return map[string]any{
		"vps_list":                statuses,
		"generated_at":            now.UTC().Format(time.RFC3339),
		"total_data_counter":      used,
		"total_plan_monthly_data": allowance,
		"total_usage_percentage":  model.UsagePercentage(used, allowance),
	}
}
