package model

// ServiceInfo is the subset of the provider's getServiceInfo response used by
// the dashboard. Optional fields are zero when the provider omits them.
type ServiceInfo struct {
	Plan            string
	IPAddresses     []string
	PlanMonthlyData uint64
	DataCounter     uint64
	DataNextReset   int64 // Unix seconds; 0 when unknown.
	NodeLocation    string
	OS              string
}

// ServiceStatus is the presentation-ready status of one VPS account.
// Values are built per request and never mutated afterwards.
type ServiceStatus struct {
	VEID            string  `json:"veid"`
	Plan            string  `json:"plan"`
	IPAddress       string  `json:"ip_address"`
	PlanMonthlyData uint64  `json:"plan_monthly_data"`
	DataCounter     uint64  `json:"data_counter"`
	DataNextReset   int64   `json:"data_next_reset"`
	UsagePercentage float64 `json:"usage_percentage"`
	NodeLocation    string  `json:"node_location"`
	OS              string  `json:"os"`
}

// NewServiceStatus derives the status of account veid from its raw service info.
func NewServiceStatus(veid string, info ServiceInfo) ServiceStatus {
	var ip string
	if len(info.IPAddresses) > 0 {
		ip = info.IPAddresses[0]
	}

	return ServiceStatus{
		VEID:            veid,
		Plan:            info.Plan,
		IPAddress:       ip,
		PlanMonthlyData: info.PlanMonthlyData,
		DataCounter:     info.DataCounter,
		DataNextReset:   info.DataNextReset,
		UsagePercentage: UsagePercentage(info.DataCounter, info.PlanMonthlyData),
		NodeLocation:    info.NodeLocation,
		OS:              info.OS,
	}
}

// UsagePercentage returns used/allowance*100. A zero allowance yields exactly 0.
// The result is not capped at 100.
func UsagePercentage(used, allowance uint64) float64 {
	if allowance == 0 {
		return 0
	}
	return float64(used) / float64(allowance) * 100
}
