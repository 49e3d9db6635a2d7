package models

import "time"

// Interval is the time span a reading covers, at day granularity.
type Interval struct {
	Start            time.Time  `json:"start"`
	End              time.Time  `json:"end"`
	BillingPeriodEnd *time.Time `json:"billing_period_end,omitempty"`
}

// DailyElectricity represents a single day's electricity usage
type DailyElectricity struct {
	Consumption float64  `json:"consumption"` // kWh
	Cost        float64  `json:"cost"`        // dollars
	Interval    Interval `json:"interval"`
	IsEstimate  bool     `json:"is_estimate"`
}

// Rates holds the tiered residential rate constants. These are carried
// through for downstream cost modeling, not derived from portal data.
type Rates struct {
	Step1Rate float64 `json:"step1_rate"` // $/kWh below threshold
	Step2Rate float64 `json:"step2_rate"` // $/kWh above threshold
	Threshold float64 `json:"threshold"`  // kWh per billing period
}

// Account holds portal account details. Portal flows that skip account
// selection leave this unset on the aggregate.
type Account struct {
	AccountID string                 `json:"account_id"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Status    string                 `json:"status"`
	Address   map[string]interface{} `json:"address"`
}

// DailyUsage is one snapshot of the portal's consumption table.
// Electricity rows are kept in the order the table rendered them.
type DailyUsage struct {
	Account     *Account           `json:"account,omitempty"`
	Interval    Interval           `json:"interval"`
	Rates       Rates              `json:"rates"`
	Electricity []DailyElectricity `json:"electricity"`
}

// Latest returns the most recent reading in the snapshot.
func (u *DailyUsage) Latest() (DailyElectricity, bool) {
	if u == nil || len(u.Electricity) == 0 {
		return DailyElectricity{}, false
	}
	return u.Electricity[len(u.Electricity)-1], true
}
