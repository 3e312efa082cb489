package domain

// DashboardStats is the fixed-shape aggregation served to the dashboard page.
// Status bucket names follow the ERP's Italian selection values.
type DashboardStats struct {
	TotalStations     int                 `json:"total_stations"`
	ActiveSessions    int                 `json:"active_sessions"`
	MonthlyKwh        float64             `json:"monthly_kwh"`
	TotalUsers        int                 `json:"total_users"`
	TotalCondominiums int                 `json:"total_condominiums"`
	StationsByStatus  StationStatusCounts `json:"stations_by_status"`
}

// StationStatusCounts buckets charging stations by operational status.
type StationStatusCounts struct {
	Disponibile  int `json:"disponibile"`
	InUso        int `json:"in_uso"`
	Manutenzione int `json:"manutenzione"`
	Offline      int `json:"offline"`
}
