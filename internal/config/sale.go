package config

type Sale struct {
	// LowStockAlertThreshold is the remaining stock under which a recorded sale raises an alert.
	LowStockAlertThreshold int `env:"SALE_LOW_STOCK_ALERT_THRESHOLD" envDefault:"10"`
}
