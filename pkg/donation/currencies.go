package donation

// SupportedCurrencies 支持的国际捐赠币种
func SupportedCurrencies() map[string]string {
	return map[string]string{
		"INR": "Indian Rupee",
		"USD": "US Dollar",
		"EUR": "Euro",
		"GBP": "British Pound",
		"AUD": "Australian Dollar",
		"CAD": "Canadian Dollar",
		"SGD": "Singapore Dollar",
		"AED": "UAE Dirham",
		"MYR": "Malaysian Ringgit",
	}
}

func IsCurrencySupported(currency string) bool {
	_, ok := SupportedCurrencies()[currency]
	return ok
}
