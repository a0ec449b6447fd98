package request

// ValidateAPIKey holds the request body for validating an API key.
type ValidateAPIKey struct {
	APIKey             string `json:"api_key" validate:"required"`
	RequiredPermission string `json:"required_permission"`
	// CheckRateLimit controls usage counting; absent means true.
	CheckRateLimit *bool `json:"check_rate_limit"`
}

// CountUsage reports whether a successful validation should be counted.
func (v ValidateAPIKey) CountUsage() bool {
	return v.CheckRateLimit == nil || *v.CheckRateLimit
}

// CheckPermission holds the request body for checking a single permission.
type CheckPermission struct {
	APIKey     string `json:"api_key" validate:"required"`
	Permission string `json:"permission" validate:"required"`
}

// ParseAPIKey holds the request body for decoding a key literal.
type ParseAPIKey struct {
	APIKey string `json:"api_key" validate:"required"`
}
