package response

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeInvalidKey             Code = "AUTH_001"
	CodeKeyExpired             Code = "AUTH_002"
	CodeInsufficientPermission Code = "AUTH_003"
	CodeKeyDisabled            Code = "AUTH_004"
	CodeAuthUnavailable        Code = "AUTH_UNAVAILABLE"

	CodeActivityUnavailable Code = "ACTIVITY_001"
	CodeActivityInvalid     Code = "ACTIVITY_002"

	CodeStoreUnavailable Code = "STORE_001"
	CodeBadRequest       Code = "REQUEST_001"
	CodeUnauthorized     Code = "REQUEST_002"

	CodeKeyNotFound    Code = "KEY_001"
	CodeKeyNameTaken   Code = "KEY_002"
	CodeTenantNotFound Code = "TENANT_001"
	CodeAgentNotFound  Code = "AGENT_001"
	CodeInternal       Code = "INTERNAL_001"
)
