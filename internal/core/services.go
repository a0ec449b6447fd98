package core

// Services bundles the service layer for the API server.
type Services struct {
	Authorizer *Authorizer
	Presence   *PresenceTracker
	APIKey     *APIKeyService
}

// NewServices wires the services against their stores.
func NewServices(dir Directory, keys KeyStore, presence PresenceStore) *Services {
	return &Services{
		Authorizer: NewAuthorizer(keys),
		Presence:   NewPresenceTracker(dir, presence),
		APIKey:     NewAPIKeyService(dir, keys),
	}
}
