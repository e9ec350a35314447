package issuetracker

// ClientFactory builds a Client for a provider. The base URL comes from the
// issue link being resolved, so one factory serves many tracker instances.
type ClientFactory interface {
	NewClient(provider ProviderType, baseURL string) (Client, error)
}
