package endpoints

import (
	"github.com/jaguuai/invoice-extraction-system/internal/api"
)

// All returns every endpoint, in route registration order.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&StatusEndpoint{},
		&AnalyzeEndpoint{},
		&ProcessEndpoint{},
	}
}
