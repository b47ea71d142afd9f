package domain

import "net/http"

// AdminGateway fronts the external CMS administration interface mounted under
// the reserved route prefix. The site never implements the interface itself.
type AdminGateway interface {
	http.Handler
	Available() bool
}
