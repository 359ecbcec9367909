package types

const ServiceName = "auth-service"

// HeaderRequestID carries the request id in requests and responses.
const HeaderRequestID = "X-Request-ID"

// Routing keys of events published on the auth exchange
const (
	RoutingKeyUserRegistered = "user.registered"
	RoutingKeyUserLoggedIn   = "user.logged_in"
)
