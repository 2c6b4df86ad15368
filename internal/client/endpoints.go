package client

const (
	endpointLogin      = "/login"
	endpointNewSession = "/session/new"
	endpointSessions   = "/sessions"
	endpointHistory    = "/session/%s/history" // GET
	endpointQuery      = "/query"
	endpointHealth     = "/health"
)
