package application

import "expvar"

// Process-wide counters served by /api/debug/vars.
var (
	statRegistrations         = expvar.NewInt("registrations")
	statRegistrationConflicts = expvar.NewInt("registration_conflicts")
	statLogins                = expvar.NewInt("logins")
	statLoginFailures         = expvar.NewInt("login_failures")
	statWelcomeFallbacks      = expvar.NewInt("welcome_fallbacks")
)
