package middlewares

// gin context keys
const (
	CtxRequestID  = "request_id"
	CtxIdentityID = "auth.identityID"
	CtxEmail      = "auth.email"
	CtxSession    = "session.state"
)
