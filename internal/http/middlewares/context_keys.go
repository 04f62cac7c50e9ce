package middlewares

const (
	CtxRequestID = "request_id"
	CtxSubject   = "auth.subject"
	CtxTokenID   = "auth.jti"
)
