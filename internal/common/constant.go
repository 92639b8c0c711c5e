package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// AuthorizationPrefixes lists accepted token schemes, in lookup order.
var AuthorizationPrefixes = []string{"JWT ", "Bearer "}

// RequestIDHeaderName is echoed on every response.
const RequestIDHeaderName = "X-Request-ID"
