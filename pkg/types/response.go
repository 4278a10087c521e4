package types

// SuccessEnvelope wraps every 2xx payload the API returns.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Message is safe for clients;
// Details carries field-level context only for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
