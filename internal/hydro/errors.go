package hydro

// Typed errors for the portal client. Callers branch on these with
// errors.As; every type wraps its cause so the chain stays inspectable.

// AuthError represents a login or session failure: a rejected login form,
// an error banner after submit, or any failure during the authenticated
// navigation sequence. The session is assumed invalid afterwards and the
// next refresh re-authenticates from scratch.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Cause }

// InvalidHTMLError indicates structurally unexpected markup: an empty
// response, a missing consumption table, or zero parseable rows.
type InvalidHTMLError struct {
	Message string
}

func (e *InvalidHTMLError) Error() string { return e.Message }

// AlertDialogError indicates the portal rendered a visible error banner on
// an otherwise structurally valid page. Detected before structural checks,
// since an error page may legitimately lack the expected table.
type AlertDialogError struct {
	Message string
}

func (e *AlertDialogError) Error() string { return e.Message }

// InvalidXMLError is reserved for the legacy XML consumption endpoint.
type InvalidXMLError struct {
	Message string
}

func (e *InvalidXMLError) Error() string { return e.Message }

// InvalidDataError indicates a response that parsed but carried unusable
// data, such as malformed account JSON.
type InvalidDataError struct {
	Message string
	Cause   error
}

func (e *InvalidDataError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *InvalidDataError) Unwrap() error { return e.Cause }

// ParamError indicates invalid caller-supplied input, such as missing
// credentials.
type ParamError struct {
	Message string
}

func (e *ParamError) Error() string { return e.Message }
