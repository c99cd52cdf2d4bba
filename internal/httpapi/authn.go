package httpapi

import (
	"net/http"

	"sadco.org/internal/auth"
	"sadco.org/internal/scope"
)

const authHeader = "Authorization"

// authorize resolves the caller's grant for the required scope, writing the
// error response itself on failure. Handlers call it first and bail out when
// ok is false.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, required scope.Scope) (auth.Authorized, bool) {
	who, err := a.authorizer.Authorize(r.Context(), r.Header.Get(authHeader), required)
	if err != nil {
		handleServiceError(w, r, err)
		return auth.Authorized{}, false
	}
	return who, true
}
