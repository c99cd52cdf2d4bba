package httpapi

import (
	"net/http"

	"sadco.org/internal/scope"
)

func (a *API) handleMyDownloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	who, ok := a.authorize(w, r, scope.DownloadRead)
	if !ok {
		return
	}

	page, size, err := auditPaging(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.audits.ListByCaller(r.Context(), who.ClientID, who.UserID, page, size)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleAllDownloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, scope.DownloadAdmin); !ok {
		return
	}

	page, size, err := auditPaging(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.audits.ListAll(r.Context(), page, size)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func auditPaging(r *http.Request) (page, size int, err error) {
	page, size = 1, 50
	q := r.URL.Query()
	if v, err := queryInt(q, "page"); err != nil {
		return 0, 0, err
	} else if v != nil {
		page = *v
	}
	if v, err := queryInt(q, "size"); err != nil {
		return 0, 0, err
	} else if v != nil {
		size = *v
	}
	return page, size, nil
}
