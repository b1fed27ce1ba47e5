package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"greenpark/internal/auth"
	"greenpark/internal/entities"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/service"
)

type errorBody struct {
	*apperrors.HTTPError
	MaintenanceWindows []entities.MaintenanceWindowInfo `json:"maintenance_windows,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: could not encode response: %v", err)
	}
}

// writeError maps an engine error to its status. Unclassified errors are
// logged here and reach the client as a generic message.
func writeError(w http.ResponseWriter, err error) {
	httpErr := apperrors.ToHTTP(err)
	if httpErr.Code == http.StatusInternalServerError {
		log.Printf("api: internal error: %v", err)
	}
	body := errorBody{HTTPError: httpErr}
	var mce *service.MaintenanceConflictError
	if errors.As(err, &mce) {
		body.MaintenanceWindows = service.WindowInfos(mce.Windows)
	}
	writeJSON(w, httpErr.Code, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, apperrors.ErrBadRequest(msg))
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "Invalid ID")
		return 0, false
	}
	return id, true
}

// actorFrom returns the staff actor set by the auth middleware, or a customer.
func actorFrom(r *http.Request) service.Actor {
	staff, ok := auth.StaffFromContext(r.Context())
	if !ok {
		return service.Actor{Role: service.ActorCustomer}
	}
	role := service.ActorStaff
	if staff.IsAdmin() {
		role = service.ActorAdmin
	}
	return service.Actor{Role: role, Ref: staff.Email}
}
