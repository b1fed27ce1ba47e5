package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lib/pq"
	"gopkg.in/guregu/null.v4"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	"greenpark/internal/service"
	"greenpark/internal/utils"
)

type AdminHandler struct {
	Service *service.ReservationService
	Admin   *service.AdminService
	VIP     *service.VIPService
}

func NewAdminHandler(svc *service.ReservationService, admin *service.AdminService, vip *service.VIPService) *AdminHandler {
	return &AdminHandler{Service: svc, Admin: admin, VIP: vip}
}

// ---- reservations (staff) ----

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.ReservationFilter{
		Date:   q.Get("date"),
		Status: db.ReservationStatus(q.Get("status")),
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if raw := q.Get(key); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				badRequest(w, "Invalid "+key)
				return
			}
			*dst = v
		}
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(w, "Invalid category_id")
			return
		}
		filter.CategoryID = id
	}

	list, err := h.Service.ListReservations(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.Service.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponse(*res, h.Service.Now()))
}

// CreateReservation books on behalf of a driver, walk-ins included.
func (h *AdminHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ReservationRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Service.CreateReservation(r.Context(), &req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.ToResponse(*res, h.Service.Now()))
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req entities.StatusRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Service.TransitionStatus(r.Context(), id, db.ReservationStatus(req.Status), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponse(*res, h.Service.Now()))
}

func (h *AdminHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListOverdue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	now := h.Service.Now()
	out := make([]entities.ReservationResponse, 0, len(list))
	for _, res := range list {
		out = append(out, service.ToResponse(res, now))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- catalog (admin) ----

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Admin.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c db.ParkingCategory
	if !decode(w, r, &c) {
		return
	}
	if err := h.Admin.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var c db.ParkingCategory
	if !decode(w, r, &c) {
		return
	}
	c.ID = id
	if err := h.Admin.UpdateCategory(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Capacity int `json:"capacity"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Admin.UpdateCapacity(r.Context(), id, req.Capacity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Admin.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// dateRange is the wire form of an inclusive calendar date range.
type dateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (d dateRange) parse() (time.Time, time.Time, bool) {
	start, err := utils.ParseDate(d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := utils.ParseDate(d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

type specialPriceRequest struct {
	dateRange
	CategoryID int64  `json:"category_id"`
	Price      int64  `json:"price"`
	Reason     string `json:"reason"`
	Active     *bool  `json:"active"`
}

func (req specialPriceRequest) toModel() (*db.SpecialPrice, bool) {
	start, end, ok := req.parse()
	if !ok {
		return nil, false
	}
	return &db.SpecialPrice{
		CategoryID: req.CategoryID,
		StartDate:  start,
		EndDate:    end,
		Price:      req.Price,
		Reason:     req.Reason,
		Active:     req.Active == nil || *req.Active,
	}, true
}

func (h *AdminHandler) ListSpecialPrices(w http.ResponseWriter, r *http.Request) {
	list, err := h.Admin.ListSpecialPrices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreateSpecialPrice(w http.ResponseWriter, r *http.Request) {
	var req specialPriceRequest
	if !decode(w, r, &req) {
		return
	}
	sp, ok := req.toModel()
	if !ok {
		badRequest(w, "dates must be YYYY-MM-DD")
		return
	}
	if err := h.Admin.CreateSpecialPrice(r.Context(), sp); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (h *AdminHandler) UpdateSpecialPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req specialPriceRequest
	if !decode(w, r, &req) {
		return
	}
	sp, ok := req.toModel()
	if !ok {
		badRequest(w, "dates must be YYYY-MM-DD")
		return
	}
	sp.ID = id
	if err := h.Admin.UpdateSpecialPrice(r.Context(), sp); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (h *AdminHandler) DeleteSpecialPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Admin.DeleteSpecialPrice(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Special price deleted"})
}

type maintenanceRequest struct {
	dateRange
	Reason      string  `json:"reason"`
	CategoryIDs []int64 `json:"category_ids"`
	Active      *bool   `json:"active"`
}

func (req maintenanceRequest) toModel() (*db.MaintenanceWindow, bool) {
	start, end, ok := req.parse()
	if !ok {
		return nil, false
	}
	return &db.MaintenanceWindow{
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		CategoryIDs: pq.Int64Array(req.CategoryIDs),
		Active:      req.Active == nil || *req.Active,
	}, true
}

func (h *AdminHandler) ListMaintenanceWindows(w http.ResponseWriter, r *http.Request) {
	list, err := h.Admin.ListMaintenanceWindows(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.WindowInfos(list))
}

func (h *AdminHandler) CreateMaintenanceWindow(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if !decode(w, r, &req) {
		return
	}
	mw, ok := req.toModel()
	if !ok {
		badRequest(w, "dates must be YYYY-MM-DD")
		return
	}
	if err := h.Admin.CreateMaintenanceWindow(r.Context(), mw); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.WindowInfos([]db.MaintenanceWindow{*mw})[0])
}

func (h *AdminHandler) UpdateMaintenanceWindow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req maintenanceRequest
	if !decode(w, r, &req) {
		return
	}
	mw, ok := req.toModel()
	if !ok {
		badRequest(w, "dates must be YYYY-MM-DD")
		return
	}
	mw.ID = id
	if err := h.Admin.UpdateMaintenanceWindow(r.Context(), mw); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.WindowInfos([]db.MaintenanceWindow{*mw})[0])
}

func (h *AdminHandler) DeleteMaintenanceWindow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Admin.DeleteMaintenanceWindow(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Maintenance window deleted"})
}

func (h *AdminHandler) ListAddons(w http.ResponseWriter, r *http.Request) {
	list, err := h.Admin.ListAddons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreateAddon(w http.ResponseWriter, r *http.Request) {
	var a db.AddonService
	if !decode(w, r, &a) {
		return
	}
	if err := h.Admin.CreateAddon(r.Context(), &a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type promoRequest struct {
	Code          string  `json:"code"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue int64   `json:"discount_value"`
	ValidFrom     *string `json:"valid_from"`
	ValidTo       *string `json:"valid_to"`
	MaxUsage      int     `json:"max_usage"`
	CategoryIDs   []int64 `json:"category_ids"`
}

func parseOptionalTime(raw *string) (null.Time, bool) {
	if raw == nil || *raw == "" {
		return null.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return null.Time{}, false
	}
	return null.TimeFrom(t), true
}

func (h *AdminHandler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if !decode(w, r, &req) {
		return
	}
	from, okFrom := parseOptionalTime(req.ValidFrom)
	to, okTo := parseOptionalTime(req.ValidTo)
	if !okFrom || !okTo {
		badRequest(w, "valid_from and valid_to must be RFC 3339 timestamps")
		return
	}
	p := &db.PromoCode{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     from,
		ValidTo:       to,
		MaxUsage:      req.MaxUsage,
		CategoryIDs:   pq.Int64Array(req.CategoryIDs),
		Active:        true,
	}
	if err := h.Admin.CreatePromoCode(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) GrantVIP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerRef string `json:"customer_ref"`
		Phone       string `json:"phone"`
		Year        int    `json:"year"`
		DiscountPct int    `json:"discount_pct"`
	}
	if !decode(w, r, &req) {
		return
	}
	profile, err := h.VIP.GrantVIP(r.Context(), req.CustomerRef, req.Phone, req.Year, req.DiscountPct)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}
