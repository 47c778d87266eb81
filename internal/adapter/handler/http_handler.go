package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Xelaphir/shawa/internal/adapter/metrics"
	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/core/service"
	"github.com/Xelaphir/shawa/internal/port"
)

type HTTPHandler struct {
	drafts   *service.DraftService
	ledger   *service.LedgerService
	exchange *service.ExchangeService
	orders   *service.OrderService
	cache    port.CacheRepository
	metrics  *metrics.Metrics
}

func NewHTTPHandler(drafts *service.DraftService, ledger *service.LedgerService, exchange *service.ExchangeService, orders *service.OrderService, cache port.CacheRepository, m *metrics.Metrics) *HTTPHandler {
	return &HTTPHandler{
		drafts:   drafts,
		ledger:   ledger,
		exchange: exchange,
		orders:   orders,
		cache:    cache,
		metrics:  m,
	}
}

// Register mounts all routes on the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/draft", h.Draft)
	mux.HandleFunc("GET /api/customers/{id}/components", h.Components)
	mux.HandleFunc("GET /api/customers/{id}/discounts", h.Discounts)
	mux.HandleFunc("GET /api/lots", h.OpenLots)
	mux.HandleFunc("POST /api/lots", h.ListLot)
	mux.HandleFunc("POST /api/lots/{id}/purchase", h.Purchase)
	mux.HandleFunc("POST /api/lots/{id}/cancel", h.Cancel)
	mux.HandleFunc("POST /api/orders", h.PriceOrder)
}

type DraftRequest struct {
	RequestID  string `json:"request_id"`
	CustomerID int64  `json:"customer_id"`
}

type DraftResponse struct {
	ComponentID int64  `json:"component_id"`
	Name        string `json:"name"`
	Rarity      string `json:"rarity"`
}

func (h *HTTPHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if !h.claimRequest(w, r, "draft:"+req.RequestID) {
		return
	}

	comp, err := h.drafts.Draft(r.Context(), req.CustomerID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.DraftsTotal.WithLabelValues(comp.Rarity.String()).Inc()
	// The credited component should show up on the next ownership read.
	_ = h.cache.InvalidateOwnership(r.Context(), req.CustomerID)
	writeJSON(w, http.StatusOK, DraftResponse{
		ComponentID: comp.ID,
		Name:        comp.Name,
		Rarity:      comp.Rarity.String(),
	})
}

func (h *HTTPHandler) Components(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r)
	if !ok {
		return
	}
	quantities, err := h.ledger.OwnershipOf(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quantities)
}

func (h *HTTPHandler) Discounts(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r)
	if !ok {
		return
	}
	vouchers, err := h.ledger.VouchersOf(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make(map[string]int, len(vouchers))
	for rarity, qty := range vouchers {
		out[rarity.String()] = qty
	}
	writeJSON(w, http.StatusOK, out)
}

type LotItemRequest struct {
	ComponentID int64 `json:"component_id"`
	Quantity    int   `json:"quantity"`
}

type ListLotRequest struct {
	SellerID int64            `json:"seller_id"`
	Price    int64            `json:"price"`
	Items    []LotItemRequest `json:"items"`
}

type LotResponse struct {
	ID          string           `json:"id"`
	SellerID    int64            `json:"seller_id"`
	PurchaserID *int64           `json:"purchaser_id,omitempty"`
	Price       int64            `json:"price"`
	Status      string           `json:"status"`
	Items       []LotItemRequest `json:"items"`
}

func lotResponse(lot *domain.Lot) LotResponse {
	resp := LotResponse{
		ID:          lot.ID,
		SellerID:    lot.SellerID,
		PurchaserID: lot.PurchaserID,
		Price:       lot.Price,
		Status:      string(lot.Status),
	}
	for _, item := range lot.Items {
		resp.Items = append(resp.Items, LotItemRequest{ComponentID: item.ComponentID, Quantity: item.Quantity})
	}
	return resp
}

func (h *HTTPHandler) OpenLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.exchange.OpenLots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, lotResponse(&lots[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) ListLot(w http.ResponseWriter, r *http.Request) {
	var req ListLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.SellerID <= 0 || req.Price <= 0 || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("missing required fields"))
		return
	}
	items := make([]domain.LotItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ComponentID <= 0 || item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid lot item"))
			return
		}
		items = append(items, domain.LotItem{ComponentID: item.ComponentID, Quantity: item.Quantity})
	}

	lot, err := h.exchange.ListLot(r.Context(), req.SellerID, req.Price, items)
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.LotsListedTotal.Inc()
	writeJSON(w, http.StatusCreated, lotResponse(lot))
}

type PurchaseRequest struct {
	RequestID   string `json:"request_id"`
	PurchaserID int64  `json:"purchaser_id"`
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	lotID := r.PathValue("id")
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || lotID == "" || req.PurchaserID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if !h.claimRequest(w, r, "purchase:"+req.RequestID) {
		return
	}

	lot, err := h.exchange.Purchase(r.Context(), lotID, req.PurchaserID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.LotsSoldTotal.Inc()
	writeJSON(w, http.StatusOK, lotResponse(lot))
}

type CancelRequest struct {
	RequesterID int64 `json:"requester_id"`
}

func (h *HTTPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	lotID := r.PathValue("id")
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || lotID == "" || req.RequesterID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := h.exchange.Cancel(r.Context(), lotID, req.RequesterID); err != nil {
		writeError(w, err)
		return
	}
	h.metrics.LotsCancelledTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type OrderItemRequest struct {
	RecipeID int64 `json:"recipe_id"`
	Quantity int   `json:"quantity"`
}

type PriceOrderRequest struct {
	CustomerID     int64              `json:"customer_id"`
	Items          []OrderItemRequest `json:"items"`
	DiscountRarity *int               `json:"discount_rarity,omitempty"`
}

type PriceOrderResponse struct {
	OrderID    string `json:"order_id"`
	FinalPrice int64  `json:"final_price"`
}

func (h *HTTPHandler) PriceOrder(w http.ResponseWriter, r *http.Request) {
	var req PriceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	recipeQuantities := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.RecipeID <= 0 || item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid order item"))
			return
		}
		recipeQuantities[item.RecipeID] += item.Quantity
	}
	var discountRarity *domain.Rarity
	if req.DiscountRarity != nil {
		rarity := domain.Rarity(*req.DiscountRarity)
		discountRarity = &rarity
	}

	order, err := h.orders.PriceOrder(r.Context(), req.CustomerID, recipeQuantities, discountRarity)
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.OrdersPricedTotal.Inc()
	if discountRarity != nil {
		h.metrics.VouchersConsumedTotal.Inc()
	}
	writeJSON(w, http.StatusOK, PriceOrderResponse{OrderID: order.ID, FinalPrice: order.Price})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// claimRequest enforces request-level idempotency when the client sent a
// request ID. Returns false after writing the conflict response.
func (h *HTTPHandler) claimRequest(w http.ResponseWriter, r *http.Request, key string) bool {
	if len(key) == 0 || key[len(key)-1] == ':' {
		return true // no request ID supplied
	}
	ok, err := h.cache.SetIdempotency(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return false
	}
	if !ok {
		writeJSON(w, http.StatusConflict, errorBody("duplicate request"))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid customer id"))
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, domain.ErrInsufficientQuantity):
		writeJSON(w, http.StatusConflict, errorBody("insufficient quantity"))
	case errors.Is(err, domain.ErrEmptyRarityPool):
		writeJSON(w, http.StatusConflict, errorBody("no components available for drawn rarity"))
	case errors.Is(err, domain.ErrLotNotOpen):
		writeJSON(w, http.StatusConflict, errorBody("lot is not open"))
	case errors.Is(err, domain.ErrSelfPurchase):
		writeJSON(w, http.StatusForbidden, errorBody("cannot purchase own lot"))
	case errors.Is(err, domain.ErrNotSeller):
		writeJSON(w, http.StatusForbidden, errorBody("only the seller may cancel"))
	case errors.Is(err, domain.ErrNoVoucherAvailable):
		writeJSON(w, http.StatusConflict, errorBody("no voucher available"))
	case errors.Is(err, domain.ErrEmptyOrder):
		writeJSON(w, http.StatusBadRequest, errorBody("order contains no recipes"))
	case errors.Is(err, domain.ErrUnknownRarity):
		writeJSON(w, http.StatusBadRequest, errorBody("unknown rarity"))
	default:
		// ErrReservationViolation lands here on purpose: integrity breaches
		// surface as a generic failure without detail leakage.
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
