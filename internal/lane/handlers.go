package lane

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/pos-lane/internal/basket"
	"github.com/noah-isme/pos-lane/internal/common"
	"github.com/noah-isme/pos-lane/internal/journal"
	"github.com/noah-isme/pos-lane/internal/money"
	"github.com/noah-isme/pos-lane/internal/pricebook"
	"github.com/noah-isme/pos-lane/internal/receipt"
	"github.com/noah-isme/pos-lane/internal/settle"
)

// Catalog is the product surface for the UI grid.
type Catalog interface {
	Lookup(ctx context.Context, id string) (pricebook.Product, error)
	List(ctx context.Context) ([]pricebook.Product, error)
}

// Sales aggregates receipt history for the popular-item grid buttons.
type Sales interface {
	TopItems(ctx context.Context, limit int) ([]receipt.ItemSales, error)
}

// Handler wires lane sessions, settlement and the journal to HTTP.
type Handler struct {
	Lanes      *Registry
	Controller *settle.Controller
	Journal    journal.Service
	Catalog    Catalog
	Sales      Sales
}

// Routes mounts the lane API.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/lanes/{lane}", func(r chi.Router) {
		r.Get("/basket", h.Basket)
		r.Post("/scan", h.Scan)
		r.Post("/void", h.Void)
		r.Post("/quantity", h.Quantity)
		r.Post("/clear", h.Clear)
		r.Post("/quote", h.QuoteHandler)
		r.Post("/settle", h.Settle)
	})
	r.Get("/journal", h.JournalList)
	r.Delete("/journal", h.JournalClear)
	r.Get("/pricebook", h.Pricebook)
	r.Get("/pricebook/popular", h.Popular)
}

func (h *Handler) session(r *http.Request) *Session {
	return h.Lanes.Session(chi.URLParam(r, "lane"))
}

type basketView struct {
	Lines []basket.Line `json:"lines"`
	Total money.Money   `json:"total"`
}

func viewOf(l *basket.Ledger) basketView {
	lines := l.Snapshot()
	if lines == nil {
		lines = []basket.Line{}
	}
	return basketView{Lines: lines, Total: l.Total()}
}

// Basket returns the lane's current lines and subtotal.
func (h *Handler) Basket(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(s.Basket)})
}

// Scan adds one unit of an item to the lane's basket. Scanner input carries
// the item id; product-grid buttons carry the display name instead.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil ||
		(strings.TrimSpace(payload.ID) == "" && strings.TrimSpace(payload.Name) == "") {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "item id or name is required", nil)
		return
	}
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	var (
		line basket.Line
		err  error
	)
	if strings.TrimSpace(payload.ID) != "" {
		line, err = s.Basket.Scan(r.Context(), payload.ID)
	} else {
		line, err = s.Basket.ScanByName(r.Context(), payload.Name)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"line":   line,
		"basket": viewOf(s.Basket),
	}})
}

// Void removes the line at the given index.
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "line index is required", nil)
		return
	}
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	line, err := s.Basket.VoidLine(r.Context(), payload.Index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"voided": line,
		"basket": viewOf(s.Basket),
	}})
}

// Quantity sets the quantity of the line at the given index. Zero voids it.
func (h *Handler) Quantity(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Index int `json:"index"`
		Qty   int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "line index and qty are required", nil)
		return
	}
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	if err := s.Basket.SetQuantity(r.Context(), payload.Index, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(s.Basket)})
}

// Clear voids the whole transaction.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	s.Basket.Clear(r.Context(), false)
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(s.Basket)})
}

// QuoteHandler prices the basket without settling, returning exact and
// next-dollar totals for the quick-tender buttons.
func (h *Handler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DiscountName string `json:"discountName"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	quote, err := h.Controller.Quote(r.Context(), s.Basket.Snapshot(), payload.DiscountName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

// Settle finalizes the sale.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DiscountName string `json:"discountName"`
		Tender       string `json:"tender"`
		Amount       string `json:"amount"`
		Quick        string `json:"quick"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "settlement request body required", nil)
		return
	}
	s := h.session(r)
	s.Lock()
	defer s.Unlock()
	result, err := h.Controller.Settle(r.Context(), s.Basket, settle.Request{
		DiscountName: payload.DiscountName,
		Tender:       settle.Tender(payload.Tender),
		Amount:       payload.Amount,
		Quick:        settle.Quick(payload.Quick),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// JournalList returns the audit trail, newest first.
func (h *Handler) JournalList(w http.ResponseWriter, r *http.Request) {
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 0)
	entries, err := h.Journal.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to fetch journal", nil)
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// JournalClear wipes the audit trail.
func (h *Handler) JournalClear(w http.ResponseWriter, r *http.Request) {
	if err := h.Journal.Clear(r.Context()); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to clear journal", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cleared": true}})
}

// Pricebook lists the catalog for the product grid.
func (h *Handler) Pricebook(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	products, err := h.Catalog.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to list pricebook", nil)
		return
	}
	if products == nil {
		products = []pricebook.Product{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

const defaultPopularLimit = 5

// popularItem pairs a product with its lifetime quantity sold.
type popularItem struct {
	Product pricebook.Product `json:"product"`
	Sold    int64             `json:"sold"`
}

// Popular returns the best-selling products across all receipts, hydrated
// through the pricebook. Items sold but since removed from the pricebook are
// skipped.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	if h.Sales == nil || h.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "popular items not configured", nil)
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("n"), defaultPopularLimit)
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	sales, err := h.Sales.TopItems(r.Context(), limit)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to aggregate popular items", nil)
		return
	}
	items := make([]popularItem, 0, len(sales))
	for _, s := range sales {
		p, err := h.Catalog.Lookup(r.Context(), s.ItemID)
		if err != nil {
			continue
		}
		items = append(items, popularItem{Product: p, Sold: s.Sold})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricebook.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "item not in pricebook", nil)
	case errors.Is(err, basket.ErrLineIndex):
		common.JSONError(w, http.StatusNotFound, "LINE_NOT_FOUND", "no basket line at that index", nil)
	case errors.Is(err, basket.ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_QUANTITY", "quantity must not be negative", nil)
	case errors.Is(err, settle.ErrEmptyBasket):
		common.JSONError(w, http.StatusConflict, "EMPTY_BASKET", "nothing in basket", nil)
	case errors.Is(err, settle.ErrInvalidAmount):
		common.JSONError(w, http.StatusBadRequest, "INVALID_AMOUNT", "tender amount is not a valid amount", nil)
	case errors.Is(err, settle.ErrInsufficientTender):
		common.JSONError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_TENDER", "tendered amount below total", nil)
	case errors.Is(err, settle.ErrUnknownTender):
		common.JSONError(w, http.StatusBadRequest, "UNKNOWN_TENDER", "tender must be Cash or Credit", nil)
	case errors.Is(err, settle.ErrAborted):
		common.JSONError(w, http.StatusConflict, "ABORTED", "settlement aborted", nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
	}
}
