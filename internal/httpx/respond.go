package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-parfum-store.git/internal/catalog"
	"github.com/ariefcatur/go-parfum-store.git/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	payload := map[string]any{"error": code, "message": msg}
	for k, v := range details {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}

// writeOrderError translate taxonomy error ke status + body; error tak
// dikenal dianggap internal, penyebabnya cuma masuk log.
func writeOrderError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		pnf *orders.ProductNotFoundError
		ise *orders.InsufficientStockError
	)
	switch {
	case errors.Is(err, orders.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error(), nil)
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "not_found", "order not found", nil)
	case errors.As(err, &pnf):
		writeError(w, http.StatusNotFound, "not_found", pnf.Error(), map[string]any{
			"product_id": pnf.ProductID,
		})
	case errors.As(err, &ise):
		writeError(w, http.StatusConflict, "insufficient_stock", ise.Error(), map[string]any{
			"product_id": ise.ProductID,
			"requested":  ise.Requested,
			"available":  ise.Available,
		})
	default:
		if log != nil {
			log.Error("order operation failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func writeCatalogError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, catalog.ErrInUse):
		writeError(w, http.StatusConflict, "conflict", "entry is referenced by existing orders", nil)
	default:
		if log != nil {
			log.Error("catalog operation failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}
