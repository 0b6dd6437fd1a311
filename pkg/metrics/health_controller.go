package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jacksonlee411/approvals/pkg/application"
	"github.com/jacksonlee411/approvals/pkg/composables"
	"github.com/jacksonlee411/approvals/pkg/httpapi"
)

const HealthPath = "/health"

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}

type HealthController struct {
	store  string
	pinger Pinger
}

// NewHealthController reports the store backend. A nil pinger means the store has no
// external dependency and is always healthy.
func NewHealthController(store string, pinger Pinger) application.Controller {
	return &HealthController{store: store, pinger: pinger}
}

func (c *HealthController) Key() string {
	return HealthPath
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(HealthPath, c.Health).Methods(http.MethodGet)
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Store: c.store}
	status := http.StatusOK
	if c.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.pinger.Ping(ctx); err != nil {
			composables.UseLogger(r.Context()).WithError(err).Warn("health: store ping failed")
			resp.Status = "unavailable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	_ = httpapi.WriteJSON(w, status, resp)
}
