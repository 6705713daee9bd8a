package paymentgateway

import (
	"net/http"
	"sort"
	"strings"

	"github.com/kesher-io/kesher/internal/shared/config"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// Registry resolves gateways by name. The manual gateway is always registered.
type Registry struct {
	gateways    map[string]PaymentGateway
	defaultName string
}

// NewRegistry builds the gateways enabled in cfg.
func NewRegistry(cfg config.PaymentConfig, httpClient *http.Client, log logger.Interface) *Registry {
	r := &Registry{gateways: make(map[string]PaymentGateway)}
	r.Register(NewManualGateway())

	if cfg.Tranzila.Enabled {
		r.Register(NewTranzilaGateway(cfg.Tranzila, httpClient, log))
	}
	if cfg.PayPlus.Enabled {
		r.Register(NewPayPlusGateway(cfg.PayPlus, httpClient, log))
	}

	r.defaultName = strings.ToLower(cfg.DefaultGateway)
	if _, ok := r.gateways[r.defaultName]; !ok {
		if r.defaultName != "" {
			log.Warnw("default gateway is not enabled, falling back to manual", "gateway", cfg.DefaultGateway)
		}
		r.defaultName = ManualGatewayName
	}
	return r
}

func (r *Registry) Register(g PaymentGateway) {
	r.gateways[g.Name()] = g
}

func (r *Registry) Get(name string) (PaymentGateway, error) {
	g, ok := r.gateways[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperrors.NewValidationError("unknown payment gateway", name)
	}
	return g, nil
}

func (r *Registry) Default() PaymentGateway {
	return r.gateways[r.defaultName]
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
