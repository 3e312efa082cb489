// Package odoo holds the model-facing operations of the relay: the login
// call, the stateless call_kw bridge, and the dashboard aggregation that
// fans out over the ERP's charging models.
package odoo

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wallbox/relay/domain"
	odooapi "github.com/wallbox/relay/internal/odoo"
)

type UseCase struct {
	client *odooapi.Client
	logger *zap.Logger
}

func New(client *odooapi.Client, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		client: client,
		logger: logger,
	}
}

// AuthInput are the credentials for one upstream login.
type AuthInput struct {
	URL      string
	Database string
	Username string
	Password string
}

// Authenticate logs in against the upstream and returns the session
// material the browser re-presents on subsequent calls. The relay itself
// does not retain this session.
func (uc *UseCase) Authenticate(ctx context.Context, in AuthInput) (*odooapi.AuthResult, error) {
	result, err := uc.client.Authenticate(ctx, in.URL, in.Database, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("authenticated against odoo",
		zap.Int("uid", result.UID),
		zap.String("database", result.Database))
	return result, nil
}

// CallInput is one stateless model call: the caller supplies the cookie
// jar obtained at authentication, not a relay session id.
type CallInput struct {
	BaseURL string
	Cookies map[string]string
	Model   string
	Method  string
	Args    []interface{}
	Kwargs  map[string]interface{}
}

// Call issues one call_kw request and returns the raw result.
func (uc *UseCase) Call(ctx context.Context, in CallInput) (json.RawMessage, error) {
	return uc.client.CallKw(ctx, in.BaseURL, in.Cookies, in.Model, in.Method, in.Args, in.Kwargs)
}

// DashboardStats aggregates the dashboard counters in parallel. Individual
// query failures degrade to zero values rather than failing the whole page.
func (uc *UseCase) DashboardStats(ctx context.Context, baseURL string, jar map[string]string) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}
	var stations []map[string]interface{}
	var monthly []map[string]interface{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := uc.client.CallKw(gctx, baseURL, jar, "charging.station", "search_read",
			[]interface{}{[]interface{}{}},
			map[string]interface{}{"fields": []string{"status", "name"}})
		if err != nil {
			uc.warnQuery("charging.station", err)
			return nil
		}
		_ = json.Unmarshal(raw, &stations)
		return nil
	})
	g.Go(func() error {
		stats.ActiveSessions = uc.count(gctx, baseURL, jar, "wallbox.charging.session",
			[]interface{}{[]interface{}{"status", "=", "in_corso"}})
		return nil
	})
	g.Go(func() error {
		stats.TotalUsers = uc.count(gctx, baseURL, jar, "res.partner",
			[]interface{}{[]interface{}{"customer_rank", ">", 0}})
		return nil
	})
	g.Go(func() error {
		stats.TotalCondominiums = uc.count(gctx, baseURL, jar, "condominium.condominium",
			[]interface{}{})
		return nil
	})
	g.Go(func() error {
		monthStart := time.Now().UTC().Format("2006-01") + "-01"
		raw, err := uc.client.CallKw(gctx, baseURL, jar, "wallbox.charging.session", "search_read",
			[]interface{}{[]interface{}{[]interface{}{"start_time", ">=", monthStart}}},
			map[string]interface{}{"fields": []string{"kwh_delivered"}})
		if err != nil {
			uc.warnQuery("wallbox.charging.session", err)
			return nil
		}
		_ = json.Unmarshal(raw, &monthly)
		return nil
	})

	_ = g.Wait()

	stats.TotalStations = len(stations)
	for _, station := range stations {
		status, _ := station["status"].(string)
		bucketStation(&stats.StationsByStatus, status)
	}

	var kwh float64
	for _, row := range monthly {
		if v, ok := row["kwh_delivered"].(float64); ok {
			kwh += v
		}
	}
	stats.MonthlyKwh = math.Round(kwh*100) / 100

	return stats, nil
}

func (uc *UseCase) count(ctx context.Context, baseURL string, jar map[string]string, model string, filter []interface{}) int {
	raw, err := uc.client.CallKw(ctx, baseURL, jar, model, "search_count",
		[]interface{}{filter}, nil)
	if err != nil {
		uc.warnQuery(model, err)
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}

func (uc *UseCase) warnQuery(model string, err error) {
	uc.logger.Warn("dashboard query failed", zap.String("model", model), zap.Error(err))
}

// bucketStation tolerates both the Italian selection values and their
// English counterparts.
func bucketStation(counts *domain.StationStatusCounts, status string) {
	switch {
	case strings.Contains(status, "disponibile"), strings.Contains(status, "available"):
		counts.Disponibile++
	case strings.Contains(status, "uso"), strings.Contains(status, "charging"):
		counts.InUso++
	case strings.Contains(status, "manutenzione"), strings.Contains(status, "maintenance"):
		counts.Manutenzione++
	default:
		counts.Offline++
	}
}
