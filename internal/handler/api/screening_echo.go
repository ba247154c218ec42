package api

import (
	"errors"
	"fmt"
	"time"

	models "EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
	"EquityScout/internal/service/cache"
	"EquityScout/internal/service/ratelimit"
	"EquityScout/internal/services/strategies"
	"EquityScout/internal/usecase"
	xhttp "EquityScout/pkg/http"
	xlogger "EquityScout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScreeningEchoHandler exposes the screening engine over Echo.
type ScreeningEchoHandler struct {
	logger   *xlogger.Logger
	screener *usecase.Screener
	history  *usecase.HistoryBrowser
	results  *cache.TTLCache
	limiter  *ratelimit.Limiter

	resultTTL time.Duration
	runsPerMin float64
}

func NewScreeningEchoHandler(logger *xlogger.Logger, screener *usecase.Screener, history *usecase.HistoryBrowser, resultTTL time.Duration, runsPerMin int) *ScreeningEchoHandler {
	if resultTTL <= 0 {
		resultTTL = 10 * time.Minute
	}
	if runsPerMin <= 0 {
		runsPerMin = 6
	}
	return &ScreeningEchoHandler{
		logger:     logger,
		screener:   screener,
		history:    history,
		results:    cache.NewTTLCache(),
		limiter:    ratelimit.New(),
		resultTTL:  resultTTL,
		runsPerMin: float64(runsPerMin),
	}
}

func (h *ScreeningEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/screen", h.Screen)
	g.GET("/screen/squeeze", h.Squeeze)
	g.GET("/screen/alignment", h.Alignment)
	g.GET("/screen/cuphandle", h.CupHandle)
	g.GET("/screen/history", h.History)
	g.GET("/screen/latest", h.Latest)
}

// Screen runs a full multi-strategy screening pass. Runs are expensive, so
// identical requests within the TTL are served from cache and per-client
// throughput is token-bucket limited.
func (h *ScreeningEchoHandler) Screen(c echo.Context) error {
	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow("screen:"+c.RealIP(), h.runsPerMin, h.runsPerMin/60) {
		return xhttp.DataResponse(c, 429, "too many screening requests")
	}

	p := usecase.RunParams{
		Market:      domrepo.NormalizeMarket(req.Market),
		MinScore:    req.MinScore,
		PerfectOnly: req.PerfectOnly,
		Limit:       req.Limit,
		Filters:     req.Filters,
		CombineMode: domrepo.CombineMode(req.CombineMode),
	}
	return h.run(c, p)
}

func (h *ScreeningEchoHandler) Squeeze(c echo.Context) error {
	return h.singleFilter(c, strategies.StrategySqueeze)
}

func (h *ScreeningEchoHandler) Alignment(c echo.Context) error {
	return h.singleFilter(c, strategies.StrategyMAAlignment)
}

func (h *ScreeningEchoHandler) CupHandle(c echo.Context) error {
	return h.singleFilter(c, strategies.StrategyCupHandle)
}

func (h *ScreeningEchoHandler) singleFilter(c echo.Context, strategy string) error {
	req := &models.SingleFilterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow("screen:"+c.RealIP(), h.runsPerMin, h.runsPerMin/60) {
		return xhttp.DataResponse(c, 429, "too many screening requests")
	}

	p := usecase.RunParams{
		Market:      domrepo.NormalizeMarket(req.Market),
		MinScore:    req.MinScore,
		Limit:       req.Limit,
		Filters:     []string{strategy},
		CombineMode: domrepo.CombineAny,
	}
	return h.run(c, p)
}

func (h *ScreeningEchoHandler) run(c echo.Context, p usecase.RunParams) error {
	key := runCacheKey(p)
	if v, ok := h.results.Get(key); ok {
		if res, ok2 := v.(*models.ScreeningResult); ok2 {
			return xhttp.SuccessResponse(c, res)
		}
	}

	res, err := h.screener.Run(c.Request().Context(), p)
	if err != nil {
		if errors.Is(err, models.ErrInvalidFilter) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("screening run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	h.results.Set(key, res, h.resultTTL)
	return xhttp.SuccessResponse(c, res)
}

func (h *ScreeningEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q := domrepo.HistoryQuery{
		Market:   req.Market,
		Ticker:   req.Ticker,
		MinScore: req.MinScore,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.From != "" {
		from, ok := xhttp.ParseDate(req.From)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid from date %q", req.From))
		}
		q.From = from
	}
	if req.To != "" {
		to, ok := xhttp.ParseDate(req.To)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid to date %q", req.To))
		}
		q.To = to
	}

	records, total, err := h.history.History(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, models.ErrInvalidFilter) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, records, int64(total))
}

func (h *ScreeningEchoHandler) Latest(c echo.Context) error {
	market := c.QueryParam("market")
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 20)

	latest, err := h.history.Latest(c.Request().Context(), market, limit)
	if err != nil {
		h.logger.Error("latest query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, latest)
}

func runCacheKey(p usecase.RunParams) string {
	return fmt.Sprintf("run:%s:%d:%t:%d:%v:%s",
		p.Market, p.MinScore, p.PerfectOnly, p.Limit, p.Filters, p.CombineMode)
}
