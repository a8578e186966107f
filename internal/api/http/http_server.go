package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"stock-settlement/internal/api/dto"
	"stock-settlement/internal/core"
	"stock-settlement/internal/domain"
	"stock-settlement/internal/middleware"
	"stock-settlement/internal/port"
)

type HTTPServer struct {
	intake  *core.Intake
	quotes  port.QuoteSource
	limiter *middleware.RateLimiter
}

// NewHTTPServer wires the transport surface. limiter may be nil to
// disable rate limiting (tests, internal deployments).
func NewHTTPServer(intake *core.Intake, quotes port.QuoteSource, limiter *middleware.RateLimiter) *HTTPServer {
	return &HTTPServer{intake: intake, quotes: quotes, limiter: limiter}
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.Default()
	if s.limiter != nil {
		r.Use(s.limiter.Middleware())
	}

	r.POST("/orders", s.placeOrder)
	r.GET("/orders/:id", s.getOrder)
	r.GET("/portfolio", s.getPortfolio)
	r.GET("/quotes/:symbol", s.getQuote)

	return r
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) placeOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.intake.PlaceOrder(c.Request.Context(), core.PlaceOrderCommand{
		OrderID:  req.OrderID,
		Symbol:   req.Symbol,
		Side:     domain.Side(req.Side),
		Quantity: req.Quantity,
	})
	if err != nil {
		code, body := mapError(err)
		c.JSON(code, body)
		return
	}

	c.JSON(http.StatusOK, dto.PlaceOrderResponse{
		OrderID: res.OrderID,
		Status:  string(res.Status),
	})
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	o, err := s.intake.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, body := mapError(err)
		c.JSON(code, body)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: convertOrder(o)})
}

func (s *HTTPServer) getPortfolio(c *gin.Context) {
	p, err := s.intake.GetPortfolio(c.Request.Context())
	if err != nil {
		code, body := mapError(err)
		c.JSON(code, body)
		return
	}
	c.JSON(http.StatusOK, convertPortfolio(p))
}

func (s *HTTPServer) getQuote(c *gin.Context) {
	symbol := c.Param("symbol")
	q, err := s.quotes.CurrentPrice(c.Request.Context(), symbol)
	if err != nil {
		code, body := mapError(err)
		c.JSON(code, body)
		return
	}
	if q == nil {
		code, body := mapError(core.ErrStockNotFound)
		c.JSON(code, body)
		return
	}
	c.JSON(http.StatusOK, dto.GetQuoteResponse{
		Symbol:      q.Symbol,
		Price:       q.Price,
		LastUpdated: q.LastUpdated,
	})
}

func convertOrder(o *domain.Order) dto.Order {
	return dto.Order{
		OrderID:   o.OrderID,
		Symbol:    o.Symbol,
		Side:      string(o.Side),
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func convertPortfolio(p *domain.Portfolio) dto.GetPortfolioResponse {
	holdings := make([]dto.Holding, 0, len(p.Holdings))
	for sym, qty := range p.Holdings {
		holdings = append(holdings, dto.Holding{Symbol: sym, Quantity: qty})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return dto.GetPortfolioResponse{
		Holdings:    holdings,
		LastUpdated: p.LastUpdated,
	}
}
