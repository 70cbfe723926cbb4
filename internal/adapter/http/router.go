package http

import "github.com/labstack/echo/v4"

type Routes struct {
	Health       *Handler
	Calculations *CalculationHandler
	Analyses     *AnalysisHandler
	// Idempotency guards the mutating analysis routes; nil disables it.
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)

	v1 := e.Group("/v1")
	v1.POST("/calculations/:deal_type", r.Calculations.Calculate)
	v1.POST("/calculations/:deal_type/batch", r.Calculations.CalculateBatch)

	var mw []echo.MiddlewareFunc
	if r.Idempotency != nil {
		mw = append(mw, r.Idempotency)
	}
	v1.POST("/analyses", r.Analyses.CreateAnalysis, mw...)
	v1.GET("/analyses", r.Analyses.ListAnalyses)
	v1.GET("/analyses/:analysis_id", r.Analyses.GetAnalysis)
}
