// Package app provides application initialization and dependency injection.
package app

import (
	"context"
	"time"

	"github.com/climascope/climascope/internal/adapters/secondary/advisor"
	"github.com/climascope/climascope/internal/adapters/secondary/climate"
	"github.com/climascope/climascope/internal/adapters/secondary/geoip"
	"github.com/climascope/climascope/internal/core/domain"
	"github.com/climascope/climascope/internal/infrastructure/circuitbreaker"
	"github.com/climascope/climascope/internal/observability"
)

// breakerAggregateClient wraps the weather aggregation client with circuit
// breaker protection and upstream latency metrics.
type breakerAggregateClient struct {
	client    *climate.Client
	cb        *circuitbreaker.Breaker
	telemetry *observability.Telemetry
}

func (c *breakerAggregateClient) FetchAggregate(ctx context.Context, query domain.WeatherQuery) (*domain.WeatherAggregate, error) {
	var result *domain.WeatherAggregate

	start := time.Now()
	err := c.cb.Execute(ctx, "fetch-aggregate", func() error {
		var err error
		result, err = c.client.FetchAggregate(ctx, query)

		return err
	})

	if c.telemetry != nil {
		c.telemetry.RecordUpstream(ctx, "climate", time.Since(start), err)
	}

	// Breaker rejections carry no user-facing message of their own.
	if err != nil && domain.ErrorCode(err) == "" {
		return nil, domain.WrapError(domain.CodeServiceUnavailable, domain.GenericServiceMessage, err)
	}

	return result, err
}

// breakerLocator wraps the GeoIP locator with circuit breaker protection.
type breakerLocator struct {
	client    *geoip.Client
	cb        *circuitbreaker.Breaker
	telemetry *observability.Telemetry
}

func (l *breakerLocator) Locate(ctx context.Context, clientIP string) (domain.Coordinate, error) {
	var result domain.Coordinate

	start := time.Now()
	err := l.cb.Execute(ctx, "locate", func() error {
		var err error
		result, err = l.client.Locate(ctx, clientIP)

		return err
	})

	if l.telemetry != nil {
		l.telemetry.RecordUpstream(ctx, "geoip", time.Since(start), err)
	}

	return result, err
}

// breakerAdvisor wraps the recommendation client with circuit breaker
// protection.
type breakerAdvisor struct {
	client    *advisor.Client
	cb        *circuitbreaker.Breaker
	telemetry *observability.Telemetry
}

func (a *breakerAdvisor) Recommend(ctx context.Context, prompt string) (string, error) {
	var result string

	start := time.Now()
	err := a.cb.Execute(ctx, "recommend", func() error {
		var err error
		result, err = a.client.Recommend(ctx, prompt)

		return err
	})

	if a.telemetry != nil {
		a.telemetry.RecordUpstream(ctx, "advisor", time.Since(start), err)
	}

	return result, err
}
