package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	opsOnce          sync.Once
	repoOpCounter    metric.Int64Counter
	tokenGateCounter metric.Int64Counter
)

func initOpCounters() {
	opsOnce.Do(func() {
		meter := otel.Meter("vidora-backend")
		if c, err := meter.Int64Counter("repository.operations"); err == nil {
			repoOpCounter = c
		}
		if c, err := meter.Int64Counter("auth.access_token.validations"); err == nil {
			tokenGateCounter = c
		}
	})
}

// RecordRepositoryOperation counts a store call by entity, operation and
// outcome (success / not_found / error).
func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	initOpCounters()
	if repoOpCounter == nil {
		return
	}
	repoOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordAccessTokenValidation counts authentication-gate decisions by outcome
// (valid / invalid / missing / principal_not_found) and credential source.
func RecordAccessTokenValidation(ctx context.Context, outcome, source string) {
	initOpCounters()
	if tokenGateCounter == nil {
		return
	}
	tokenGateCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}
