package logger_test

import (
	"context"
	"testing"

	"biomarker/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGet_ReturnsDefaultWhenContextEmpty(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)

	if logger.Get(context.Background()) == nil {
		t.Fatalf("expected a default logger")
	}
}

func TestWithFields_AttachesFieldsToContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))
	ctx = logger.WithFields(ctx, zap.String("userId", "u-1"))

	logger.Info(ctx, "recomputed bio age")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["userId"] != "u-1" {
		t.Fatalf("expected userId field, got %v", entries[0].ContextMap())
	}
}

func TestWithLogger_OverridesDefault(t *testing.T) {
	logger.Setup(logger.ProductionEnvironment)
	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Warn(ctx, "catalog range overlap")
	logger.Debug(ctx, "dropped below level")

	if logs.Len() != 1 {
		t.Fatalf("expected exactly the warn entry, got %d", logs.Len())
	}
}
