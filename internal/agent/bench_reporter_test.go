package agent

import (
	"context"
	"testing"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"go.uber.org/zap"
)

type discardSender struct{}

func (discardSender) SendBatch(context.Context, []models.Metrics) error { return nil }

func BenchmarkReporter_Report(b *testing.B) {
	src := &staticSource{}
	r := NewReporter(src, discardSender{}, 0, zap.NewNop())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.set(snap("bench", int64(i+1)))
		_ = r.Report(ctx)
	}
}

func BenchmarkBuildBatch_WithoutPool(b *testing.B) {
	s := snap("bench", 10)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		batch := &MetricsBatch{}
		BuildBatch(batch, s, 0)
	}
}
