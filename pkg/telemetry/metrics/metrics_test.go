package metrics

import (
	"testing"
	"time"

	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:        true,
		Namespace:      "test",
		Subsystem:      "metrics",
		LatencyBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.registry != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_RecordCapture(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	tests := []struct {
		name     string
		source   string
		outcome  string
		duration time.Duration
		size     int
	}{
		{"kept frame", "primary", "kept", 40 * time.Millisecond, 4096},
		{"duplicate frame", "primary", "duplicate", 5 * time.Millisecond, 0},
		{"capture error", "primary", "error", 10 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordCapture(tt.source, tt.outcome, tt.duration, tt.size)

			count := testutil.ToFloat64(collector.captureMetrics.framesTotal.WithLabelValues(tt.source, tt.outcome))
			if count < 1 {
				t.Errorf("Expected frame counter >= 1, got %f", count)
			}
		})
	}
}

func TestCollector_PluginMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("update health", func(t *testing.T) {
		collector.UpdatePluginHealth("ocr-tesseract", true)
		health := testutil.ToFloat64(collector.pluginMetrics.health.WithLabelValues("ocr-tesseract"))
		if health != 1.0 {
			t.Errorf("Expected health=1.0, got %f", health)
		}

		collector.UpdatePluginHealth("ocr-tesseract", false)
		health = testutil.ToFloat64(collector.pluginMetrics.health.WithLabelValues("ocr-tesseract"))
		if health != 0.0 {
			t.Errorf("Expected health=0.0, got %f", health)
		}
	})

	t.Run("record latency", func(t *testing.T) {
		collector.RecordPluginLatency("ocr-tesseract", "stage2", 0.95)
	})

	t.Run("record error", func(t *testing.T) {
		collector.RecordPluginError("ocr-tesseract", "timeout")
		count := testutil.ToFloat64(collector.pluginMetrics.errors.WithLabelValues("ocr-tesseract", "timeout"))
		if count < 1 {
			t.Errorf("Expected error count >= 1, got %f", count)
		}
	})
}

func TestCollector_GovernorMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("record admission", func(t *testing.T) {
		collector.RecordGovernorAdmission("normal", "admit", 2*time.Millisecond)
		count := testutil.ToFloat64(collector.governorMetrics.admissionsTotal.WithLabelValues("normal", "admit"))
		if count < 1 {
			t.Errorf("Expected admission count >= 1, got %f", count)
		}
	})

	t.Run("record admit", func(t *testing.T) {
		collector.RecordGovernorAdmit("normal")
		count := testutil.ToFloat64(collector.governorMetrics.admitsTotal.WithLabelValues("normal"))
		if count < 1 {
			t.Errorf("Expected admit count >= 1, got %f", count)
		}
	})

	t.Run("record preempt", func(t *testing.T) {
		collector.RecordGovernorPreempt("critical")
		count := testutil.ToFloat64(collector.governorMetrics.preemptsTotal.WithLabelValues("critical"))
		if count < 1 {
			t.Errorf("Expected preempt count >= 1, got %f", count)
		}
	})
}

func TestCollector_RetrievalMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("record retrieval hit", func(t *testing.T) {
		collector.RecordRetrievalHit("lexical")
		count := testutil.ToFloat64(collector.retrievalMetrics.hitsTotal.WithLabelValues("lexical"))
		if count < 1 {
			t.Errorf("Expected hit count >= 1, got %f", count)
		}
	})

	t.Run("record retrieval miss", func(t *testing.T) {
		collector.RecordRetrievalMiss("lexical")
		count := testutil.ToFloat64(collector.retrievalMetrics.missesTotal.WithLabelValues("lexical"))
		if count < 1 {
			t.Errorf("Expected miss count >= 1, got %f", count)
		}
	})

	t.Run("update retrieval size", func(t *testing.T) {
		collector.UpdateRetrievalSize("lexical", 42)
		size := testutil.ToFloat64(collector.retrievalMetrics.entries.WithLabelValues("lexical"))
		if size != 42 {
			t.Errorf("Expected size=42, got %f", size)
		}
	})
}

func TestCollector_ExtractMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("record job", func(t *testing.T) {
		collector.RecordExtractJob("ocr-tesseract", "success", 500*time.Millisecond)
		count := testutil.ToFloat64(collector.extractMetrics.jobsTotal.WithLabelValues("ocr-tesseract", "success"))
		if count < 1 {
			t.Errorf("Expected job count >= 1, got %f", count)
		}
	})

	t.Run("update queue lag", func(t *testing.T) {
		collector.UpdateExtractQueueLag("ocr-tesseract", 12.5)
		lag := testutil.ToFloat64(collector.extractMetrics.queueLagSecs.WithLabelValues("ocr-tesseract"))
		if lag != 12.5 {
			t.Errorf("Expected lag=12.5, got %f", lag)
		}
	})
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	// These should not panic
	collector.RecordCapture("primary", "kept", time.Second, 4096)
	collector.UpdatePluginHealth("ocr-tesseract", true)
	collector.RecordGovernorAdmission("normal", "admit", time.Millisecond)
	collector.RecordRetrievalHit("lexical")
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	if !limiter.Allow("label1") {
		t.Error("Expected first label to be allowed")
	}
	if !limiter.Allow("label2") {
		t.Error("Expected second label to be allowed")
	}
	if !limiter.Allow("label3") {
		t.Error("Expected third label to be allowed")
	}

	if limiter.Allow("label4") {
		t.Error("Expected fourth label to be rejected")
	}

	if !limiter.Allow("label1") {
		t.Error("Expected existing label to be allowed")
	}

	if limiter.Count() != 3 {
		t.Errorf("Expected count=3, got %d", limiter.Count())
	}
}

func TestCaptureMetrics_RecordFrameSize(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	cm := NewCaptureMetrics(cfg, registry)

	cm.RecordFrameSize("primary", 8192)
	// Just verify it doesn't panic
}

func TestPluginMetrics_RecordInvocation(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	pm := NewPluginMetrics(cfg, registry)

	pm.RecordInvocation("ocr-tesseract", "stage2")
	count := testutil.ToFloat64(pm.invocations.WithLabelValues("ocr-tesseract", "stage2"))
	if count < 1 {
		t.Errorf("Expected invocation count >= 1, got %f", count)
	}
}

func TestRetrievalMetrics_RecordEviction(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	rm := NewRetrievalMetrics(cfg, registry)

	rm.RecordEviction("vector")

	count := testutil.ToFloat64(rm.evictionsTotal.WithLabelValues("vector"))
	if count < 1 {
		t.Errorf("Expected eviction count >= 1, got %f", count)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				collector.RecordCapture("primary", "kept", time.Second, 4096)
				collector.UpdatePluginHealth("ocr-tesseract", true)
				collector.RecordGovernorAdmission("normal", "admit", time.Millisecond)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	count := testutil.ToFloat64(collector.captureMetrics.framesTotal.WithLabelValues("primary", "kept"))
	if count != 1000 {
		t.Errorf("Expected 1000 frames, got %f", count)
	}
}
