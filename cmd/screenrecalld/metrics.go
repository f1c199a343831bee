package main

import (
	"encoding/json"
	"time"

	"screenrecall/pkg/extract"
	"screenrecall/pkg/retrieval"
	"screenrecall/pkg/telemetry/metrics"
)

// instrumentedIndex wraps a retrieval.Index to record hit/miss counts on the
// query orchestrator's retrieval path, without requiring retrieval.TimeIndex
// itself to know about Prometheus.
type instrumentedIndex struct {
	inner     retrieval.Index
	collector *metrics.Collector
	name      string
}

func instrumentIndex(inner retrieval.Index, collector *metrics.Collector, name string) retrieval.Index {
	return &instrumentedIndex{inner: inner, collector: collector, name: name}
}

func (i *instrumentedIndex) Retrieve(plan retrieval.QueryPlan) ([]retrieval.Candidate, error) {
	candidates, err := i.inner.Retrieve(plan)
	if err != nil {
		return candidates, err
	}
	if len(candidates) > 0 {
		i.collector.RecordRetrievalHit(i.name)
	} else {
		i.collector.RecordRetrievalMiss(i.name)
	}
	i.collector.UpdateRetrievalSize(i.name, len(candidates))
	return candidates, err
}

// instrumentedExtractor wraps an extract.Extractor to record per-job
// duration and outcome into extract_jobs_total/extract_job_duration_seconds.
type instrumentedExtractor struct {
	inner     extract.Extractor
	collector *metrics.Collector
}

func instrumentExtractor(inner extract.Extractor, collector *metrics.Collector) extract.Extractor {
	return &instrumentedExtractor{inner: inner, collector: collector}
}

func (e *instrumentedExtractor) Extract(job extract.Job) (json.RawMessage, extract.QualityCounters, error) {
	start := time.Now()
	payload, quality, extractErr := e.inner.Extract(job)
	status := "success"
	if extractErr != nil {
		status = "failed"
	}
	e.collector.RecordExtractJob(job.ExtractorID, status, time.Since(start))
	return payload, quality, extractErr
}
