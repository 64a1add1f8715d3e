package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	DocumentsIngested  metric.Int64Counter
	ChunksIndexed      metric.Int64Counter
	IngestionDuration  metric.Float64Histogram
	QuestionsAnswered  metric.Int64Counter
	RetrievalDuration  metric.Float64Histogram
	GenerationDuration metric.Float64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("legalcase-platform")

	documentsIngested, err := meter.Int64Counter(
		"ingestion.documents.total",
		metric.WithDescription("Total documents ingested"),
	)
	if err != nil {
		return nil, err
	}

	chunksIndexed, err := meter.Int64Counter(
		"ingestion.chunks.total",
		metric.WithDescription("Total chunks embedded and indexed"),
	)
	if err != nil {
		return nil, err
	}

	ingestionDuration, err := meter.Float64Histogram(
		"ingestion.duration",
		metric.WithDescription("Document ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	questionsAnswered, err := meter.Int64Counter(
		"chat.questions.total",
		metric.WithDescription("Total questions answered"),
	)
	if err != nil {
		return nil, err
	}

	retrievalDuration, err := meter.Float64Histogram(
		"retrieval.duration",
		metric.WithDescription("Embed + top-K query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	generationDuration, err := meter.Float64Histogram(
		"generation.duration",
		metric.WithDescription("Answer generation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DocumentsIngested:  documentsIngested,
		ChunksIndexed:      chunksIndexed,
		IngestionDuration:  ingestionDuration,
		QuestionsAnswered:  questionsAnswered,
		RetrievalDuration:  retrievalDuration,
		GenerationDuration: generationDuration,
	}, nil
}

// RecordIngestion records one completed or failed ingestion.
func (m *Metrics) RecordIngestion(category string, chunkCount int, duration float64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("document.category", category),
		attribute.Bool("success", success),
	}

	m.DocumentsIngested.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	if success {
		m.ChunksIndexed.Add(context.Background(), int64(chunkCount), metric.WithAttributes(attrs...))
	}
	m.IngestionDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordQuestion records one question-answer round trip.
func (m *Metrics) RecordQuestion(grounded bool, retrievalSecs, generationSecs float64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("answer.grounded", grounded),
		attribute.Bool("success", success),
	}

	m.QuestionsAnswered.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RetrievalDuration.Record(context.Background(), retrievalSecs, metric.WithAttributes(attrs...))
	m.GenerationDuration.Record(context.Background(), generationSecs, metric.WithAttributes(attrs...))
}
