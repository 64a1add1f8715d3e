package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Generator produces a completion for a system-instructed prompt.
type Generator interface {
	GenerateAnswer(ctx context.Context, systemInstructions, userMessage string) (string, error)
}

// EmptyGroundingAnswer is returned when retrieval finds nothing. The model
// is not called in that case, so an unanswerable question can never be
// answered from the model's own knowledge.
const EmptyGroundingAnswer = "I could not find anything relevant to that question in the uploaded case documents. " +
	"Try uploading the documents that cover this topic, or rephrase the question."

const systemPromptTemplate = `You are a helpful legal research assistant for a single court case.
Use the following relevant text from the user's documents to help answer their question.
If some details are not in the text, say so or indicate uncertainty.

Relevant Documents:
%s

------------------
When you answer, reference the text above if it applies.`

// Answer is a grounded response: the generated text plus the exact chunks
// it was grounded on, in retrieval order.
type Answer struct {
	Response string
	Chunks   []ScoredChunk
}

// AnswerSynthesizer builds the grounded prompt and runs generation.
type AnswerSynthesizer struct {
	generator Generator
}

func NewAnswerSynthesizer(generator Generator) *AnswerSynthesizer {
	return &AnswerSynthesizer{generator: generator}
}

// BuildPrompt renders the system prompt for a retrieval result. Exposed so
// callers can log or inspect the exact prompt sent to the model.
func BuildPrompt(retrieved *RetrievalResult) string {
	return fmt.Sprintf(systemPromptTemplate, retrieved.Context())
}

// Synthesize answers the question grounded on the retrieved chunks. With an
// empty retrieval result it short-circuits to EmptyGroundingAnswer without
// calling the model.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, question string, retrieved *RetrievalResult) (*Answer, error) {
	ctx, span := otel.Tracer("answer").Start(ctx, "answer.synthesize")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, Errorf(KindInvalidInput, "answer.synthesize", "question is empty")
	}

	if retrieved == nil || len(retrieved.Chunks) == 0 {
		span.SetAttributes(attribute.Bool("answer.grounded", false))
		return &Answer{Response: EmptyGroundingAnswer, Chunks: []ScoredChunk{}}, nil
	}

	response, err := s.generator.GenerateAnswer(ctx, BuildPrompt(retrieved), question)
	if err != nil {
		return nil, E(KindGeneration, "answer.generate", err)
	}

	span.SetAttributes(
		attribute.Bool("answer.grounded", true),
		attribute.Int("answer.chunks", len(retrieved.Chunks)),
	)
	return &Answer{Response: response, Chunks: retrieved.Chunks}, nil
}
