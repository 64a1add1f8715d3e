package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeGenerator struct {
	response     string
	err          error
	calls        int
	lastSystem   string
	lastQuestion string
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, systemInstructions, userMessage string) (string, error) {
	f.calls++
	f.lastSystem = systemInstructions
	f.lastQuestion = userMessage
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func retrievedWith(texts ...string) *RetrievalResult {
	chunks := make([]ScoredChunk, len(texts))
	for i, text := range texts {
		chunks[i] = ScoredChunk{Text: text, ChunkIndex: i, Score: 1 - float64(i)*0.1}
	}
	return &RetrievalResult{Chunks: chunks}
}

func TestSynthesizePromptContainsChunksVerbatim(t *testing.T) {
	gen := &fakeGenerator{response: "The notice period is 30 days."}
	synth := NewAnswerSynthesizer(gen)

	retrieved := retrievedWith(
		"Either party may terminate with 30 days written notice.",
		"Notice must be delivered to the registered address.",
	)
	answer, err := synth.Synthesize(context.Background(), "What is the notice period?", retrieved)
	if err != nil {
		t.Fatalf("synthesize error: %v", err)
	}

	for _, chunk := range retrieved.Chunks {
		if !strings.Contains(gen.lastSystem, chunk.Text) {
			t.Errorf("prompt missing chunk text %q", chunk.Text)
		}
	}
	if gen.lastQuestion != "What is the notice period?" {
		t.Fatalf("user message = %q", gen.lastQuestion)
	}

	first := strings.Index(gen.lastSystem, retrieved.Chunks[0].Text)
	second := strings.Index(gen.lastSystem, retrieved.Chunks[1].Text)
	if first < 0 || second < 0 || first > second {
		t.Fatalf("chunks not in retrieval order within prompt")
	}

	if answer.Response != "The notice period is 30 days." {
		t.Fatalf("response = %q", answer.Response)
	}
	if len(answer.Chunks) != 2 {
		t.Fatalf("answer carries %d chunks, want 2", len(answer.Chunks))
	}
}

func TestSynthesizeEmptyGroundingSkipsModel(t *testing.T) {
	gen := &fakeGenerator{response: "should never be used"}
	synth := NewAnswerSynthesizer(gen)

	answer, err := synth.Synthesize(context.Background(), "Anything?", &RetrievalResult{})
	if err != nil {
		t.Fatalf("synthesize error: %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times for empty grounding, want 0", gen.calls)
	}
	if answer.Response != EmptyGroundingAnswer {
		t.Fatalf("response = %q, want canned empty-grounding answer", answer.Response)
	}
	if len(answer.Chunks) != 0 {
		t.Fatalf("answer carries %d chunks, want 0", len(answer.Chunks))
	}
}

func TestSynthesizeGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	synth := NewAnswerSynthesizer(gen)

	_, err := synth.Synthesize(context.Background(), "A question", retrievedWith("some text"))
	if !IsKind(err, KindGeneration) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindGeneration)
	}
}

func TestSynthesizeRejectsEmptyQuestion(t *testing.T) {
	synth := NewAnswerSynthesizer(&fakeGenerator{})

	_, err := synth.Synthesize(context.Background(), "", retrievedWith("text"))
	if !IsKind(err, KindInvalidInput) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindInvalidInput)
	}
}
