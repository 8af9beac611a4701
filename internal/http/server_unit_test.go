package http

import (
	"testing"

	"studyhub/server/internal/model"
)

func TestAggregateProgress(t *testing.T) {
	cards := []model.Flashcard{
		{Subject: "math", Mastered: true},
		{Subject: "math", Mastered: false},
		{Subject: "bio", Mastered: false},
	}

	progress := aggregateProgress(cards)
	if len(progress) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(progress))
	}
	if progress["math"].Total != 2 || progress["math"].Mastered != 1 {
		t.Fatalf("unexpected math progress: %+v", progress["math"])
	}
	if progress["bio"].Total != 1 || progress["bio"].Mastered != 0 {
		t.Fatalf("unexpected bio progress: %+v", progress["bio"])
	}
}

func TestAggregateProgressEmpty(t *testing.T) {
	progress := aggregateProgress(nil)
	if len(progress) != 0 {
		t.Fatalf("expected empty progress, got %+v", progress)
	}
}

func TestAggregateProgressSubjectsAreCaseSensitive(t *testing.T) {
	cards := []model.Flashcard{
		{Subject: "Math", Mastered: true},
		{Subject: "math", Mastered: false},
	}

	progress := aggregateProgress(cards)
	if len(progress) != 2 {
		t.Fatalf("expected distinct subjects, got %+v", progress)
	}
}

func TestAggregateProgressMasteredToggleRoundTrip(t *testing.T) {
	cards := []model.Flashcard{
		{Subject: "math", Mastered: false},
		{Subject: "math", Mastered: true},
	}
	before := aggregateProgress(cards)

	cards[0].Mastered = true
	cards[0].Mastered = false
	after := aggregateProgress(cards)

	if before["math"] != after["math"] {
		t.Fatalf("expected identical progress, got %+v vs %+v", before, after)
	}
}

func TestValidateFlashcardInput(t *testing.T) {
	if msg := validateFlashcardInput("math", "2+2", "4"); msg != "" {
		t.Fatalf("expected valid input, got %q", msg)
	}
	if msg := validateFlashcardInput("math", "", "4"); msg == "" {
		t.Fatalf("expected empty front to be rejected")
	}
	if msg := validateFlashcardInput("math", "   ", "4"); msg == "" {
		t.Fatalf("expected whitespace front to be rejected")
	}
	if msg := validateFlashcardInput("", "2+2", "4"); msg == "" {
		t.Fatalf("expected empty subject to be rejected")
	}
}

func TestValidateNoteInput(t *testing.T) {
	if msg := validateNoteInput("bio", "Cells", "Mitochondria"); msg != "" {
		t.Fatalf("expected valid input, got %q", msg)
	}
	if msg := validateNoteInput("bio", "Cells", ""); msg == "" {
		t.Fatalf("expected empty content to be rejected")
	}
}

func TestValidateSignup(t *testing.T) {
	if msg := validateSignup("Ada", "ada@example.com", "pw"); msg != "" {
		t.Fatalf("expected valid input, got %q", msg)
	}
	if msg := validateSignup("", "ada@example.com", "pw"); msg == "" {
		t.Fatalf("expected empty name to be rejected")
	}
	if msg := validateSignup("Ada", "ada@example.com", ""); msg == "" {
		t.Fatalf("expected empty password to be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	if got := bearerToken("Bearer abc"); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := bearerToken("bearer abc"); got != "abc" {
		t.Fatalf("expected lowercase scheme to be accepted, got %q", got)
	}
	if got := bearerToken(""); got != "" {
		t.Fatalf("expected empty header to yield empty token")
	}
	if got := bearerToken("Basic abc"); got != "" {
		t.Fatalf("expected non-bearer scheme to be rejected, got %q", got)
	}
	if got := bearerToken("Bearer"); got != "" {
		t.Fatalf("expected missing token to yield empty string, got %q", got)
	}
}
