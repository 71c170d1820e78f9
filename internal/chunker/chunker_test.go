package chunker

import (
	"strings"
	"testing"
)

func TestSentencesAbbreviations(t *testing.T) {
	text := "Dr. Smith examined the cohort. Results were significant. The study used e.g. Cox models."
	got := Sentences(text)
	want := []string{
		"Dr. Smith examined the cohort.",
		"Results were significant.",
		"The study used e.g. Cox models.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	text := "One sentence here. Two sentence here. Three sentence here. Four sentence here."
	chunks := Split(text, 40, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c == "" {
			t.Fatal("empty chunk emitted")
		}
		if len(c) > 40 {
			t.Fatalf("chunk exceeds max size: %q", c)
		}
	}
}

func TestSplitOversizedSentenceEmittedWhole(t *testing.T) {
	long := strings.Repeat("word ", 50) + "end."
	chunks := Split(long, 20, 0)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for a single long sentence, got %d", len(chunks))
	}
	if len(chunks[0]) <= 20 {
		t.Fatalf("oversized sentence should be kept whole, got %q", chunks[0])
	}
}

func TestSplitPreservesEverySentence(t *testing.T) {
	text := "Alpha finding stands. Beta finding holds. Gamma finding fails. Delta finding waits."
	chunks := Split(text, 45, 20)
	joined := strings.Join(chunks, " ")
	for _, s := range Sentences(text) {
		if !strings.Contains(joined, s) {
			t.Fatalf("sentence dropped: %q", s)
		}
	}
}

func TestSplitOverlapProducesRepeatedSentences(t *testing.T) {
	text := "First part of study. Second part of study. Third part of study. Fourth part of study."
	chunks := Split(text, 45, 25)
	if len(chunks) < 2 {
		t.Fatalf("expected overlapping chunks, got %d", len(chunks))
	}
	// Some sentence from the tail of chunk 0 must reappear at the head of chunk 1.
	tail := Sentences(chunks[0])
	head := Sentences(chunks[1])
	if len(tail) == 0 || len(head) == 0 || tail[len(tail)-1] != head[0] {
		t.Fatalf("expected overlap between %q and %q", chunks[0], chunks[1])
	}
}

func TestSplitTerminatesWithHugeOverlap(t *testing.T) {
	text := "A first one. A second one. A third one. A fourth one. A fifth one."
	chunks := Split(text, 30, 300)
	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
	// Forced one-sentence progress bounds the number of chunks by the number
	// of sentences even when the overlap window covers whole chunks.
	if n := len(Sentences(text)); len(chunks) > n {
		t.Fatalf("chunk count %d exceeds sentence count %d", len(chunks), n)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if got := Split("   \n\t ", 100, 10); got != nil {
		t.Fatalf("expected nil for blank input, got %q", got)
	}
}
