package chunker

import (
	"strings"
	"unicode"

	"medlit/internal/util"
)

// Split breaks text into sentence-aligned chunks of at most maxSize bytes
// with roughly overlap bytes of trailing sentences repeated at the start of
// the next chunk. A chunk always holds at least one whole sentence, so a
// single sentence longer than maxSize is emitted as an oversized chunk
// rather than cut mid-sentence.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}

	sentences := Sentences(text)
	if len(sentences) == 0 {
		return nil
	}

	chunks := make([]string, 0)
	i := 0
	for i < len(sentences) {
		size := 0
		count := 0
		for j := i; j < len(sentences); j++ {
			add := len(sentences[j])
			if count > 0 {
				add++ // joining space
			}
			if size+add > maxSize && count > 0 {
				break
			}
			size += add
			count++
		}
		chunks = append(chunks, strings.Join(sentences[i:i+count], " "))

		if overlap > 0 {
			// Walk back from the end of the chunk collecting sentences that
			// still fit in the overlap window.
			overlapSize := 0
			overlapCount := 0
			for k := count - 1; k >= 0; k-- {
				l := len(sentences[i+k])
				if k < count-1 {
					l++
				}
				if overlapSize+l > overlap {
					break
				}
				overlapSize += l
				overlapCount++
			}
			next := i + count - overlapCount
			// The overlap window may swallow the whole chunk; force one
			// sentence of forward progress so the walk terminates.
			if next <= i {
				next = i + 1
			}
			i = next
		} else {
			i += count
		}
	}
	return chunks
}

// Sentences splits normalized text at `.`, `!` or `?` followed by whitespace
// and an uppercase letter, suppressing boundaries that look like
// abbreviations ("Dr. Smith", "e.g. Test").
func Sentences(text string) []string {
	text = util.NormalizeSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	sentences := make([]string, 0)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || i == 0 {
			continue
		}
		// Normalized text has single spaces, so the run is one rune wide.
		if !isBoundary(runes, i) {
			continue
		}
		s := strings.TrimSpace(string(runes[start:i]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev != '.' && prev != '!' && prev != '?' {
		return false
	}
	if i+1 >= len(runes) || !unicode.IsUpper(runes[i+1]) {
		return false
	}
	// "Dr.", "Mr." style: uppercase + lowercase + period right before the gap.
	if i >= 3 && unicode.IsUpper(runes[i-3]) && unicode.IsLower(runes[i-2]) && prev == '.' {
		return false
	}
	// "e.g.", "U.S." style: word char, period, word char, then any rune.
	if i >= 4 && isWordRune(runes[i-4]) && runes[i-3] == '.' && isWordRune(runes[i-2]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
