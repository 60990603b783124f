package docprep

import "strings"

// Default splitter configuration. Separators are ordered coarsest first:
// paragraph break, line break, sentence end, word boundary, then hard
// character slicing as the last resort.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators returns the preference-ordered separator list.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", " ", ""}
}

// Piece is one chunk of split text. Overlap counts the leading characters
// repeated from the previous piece.
type Piece struct {
	Text    string
	Overlap int
}

// Splitter recursively splits text into chunks of at most ChunkSize
// characters, repeating the trailing ChunkOverlap characters of each chunk
// at the start of the next.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter creates a splitter, falling back to defaults for zero values.
// Overlap is clamped below the chunk size.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators(),
	}
}

// Split divides text into pieces of at most ChunkSize characters.
// Concatenating the non-overlap regions of the result reconstructs the
// original text exactly.
func (s *Splitter) Split(text string) []Piece {
	if text == "" {
		return nil
	}

	units := s.split(text, s.Separators)
	return s.merge(units)
}

// split recursively breaks text into units no longer than ChunkSize, trying
// each separator in preference order and ending with hard slicing. A unit
// that contains no separator at any level passes through oversized.
func (s *Splitter) split(text string, seps []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	if len(seps) == 0 {
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		// Hard character-boundary slicing. Slices leave room for the
		// overlap prefix merge prepends, so the size bound holds.
		step := s.ChunkSize - s.ChunkOverlap
		if step <= 0 {
			step = s.ChunkSize
		}
		var out []string
		for start := 0; start < len(text); start += step {
			end := start + step
			if end > len(text) {
				end = len(text)
			}
			out = append(out, text[start:end])
		}
		return out
	}

	parts := splitAfter(text, sep)
	if len(parts) == 1 {
		// Separator absent, fall through to the next one.
		return s.split(text, seps[1:])
	}

	var out []string
	for _, part := range parts {
		if len(part) <= s.ChunkSize {
			out = append(out, part)
			continue
		}
		out = append(out, s.split(part, seps[1:])...)
	}
	return out
}

// merge greedily joins adjacent units up to the size bound. Chunks after the
// first carry an overlap prefix, shrunk when needed so the bound holds
// including overlap. Only a single unit already past the size bound can
// produce an oversized chunk.
func (s *Splitter) merge(units []string) []Piece {
	var pieces []Piece
	var cur strings.Builder
	overlap := ""

	budget := func() int {
		return s.ChunkSize - len(overlap)
	}

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		body := cur.String()

		// A body near the size bound leaves less room than the configured
		// overlap; keep only the trailing part of the prefix that fits.
		pre := overlap
		if len(pre)+len(body) > s.ChunkSize {
			keep := s.ChunkSize - len(body)
			if keep < 0 {
				keep = 0
			}
			pre = pre[len(pre)-keep:]
		}

		pieces = append(pieces, Piece{
			Text:    pre + body,
			Overlap: len(pre),
		})

		next := s.ChunkOverlap
		if next > len(body) {
			next = len(body)
		}
		overlap = body[len(body)-next:]
		cur.Reset()
	}

	for _, unit := range units {
		if cur.Len() > 0 && cur.Len()+len(unit) > budget() {
			flush()
		}
		cur.WriteString(unit)
	}
	flush()

	return pieces
}

// splitAfter splits text on sep keeping the separator attached to the
// preceding part, so no characters are lost.
func splitAfter(text, sep string) []string {
	split := strings.SplitAfter(text, sep)

	// SplitAfter yields a trailing empty part when text ends with sep.
	if len(split) > 0 && split[len(split)-1] == "" {
		split = split[:len(split)-1]
	}
	return split
}
