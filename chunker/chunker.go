package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/quaero/core"
)

// DefaultSeparators is the separator priority list used by Split.
var DefaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// Splitter is a recursive separator text splitter.
// A Splitter is immutable after construction and safe for concurrent use.
type Splitter struct {
	separators    []string
	keepSeparator bool
}

// Option configures a Splitter.
type Option func(*Splitter) error

// WithSeparators overrides the separator priority list.
// The empty separator splits into individual characters.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) error {
		if len(separators) == 0 {
			return ErrNoSeparators
		}
		s.separators = append([]string(nil), separators...)
		return nil
	}
}

// WithKeepSeparator controls whether separators stay attached to the end of
// the piece they terminate. Default is true.
func WithKeepSeparator(keep bool) Option {
	return func(s *Splitter) error {
		s.keepSeparator = keep
		return nil
	}
}

// New creates a Splitter.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		separators:    DefaultSeparators,
		keepSeparator: true,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var defaultSplitter = &Splitter{separators: DefaultSeparators, keepSeparator: true}

// Split splits text with the default separators.
func Split(text string, chunkSize, overlap int) ([]core.Chunk, error) {
	return defaultSplitter.Split(text, chunkSize, overlap)
}

// Split splits text into chunks of at most chunkSize runes, each seeded with
// up to overlap runes from the end of the previous chunk.
// Empty or whitespace-only text yields an empty slice.
func (s *Splitter) Split(text string, chunkSize, overlap int) ([]core.Chunk, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidOverlap
	}
	if strings.TrimSpace(text) == "" {
		return []core.Chunk{}, nil
	}

	pieces := s.split(text, s.separators, chunkSize, overlap)
	chunks := make([]core.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, core.Chunk{
			Index:  len(chunks),
			Text:   piece,
			Length: len(piece),
		})
	}
	return chunks, nil
}

func (s *Splitter) split(text string, separators []string, chunkSize, overlap int) []string {
	var final []string

	// Pick the first separator present in the text
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator, s.keepSeparator)
	mergeSeparator := separator
	if s.keepSeparator {
		mergeSeparator = ""
	}

	var fitting []string
	for _, piece := range splits {
		if runeLen(piece) <= chunkSize {
			fitting = append(fitting, piece)
			continue
		}

		if len(fitting) > 0 {
			final = append(final, merge(fitting, mergeSeparator, chunkSize, overlap)...)
			fitting = nil
		}

		if len(remaining) == 0 {
			final = append(final, hardSplit(piece, chunkSize, overlap)...)
		} else {
			final = append(final, s.split(piece, remaining, chunkSize, overlap)...)
		}
	}

	if len(fitting) > 0 {
		final = append(final, merge(fitting, mergeSeparator, chunkSize, overlap)...)
	}

	return final
}

// splitOn splits text on separator, dropping empty pieces.
// With keep set, the separator stays at the end of the piece it terminates.
func splitOn(text, separator string, keep bool) []string {
	var raw []string
	if separator != "" && keep {
		raw = strings.SplitAfter(text, separator)
	} else {
		raw = strings.Split(text, separator)
	}

	pieces := raw[:0]
	for _, piece := range raw {
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

// merge greedily packs pieces into chunks of at most chunkSize runes.
// After a chunk is emitted, pieces are dropped from the front of the window
// until what remains is within overlap and the next piece fits.
func merge(pieces []string, separator string, chunkSize, overlap int) []string {
	sepLen := runeLen(separator)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		pieceLen := runeLen(piece)

		if len(window) > 0 && total+sepLen+pieceLen > chunkSize {
			if chunk := join(window, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}

			for len(window) > 0 && (total > overlap || total+sepLen+pieceLen > chunkSize) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}

		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, piece)
		total += pieceLen
	}

	if chunk := join(window, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// hardSplit cuts text into fixed rune windows. It is only reached when the
// separator list has no empty separator and a piece is still too long.
func hardSplit(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	step := chunkSize - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+chunkSize, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func join(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
