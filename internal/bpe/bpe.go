// Package bpe applies learned byte-pair-encoding merges to tokenized text in
// the subword-nmt format: a ranked list of symbol pairs, "</w>" marking the
// end of a word and "@@" marking a word-internal split.
package bpe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Separator is appended to every subword that does not end a word.
	Separator = "@@"

	endOfWord     = "</w>"
	versionPrefix = "#version:"
)

// ErrEmptyPath is returned when Load is called without a codes path.
var ErrEmptyPath = errors.New("bpe codes path must not be empty")

type codesVersion int

const (
	version01 codesVersion = iota
	version02
)

// bpePair is two adjacent symbols that may be merged.
type bpePair struct {
	left  string
	right string
}

// Encoder holds immutable merge data and is safe for concurrent use.
type Encoder struct {
	version codesVersion
	// pairRank[p] is the merge priority of p; lower merges first.
	pairRank map[bpePair]int
	// reverse[left+right] is the pair that produced a merged symbol.
	reverse map[string]bpePair
	// vocab is nil when no vocabulary filter is configured.
	vocab map[string]struct{}
}

// LoadOptions names the files an Encoder is built from.
type LoadOptions struct {
	CodesPath string
	// VocabularyPath is optional. Merges producing subwords missing from
	// the vocabulary are reverted.
	VocabularyPath string
	// VocabularyThreshold drops vocabulary entries seen fewer times.
	VocabularyThreshold int
}

// Load reads the merge codes and optional vocabulary named by opts.
func Load(opts LoadOptions) (*Encoder, error) {
	if opts.CodesPath == "" {
		return nil, ErrEmptyPath
	}

	codes, err := os.Open(opts.CodesPath)
	if err != nil {
		return nil, fmt.Errorf("open bpe codes: %w", err)
	}
	defer codes.Close()

	var vocab io.Reader
	if opts.VocabularyPath != "" {
		f, err := os.Open(opts.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("open bpe vocabulary: %w", err)
		}
		defer f.Close()
		vocab = f
	}

	enc, err := New(codes, vocab, opts.VocabularyThreshold)
	if err != nil {
		return nil, fmt.Errorf("load bpe %q: %w", opts.CodesPath, err)
	}

	return enc, nil
}

// New builds an Encoder from codes and an optional vocabulary reader.
func New(codes, vocab io.Reader, threshold int) (*Encoder, error) {
	enc := &Encoder{
		pairRank: make(map[bpePair]int),
		reverse:  make(map[string]bpePair),
	}

	err := enc.readCodes(codes)
	if err != nil {
		return nil, err
	}

	if vocab != nil {
		enc.vocab, err = readVocabulary(vocab, threshold)
		if err != nil {
			return nil, err
		}
	}

	return enc, nil
}

func (e *Encoder) readCodes(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	e.version = version01
	lineNo := 0
	rank := 0

	for sc.Scan() {
		lineNo++
		line := strings.Trim(sc.Text(), "\r\n ")

		if lineNo == 1 && strings.HasPrefix(line, versionPrefix) {
			v, err := parseVersion(strings.TrimSpace(strings.TrimPrefix(line, versionPrefix)))
			if err != nil {
				return err
			}
			e.version = v
			continue
		}
		if line == "" {
			continue
		}

		parts := strings.Split(line, " ")
		if len(parts) != 2 {
			return fmt.Errorf("codes line %d: expected a symbol pair, got %q", lineNo, line)
		}

		p := bpePair{left: parts[0], right: parts[1]}
		if _, dup := e.pairRank[p]; dup {
			continue
		}
		e.pairRank[p] = rank
		e.reverse[p.left+p.right] = p
		rank++
	}

	err := sc.Err()
	if err != nil {
		return fmt.Errorf("read bpe codes: %w", err)
	}

	return nil
}

func parseVersion(s string) (codesVersion, error) {
	for strings.HasSuffix(s, ".0") && strings.Count(s, ".") > 1 {
		s = strings.TrimSuffix(s, ".0")
	}

	switch s {
	case "0.1":
		return version01, nil
	case "0.2":
		return version02, nil
	}

	return 0, fmt.Errorf("unsupported bpe codes version %q", s)
}

func readVocabulary(r io.Reader, threshold int) (map[string]struct{}, error) {
	vocab := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.Trim(sc.Text(), "\r\n ")
		if line == "" {
			continue
		}

		word, freqStr, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("vocabulary line %d: expected word and frequency, got %q", lineNo, line)
		}

		freq, err := strconv.Atoi(strings.TrimSpace(freqStr))
		if err != nil {
			return nil, fmt.Errorf("vocabulary line %d: invalid frequency %q", lineNo, freqStr)
		}

		if freq >= threshold {
			vocab[word] = struct{}{}
		}
	}

	err := sc.Err()
	if err != nil {
		return nil, fmt.Errorf("read bpe vocabulary: %w", err)
	}

	return vocab, nil
}

// Len returns the number of merge operations.
func (e *Encoder) Len() int { return len(e.pairRank) }

// Apply segments every space-separated word of line into subwords. Leading
// and trailing whitespace of line is preserved.
func (e *Encoder) Apply(line string) string {
	trimmed := strings.TrimLeft(line, "\r\n ")
	lead := line[:len(line)-len(trimmed)]
	if trimmed == "" {
		return line
	}

	core := strings.TrimRight(trimmed, "\r\n ")
	trail := trimmed[len(core):]

	return lead + strings.Join(e.segment(core), " ") + trail
}

func (e *Encoder) segment(text string) []string {
	var out []string

	for _, word := range strings.Split(text, " ") {
		if word == "" {
			continue
		}

		parts := e.encodeWord(word)
		for _, p := range parts[:len(parts)-1] {
			out = append(out, p+Separator)
		}
		out = append(out, parts[len(parts)-1])
	}

	return out
}

func (e *Encoder) encodeWord(orig string) []string {
	runes := []rune(orig)
	if len(runes) == 1 {
		return []string{orig}
	}

	word := make([]string, 0, len(runes)+1)
	for _, r := range runes {
		word = append(word, string(r))
	}

	switch e.version {
	case version01:
		word = append(word, endOfWord)
	case version02:
		word[len(word)-1] += endOfWord
	}

	for len(word) > 1 {
		bestRank := -1
		var best bpePair
		for i := 0; i < len(word)-1; i++ {
			p := bpePair{left: word[i], right: word[i+1]}
			if rank, ok := e.pairRank[p]; ok && (bestRank < 0 || rank < bestRank) {
				bestRank = rank
				best = p
			}
		}
		if bestRank < 0 {
			break
		}

		merged := best.left + best.right
		next := make([]string, 0, len(word))
		for i := 0; i < len(word); {
			if i < len(word)-1 && word[i] == best.left && word[i+1] == best.right {
				next = append(next, merged)
				i += 2
				continue
			}
			next = append(next, word[i])
			i++
		}
		word = next
	}

	last := len(word) - 1
	if word[last] == endOfWord {
		word = word[:last]
	} else {
		word[last] = strings.TrimSuffix(word[last], endOfWord)
	}

	if e.vocab != nil {
		word = e.checkVocabAndSplit(word)
	}

	return word
}

// checkVocabAndSplit reverts merges whose result is not in the vocabulary.
func (e *Encoder) checkVocabAndSplit(word []string) []string {
	out := make([]string, 0, len(word))

	for _, seg := range word[:len(word)-1] {
		if e.inVocab(seg + Separator) {
			out = append(out, seg)
			continue
		}
		out = e.recursiveSplit(out, seg, false)
	}

	seg := word[len(word)-1]
	if e.inVocab(seg) {
		return append(out, seg)
	}

	return e.recursiveSplit(out, seg, true)
}

func (e *Encoder) recursiveSplit(out []string, seg string, final bool) []string {
	var (
		p  bpePair
		ok bool
	)
	if final {
		p, ok = e.reverse[seg+endOfWord]
		p.right = strings.TrimSuffix(p.right, endOfWord)
	} else {
		p, ok = e.reverse[seg]
	}
	if !ok {
		return append(out, seg)
	}

	if e.inVocab(p.left + Separator) {
		out = append(out, p.left)
	} else {
		out = e.recursiveSplit(out, p.left, false)
	}

	if (final && e.inVocab(p.right)) || (!final && e.inVocab(p.right+Separator)) {
		return append(out, p.right)
	}

	return e.recursiveSplit(out, p.right, final)
}

func (e *Encoder) inVocab(s string) bool {
	_, ok := e.vocab[s]
	return ok
}

var separatorRun = regexp.MustCompile(`(@@ )|(@@ ?$)`)

// Decode joins subwords split by Apply back into words.
func Decode(text string) string {
	return separatorRun.ReplaceAllString(text, "")
}
