// Package doctor provides preflight checks for the model resources of every
// configured translation direction.
package doctor

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/example/go-nmt-prepost/internal/config"
	"github.com/example/go-nmt-prepost/internal/tokenizer"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// ResourceKind names the role of a resource file.
type ResourceKind string

const (
	KindTruecaser     ResourceKind = "truecaser model"
	KindBPECodes      ResourceKind = "bpe codes"
	KindBPEVocabulary ResourceKind = "bpe vocabulary"
	KindPieceModel    ResourceKind = "sentencepiece model"
)

// Resource is one model file a direction needs.
type Resource struct {
	Direction string
	Kind      ResourceKind
	Path      string
}

// InspectFunc reads a SentencePiece model and summarizes its vocabulary.
type InspectFunc func(path string) (tokenizer.ModelInfo, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// Resources are the files to verify on disk.
	Resources []Resource
	// InspectPieceModel is called for every SentencePiece model that exists.
	// Nil skips the inspection.
	InspectPieceModel InspectFunc
	// BuildRegistry loads every direction. Nil skips the check.
	BuildRegistry func() error
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Resources lists the model files configured in cfg, ordered by direction,
// with relative paths resolved against the resources directory.
func Resources(cfg config.Config) []Resource {
	keys := make([]string, 0, len(cfg.Directions))
	for k := range cfg.Directions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Resource
	for _, key := range keys {
		d := cfg.Directions[key]
		for _, r := range []Resource{
			{Kind: KindTruecaser, Path: d.TruecaserModel},
			{Kind: KindBPECodes, Path: d.BPECodes},
			{Kind: KindBPEVocabulary, Path: d.BPEVocabulary},
			{Kind: KindPieceModel, Path: d.PieceModel},
		} {
			path := cfg.ResolvePath(r.Path)
			if path == "" {
				continue
			}
			out = append(out, Resource{Direction: key, Kind: r.Kind, Path: path})
		}
	}

	return out
}

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- resource files ---------------------------------------------------
	if len(cfg.Resources) == 0 {
		res.fail("resources: no directions configured")
		fmt.Fprintf(w, "%s resources: no directions configured\n", FailMark)
	}

	for _, r := range cfg.Resources {
		if _, err := os.Stat(r.Path); err != nil {
			res.fail(fmt.Sprintf("%s %s %q: %v", r.Direction, r.Kind, r.Path, err))
			fmt.Fprintf(w, "%s %s %s: not found (%s)\n", FailMark, r.Direction, r.Kind, r.Path)
			continue
		}

		if r.Kind != KindPieceModel || cfg.InspectPieceModel == nil {
			fmt.Fprintf(w, "%s %s %s: %s\n", PassMark, r.Direction, r.Kind, r.Path)
			continue
		}

		info, err := cfg.InspectPieceModel(r.Path)
		if err != nil {
			res.fail(fmt.Sprintf("%s %s %q: %v", r.Direction, r.Kind, r.Path, err))
			fmt.Fprintf(w, "%s %s %s: unreadable (%v)\n", FailMark, r.Direction, r.Kind, err)
			continue
		}

		fmt.Fprintf(w, "%s %s %s: %s (%d pieces, %d normal, %d control, %d user-defined)\n",
			PassMark, r.Direction, r.Kind, r.Path,
			info.Pieces, info.Normal, info.Control, info.UserDefined)
	}

	// ---- registry ---------------------------------------------------------
	if cfg.BuildRegistry == nil {
		fmt.Fprintf(w, "%s registry: skipped\n", PassMark)
	} else if err := cfg.BuildRegistry(); err != nil {
		res.fail(fmt.Sprintf("registry: %v", err))
		fmt.Fprintf(w, "%s registry: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s registry: all directions loaded\n", PassMark)
	}

	return res
}
