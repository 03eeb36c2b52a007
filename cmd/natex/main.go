// Command natex runs a pattern over every sentence of a CoNLL-U corpus and
// prints one JSON line per sentence.
//
//	natex --pattern '<@DET> <@NOUN>' --mode findall corpus.conllu
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cheggaaa/pb"
	"gopkg.in/alecthomas/kingpin.v1"

	"github.com/gcbaptista/go-natex/internal/annotator"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/natex"
	"github.com/gcbaptista/go-natex/services"
)

var (
	patternSrc = kingpin.Flag("pattern", "NatEx pattern").Short('p').Required().String()
	mode       = kingpin.Flag("mode",
		"operation: findall, match, search, sub or split").Short('m').Default("findall").String()
	replacement = kingpin.Flag("replacement", "replacement text for --mode sub").Short('r').String()
	ignoreCase  = kingpin.Flag("ignore-case", "match case-insensitively").Short('i').Bool()
	language    = kingpin.Flag("language", "language recorded on every output line").Short('l').String()
	matchesOnly = kingpin.Flag("matches-only", "print only sentences the pattern matched").Bool()
	quiet       = kingpin.Flag("quiet", "no progress bar").Short('q').Bool()
	corpusPath  = kingpin.Arg("file", "CoNLL-U file ('-' for standard input)").Required().String()
)

// options is what process needs from the command line.
type options struct {
	op          services.Operation
	replacement string
	language    string
	matchesOnly bool
}

// record is one output line.
type record struct {
	ID       string             `json:"id,omitempty"`
	Language string             `json:"language,omitempty"`
	Text     string             `json:"text"`
	Matched  bool               `json:"matched"`
	Match    *model.MatchResult `json:"match,omitempty"`
	Results  []string           `json:"results,omitempty"`
	Output   string             `json:"output,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type stats struct {
	sentences, matched, failed int
}

func main() {
	kingpin.Parse()

	log.SetPrefix("natex ")

	op := services.Operation(*mode)
	switch op {
	case services.OpFindAll, services.OpMatch, services.OpSearch, services.OpSub, services.OpSplit:
	default:
		log.Fatalf("unknown mode %q (try --help)", *mode)
	}

	var flags []natex.Flag
	if *ignoreCase {
		flags = append(flags, natex.IgnoreCase)
	}
	p, err := natex.Compile(*patternSrc, flags...)
	if err != nil {
		log.Fatal(err)
	}

	in, size, err := open(*corpusPath)
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	var r io.Reader = in
	var bar *pb.ProgressBar
	if !*quiet && size > 0 {
		bar = pb.New64(size).SetUnits(pb.U_BYTES)
		bar.Output = os.Stderr
		bar.Start()
		r = bar.NewProxyReader(in)
	}

	st, err := process(p, options{
		op:          op,
		replacement: *replacement,
		language:    *language,
		matchesOnly: *matchesOnly,
	}, r, os.Stdout)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d sentences, %d matched, %d failed", st.sentences, st.matched, st.failed)
}

// open returns the corpus and its size, or -1 when reading standard input.
func open(path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), -1, nil
	}
	f, err := os.Open(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// process streams sentences from r and writes a record per sentence to w.
// A sentence whose tokens do not fit its text is reported on its line and
// skipped; a malformed corpus stops processing.
func process(p *natex.Pattern, opts options, r io.Reader, w io.Writer) (stats, error) {
	var st stats
	reader := annotator.NewConlluReader(r)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for {
		cs, err := reader.Next()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		st.sentences++

		rec := record{ID: cs.ID, Language: opts.language, Text: cs.Text}
		s, err := natex.New(cs.Text, cs.Tokens)
		if err != nil {
			st.failed++
			rec.Error = err.Error()
		} else {
			apply(p, s, opts, &rec)
		}
		if rec.Matched {
			st.matched++
		}

		if opts.matchesOnly && !rec.Matched {
			continue
		}
		if err := enc.Encode(rec); err != nil {
			return st, fmt.Errorf("failed to write output: %w", err)
		}
	}
}

func apply(p *natex.Pattern, s *natex.Sentence, opts options, rec *record) {
	switch opts.op {
	case services.OpMatch:
		rec.Match = p.Match(s)
		rec.Matched = rec.Match != nil
	case services.OpSearch:
		rec.Match = p.Search(s)
		rec.Matched = rec.Match != nil
	case services.OpFindAll:
		rec.Results = p.FindAll(s)
		rec.Matched = len(rec.Results) > 0
	case services.OpSub:
		rec.Output = p.Sub(s, opts.replacement)
		rec.Matched = rec.Output != s.Text()
	case services.OpSplit:
		rec.Results = p.Split(s, -1)
		rec.Matched = len(rec.Results) > 1
	}
}
