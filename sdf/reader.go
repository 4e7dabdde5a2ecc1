package sdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/molforge/sdfio/log"
	"github.com/molforge/sdfio/molfile"
	"github.com/molforge/sdfio/types"
)

// Delimiter is the record terminator line marker.
const Delimiter = "$$$$"

// ParserLogKey is the reserved metadata key the reader stores its
// diagnostic log under when Options.StoreLog is set.
const ParserLogKey = "SDFIOParserLog"

// metaHeader matches a metadata group header: a '>' marker, arbitrary
// text, then the key in angle brackets.
var metaHeader = regexp.MustCompile(`^>\s.*<(.*)>`)

// Options configures a Reader. The zero value is a strict reader with the
// standard converter and no diagnostics.
type Options struct {
	// Lenient retries a V2000 counts line that declares zero atoms with
	// the V3000 parser instead of failing the record.
	Lenient bool
	// StoreLog attaches the captured diagnostic log to successfully parsed
	// molecules under ParserLogKey when the log is non-empty.
	StoreLog bool
	// IndexCache enables the msgpack sidecar cache for the offset table
	// built by OpenIndexed.
	IndexCache bool
	// Converter overrides the structure converter. Nil means
	// molfile.StandardConverter.
	Converter molfile.Converter
	// Logger receives per-record diagnostics. Nil disables emission; the
	// in-record capture buffer works either way.
	Logger *log.Logger
}

// Reader is a single-cursor streaming SD file reader. It owns the read
// position of its source exclusively; external repositioning while the
// reader is in use desynchronizes record offsets.
//
// Reader is not safe for concurrent use.
type Reader struct {
	src  *bufio.Reader
	file *os.File // non-nil for file-backed readers
	opts Options
	conv molfile.Converter

	shifts   []int64 // offset table, nil unless indexed
	seekable bool

	bytesRead int64 // absolute offset of consumed input
	srcEOF    bool

	// Per-record cursor state.
	count   int   // current record index
	pos     int64 // byte offset of the current record start, -1 if unknown
	im      int   // header countdown: 3 lines precede the counts line
	title   string
	parser  molfile.BlockParser
	record  *molfile.Record
	meta    *metaAcc
	mkey    string
	failkey bool // skip mode: discard lines until the next delimiter

	inFlight    bool // Next in progress
	seekPending bool // Seek not yet followed by a read
	done        bool

	logbuf []string
	stats  ReadStats
}

// NewReader wraps an arbitrary stream. Seek, Tell and Len are unavailable
// and ParseError offsets are -1.
func NewReader(r io.Reader, opts Options) *Reader {
	rd := &Reader{
		src:  bufio.NewReader(r),
		opts: opts,
		conv: opts.Converter,
		pos:  -1,
	}
	if rd.conv == nil {
		rd.conv = molfile.StandardConverter{}
	}
	if f, ok := r.(*os.File); ok {
		rd.file = f
		rd.seekable = true
		rd.pos = 0
	}
	rd.resetRecord(0, rd.pos)
	return rd
}

// Open opens path for streaming. Byte offsets are tracked but the reader
// is not indexed; use OpenIndexed for Seek/Tell support.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f, opts), nil
}

// OpenIndexed opens path and builds the byte-offset index, enabling Seek,
// Tell and Len. The index corresponds to the file contents at open time;
// mutating the file afterwards invalidates it.
func OpenIndexed(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	shifts, err := buildShifts(f, path, opts.IndexCache)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}
	r := NewReader(f, opts)
	r.shifts = shifts
	return r, nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// Stats returns a snapshot of the reader's counters.
func (r *Reader) Stats() ReadStats { return r.stats }

// Next drives the stream to its next suspension point and returns either
// a molecule or a ParseError. io.EOF signals a clean end of stream; any
// other error is a fatal I/O failure.
func (r *Reader) Next() (Result, error) {
	if r.done {
		return Result{}, io.EOF
	}
	r.inFlight = true
	defer func() { r.inFlight = false }()
	// Consuming data revalidates the resumption bookkeeping.
	r.seekPending = false

	for {
		line, err := r.readLine()
		if err == io.EOF {
			r.done = true
			// A source ending without a trailing delimiter still finalizes
			// the record in progress.
			if r.record != nil {
				return r.finalizeRecord(), nil
			}
			return Result{}, io.EOF
		}
		if err != nil {
			return Result{}, err
		}
		if res, yielded := r.consume(line); yielded {
			return res, nil
		}
	}
}

// readLine returns the next line without its trailing newline, advancing
// the byte cursor by the raw line length.
func (r *Reader) readLine() (string, error) {
	if r.srcEOF {
		return "", io.EOF
	}
	line, err := r.src.ReadString('\n')
	r.bytesRead += int64(len(line))
	r.stats.BytesRead += int64(len(line))
	if err == io.EOF {
		r.srcEOF = true
		if len(line) == 0 {
			return "", io.EOF
		}
	} else if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// consume feeds one line through the state machine. It returns a Result
// and true when the line completed a suspension point.
func (r *Reader) consume(line string) (Result, bool) {
	switch {
	case r.failkey && !strings.HasPrefix(line, Delimiter):
		r.stats.SkippedLines++
		return Result{}, false

	case r.parser != nil:
		done, err := r.parser.Feed(line)
		if err != nil {
			r.parser = nil
			r.infof("line %q: %v", line, err)
			pe := r.parseError(types.NewMeta())
			r.failkey = true
			return Result{Err: pe}, true
		}
		if done {
			r.record = r.parser.Result()
			r.parser = nil
		}
		return Result{}, false

	case strings.HasPrefix(line, Delimiter):
		var res Result
		yielded := false
		if r.record != nil {
			res = r.finalizeRecord()
			yielded = true
		}
		next := r.pos
		if r.seekable {
			next = r.bytesRead
		}
		r.resetRecord(r.count+1, next)
		return res, yielded

	case r.record != nil:
		r.consumeMetaLine(line)
		return Result{}, false

	case r.im > 0:
		if r.im == 3 {
			r.title = strings.TrimSpace(line)
		}
		r.im--
		return Result{}, false

	default:
		// The counts/format line decides the block parser variant.
		if err := r.dispatchBlockParser(line); err != nil {
			r.infof("line %q: %v", line, err)
			pe := r.parseError(types.NewMeta())
			r.failkey = true
			return Result{Err: pe}, true
		}
		return Result{}, false
	}
}

// dispatchBlockParser inspects the counts/format line for a version
// marker and installs the matching parser variant.
func (r *Reader) dispatchBlockParser(line string) error {
	switch {
	case strings.Contains(line, "V2000"):
		p, err := molfile.NewV2000Parser(line)
		if err == molfile.ErrEmptyMolecule && r.opts.Lenient {
			r.infof("line %q: empty atoms list, retrying as V3000", line)
			r.parser = molfile.NewV3000Parser()
			return nil
		}
		if err != nil {
			return err
		}
		r.parser = p
		return nil

	case strings.Contains(line, "V3000"):
		r.parser = molfile.NewV3000Parser()
		return nil

	default:
		return fmt.Errorf("invalid MOL entry: no format marker")
	}
}

// consumeMetaLine handles one line of the metadata zone.
func (r *Reader) consumeMetaLine(line string) {
	if m := metaHeader.FindStringSubmatch(line); m != nil {
		r.mkey = strings.TrimSpace(m[1])
		if r.mkey == "" {
			r.infof("invalid metadata entry: %q", line)
		}
		return
	}
	if r.mkey == "" {
		return
	}
	if data := strings.TrimSpace(line); data != "" {
		r.meta.add(r.mkey, data)
	}
}

// finalizeRecord collapses the metadata block and runs the structure
// converter, producing the record's Result. Called at a delimiter or at
// end of input.
func (r *Reader) finalizeRecord() Result {
	meta := r.meta.collapse()
	mol, err := r.conv.Convert(r.record, r.title, meta)
	r.record = nil
	if err != nil {
		r.infof("record conversion failed: %v", err)
		return Result{Err: r.parseError(meta)}
	}
	if r.opts.StoreLog {
		if logText := r.formatLog(); logText != "" {
			mol.Meta.Set(ParserLogKey, logText)
		}
	}
	r.flushLog()
	r.stats.Records++
	return Result{Molecule: mol}
}

// parseError builds the ParseError for the current record and flushes the
// capture buffer into it.
func (r *Reader) parseError(meta *types.Meta) *ParseError {
	pe := &ParseError{
		Index:  r.count,
		Offset: r.pos,
		Log:    r.formatLog(),
		Meta:   meta,
	}
	r.flushLog()
	r.stats.Errors++
	if r.opts.Logger != nil {
		r.opts.Logger.Warn("record failed", map[string]any{
			"record": pe.Index,
			"offset": pe.Offset,
		})
	}
	return pe
}

// resetRecord clears all per-record buffers and repoints the cursor
// bookkeeping at record index with the given start offset.
func (r *Reader) resetRecord(index int, offset int64) {
	r.count = index
	r.pos = offset
	r.im = 3
	r.title = ""
	r.parser = nil
	r.record = nil
	r.meta = newMetaAcc()
	r.mkey = ""
	r.failkey = false
}

func (r *Reader) infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logbuf = append(r.logbuf, msg)
	if r.opts.Logger != nil {
		r.opts.Logger.Debug(msg, map[string]any{"record": r.count})
	}
}

func (r *Reader) formatLog() string { return strings.Join(r.logbuf, "\n") }

func (r *Reader) flushLog() { r.logbuf = r.logbuf[:0] }

// metaAcc accumulates raw metadata value lines per key, in encounter
// order, before they are collapsed to one string per key.
type metaAcc struct {
	keys   []string
	values map[string][]string
}

func newMetaAcc() *metaAcc {
	return &metaAcc{values: make(map[string][]string)}
}

func (a *metaAcc) add(key, value string) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = append(a.values[key], value)
}

// collapse joins each key's value lines with newlines.
func (a *metaAcc) collapse() *types.Meta {
	m := types.NewMeta()
	for _, k := range a.keys {
		m.Set(k, strings.Join(a.values[k], "\n"))
	}
	return m
}
