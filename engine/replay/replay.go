// Package replay records a match's event stream to a zstd compressed file
// and plays it back onto a map.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/klauspost/compress/zstd"
)

// Recorder streams entries to a replay file
type Recorder struct {
	file   *os.File
	enc    *zstd.Encoder
	writer *bufio.Writer
	count  int
	err    error
}

// NewRecorder creates path and writes the header
func NewRecorder(path string, h Header) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return nil, err
	}
	r := &Recorder{file: f, enc: enc, writer: bufio.NewWriterSize(enc, 64*1024)}
	if err := h.Encode(r.writer); err != nil {
		r.Close()
		return nil, fmt.Errorf("replay header: %w", err)
	}
	return r, nil
}

// Attach records every event dispatched on bus
func (r *Recorder) Attach(bus *core.EventBus) {
	bus.OnAny(func(e core.Event) {
		if err := r.Record(FromEvent(e)); err != nil && r.err == nil {
			r.err = err
		}
	})
}

// Record writes one entry
func (r *Recorder) Record(e Entry) error {
	if err := e.Encode(r.writer); err != nil {
		return err
	}
	r.count++
	return nil
}

// Count is the number of entries written so far
func (r *Recorder) Count() int { return r.count }

// Close flushes and closes the file. It reports the first error seen while
// recording from the bus.
func (r *Recorder) Close() error {
	errs := []error{r.err}
	if r.writer != nil {
		errs = append(errs, r.writer.Flush())
	}
	if r.enc != nil {
		errs = append(errs, r.enc.Close())
	}
	if r.file != nil {
		errs = append(errs, r.file.Close())
	}
	return errors.Join(errs...)
}

// Replay is a fully loaded replay file
type Replay struct {
	Header  Header
	Entries []Entry
}

// Load reads a replay file. A stream cut off mid entry is an error.
func Load(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rep, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}

// Read decodes a replay stream
func Read(src io.Reader) (*Replay, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	reader := bufio.NewReaderSize(dec, 64*1024)

	rep := &Replay{}
	if err := rep.Header.Decode(reader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	for {
		var e Entry
		err := e.Decode(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(rep.Entries), err)
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rep, nil
}

// EntriesForTurn returns the entries recorded during turn
func (r *Replay) EntriesForTurn(turn uint64) []Entry {
	lo := sort.Search(len(r.Entries), func(i int) bool { return r.Entries[i].Turn >= turn })
	hi := lo
	for hi < len(r.Entries) && r.Entries[hi].Turn == turn {
		hi++
	}
	return r.Entries[lo:hi]
}

// LastTurn is the turn of the final entry
func (r *Replay) LastTurn() uint64 {
	if len(r.Entries) == 0 {
		return 0
	}
	return r.Entries[len(r.Entries)-1].Turn
}

// Counts tallies entries by event type
func (r *Replay) Counts() map[core.EventType]int {
	out := make(map[core.EventType]int)
	for _, e := range r.Entries {
		out[e.Type]++
	}
	return out
}
