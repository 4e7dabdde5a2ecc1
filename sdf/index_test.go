package sdf_test

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/molfile"
	"github.com/molforge/sdfio/sdf"
	"github.com/molforge/sdfio/types"
)

func openIndexedFixture(t *testing.T, opts sdf.Options) *sdf.Reader {
	t.Helper()
	path := writeTempSDF(t, recEthanol+recMethane+recWater)
	r, err := sdf.OpenIndexed(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(iox.CloseFunc(r))
	return r
}

func TestIndex_TellAndLen(t *testing.T) {
	r := openIndexedFixture(t, sdf.Options{})

	if n, err := r.Len(); err != nil || n != 3 {
		t.Fatalf("Len = %d, %v; want 3", n, err)
	}
	if pos, err := r.Tell(); err != nil || pos != 0 {
		t.Fatalf("initial Tell = %d, %v; want 0", pos, err)
	}

	for want := 1; want <= 3; want++ {
		if _, err := r.Next(); err != nil {
			t.Fatal(err)
		}
		pos, err := r.Tell()
		if err != nil {
			t.Fatal(err)
		}
		if pos != want {
			t.Errorf("Tell after %d reads = %d", want, pos)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestIndex_SeekThenRead(t *testing.T) {
	r := openIndexedFixture(t, sdf.Options{})

	if err := r.Seek(2); err != nil {
		t.Fatal(err)
	}
	if pos, _ := r.Tell(); pos != 2 {
		t.Errorf("Tell after Seek(2) = %d", pos)
	}
	res, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ok() || res.Molecule.Title != "water" {
		t.Fatalf("Seek(2) landed on %+v", res)
	}
}

func TestIndex_SeekRestartsExhaustedStream(t *testing.T) {
	r := openIndexedFixture(t, sdf.Options{})
	drain(t, r)

	if err := r.Seek(0); err != nil {
		t.Fatal(err)
	}
	res, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ok() || res.Molecule.Title != "ethanol" {
		t.Fatalf("rewind landed on %+v", res)
	}
}

func TestIndex_SeekToCurrentPositionIsNoOp(t *testing.T) {
	r := openIndexedFixture(t, sdf.Options{})
	if _, err := r.Next(); err != nil {
		t.Fatal(err)
	}

	// The cursor already sits at record 1; repeating the seek must not
	// count as a pending reposition.
	if err := r.Seek(1); err != nil {
		t.Fatal(err)
	}
	if err := r.Seek(1); err != nil {
		t.Fatalf("re-seek to current position should be a no-op: %v", err)
	}
	res, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ok() || res.Molecule.Title != "methane" {
		t.Fatalf("landed on %+v", res)
	}
}

func TestIndex_DoubleSeekRejected(t *testing.T) {
	r := openIndexedFixture(t, sdf.Options{})

	if err := r.Seek(2); err != nil {
		t.Fatal(err)
	}
	err := r.Seek(1)
	if !errors.Is(err, sdf.ErrSeekPending) {
		t.Fatalf("second seek error = %v, want ErrSeekPending", err)
	}
	var pe *sdf.ProtocolError
	if !errors.As(err, &pe) || pe.Op != "seek" {
		t.Errorf("error not wrapped as seek ProtocolError: %v", err)
	}

	// Consuming a record clears the pending state.
	if _, err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.Seek(1); err != nil {
		t.Fatalf("seek after read should succeed: %v", err)
	}
}

func TestIndex_SeekRange(t *testing.T) {
	r := openIndexedFixture(t, sdf.Options{})

	if err := r.Seek(-1); !errors.Is(err, sdf.ErrIndexRange) {
		t.Errorf("Seek(-1) = %v", err)
	}
	if err := r.Seek(4); !errors.Is(err, sdf.ErrIndexRange) {
		t.Errorf("Seek(4) = %v", err)
	}
	// The index one past the last record is addressable and yields a clean
	// end of stream.
	if err := r.Seek(3); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("Next at end position = %v, want EOF", err)
	}
}

func TestIndex_UnindexedReaderRejectsSeek(t *testing.T) {
	path := writeTempSDF(t, recMethane)
	r, err := sdf.Open(path, sdf.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(iox.CloseFunc(r))

	if err := r.Seek(0); !errors.Is(err, sdf.ErrNotIndexed) {
		t.Errorf("Seek = %v", err)
	}
	if _, err := r.Tell(); !errors.Is(err, sdf.ErrNotIndexed) {
		t.Errorf("Tell = %v", err)
	}
	if _, err := r.Len(); !errors.Is(err, sdf.ErrNotIndexed) {
		t.Errorf("Len = %v", err)
	}
}

// seekingConverter calls Seek from inside conversion, i.e. while Next is
// still driving the stream.
type seekingConverter struct {
	r       **sdf.Reader
	seekErr error
}

func (c *seekingConverter) Convert(rec *molfile.Record, title string, meta *types.Meta) (*types.Molecule, error) {
	c.seekErr = (*c.r).Seek(0)
	return molfile.StandardConverter{}.Convert(rec, title, meta)
}

func TestIndex_SeekDuringNextRejected(t *testing.T) {
	var r *sdf.Reader
	conv := &seekingConverter{r: &r}
	path := writeTempSDF(t, recMethane)
	var err error
	r, err = sdf.OpenIndexed(path, sdf.Options{Converter: conv})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(iox.CloseFunc(r))

	if _, err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(conv.seekErr, sdf.ErrNotSuspended) {
		t.Errorf("in-flight seek error = %v, want ErrNotSuspended", conv.seekErr)
	}
}

func TestIndex_SidecarCache(t *testing.T) {
	path := writeTempSDF(t, recEthanol+recMethane+recWater)
	cachePath := path + sdf.CacheSuffix

	r, err := sdf.OpenIndexed(path, sdf.Options{IndexCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("sidecar cache not written: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	// Second open goes through the cache and must index identically.
	r2, err := sdf.OpenIndexed(path, sdf.Options{IndexCache: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(iox.CloseFunc(r2))
	if n, _ := r2.Len(); n != 3 {
		t.Fatalf("cached Len = %d", n)
	}
	if err := r2.Seek(2); err != nil {
		t.Fatal(err)
	}
	res, err := r2.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ok() || res.Molecule.Title != "water" {
		t.Fatalf("cached index landed on %+v", res)
	}
}

func TestIndex_CorruptCacheIgnored(t *testing.T) {
	path := writeTempSDF(t, recMethane+recWater)
	cachePath := path + sdf.CacheSuffix
	if err := os.WriteFile(cachePath, []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := sdf.OpenIndexed(path, sdf.Options{IndexCache: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(iox.CloseFunc(r))
	if n, _ := r.Len(); n != 2 {
		t.Fatalf("Len = %d, want 2 after ignoring corrupt cache", n)
	}
}
