package sdf

import (
	"fmt"
	"io"

	"github.com/molforge/sdfio/molfile"
	"github.com/molforge/sdfio/types"
)

// Writer serializes molecules as V2000 SD file records. Each Write emits
// one complete record: molblock, metadata groups, delimiter. Writer is
// stateless between calls; an encoding failure is fatal to that single
// record only and leaves nothing written.
type Writer struct {
	w io.Writer
}

// NewWriter returns a V2000 SD file writer.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Write appends one record to the output.
func (wr *Writer) Write(mol *types.Molecule) error {
	block, err := molfile.EncodeV2000(mol)
	if err != nil {
		return fmt.Errorf("sdf: encode record: %w", err)
	}
	if _, err := io.WriteString(wr.w, block); err != nil {
		return err
	}
	return writeMetaAndDelimiter(wr.w, mol.Meta)
}

// V3000Writer serializes molecules as V3000 SD file records. The V30 ctab
// body is framed by a fixed-format counts line carrying the V3000 marker,
// mirroring the V2000 writer's record layout otherwise.
type V3000Writer struct {
	w io.Writer
}

// NewV3000Writer returns a V3000 SD file writer.
func NewV3000Writer(w io.Writer) *V3000Writer { return &V3000Writer{w: w} }

// Write appends one record to the output.
func (wr *V3000Writer) Write(mol *types.Molecule) error {
	body, err := molfile.EncodeV3000(mol)
	if err != nil {
		return fmt.Errorf("sdf: encode record: %w", err)
	}
	if _, err := fmt.Fprintf(wr.w, "%s\n\n\n  0  0  0     0  0            999 V3000\n", mol.Title); err != nil {
		return err
	}
	if _, err := io.WriteString(wr.w, body); err != nil {
		return err
	}
	if _, err := io.WriteString(wr.w, "M  END\n"); err != nil {
		return err
	}
	return writeMetaAndDelimiter(wr.w, mol.Meta)
}

// writeMetaAndDelimiter emits the metadata groups in insertion order
// followed by the record delimiter. Metadata framing is shared by both
// format variants.
func writeMetaAndDelimiter(w io.Writer, meta *types.Meta) error {
	if meta != nil {
		for _, k := range meta.Keys() {
			v, _ := meta.Get(k)
			if _, err := fmt.Fprintf(w, ">  <%s>\n%s\n", k, v); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, Delimiter+"\n")
	return err
}
