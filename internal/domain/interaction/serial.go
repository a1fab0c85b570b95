package interaction

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// DefaultSerialDelimiter separates donor and acceptor serial numbers.
const DefaultSerialDelimiter = ","

// WriteSerialPairs writes one "donor<delim>acceptor" line of PDB serial
// numbers per hit, in hit order.  Serials are taken from each role's primary
// atom.  An empty delim uses DefaultSerialDelimiter.
func WriteSerialPairs(w io.Writer, hits []*HydrogenBond, delim string) error {
	if delim == "" {
		delim = DefaultSerialDelimiter
	}
	bw := bufio.NewWriter(w)
	for i, hb := range hits {
		ds, err := primarySerial(hb.Donor())
		if err != nil {
			return err.WithDetailf("hit %d donor", i)
		}
		as, err := primarySerial(hb.Acceptor())
		if err != nil {
			return err.WithDetailf("hit %d acceptor", i)
		}
		if _, werr := fmt.Fprintf(bw, "%v%s%v\n", ds, delim, as); werr != nil {
			return errors.Wrap(werr, errors.ErrCodeExportFailed, "failed to write serial pairs")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write serial pairs")
	}
	return nil
}

// ExportSerialPairs writes the serial pairs of hits to path, replacing any
// existing file.
func ExportSerialPairs(path string, hits []*HydrogenBond, delim string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to create serial export "+path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrCodeExportFailed, "failed to close serial export "+path)
		}
	}()
	return WriteSerialPairs(f, hits, delim)
}

func primarySerial(f structure.Feature) (interface{}, *errors.AppError) {
	atom := structure.PrimaryAtom(f)
	if atom == nil {
		return nil, errors.New(errors.ErrCodeFeatureEmpty, "feature has no atoms")
	}
	v, ok := atom.Attribute(structure.AttrPDBSerialNumber)
	if !ok || v == nil {
		return nil, errors.New(errors.ErrCodeSerialNumberMissing, "primary atom has no pdb serial number")
	}
	return v, nil
}

//Personal.AI order the ending
