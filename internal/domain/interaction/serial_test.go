package interaction

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

func serialHits(t *testing.T) []*HydrogenBond {
	t.Helper()
	class := newClass(t, 3.5, 120)
	first, err := NewHydrogenBond(class, donor("NH", 10, vec(0, 0, 0), vec(1, 0, 0)), acceptor("O", 20, vec(2.8, 0, 0)))
	require.NoError(t, err)
	second, err := NewHydrogenBond(class, donor("NH", 31, vec(0, 5, 0), vec(1, 5, 0)), acceptor("O", 42, vec(2.9, 5, 0)))
	require.NoError(t, err)
	return []*HydrogenBond{first, second}
}

func TestWriteSerialPairs(t *testing.T) {
	t.Parallel()
	hits := serialHits(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSerialPairs(&buf, hits, ";"))
	assert.Equal(t, "10;20\n31;42\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSerialPairs(&buf, hits, ""))
	assert.Equal(t, "10,20\n31,42\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSerialPairs(&buf, nil, ","))
	assert.Empty(t, buf.String())
}

func TestWriteSerialPairs_MissingSerial(t *testing.T) {
	t.Parallel()
	hits := serialHits(t)
	delete(hits[1].Acceptor().(*testFeature).atoms[0].(*testAtom).attrs, "pdb_serial_number")

	var buf bytes.Buffer
	err := WriteSerialPairs(&buf, hits, ",")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialNumberMissing))
	assert.Contains(t, err.Error(), "hit 1 acceptor")
}

func TestExportSerialPairs_Overwrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pairs.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the export\n"), 0o644))

	require.NoError(t, ExportSerialPairs(path, serialHits(t), ","))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "10,20\n31,42\n", string(got))
}

func TestExportSerialPairs_BadPath(t *testing.T) {
	t.Parallel()
	err := ExportSerialPairs(filepath.Join(t.TempDir(), "missing", "pairs.csv"), serialHits(t), ",")
	assert.True(t, errors.IsCode(err, errors.ErrCodeExportFailed))
}

//Personal.AI order the ending
