package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDS1 = "2000\tgraph\tnetwork\t{'alice': 2, 'bob': 1}\n" +
	"2000\tnetwork\tcentrality\t{'alice': 1}\n" +
	"\n" +
	"2001\tgraph\tcentrality\t{\"carol\": 3}\n"

const testDS2 = "2000\talice\tbob\t4\n" +
	"2001\tcarol\tdave\t1\n" +
	"2003\tbob\tdave\t2\n"

// setupTestDB creates a test database and TSV files with test data.
func setupTestDB(t *testing.T) (*DB, string, string) {
	t.Helper()

	tmpDir := t.TempDir()
	ds1 := filepath.Join(tmpDir, "ds-1.tsv")
	ds2 := filepath.Join(tmpDir, "ds-2.tsv")
	require.NoError(t, os.WriteFile(ds1, []byte(testDS1), 0644))
	require.NoError(t, os.WriteFile(ds2, []byte(testDS2), 0644))

	db, err := OpenDB(filepath.Join(tmpDir, "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, ds1, ds2
}

func TestRebuildFromTSV(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)

	counts, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)
	assert.Equal(t, Counts{CoCitations: 3, Collaborations: 3}, counts)

	stored, err := db.Counts()
	require.NoError(t, err)
	assert.Equal(t, counts, stored)
}

func TestRebuildFromTSV_Twice(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)

	_, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)
	counts, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	stored, err := db.Counts()
	require.NoError(t, err)
	assert.Equal(t, counts, stored, "rebuild must replace, not append")
}

func TestRebuildFromTSV_BadFileKeepsCache(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)
	_, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.tsv")
	require.NoError(t, os.WriteFile(bad, []byte("2000\tonly\tthree\n"), 0644))

	_, err = db.RebuildFromTSV(bad, ds2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	stored, err := db.Counts()
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CoCitations)
}

func TestCoCitationsByYear(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)
	_, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	recs, err := db.CoCitationsByYear(2000)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "graph", recs[0].Key1)
	assert.Equal(t, "network", recs[0].Key2)
	assert.Equal(t, map[string]float64{"alice": 2, "bob": 1}, recs[0].Authors)
	assert.Equal(t, "centrality", recs[1].Key2)

	recs, err = db.CoCitationsByYear(2001)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 3.0, recs[0].Total(), 1e-9)

	recs, err = db.CoCitationsByYear(1999)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCollaborationsByYear(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)
	_, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	recs, err := db.CollaborationsByYear(2000)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0].Author1)
	assert.Equal(t, "bob", recs[0].Author2)
	assert.InDelta(t, 4.0, recs[0].Count, 1e-9)
}

func TestYears(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)

	years, err := db.Years()
	require.NoError(t, err)
	assert.Empty(t, years)

	_, err = db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	years, err = db.Years()
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001, 2003}, years)
}

func TestInfo(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)

	info, err := db.Info()
	require.NoError(t, err)
	assert.Empty(t, info.RebuiltAt)

	_, err = db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	info, err = db.Info()
	require.NoError(t, err)
	assert.Equal(t, ds1, info.DS1Path)
	assert.Equal(t, ds2, info.DS2Path)
	assert.NotEmpty(t, info.RebuiltAt)
	assert.Equal(t, 3, info.Counts.Collaborations)
}

func TestOpenDB_Reopen(t *testing.T) {
	db, ds1, ds2 := setupTestDB(t)
	_, err := db.RebuildFromTSV(ds1, ds2)
	require.NoError(t, err)

	path := filepath.Join(filepath.Dir(ds1), "records.db")
	require.NoError(t, db.Close())

	reopened, err := OpenDB(path)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.Counts()
	require.NoError(t, err)
	assert.Equal(t, 3, counts.CoCitations)
}
