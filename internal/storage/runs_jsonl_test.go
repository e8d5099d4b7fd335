package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/topictrace/internal/topic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(id string) RunRecord {
	return RunRecord{
		RunID:     id,
		At:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		K:         5,
		Threshold: 0.5,
		Merge:     true,
		Model:     "tipping",
		Metric:    "pagerank",
		MacroTopics: []topic.MacroTopic{
			{Origin: 2005, Keywords: topic.NewTopic("a", "b", "c", "d"), Absorbed: []int{2006}},
			{Origin: 2018, Keywords: topic.NewTopic("x", "y")},
		},
	}
}

func TestReadRuns_NonExistentFile(t *testing.T) {
	runs, err := ReadRuns(filepath.Join(t.TempDir(), RunsFile))
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestAppendRun_ReadRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), RunsFile)

	require.NoError(t, AppendRun(path, sampleRun("11111111-aaaa")))
	require.NoError(t, AppendRun(path, sampleRun("22222222-bbbb")))

	runs, err := ReadRuns(path)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "11111111-aaaa", runs[0].RunID)
	assert.Equal(t, "22222222-bbbb", runs[1].RunID)
	assert.True(t, runs[0].At.Equal(sampleRun("").At))
	require.Len(t, runs[0].MacroTopics, 2)
	assert.Equal(t, topic.Topic{"a", "b", "c", "d"}, runs[0].MacroTopics[0].Keywords)
	assert.Equal(t, []int{2006}, runs[0].MacroTopics[0].Absorbed)
	assert.Nil(t, runs[0].MacroTopics[1].Absorbed)
}

func TestReadRuns_SkipsEmptyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), RunsFile)
	require.NoError(t, AppendRun(path, sampleRun("r1")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, AppendRun(path, sampleRun("r2")))

	runs, err := ReadRuns(path)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestReadRuns_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), RunsFile)
	require.NoError(t, AppendRun(path, sampleRun("r1")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = ReadRuns(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing line 2")
}

func TestFindRun(t *testing.T) {
	runs := []RunRecord{sampleRun("abc-111"), sampleRun("abd-222"), sampleRun("xyz-333")}

	tests := []struct {
		name    string
		id      string
		wantIdx int
		wantOK  bool
	}{
		{"exact", "xyz-333", 2, true},
		{"unique prefix", "abd", 1, true},
		{"ambiguous prefix", "ab", -1, false},
		{"unknown", "nope", -1, false},
		{"empty", "", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := FindRun(runs, tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIdx, idx)
		})
	}
}
