package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readTestFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestProcessFileRewritesMidi(t *testing.T) {
	dir := t.TempDir()
	input := buildTestSong(t)
	path := writeTestFile(t, dir, "notes.mid", input)

	report := ProcessFile(path, Options{Config: DefaultConfig(), Seed: 7})
	require.NoError(t, report.Err)
	assert.False(t, report.Skipped)
	require.NotNil(t, report.Result)

	expected, _, err := RewriteMidiBytes(input, DefaultConfig(), NewWordSource(nil, 7))
	require.NoError(t, err)
	assert.Equal(t, expected, readTestFile(t, path))
	assert.Equal(t, int64(len(expected)), report.BytesWritten)

	// no temp file is left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessFileDryRun(t *testing.T) {
	input := buildTestSong(t)
	path := writeTestFile(t, t.TempDir(), "notes.mid", input)

	report := ProcessFile(path, Options{Config: DefaultConfig(), Seed: 7, DryRun: true})
	require.NoError(t, report.Err)
	assert.NotEmpty(t, report.Result.Phrases)
	assert.Zero(t, report.BytesWritten)
	assert.Equal(t, input, readTestFile(t, path))
}

func TestProcessFileWithoutVocalsTrack(t *testing.T) {
	input := buildMidiBytes(t, buildBeatTrack(0, 1920, 3840), buildTrack("PART DRUMS", noteAt(0, 10, 96)...))
	path := writeTestFile(t, t.TempDir(), "notes.mid", input)

	report := ProcessFile(path, Options{Config: DefaultConfig()})
	assert.NoError(t, report.Err)
	assert.True(t, report.Skipped)
	assert.False(t, report.Failed())
	assert.Equal(t, 1, report.Result.Diagnostics.Count(DiagMissingTrack))
	assert.Equal(t, input, readTestFile(t, path))
}

func TestProcessFileFailureLeavesFile(t *testing.T) {
	input := buildMidiBytes(t, buildTrack("PART VOCALS", noteAt(0, 200, 96)...))
	path := writeTestFile(t, t.TempDir(), "notes.mid", input)

	report := ProcessFile(path, Options{Config: DefaultConfig()})
	assert.ErrorIs(t, report.Err, ErrTooFewDownbeats)
	assert.True(t, report.Failed())
	assert.Equal(t, input, readTestFile(t, path))
}

func TestProcessFileSng(t *testing.T) {
	dir := t.TempDir()
	chart := buildTestSong(t)
	ini := []byte("[song]\nname = Test Song\n")
	path := writeTestSng(t, dir,
		[][2]string{{"name", "Test Song"}},
		[]testSngEntry{
			{name: "song.ini", data: ini},
			{name: "notes.mid", data: chart},
		},
	)

	report := ProcessFile(path, Options{Config: DefaultConfig(), Seed: 11})
	require.NoError(t, report.Err)

	expected, _, err := RewriteMidiBytes(chart, DefaultConfig(), NewWordSource(nil, 11))
	require.NoError(t, err)

	sng, err := OpenSngFile(path)
	require.NoError(t, err)
	defer sng.Close()

	assert.Equal(t, "Test Song", sng.Metadata["name"])

	data, err := sng.ReadFile("notes.mid")
	require.NoError(t, err)
	assert.Equal(t, expected, data)

	data, err = sng.ReadFile("song.ini")
	require.NoError(t, err)
	assert.Equal(t, ini, data)
}

func TestProcessFileSngWithoutChart(t *testing.T) {
	path := writeTestSng(t, t.TempDir(), nil, []testSngEntry{{name: "notes.chart", data: []byte("[Song]")}})
	before := readTestFile(t, path)

	report := ProcessFile(path, Options{Config: DefaultConfig()})
	assert.Error(t, report.Err)
	assert.Equal(t, before, readTestFile(t, path))
}

func TestRunBatchContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	broken := writeTestFile(t, dir, "broken.mid", []byte("not midi"))
	good := writeTestFile(t, dir, "good.mid", buildTestSong(t))
	missingVocals := writeTestFile(t, dir, "drums.mid", buildMidiBytes(t, buildBeatTrack(0, 1920)))

	reports := RunBatch([]string{broken, good, missingVocals}, Options{Config: DefaultConfig(), Seed: 3, Jobs: 2})
	require.Len(t, reports, 3)

	assert.Equal(t, broken, reports[0].Path)
	assert.True(t, reports[0].Failed())
	assert.Equal(t, []byte("not midi"), readTestFile(t, broken))

	assert.False(t, reports[1].Failed())
	assert.Positive(t, reports[1].BytesWritten)

	assert.False(t, reports[2].Failed())
	assert.True(t, reports[2].Skipped)
}
