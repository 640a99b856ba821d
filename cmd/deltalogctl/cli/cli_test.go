package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltalog/deltalog/deltalog"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatus_EmptyTable(t *testing.T) {
	dir := t.TempDir()
	out, err := runCmd(t, "status", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no table")
}

func TestStatus_AfterCommit(t *testing.T) {
	dir := t.TempDir()
	d := deltalog.Open(dir)
	ctx := context.Background()
	_, err := d.Write(ctx, []deltalog.Action{
		deltalog.Metadata{ID: "t1", Name: "orders", Format: "csv"},
		deltalog.AddFile{Path: "part-0001.csv", Size: 10, DataChange: true},
	})
	require.NoError(t, err)

	out, err := runCmd(t, "status", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "latestVersion: 0")
	assert.Contains(t, out, "liveFiles:     1")
}

func TestLog_DumpsActions(t *testing.T) {
	dir := t.TempDir()
	d := deltalog.Open(dir)
	ctx := context.Background()
	_, err := d.Write(ctx, []deltalog.Action{deltalog.Metadata{ID: "t1"}})
	require.NoError(t, err)

	out, err := runCmd(t, "log", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "metadata")
}

func TestCheckpoint_ForcesWrite(t *testing.T) {
	dir := t.TempDir()
	d := deltalog.Open(dir)
	ctx := context.Background()
	_, err := d.Write(ctx, []deltalog.Action{deltalog.Metadata{ID: "t1"}})
	require.NoError(t, err)

	out, err := runCmd(t, "checkpoint", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote checkpoint at version 0")

	meta, err := d.FindLatestCheckpoint()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.EqualValues(t, 0, meta.Version)
}
