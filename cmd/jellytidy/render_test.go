package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/quality"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name             string
		path, flag, conf string
		want             plans.Format
	}{
		{"flag wins", "plan.csv", "yaml", "json", plans.FormatYAML},
		{"extension", "plan.csv", "", "json", plans.FormatCSV},
		{"db extension", "plan.db", "", "", plans.FormatSQLite},
		{"config fallback", "plan.out", "", "yaml", plans.FormatYAML},
		{"stdout default", "-", "", "", plans.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.path, tt.flag, tt.conf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolveFormat("plan.json", "xml", "")
	assert.Error(t, err)
}

func testRecords() *plans.Plan {
	return plans.NewPlan("plan", []string{"/lib"}, "", []plans.Record{
		{SourcePath: "/lib/a.mkv", TargetPath: "/lib/A (2001).mkv", Action: plans.ActionRename, Reason: plans.ReasonNormalized},
		{SourcePath: "/lib/b.mkv", TargetPath: "/lib/b.mkv", Action: plans.ActionSkip, Reason: plans.ReasonAlreadyNormalized},
		{SourcePath: "/lib/c.mkv", TargetPath: "/lib/C/c.mkv", Action: plans.ActionMove, Reason: plans.ReasonNormalized, Flags: []plans.Flag{plans.FlagAmbiguousYear}},
	})
}

func TestSelectRecords(t *testing.T) {
	plan := testRecords()

	assert.Len(t, selectRecords(plan, false, false), 2)
	assert.Len(t, selectRecords(plan, true, false), 3)

	flagged := selectRecords(plan, false, true)
	require.Len(t, flagged, 1)
	assert.Equal(t, "/lib/c.mkv", flagged[0].SourcePath)
}

func TestTargetLabel(t *testing.T) {
	assert.Equal(t, "A (2001).mkv", targetLabel(plans.Record{SourcePath: "/lib/a.mkv", TargetPath: "/lib/A (2001).mkv", Action: plans.ActionRename}))
	assert.Equal(t, "/lib/C/c.mkv", targetLabel(plans.Record{SourcePath: "/lib/c.mkv", TargetPath: "/lib/C/c.mkv", Action: plans.ActionMove}))
	assert.Equal(t, "(deleted)", targetLabel(plans.Record{SourcePath: "/lib/c.mkv", Action: plans.ActionDelete}))
}

func TestWriteRecordsCSV(t *testing.T) {
	plan := testRecords()
	var buf bytes.Buffer

	require.NoError(t, writeRecords(&buf, "csv", plan, selectRecords(plan, false, true)))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Contains(t, string(lines[1]), "/lib/c.mkv")

	assert.Error(t, writeRecords(&buf, "sqlite", plan, plan.Records))
}

func TestBelow(t *testing.T) {
	primaries := []plans.Primary{
		{Path: "red", Info: quality.Info{Color: quality.ColorRed}},
		{Path: "yellow", Info: quality.Info{Color: quality.ColorYellow}},
		{Path: "blue", Info: quality.Info{Color: quality.ColorBlue}},
	}

	got := below(primaries, "green")
	require.Len(t, got, 2)
	assert.Equal(t, "red", got[0].Path)
	assert.Equal(t, "yellow", got[1].Path)
}

func TestWriteQualityCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeQualityCSV(&buf, []plans.Primary{{
		Path: "/lib/Heat (1995).mkv",
		Size: 42,
		Info: quality.ClassifyName("Heat.1995.2160p.BluRay.x265"),
	}})
	require.NoError(t, err)
	assert.Equal(t,
		"path,color,resolution,tier,codec,source,edition,size,score\n/lib/Heat (1995).mkv,BLUE,2160p,UHD,x265,BluRay,,42,510\n",
		buf.String())
}
