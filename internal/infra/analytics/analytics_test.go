package analytics

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tldrscope/internal/domain"
)

func TestBuildGraph_DanglingReference(t *testing.T) {
	graph := BuildGraph([]domain.CommandRecord{
		{Name: "a", Related: []string{"b"}},
	}, 10)

	require.Equal(t, map[string]int{"a": 1}, graph.Centrality)
	require.NotContains(t, graph.Centrality, "b")
	require.Equal(t, []string{"a"}, graph.Incoming["b"])
	require.Equal(t, []string{"b"}, graph.Outgoing["a"])
}

func TestBuildGraph_CentralityIsOutPlusIn(t *testing.T) {
	records := []domain.CommandRecord{
		{Name: "init", Related: []string{"node.read", "node.write"}},
		{Name: "node.read", Related: []string{"node.write"}},
		{Name: "node.write", Related: []string{"ghost"}},
		{Name: "help"},
	}
	graph := BuildGraph(records, 10)

	for _, rec := range records {
		name := rec.Name
		got, ok := graph.Centrality[name]
		require.True(t, ok, name)
		require.GreaterOrEqual(t, got, 0)
		require.Equal(t, len(graph.Outgoing[name])+len(graph.Incoming[name]), got, name)
	}
	require.NotContains(t, graph.Centrality, "ghost")
	require.Equal(t, []string{"init", "node.read"}, graph.Incoming["node.write"])
	require.Equal(t, []string{}, graph.Incoming["init"])

	var ranked []string
	for _, node := range graph.Ranking {
		ranked = append(ranked, fmt.Sprintf("%s=%d", node.Command, node.Centrality))
	}
	require.Equal(t, []string{"node.write=3", "init=2", "node.read=2", "help=0"}, ranked)

	require.Len(t, graph.MostConnected, 3)
	for _, node := range graph.MostConnected {
		require.NotZero(t, node.Centrality)
	}
}

func TestBuildGraph_TopNLimitsMostConnected(t *testing.T) {
	records := make([]domain.CommandRecord, 0, 15)
	for i := 0; i < 15; i++ {
		records = append(records, domain.CommandRecord{
			Name:    fmt.Sprintf("cmd%02d", i),
			Related: []string{"hub"},
		})
	}
	graph := BuildGraph(records, 0)
	require.Len(t, graph.MostConnected, domain.DefaultTopN)
	require.Equal(t, "cmd00", graph.MostConnected[0].Command)
	require.Len(t, graph.Ranking, 15)

	require.Len(t, BuildGraph(records, 3).MostConnected, 3)
}

func TestBuildGraph_DuplicateNamesMergeEdges(t *testing.T) {
	graph := BuildGraph([]domain.CommandRecord{
		{Name: "a", Related: []string{"b"}},
		{Name: "a", Related: []string{"c"}},
		{Related: []string{"a"}},
	}, 10)
	require.Equal(t, []string{"b", "c"}, graph.Outgoing["a"])
	require.Equal(t, 2, graph.Centrality["a"])
	require.Len(t, graph.Ranking, 1)
}

func TestTaxonomy_Forest(t *testing.T) {
	got := Taxonomy([]domain.CommandRecord{{Name: "init"}, {Name: "node.read"}})
	want := map[string][]string{
		"top-level": {"init"},
		"node":      {"node.read"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("taxonomy mismatch (-want +got):\n%s", diff)
	}
}

func TestTaxonomy_PartitionsCommandSet(t *testing.T) {
	names := []string{"init", "node.read", "node.write", "tree.grow.fast", ".hidden", "help"}
	records := make([]domain.CommandRecord, 0, len(names))
	for _, name := range names {
		records = append(records, domain.CommandRecord{Name: name})
	}

	hierarchy := Taxonomy(records)
	seen := make(map[string]int)
	for _, members := range hierarchy {
		for _, name := range members {
			seen[name]++
		}
	}
	require.Len(t, seen, len(names))
	for _, name := range names {
		require.Equal(t, 1, seen[name], name)
	}
	assert.Equal(t, []string{"tree.grow.fast"}, hierarchy["tree"])
	assert.Contains(t, hierarchy[domain.TopLevelNamespace], ".hidden")

	empty := Taxonomy(nil)
	assert.Equal(t, map[string][]string{"top-level": {}}, empty)
}

func TestFlagTypes(t *testing.T) {
	records := []domain.CommandRecord{
		{Flags: []domain.FlagSpec{{Type: "STRING"}, {Type: "BOOL"}}},
		{Flags: []domain.FlagSpec{{Type: "BOOL"}, {Type: "STRING"}, {Type: ""}}},
		{},
	}

	kv := FlagTypes(records, domain.DialectKeyValue)
	assert.Equal(t, map[string]int{"STRING": 2, "BOOL": 3}, kv.Distribution)
	assert.Equal(t, 5, kv.Total)
	assert.InDelta(t, 1.67, kv.AveragePerCommand, 0.0001)
	assert.Equal(t, "BOOL", kv.MostCommonType)

	stream := FlagTypes(records, domain.DialectStream)
	assert.Equal(t, 1, stream.Distribution["unknown"])
	assert.Equal(t, "STRING", stream.MostCommonType)

	none := FlagTypes(nil, domain.DialectStream)
	assert.Zero(t, none.AveragePerCommand)
	assert.Empty(t, none.MostCommonType)
}

func TestDescriptorAndSideEffectHistograms(t *testing.T) {
	records := []domain.CommandRecord{
		{
			Inputs:      []domain.Descriptor{{Name: "id", Type: "string"}, {Type: ""}},
			Outputs:     []domain.Descriptor{{Type: "json"}},
			SideEffects: []string{"writes_fs", "network"},
		},
		{
			Outputs:     []domain.Descriptor{{Type: "json"}},
			SideEffects: []string{"writes_fs"},
		},
	}
	assert.Equal(t, map[string]int{"string": 1, "unknown": 1}, InputTypes(records))
	assert.Equal(t, map[string]int{"json": 2}, OutputTypes(records))
	assert.Equal(t, map[string]int{"writes_fs": 2, "network": 1}, SideEffects(records))
}

func TestCoverage(t *testing.T) {
	records := []domain.CommandRecord{
		{Purpose: "a", Examples: []string{"x"}, Related: []string{"b"}},
		{Purpose: "b", Flags: []domain.FlagSpec{{Name: "v"}}},
		{Purpose: " "},
	}
	cov := Coverage(records)
	assert.Equal(t, 3, cov.Total)
	assert.Equal(t, domain.CoverageMetric{Count: 2, Percent: 66.7}, cov.Purpose)
	assert.Equal(t, domain.CoverageMetric{Count: 1, Percent: 33.3}, cov.Examples)
	assert.Equal(t, domain.CoverageMetric{Count: 0, Percent: 0}, cov.Inputs)
	assert.Equal(t, domain.CoverageMetric{Count: 1, Percent: 33.3}, cov.Flags)

	zero := Coverage(nil)
	assert.Equal(t, domain.CoverageMetric{}, zero.Purpose)
}

func TestPercent_StaysInRange(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for count := 0; count <= total; count++ {
			got := Percent(count, total)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 100.0)
			if total == 0 {
				require.Zero(t, got)
				continue
			}
			require.InDelta(t, 100*float64(count)/float64(total), got, 0.05+1e-9)
		}
	}
}

func TestAnalyze_Forest(t *testing.T) {
	result := Analyze([]domain.CommandRecord{
		{Name: "init", Purpose: "Initialise"},
		{Name: "node.read", Purpose: "Read", Related: []string{"init"}},
	}, domain.DialectKeyValue, 10)

	assert.Equal(t, 2, result.TotalCommands)
	assert.Equal(t, []string{"node.read"}, result.CommandHierarchy["node"])
	assert.Equal(t, 100.0, result.Coverage.Purpose.Percent)
	assert.Equal(t, 1, result.DependencyGraph.Centrality["init"])
	require.Len(t, result.DependencyGraph.MostConnected, 2)
}
