package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tldrscope/internal/domain"
)

const forestIndex = `NAME: forest
VERSION: 1.0.0
SUMMARY: Grow and prune trees
COMMANDS: init, tree.grow, gone
`

var forestCommands = map[string]string{
	"init": `CMD: init
PURPOSE: Create a forest
FLAGS: --depth=INT=3|Walk depth; --quiet|Less output
RELATED: tree.grow
EXAMPLES: forest init
`,
	"tree.grow": `CMD: tree.grow
PURPOSE: Grow a tree
SIDE_EFFECTS: writes
`,
}

const forestStream = `--- tool: forest ---
# meta: version=0.2.0, commands=2, keymap={"p":"purpose"}
{"name":"init","p":"Initialise","related":["node.read"]}
{"name":"node.read","flags":[{"name":"--id","type":"STRING"}]}
`

type fakeSource struct {
	mu       sync.Mutex
	index    string
	indexErr error
	commands map[string]string
	calls    []string
}

func (f *fakeSource) Index(context.Context) (string, error) {
	return f.index, f.indexErr
}

func (f *fakeSource) Command(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	text, ok := f.commands[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrCommandUnavailable, name)
	}
	return text, nil
}

type recordingMetrics struct {
	fetches  []domain.FetchMetric
	runs     []error
	total    int
	access   int
	findings map[domain.Severity]int
}

func (m *recordingMetrics) ObserveFetch(metric domain.FetchMetric) {
	m.fetches = append(m.fetches, metric)
}

func (m *recordingMetrics) ObserveRun(_ domain.Dialect, _ time.Duration, err error) {
	m.runs = append(m.runs, err)
}

func (m *recordingMetrics) SetCommands(_ string, total int, accessible int) {
	m.total, m.access = total, accessible
}

func (m *recordingMetrics) ObserveFindings(severity domain.Severity, count int) {
	if m.findings == nil {
		m.findings = map[domain.Severity]int{}
	}
	m.findings[severity] += count
}

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.FixedZone("X", 3600))

func newTestRunner(metrics domain.Metrics) *Runner {
	return NewRunner(metrics, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "run-1" }),
	)
}

func TestRunner_KeyValue(t *testing.T) {
	metrics := &recordingMetrics{}
	source := &fakeSource{index: forestIndex, commands: forestCommands}

	report, err := newTestRunner(metrics).Run(context.Background(), source, RunOptions{Dialect: domain.DialectAuto})
	require.NoError(t, err)

	assert.Equal(t, []string{"init", "tree.grow", "gone"}, source.calls)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, fixedNow.UTC(), report.GeneratedAt)
	assert.NotEmpty(t, report.Fingerprint)
	assert.Equal(t, domain.DialectKeyValue, report.Metadata.Dialect)

	require.Len(t, report.Commands, 2)
	assert.Equal(t, []string{"gone"}, report.Inaccessible)

	v := report.Validation
	assert.False(t, v.Success)
	assert.Equal(t, 3, v.TotalCommands)
	assert.Equal(t, 2, v.AccessibleCommands)
	assert.Equal(t, 1, v.FailedCommands)
	assert.Equal(t, 1, v.TotalErrors)
	assert.Contains(t, v.Commands.Errors, "gone: Command 'gone' is not accessible")

	an := report.Analytics
	assert.Equal(t, 2, an.TotalCommands)
	assert.Equal(t, []string{"init"}, an.CommandHierarchy[domain.TopLevelNamespace])
	assert.Equal(t, []string{"tree.grow"}, an.CommandHierarchy["tree"])
	assert.Equal(t, 2, an.FlagTypeDistribution.Total)
	assert.Equal(t, 1, an.SideEffectDistribution["writes"])
	require.NotEmpty(t, an.DependencyGraph.MostConnected)

	assert.Equal(t, 3, metrics.total)
	assert.Equal(t, 2, metrics.access)
	assert.Equal(t, 1, metrics.findings[domain.SeverityError])
	require.Len(t, metrics.runs, 1)
	assert.NoError(t, metrics.runs[0])
	require.Len(t, metrics.fetches, 4)
	assert.Equal(t, domain.FetchScopeIndex, metrics.fetches[0].Scope)
	assert.Equal(t, domain.FetchStatusUnavailable, metrics.fetches[3].Status)
}

func TestRunner_Stream(t *testing.T) {
	source := &fakeSource{index: forestStream}

	report, err := newTestRunner(nil).Run(context.Background(), source, RunOptions{})
	require.NoError(t, err)

	assert.Empty(t, source.calls)
	assert.Equal(t, domain.DialectStream, report.Metadata.Dialect)
	require.Len(t, report.Commands, 2)
	assert.Equal(t, "Initialise", report.Commands[0].Purpose)
	assert.Empty(t, report.Inaccessible)

	v := report.Validation
	assert.True(t, v.Success)
	assert.Equal(t, 2, v.TotalCommands)
	assert.Contains(t, v.CommandResults[1].Warnings, "Missing recommended field: purpose")
	assert.Equal(t, map[string]int{"STRING": 1}, report.Analytics.FlagTypeDistribution.Distribution)
}

func TestRunner_ExplicitDialectOverridesDetection(t *testing.T) {
	source := &fakeSource{index: forestIndex, commands: forestCommands}

	_, err := newTestRunner(nil).Run(context.Background(), source, RunOptions{Dialect: domain.DialectStream})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeMalformedProtocol, code)
}

func TestRunner_IndexFailureIsFatal(t *testing.T) {
	metrics := &recordingMetrics{}
	source := &fakeSource{indexErr: domain.E(domain.CodeProtocolUnavailable, "test", "no tool", nil)}

	_, err := newTestRunner(metrics).Run(context.Background(), source, RunOptions{})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeProtocolUnavailable, code)
	require.Len(t, metrics.runs, 1)
	assert.Error(t, metrics.runs[0])
	assert.Equal(t, domain.FetchStatusError, metrics.fetches[0].Status)
}

func TestRunner_MalformedStreamRecord(t *testing.T) {
	source := &fakeSource{index: "--- tool: forest ---\n# meta: version=1.0, keymap={}\n{\"name\":\"init\",\n"}

	_, err := newTestRunner(nil).Run(context.Background(), source, RunOptions{})
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.CodeMalformedRecord, derr.Code)
	assert.Equal(t, 3, derr.Line)
}

func TestRunner_StreamFieldShapeIsValidationError(t *testing.T) {
	source := &fakeSource{index: "--- tool: forest ---\n# meta: version=1.0, keymap={\"p\":\"purpose\"}\n{\"name\":\"a\",\"p\":5}\n"}

	report, err := newTestRunner(nil).Run(context.Background(), source, RunOptions{})
	require.NoError(t, err)

	v := report.Validation
	assert.False(t, v.Success)
	require.Len(t, v.CommandResults, 1)
	require.NotEmpty(t, v.CommandResults[0].Errors)
	assert.Contains(t, v.CommandResults[0].Errors[0], "Field 'purpose' has the wrong shape")
	assert.Equal(t, []string{"a"}, report.Analytics.CommandHierarchy[domain.TopLevelNamespace])
}

func TestRunner_KeyValueKeysAnalyticsByDeclaredName(t *testing.T) {
	source := &fakeSource{
		index: "NAME: forest\nVERSION: 1.0.0\nSUMMARY: Grow trees\nCOMMANDS: init, node.read\n",
		commands: map[string]string{
			"init":      "CMD: init\nPURPOSE: Create a forest\nRELATED: node.read\n",
			"node.read": "CMD: read\nPURPOSE: Read a node\n",
		},
	}

	report, err := newTestRunner(nil).Run(context.Background(), source, RunOptions{})
	require.NoError(t, err)

	an := report.Analytics
	assert.Equal(t, []string{"init"}, an.CommandHierarchy[domain.TopLevelNamespace])
	assert.Equal(t, []string{"node.read"}, an.CommandHierarchy["node"])
	assert.Equal(t, 1, an.DependencyGraph.Centrality["node.read"])
	assert.Equal(t, []string{"init"}, an.DependencyGraph.Incoming["node.read"])
	assert.NotContains(t, an.DependencyGraph.Centrality, "read")

	require.Len(t, report.Validation.CommandResults, 2)
	assert.Contains(t, report.Validation.CommandResults[1].Warnings, "CMD field mismatch: expected 'node.read', got 'read'")
	assert.True(t, report.Validation.Success)
}

func TestRunner_EmptyCommandBlockStaysOutOfAnalytics(t *testing.T) {
	source := &fakeSource{
		index: "NAME: forest\nVERSION: 1.0.0\nSUMMARY: Grow trees\nCOMMANDS: init, blank\n",
		commands: map[string]string{
			"init":  "CMD: init\nPURPOSE: Create a forest\n",
			"blank": "",
		},
	}

	report, err := newTestRunner(nil).Run(context.Background(), source, RunOptions{})
	require.NoError(t, err)

	v := report.Validation
	assert.Equal(t, 2, v.AccessibleCommands)
	assert.False(t, v.Success)
	assert.Equal(t, 1, v.FailedCommands)
	assert.Empty(t, report.Inaccessible)

	assert.Equal(t, 1, report.Analytics.TotalCommands)
	assert.Equal(t, []string{"init"}, report.Analytics.CommandHierarchy[domain.TopLevelNamespace])
	assert.NotContains(t, report.Analytics.DependencyGraph.Centrality, "blank")
}

func TestRunner_CanceledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &fakeSource{index: forestIndex, commands: forestCommands}

	_, err := newTestRunner(nil).Run(ctx, source, RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_NilSource(t *testing.T) {
	_, err := newTestRunner(nil).Run(context.Background(), nil, RunOptions{})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidArgument, code)
}

func TestRunner_ValidateReturnsValidationOnly(t *testing.T) {
	source := &fakeSource{index: forestIndex, commands: forestCommands}

	v, err := newTestRunner(nil).Validate(context.Background(), source, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "forest", v.Tool)
	assert.Equal(t, "1.0.0", v.Version)
}
