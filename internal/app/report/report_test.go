package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tldrscope/internal/domain"
)

func TestAssemble(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	parts := Parts{
		Metadata:   domain.ToolMetadata{Name: "forest", Version: "1.0"},
		Commands:   []domain.CommandRecord{{Name: "init"}},
		Validation: domain.ValidationReport{Success: true, TotalCommands: 1},
		Analytics:  domain.Analytics{TotalCommands: 1},
		Captured:   []string{"NAME: forest\n", "CMD: init\n"},
	}

	got := Assemble(parts, now, "run-1")

	require.Equal(t, "run-1", got.RunID)
	require.Equal(t, time.UTC, got.GeneratedAt.Location())
	require.True(t, now.Equal(got.GeneratedAt))
	require.Equal(t, domain.GeneratedBy, got.GeneratedBy)
	require.Equal(t, parts.Metadata, got.Metadata)
	require.Equal(t, parts.Commands, got.Commands)
	require.Equal(t, parts.Validation, got.Validation)
	require.Equal(t, parts.Analytics, got.Analytics)
	require.NotNil(t, got.Inaccessible)
	require.Len(t, got.Fingerprint, 64)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("NAME: forest\n", "CMD: init\n")
	require.Equal(t, a, Fingerprint("NAME: forest\n", "CMD: init\n"))
	require.NotEqual(t, a, Fingerprint("NAME: forest\nCMD: init\n"))
	require.NotEqual(t, a, Fingerprint("CMD: init\n", "NAME: forest\n"))
	require.Len(t, Fingerprint(), 64)
}
