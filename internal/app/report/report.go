package report

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	"tldrscope/internal/domain"
)

// Parts are the already computed pieces of one run.
type Parts struct {
	Metadata     domain.ToolMetadata
	Commands     []domain.CommandRecord
	Inaccessible []string
	Validation   domain.ValidationReport
	Analytics    domain.Analytics
	// Captured holds every protocol blob read during the run, in fetch order.
	Captured []string
}

// Assemble shapes parts into the final report. Nothing is recomputed
// except the fingerprint of the captured text.
func Assemble(parts Parts, now time.Time, runID string) domain.AnalyticsReport {
	commands := parts.Commands
	if commands == nil {
		commands = []domain.CommandRecord{}
	}
	inaccessible := parts.Inaccessible
	if inaccessible == nil {
		inaccessible = []string{}
	}
	return domain.AnalyticsReport{
		RunID:        runID,
		GeneratedAt:  now.UTC(),
		GeneratedBy:  domain.GeneratedBy,
		Fingerprint:  Fingerprint(parts.Captured...),
		Metadata:     parts.Metadata,
		Commands:     commands,
		Inaccessible: inaccessible,
		Validation:   parts.Validation,
		Analytics:    parts.Analytics,
	}
}

// Fingerprint is the hex BLAKE3 digest of the captured blobs. Each blob is
// length-prefixed so that splitting text differently changes the digest.
func Fingerprint(blobs ...string) string {
	hasher := blake3.New()
	var size [8]byte
	for _, blob := range blobs {
		binary.BigEndian.PutUint64(size[:], uint64(len(blob)))
		_, _ = hasher.Write(size[:])
		_, _ = hasher.Write([]byte(blob))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
