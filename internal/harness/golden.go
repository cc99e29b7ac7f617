package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/blockaviate/internal/block"
)

// Snapshot renders a result as the persisted log lines followed by the
// audit report, one JSON value per line.
func Snapshot(result *Result) ([]byte, error) {
	var buf bytes.Buffer
	for _, b := range result.Blocks {
		buf.Write(block.MarshalCanonical(b))
		buf.WriteByte('\n')
	}
	report, err := json.Marshal(result.Report)
	if err != nil {
		return nil, err
	}
	buf.Write(report)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the final chain against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, t.TempDir())
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
