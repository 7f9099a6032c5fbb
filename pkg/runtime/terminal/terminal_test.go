package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

const scanCSV = `control_title,status,title,region
5 IAM password policy,alarm,IAM,us-east-1
EC2 instances should not have public IPs,alarm,EC2,us-east-1
EC2 instances should not have public IPs,ok,EC2,eu-west-1
`

const rulesCSV = `control_title,priority,Recommendation Steps/Approach
IAM password policy,High,Rotate keys
EC2 instances should not have public IPs,Medium,Remove public IP
`

type fixture struct {
	dir   string
	scan  string
	rules string
}

func setupFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	f := &fixture{
		dir:   dir,
		scan:  filepath.Join(dir, "scan_results.csv"),
		rules: filepath.Join(dir, "rules.csv"),
	}
	require.NoError(t, os.WriteFile(f.scan, []byte(scanCSV), 0o644))
	require.NoError(t, os.WriteFile(f.rules, []byte(rulesCSV), 0o644))
	return f
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cli := NewCLI(Options{Output: &out, LogOutput: &logs, Args: args})
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCLI_Annotate(t *testing.T) {
	f := setupFixture(t)
	output := filepath.Join(f.dir, "report.xlsx")

	out, err := run(t, "annotate", "--input", f.scan, "--rules", f.rules, "--output", output, "--format", "json,csv")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(f.dir, "report.json"))
	assert.FileExists(t, filepath.Join(f.dir, "report.csv"))
	assert.NoFileExists(t, output)
	assert.Contains(t, out, "Category Analysis")
	assert.Contains(t, out, "Report saved: "+filepath.Join(f.dir, "report.json"))
}

func TestCLI_Annotate_FormatFromOutput(t *testing.T) {
	f := setupFixture(t)
	output := filepath.Join(f.dir, "summary.pdf")

	_, err := run(t, "annotate", "--input", f.scan, "--rules", f.rules, "--output", output)
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestCLI_Annotate_Errors(t *testing.T) {
	f := setupFixture(t)

	t.Run("missing columns exit with configuration code", func(t *testing.T) {
		bad := filepath.Join(f.dir, "bad.csv")
		require.NoError(t, os.WriteFile(bad, []byte("control_title\nA\n"), 0o644))

		_, err := run(t, "annotate", "--input", bad, "--rules", f.rules, "--output", filepath.Join(f.dir, "bad.json"))
		assert.Equal(t, ExitConfiguration, ExitCode(err))
		assert.NoFileExists(t, filepath.Join(f.dir, "bad.json"))
	})

	t.Run("missing input file", func(t *testing.T) {
		_, err := run(t, "annotate", "--input", filepath.Join(f.dir, "none.csv"), "--rules", f.rules)
		var ioErr *domain.IOError
		assert.ErrorAs(t, err, &ioErr)
		assert.Equal(t, ExitFailure, ExitCode(err))
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := run(t, "annotate", "--input", f.scan, "--rules", f.rules, "--provider", "azure")
		assert.Equal(t, ExitConfiguration, ExitCode(err))
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := run(t, "--log-level", "loud", "summary", "--input", f.scan, "--rules", f.rules)
		assert.Equal(t, ExitConfiguration, ExitCode(err))
	})
}

func TestCLI_Summary(t *testing.T) {
	f := setupFixture(t)

	out, err := run(t, "summary", "--input", f.scan, "--rules", f.rules)
	require.NoError(t, err)
	assert.Contains(t, out, "Security and Identity")
	assert.Contains(t, out, "Priority Summary")

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "summary writes no files")
}

func TestCLI_Categories(t *testing.T) {
	out, err := run(t, "categories", "--provider", "gcp")
	require.NoError(t, err)
	assert.Contains(t, out, "[Database]")
	assert.Contains(t, out, "BigQuery")
}

func TestCLI_History(t *testing.T) {
	f := setupFixture(t)
	db := filepath.Join(f.dir, "history.duckdb")

	for i := 0; i < 2; i++ {
		out, err := run(t, "annotate", "--input", f.scan, "--rules", f.rules,
			"--output", filepath.Join(f.dir, fmt.Sprintf("run%d.json", i)), "--history", db)
		require.NoError(t, err)
		assert.Contains(t, out, "Run recorded:")
	}

	out, err := run(t, "history", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, f.scan)

	out, err = run(t, "history", "compare", "--db", db, "--source", f.scan)
	require.NoError(t, err)
	assert.Contains(t, out, "Compute")

	_, err = run(t, "history", "compare", "--db", db)
	assert.Equal(t, ExitConfiguration, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitConfiguration, ExitCode(fmt.Errorf("wrapped: %w", &domain.ConfigurationError{Op: "x", Err: errors.New("y")})))
}
