package cmd

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	"expensetracker/internal/log"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		backendFlag, logLevel = "", ""
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tracker version "+version)
}

func TestShellCommand(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			out, err := execute(t, "add 100 Income Food\nadd 40 Expense Transport\nreport\nquit\n", "shell", "--backend", backend)
			require.NoError(t, err)
			assert.Contains(t, out, "Balance: ₹60.00")
			assert.Contains(t, out, "Expenses: ₹40.00")
		})
	}
}

func TestInvalidBackendFlag(t *testing.T) {
	_, err := execute(t, "", "shell", "--backend", "sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend 'sheets'")
}

func TestNewAppWiresConfig(t *testing.T) {
	t.Setenv("CURRENCY_SYMBOL", "$")
	t.Setenv("REPORT_FILE_NAME", "March.txt")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")

	cfg := config.Load()
	require.NoError(t, cfg.Validate())

	a, err := newApp(context.Background(), cfg, log.New(log.Config{Output: io.Discard}))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "$", a.tracker.CurrencySymbol())
	assert.Equal(t, "March.txt", a.tracker.ReportFileName())
}
