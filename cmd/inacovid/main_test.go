package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inacovid/internal/domain"
)

const provinceBody = `{"features":[{"attributes":{"Kode_Provi":31,"Provinsi":"DKI Jakarta","Kasus_Posi":4641}}]}`

const dailyBody = `{"features":[{"attributes":{"Hari_ke":1,"Tanggal":1583107200000,"Jumlah_Kasus_Kumulatif":2}}]}`

// writeTestConfig points a sqlite-backed config at srv and returns its path
// and the snapshot directory.
func writeTestConfig(t *testing.T, srv *httptest.Server) (string, string) {
	t.Helper()
	dir := t.TempDir()
	jsonDir := filepath.Join(dir, "out")
	cfgFile := filepath.Join(dir, "config.json")
	cfg := fmt.Sprintf(`{
  "postgresDsn": "sqlite:%s",
  "jsonOutputDir": %q,
  "endpoints": {"province": "%s/province", "progress": "%s/progress"}
}`, filepath.Join(dir, "covid.db"), jsonDir, srv.URL, srv.URL)
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))
	for _, k := range []string{"DATABASE_URL", "INACOVID_POSTGRES_DSN", "INACOVID_JSON_DIR", "INACOVID_PARQUET_DIR", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return cfgFile, jsonDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProvinceCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, provinceBody)
	}))
	defer srv.Close()
	cfgFile, jsonDir := writeTestConfig(t, srv)

	out, err := execute(t, "province", "--config", cfgFile, "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, "Province stats succesfully stored\n", out)
	matches, err := filepath.Glob(filepath.Join(jsonDir, "province-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// A failure in a later operation must not leave the earlier status lines on
// stdout.
func TestRootCommandFailureReportsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/progress" && r.URL.Query().Get("outStatistics") != "":
			http.Error(w, "bad gateway", http.StatusBadGateway)
		case r.URL.Path == "/progress":
			fmt.Fprint(w, dailyBody)
		default:
			fmt.Fprint(w, provinceBody)
		}
	}))
	defer srv.Close()
	cfgFile, _ := writeTestConfig(t, srv)

	out, err := execute(t, "--config", cfgFile, "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAggregation)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Empty(t, out)
}
