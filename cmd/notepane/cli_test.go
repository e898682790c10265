package main

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv returns an environment lookup with DATABASE_URL pointing at a temp SQLite file.
func testEnv(t *testing.T) func(string) (string, bool) {
	t.Helper()
	env := map[string]string{
		"DATABASE_URL": filepath.Join(t.TempDir(), "notes.db"),
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// runCLI runs the app with the given stdin and returns stdout.
func runCLI(t *testing.T, lookup func(string) (string, bool), stdin string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(lookup)
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"notepane"}, args...))
	return out.String(), err
}

// TestCLISaveListStats tests the save, list and stats commands against one database.
func TestCLISaveListStats(t *testing.T) {
	env := testEnv(t)

	out, err := runCLI(t, env, "buy milk\n", "save", "--email", "a@x.com", "--subject", "Groceries")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var saved map[string]any
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("failed to parse save output: %v", err)
	}
	if saved["status"] != "saved" || saved["id"] != float64(1) {
		t.Errorf("save output = %v, want status saved id 1", saved)
	}

	out, err = runCLI(t, env, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var listed struct {
		Items []struct {
			ID        int64  `json:"id"`
			UserEmail string `json:"user_email"`
			Preview   string `json:"preview"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("failed to parse list output: %v", err)
	}
	if len(listed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(listed.Items))
	}
	if listed.Items[0].Preview != "buy milk" || listed.Items[0].UserEmail != "a@x.com" {
		t.Errorf("item = %+v", listed.Items[0])
	}

	out, err = runCLI(t, env, "", "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	var stats map[string]any
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("failed to parse stats output: %v", err)
	}
	if stats["total"] != float64(1) {
		t.Errorf("total = %v, want 1", stats["total"])
	}
}

// TestCLISave_BlankText tests that blank stdin is rejected.
func TestCLISave_BlankText(t *testing.T) {
	env := testEnv(t)

	_, err := runCLI(t, env, "   \n", "save")
	if err == nil {
		t.Fatal("expected error for blank text")
	}
	if !strings.Contains(err.Error(), "[INVALID_REQUEST] Empty text") {
		t.Errorf("error = %q, want INVALID_REQUEST Empty text", err.Error())
	}
}

// TestCLIList_Limit tests the --limit flag.
func TestCLIList_Limit(t *testing.T) {
	env := testEnv(t)
	for _, text := range []string{"one", "two", "three"} {
		if _, err := runCLI(t, env, text, "save"); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	out, err := runCLI(t, env, "", "list", "--limit", "2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var listed struct {
		Items []map[string]any `json:"items"`
		Limit int              `json:"limit"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("failed to parse list output: %v", err)
	}
	if len(listed.Items) != 2 || listed.Limit != 2 {
		t.Errorf("len(items) = %d, limit = %d; want 2, 2", len(listed.Items), listed.Limit)
	}
	if listed.Items[0]["user_email"] != "anonymous" {
		t.Errorf("user_email = %v, want anonymous", listed.Items[0]["user_email"])
	}
}

// TestCLIConfigFile tests that --config supplies the database URL.
func TestCLIConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "notepane.json")
	cfgJSON := `{"database_url": "` + filepath.ToSlash(filepath.Join(dir, "from-file.db")) + `"}`
	if err := os.WriteFile(cfgPath, []byte(cfgJSON), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	noEnv := func(string) (string, bool) { return "", false }

	if _, err := runCLI(t, noEnv, "", "--config", cfgPath, "stats"); err != nil {
		t.Fatalf("stats with config file failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "from-file.db")); err != nil {
		t.Errorf("expected database created from config file: %v", err)
	}
}

// TestCLIErrorHandling tests error reporting for bad configuration.
func TestCLIErrorHandling(t *testing.T) {
	noEnv := func(string) (string, bool) { return "", false }

	_, err := runCLI(t, noEnv, "", "stats")
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL is not set") {
		t.Errorf("error = %v, want DATABASE_URL is not set", err)
	}

	badPort := func(key string) (string, bool) {
		if key == "PORT" {
			return "not-a-port", true
		}
		return "", false
	}
	_, err = runCLI(t, badPort, "", "stats")
	if err == nil || !strings.Contains(err.Error(), "invalid PORT") {
		t.Errorf("error = %v, want invalid PORT", err)
	}
}

// TestCLICheck tests the connectivity report.
func TestCLICheck(t *testing.T) {
	env := testEnv(t)
	if _, err := runCLI(t, env, strings.Repeat("n", 60), "save", "--email", "a@x.com"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, err := runCLI(t, env, "", "check")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{
		"DATABASE_URL: found",
		"Connection successful (sqlite)",
		"Table ready",
		"Found 1 notes",
		"ID 1: a@x.com - " + strings.Repeat("n", 50) + "...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}
}

// TestCLICheck_MissingURL tests the check report without a database URL.
func TestCLICheck_MissingURL(t *testing.T) {
	noEnv := func(string) (string, bool) { return "", false }

	out, err := runCLI(t, noEnv, "", "check")
	if err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
	if !strings.Contains(out, "DATABASE_URL: missing") {
		t.Errorf("output = %q, want missing notice", out)
	}
}

// TestCLICerts tests that certs writes a parseable PEM pair.
func TestCLICerts(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, nil, "", "certs", "--dir", dir, "--bits", "2048")
	if err != nil {
		t.Fatalf("certs failed: %v", err)
	}
	var written certOutput
	if err := json.Unmarshal([]byte(out), &written); err != nil {
		t.Fatalf("failed to parse certs output: %v", err)
	}

	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if written.CertFile != certPath || written.KeyFile != keyPath {
		t.Errorf("output paths = %s, %s", written.CertFile, written.KeyFile)
	}

	if _, err := tls.LoadX509KeyPair(certPath, keyPath); err != nil {
		t.Fatalf("LoadX509KeyPair: %v", err)
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		t.Fatalf("read cert: %v", err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil {
		t.Fatal("cert.pem is not PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q, want localhost", cert.Subject.CommonName)
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname(localhost): %v", err)
	}
	validity := cert.NotAfter.Sub(cert.NotBefore)
	if validity < 364*24*time.Hour || validity > 366*24*time.Hour {
		t.Errorf("validity = %v, want about 365 days", validity)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("key.pem mode = %v, want owner-only", perm)
	}

	// Existing files are kept unless --force is given.
	if _, err := runCLI(t, nil, "", "certs", "--dir", dir, "--bits", "2048"); err == nil {
		t.Error("expected error when cert.pem exists")
	}
	if _, err := runCLI(t, nil, "", "certs", "--dir", dir, "--bits", "2048", "--force"); err != nil {
		t.Errorf("certs --force failed: %v", err)
	}
}

// TestCLICerts_ForceResetsKeyMode tests that --force leaves an owner-only key
// even when the replaced key.pem was world-readable.
func TestCLICerts_ForceResetsKeyMode(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(keyPath, []byte("old key"), 0644); err != nil {
		t.Fatalf("write old key: %v", err)
	}
	if err := os.Chmod(keyPath, 0644); err != nil {
		t.Fatalf("chmod old key: %v", err)
	}

	if _, err := writeCerts(certOptions{Dir: dir, Days: 365, Bits: 2048, Force: true}); err != nil {
		t.Fatalf("writeCerts() error = %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("key.pem mode = %v, want 0600", perm)
	}
	if _, err := tls.LoadX509KeyPair(filepath.Join(dir, "cert.pem"), keyPath); err != nil {
		t.Errorf("LoadX509KeyPair: %v", err)
	}
}

// TestCLICerts_InvalidOptions tests validation of certs flags.
func TestCLICerts_InvalidOptions(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, nil, "", "certs", "--dir", dir, "--bits", "1024"); err == nil {
		t.Error("expected error for 1024-bit key")
	}
	if _, err := runCLI(t, nil, "", "certs", "--dir", dir, "--days", "0"); err == nil {
		t.Error("expected error for zero days")
	}
}

// TestStdinHasData tests piped-input detection.
func TestStdinHasData(t *testing.T) {
	if !stdinHasData(strings.NewReader("x")) {
		t.Error("in-memory reader should count as piped data")
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()
	if !stdinHasData(r) {
		t.Error("pipe should count as piped data")
	}
}

// TestReadStdin tests that input is trimmed.
func TestReadStdin(t *testing.T) {
	got, err := readStdin(strings.NewReader("  hello world \n\n"))
	if err != nil {
		t.Fatalf("readStdin: %v", err)
	}
	if got != "hello world" {
		t.Errorf("readStdin = %q, want %q", got, "hello world")
	}
}
