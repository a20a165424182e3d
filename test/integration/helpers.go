//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	AppKey     string
	AppSecret  string
	URLPrefix  string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		AppKey:     os.Getenv("OMIE_APP_KEY"),
		AppSecret:  os.Getenv("OMIE_APP_SECRET"),
		URLPrefix:  os.Getenv("OMIE_URL_PREFIX"),
		BinaryPath: binaryPath(),
		Verbose:    os.Getenv("OMIE_VERBOSE") == "true",
	}
}

// binaryPath determines the path to the omie binary.
func binaryPath() string {
	if path := os.Getenv("OMIE_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../omie", "./omie", "../omie"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "omie"
}

// SkipIfMissingCredentials skips tests that need a real Omie account.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	if config.AppKey == "" || config.AppSecret == "" {
		t.Skip("OMIE_APP_KEY and OMIE_APP_SECRET not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips CLI tests when the omie binary is not built.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("omie binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the omie binary with an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	t          *testing.T
	configFile string
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		t:          t,
		configFile: t.TempDir() + "/config.yml",
	}
}

// Run executes an omie command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes an omie command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	args = append([]string{"--config", runner.configFile}, args...)

	// #nosec G204 -- test binary and arguments are controlled by the test
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"OMIE_APP_KEY="+runner.config.AppKey,
		"OMIE_APP_SECRET="+runner.config.AppSecret,
	)

	if runner.config.URLPrefix != "" {
		cmd.Env = append(cmd.Env, "OMIE_URL_PREFIX="+runner.config.URLPrefix)
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}
