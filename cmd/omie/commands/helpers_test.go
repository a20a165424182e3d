package commands_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// resetViper gives the test a clean global configuration.
func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

func execute(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

type apiCall struct {
	AppSecret string           `json:"app_secret"`
	Call      string           `json:"call"`
	Param     []map[string]any `json:"param"`
}

// newAPIServer serves respond and points the CLI configuration at it.
func newAPIServer(t *testing.T, respond func(call apiCall) (int, string)) *atomic.Int32 {
	t.Helper()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits.Add(1)

		var call apiCall

		_ = json.NewDecoder(request.Body).Decode(&call)

		status, body := respond(call)

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	viper.Set("app_key", "key")
	viper.Set("app_secret", "secret")
	viper.Set("url_prefix", server.URL)

	return &hits
}
