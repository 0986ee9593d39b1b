package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetup_JSONFormat_EmitsStructuredLog(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, "json")

	log.Info("server started", "port", "8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v, want %q", entry["msg"], "server started")
	}
	if entry["port"] != "8080" {
		t.Errorf("port = %v, want %q", entry["port"], "8080")
	}
}

func TestSetup_JSONFormat_SuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, "json")

	log.Debug("noisy detail")

	if buf.Len() != 0 {
		t.Errorf("debug log should be suppressed at info level, got: %s", buf.String())
	}
}

func TestSetup_TextFormat_EmitsHumanReadableLog(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, "text")

	log.Info("server started")

	out := buf.String()
	if !strings.Contains(out, "server started") {
		t.Errorf("output should contain message, got: %s", out)
	}
	// テキスト形式なのでJSONとしてはパースできないこと
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err == nil {
		t.Error("text format output should not be JSON")
	}
}
