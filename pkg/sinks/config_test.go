package sinks

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeConfig(t, "sinks.yaml", `
sinks:
  - id: hook
    type: HTTP
    http:
      url: "  https://hooks.test/tools "
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/1/tools
      region: us-east-1
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("sinks = %d, want 2", len(all))
	}

	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("hook sink missing")
	}
	if hook.Type != TypeHTTP {
		t.Fatalf("type not normalized: %q", hook.Type)
	}
	if hook.HTTP.URL != "https://hooks.test/tools" {
		t.Fatalf("url not trimmed: %q", hook.HTTP.URL)
	}
	if hook.HTTP.Method != httpDefaultMethod {
		t.Fatalf("method default missing: %q", hook.HTTP.Method)
	}
	if hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("timeout default missing: %d", hook.HTTP.TimeoutSeconds)
	}

	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "hook" {
		t.Fatalf("Enabled() should drop the disabled queue: %v", enabled)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeConfig(t, "sinks.json", `{
  "sinks": [
    {"id": "ps", "type": "pubsub", "pubsub": {"project_id": "proj", "topic": "tools"}},
    {"id": "fan", "type": "sns", "sns": {"topic_arn": "arn:aws:sns:::tools", "region": "eu-west-1"}}
  ]
}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("ps"); !ok {
		t.Fatalf("pubsub sink missing")
	}
	if _, ok := reg.ByID("fan"); !ok {
		t.Fatalf("sns sink missing")
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"no-id.yaml":      "sinks:\n  - type: http\n    http:\n      url: https://x.test\n",
		"no-type.yaml":    "sinks:\n  - id: x\n",
		"no-url.yaml":     "sinks:\n  - id: x\n    type: http\n    http:\n      method: POST\n",
		"no-region.yaml":  "sinks:\n  - id: x\n    type: sqs\n    sqs:\n      uri: https://sqs.test/q\n",
		"no-topic.yaml":   "sinks:\n  - id: x\n    type: pubsub\n    pubsub:\n      project_id: proj\n",
		"no-arn.yaml":     "sinks:\n  - id: x\n    type: sns\n    sns:\n      region: us-east-1\n",
		"duplicate.yaml":  "sinks:\n  - id: x\n    type: http\n    http:\n      url: https://x.test\n  - id: x\n    type: http\n    http:\n      url: https://y.test\n",
		"empty-list.yaml": "sinks: []",
	}
	for name, content := range cases {
		if _, err := LoadRegistry(writeConfig(t, name, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadRegistry("   "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
