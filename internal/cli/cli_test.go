package cli

import (
	"testing"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{
		"batch":     false,
		"normalize": false,
		"catalog":   false,
		"check":     false,
		"version":   false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestBatchFlagDefaults(t *testing.T) {
	cmd := newBatchCmd()
	tests := []struct {
		flag string
		want string
	}{
		{"modes", "standard"},
		{"workers", "4"},
		{"task-timeout", "5m0s"},
		{"tlp", "clear"},
		{"engine-bin", "txt2stix"},
		{"engine-work-dir", "output"},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("flag --%s not defined", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}
}

func TestBatchRequiresTwoArgs(t *testing.T) {
	cmd := newBatchCmd()
	if err := cmd.Args(cmd, []string{"only-input"}); err == nil {
		t.Error("single positional arg accepted")
	}
	if err := cmd.Args(cmd, []string{"in", "out"}); err != nil {
		t.Errorf("two args rejected: %v", err)
	}
}
