package diag

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(Nop); !ok {
		t.Error("OrNop(nil) should return Nop")
	}

	var buf bytes.Buffer
	l := log.New(&buf, "", 0)
	OrNop(l).Printf("hello %d", 1)
	if !strings.Contains(buf.String(), "hello 1") {
		t.Errorf("expected message to reach logger, got %q", buf.String())
	}
}

func TestFromLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantNop bool
	}{
		{"", true},
		{"info", true},
		{"debug", false},
		{" DEBUG ", false},
	}
	for _, tt := range tests {
		_, isNop := FromLevel(tt.level).(Nop)
		if isNop != tt.wantNop {
			t.Errorf("FromLevel(%q): nop=%v, want %v", tt.level, isNop, tt.wantNop)
		}
	}
}
