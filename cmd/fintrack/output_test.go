package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := table(&buf, []string{"ACCOUNT", "BALANCE"}, [][]string{{"Bank", "10.00"}, {"My Wallet", "-2.50"}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	col := strings.Index(lines[0], "BALANCE")
	if strings.Index(lines[1], "10.00") != col || strings.Index(lines[2], "-2.50") != col {
		t.Fatalf("columns not aligned:\n%s", buf.String())
	}
}

func TestParseAmountArg(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12,34", 1234},
		{"0.005", 1},
		{"abc", 0},
		{"-5", 0},
	}
	for _, tt := range tests {
		if got := parseAmountArg(tt.in).Cents; got != tt.want {
			t.Errorf("parseAmountArg(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
