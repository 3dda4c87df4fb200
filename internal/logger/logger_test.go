package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    zapcore.Level
		wantErr bool
	}{
		{level: "", want: zapcore.WarnLevel},
		{level: "info", want: zapcore.InfoLevel},
		{level: "error", want: zapcore.ErrorLevel},
		{level: "error", verbose: true, want: zapcore.DebugLevel},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		l, err := New(tt.level, tt.verbose)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("New(%q): expected error", tt.level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q, %v): %v", tt.level, tt.verbose, err)
		}
		if !l.Core().Enabled(tt.want) {
			t.Fatalf("New(%q, %v): level %s disabled", tt.level, tt.verbose, tt.want)
		}
		if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
			t.Fatalf("New(%q, %v): level below %s enabled", tt.level, tt.verbose, tt.want)
		}
	}
}
