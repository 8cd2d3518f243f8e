package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestTypeOf(t *testing.T) {
	cause := stderrors.New("boom")
	tests := []struct {
		name string
		err  error
		want Type
	}{
		{"input", Input("bad"), TypeInput},
		{"wrapped config", Wrap(TypeConfig, "load", cause), TypeConfig},
		{"fmt wrapped", fmt.Errorf("outer: %w", Numeric("nan")), TypeNumeric},
		{"plain", cause, TypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrapf(TypeInternal, cause, "save %s", "results")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if got, want := err.Error(), "[INTERNAL_ERROR] save results: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWithContext(t *testing.T) {
	err := Input("negative mean").WithContext("channel", "Meta")
	if err.Context["channel"] != "Meta" {
		t.Errorf("Context = %v", err.Context)
	}
	if !IsType(err, TypeInput) || IsType(err, TypeConfig) {
		t.Error("IsType mismatch")
	}
}
