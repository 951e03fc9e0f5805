package config

import "testing"

func TestDefaultsApplyWhenOverridesEmpty(t *testing.T) {
	if got := BaudRate(); got != DefaultBaudRate {
		t.Fatalf("BaudRate() = %d, want %d", got, DefaultBaudRate)
	}
	if got := PageSize(); got != DefaultPageSize {
		t.Fatalf("PageSize() = %d, want %d", got, DefaultPageSize)
	}
	if got := ReceiveTimeout(); got != DefaultReceiveTimeout {
		t.Fatalf("ReceiveTimeout() = %v, want %v", got, DefaultReceiveTimeout)
	}
}
