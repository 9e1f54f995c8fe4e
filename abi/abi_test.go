package abi

import "testing"

func TestExceptionNameKnownAndUnknown(t *testing.T) {
	if ExceptionName(ExDivByZero) != "E_div" {
		t.Fatalf("got %s", ExceptionName(ExDivByZero))
	}
	if ExceptionName(999) != "E_user" {
		t.Fatalf("want fallback for unknown exception, got %s", ExceptionName(999))
	}
}

func TestUnitSuffixRoundTrips(t *testing.T) {
	cases := map[uint64]string{
		UnitBit:     "b",
		UnitByte:    "B",
		UnitKilobit: "Kb",
		UnitKibibyte: "KiB",
	}
	for unit, want := range cases {
		if got := UnitSuffix(unit); got != want {
			t.Fatalf("unit %d: want %q, got %q", unit, want, got)
		}
	}
	if UnitSuffix(12345) != "" {
		t.Fatal("non-canonical unit must render empty")
	}
}
