package diag

import "testing"

func TestCollectorAccumulatesInOrder(t *testing.T) {
	c := &Collector{}
	r := NewReporter(c)
	r.Error(Location{File: "a.bkl", Line: 1}, TypeMismatch, "first")
	r.Error(Location{File: "a.bkl", Line: 2}, InvalidOperands, "second")
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.Diagnostics()[0].Message != "first" || c.Diagnostics()[1].Message != "second" {
		t.Errorf("diagnostics out of order: %+v", c.Diagnostics())
	}
}

func TestErrorSetsHalted(t *testing.T) {
	r := NewReporter(nil)
	if r.Halted {
		t.Fatalf("Halted should start false")
	}
	r.Error(Location{Line: 1}, TypeMismatch, "boom")
	if !r.Halted {
		t.Errorf("Error() must set Halted")
	}
}

func TestICESetsHaltedAndUnknownCode(t *testing.T) {
	c := &Collector{}
	r := NewReporter(c)
	r.ICE(Location{Line: 1}, "unreachable: %d", 42)
	if !r.Halted {
		t.Errorf("ICE() must set Halted")
	}
	d := c.Diagnostics()[0]
	if d.Severity != ICE {
		t.Errorf("severity = %v, want ICE", d.Severity)
	}
	if d.Code != Unknown {
		t.Errorf("code = %v, want Unknown", d.Code)
	}
}

func TestErrorCount(t *testing.T) {
	r := NewReporter(nil)
	if r.ErrorCount() != 0 {
		t.Fatalf("fresh reporter should have zero errors")
	}
	r.Error(Location{Line: 1}, TypeMismatch, "x")
	if r.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", r.ErrorCount())
	}
}

func TestLocationString(t *testing.T) {
	cases := []struct {
		loc  Location
		want string
	}{
		{Location{File: "a.bkl", Line: 3}, "a.bkl:3"},
		{Location{Line: 3}, "line 3"},
	}
	for _, c := range cases {
		if got := c.loc.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestNewReporterDefaultsToCollector(t *testing.T) {
	r := NewReporter(nil)
	r.Error(Location{Line: 1}, TypeMismatch, "x")
	if _, ok := r.Sink.(*Collector); !ok {
		t.Errorf("NewReporter(nil) should default to a *Collector sink")
	}
}
