package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("lane change: lane=%d")
	if got != "lane change: lane=%d" {
		t.Errorf("custom logger saw %q", got)
	}

	// nil installs a no-op, not a nil func.
	SetLogger(nil)
	if Logf == nil {
		t.Fatal("Logf is nil after SetLogger(nil)")
	}
	Logf("dropped")
}

func TestDefaultLogger(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf must have a default")
	}
}
