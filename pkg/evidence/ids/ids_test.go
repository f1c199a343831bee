package ids

import "testing"

func TestFrameIDDeterministic(t *testing.T) {
	a := FrameID("seg-1", 42, "abc123")
	b := FrameID("seg-1", 42, "abc123")
	if a != b {
		t.Fatalf("FrameID not deterministic: %s != %s", a, b)
	}
}

func TestFrameIDDiffersOnInput(t *testing.T) {
	a := FrameID("seg-1", 42, "abc123")
	b := FrameID("seg-1", 43, "abc123")
	if a == b {
		t.Fatal("FrameID did not change with differing frame_index")
	}
}

func TestUIAProjectionIDDeterministic(t *testing.T) {
	a := UIAProjectionID("uia-ref-1", "focus", 0)
	b := UIAProjectionID("uia-ref-1", "focus", 0)
	if a != b {
		t.Fatalf("UIAProjectionID not deterministic: %s != %s", a, b)
	}
	c := UIAProjectionID("uia-ref-1", "context", 0)
	if a == c {
		t.Fatal("UIAProjectionID did not change with differing section")
	}
}

func TestDeriveOrderIndependentOnParentRefs(t *testing.T) {
	a := Derive("derived.text.ocr", []string{"x", "y"}, "ord")
	b := Derive("derived.text.ocr", []string{"y", "x"}, "ord")
	if a != b {
		t.Fatal("Derive should be independent of parentRefs ordering")
	}
}

func TestDerivedRecordIDDedupeKey(t *testing.T) {
	a := DerivedRecordID("derived.text.ocr", "framehash1", "v1", "pf1", "cfg1")
	b := DerivedRecordID("derived.text.ocr", "framehash1", "v1", "pf1", "cfg1")
	if a != b {
		t.Fatal("identical dedupe keys must produce identical ids")
	}
	c := DerivedRecordID("derived.text.ocr", "framehash2", "v1", "pf1", "cfg1")
	if a == c {
		t.Fatal("differing frame hash must change derived id")
	}
}
