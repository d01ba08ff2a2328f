package device

import (
	"errors"
	"testing"
	"time"
)

func TestTableCaseInsensitiveLookup(t *testing.T) {
	tbl := NewTable()
	tbl.Declare(NewAttribute("Position", KindDouble))

	for _, name := range []string{"position", "Position", "POSITION"} {
		if _, err := tbl.Get(name); err != nil {
			t.Errorf("Get(%q) error = %v", name, err)
		}
	}

	if _, err := tbl.Get("velocity"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Get(velocity) error = %v, want ErrUnknownAttribute", err)
	}

	if _, ok := tbl.Lookup("velocity"); ok {
		t.Error("Lookup(velocity) reported a hit")
	}
}

func TestAttributeChangeEventFlags(t *testing.T) {
	attr := NewAttribute("position", KindDouble)

	if attr.IsChangeEventArmed() {
		t.Error("new attribute is armed")
	}

	attr.SetChangeEvent(true, true)
	if !attr.IsChangeEventArmed() || !attr.IsCheckChangeCriteria() {
		t.Error("SetChangeEvent(true, true) did not apply")
	}

	attr.SetChangeEvent(true, false)
	if !attr.IsChangeEventArmed() || attr.IsCheckChangeCriteria() {
		t.Error("SetChangeEvent(true, false) did not apply")
	}
}

func TestAttributeValueCache(t *testing.T) {
	attr := NewAttribute("position", KindDouble)

	ts := time.Now()
	attr.SetValue(4.5, ts, QualityChanging)

	value, got, quality := attr.Value()
	if value != 4.5 || quality != QualityChanging {
		t.Errorf("value = (%v, %v)", value, quality)
	}
	if !got.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got, ts)
	}
}

func TestAttributeEncodedCache(t *testing.T) {
	attr := NewAttribute("image", KindEncoded)

	ts := time.Now()
	attr.SetEncoded(Encoded{Format: "video/raw", Data: []byte{1, 2}}, ts, QualityValid)

	enc, got, quality := attr.EncodedValue()
	if enc.Format != "video/raw" || len(enc.Data) != 2 {
		t.Errorf("encoded cache = %+v", enc)
	}
	if !got.Equal(ts) || quality != QualityValid {
		t.Errorf("cache metadata = (%v, %v)", got, quality)
	}
}
