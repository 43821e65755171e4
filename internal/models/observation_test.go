package models

import "testing"

func TestDefaultObservation_Vector(t *testing.T) {
	want := []float64{1.57, 25.0, 180.0, 3.0, 2.0, 10.0, 60.0, 10.0, 29.92}
	got := DefaultObservation().Vector()
	if len(got) != len(want) {
		t.Fatalf("len(Vector()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Vector()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestObservation_VectorIsCopy(t *testing.T) {
	o := DefaultObservation()
	v := o.Vector()
	v[0] = 99
	if o[0] != 1.57 {
		t.Errorf("mutating Vector() changed observation: o[0] = %v", o[0])
	}
}

func TestField_ContainsBounds(t *testing.T) {
	for _, f := range Fields {
		if !f.Contains(f.Min) || !f.Contains(f.Max) || !f.Contains(f.Default) {
			t.Errorf("%s: bounds or default not contained in [%v, %v]", f.Key, f.Min, f.Max)
		}
		if f.Contains(f.Min-f.Step) || f.Contains(f.Max+f.Step) {
			t.Errorf("%s: value one step outside range reported as contained", f.Key)
		}
	}
}

func TestFieldIndex(t *testing.T) {
	if got := FieldIndex("humidity"); got != 6 {
		t.Errorf("FieldIndex(humidity) = %d, want 6", got)
	}
	if got := FieldIndex("nope"); got != -1 {
		t.Errorf("FieldIndex(nope) = %d, want -1", got)
	}
}

func TestObservation_Map(t *testing.T) {
	m := DefaultObservation().Map()
	if len(m) != FieldCount {
		t.Fatalf("len(Map()) = %d, want %d", len(m), FieldCount)
	}
	if m["average_pressure"] != 29.92 {
		t.Errorf("Map()[average_pressure] = %v, want 29.92", m["average_pressure"])
	}
}
