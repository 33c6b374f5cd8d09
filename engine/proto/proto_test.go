package proto

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemRegistryLookup(t *testing.T) {
	r := NewMemRegistry()
	r.AddItem(&Item{Pid: 10, Name: "wall", Type: ItemWall})
	r.AddCritter(&Critter{Pid: 1, Name: "brahmin", Multihex: 1})

	it, ok := r.Item(10)
	if !ok || !it.IsWall() || !it.IsScenery() {
		t.Fatalf("Item(10) = %+v, %v", it, ok)
	}
	if _, ok := r.Item(11); ok {
		t.Error("unknown pid should miss")
	}
	cr, ok := r.Critter(1)
	if !ok || cr.Multihex != 1 {
		t.Fatalf("Critter(1) = %+v, %v", cr, ok)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := NewMemRegistry()
	r.AddItem(&Item{Pid: 3, Name: "lamp", Type: ItemScenery, Light: LightDef{Intensity: 80, Distance: 4, Color: 0xFFCC88}})
	r.AddItem(&Item{Pid: 1, Name: "crate", Type: ItemContainer})
	r.AddCritter(&Critter{Pid: 7, Name: "rat"})

	path := filepath.Join(t.TempDir(), "protos.json")
	if err := r.SaveJSON(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if pids := got.ItemPids(); len(pids) != 2 || pids[0] != 1 || pids[1] != 3 {
		t.Errorf("ItemPids = %v", pids)
	}
	if pids := got.CritterPids(); len(pids) != 1 || pids[0] != 7 {
		t.Errorf("CritterPids = %v", pids)
	}
	lamp, _ := got.Item(3)
	if !lamp.Light.Emits() || lamp.Light.Color != 0xFFCC88 {
		t.Errorf("lamp light lost: %+v", lamp.Light)
	}
}

func TestLoadJSONRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.json")
	data := `{"items":[{"pid":1},{"pid":1}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJSON(path); err == nil {
		t.Fatal("expected duplicate pid error")
	}
}
