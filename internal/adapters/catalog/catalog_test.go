package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

func TestDefaultCatalog(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() == 0 {
		t.Fatal("bundled catalog is empty")
	}

	v, err := r.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if v.DisplayName() != "Renault Clio" {
		t.Errorf("unexpected first vehicle %s", v.DisplayName())
	}
	if _, err := r.GetByID(context.Background(), 9999); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	r, _ := Default()
	ctx := context.Background()

	res, _ := r.Search(ctx, "PEUGEOT", 0)
	if len(res) != 4 {
		t.Errorf("expected 4 Peugeot models, got %d", len(res))
	}

	res, _ = r.Search(ctx, "multijet", 0)
	for _, v := range res {
		if v.DefaultFuelType() != domain.FuelDiesel {
			t.Errorf("%s should default to diesel", v.DisplayName())
		}
	}
	if len(res) == 0 {
		t.Error("expected engine search to match")
	}

	res, _ = r.Search(ctx, "e", 3)
	if len(res) != 3 {
		t.Errorf("expected limit to apply, got %d", len(res))
	}
}

func TestLoad_FileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.json")
	data := `[
		{"id": 7, "brand": "Renault", "model": "Kangoo", "engine": "1.5 dCi 75", "fuel_consumption": {"city": 6, "highway": 5, "combined": 5.4}},
		{"id": 3, "brand": "Fiat", "model": "Panda", "engine": "1.2 69", "fuel_consumption": {"city": 6, "highway": 4, "combined": 5, "average": 5.1}}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	all, _ := r.List(context.Background())
	if len(all) != 2 || all[0].ID != 3 {
		t.Fatalf("expected catalog sorted by id, got %+v", all)
	}
	if all[0].FuelConsumption.Average == nil || *all[0].FuelConsumption.Average != 5.1 {
		t.Error("average consumption not read")
	}

	want := domain.Vehicle{
		ID: 7, Brand: "Renault", Model: "Kangoo", Engine: "1.5 dCi 75",
		FuelConsumption: domain.FuelConsumption{City: 6, Highway: 5, Combined: 5.4},
	}
	if diff := pretty.Diff(want, all[1]); len(diff) > 0 {
		t.Errorf("unexpected vehicle:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"duplicate id":   `[{"id":1,"engine":"x","fuel_consumption":{"combined":5}},{"id":1,"engine":"y","fuel_consumption":{"combined":6}}]`,
		"no consumption": `[{"id":1,"brand":"A","model":"B","engine":"x","fuel_consumption":{"city":5}}]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
