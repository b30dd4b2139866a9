package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed validation: %v", err)
	}
}

func TestValidateRejectsUnloadNarrowerThanView(t *testing.T) {
	c := Default()
	c.ViewDistanceChunks = 10
	c.UnloadDistanceChunks = 5
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unload distance narrower than view distance")
	}
}

func TestValidateRejectsNegativeBudget(t *testing.T) {
	c := Default()
	c.ApplyBudgetPerFrame = -1
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for negative budget")
	}
}

func TestValidateRejectsZeroWorkerThreads(t *testing.T) {
	c := Default()
	c.WorkerThreads = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero worker threads")
	}
}

func TestStreamingSplitsWorkerThreadsEvenly(t *testing.T) {
	c := Default()
	c.WorkerThreads = 6
	opts := c.Streaming()
	if opts.GenWorkers != 3 || opts.MeshWorkers != 3 {
		t.Fatalf("Streaming() = %+v, want 3/3 workers", opts)
	}
}

func TestLoaderCarriesZoneID(t *testing.T) {
	c := Default()
	opts := c.Loader("overworld")
	if opts.ZoneID != "overworld" {
		t.Fatalf("Loader().ZoneID = %q, want overworld", opts.ZoneID)
	}
}

func TestLoaderCarriesMaxInFlightRegions(t *testing.T) {
	c := Default()
	c.MaxInFlightRegions = 3
	opts := c.Loader("overworld")
	if opts.MaxInFlightRegions != 3 {
		t.Fatalf("Loader().MaxInFlightRegions = %d, want 3", opts.MaxInFlightRegions)
	}
}
