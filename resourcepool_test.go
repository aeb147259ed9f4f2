package vkb

import (
	"testing"
)

func TestPoolUsageString(t *testing.T) {
	alloc := &LinearAllocator{Size: 2 * 1024 * 1024}
	if alloc.Allocate(1024, 0) == nil {
		t.Fatal("allocation failed")
	}

	pool := &BufferResourcePool{Name: "gui-vdata", Size: 2 * 1024 * 1024, Allocator: alloc}

	got := pool.UsageString()
	want := "pool gui-vdata: 1KiB of 2MiB used in 1 allocations"
	if got != want {
		t.Errorf("UsageString() = %q, want %q", got, want)
	}
}

func TestPoolUsageStringEmpty(t *testing.T) {
	pool := &ImageResourcePool{Name: "textures", Size: 1024, Allocator: &LinearAllocator{Size: 1024}}

	got := pool.UsageString()
	want := "pool textures: 0B of 1KiB used in 0 allocations"
	if got != want {
		t.Errorf("UsageString() = %q, want %q", got, want)
	}
}
