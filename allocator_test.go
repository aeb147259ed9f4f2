package vkb

import (
	"testing"
)

func TestAlign(t *testing.T) {
	if makeAlignUp(12, 3) != 12 {
		t.Fail()
	}

	if makeAlignUp(10, 3) != 12 {
		t.Fail()
	}

}

func TestLinearAllocator(t *testing.T) {

	a := LinearAllocator{Size: 1024}

	ra := a.Allocate(2048, 1)
	if ra != nil {
		t.Error("oversized allocation should fail")
	}

	fa := a.Allocate(512, 1)
	if fa == nil {
		t.Fatal("first allocation failed")
	}
	if fa.Offset != 0 {
		t.Errorf("first allocation at %d, want 0", fa.Offset)
	}

	ra = a.Allocate(768, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}

	k := a.Allocate(500, 1)
	if k == nil {
		t.Fatal("second allocation failed")
	}
	if k.Offset != 512 {
		t.Errorf("second allocation at %d, want 512", k.Offset)
	}

	ra = a.Allocate(50, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}

	ra = a.Allocate(5, 1)
	if ra == nil {
		t.Error("tail allocation failed")
	}

	a.Free(k)
	ra = a.Allocate(500, 1)
	if ra == nil {
		t.Error("freed gap not reused")
	}
	if ra.Offset != 512 {
		t.Errorf("gap fill at %d, want 512", ra.Offset)
	}

	a.Free(fa)
	ra = a.Allocate(20, 1)
	if ra == nil {
		t.Error("head gap not reused")
	}
	if ra.Offset != 0 {
		t.Errorf("head fill at %d, want 0", ra.Offset)
	}

	ra = a.Allocate(40, 1)
	if ra == nil {
		t.Error("gap between blocks not reused")
	}

	ra = a.Allocate(600, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}
}

func TestLinearAllocatorAlignment(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	first := a.Allocate(10, 1)
	if first == nil {
		t.Fatal("allocation failed")
	}

	second := a.Allocate(10, 256)
	if second == nil {
		t.Fatal("aligned allocation failed")
	}
	if second.Offset%256 != 0 {
		t.Errorf("allocation at %d not 256 byte aligned", second.Offset)
	}

	third := a.Allocate(10, 0)
	if third == nil {
		t.Fatal("zero align allocation failed")
	}
}

func TestLinearAllocatorAllocations(t *testing.T) {
	a := LinearAllocator{Size: 128}

	x := a.Allocate(32, 1)
	y := a.Allocate(32, 1)

	if len(a.Allocations()) != 2 {
		t.Fatalf("have %d allocations, want 2", len(a.Allocations()))
	}

	a.Free(x)
	allocs := a.Allocations()
	if len(allocs) != 1 || allocs[0] != y {
		t.Error("free removed the wrong allocation")
	}
}
