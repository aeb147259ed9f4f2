package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestQueueFamilyFlags(t *testing.T) {
	q := &QueueFamily{VKQueueFamilyProperties: vk.QueueFamilyProperties{
		QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit),
	}}

	if !q.IsGraphics() {
		t.Error("graphics bit set but IsGraphics is false")
	}
	if !q.IsTransfer() {
		t.Error("transfer bit set but IsTransfer is false")
	}
	if q.IsCompute() {
		t.Error("compute bit not set but IsCompute is true")
	}
}

func TestQueueFamilySliceFilter(t *testing.T) {
	families := QueueFamilySlice{
		{Index: 0, VKQueueFamilyProperties: vk.QueueFamilyProperties{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit)}},
		{Index: 1, VKQueueFamilyProperties: vk.QueueFamilyProperties{
			QueueFlags: vk.QueueFlags(vk.QueueTransferBit)}},
		{Index: 2, VKQueueFamilyProperties: vk.QueueFamilyProperties{
			QueueFlags: vk.QueueFlags(vk.QueueComputeBit | vk.QueueTransferBit)}},
	}

	graphics := families.FilterGraphics()
	if len(graphics) != 1 || graphics[0].Index != 0 {
		t.Errorf("unexpected graphics families: %v", graphics)
	}

	compute := families.FilterCompute()
	if len(compute) != 2 {
		t.Errorf("have %d compute families, want 2", len(compute))
	}

	if len(families.FilterTransfer()) != 3 {
		t.Error("every family advertises transfer")
	}
}
