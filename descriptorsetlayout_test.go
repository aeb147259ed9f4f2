package vkb

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestFindDescriptorType(t *testing.T) {
	cases := []struct {
		in      ShaderResourceType
		dynamic bool
		want    vk.DescriptorType
	}{
		{ShaderResourceInputAttachment, false, vk.DescriptorTypeInputAttachment},
		{ShaderResourceImage, false, vk.DescriptorTypeSampledImage},
		{ShaderResourceImageSampler, false, vk.DescriptorTypeCombinedImageSampler},
		{ShaderResourceImageStorage, false, vk.DescriptorTypeStorageImage},
		{ShaderResourceSampler, false, vk.DescriptorTypeSampler},
		{ShaderResourceBufferUniform, false, vk.DescriptorTypeUniformBuffer},
		{ShaderResourceBufferUniform, true, vk.DescriptorTypeUniformBufferDynamic},
		{ShaderResourceBufferStorage, false, vk.DescriptorTypeStorageBuffer},
		{ShaderResourceBufferStorage, true, vk.DescriptorTypeStorageBufferDynamic},
		{ShaderResourceImageSampler, true, vk.DescriptorTypeCombinedImageSampler},
	}

	for _, c := range cases {
		got, err := FindDescriptorType(c.in, c.dynamic)
		if err != nil {
			t.Errorf("FindDescriptorType(%s, %v): %v", c.in, c.dynamic, err)
			continue
		}
		if got != c.want {
			t.Errorf("FindDescriptorType(%s, %v) = %v, want %v", c.in, c.dynamic, got, c.want)
		}
	}
}

func TestFindDescriptorTypeUnsupported(t *testing.T) {
	for _, rt := range []ShaderResourceType{
		ShaderResourceInput,
		ShaderResourceOutput,
		ShaderResourcePushConstant,
		ShaderResourceSpecializationConstant,
		ShaderResourceType(42),
	} {
		_, err := FindDescriptorType(rt, false)
		if err == nil {
			t.Errorf("FindDescriptorType(%s) should fail", rt)
			continue
		}
		if !errors.Is(err, ErrUnsupportedResourceType) {
			t.Errorf("FindDescriptorType(%s) error %v does not wrap ErrUnsupportedResourceType", rt, err)
		}
	}
}

func TestDeriveBindings(t *testing.T) {
	resources := []ShaderResource{
		{Name: "ubo", Type: ShaderResourceBufferUniform, Set: 0, Binding: 0,
			ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		{Name: "textures", Type: ShaderResourceImageSampler, Set: 0, Binding: 1,
			ArraySize: 4, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
	}

	bindings, byIndex, byName, err := deriveBindings(resources, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(bindings) != 2 {
		t.Fatalf("have %d bindings, want 2", len(bindings))
	}

	if bindings[0].Binding != 0 || bindings[0].DescriptorType != vk.DescriptorTypeUniformBuffer {
		t.Errorf("unexpected first binding: %+v", bindings[0])
	}
	if bindings[1].Binding != 1 || bindings[1].DescriptorCount != 4 {
		t.Errorf("unexpected second binding: %+v", bindings[1])
	}

	b, ok := byIndex[1]
	if !ok || b.DescriptorType != vk.DescriptorTypeCombinedImageSampler {
		t.Errorf("binding lookup miss: %+v %v", b, ok)
	}

	if idx, ok := byName["ubo"]; !ok || idx != 0 {
		t.Errorf("name lookup for ubo = %d %v", idx, ok)
	}
	if idx, ok := byName["textures"]; !ok || idx != 1 {
		t.Errorf("name lookup for textures = %d %v", idx, ok)
	}
}

func TestDeriveBindingsSkipsNonDescriptorResources(t *testing.T) {
	resources := []ShaderResource{
		{Name: "in_pos", Type: ShaderResourceInput},
		{Name: "out_color", Type: ShaderResourceOutput},
		{Name: "push", Type: ShaderResourcePushConstant, Size: 16},
		{Name: "lod_bias", Type: ShaderResourceSpecializationConstant},
		{Name: "ubo", Type: ShaderResourceBufferUniform, Binding: 3, ArraySize: 1},
	}

	bindings, _, byName, err := deriveBindings(resources, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(bindings) != 1 {
		t.Fatalf("have %d bindings, want 1", len(bindings))
	}
	if bindings[0].Binding != 3 {
		t.Errorf("binding index %d, want 3", bindings[0].Binding)
	}
	if _, ok := byName["in_pos"]; ok {
		t.Error("stage input should not appear in the name lookup")
	}
}

func TestDeriveBindingsDynamic(t *testing.T) {
	resources := []ShaderResource{
		{Name: "ubo", Type: ShaderResourceBufferUniform, Binding: 0, ArraySize: 1},
		{Name: "ssbo", Type: ShaderResourceBufferStorage, Binding: 1, ArraySize: 1},
		{Name: "tex", Type: ShaderResourceImageSampler, Binding: 2, ArraySize: 1},
	}

	bindings, _, _, err := deriveBindings(resources, true)
	if err != nil {
		t.Fatal(err)
	}

	if bindings[0].DescriptorType != vk.DescriptorTypeUniformBufferDynamic {
		t.Errorf("uniform buffer not dynamic: %v", bindings[0].DescriptorType)
	}
	if bindings[1].DescriptorType != vk.DescriptorTypeStorageBufferDynamic {
		t.Errorf("storage buffer not dynamic: %v", bindings[1].DescriptorType)
	}
	if bindings[2].DescriptorType != vk.DescriptorTypeCombinedImageSampler {
		t.Errorf("image sampler changed by dynamic flag: %v", bindings[2].DescriptorType)
	}
}

func TestDeriveBindingsUnknownType(t *testing.T) {
	resources := []ShaderResource{
		{Name: "odd", Type: ShaderResourceType(99), Binding: 0},
	}

	_, _, _, err := deriveBindings(resources, false)
	if !errors.Is(err, ErrUnsupportedResourceType) {
		t.Errorf("error %v does not wrap ErrUnsupportedResourceType", err)
	}
}

func TestGetLayoutBindingLookups(t *testing.T) {
	bindings, byIndex, byName, err := deriveBindings([]ShaderResource{
		{Name: "ubo", Type: ShaderResourceBufferUniform, Binding: 5, ArraySize: 1},
	}, false)
	if err != nil {
		t.Fatal(err)
	}

	layout := &DescriptorSetLayout{
		Bindings:        bindings,
		bindingsLookup:  byIndex,
		resourcesLookup: byName,
	}

	if _, ok := layout.GetLayoutBinding(5); !ok {
		t.Error("GetLayoutBinding(5) missed")
	}
	if _, ok := layout.GetLayoutBinding(0); ok {
		t.Error("GetLayoutBinding(0) should miss")
	}

	b, ok := layout.GetLayoutBindingByName("ubo")
	if !ok || b.Binding != 5 {
		t.Errorf("GetLayoutBindingByName(ubo) = %+v %v", b, ok)
	}
	if _, ok := layout.GetLayoutBindingByName("nope"); ok {
		t.Error("GetLayoutBindingByName(nope) should miss")
	}
}
