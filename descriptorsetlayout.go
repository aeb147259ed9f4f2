package vkb

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ErrUnsupportedResourceType is returned when a reflected resource has no
// descriptor type mapping. Only resources that actually live in descriptor
// sets can be laid out; anything else reaching the deriver is a bug in the
// caller's reflection data.
var ErrUnsupportedResourceType = errors.New("vkb: no conversion possible for shader resource type")

// FindDescriptorType maps a shader resource type to its descriptor type.
// Uniform and storage buffers map to their dynamic variants when dynamic is
// set.
func FindDescriptorType(t ShaderResourceType, dynamic bool) (vk.DescriptorType, error) {
	switch t {
	case ShaderResourceInputAttachment:
		return vk.DescriptorTypeInputAttachment, nil
	case ShaderResourceImage:
		return vk.DescriptorTypeSampledImage, nil
	case ShaderResourceImageSampler:
		return vk.DescriptorTypeCombinedImageSampler, nil
	case ShaderResourceImageStorage:
		return vk.DescriptorTypeStorageImage, nil
	case ShaderResourceSampler:
		return vk.DescriptorTypeSampler, nil
	case ShaderResourceBufferUniform:
		if dynamic {
			return vk.DescriptorTypeUniformBufferDynamic, nil
		}
		return vk.DescriptorTypeUniformBuffer, nil
	case ShaderResourceBufferStorage:
		if dynamic {
			return vk.DescriptorTypeStorageBufferDynamic, nil
		}
		return vk.DescriptorTypeStorageBuffer, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedResourceType, t)
}

// DescriptorSetLayout describes the layout of a descriptor set, derived from
// the shader resources that share one set index.
type DescriptorSetLayout struct {
	Device                *Device
	VKDescriptorSetLayout vk.DescriptorSetLayout

	// Bindings in the order the resources were given.
	Bindings []vk.DescriptorSetLayoutBinding

	bindingsLookup  map[uint32]vk.DescriptorSetLayoutBinding
	resourcesLookup map[string]uint32
}

// deriveBindings builds the layout binding slice and lookup tables from a
// resource set. Resources without a binding slot are skipped.
func deriveBindings(resourceSet []ShaderResource, dynamic bool) ([]vk.DescriptorSetLayoutBinding, map[uint32]vk.DescriptorSetLayoutBinding, map[string]uint32, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, 0, len(resourceSet))
	bindingsLookup := make(map[uint32]vk.DescriptorSetLayoutBinding)
	resourcesLookup := make(map[string]uint32)

	for _, res := range resourceSet {
		switch res.Type {
		case ShaderResourceInput, ShaderResourceOutput,
			ShaderResourcePushConstant, ShaderResourceSpecializationConstant:
			continue
		}

		descriptorType, err := FindDescriptorType(res.Type, dynamic)
		if err != nil {
			return nil, nil, nil, err
		}

		binding := vk.DescriptorSetLayoutBinding{
			Binding:         res.Binding,
			DescriptorType:  descriptorType,
			DescriptorCount: res.ArraySize,
			StageFlags:      res.Stages,
		}
		bindings = append(bindings, binding)
		bindingsLookup[res.Binding] = binding
		resourcesLookup[res.Name] = res.Binding
	}

	return bindings, bindingsLookup, resourcesLookup, nil
}

// CreateDescriptorSetLayoutFromResources derives a descriptor set layout from
// the reflected resources of one shader set. With dynamic set, uniform and
// storage buffers become their dynamic descriptor variants.
func (d *Device) CreateDescriptorSetLayoutFromResources(resourceSet []ShaderResource, dynamic bool) (*DescriptorSetLayout, error) {
	bindings, bindingsLookup, resourcesLookup, err := deriveBindings(resourceSet, dynamic)
	if err != nil {
		return nil, err
	}

	var descriptorSetLayoutCreateInfo = &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	err = vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, descriptorSetLayoutCreateInfo, nil, &descriptorSetLayout))
	if err != nil {
		return nil, err
	}

	return &DescriptorSetLayout{
		Device:                d,
		VKDescriptorSetLayout: descriptorSetLayout,
		Bindings:              bindings,
		bindingsLookup:        bindingsLookup,
		resourcesLookup:       resourcesLookup,
	}, nil
}

// GetLayoutBinding returns the binding at the given binding index.
func (d *DescriptorSetLayout) GetLayoutBinding(bindingIndex uint32) (vk.DescriptorSetLayoutBinding, bool) {
	b, ok := d.bindingsLookup[bindingIndex]
	return b, ok
}

// GetLayoutBindingByName returns the binding of the named resource.
func (d *DescriptorSetLayout) GetLayoutBindingByName(name string) (vk.DescriptorSetLayoutBinding, bool) {
	index, ok := d.resourcesLookup[name]
	if !ok {
		return vk.DescriptorSetLayoutBinding{}, false
	}
	return d.bindingsLookup[index], true
}

// Destroy destroys this descriptor set layout
func (d *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(d.Device.VKDevice, d.VKDescriptorSetLayout, nil)
}
