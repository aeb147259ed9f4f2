package vkb

import (
	"errors"
	"fmt"
	"sort"

	vk "github.com/vulkan-go/vulkan"
)

// ErrUnknownSetIndex is returned when a pipeline layout is asked for a set
// index it does not carry.
var ErrUnknownSetIndex = errors.New("vkb: pipeline layout has no descriptor set layout at that index")

// PipelineLayout is derived from a shader program. Its descriptor set layouts
// are borrowed from the device's resource cache and must not be destroyed by
// the holder; Destroy only releases the native pipeline layout.
type PipelineLayout struct {
	Device           *Device
	VKPipelineLayout vk.PipelineLayout
	Program          *ShaderProgram

	setLayouts         map[uint32]*DescriptorSetLayout
	pushConstantRanges []vk.PushConstantRange
}

// newPipelineLayout derives a pipeline layout for a program, requesting one
// descriptor set layout per shader set from the cache. Set indices may be
// sparse; the native call sees the handles in ascending set index order.
func newPipelineLayout(d *Device, program *ShaderProgram, dynamic bool) (*PipelineLayout, error) {
	shaderSets := program.ShaderSets()

	setLayouts := make(map[uint32]*DescriptorSetLayout, len(shaderSets))
	setIndices := make([]uint32, 0, len(shaderSets))
	for setIndex, resourceSet := range shaderSets {
		layout, err := d.ResourceCache().RequestDescriptorSetLayout(setIndex, resourceSet, dynamic)
		if err != nil {
			return nil, fmt.Errorf("deriving layout for set %d: %w", setIndex, err)
		}
		setLayouts[setIndex] = layout
		setIndices = append(setIndices, setIndex)
	}
	sort.Slice(setIndices, func(i, j int) bool { return setIndices[i] < setIndices[j] })

	handles := make([]vk.DescriptorSetLayout, len(setIndices))
	for i, setIndex := range setIndices {
		handles[i] = setLayouts[setIndex].VKDescriptorSetLayout
	}

	var pushConstantRanges []vk.PushConstantRange
	for _, res := range program.Resources(ShaderResourcePushConstant) {
		pushConstantRanges = append(pushConstantRanges, vk.PushConstantRange{
			StageFlags: res.Stages,
			Offset:     res.Offset,
			Size:       res.Size,
		})
	}

	var pipelineLayoutCreateInfo = vk.PipelineLayoutCreateInfo{}
	pipelineLayoutCreateInfo.SType = vk.StructureTypePipelineLayoutCreateInfo
	pipelineLayoutCreateInfo.SetLayoutCount = uint32(len(handles))
	pipelineLayoutCreateInfo.PSetLayouts = handles
	pipelineLayoutCreateInfo.PushConstantRangeCount = uint32(len(pushConstantRanges))
	pipelineLayoutCreateInfo.PPushConstantRanges = pushConstantRanges

	var pipelineLayout vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(d.VKDevice, &pipelineLayoutCreateInfo, nil, &pipelineLayout))
	if err != nil {
		return nil, err
	}

	return &PipelineLayout{
		Device:             d,
		VKPipelineLayout:   pipelineLayout,
		Program:            program,
		setLayouts:         setLayouts,
		pushConstantRanges: pushConstantRanges,
	}, nil
}

// CreatePipelineLayout builds a pipeline layout directly from existing
// descriptor set layouts and push constant ranges, bypassing shader
// reflection. The layouts occupy set indices 0..n-1 in the order given.
func (d *Device) CreatePipelineLayout(descriptorSetLayouts []*DescriptorSetLayout, pushConstants []vk.PushConstantRange) (*PipelineLayout, error) {
	var pipelineLayoutCreateInfo = vk.PipelineLayoutCreateInfo{}
	pipelineLayoutCreateInfo.SType = vk.StructureTypePipelineLayoutCreateInfo
	pipelineLayoutCreateInfo.SetLayoutCount = uint32(len(descriptorSetLayouts))

	l := make([]vk.DescriptorSetLayout, len(descriptorSetLayouts))
	setLayouts := make(map[uint32]*DescriptorSetLayout, len(descriptorSetLayouts))
	for i, dsl := range descriptorSetLayouts {
		l[i] = dsl.VKDescriptorSetLayout
		setLayouts[uint32(i)] = dsl
	}

	pipelineLayoutCreateInfo.PSetLayouts = l
	pipelineLayoutCreateInfo.PushConstantRangeCount = uint32(len(pushConstants))
	pipelineLayoutCreateInfo.PPushConstantRanges = pushConstants

	var pipelineLayout vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(d.VKDevice, &pipelineLayoutCreateInfo, nil, &pipelineLayout))
	if err != nil {
		return nil, err
	}

	var ret PipelineLayout
	ret.Device = d
	ret.VKPipelineLayout = pipelineLayout
	ret.setLayouts = setLayouts
	ret.pushConstantRanges = pushConstants

	return &ret, nil
}

// HasDescriptorSetLayout reports whether a set layout exists at the given set
// index. Sparse programs leave gaps, so presence is keyed on the index
// itself, not on how many sets there are.
func (p *PipelineLayout) HasDescriptorSetLayout(setIndex uint32) bool {
	_, ok := p.setLayouts[setIndex]
	return ok
}

// GetDescriptorSetLayout returns the set layout at the given set index.
func (p *PipelineLayout) GetDescriptorSetLayout(setIndex uint32) (*DescriptorSetLayout, error) {
	layout, ok := p.setLayouts[setIndex]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSetIndex, setIndex)
	}
	return layout, nil
}

// GetPushConstantRangeStage returns the union of the stage flags of every
// push constant range that fully contains [offset, offset+size). Zero flags
// means no range covers the interval.
func (p *PipelineLayout) GetPushConstantRangeStage(offset, size uint32) vk.ShaderStageFlags {
	var stages vk.ShaderStageFlags
	for _, r := range p.pushConstantRanges {
		if offset >= r.Offset && offset+size <= r.Offset+r.Size {
			stages |= r.StageFlags
		}
	}
	return stages
}

// PushConstantRanges returns the ranges in program declaration order.
func (p *PipelineLayout) PushConstantRanges() []vk.PushConstantRange {
	return p.pushConstantRanges
}

func (p *PipelineLayout) Destroy() {
	vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
}
