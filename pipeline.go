package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

type ComputePipeline struct {
	VKPipeline                      vk.Pipeline
	VKPipelineShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
	VKPipelineLayout                vk.PipelineLayout
}

type PipelineCache struct {
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	var pipelineCacheCreate = vk.PipelineCacheCreateInfo{}
	pipelineCacheCreate.SType = vk.StructureTypePipelineCacheCreateInfo

	var pipelineCache vk.PipelineCache

	err := vk.Error(vk.CreatePipelineCache(d.VKDevice, &pipelineCacheCreate, nil, &pipelineCache))
	if err != nil {
		return nil, err
	}

	var ret PipelineCache
	ret.VKPipelineCache = pipelineCache
	return &ret, nil
}

func (c *ComputePipeline) SetPipelineLayout(layout *PipelineLayout) {
	c.VKPipelineLayout = layout.VKPipelineLayout
}

func (c *ComputePipeline) SetShaderStage(shaderModule *ShaderModule) {
	c.VKPipelineShaderStageCreateInfo = shaderModule.VKPipelineShaderStageCreateInfo()
}

func (d *Device) CreateComputePipelines(pc *PipelineCache, cp ...*ComputePipeline) error {

	pipelines := make([]vk.Pipeline, len(cp))

	ci := make([]vk.ComputePipelineCreateInfo, len(cp))

	for i, p := range cp {
		var pipelineCreateInfo = vk.ComputePipelineCreateInfo{}
		pipelineCreateInfo.SType = vk.StructureTypeComputePipelineCreateInfo
		pipelineCreateInfo.Stage = p.VKPipelineShaderStageCreateInfo
		pipelineCreateInfo.Layout = p.VKPipelineLayout
		ci[i] = pipelineCreateInfo
	}

	err := vk.Error(vk.CreateComputePipelines(
		d.VKDevice, pc.VKPipelineCache,
		uint32(len(ci)), ci,
		nil, pipelines))

	if err != nil {
		return err
	}

	for i := range pipelines {
		cp[i].VKPipeline = pipelines[i]
	}

	return nil

}

// CreateGraphicsPipeline creates a single graphics pipeline from a config and
// the render pass it will run in.
func (d *Device) CreateGraphicsPipeline(pc *PipelineCache, config *GraphicsPipelineConfig, extent vk.Extent2D, renderPass vk.RenderPass) (vk.Pipeline, error) {
	createInfo, err := config.VKGraphicsPipelineCreateInfo(extent)
	if err != nil {
		return vk.NullPipeline, err
	}
	createInfo.RenderPass = renderPass

	var cache vk.PipelineCache
	if pc != nil {
		cache = pc.VKPipelineCache
	}

	pipelines := make([]vk.Pipeline, 1)
	err = vk.Error(vk.CreateGraphicsPipelines(d.VKDevice, cache, 1,
		[]vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines))
	if err != nil {
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}
