package vkb

import (
	"image"
	"image/draw"
	"os"
	"unsafe"

	_ "image/jpeg"
	_ "image/png"

	vk "github.com/vulkan-go/vulkan"
)

type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	VKExtent vk.Extent2D
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	return memRequirements
}

func (i *Image) AllocationRequirements() *AllocationRequirements {
	memoryRequirements := i.VKMemoryRequirements()
	mr := &memoryRequirements
	mr.Deref()

	return &AllocationRequirements{
		Size:           int(mr.Size),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	var imageInfo = vk.ImageCreateInfo{}
	imageInfo.SType = vk.StructureTypeImageCreateInfo
	imageInfo.ImageType = vk.ImageType2d
	imageInfo.Extent.Width = extent.Width
	imageInfo.Extent.Height = extent.Height
	imageInfo.Extent.Depth = 1
	imageInfo.MipLevels = 1
	imageInfo.ArrayLayers = 1
	imageInfo.Format = format
	imageInfo.Tiling = tiling
	imageInfo.InitialLayout = vk.ImageLayoutUndefined
	imageInfo.Usage = usage
	imageInfo.Samples = vk.SampleCount1Bit
	imageInfo.SharingMode = vk.SharingModeExclusive

	var img vk.Image

	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &img))
	if err != nil {
		return nil, err
	}

	var ret Image

	ret.Device = d
	ret.VKImage = img
	ret.VKFormat = format
	ret.VKExtent = extent

	return &ret, nil
}

func (i *Image) Destroy() {
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
}

// BoundImage is an image with its own device memory bound to it.
type BoundImage struct {
	Image
	DeviceMemory *DeviceMemory
}

func (d *Device) CreateBoundImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (*BoundImage, error) {
	i, err := d.CreateImage(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	mem, err := d.AllocateForImage(i, props)
	if err != nil {
		i.Destroy()
		return nil, err
	}

	boundImage := &BoundImage{}

	boundImage.Device = d
	boundImage.VKImage = i.VKImage
	boundImage.DeviceMemory = mem
	boundImage.VKFormat = i.VKFormat
	boundImage.VKExtent = i.VKExtent

	vk.BindImageMemory(d.VKDevice, i.VKImage, mem.VKDeviceMemory, 0)

	return boundImage, nil

}

func (b *BoundImage) Destroy() {
	b.Image.Destroy()
	if b.DeviceMemory != nil {
		b.DeviceMemory.Destroy()
	}
}

// StagedBoundImage pairs a device local image with the host visible staging
// buffer its contents are uploaded through.
type StagedBoundImage struct {
	BoundImage
	HostBuffer       *Buffer
	HostMemory       *DeviceMemory
	HostOffset       int
	HostMemoryOffset uint64
	Width            int
	Height           int
}

func (s *StagedBoundImage) Destroy() {
	if s.HostMemory != nil {
		s.HostMemory.Destroy()
	}
	if s.HostBuffer != nil {
		s.HostBuffer.Destroy()
	}
	s.BoundImage.Destroy()
}

type LocalImage struct {
	img *image.RGBA
}

func (l *LocalImage) Bytes() []byte {
	return ToBytes(unsafe.Pointer(&l.img.Pix[0]), len(l.img.Pix))
}

func LoadImageFromDisk(file string) (*LocalImage, error) {
	imageFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer imageFile.Close()

	src, _, err := image.Decode(imageFile)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	m := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), src, b.Min, draw.Src)

	return &LocalImage{m}, nil
}

// StageRGBAImageFromMemory copies tightly packed RGBA pixels into a staging
// buffer and creates a matching device local image ready to receive them.
func (d *Device) StageRGBAImageFromMemory(img unsafe.Pointer, width, height int) (*StagedBoundImage, error) {

	size := uint64(width * height * 4)

	buffer, memory, err := d.CreateAndBindBufferAndMemory(size, 0,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	memory.MapCopyUnmap(ToBytes(img, int(size)))

	bi, err := d.CreateBoundImage(
		vk.Extent2D{Width: uint32(width), Height: uint32(height)},
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))

	if err != nil {
		buffer.Destroy()
		memory.Destroy()
		return nil, err
	}

	si := &StagedBoundImage{
		HostMemory: memory,
		HostBuffer: buffer,
		HostOffset: 0,
	}
	si.Device = d
	si.VKImage = bi.VKImage
	si.DeviceMemory = bi.DeviceMemory
	si.VKFormat = bi.VKFormat
	si.VKExtent = bi.VKExtent
	si.Width = width
	si.Height = height

	return si, nil
}

func (d *Device) StageImageFromDisk(file string) (*StagedBoundImage, error) {

	img, err := LoadImageFromDisk(file)
	if err != nil {
		return nil, err
	}

	bounds := img.img.Bounds()

	return d.StageRGBAImageFromMemory(unsafe.Pointer(&img.img.Pix[0]), bounds.Dx(), bounds.Dy())
}

// CopyImage records the staging buffer to image copy for a staged image.
func (cb *CommandBuffer) CopyImage(s *StagedBoundImage) {
	vk.CmdCopyBufferToImage(cb.VK(), s.HostBuffer.VKBuffer, s.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{
		{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: vk.Offset3D{},
			ImageExtent: vk.Extent3D{
				Width: uint32(s.Width), Height: uint32(s.Height), Depth: 1,
			},
		},
	})
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView

	err := vk.Error(vk.CreateImageView(i.Device.VKDevice, createInfo, nil, &view))
	if err != nil {
		return nil, err
	}
	var ret ImageView
	ret.Device = i.Device
	ret.VKImageView = view

	return &ret, nil

}

func (i *ImageView) Destroy() {
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
}

type Sampler struct {
	Device    *Device
	VKSampler vk.Sampler
}

func (d *Device) CreateSampler(magFilter, minFilter vk.Filter, addressMode vk.SamplerAddressMode) (*Sampler, error) {
	createInfo := &vk.SamplerCreateInfo{
		SType:         vk.StructureTypeSamplerCreateInfo,
		MagFilter:     magFilter,
		MinFilter:     minFilter,
		MipmapMode:    vk.SamplerMipmapModeLinear,
		AddressModeU:  addressMode,
		AddressModeV:  addressMode,
		AddressModeW:  addressMode,
		BorderColor:   vk.BorderColorFloatOpaqueWhite,
		MaxAnisotropy: 1.0,
	}

	var sampler vk.Sampler
	err := vk.Error(vk.CreateSampler(d.VKDevice, createInfo, nil, &sampler))
	if err != nil {
		return nil, err
	}

	return &Sampler{Device: d, VKSampler: sampler}, nil
}

func (s *Sampler) Destroy() {
	vk.DestroySampler(s.Device.VKDevice, s.VKSampler, nil)
}
