package pulse

import "github.com/cogentcore/webgpu/wgpu"

// DownlevelWebGL2Limits returns limits that every adapter supports,
// including WebGL2 and GLES3 class hardware.
func DownlevelWebGL2Limits() wgpu.Limits {
	limits := wgpu.DefaultLimits()

	limits.MaxTextureDimension1D = 2048
	limits.MaxTextureDimension2D = 2048
	limits.MaxTextureDimension3D = 256
	limits.MaxTextureArrayLayers = 256
	limits.MaxBindGroups = 4
	limits.MaxDynamicUniformBuffersPerPipelineLayout = 8
	limits.MaxDynamicStorageBuffersPerPipelineLayout = 0
	limits.MaxSampledTexturesPerShaderStage = 16
	limits.MaxSamplersPerShaderStage = 16
	limits.MaxStorageBuffersPerShaderStage = 0
	limits.MaxStorageTexturesPerShaderStage = 0
	limits.MaxUniformBuffersPerShaderStage = 11
	limits.MaxUniformBufferBindingSize = 16 << 10
	limits.MaxStorageBufferBindingSize = 0
	limits.MaxVertexBuffers = 8
	limits.MaxVertexAttributes = 16
	limits.MaxVertexBufferArrayStride = 255
	limits.MinUniformBufferOffsetAlignment = 256
	limits.MinStorageBufferOffsetAlignment = 256
	limits.MaxComputeWorkgroupStorageSize = 0
	limits.MaxComputeInvocationsPerWorkgroup = 0
	limits.MaxComputeWorkgroupSizeX = 0
	limits.MaxComputeWorkgroupSizeY = 0
	limits.MaxComputeWorkgroupSizeZ = 0
	limits.MaxComputeWorkgroupsPerDimension = 0

	return limits
}

// UsingResolution returns limits with the texture dimensions raised to what
// the adapter supports, so the swapchain can match the largest display.
func UsingResolution(limits wgpu.Limits, adapterLimits wgpu.Limits) wgpu.Limits {
	limits.MaxTextureDimension1D = adapterLimits.MaxTextureDimension1D
	limits.MaxTextureDimension2D = adapterLimits.MaxTextureDimension2D
	limits.MaxTextureDimension3D = adapterLimits.MaxTextureDimension3D
	return limits
}
