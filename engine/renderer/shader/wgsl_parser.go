package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslVertexFormatMap maps WGSL type names to their wgpu vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"i32":       {wgpu.VertexFormatSint32, 4},
}

type typeLayout struct {
	size, align uint64
}

// wgslTypeLayoutMap holds the host-shareable size and alignment of the scalar, vector and matrix types
var wgslTypeLayoutMap = map[string]typeLayout{
	"f32": {4, 4}, "u32": {4, 4}, "i32": {4, 4},
	"vec2f": {8, 8}, "vec2<f32>": {8, 8}, "vec2u": {8, 8}, "vec2<u32>": {8, 8}, "vec2i": {8, 8}, "vec2<i32>": {8, 8},
	"vec3f": {12, 16}, "vec3<f32>": {12, 16}, "vec3u": {12, 16}, "vec3<u32>": {12, 16},
	"vec4f": {16, 16}, "vec4<f32>": {16, 16}, "vec4u": {16, 16}, "vec4<u32>": {16, 16},
	"mat4x4f": {64, 16}, "mat4x4<f32>": {64, 16},
}

type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

var (
	structBlockRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex      = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex       = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex         = regexp.MustCompile(`^\s*(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+?)\s*$`)
	lineCommentRegex   = regexp.MustCompile(`//[^\n]*`)
	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// matches @group(0) @binding(0) var<uniform> sprite: SpriteUniform;
	// and handle types such as @group(0) @binding(1) var spriteTexture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint returns the name of the first entry function for the stage, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := vertexEntryRegex
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRegex
	}
	if match := re.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseVertexLayouts builds one vertex buffer layout per struct whose fields all carry @location.
// Structs with @builtin fields are stage outputs and are skipped, as are structs with
// types that have no vertex format.
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	var layouts []wgpu.VertexBufferLayout
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
		var offset uint64
		ok := true
		for _, f := range ps.fields {
			info, known := wgslVertexFormatMap[f.typeName]
			if !known {
				ok = false
				break
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         info.format,
				Offset:         offset,
				ShaderLocation: uint32(f.location),
			})
			offset += info.size
		}
		if !ok {
			continue
		}
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: offset,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		})
	}
	return layouts
}

// parseBindGroupLayouts converts every @group/@binding declaration into a layout entry with the
// given visibility. Uniform buffers get MinBindingSize from the bound struct's layout.
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) map[int]wgpu.BindGroupLayoutDescriptor {
	cleaned := stripComments(source)
	sizes := structSizes(parseStructBlocks(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[5])

		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: visibility,
		}
		switch {
		case strings.HasPrefix(addressSpace, "uniform"):
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: sizes[typeName],
			}
		case strings.HasPrefix(addressSpace, "storage"):
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: sizes[typeName],
			}
		case typeName == "sampler":
			entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
		case strings.HasPrefix(typeName, "texture_2d"):
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		default:
			continue
		}
		groups[group] = append(groups[group], entry)
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result
}

func parseStructBlocks(source string) []parsedStruct {
	var structs []parsedStruct
	for _, match := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		ps := parsedStruct{name: match[1]}
		for _, raw := range strings.Split(match[2], ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			fm := fieldRegex.FindStringSubmatch(raw)
			if fm == nil {
				continue
			}
			f := parsedField{name: fm[1], typeName: fm[2], location: -1}
			if lm := locationRegex.FindStringSubmatch(raw); lm != nil {
				f.location, _ = strconv.Atoi(lm[1])
			}
			f.isBuiltin = builtinRegex.MatchString(raw)
			ps.fields = append(ps.fields, f)
		}
		structs = append(structs, ps)
	}
	return structs
}

func isVertexInputStruct(ps parsedStruct) bool {
	if len(ps.fields) == 0 {
		return false
	}
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			return false
		}
	}
	return true
}

// structSizes computes the uniform-buffer size of every struct composed of known types,
// rounding each struct up to its largest member alignment.
func structSizes(structs []parsedStruct) map[string]uint64 {
	sizes := make(map[string]uint64, len(structs))
	for _, ps := range structs {
		var offset, maxAlign uint64 = 0, 1
		known := true
		for _, f := range ps.fields {
			layout, ok := wgslTypeLayoutMap[f.typeName]
			if !ok {
				known = false
				break
			}
			offset = roundUp(layout.align, offset) + layout.size
			maxAlign = max(maxAlign, layout.align)
		}
		if known {
			sizes[ps.name] = roundUp(maxAlign, offset)
		}
	}
	return sizes
}

func roundUp(align, value uint64) uint64 {
	return (value + align - 1) / align * align
}

func stripComments(source string) string {
	return lineCommentRegex.ReplaceAllString(source, "")
}
