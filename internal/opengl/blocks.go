package opengl

// Uniform blocks mirror the renderer constants. Matrices arrive transposed
// so the default column-major layout holds the row-vector matrix and
// shaders write v * M.

const glslVersion = "#version 410 core\n"

const globalBlock = `
const uint LIGHT_DIRECTIONAL = 1u;
const uint LIGHT_POINT = 2u;
const uint LIGHT_SPOT = 4u;
const uint LIGHT_SHADOW = 16u;

struct Light {
    vec3 radiance;
    float fallOffStart;
    vec3 direction;
    float fallOffEnd;
    vec3 position;
    float spotPower;
    vec3 color;
    float lightPad0;
    uint lightType;
    float radius;
    float lightPad1;
    float lightPad2;
    mat4 viewProj;
    mat4 invProj;
};

layout(std140) uniform GlobalConstants {
    mat4 view;
    mat4 proj;
    mat4 invProj;
    mat4 viewProj;
    mat4 invViewProj;
    vec3 eyeWorld;
    float strengthIBL;
    int textureToDraw;
    float envLodBias;
    float lodBias;
    int useSSAO;
    int useIBL;
    int globalPad0;
    int globalPad1;
    int globalPad2;
    Light lights[3];
};

// Depth textures hold z * 0.5 + 0.5 of the [0, 1] projection depth.
vec3 worldFromDepth(vec2 uv, float depth) {
    vec4 p = vec4(uv * 2.0 - 1.0, depth * 2.0 - 1.0, 1.0) * invViewProj;
    return p.xyz / p.w;
}
`

const meshBlocks = `
layout(std140) uniform MeshConstants {
    mat4 world;
    mat4 worldIT;
    int useHeightMap;
    float heightScale;
    float meshPad0;
    float meshPad1;
};

layout(std140) uniform MaterialConstants {
    vec3 albedoFactor;
    float roughnessFactor;
    vec3 emissionFactor;
    float metallicFactor;
    int useAlbedoMap;
    int useNormalMap;
    int useAOMap;
    int invertNormalMapY;
    int useMetallicMap;
    int useRoughnessMap;
    int useEmissiveMap;
    int materialPad;
};

layout(std140) uniform InstancedConstants {
    vec4 offsets[16];
    int instanceCount;
    int useInstancing;
    int instancePad0;
    int instancePad1;
};
`

const ssaoBlock = `
layout(std140) uniform SSAOConstants {
    vec4 samples[64];
    vec2 noiseScale;
    float ssaoRadius;
    float ssaoBias;
};
`

const postBlock = `
layout(std140) uniform PostEffectsConstants {
    int mode;
    float depthScale;
    float fogStrength;
    int edge;
    float exposure;
    float gammaScale;
    float postPad0;
    float postPad1;
};
`

const shadowCubeBlock = `
layout(std140) uniform ShadowCubeConstants {
    mat4 faceViewProj[6];
};
`

// meshVertSrc is shared by every pipeline that draws scene meshes.
const meshVertSrc = glslVersion + globalBlock + meshBlocks + `
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec3 inTangent;

uniform sampler2D heightTex;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;
out vec3 vTangent;

void main() {
    vec3 n = normalize((vec4(inNormal, 0.0) * worldIT).xyz);
    vec4 pos = vec4(inPosition, 1.0) * world;
    if (useInstancing != 0 && gl_InstanceID < instanceCount) {
        pos.xyz += offsets[gl_InstanceID].xyz;
    }
    if (useHeightMap != 0) {
        float h = textureLod(heightTex, inUV, 0.0).r * 2.0 - 1.0;
        pos.xyz += n * h * heightScale;
    }
    vWorldPos = pos.xyz;
    vNormal = n;
    vUV = inUV;
    vTangent = normalize((vec4(inTangent, 0.0) * world).xyz);
    gl_Position = pos * viewProj;
}
`

// fullscreenVertSrc draws one triangle covering the screen from
// gl_VertexID alone.
const fullscreenVertSrc = glslVersion + `
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
`

const emptyFragSrc = glslVersion + `
void main() {}
`

// core.Vertex is eleven packed float32s.
const vertexStride = 11 * 4

var vertexAttribs = []struct {
	location uint32
	size     int32
	offset   int
}{
	{0, 3, 0},     // position
	{1, 3, 3 * 4}, // normal
	{2, 2, 6 * 4}, // uv
	{3, 3, 8 * 4}, // tangent
}
