package opengl

// Shadow maps store the light's projected depth. The 2D maps use the
// regular mesh vertex shader with the per-light globals bound; the cube
// maps go through a geometry shader that emits each triangle to all six
// layers.

const shadowCubeVertSrc = glslVersion + meshBlocks + `
layout(location = 0) in vec3 inPosition;

void main() {
    vec4 pos = vec4(inPosition, 1.0) * world;
    if (useInstancing != 0 && gl_InstanceID < instanceCount) {
        pos.xyz += offsets[gl_InstanceID].xyz;
    }
    gl_Position = pos;
}
`

// The faces are rendered with y up; GL cube faces store t downward, hence
// the flip. Culling is off for this pipeline since the flip reverses
// winding.
const shadowCubeGeomSrc = glslVersion + shadowCubeBlock + `
layout(triangles) in;
layout(triangle_strip, max_vertices = 18) out;

void main() {
    for (int face = 0; face < 6; face++) {
        for (int i = 0; i < 3; i++) {
            gl_Layer = face;
            vec4 p = gl_in[i].gl_Position * faceViewProj[face];
            p.y = -p.y;
            gl_Position = p;
            EmitVertex();
        }
        EndPrimitive();
    }
}
`

// shadowGLSL samples the shadow maps from the lighting pass. The cube
// constants must match the renderer's point light projection.
const shadowGLSL = `
uniform sampler2D shadowMaps[3];
uniform samplerCube shadowCubes[3];

const float CUBE_NEAR = 1.0;
const float CUBE_FAR = 50.0;
const float SHADOW_BIAS = 0.001;

float cubeShadow(int i, vec3 pos, Light l) {
    vec3 d = pos - l.position;
    vec3 a = abs(d);
    float z = max(a.x, max(a.y, a.z));
    float ndc = CUBE_FAR / (CUBE_FAR - CUBE_NEAR) - CUBE_FAR * CUBE_NEAR / ((CUBE_FAR - CUBE_NEAR) * z);
    float stored = texture(shadowCubes[i], d).r;
    return ndc * 0.5 + 0.5 - SHADOW_BIAS <= stored ? 1.0 : 0.0;
}

// mapShadow filters 3x3 taps; a larger light radius widens the kernel.
float mapShadow(int i, vec3 pos, Light l) {
    vec4 lp = vec4(pos, 1.0) * l.viewProj;
    lp.xyz /= lp.w;
    vec2 uv = lp.xy * 0.5 + 0.5;
    if (lp.w <= 0.0 || any(lessThan(uv, vec2(0.0))) || any(greaterThan(uv, vec2(1.0)))) {
        return 1.0;
    }
    float depth = lp.z * 0.5 + 0.5;
    vec2 texel = max(1.0, l.radius * 100.0) / vec2(textureSize(shadowMaps[i], 0));
    float lit = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            float stored = texture(shadowMaps[i], uv + vec2(x, y) * texel).r;
            lit += depth - SHADOW_BIAS <= stored ? 1.0 : 0.0;
        }
    }
    return lit / 9.0;
}

float shadowFactor(int i, vec3 pos, Light l) {
    if ((l.lightType & LIGHT_SHADOW) == 0u) {
        return 1.0;
    }
    if ((l.lightType & LIGHT_POINT) != 0u) {
        return cubeShadow(i, pos, l);
    }
    return mapShadow(i, pos, l);
}
`
