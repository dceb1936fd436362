package opengl

// postFragSrc composites the lit image over the background cubemap, then
// applies fog, edge outlines, exposure and gamma. Mode 2 shows view depth.
const postFragSrc = glslVersion + globalBlock + postBlock + `
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D renderTex;
uniform sampler2D depthOnlyTex;
uniform sampler2D cubemapTex;

float viewDepth(vec2 uv) {
    float d = texture(depthOnlyTex, uv).r;
    vec4 p = vec4(uv * 2.0 - 1.0, d * 2.0 - 1.0, 1.0) * invProj;
    return p.z / p.w;
}

vec3 sceneColor(vec2 uv) {
    if (texture(depthOnlyTex, uv).r >= 1.0) {
        return texture(cubemapTex, uv).rgb;
    }
    return texture(renderTex, uv).rgb;
}

float luminance(vec3 c) {
    return dot(c, vec3(0.2126, 0.7152, 0.0722));
}

float sobel(vec2 uv) {
    vec2 texel = 1.0 / vec2(textureSize(renderTex, 0));
    float tl = luminance(sceneColor(uv + texel * vec2(-1.0,  1.0)));
    float t  = luminance(sceneColor(uv + texel * vec2( 0.0,  1.0)));
    float tr = luminance(sceneColor(uv + texel * vec2( 1.0,  1.0)));
    float l  = luminance(sceneColor(uv + texel * vec2(-1.0,  0.0)));
    float r  = luminance(sceneColor(uv + texel * vec2( 1.0,  0.0)));
    float bl = luminance(sceneColor(uv + texel * vec2(-1.0, -1.0)));
    float b  = luminance(sceneColor(uv + texel * vec2( 0.0, -1.0)));
    float br = luminance(sceneColor(uv + texel * vec2( 1.0, -1.0)));
    float gx = -tl - 2.0 * l - bl + tr + 2.0 * r + br;
    float gy = -bl - 2.0 * b - br + tl + 2.0 * t + tr;
    return sqrt(gx * gx + gy * gy);
}

void main() {
    if (mode == 2) {
        float z = viewDepth(fragUV) * depthScale;
        outColor = vec4(vec3(z), 1.0);
        return;
    }

    vec3 color = sceneColor(fragUV);
    if (fogStrength > 0.0 && texture(depthOnlyTex, fragUV).r < 1.0) {
        float fog = exp(-viewDepth(fragUV) * fogStrength);
        color = mix(vec3(1.0), color, fog);
    }
    if (edge != 0) {
        color = mix(color, vec3(1.0), clamp(sobel(fragUV), 0.0, 1.0));
    }

    vec3 mapped = vec3(1.0) - exp(-color * exposure);
    mapped = pow(mapped, vec3(1.0 / gammaScale));
    outColor = vec4(mapped, 1.0);
}
`

// The debug quads are placed in clip space by their world matrix alone.
const quadVertSrc = glslVersion + meshBlocks + `
layout(location = 0) in vec3 inPosition;
layout(location = 2) in vec2 inUV;

out vec2 fragUV;

void main() {
    gl_Position = vec4(inPosition, 1.0) * world;
    fragUV = inUV;
}
`

const quadFragSrc = glslVersion + `
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D quadTex;

void main() {
    // Render targets are stored bottom row first.
    outColor = vec4(texture(quadTex, vec2(fragUV.x, 1.0 - fragUV.y)).rgb, 1.0);
}
`
