package opengl

// ssaoFragSrc reconstructs view-space position from the G-buffer depth and
// accumulates hemisphere occlusion over the kernel. With SSAO disabled it
// writes full visibility so the ambient pass is unaffected.
const ssaoFragSrc = glslVersion + globalBlock + ssaoBlock + `
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D normalTex;
uniform sampler2D depthTex;
uniform sampler2D noiseTex;

vec3 viewPos(vec2 uv) {
    vec3 w = worldFromDepth(uv, texture(depthTex, uv).r);
    return (vec4(w, 1.0) * view).xyz;
}

void main() {
    if (useSSAO == 0 || texture(depthTex, fragUV).r >= 1.0) {
        outAO = vec4(1.0);
        return;
    }

    vec3 pos = viewPos(fragUV);
    vec3 nWorld = texture(normalTex, fragUV).xyz * 2.0 - 1.0;
    vec3 n = normalize((vec4(nWorld, 0.0) * view).xyz);

    vec3 rnd = vec3(texture(noiseTex, fragUV * noiseScale).xy, 0.0);
    vec3 t = normalize(rnd - n * dot(rnd, n));
    vec3 b = cross(n, t);
    mat3 tbn = mat3(t, b, n);

    float occ = 0.0;
    for (int i = 0; i < 64; i++) {
        vec3 s = pos + tbn * samples[i].xyz * ssaoRadius;

        vec4 off = vec4(s, 1.0) * proj;
        off.xyz /= off.w;
        vec2 suv = clamp(off.xy * 0.5 + 0.5, 0.001, 0.999);

        float geoZ = viewPos(suv).z;
        float rng = smoothstep(0.0, 1.0, ssaoRadius / max(abs(pos.z - geoZ), 0.0001));
        // View space is left-handed: geometry nearer the eye has smaller z.
        occ += (geoZ <= s.z - ssaoBias ? 1.0 : 0.0) * rng;
    }
    outAO = vec4(1.0 - occ / 64.0);
}
`

// ssaoBlurFragSrc applies a 5x5 box blur to reduce SSAO noise.
const ssaoBlurFragSrc = glslVersion + `
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D ssaoTex;

void main() {
    vec2 texel  = 1.0 / vec2(textureSize(ssaoTex, 0));
    float result = 0.0;
    for (int x = -2; x <= 2; x++) {
        for (int y = -2; y <= 2; y++) {
            result += texture(ssaoTex, fragUV + vec2(x, y) * texel).r;
        }
    }
    outAO = vec4(result / 25.0);
}
`
