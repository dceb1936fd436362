package opengl

// gbufferFragSrc writes the three G-buffer targets:
//
//	0: albedo, ambient occlusion
//	1: world normal * 0.5 + 0.5, metallic
//	2: emission, roughness
const gbufferFragSrc = glslVersion + globalBlock + meshBlocks + `
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;
in vec3 vTangent;

layout(location = 0) out vec4 outColor;
layout(location = 1) out vec4 outNormal;
layout(location = 2) out vec4 outSpecPow;

uniform sampler2D albedoTex;
uniform sampler2D normalTex;
uniform sampler2D aoTex;
uniform sampler2D metallicTex;
uniform sampler2D roughnessTex;
uniform sampler2D emissiveTex;

void main() {
    vec3 albedo = albedoFactor;
    if (useAlbedoMap != 0) {
        albedo *= texture(albedoTex, vUV, lodBias).rgb;
    }

    vec3 n = normalize(vNormal);
    if (useNormalMap != 0) {
        vec3 t = normalize(vTangent - dot(vTangent, n) * n);
        vec3 b = cross(n, t);
        vec3 m = texture(normalTex, vUV).rgb * 2.0 - 1.0;
        if (invertNormalMapY != 0) {
            m.y = -m.y;
        }
        n = normalize(mat3(t, b, n) * m);
    }

    float ao = useAOMap != 0 ? texture(aoTex, vUV).r : 1.0;
    // glTF packs metallic in blue and roughness in green.
    float metallic = metallicFactor;
    if (useMetallicMap != 0) {
        metallic *= texture(metallicTex, vUV).b;
    }
    float roughness = roughnessFactor;
    if (useRoughnessMap != 0) {
        roughness *= texture(roughnessTex, vUV).g;
    }
    vec3 emission = useEmissiveMap != 0 ? texture(emissiveTex, vUV).rgb : emissionFactor;

    outColor = vec4(albedo, ao);
    outNormal = vec4(n * 0.5 + 0.5, metallic);
    outSpecPow = vec4(emission, roughness);
}
`
