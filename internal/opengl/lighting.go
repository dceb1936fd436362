package opengl

const gbufferReadGLSL = `
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D colorTex;
uniform sampler2D normalTex;
uniform sampler2D specPowTex;
uniform sampler2D depthTex;

struct Surface {
    vec3 pos;
    vec3 albedo;
    float ao;
    vec3 normal;
    float metallic;
    vec3 emission;
    float roughness;
};

// readSurface returns false for background pixels.
bool readSurface(vec2 uv, out Surface s) {
    float d = texture(depthTex, uv).r;
    if (d >= 1.0) {
        return false;
    }
    vec4 c = texture(colorTex, uv);
    vec4 n = texture(normalTex, uv);
    vec4 e = texture(specPowTex, uv);
    s.pos = worldFromDepth(uv, d);
    s.albedo = c.rgb;
    s.ao = c.a;
    s.normal = normalize(n.xyz * 2.0 - 1.0);
    s.metallic = n.a;
    s.emission = e.rgb;
    s.roughness = max(e.a, 0.04);
    return true;
}

const float PI = 3.14159265359;

vec3 fresnelSchlick(vec3 f0, float cosTheta) {
    return f0 + (1.0 - f0) * pow(1.0 - cosTheta, 5.0);
}
`

// ambientFragSrc writes emission plus image based (or flat) ambient
// light, scaled by material AO and blurred SSAO.
const ambientFragSrc = glslVersion + globalBlock + gbufferReadGLSL + `
uniform sampler2D ssaoTex;
uniform samplerCube specularTex;
uniform samplerCube irradianceTex;
uniform sampler2D brdfTex;

void main() {
    Surface s;
    if (!readSurface(fragUV, s)) {
        outColor = vec4(0.0);
        return;
    }
    float occlusion = s.ao;
    if (useSSAO != 0) {
        occlusion *= texture(ssaoTex, fragUV).r;
    }

    vec3 ambient = s.albedo * 0.03;
    if (useIBL != 0) {
        vec3 v = normalize(eyeWorld - s.pos);
        float nDotV = max(dot(s.normal, v), 0.0);
        vec3 f0 = mix(vec3(0.04), s.albedo, s.metallic);
        vec3 kd = (1.0 - fresnelSchlick(f0, nDotV)) * (1.0 - s.metallic);
        vec3 diffuse = texture(irradianceTex, s.normal).rgb * s.albedo * kd;
        vec2 brdf = texture(brdfTex, vec2(nDotV, 1.0 - s.roughness)).rg;
        float lod = s.roughness * 5.0 + envLodBias;
        vec3 specular = textureLod(specularTex, reflect(-v, s.normal), lod).rgb * (f0 * brdf.x + brdf.y);
        ambient = (diffuse + specular) * strengthIBL;
    }
    outColor = vec4(ambient * occlusion + s.emission, 1.0);
}
`

// lightingFragSrc adds the direct contribution of every light that is on.
// It runs with additive blending over the ambient result.
const lightingFragSrc = glslVersion + globalBlock + gbufferReadGLSL + shadowGLSL + `
float distributionGGX(float nDotH, float roughness) {
    float a = roughness * roughness;
    float a2 = a * a;
    float d = nDotH * nDotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySchlick(float nDotX, float roughness) {
    float r = roughness + 1.0;
    float k = r * r / 8.0;
    return nDotX / (nDotX * (1.0 - k) + k);
}

float fallOff(float dist, float start, float end) {
    return clamp((end - dist) / max(end - start, 0.0001), 0.0, 1.0);
}

vec3 directLight(int i, Light l, Surface s, vec3 v) {
    vec3 toLight;
    float att = 1.0;
    if ((l.lightType & LIGHT_DIRECTIONAL) != 0u) {
        toLight = -normalize(l.direction);
    } else {
        vec3 d = l.position - s.pos;
        float dist = length(d);
        toLight = d / max(dist, 0.0001);
        att = fallOff(dist, l.fallOffStart, l.fallOffEnd);
        if ((l.lightType & LIGHT_SPOT) != 0u) {
            att *= pow(max(dot(-toLight, normalize(l.direction)), 0.0), l.spotPower);
        }
    }
    float nDotL = max(dot(s.normal, toLight), 0.0);
    if (nDotL <= 0.0 || att <= 0.0) {
        return vec3(0.0);
    }

    vec3 h = normalize(toLight + v);
    float nDotV = max(dot(s.normal, v), 0.0001);
    float nDotH = max(dot(s.normal, h), 0.0);
    vec3 f0 = mix(vec3(0.04), s.albedo, s.metallic);
    vec3 f = fresnelSchlick(f0, max(dot(h, v), 0.0));
    float g = geometrySchlick(nDotV, s.roughness) * geometrySchlick(nDotL, s.roughness);
    vec3 specular = distributionGGX(nDotH, s.roughness) * f * g / (4.0 * nDotV * nDotL + 0.0001);
    vec3 kd = (1.0 - f) * (1.0 - s.metallic);
    vec3 brdf = kd * s.albedo / PI + specular;

    return brdf * l.radiance * l.color * nDotL * att * shadowFactor(i, s.pos, l);
}

void main() {
    Surface s;
    if (!readSurface(fragUV, s)) {
        discard;
    }
    vec3 v = normalize(eyeWorld - s.pos);
    vec3 color = vec3(0.0);
    for (int i = 0; i < 3; i++) {
        if ((lights[i].lightType & (LIGHT_DIRECTIONAL | LIGHT_POINT | LIGHT_SPOT)) == 0u) {
            continue;
        }
        color += directLight(i, lights[i], s, v);
    }
    outColor = vec4(color, 1.0);
}
`
