package opengl

// skyVertSrc forces depth to the far plane with the xyww trick.
const skyVertSrc = glslVersion + globalBlock + meshBlocks + `
layout(location = 0) in vec3 inPosition;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = vec4(inPosition, 1.0) * world * viewProj;
    gl_Position = pos.xyww;
}
`

// skyFragSrc shows one of the IBL cubes, selected by textureToDraw.
const skyFragSrc = glslVersion + globalBlock + `
in vec3 fragDir;
out vec4 outColor;

uniform samplerCube specularTex;
uniform samplerCube irradianceTex;
uniform samplerCube envTex;

void main() {
    vec3 d = normalize(fragDir);
    vec3 color = vec3(0.0);
    if (textureToDraw == 0) {
        color = textureLod(envTex, d, envLodBias).rgb;
    } else if (textureToDraw == 1) {
        color = textureLod(specularTex, d, envLodBias).rgb;
    } else if (textureToDraw == 2) {
        color = textureLod(irradianceTex, d, envLodBias).rgb;
    }
    outColor = vec4(color, 1.0);
}
`
