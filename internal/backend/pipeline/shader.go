package pipeline

// Shader sources for the Lambert pipeline. Attribute and matrix names follow the raylib
// defaults so a raylib device binds them without extra lookups; lightDir and ambient are set
// from Uniforms on every draw.
const (
	VertexShader = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
in vec4 vertexColor;
uniform mat4 mvp;
uniform mat4 matModel;
out vec3 fragNormal;
out vec4 fragColor;
void main() {
  fragNormal = mat3(matModel) * vertexNormal;
  fragColor = vertexColor;
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`
	FragmentShader = `#version 330
in vec3 fragNormal;
in vec4 fragColor;
uniform vec3 lightDir;
uniform float ambient;
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  float diffuse = max(dot(N, normalize(lightDir)), 0.0);
  float k = ambient + (1.0 - ambient) * diffuse;
  finalColor = vec4(fragColor.rgb * k, fragColor.a);
}
`
)
