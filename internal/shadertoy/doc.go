// Package shadertoy resolves Shadertoy shader ids to their name and author.
//
// With an API key the client queries /api/v1/shaders/<id>?key=<key>. Without
// one, or when the API answers without a shader, it fetches /view/<id> and
// reads the page title, plus the author from the shader data embedded in the
// page when present. Per-id failures are recorded in the returned
// model.ShaderInfo rather than failing a batch.
package shadertoy
