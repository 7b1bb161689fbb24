package model

// Lookup failure messages recorded in ShaderInfo.Error.
const (
	ShaderErrNotFound = "Not found or private"
	ShaderErrNetwork  = "Network error"
	ShaderErrParse    = "Parse error"
)

// ShaderInfo is the metadata resolved for one Shadertoy shader id.
type ShaderInfo struct {
	ID string `json:"id"`

	// Name is the shader name (from the API or the page title).
	Name string `json:"name,omitempty"`

	// Author is the shader author's username. Only the API provides it.
	Author string `json:"author,omitempty"`

	// Error describes why the shader could not be resolved.
	Error string `json:"error,omitempty"`
}

// Resolved reports whether a name was found for the shader.
func (s ShaderInfo) Resolved() bool {
	return s.Error == "" && s.Name != ""
}
