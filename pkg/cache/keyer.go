package cache

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey is the key of the graph JSON built from a table.
	GraphKey(tableHash string, opts GraphKeyOpts) string

	// ArtifactKey is the key of one rendered artifact of a table.
	ArtifactKey(tableHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts holds the builder settings that change the built graph.
type GraphKeyOpts struct {
	CodePattern       string   `json:"code_pattern,omitempty"`
	MultiOutcomeCodes []string `json:"multi_outcome_codes,omitempty"`
}

// ArtifactKeyOpts holds every setting that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Language          string   `json:"language"`
	Format            string   `json:"format"`
	MultiOutcomeCodes []string `json:"multi_outcome_codes,omitempty"`
	Indent            string   `json:"indent,omitempty"`
	LabelWidth        int      `json:"label_width,omitempty"`
	InstructionWidth  int      `json:"instruction_width,omitempty"`
	LinkTemplate      string   `json:"link_template,omitempty"`
	Watermark         bool     `json:"watermark,omitempty"`
	Background        bool     `json:"background,omitempty"`
	BackgroundColor   string   `json:"background_color,omitempty"`
	Scale             float64  `json:"scale,omitempty"`
	Renderer          string   `json:"renderer,omitempty"`
}

// DefaultKeyer produces unscoped keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(tableHash string, opts GraphKeyOpts) string {
	return hashKey("graph", tableHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(tableHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", tableHash, opts)
}
