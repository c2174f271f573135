package record

// RenderMode describes where page markup is produced.
type RenderMode string

// RenderModeClientOnly disables server-side rendering.
const RenderModeClientOnly RenderMode = "client-only"

const (
	// DefaultStylesheet is the single global stylesheet the application loads.
	DefaultStylesheet = "~/assets/css/main.css"
	// CompatibilityDate pins framework behaviour to a known release.
	CompatibilityDate = "2024-11-01"
)

var buildTransforms = []string{"autoprefixer", "tailwindcss"}

// Record is the immutable configuration consumed by the hosting framework.
type Record struct {
	RenderMode        RenderMode    `json:"renderMode" yaml:"render_mode"`
	BaseURL           string        `json:"baseURL" yaml:"base_url"`
	Head              *HeadMetadata `json:"head,omitempty" yaml:"head,omitempty"`
	Stylesheets       []string      `json:"stylesheets" yaml:"stylesheets"`
	BuildTransforms   []string      `json:"buildTransforms" yaml:"build_transforms"`
	CompatibilityDate string        `json:"compatibilityDate" yaml:"compatibility_date"`
	Devtools          bool          `json:"devtools" yaml:"devtools"`
}

// HeadMetadata describes tags injected into the document head.
type HeadMetadata struct {
	Title    string    `json:"title" yaml:"title"`
	Charset  string    `json:"charset,omitempty" yaml:"charset,omitempty"`
	Viewport string    `json:"viewport,omitempty" yaml:"viewport,omitempty"`
	Meta     []MetaTag `json:"meta,omitempty" yaml:"meta,omitempty"`
	Link     []LinkTag `json:"link,omitempty" yaml:"link,omitempty"`
	HTMLLang string    `json:"htmlLang,omitempty" yaml:"html_lang,omitempty"`
}

// MetaTag is a name/content pair rendered as a meta element.
type MetaTag struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

// LinkTag is rendered as a link element.
type LinkTag struct {
	Rel  string `json:"rel" yaml:"rel"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	Href string `json:"href" yaml:"href"`
}

// Options carries the variable, non-path parts of a record.
type Options struct {
	Head     *HeadMetadata
	Devtools bool
}
