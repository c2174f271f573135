package record

import "slices"

// Build assembles a Record for baseURL. Constant fields are always populated
// from package defaults; the head metadata is copied so later changes to
// opts do not leak into the record.
func Build(baseURL string, opts Options) Record {
	return Record{
		RenderMode:        RenderModeClientOnly,
		BaseURL:           baseURL,
		Head:              opts.Head.Clone(),
		Stylesheets:       []string{DefaultStylesheet},
		BuildTransforms:   BuildTransforms(),
		CompatibilityDate: CompatibilityDate,
		Devtools:          opts.Devtools,
	}
}

// BuildTransforms returns the named build-time transforms in sorted order.
func BuildTransforms() []string {
	return slices.Clone(buildTransforms)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.Head = r.Head.Clone()
	out.Stylesheets = slices.Clone(r.Stylesheets)
	out.BuildTransforms = slices.Clone(r.BuildTransforms)
	return out
}

// Clone returns a deep copy of h, or nil when h is nil.
func (h *HeadMetadata) Clone() *HeadMetadata {
	if h == nil {
		return nil
	}
	out := *h
	out.Meta = slices.Clone(h.Meta)
	out.Link = slices.Clone(h.Link)
	return &out
}
