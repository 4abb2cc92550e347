package pdf

// Document represents an opened PDF document
type Document interface {
	// Backend returns the name of the library serving this document
	Backend() string

	// PageCount returns the total number of pages
	PageCount() int

	// Page returns a page by number (1-based)
	Page(number int) (Page, error)

	// Close releases resources associated with the document
	Close() error
}

// Page represents a single page in a PDF document
type Page interface {
	// Number returns the page number (1-based)
	Number() int

	// Content returns the decoded content stream bytes. Multiple content
	// streams are joined with a newline.
	Content() ([]byte, error)

	// Resources returns the page resource dictionary, including inherited
	// entries. It may return nil when the page has none.
	Resources() Resources
}

// Resources represents a resource dictionary of a page or form XObject
type Resources interface {
	// Fonts returns the font dictionary keyed by resource alias
	Fonts() (map[string]FontDescriptor, error)

	// XObject resolves a named entry of the XObject dictionary and decodes
	// its stream. Image streams are returned without content.
	XObject(name string) (*XObject, error)
}
