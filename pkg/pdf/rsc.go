package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// rscValue is the object model shared by the readers derived from
// rsc.io/pdf. Both ledongthuc/pdf and dslipak/pdf expose it.
type rscValue[V any] interface {
	Key(key string) V
	Keys() []string
	Index(i int) V
	Len() int
	Name() string
	RawString() string
	Int64() int64
	Float64() float64
	IsNull() bool
	Reader() io.ReadCloser
}

// rscDocument adapts an rsc derived reader to the Document interface
type rscDocument[V rscValue[V]] struct {
	mu      sync.Mutex
	backend string
	pages   int
	page    func(int) V
}

func (d *rscDocument[V]) Backend() string {
	return d.backend
}

func (d *rscDocument[V]) PageCount() int {
	return d.pages
}

func (d *rscDocument[V]) Page(number int) (p Page, err error) {
	if number < 1 || number > d.pages {
		return nil, fmt.Errorf("page %d of %d: %w", number, d.pages, ErrPageOutOfRange)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	defer recoverBackend(d.backend, &err)

	v := d.page(number)
	if v.IsNull() {
		return nil, fmt.Errorf("page %d has no dictionary", number)
	}
	return &rscPage[V]{doc: d, number: number, v: v}, nil
}

func (d *rscDocument[V]) Close() error {
	return nil
}

type rscPage[V rscValue[V]] struct {
	doc    *rscDocument[V]
	number int
	v      V
}

func (p *rscPage[V]) Number() int {
	return p.number
}

// Content reads and joins the page content streams
func (p *rscPage[V]) Content() (content []byte, err error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	defer recoverBackend(p.doc.backend, &err)

	contents := p.v.Key("Contents")
	if contents.IsNull() {
		return nil, nil
	}

	if n := contents.Len(); n > 0 {
		streams := make([][]byte, 0, n)
		for i := 0; i < n; i++ {
			data, err := readRSCStream(contents.Index(i))
			if err != nil {
				return nil, fmt.Errorf("content stream %d: %w", i, err)
			}
			streams = append(streams, data)
		}
		return bytes.Join(streams, []byte{'\n'}), nil
	}

	return readRSCStream(contents)
}

// Resources walks the page tree for the nearest Resources entry
func (p *rscPage[V]) Resources() Resources {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	res, ok := inheritedResources(p.v)
	if !ok {
		return nil
	}
	return &rscResources[V]{doc: p.doc, v: res}
}

func inheritedResources[V rscValue[V]](node V) (res V, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	// Parent chains are shallow; the bound guards against cycles
	for depth := 0; depth < 64 && !node.IsNull(); depth++ {
		if r := node.Key("Resources"); !r.IsNull() {
			return r, true
		}
		node = node.Key("Parent")
	}
	return res, false
}

type rscResources[V rscValue[V]] struct {
	doc *rscDocument[V]
	v   V
}

func (r *rscResources[V]) Fonts() (fonts map[string]FontDescriptor, err error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	defer recoverBackend(r.doc.backend, &err)

	fonts = make(map[string]FontDescriptor)
	fontDict := r.v.Key("Font")
	if fontDict.IsNull() {
		return fonts, nil
	}

	for _, alias := range fontDict.Keys() {
		font := fontDict.Key(alias)
		if font.IsNull() {
			continue
		}
		fonts[alias] = rscFontDescriptor(font)
	}
	return fonts, nil
}

func (r *rscResources[V]) XObject(name string) (x *XObject, err error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	defer recoverBackend(r.doc.backend, &err)

	xobjs := r.v.Key("XObject")
	if xobjs.IsNull() {
		return nil, ErrNoXObjects
	}
	v := xobjs.Key(name)
	if v.IsNull() {
		return nil, fmt.Errorf("%s: %w", name, ErrXObjectNotFound)
	}

	x = &XObject{Name: name, Subtype: v.Key("Subtype").Name()}
	if x.Subtype == "Image" {
		return x, nil
	}

	if x.Content, err = readRSCStream(v); err != nil {
		return nil, fmt.Errorf("failed to decode xobject %s: %w", name, err)
	}
	if res := v.Key("Resources"); !res.IsNull() {
		x.Resources = &rscResources[V]{doc: r.doc, v: res}
	}
	return x, nil
}

func rscFontDescriptor[V rscValue[V]](font V) FontDescriptor {
	fd := FontDescriptor{
		BaseFont: font.Key("BaseFont").Name(),
		Subtype:  font.Key("Subtype").Name(),
	}

	enc := font.Key("Encoding")
	if name := enc.Name(); name != "" {
		fd.Encoding = name
	} else if !enc.IsNull() {
		fd.Encoding = enc.Key("BaseEncoding").Name()
		if diffs := enc.Key("Differences"); diffs.Len() > 0 {
			fd.Differences = make(map[byte]string)
			code := int64(-1)
			for i := 0; i < diffs.Len(); i++ {
				item := diffs.Index(i)
				if glyph := item.Name(); glyph != "" {
					if code >= 0 && code <= 0xFF {
						fd.Differences[byte(code)] = glyph
					}
					code++
					continue
				}
				code = item.Int64()
			}
		}
	}

	if tu := font.Key("ToUnicode"); !tu.IsNull() {
		if data, err := readRSCStream(tu); err == nil {
			fd.ToUnicode = data
		}
	}

	return fd
}

func readRSCStream[V rscValue[V]](v V) ([]byte, error) {
	rc := v.Reader()
	defer rc.Close()
	return io.ReadAll(rc)
}
