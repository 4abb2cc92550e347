package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPUPage implements the Page interface using pdfcpu
type PDFCPUPage struct {
	doc        *PDFDocument
	pageNumber int
	pageDict   types.Dict
	resources  types.Dict
}

func newPDFCPUPage(doc *PDFDocument, pageNumber int) (*PDFCPUPage, error) {
	ctx := doc.ctx
	if pageNumber < 1 || pageNumber > ctx.PageCount {
		return nil, fmt.Errorf("page %d of %d: %w", pageNumber, ctx.PageCount, ErrPageOutOfRange)
	}

	// Get page dictionary with inherited resources consolidated
	pageDict, _, attrs, err := ctx.PageDict(pageNumber, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict: %w", err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d has no dictionary", pageNumber)
	}

	page := &PDFCPUPage{
		doc:        doc,
		pageNumber: pageNumber,
		pageDict:   pageDict,
	}

	if attrs != nil && attrs.Resources != nil {
		page.resources = attrs.Resources
	} else if res, ok := pageDict.Find("Resources"); ok {
		if dict, err := ctx.DereferenceDict(deref(res)); err == nil {
			page.resources = dict
		}
	}

	return page, nil
}

// Number returns the page number (1-based)
func (p *PDFCPUPage) Number() int {
	return p.pageNumber
}

// Content returns the decoded content streams of the page
func (p *PDFCPUPage) Content() (content []byte, err error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	defer recoverBackend("pdfcpu", &err)

	contents, ok := p.pageDict.Find("Contents")
	if !ok || contents == nil {
		return nil, nil
	}

	obj, err := p.doc.ctx.Dereference(deref(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contents: %w", err)
	}

	// Contents is either a single stream or an array of streams
	var refs []types.Object
	switch v := obj.(type) {
	case types.Array:
		refs = v
	default:
		refs = []types.Object{contents}
	}

	var streams [][]byte
	for i, ref := range refs {
		data, err := p.doc.decodeStream(ref)
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		streams = append(streams, data)
	}

	return bytes.Join(streams, []byte{'\n'}), nil
}

// Resources returns the page resource dictionary
func (p *PDFCPUPage) Resources() Resources {
	if p.resources == nil {
		return nil
	}
	return &pdfcpuResources{doc: p.doc, dict: p.resources}
}

// pdfcpuResources resolves fonts and XObjects from a pdfcpu dictionary
type pdfcpuResources struct {
	doc  *PDFDocument
	dict types.Dict
}

// Fonts returns the font dictionary keyed by alias
func (r *pdfcpuResources) Fonts() (fonts map[string]FontDescriptor, err error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	defer recoverBackend("pdfcpu", &err)

	ctx := r.doc.ctx
	fonts = make(map[string]FontDescriptor)

	fontObj, ok := r.dict.Find("Font")
	if !ok || fontObj == nil {
		return fonts, nil
	}
	fontDict, err := ctx.DereferenceDict(deref(fontObj))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve font dictionary: %w", err)
	}

	for alias, ref := range fontDict {
		font, err := ctx.DereferenceDict(deref(ref))
		if err != nil || font == nil {
			continue
		}
		fonts[alias] = r.doc.fontDescriptor(font)
	}

	return fonts, nil
}

// XObject resolves and decodes a named XObject
func (r *pdfcpuResources) XObject(name string) (x *XObject, err error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	defer recoverBackend("pdfcpu", &err)

	ctx := r.doc.ctx

	xobjs, ok := r.dict.Find("XObject")
	if !ok || xobjs == nil {
		return nil, ErrNoXObjects
	}
	xdict, err := ctx.DereferenceDict(deref(xobjs))
	if err != nil || xdict == nil {
		return nil, ErrNoXObjects
	}

	ref, ok := xdict.Find(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrXObjectNotFound)
	}
	sd, _, err := ctx.DereferenceStreamDict(deref(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve xobject %s: %w", name, err)
	}
	if sd == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrXObjectNotFound)
	}

	x = &XObject{Name: name}
	if subtype := sd.Dict.NameEntry("Subtype"); subtype != nil {
		x.Subtype = *subtype
	}
	if x.Subtype == "Image" {
		return x, nil
	}

	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode xobject %s: %w", name, err)
	}
	x.Content = bytes.Clone(sd.Content)

	if res, ok := sd.Dict.Find("Resources"); ok && res != nil {
		if dict, err := ctx.DereferenceDict(deref(res)); err == nil && dict != nil {
			x.Resources = &pdfcpuResources{doc: r.doc, dict: dict}
		}
	}

	return x, nil
}

// decodeStream resolves a stream reference and returns a copy of its
// decoded content. The caller holds the document lock.
func (d *PDFDocument) decodeStream(ref types.Object) ([]byte, error) {
	sd, _, err := d.ctx.DereferenceStreamDict(deref(ref))
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode stream: %w", err)
	}
	return bytes.Clone(sd.Content), nil
}

// fontDescriptor reads BaseFont, Subtype, Encoding and ToUnicode from a
// font dictionary. The caller holds the document lock.
func (d *PDFDocument) fontDescriptor(font types.Dict) FontDescriptor {
	var fd FontDescriptor

	if bf := font.NameEntry("BaseFont"); bf != nil {
		fd.BaseFont = *bf
	}
	if st := font.NameEntry("Subtype"); st != nil {
		fd.Subtype = *st
	}

	if enc, ok := font.Find("Encoding"); ok && enc != nil {
		obj, err := d.ctx.Dereference(deref(enc))
		if err == nil {
			switch v := obj.(type) {
			case types.Name:
				fd.Encoding = string(v)
			case types.Dict:
				if base := v.NameEntry("BaseEncoding"); base != nil {
					fd.Encoding = *base
				}
				if diffs, ok := v.Find("Differences"); ok {
					if arr, err := d.ctx.DereferenceArray(deref(diffs)); err == nil {
						fd.Differences = pdfcpuDifferences(arr)
					}
				}
			}
		}
	}

	if tu, ok := font.Find("ToUnicode"); ok && tu != nil {
		if data, err := d.decodeStream(tu); err == nil {
			fd.ToUnicode = data
		}
	}

	return fd
}

// pdfcpuDifferences expands [code /name /name code /name ...]
func pdfcpuDifferences(arr types.Array) map[byte]string {
	diffs := make(map[byte]string)
	code := -1
	for _, item := range arr {
		switch v := item.(type) {
		case types.Integer:
			code = int(v)
		case types.Float:
			code = int(v)
		case types.Name:
			if code >= 0 && code <= 0xFF {
				diffs[byte(code)] = string(v)
			}
			code++
		}
	}
	return diffs
}

// deref normalises pointer references, which some pdfcpu paths produce
func deref(o types.Object) types.Object {
	if ref, ok := o.(*types.IndirectRef); ok && ref != nil {
		return *ref
	}
	return o
}
