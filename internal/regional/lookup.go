package regional

import "strings"

// ProductRef identifies a product that can be listed as related or
// substitute in a country setting.
type ProductRef struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// Lookup resolves SKUs against a known set of product references.
type Lookup struct {
	refs  []ProductRef
	bySKU map[string]ProductRef
}

// NewLookup indexes refs by SKU. Later duplicates of a SKU are ignored.
func NewLookup(refs []ProductRef) Lookup {
	l := Lookup{bySKU: make(map[string]ProductRef, len(refs))}
	for _, ref := range refs {
		sku := strings.TrimSpace(ref.SKU)
		if sku == "" {
			continue
		}
		if _, dup := l.bySKU[sku]; dup {
			continue
		}
		ref.SKU = sku
		l.bySKU[sku] = ref
		l.refs = append(l.refs, ref)
	}
	return l
}

// Refs returns the options in their original order.
func (l Lookup) Refs() []ProductRef {
	return append([]ProductRef(nil), l.refs...)
}

func (l Lookup) Len() int {
	return len(l.refs)
}

// Find returns the reference for sku.
func (l Lookup) Find(sku string) (ProductRef, bool) {
	ref, ok := l.bySKU[strings.TrimSpace(sku)]
	return ref, ok
}

// Resolve turns a comma-joined SKU list into references. Blank entries and
// unknown SKUs are dropped.
func (l Lookup) Resolve(serialized string) []ProductRef {
	if strings.TrimSpace(serialized) == "" {
		return []ProductRef{}
	}
	parts := strings.Split(serialized, ",")
	out := make([]ProductRef, 0, len(parts))
	for _, part := range parts {
		if ref, ok := l.Find(part); ok {
			out = append(out, ref)
		}
	}
	return out
}

// Serialize joins the SKUs of refs with commas.
func Serialize(refs []ProductRef) string {
	skus := make([]string, 0, len(refs))
	for _, ref := range refs {
		if sku := strings.TrimSpace(ref.SKU); sku != "" {
			skus = append(skus, sku)
		}
	}
	return strings.Join(skus, ",")
}
