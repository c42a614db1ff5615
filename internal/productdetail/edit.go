package productdetail

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/pim-console/internal/media"
	"github.com/angelmondragon/pim-console/internal/notifications"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

// Field names an editable scalar of the product.
type Field string

const (
	FieldName             Field = "name"
	FieldBrand            Field = "brand"
	FieldDescription      Field = "description"
	FieldShortDescription Field = "short_description"
	FieldSpecifications   Field = "specifications"
	FieldApplications     Field = "applications"
)

func ParseField(value string) (Field, error) {
	switch f := Field(strings.TrimSpace(value)); f {
	case FieldName, FieldBrand, FieldDescription, FieldShortDescription, FieldSpecifications, FieldApplications:
		return f, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("campo desconocido %q", value))
}

// SetField changes one scalar of the working copy. The name can only be
// changed while name edit mode is on.
func (s *Session) SetField(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireEditable(); err != nil {
		return err
	}
	p := s.product
	switch field {
	case FieldName:
		if !s.editingName {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "El nombre solo se puede cambiar en modo de edición.")
		}
		p.Name = value
	case FieldBrand:
		p.Brand = value
	case FieldDescription:
		p.Description = value
	case FieldShortDescription:
		if utf8.RuneCountInString(value) > products.ShortDescriptionMaxRunes {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("La descripción corta admite como máximo %d caracteres.", products.ShortDescriptionMaxRunes))
		}
		p.ShortDescription = value
	case FieldSpecifications:
		p.Specifications = value
	case FieldApplications:
		p.Applications = value
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("campo desconocido %q", field))
	}
	return nil
}

// BeginNameEdit turns on name edit mode, remembering the current name.
func (s *Session) BeginNameEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireEditable(); err != nil {
		return err
	}
	if !s.editingName {
		s.editingName = true
		s.savedName = s.product.Name
	}
	return nil
}

// CancelNameEdit restores the name held before BeginNameEdit.
func (s *Session) CancelNameEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireLoaded(); err != nil {
		return err
	}
	if s.editingName {
		s.product.Name = s.savedName
	}
	s.editingName = false
	s.savedName = ""
	return nil
}

// UpdateCountry sets one field of a country's settings. Related and
// substitute accept either product references or SKUs; SKUs missing from
// the lookup table are dropped.
func (s *Session) UpdateCountry(code enums.CountryCode, field regional.Field, value any) (regional.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireEditable(); err != nil {
		return regional.Setting{}, err
	}
	if skus, ok := value.([]string); ok {
		value = s.resolveSKUs(skus)
	}
	next, err := s.matrix.Update(code, field, value)
	if err != nil {
		return regional.Setting{}, err
	}
	s.matrix = next
	s.product.CountrySettings = next.Settings()
	return next.Get(code), nil
}

func (s *Session) resolveSKUs(skus []string) []products.ProductRef {
	refs := make([]products.ProductRef, 0, len(skus))
	for _, sku := range skus {
		if ref, ok := s.lookup.Find(sku); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (s *Session) collection(kind enums.MediaKind) (*media.Manager, error) {
	switch kind {
	case enums.MediaKindGallery:
		return s.gallery, nil
	case enums.MediaKindDocumentation:
		return s.docs, nil
	case enums.MediaKindVideo:
		return s.videos, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("colección desconocida %q", kind))
}

// editableCollection resolves kind after the edit gates. Callers hold the lock.
func (s *Session) editableCollection(kind enums.MediaKind) (*media.Manager, error) {
	s.touch()
	if err := s.requireEditable(); err != nil {
		return nil, err
	}
	return s.collection(kind)
}

// AddUploads validates and appends files to the gallery or documentation.
func (s *Session) AddUploads(kind enums.MediaKind, uploads []media.Upload) (media.AddResult, notifications.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.editableCollection(kind)
	if err != nil {
		return media.AddResult{}, notifications.Notification{}, err
	}
	if !kind.AcceptsUploads() {
		return media.AddResult{}, notifications.Notification{},
			pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s no admite archivos", kind))
	}
	result, note := m.Add(uploads)
	s.notify(note)
	return result, note, nil
}

// AddVideo appends a YouTube link. Refused links are reported through the
// notification, not the error.
func (s *Session) AddVideo(rawURL string) (*media.Item, notifications.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.editableCollection(enums.MediaKindVideo)
	if err != nil {
		return nil, notifications.Notification{}, err
	}
	item, note := m.AddURL(rawURL)
	s.notify(note)
	return item, note, nil
}

// RemoveMedia deletes one item. Unknown ids are a no-op.
func (s *Session) RemoveMedia(kind enums.MediaKind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.editableCollection(kind)
	if err != nil {
		return false, err
	}
	removed, note := m.Remove(id)
	s.notify(note)
	return removed, nil
}

// ReorderMedia moves fromID to the position of toID.
func (s *Session) ReorderMedia(kind enums.MediaKind, fromID, toID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.editableCollection(kind)
	if err != nil {
		return false, err
	}
	return m.Reorder(fromID, toID), nil
}

func (s *Session) DragStart(kind enums.MediaKind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.editableCollection(kind)
	if err != nil {
		return false, err
	}
	return m.DragStart(id), nil
}

// DragEnd drops the dragged item onto toID.
func (s *Session) DragEnd(kind enums.MediaKind, toID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.editableCollection(kind)
	if err != nil {
		return false, err
	}
	return m.DragEnd(toID), nil
}

// DragCancel always clears the drag state, even on a read-only product.
func (s *Session) DragCancel(kind enums.MediaKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.collection(kind)
	if err != nil {
		return err
	}
	m.DragCancel()
	return nil
}
