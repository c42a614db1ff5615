package productdetail

import (
	"github.com/angelmondragon/pim-console/internal/media"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/internal/workflow"
	"github.com/angelmondragon/pim-console/pkg/enums"
)

// CollectionView is the state of one media collection.
type CollectionView struct {
	Kind         enums.MediaKind    `json:"kind"`
	Items        []media.Item       `json:"items"`
	Dragging     string             `json:"dragging,omitempty"`
	Requirements media.Requirements `json:"requirements"`
}

// View is the flat state the console renders, together with the commands
// currently available.
type View struct {
	ProductID        int                     `json:"product_id"`
	Loading          bool                    `json:"loading"`
	Loaded           bool                    `json:"loaded"`
	Product          *products.Product       `json:"product,omitempty"`
	StatusLabel      string                  `json:"status_label,omitempty"`
	ReadOnly         bool                    `json:"read_only"`
	CanEdit          bool                    `json:"can_edit"`
	HasBeenPublished bool                    `json:"has_been_published"`
	EditingName      bool                    `json:"editing_name"`
	Pending          enums.PendingAction     `json:"pending_action,omitempty"`
	PendingMessage   string                  `json:"pending_message,omitempty"`
	Actions          []enums.WorkflowAction  `json:"actions"`
	Confirmation     *workflow.Confirmation  `json:"confirmation,omitempty"`
	Countries        []regional.Row          `json:"countries"`
	Categories       []enums.CategoryOption  `json:"categories"`
	References       []products.ProductRef   `json:"references"`
	Gallery          CollectionView          `json:"gallery"`
	Documentation    CollectionView          `json:"documentation"`
	Videos           CollectionView          `json:"videos"`
	History          []products.HistoryEntry `json:"history"`
}

func collectionView(m *media.Manager) CollectionView {
	policy := m.Policy()
	items := m.Items()
	if items == nil {
		items = []media.Item{}
	}
	return CollectionView{
		Kind:         policy.Kind,
		Items:        items,
		Dragging:     m.Dragging(),
		Requirements: policy.Requirements(),
	}
}

// View returns a snapshot of the session safe to hand to other goroutines.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	v := View{
		ProductID:      s.productID,
		Loading:        s.loading,
		Loaded:         s.product != nil,
		EditingName:    s.editingName,
		Pending:        s.pending,
		PendingMessage: workflow.PendingMessage(s.pending),
		Actions:        []enums.WorkflowAction{},
		Countries:      s.matrix.Rows(s.lookup),
		Categories:     regional.Categories(),
		References:     s.lookup.Refs(),
		Gallery:        collectionView(s.gallery),
		Documentation:  collectionView(s.docs),
		Videos:         collectionView(s.videos),
		History:        append([]products.HistoryEntry{}, s.history...),
	}
	if v.References == nil {
		v.References = []products.ProductRef{}
	}
	if s.product == nil {
		v.ReadOnly = true
		return v
	}

	p := s.product.Clone()
	v.Product = &p
	v.StatusLabel = p.Status.Label()
	v.ReadOnly = workflow.ReadOnly(s.actor, p)
	v.CanEdit = workflow.CanEdit(s.actor, p)
	v.HasBeenPublished = workflow.HasBeenPublished(p)
	if s.pending == enums.PendingNone {
		if actions := workflow.Available(s.actor, p); actions != nil {
			v.Actions = actions
		}
	}
	if c, ok := s.prompt.Current(); ok {
		v.Confirmation = &c
	}
	return v
}
