package media

import (
	"fmt"

	"github.com/angelmondragon/pim-console/pkg/config"
	"github.com/angelmondragon/pim-console/pkg/enums"
)

// Policy parameterises a Manager: what it accepts and what it tells the user.
type Policy struct {
	Kind        enums.MediaKind
	MaxItems    int
	MaxBytes    int64
	AllowedMIME []string
	// Width and Height, when non-zero, must match the image exactly.
	Width  int
	Height int
	// Key returns the de-duplication key of an item. Nil disables de-duplication.
	Key      func(Item) string
	Messages Messages
}

// Messages are the user-facing texts of a policy. Entries taking a file
// name receive it as the first verb.
type Messages struct {
	LimitReached    string
	InvalidType     string
	TooLarge        string
	WrongDimensions string
	Unreadable      string
	Added           string
	NoneAdded       string
	Removed         string

	EmptyURL   string
	InvalidURL string
	Duplicate  string
}

// Requirements describes the policy for the view model.
type Requirements struct {
	MaxItems    int    `json:"max_items"`
	MaxBytes    int64  `json:"max_bytes,omitempty"`
	AllowedMIME string `json:"allowed_mime,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

func (p Policy) Requirements() Requirements {
	return Requirements{
		MaxItems:    p.MaxItems,
		MaxBytes:    p.MaxBytes,
		AllowedMIME: humanReadableList(p.AllowedMIME),
		Width:       p.Width,
		Height:      p.Height,
	}
}

// GalleryPolicy accepts JPEG images of an exact size.
func GalleryPolicy(cfg config.MediaConfig) Policy {
	return Policy{
		Kind:        enums.MediaKindGallery,
		MaxItems:    cfg.GalleryMaxItems,
		MaxBytes:    cfg.GalleryMaxBytes,
		AllowedMIME: cfg.GalleryMIMEList(),
		Width:       cfg.GalleryWidth,
		Height:      cfg.GalleryHeight,
		Messages: Messages{
			LimitReached:    fmt.Sprintf("Máximo %d imágenes permitidas.", cfg.GalleryMaxItems),
			InvalidType:     `"%s" no es una imagen JPG o JPEG. Solo formatos JPG/JPEG son permitidos.`,
			TooLarge:        `"%s" supera el tamaño máximo de ` + fmt.Sprintf("%d KB.", cfg.GalleryMaxBytes/1024),
			WrongDimensions: `"%s" debe ser exactamente ` + fmt.Sprintf("%dx%d píxeles.", cfg.GalleryWidth, cfg.GalleryHeight),
			Unreadable:      `No se pudo cargar "%s" para validar las dimensiones.`,
			Added:           "Se han añadido %d imagen(es) a la galería.",
			NoneAdded:       "Algunos archivos no pudieron ser añadidos. Revisa los requisitos.",
			Removed:         "Imagen eliminada de la galería.",
		},
	}
}

// DocumentationPolicy accepts PDF files.
func DocumentationPolicy(cfg config.MediaConfig) Policy {
	return Policy{
		Kind:        enums.MediaKindDocumentation,
		MaxItems:    cfg.DocumentMaxItems,
		MaxBytes:    cfg.DocumentMaxBytes,
		AllowedMIME: cfg.DocumentMIMEList(),
		Messages: Messages{
			LimitReached: fmt.Sprintf("Has alcanzado el límite máximo de %d documentos.", cfg.DocumentMaxItems),
			InvalidType:  `"%s" no es un PDF. Solo se permiten archivos PDF.`,
			TooLarge:     `"%s" supera el tamaño máximo de ` + fmt.Sprintf("%d MB.", cfg.DocumentMaxBytes/(1024*1024)),
			Unreadable:   `No se pudo leer "%s".`,
			Added:        "Se han añadido %d documento(s).",
			NoneAdded:    "No se pudieron añadir los documentos. Revisa los requisitos.",
			Removed:      "Documento eliminado.",
		},
	}
}

// VideoPolicy accepts YouTube links, de-duplicated by video id.
func VideoPolicy(cfg config.MediaConfig) Policy {
	return Policy{
		Kind:     enums.MediaKindVideo,
		MaxItems: cfg.VideoMaxItems,
		Key:      func(item Item) string { return item.VideoID },
		Messages: Messages{
			LimitReached: fmt.Sprintf("Máximo %d videos permitidos.", cfg.VideoMaxItems),
			Added:        "Video añadido exitosamente.",
			Removed:      "Video eliminado.",
			EmptyURL:     "Por favor, ingrese un enlace de video.",
			InvalidURL:   "Por favor, ingrese un enlace de YouTube válido.",
			Duplicate:    "Este video ya ha sido añadido.",
		},
	}
}
