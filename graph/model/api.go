package model

// Types of the GraphQL API that have no counterpart in the viewer itself.

type Cursor string

const (
	CursorDefault Cursor = "DEFAULT"
	CursorPointer Cursor = "POINTER"
)

var AllCursor = []Cursor{
	CursorDefault,
	CursorPointer,
}

func (e Cursor) IsValid() bool {
	switch e {
	case CursorDefault, CursorPointer:
		return true
	}
	return false
}

func (e Cursor) String() string {
	return string(e)
}

type PointerType string

const (
	PointerTypeDown  PointerType = "DOWN"
	PointerTypeMove  PointerType = "MOVE"
	PointerTypeUp    PointerType = "UP"
	PointerTypeLeave PointerType = "LEAVE"
)

var AllPointerType = []PointerType{
	PointerTypeDown,
	PointerTypeMove,
	PointerTypeUp,
	PointerTypeLeave,
}

func (e PointerType) IsValid() bool {
	switch e {
	case PointerTypeDown, PointerTypeMove, PointerTypeUp, PointerTypeLeave:
		return true
	}
	return false
}

func (e PointerType) String() string {
	return string(e)
}

type PointerInput struct {
	Type    PointerType `json:"type"`
	ClientX float64     `json:"clientX"`
	ClientY float64     `json:"clientY"`
}

type DisplayRectInput struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
