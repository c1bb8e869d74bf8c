package domain

import "github.com/samber/lo"

type ObjectType string

const (
	ObjectDesk  ObjectType = "desk"
	ObjectChair ObjectType = "chair"
	ObjectWall  ObjectType = "wall"
	ObjectDoor  ObjectType = "door"
	ObjectPlant ObjectType = "plant"
	ObjectOther ObjectType = "other"
)

const (
	OfficeWidth  float64 = 2000
	OfficeHeight float64 = 1500

	PlayerWidth  float64 = 28
	PlayerHeight float64 = 73

	standSpacing    float64 = 15
	standFarSpacing float64 = 30
	standFallback   float64 = 50
)

type OfficeObject struct {
	ID          string     `json:"id"`
	Type        ObjectType `json:"type"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Interactive bool       `json:"interactive"`
}

func (o OfficeObject) overlaps(p Point) bool {
	return p.X < o.X+o.Width && p.X+PlayerWidth > o.X &&
		p.Y < o.Y+o.Height && p.Y+PlayerHeight > o.Y
}

var DefaultOfficeObjects = []OfficeObject{
	{ID: "wall-north", Type: ObjectWall, X: 0, Y: 0, Width: OfficeWidth, Height: 20},
	{ID: "wall-south", Type: ObjectWall, X: 0, Y: OfficeHeight - 20, Width: OfficeWidth, Height: 20},
	{ID: "wall-west", Type: ObjectWall, X: 0, Y: 0, Width: 20, Height: OfficeHeight},
	{ID: "wall-east", Type: ObjectWall, X: OfficeWidth - 20, Y: 0, Width: 20, Height: OfficeHeight},

	{ID: "desk-1", Type: ObjectDesk, X: 200, Y: 200, Width: 120, Height: 80, Interactive: true},
	{ID: "desk-2", Type: ObjectDesk, X: 400, Y: 200, Width: 120, Height: 80, Interactive: true},
	{ID: "desk-3", Type: ObjectDesk, X: 200, Y: 400, Width: 120, Height: 80, Interactive: true},
	{ID: "desk-4", Type: ObjectDesk, X: 400, Y: 400, Width: 120, Height: 80, Interactive: true},

	{ID: "chair-1", Type: ObjectChair, X: 220, Y: 280, Width: 48, Height: 64, Interactive: true},
	{ID: "chair-2", Type: ObjectChair, X: 420, Y: 280, Width: 48, Height: 64, Interactive: true},
	{ID: "chair-3", Type: ObjectChair, X: 220, Y: 480, Width: 48, Height: 64, Interactive: true},
	{ID: "chair-4", Type: ObjectChair, X: 420, Y: 480, Width: 48, Height: 64, Interactive: true},

	{ID: "desk-5", Type: ObjectDesk, X: 800, Y: 300, Width: 120, Height: 80, Interactive: true},
	{ID: "desk-6", Type: ObjectDesk, X: 1000, Y: 300, Width: 120, Height: 80, Interactive: true},
	{ID: "chair-5", Type: ObjectChair, X: 820, Y: 380, Width: 48, Height: 64, Interactive: true},
	{ID: "chair-6", Type: ObjectChair, X: 1020, Y: 380, Width: 48, Height: 64, Interactive: true},
}

// Office is the static furniture of a presence room.
type Office struct {
	Objects []OfficeObject
}

func NewOffice(objects []OfficeObject) Office {
	if objects == nil {
		objects = DefaultOfficeObjects
	}
	return Office{Objects: objects}
}

func (o Office) Find(id string) (OfficeObject, bool) {
	return lo.Find(o.Objects, func(obj OfficeObject) bool { return obj.ID == id })
}

// SitPosition centers the player on the chair.
func (o Office) SitPosition(chair OfficeObject) Point {
	return Point{
		X: chair.X + chair.Width/2 - PlayerWidth/2,
		Y: chair.Y + chair.Height/2 - PlayerHeight/2,
	}
}

// StandPosition looks above, left, right and below the chair for a spot
// that collides with nothing but the chair itself, then tries further out,
// and finally gives up and places the player well above it.
func (o Office) StandPosition(chair OfficeObject) Point {
	cx := chair.X + chair.Width/2
	cy := chair.Y + chair.Height/2

	near := []Point{
		{X: cx - PlayerWidth/2, Y: chair.Y - PlayerHeight - standSpacing},
		{X: chair.X - PlayerWidth - standSpacing, Y: cy - PlayerHeight/2},
		{X: chair.X + chair.Width + standSpacing, Y: cy - PlayerHeight/2},
		{X: cx - PlayerWidth/2, Y: chair.Y + chair.Height + standSpacing},
	}
	far := []Point{
		{X: cx - PlayerWidth/2, Y: chair.Y - PlayerHeight - standFarSpacing},
		{X: chair.X - PlayerWidth - standFarSpacing, Y: cy - PlayerHeight/2},
		{X: chair.X + chair.Width + standFarSpacing, Y: cy - PlayerHeight/2},
	}
	for _, candidates := range [][]Point{near, far} {
		if p, ok := lo.Find(candidates, func(p Point) bool { return o.free(p, chair.ID) }); ok {
			return p
		}
	}
	return Point{X: cx - PlayerWidth/2, Y: chair.Y - PlayerHeight - standFallback}
}

func (o Office) free(p Point, ignore string) bool {
	if p.X < 0 || p.Y < 0 || p.X+PlayerWidth > OfficeWidth || p.Y+PlayerHeight > OfficeHeight {
		return false
	}
	return !lo.ContainsBy(o.Objects, func(obj OfficeObject) bool {
		return obj.ID != ignore && obj.overlaps(p)
	})
}

// Blocked reports whether a player standing at p would leave the office or
// overlap any object.
func (o Office) Blocked(p Point) bool {
	return !o.free(p, "")
}
