// Package todo is a small list model. Its transitions mutate the draft in
// place, so untouched items keep their identity across dispatches.
package todo

import (
	"errors"
	"slices"
	"strings"

	"github.com/roach88/yartsul/action"
	"github.com/roach88/yartsul/reducer"
)

// ErrEmptyTitle is returned for an add or rename with a blank title.
var ErrEmptyTitle = errors.New("todo: title must not be empty")

// Item is one entry of the list.
type Item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// State is the todo model state.
type State struct {
	Items  []Item `json:"items"`
	NextID int    `json:"next_id"`
}

// AddPayload is the payload of Add.
type AddPayload struct {
	Title string `json:"title"`
}

// RenamePayload is the payload of Rename.
type RenamePayload struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

var (
	Add            = action.Define[AddPayload]("todo/add")
	Toggle         = action.Define[int]("todo/toggle")
	Rename         = action.Define[RenamePayload]("todo/rename")
	Remove         = action.Define[int]("todo/remove")
	ClearCompleted = action.DefineVoid("todo/clear_completed")
)

// Initial returns an empty list.
func Initial() *State {
	return &State{Items: []Item{}, NextID: 1}
}

// NewReducer builds the todo reducer starting from initial.
func NewReducer(initial *State) reducer.Reducer[State] {
	return reducer.MustCreate(initial,
		action.Handle(Add, func(d *State, p AddPayload) (*State, error) {
			title := strings.TrimSpace(p.Title)
			if title == "" {
				return nil, ErrEmptyTitle
			}
			d.Items = append(d.Items, Item{ID: d.NextID, Title: title})
			d.NextID++
			return d, nil
		}),
		action.Handle(Toggle, func(d *State, id int) (*State, error) {
			if i := d.index(id); i >= 0 {
				d.Items[i].Done = !d.Items[i].Done
			}
			return nil, nil
		}),
		action.Handle(Rename, func(d *State, p RenamePayload) (*State, error) {
			title := strings.TrimSpace(p.Title)
			if title == "" {
				return nil, ErrEmptyTitle
			}
			if i := d.index(p.ID); i >= 0 {
				d.Items[i].Title = title
			}
			return nil, nil
		}),
		action.Handle(Remove, func(d *State, id int) (*State, error) {
			if i := d.index(id); i >= 0 {
				d.Items = slices.Delete(d.Items, i, i+1)
			}
			return nil, nil
		}),
		action.HandleVoid(ClearCompleted, func(d *State) (*State, error) {
			d.Items = slices.DeleteFunc(d.Items, func(it Item) bool { return it.Done })
			return nil, nil
		}),
	)
}

// Registry returns a registry of the todo actions.
func Registry() *action.Registry {
	return action.NewRegistry(Add, Toggle, Rename, Remove, ClearCompleted)
}

func (s *State) index(id int) int {
	return slices.IndexFunc(s.Items, func(it Item) bool { return it.ID == id })
}
