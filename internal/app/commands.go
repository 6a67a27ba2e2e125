package app

// Command is one user interaction dispatched into the App.
type Command interface {
	Kind() string
}

// SetFilter applies a free-text search. It also comes from activating a
// hashtag or genre tag in a popup.
type SetFilter struct{ Term string }

// SetHashtag applies an exact hashtag filter.
type SetHashtag struct{ Tag string }

// ToggleSearch opens or closes the search box. Closing clears the filter.
type ToggleSearch struct{}

// GoToRecord flies the camera to a record.
type GoToRecord struct{ ID int }

// SwitchBasemap changes the active basemap.
type SwitchBasemap struct{ ID string }

// DismissOverlay closes the welcome overlay.
type DismissOverlay struct{}

// MapClick is a click on the map background.
type MapClick struct{}

// UserGesture is a manual pan or zoom.
type UserGesture struct{}

// PillClick is a click on the memory pill.
type PillClick struct{}

func (SetFilter) Kind() string      { return "set_filter" }
func (SetHashtag) Kind() string     { return "set_hashtag" }
func (ToggleSearch) Kind() string   { return "toggle_search" }
func (GoToRecord) Kind() string     { return "go_to_record" }
func (SwitchBasemap) Kind() string  { return "switch_basemap" }
func (DismissOverlay) Kind() string { return "dismiss_overlay" }
func (MapClick) Kind() string       { return "map_click" }
func (UserGesture) Kind() string    { return "user_gesture" }
func (PillClick) Kind() string      { return "pill_click" }
