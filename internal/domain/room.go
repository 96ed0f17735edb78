package domain

// RoomsQuery selects a page of meeting rooms.
type RoomsQuery struct {
	StartID  string
	EndID    string
	PageSize int
}

// RoomsPage holds rooms verbatim as the API returned them.
type RoomsPage struct {
	Items []map[string]any
	Next  *string // href of the following page
	Total int
}
