package types

import "strconv"

// TabID identifies a browser tab.
type TabID int

func (t TabID) String() string { return strconv.Itoa(int(t)) }

// TabPtr returns a pointer to id, for call sites that need an optional tab.
func TabPtr(id TabID) *TabID { return &id }

// Overlay is the content shown over a page by the extension.
type Overlay struct {
	Rating Rating `json:"rating"`
	Reason string `json:"reason"`
}
